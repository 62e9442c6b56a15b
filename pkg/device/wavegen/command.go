/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package wavegen

import (
	"fmt"
	"math"

	"jinr.ru/greenlab/go-wavegen/pkg/device/ifc"
	"jinr.ru/greenlab/go-wavegen/pkg/log"
)

type streamInst struct {
	reload bool
	chain  bool
	samps  bool
	stop   bool
}

var modeToInst = map[ifc.StreamMode]streamInst{
	ifc.StreamModeStartContinuous: {reload: true, chain: true, samps: false, stop: false},
	ifc.StreamModeStopContinuous:  {reload: false, chain: false, samps: false, stop: true},
	ifc.StreamModeNumSampsAndDone: {reload: false, chain: false, samps: true, stop: false},
	ifc.StreamModeNumSampsAndMore: {reload: false, chain: true, samps: true, stop: false},
}

// EncodeStreamCmd computes the radar command word for a stream command
func EncodeStreamCmd(cmd ifc.StreamCmd) (uint32, error) {
	inst, ok := modeToInst[cmd.Mode]
	if !ok {
		return 0, ErrInvalidArgument{What: fmt.Sprintf("unknown stream mode %d", cmd.Mode)}
	}
	if inst.samps && cmd.NumSamps > CmdNumSampsMask {
		return 0, ErrInvalidArgument{What: fmt.Sprintf("sample count %d does not fit into 28 bits", cmd.NumSamps)}
	}

	var word uint32
	if cmd.StreamNow {
		word |= CmdBitNow
	}
	if inst.chain {
		word |= CmdBitChain
	}
	if inst.reload {
		word |= CmdBitReload
	}
	if inst.stop {
		word |= CmdBitStop
	}
	switch {
	case inst.samps:
		word |= cmd.NumSamps
	case inst.stop:
	default:
		word |= 1
	}
	return word, nil
}

// SplitTicks splits a time tag into TIME_HI and TIME_LO register values
func SplitTicks(ticks uint64) (hi, lo uint32) {
	return uint32(ticks >> 32), uint32(ticks)
}

// JoinTicks is the inverse of SplitTicks
func JoinTicks(hi, lo uint32) uint64 {
	return uint64(hi)<<32 | uint64(lo)
}

// TimeToTicks converts seconds to device ticks, rounding to the nearest tick
func (d *Device) TimeToTicks(seconds float64) uint64 {
	rate := d.Rate()
	if seconds <= 0 || rate <= 0 {
		return 0
	}
	return uint64(math.Round(seconds * rate))
}

// SetCtrlWord writes the AWG control word. The caller is responsible for a valid bit pattern.
func (d *Device) SetCtrlWord(word uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	log.Debug("wavegen %s: set_ctrl_word 0x%08x", d.name, word)
	return d.write(RegAwgCtrlWord, word)
}

// SetSrcAwg selects the uploaded waveform as signal source
func (d *Device) SetSrcAwg() error {
	return d.SetCtrlWord(CtrlWordSelAwg)
}

// SetSrcChirp selects the chirp generator as signal source
func (d *Device) SetSrcChirp() error {
	return d.SetCtrlWord(CtrlWordSelChirp)
}

// SetPolicy writes the radar policy selector. Values other than
// RadarPolicyAuto and RadarPolicyManual are forwarded as is.
func (d *Device) SetPolicy(policy uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	log.Debug("wavegen %s: set_policy %d", d.name, policy)
	return d.write(RegRadarPolicy, policy)
}

func (d *Device) SetPolicyAuto() error {
	return d.SetPolicy(RadarPolicyAuto)
}

func (d *Device) SetPolicyManual() error {
	return d.SetPolicy(RadarPolicyManual)
}

// SetNumAdcSamples sets the number of ADC samples per pulse. The device counts from zero.
func (d *Device) SetNumAdcSamples(n uint32) error {
	if n == 0 {
		return ErrInvalidArgument{What: "number of ADC samples must be positive"}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	log.Debug("wavegen %s: set_num_adc_samples %d", d.name, n)
	return d.write(RegAdcSample, n-1)
}

// SetRxLen sets the ADC sample count so that the receive window
// including the waveform is rxLen samples long.
func (d *Device) SetRxLen(rxLen uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	rb, err := d.readChecked(RbAwgLen)
	if err != nil {
		return err
	}
	wfrmLen := uint32(rb)
	if rxLen < wfrmLen {
		return ErrInvalidArgument{What: fmt.Sprintf("rx length %d is shorter than waveform length %d", rxLen, wfrmLen)}
	}
	count := rxLen - wfrmLen
	if count > 0 {
		count--
	}
	log.Debug("wavegen %s: set_rx_len %d, adc samples %d", d.name, rxLen, count)
	return d.write(RegAdcSample, count)
}

// SetPrfCount writes the integer (high) and fractional (low) halves of the PRF count
func (d *Device) SetPrfCount(prfCount uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	log.Debug("wavegen %s: set_prf_count %d", d.name, prfCount)
	if err := d.write(RegPrfInt, uint32(prfCount>>32)); err != nil {
		return err
	}
	return d.write(RegPrfFrac, uint32(prfCount))
}

func (d *Device) SetChirpCounter(count uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.write(RegChCounter, count)
}

func (d *Device) SetChirpTuningCoef(coef uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.write(RegChTuningCoef, coef)
}

func (d *Device) SetChirpFreqOffset(offset uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.write(RegChFreqOffset, offset)
}

// SetupChirp writes chirp length, tuning coefficient and frequency offset in this order
func (d *Device) SetupChirp(length, tuningCoef, freqOffset uint32) error {
	if length == 0 {
		return ErrInvalidArgument{What: "chirp length must be positive"}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	log.Debug("wavegen %s: setup_chirp len %d coef %d offset %d", d.name, length, tuningCoef, freqOffset)
	if err := d.write(RegChCounter, length-1); err != nil {
		return err
	}
	if err := d.write(RegChTuningCoef, tuningCoef); err != nil {
		return err
	}
	return d.write(RegChFreqOffset, freqOffset)
}

// ClearCommands drops all commands queued in the pulse scheduler
func (d *Device) ClearCommands() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	log.Debug("wavegen %s: clear_commands", d.name)
	return d.write(RegRadarClearCmds, ClearCmdsValue)
}

// IssueStreamCmd writes the command word and its time tag, then fires an immediate pulse.
func (d *Device) IssueStreamCmd(cmd ifc.StreamCmd) error {
	word, err := EncodeStreamCmd(cmd)
	if err != nil {
		return err
	}
	ticks := cmd.Ticks
	if cmd.StreamNow {
		ticks = 0
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	log.Debug("wavegen %s: issue_stream_cmd mode %d word 0x%08x ticks %d", d.name, cmd.Mode, word, ticks)
	if err := d.timedCommand(word, ticks); err != nil {
		return err
	}
	return d.pulseNow()
}

// SendPulse fires a pulse immediately. With a time tag it queues a timed
// pulse with a zero command word and the scheduler decides the rest.
func (d *Device) SendPulse(ticks ...uint64) error {
	if len(ticks) > 1 {
		return ErrInvalidArgument{What: "at most one time tag is allowed"}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(ticks) == 0 {
		log.Debug("wavegen %s: send_pulse", d.name)
		return d.pulseNow()
	}
	log.Debug("wavegen %s: send_pulse at %d", d.name, ticks[0])
	return d.timedCommand(0, ticks[0])
}

// timedCommand writes command word, TIME_HI and TIME_LO. The TIME_LO write latches the command.
func (d *Device) timedCommand(word uint32, ticks uint64) error {
	hi, lo := SplitTicks(ticks)
	if err := d.write(RegRadarCommand, word); err != nil {
		return err
	}
	if err := d.write(RegRadarTimeHi, hi); err != nil {
		return err
	}
	return d.write(RegRadarTimeLo, lo)
}

func (d *Device) pulseNow() error {
	if err := d.write(RegRadarTimeHi, PulseNowTimeHi); err != nil {
		return err
	}
	return d.write(RegRadarTimeLo, 0)
}

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

// Package sim simulates the register bus side of a wavegen block.
// It is used for tests and for running the control server without hardware.
package sim

import (
	"fmt"
	"sync"

	"jinr.ru/greenlab/go-wavegen/pkg/device/ifc"
	"jinr.ru/greenlab/go-wavegen/pkg/device/wavegen"
	"jinr.ru/greenlab/go-wavegen/pkg/log"
)

// State bits of RB_AWG_STATE. Pulse count is kept in the high 32 bits.
const (
	StateStreaming uint64 = 1 << 0
	StateQueued    uint64 = 1 << 1
	StateUploading uint64 = 1 << 2
	StatePulseShift       = 32
)

// Command is a radar command latched by a TIME_LO write
type Command struct {
	Word  uint32
	Ticks uint64
}

// Now tells if the command has the immediate flag of its time tag set
func (c Command) Now() bool {
	hi, _ := wavegen.SplitTicks(c.Ticks)
	return hi&wavegen.PulseNowTimeHi != 0
}

type upload struct {
	header  wavegen.WaveformHeader
	next    uint16
	samples []uint32
	// header words of the fragment being received
	words []uint32
}

// RegisterFile is a simulated wavegen block
type RegisterFile struct {
	mu       sync.Mutex
	settings map[uint32]uint32
	// radar command being composed, TIME_LO latches it
	cmdWord uint32
	timeHi  uint32
	queue   []Command
	history []Command

	streaming bool
	pulses    uint32
	upload    *upload
	waveform  []uint32
	uploads   int
}

var _ ifc.Bus = &RegisterFile{}

func NewRegisterFile() *RegisterFile {
	return &RegisterFile{
		settings: make(map[uint32]uint32),
	}
}

func (r *RegisterFile) RegWrite(addr uint32, value uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch addr {
	case wavegen.RegAwgReload.Addr():
		return r.reload(value, false)
	case wavegen.RegAwgReloadLast.Addr():
		return r.reload(value, true)
	case wavegen.RegRadarCommand.Addr():
		r.cmdWord = value
	case wavegen.RegRadarTimeHi.Addr():
		r.timeHi = value
	case wavegen.RegRadarTimeLo.Addr():
		r.latch(Command{Word: r.cmdWord, Ticks: wavegen.JoinTicks(r.timeHi, value)})
	case wavegen.RegRadarClearCmds.Addr():
		log.Debug("sim: clear %d queued commands", len(r.queue))
		r.queue = nil
	}
	r.settings[addr] = value
	return nil
}

func (r *RegisterFile) RegRead64(addr uint32) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch addr {
	case wavegen.RbAwgLen.Addr():
		return uint64(len(r.waveform)), nil
	case wavegen.RbAdcLen.Addr():
		return uint64(r.settings[wavegen.RegAdcSample.Addr()]), nil
	case wavegen.RbAwgCtrl.Addr():
		return uint64(r.settings[wavegen.RegAwgCtrlWord.Addr()]), nil
	case wavegen.RbAwgPrf.Addr():
		return wavegen.JoinTicks(r.settings[wavegen.RegPrfInt.Addr()], r.settings[wavegen.RegPrfFrac.Addr()]), nil
	case wavegen.RbAwgPolicy.Addr():
		return uint64(r.settings[wavegen.RegRadarPolicy.Addr()]), nil
	case wavegen.RbAwgState.Addr():
		return r.state(), nil
	}
	return 0, ErrUnknownRegister{Addr: addr}
}

func (r *RegisterFile) state() uint64 {
	state := uint64(r.pulses) << StatePulseShift
	if r.streaming {
		state |= StateStreaming
	}
	if len(r.queue) > 0 {
		state |= StateQueued
	}
	if r.upload != nil {
		state |= StateUploading
	}
	return state
}

// latch queues a command. An immediate time tag is a pulse that
// executes everything queued so far, the command word is ignored then.
func (r *RegisterFile) latch(cmd Command) {
	r.history = append(r.history, cmd)
	if cmd.Now() {
		r.pulse()
		return
	}
	r.queue = append(r.queue, cmd)
}

func (r *RegisterFile) pulse() {
	r.pulses++
	for _, cmd := range r.queue {
		switch {
		case cmd.Word&wavegen.CmdBitStop != 0:
			r.streaming = false
		case cmd.Word&wavegen.CmdBitReload != 0:
			r.streaming = true
		}
	}
	log.Debug("sim: pulse %d executed %d commands, streaming %t", r.pulses, len(r.queue), r.streaming)
	r.queue = nil
}

func (r *RegisterFile) reload(value uint32, last bool) error {
	if r.upload == nil || len(r.upload.words) < 2 {
		if last {
			r.upload = nil
			return ErrUpload{What: "fragment ended inside its header"}
		}
		return r.headerWord(value)
	}
	u := r.upload
	u.samples = append(u.samples, value)
	if !last {
		return nil
	}

	// fragment complete
	u.words = nil
	u.next++
	if len(u.samples) > int(u.header.Len) {
		r.upload = nil
		return ErrUpload{What: fmt.Sprintf("%d samples received, header announced %d", len(u.samples), u.header.Len)}
	}
	if len(u.samples) == int(u.header.Len) {
		r.waveform = u.samples
		r.uploads++
		r.upload = nil
		log.Debug("sim: upload id %d of %d samples in %d fragments", u.header.ID, u.header.Len, u.next)
	}
	return nil
}

func (r *RegisterFile) headerWord(value uint32) error {
	if r.upload == nil {
		r.upload = &upload{}
	}
	u := r.upload
	u.words = append(u.words, value)
	if len(u.words) < 2 {
		return nil
	}

	header := wavegen.DecodeWaveformHeader(u.words[0], u.words[1])
	if header.Cmd != wavegen.WaveformWriteCmd {
		r.upload = nil
		return ErrUpload{What: fmt.Sprintf("unexpected header command 0x%04x", header.Cmd)}
	}
	if header.Ind == 0 {
		// a new upload drops any unfinished one
		u.header = header
		u.next = 0
		u.samples = nil
	}
	if header.Ind != u.next || header.ID != u.header.ID || header.Len != u.header.Len {
		r.upload = nil
		return ErrUpload{What: fmt.Sprintf("fragment %d of upload %d out of sequence", header.Ind, header.ID)}
	}
	return nil
}

// Waveform returns the last completely uploaded waveform
func (r *RegisterFile) Waveform() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]uint32, len(r.waveform))
	copy(result, r.waveform)
	return result
}

// Uploads returns the number of completed uploads
func (r *RegisterFile) Uploads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uploads
}

// Setting returns the last value written to a settings bus address
func (r *RegisterFile) Setting(addr uint32) (uint32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value, ok := r.settings[addr]
	return value, ok
}

// History returns all latched commands including pulses
func (r *RegisterFile) History() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]Command, len(r.history))
	copy(result, r.history)
	return result
}

// Queued returns the commands waiting for a pulse
func (r *RegisterFile) Queued() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]Command, len(r.queue))
	copy(result, r.queue)
	return result
}

func (r *RegisterFile) Pulses() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pulses
}

func (r *RegisterFile) Streaming() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.streaming
}

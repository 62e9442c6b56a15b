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

package ifc

//go:generate mockgen -destination=mocks/bus.go -package=mocks jinr.ru/greenlab/go-wavegen/pkg/device/ifc Bus

// Bus is the register bus of a device. Writes go to settings bus addresses,
// reads return user readback registers. Implementations must issue
// transactions in call order and must not batch or reorder them.
type Bus interface {
	RegWrite(addr uint32, value uint32) error
	RegRead64(addr uint32) (uint64, error)
}

// StreamMode is what a stream command asks the pulse scheduler to do
type StreamMode int

const (
	StreamModeStartContinuous StreamMode = iota
	StreamModeStopContinuous
	StreamModeNumSampsAndDone
	StreamModeNumSampsAndMore
)

// StreamCmd describes a stream command. Ticks is ignored when StreamNow is set.
type StreamCmd struct {
	Mode      StreamMode
	StreamNow bool
	NumSamps  uint32
	Ticks     uint64
}

// Status is a snapshot of all readback registers
type Status struct {
	Source      string `json:"source"`
	Policy      string `json:"policy"`
	CtrlWord    uint32 `json:"ctrlWord"`
	PolicyWord  uint32 `json:"policyWord"`
	WaveformLen uint32 `json:"waveformLen"`
	AdcSamples  uint32 `json:"adcSamples"`
	RxLen       uint32 `json:"rxLen"`
	PrfCount    uint64 `json:"prfCount"`
	State       uint64 `json:"state"`
}

// Device is the operation surface of a waveform/radar controller
type Device interface {
	GetName() string

	// UploadWaveform sends samples as one packet, or fragmented into
	// packets of samplesPerPacket samples when it is given.
	UploadWaveform(samples []uint32, samplesPerPacket ...int) error

	SetCtrlWord(word uint32) error
	SetSrcAwg() error
	SetSrcChirp() error
	SetPolicy(policy uint32) error
	SetPolicyAuto() error
	SetPolicyManual() error
	SetNumAdcSamples(n uint32) error
	SetRxLen(rxLen uint32) error
	SetPrfCount(prfCount uint64) error
	SetChirpCounter(count uint32) error
	SetChirpTuningCoef(coef uint32) error
	SetChirpFreqOffset(offset uint32) error
	SetupChirp(length, tuningCoef, freqOffset uint32) error
	ClearCommands() error

	IssueStreamCmd(cmd StreamCmd) error
	// SendPulse fires a pulse immediately, or at the given time tag.
	SendPulse(ticks ...uint64) error
	TimeToTicks(seconds float64) uint64

	GetCtrlWord() (uint32, error)
	GetSrc() (string, error)
	GetPolicyWord() (uint32, error)
	GetPolicy() (string, error)
	GetWaveformLen() (uint32, error)
	GetNumAdcSamples() (uint32, error)
	GetRxLen() (uint32, error)
	GetPrfCount() (uint64, error)
	GetState() (uint64, error)
	GetStatus() (*Status, error)
}

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

// Package wavegen controls the FPGA arbitrary waveform / chirp generator
// and the radar pulse scheduler through their settings bus and readback registers.
package wavegen

import (
	"errors"
	"sync"

	"jinr.ru/greenlab/go-wavegen/pkg/config"
	"jinr.ru/greenlab/go-wavegen/pkg/device/ifc"
	"jinr.ru/greenlab/go-wavegen/pkg/log"
)

// ErrZeroReadback is reported by RejectZero
var ErrZeroReadback = errors.New("register read as zero")

// ReadbackCheck validates a raw status readback. A non nil error makes
// the read operation fail with ErrDeviceRead.
type ReadbackCheck func(reg RbAlias, value uint64) error

// WarnOnZero accepts every value and logs a warning for zero readbacks,
// which usually mean the device has not been configured yet.
func WarnOnZero(reg RbAlias, value uint64) error {
	if value == 0 {
		log.Warning("wavegen: %s read as zero", reg)
	}
	return nil
}

// RejectZero fails zero readbacks
func RejectZero(reg RbAlias, value uint64) error {
	if value == 0 {
		return ErrZeroReadback
	}
	return nil
}

type Option func(*Device)

// WithTickRate sets the device time base in Hz
func WithTickRate(rate float64) Option {
	return func(d *Device) {
		d.tickRate = rate
	}
}

// WithReadbackCheck replaces the default WarnOnZero readback check
func WithReadbackCheck(check ReadbackCheck) Option {
	return func(d *Device) {
		d.check = check
	}
}

// Device is a wavegen block controller. All operations are serialized,
// register bursts of concurrent callers never interleave on the bus.
type Device struct {
	name     string
	bus      ifc.Bus
	mu       sync.Mutex
	header   WaveformHeader
	tickRate float64
	check    ReadbackCheck
}

var _ ifc.Device = &Device{}

// NewDevice ...
func NewDevice(name string, bus ifc.Bus, opts ...Option) *Device {
	d := &Device{
		name: name,
		bus:  bus,
		header: WaveformHeader{
			Cmd: WaveformWriteCmd,
		},
		tickRate: config.DefaultTickRate,
		check:    WarnOnZero,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewDeviceFromConfig creates a controller with the settings of a configured device
func NewDeviceFromConfig(cfg *config.Device, bus ifc.Bus) *Device {
	opts := []Option{}
	if cfg.TickRate > 0 {
		opts = append(opts, WithTickRate(cfg.TickRate))
	}
	if cfg.RejectZeroReadback {
		opts = append(opts, WithReadbackCheck(RejectZero))
	}
	return NewDevice(cfg.Name, bus, opts...)
}

// GetName ...
func (d *Device) GetName() string {
	return d.name
}

// SetRate sets the device time base in Hz
func (d *Device) SetRate(rate float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tickRate = rate
}

// Rate returns the device time base in Hz
func (d *Device) Rate() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tickRate
}

// Header returns a copy of the current waveform upload header
func (d *Device) Header() WaveformHeader {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.header
}

func (d *Device) write(reg RegAlias, value uint32) error {
	addr := RegMap[reg]
	if err := d.bus.RegWrite(addr, value); err != nil {
		log.Error("wavegen %s: write %s = 0x%08x failed: %s", d.name, reg, value, err)
		return ErrTransport{Op: "write", Addr: addr, Err: err}
	}
	return nil
}

func (d *Device) read(reg RbAlias) (uint64, error) {
	addr := RbMap[reg]
	value, err := d.bus.RegRead64(addr)
	if err != nil {
		log.Error("wavegen %s: read %s failed: %s", d.name, reg, err)
		return 0, ErrTransport{Op: "read", Addr: addr, Err: err}
	}
	log.Debug("wavegen %s: %s == 0x%x", d.name, reg, value)
	return value, nil
}

// readChecked reads a readback register and runs the readback check on it
func (d *Device) readChecked(reg RbAlias) (uint64, error) {
	value, err := d.read(reg)
	if err != nil {
		return 0, err
	}
	if err := d.validate(reg, value); err != nil {
		return value, err
	}
	return value, nil
}

func (d *Device) validate(reg RbAlias, value uint64) error {
	if d.check == nil {
		return nil
	}
	if err := d.check(reg, value); err != nil {
		return ErrDeviceRead{Reg: reg, Value: value, Err: err}
	}
	return nil
}

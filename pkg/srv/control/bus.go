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

package control

import (
	deviceifc "jinr.ru/greenlab/go-wavegen/pkg/device/ifc"
	"jinr.ru/greenlab/go-wavegen/pkg/device/wavegen"
	"jinr.ru/greenlab/go-wavegen/pkg/log"
)

// waveform data is streamed, there is nothing useful to shadow
var notShadowed = map[uint32]bool{
	wavegen.RegAwgReload.Addr():     true,
	wavegen.RegAwgReloadLast.Addr(): true,
}

// shadowBus records successful settings writes into the register state
type shadowBus struct {
	deviceifc.Bus
	deviceName string
	state      *RegState
}

var _ deviceifc.Bus = &shadowBus{}

func newShadowBus(bus deviceifc.Bus, deviceName string, state *RegState) *shadowBus {
	return &shadowBus{
		Bus:        bus,
		deviceName: deviceName,
		state:      state,
	}
}

func (b *shadowBus) RegWrite(addr uint32, value uint32) error {
	if err := b.Bus.RegWrite(addr, value); err != nil {
		return err
	}
	if notShadowed[addr] {
		return nil
	}
	// the device already took the value, a shadow failure must not fail the operation
	if err := b.state.SetReg(b.deviceName, addr, value); err != nil {
		log.Error("Error while shadowing register %s of %s: %s", wavegen.RegName(addr), b.deviceName, err)
	}
	return nil
}

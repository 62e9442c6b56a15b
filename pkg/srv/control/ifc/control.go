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

import (
	"fmt"

	deviceifc "jinr.ru/greenlab/go-wavegen/pkg/device/ifc"
)

// Reg is the last value written to a settings bus register
type Reg struct {
	Addr  uint32 `json:"addr"`
	Name  string `json:"name"`
	Value uint32 `json:"value"`
}

// Hex returns address and value as hexadecimal strings
func (r *Reg) Hex() (string, string) {
	return fmt.Sprintf("0x%04x", r.Addr), fmt.Sprintf("0x%08x", r.Value)
}

type ControlServer interface {
	Run() error

	GetDeviceByName(deviceName string) (deviceifc.Device, error)
	GetAllDevices() map[string]deviceifc.Device
	// SamplesPerPacket is the configured upload fragment size of a device, 0 for single packet uploads
	SamplesPerPacket(deviceName string) (int, error)

	// settings registers are write only, these return what was last written
	RegRead(deviceName string, addr uint32) (*Reg, error)
	RegReadAll(deviceName string) ([]*Reg, error)
}

type ApiServer interface {
	Run() error
}

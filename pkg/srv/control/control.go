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
	"context"
	"io"
	"net/http"

	"jinr.ru/greenlab/go-wavegen/pkg/bus"
	"jinr.ru/greenlab/go-wavegen/pkg/config"
	deviceifc "jinr.ru/greenlab/go-wavegen/pkg/device/ifc"
	"jinr.ru/greenlab/go-wavegen/pkg/device/wavegen"
	"jinr.ru/greenlab/go-wavegen/pkg/log"
	"jinr.ru/greenlab/go-wavegen/pkg/srv/control/ifc"
)

// BusFactory connects to the register bus of a configured device
type BusFactory func(device *config.Device) (deviceifc.Bus, error)

// UDPBusFactory connects to devices over UDP
func UDPBusFactory(device *config.Device) (deviceifc.Bus, error) {
	return bus.NewUDPBusFromConfig(device)
}

type ControlServer struct {
	context.Context
	*config.Config
	state   *RegState
	buses   []deviceifc.Bus
	devices map[string]deviceifc.Device
	api     *ApiServer
}

var _ ifc.ControlServer = &ControlServer{}

// NewControlServer ...
func NewControlServer(ctx context.Context, cfg *config.Config, factory BusFactory) (*ControlServer, error) {
	log.Debug("Initializing control server for %d devices", len(cfg.Devices))

	regState, err := NewRegState(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &ControlServer{
		Context: ctx,
		Config:  cfg,
		state:   regState,
		devices: make(map[string]deviceifc.Device),
	}

	for _, device := range cfg.Devices {
		b, err := factory(device)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.buses = append(s.buses, b)
		s.devices[device.Name] = wavegen.NewDeviceFromConfig(device, newShadowBus(b, device.Name, regState))
		log.Info("Device %s at %s", device.Name, device.BusAddr())
	}

	apiServer, err := NewApiServer(ctx, cfg, s)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.api = apiServer

	return s, nil
}

func (s *ControlServer) Run() error {
	defer s.Close()

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.api.Run()
	}()

	select {
	case <-s.Context.Done():
		return s.Context.Err()
	case err := <-errChan:
		return err
	}
}

// Close releases the buses and the register database
func (s *ControlServer) Close() {
	for _, b := range s.buses {
		if closer, ok := b.(io.Closer); ok {
			closer.Close()
		}
	}
	s.state.Close()
}

func (s *ControlServer) GetDeviceByName(deviceName string) (deviceifc.Device, error) {
	if d, ok := s.devices[deviceName]; ok {
		return d, nil
	}
	return nil, config.ErrDeviceNotFound{Name: deviceName}
}

func (s *ControlServer) GetAllDevices() map[string]deviceifc.Device {
	return s.devices
}

func (s *ControlServer) SamplesPerPacket(deviceName string) (int, error) {
	device, err := s.Config.GetDeviceByName(deviceName)
	if err != nil {
		return 0, err
	}
	return int(device.SamplesPerPacket), nil
}

// RegRead returns the shadow of a settings register
func (s *ControlServer) RegRead(deviceName string, addr uint32) (*ifc.Reg, error) {
	return s.state.GetReg(deviceName, addr)
}

// RegReadAll returns the shadows of all written settings registers
func (s *ControlServer) RegReadAll(deviceName string) ([]*ifc.Reg, error) {
	return s.state.GetRegAll(deviceName)
}

// Handler returns the API handler, used to serve the API from tests
func (s *ControlServer) Handler() http.Handler {
	return s.api.Handler()
}

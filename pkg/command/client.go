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

package command

import (
	"fmt"

	"github.com/imroc/req"

	"jinr.ru/greenlab/go-wavegen/pkg/config"
	deviceifc "jinr.ru/greenlab/go-wavegen/pkg/device/ifc"
	"jinr.ru/greenlab/go-wavegen/pkg/srv/control"
	"jinr.ru/greenlab/go-wavegen/pkg/srv/control/ifc"
)

type ApiClient struct {
	*config.Config
	ApiPrefix string
}

func NewApiClient(cfg *config.Config) *ApiClient {
	return NewApiClientWithPrefix(cfg, fmt.Sprintf("http://%s:%d/api", cfg.IP, control.ApiPort))
}

// NewApiClientWithPrefix creates a client of a control server listening on a non default address
func NewApiClientWithPrefix(cfg *config.Config, apiPrefix string) *ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: apiPrefix,
	}
}

func (c *ApiClient) url(op, device string) string {
	return fmt.Sprintf("%s/%s/%s", c.ApiPrefix, op, device)
}

func (c *ApiClient) post(url string, body interface{}) error {
	if body == nil {
		_, err := check(req.Post(url))
		return err
	}
	_, err := check(req.Post(url, req.BodyJSON(body)))
	return err
}

// Devices lists the devices served by the control server
func (c *ApiClient) Devices() ([]string, error) {
	r, err := check(req.Get(fmt.Sprintf("%s/devices", c.ApiPrefix)))
	if err != nil {
		return nil, err
	}
	var names []string
	if err := r.ToJSON(&names); err != nil {
		return nil, err
	}
	return names, nil
}

// UploadWaveform sends samples to a device. samplesPerPacket 0 uses the configured fragment size.
func (c *ApiClient) UploadWaveform(device string, samples []uint32, samplesPerPacket int) error {
	return c.post(c.url("waveform", device), &control.WaveformSetup{
		Samples:          samples,
		SamplesPerPacket: samplesPerPacket,
	})
}

// SetupChirp ...
func (c *ApiClient) SetupChirp(device string, length, tuningCoef, freqOffset uint32) error {
	return c.post(c.url("chirp", device), &control.ChirpSetup{
		Len:        length,
		TuningCoef: tuningCoef,
		FreqOffset: freqOffset,
	})
}

// SetChirpParam writes a raw chirp register, param is one of counter/coef/offset
func (c *ApiClient) SetChirpParam(device, param string, value uint32) error {
	return c.post(fmt.Sprintf("%s/%s", c.url("chirp", device), param), &control.Value{Value: uint64(value)})
}

// SetSource selects awg or chirp
func (c *ApiClient) SetSource(device, source string) error {
	return c.post(fmt.Sprintf("%s/%s", c.url("source", device), source), nil)
}

// SetPolicy selects auto or manual radar policy
func (c *ApiClient) SetPolicy(device, policy string) error {
	return c.post(fmt.Sprintf("%s/%s", c.url("policy", device), policy), nil)
}

// SetPolicyWord writes a raw policy value
func (c *ApiClient) SetPolicyWord(device string, policy uint32) error {
	return c.post(c.url("policy", device), &control.Value{Value: uint64(policy)})
}

func (c *ApiClient) SetCtrlWord(device string, word uint32) error {
	return c.post(c.url("ctrl", device), &control.Value{Value: uint64(word)})
}

func (c *ApiClient) SetPrfCount(device string, count uint64) error {
	return c.post(c.url("prf", device), &control.Value{Value: count})
}

func (c *ApiClient) SetNumAdcSamples(device string, n uint32) error {
	return c.post(c.url("adc", device), &control.Value{Value: uint64(n)})
}

func (c *ApiClient) SetRxLen(device string, rxLen uint32) error {
	return c.post(c.url("rxlen", device), &control.Value{Value: uint64(rxLen)})
}

// IssueStreamCmd sends a stream command, mode is one of the control.StreamModes names
func (c *ApiClient) IssueStreamCmd(device string, setup *control.StreamSetup) error {
	return c.post(c.url("stream", device), setup)
}

// SendPulse fires a pulse now, or at ticks/seconds when one of them is set
func (c *ApiClient) SendPulse(device string, setup *control.PulseSetup) error {
	return c.post(c.url("pulse", device), setup)
}

func (c *ApiClient) ClearCommands(device string) error {
	return c.post(c.url("clear", device), nil)
}

// Status reads all readback registers of a device
func (c *ApiClient) Status(device string) (*deviceifc.Status, error) {
	r, err := check(req.Get(c.url("status", device)))
	if err != nil {
		return nil, err
	}
	status := &deviceifc.Status{}
	if err := r.ToJSON(status); err != nil {
		return nil, err
	}
	return status, nil
}

// RegRead returns the last value written to a settings register
func (c *ApiClient) RegRead(device, addr string) (*ifc.Reg, error) {
	r, err := check(req.Get(fmt.Sprintf("%s/%s", c.url("reg", device), addr)))
	if err != nil {
		return nil, err
	}
	reg := &ifc.Reg{}
	if err := r.ToJSON(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// RegReadAll returns the last values written to all settings registers
func (c *ApiClient) RegReadAll(device string) ([]*ifc.Reg, error) {
	r, err := check(req.Get(c.url("reg", device)))
	if err != nil {
		return nil, err
	}
	var regs []*ifc.Reg
	if err := r.ToJSON(&regs); err != nil {
		return nil, err
	}
	return regs, nil
}

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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jinr.ru/greenlab/go-wavegen/pkg/config"
	deviceifc "jinr.ru/greenlab/go-wavegen/pkg/device/ifc"
	"jinr.ru/greenlab/go-wavegen/pkg/device/wavegen"
	"jinr.ru/greenlab/go-wavegen/pkg/sim"
	"jinr.ru/greenlab/go-wavegen/pkg/srv/control/ifc"
)

var errUnplugged = errors.New("unplugged")

// deadBus fails every transaction
type deadBus struct{}

func (deadBus) RegWrite(addr uint32, value uint32) error { return errUnplugged }
func (deadBus) RegRead64(addr uint32) (uint64, error)    { return 0, errUnplugged }

type testServer struct {
	*httptest.Server
	ctrl *ControlServer
	regs map[string]*sim.RegisterFile
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := testConfig(t, "wavegen0", "dead")
	cfg.Devices[0].SamplesPerPacket = 16

	regs := map[string]*sim.RegisterFile{"wavegen0": sim.NewRegisterFile()}
	factory := func(device *config.Device) (deviceifc.Bus, error) {
		if r, ok := regs[device.Name]; ok {
			return r, nil
		}
		return deadBus{}, nil
	}
	ctrl, err := NewControlServer(context.Background(), cfg, factory)
	if err != nil {
		t.Fatalf("NewControlServer failed: %s", err)
	}
	ts := &testServer{
		Server: httptest.NewServer(ctrl.Handler()),
		ctrl:   ctrl,
		regs:   regs,
	}
	t.Cleanup(func() {
		ts.Server.Close()
		ctrl.Close()
	})
	return ts
}

func (ts *testServer) post(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	data := []byte{}
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			t.Fatal(err)
		}
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s failed: %s", path, err)
	}
	resp.Body.Close()
	return resp
}

func (ts *testServer) get(t *testing.T, path string, v interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %s", path, err)
	}
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("Decoding %s failed: %s", path, err)
		}
	}
	return resp
}

func expectStatus(t *testing.T, resp *http.Response, code int) {
	t.Helper()
	if resp.StatusCode != code {
		t.Errorf("%s %s: expected %d, got %d", resp.Request.Method, resp.Request.URL.Path, code, resp.StatusCode)
	}
}

func TestApiWaveformAndStatus(t *testing.T) {
	ts := newTestServer(t)

	samples := make([]uint32, 40)
	for i := range samples {
		samples[i] = uint32(i)
	}
	expectStatus(t, ts.post(t, "/api/waveform/wavegen0", &WaveformSetup{Samples: samples}), http.StatusOK)
	if got := ts.regs["wavegen0"].Waveform(); len(got) != 40 || got[39] != 39 {
		t.Errorf("Waveform was not uploaded: %v", got)
	}
	expectStatus(t, ts.post(t, "/api/source/wavegen0/awg", nil), http.StatusOK)
	expectStatus(t, ts.post(t, "/api/rxlen/wavegen0", &Value{Value: 100}), http.StatusOK)

	status := &deviceifc.Status{}
	expectStatus(t, ts.get(t, "/api/status/wavegen0", status), http.StatusOK)
	if status.Source != "AWG" || status.WaveformLen != 40 || status.AdcSamples != 59 {
		t.Errorf("Unexpected status %+v", status)
	}
}

func TestApiChirpShadow(t *testing.T) {
	ts := newTestServer(t)

	expectStatus(t, ts.post(t, "/api/chirp/wavegen0", &ChirpSetup{Len: 100, TuningCoef: 7, FreqOffset: 8}), http.StatusOK)
	expectStatus(t, ts.post(t, "/api/chirp/wavegen0/coef", &Value{Value: 9}), http.StatusOK)
	expectStatus(t, ts.post(t, "/api/waveform/wavegen0", &WaveformSetup{Samples: []uint32{1, 2, 3}}), http.StatusOK)

	reg := &ifc.Reg{}
	expectStatus(t, ts.get(t, "/api/reg/wavegen0/200", reg), http.StatusOK)
	if reg.Value != 99 || reg.Name != "CH_COUNTER" {
		t.Errorf("Unexpected shadow %+v", reg)
	}
	expectStatus(t, ts.get(t, "/api/reg/wavegen0/0xc9", reg), http.StatusOK)
	if reg.Value != 9 {
		t.Errorf("Unexpected shadow %+v", reg)
	}

	var regs []*ifc.Reg
	expectStatus(t, ts.get(t, "/api/reg/wavegen0", &regs), http.StatusOK)
	if len(regs) != 3 {
		t.Errorf("Only settings writes must be shadowed, got %d registers", len(regs))
	}
	expectStatus(t, ts.get(t, "/api/reg/wavegen0/206", nil), http.StatusNotFound)
	expectStatus(t, ts.get(t, "/api/reg/wavegen0/xyz", nil), http.StatusBadRequest)
}

func TestApiStreamAndPulse(t *testing.T) {
	ts := newTestServer(t)
	regs := ts.regs["wavegen0"]

	expectStatus(t, ts.post(t, "/api/stream/wavegen0", &StreamSetup{Mode: "start_continuous", Now: true}), http.StatusOK)
	if !regs.Streaming() {
		t.Errorf("Stream was not started")
	}
	expectStatus(t, ts.post(t, "/api/stream/wavegen0", &StreamSetup{Mode: "stop_continuous", Seconds: 1}), http.StatusOK)
	history := regs.History()
	if stop := history[len(history)-2]; stop.Ticks != uint64(config.DefaultTickRate) {
		t.Errorf("Seconds must be converted with the device rate, got %d ticks", stop.Ticks)
	}
	expectStatus(t, ts.post(t, "/api/stream/wavegen0", &StreamSetup{Mode: "bogus"}), http.StatusBadRequest)

	pulses := regs.Pulses()
	expectStatus(t, ts.post(t, "/api/pulse/wavegen0", nil), http.StatusOK)
	if regs.Pulses() != pulses+1 {
		t.Errorf("Pulse was not fired")
	}
	ticks := uint64(1000)
	expectStatus(t, ts.post(t, "/api/pulse/wavegen0", &PulseSetup{Ticks: &ticks}), http.StatusOK)
	if queued := regs.Queued(); len(queued) != 1 || queued[0].Ticks != 1000 {
		t.Errorf("Timed pulse was not queued: %+v", queued)
	}
	expectStatus(t, ts.post(t, "/api/clear/wavegen0", nil), http.StatusOK)
	if len(regs.Queued()) != 0 {
		t.Errorf("Queue was not cleared")
	}
}

func TestApiErrors(t *testing.T) {
	ts := newTestServer(t)

	expectStatus(t, ts.post(t, "/api/policy/nope/auto", nil), http.StatusNotFound)
	expectStatus(t, ts.post(t, "/api/policy/wavegen0/sometimes", nil), http.StatusBadRequest)
	expectStatus(t, ts.post(t, "/api/source/wavegen0/noise", nil), http.StatusBadRequest)
	expectStatus(t, ts.post(t, "/api/chirp/wavegen0/phase", &Value{Value: 1}), http.StatusBadRequest)
	expectStatus(t, ts.post(t, "/api/adc/wavegen0", &Value{Value: 0}), http.StatusBadRequest)
	expectStatus(t, ts.post(t, "/api/ctrl/wavegen0", &Value{Value: 1 << 40}), http.StatusBadRequest)
	expectStatus(t, ts.post(t, "/api/waveform/wavegen0", &WaveformSetup{}), http.StatusBadRequest)
	expectStatus(t, ts.post(t, "/api/waveform/wavegen0", &WaveformSetup{Samples: []uint32{1}, SamplesPerPacket: -1}), http.StatusBadRequest)
	expectStatus(t, ts.post(t, "/api/policy/dead/manual", nil), http.StatusBadGateway)
	expectStatus(t, ts.get(t, "/api/status/dead", nil), http.StatusBadGateway)

	resp, err := http.Post(ts.URL+"/api/prf/wavegen0", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestApiSettings(t *testing.T) {
	ts := newTestServer(t)
	regs := ts.regs["wavegen0"]

	expectStatus(t, ts.post(t, "/api/prf/wavegen0", &Value{Value: 0x0000000500000006}), http.StatusOK)
	expectStatus(t, ts.post(t, "/api/policy/wavegen0", &Value{Value: 3}), http.StatusOK)
	expectStatus(t, ts.post(t, "/api/ctrl/wavegen0", &Value{Value: 0x310}), http.StatusOK)
	expectStatus(t, ts.post(t, "/api/adc/wavegen0", &Value{Value: 10}), http.StatusOK)

	for addr, expected := range map[uint32]uint32{
		wavegen.RegPrfInt.Addr():      5,
		wavegen.RegPrfFrac.Addr():     6,
		wavegen.RegRadarPolicy.Addr(): 3,
		wavegen.RegAwgCtrlWord.Addr(): 0x310,
		wavegen.RegAdcSample.Addr():   9,
	} {
		if value, _ := regs.Setting(addr); value != expected {
			t.Errorf("Register %s: expected %d, got %d", wavegen.RegName(addr), expected, value)
		}
	}

	var names []string
	expectStatus(t, ts.get(t, "/api/devices", &names), http.StatusOK)
	if len(names) != 2 || names[0] != "wavegen0" {
		t.Errorf("Unexpected devices %v", names)
	}
}

func TestApiDocs(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/swagger.json")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(string(body), "go-wavegen API") {
		t.Errorf("Unexpected API document %s", body)
	}
	expectStatus(t, ts.get(t, "/docs", nil), http.StatusOK)
	expectStatus(t, ts.get(t, "/swagger.yaml", nil), http.StatusOK)
}

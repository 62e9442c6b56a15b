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

// go-wavegen API
//
// # RESTful APIs to interact with go-wavegen control server
//
// Schemes: http
// Host: localhost:8000
// Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package control

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/go-openapi/loads"
	"github.com/go-openapi/runtime/middleware"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-wavegen/pkg/config"
	deviceifc "jinr.ru/greenlab/go-wavegen/pkg/device/ifc"
	"jinr.ru/greenlab/go-wavegen/pkg/device/wavegen"
	"jinr.ru/greenlab/go-wavegen/pkg/log"
	"jinr.ru/greenlab/go-wavegen/pkg/srv"
	"jinr.ru/greenlab/go-wavegen/pkg/srv/control/ifc"
)

const (
	ApiPort = 8000
)

//go:embed swagger.yaml
var swaggerYAML []byte

// Value is the body of single value settings
type Value struct {
	Value uint64 `json:"value"`
}

type WaveformSetup struct {
	Samples []uint32 `json:"samples"`
	// SamplesPerPacket overrides the configured fragment size, 0 keeps it
	SamplesPerPacket int `json:"samplesPerPacket"`
}

type ChirpSetup struct {
	Len        uint32 `json:"len"`
	TuningCoef uint32 `json:"tuningCoef"`
	FreqOffset uint32 `json:"freqOffset"`
}

type StreamSetup struct {
	Mode     string `json:"mode"`
	Now      bool   `json:"now"`
	NumSamps uint32 `json:"numSamps"`
	Ticks    uint64 `json:"ticks"`
	// Seconds is converted to ticks with the device rate when Ticks is 0
	Seconds float64 `json:"seconds"`
}

// PulseSetup without ticks and seconds fires an immediate pulse
type PulseSetup struct {
	Ticks   *uint64  `json:"ticks,omitempty"`
	Seconds *float64 `json:"seconds,omitempty"`
}

// StreamModes maps API stream mode names to stream modes
var StreamModes = map[string]deviceifc.StreamMode{
	"start_continuous":   deviceifc.StreamModeStartContinuous,
	"stop_continuous":    deviceifc.StreamModeStopContinuous,
	"num_samps_and_done": deviceifc.StreamModeNumSampsAndDone,
	"num_samps_and_more": deviceifc.StreamModeNumSampsAndMore,
}

type ApiServer struct {
	context.Context
	*config.Config
	*mux.Router
	ctrl     ifc.ControlServer
	specJSON []byte
}

var _ ifc.ApiServer = &ApiServer{}

func NewApiServer(ctx context.Context, cfg *config.Config, ctrl ifc.ControlServer) (*ApiServer, error) {
	log.Info("Initializing API server with address: %s port: %d", cfg.IP, ApiPort)

	specJSON, err := yaml.YAMLToJSON(swaggerYAML)
	if err != nil {
		return nil, err
	}
	doc, err := loads.Analyzed(json.RawMessage(specJSON), "")
	if err != nil {
		return nil, err
	}
	log.Debug("Loaded API document %s %s", doc.Spec().Info.Title, doc.Version())

	s := &ApiServer{
		Context:  ctx,
		Config:   cfg,
		ctrl:     ctrl,
		specJSON: specJSON,
	}
	s.configureRouter()
	return s, nil
}

// Handler returns the router wrapped with access logging and panic recovery
func (s *ApiServer) Handler() http.Handler {
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(
		handlers.LoggingHandler(log.Writer(), s.Router))
}

// Start
func (s *ApiServer) Run() error {
	log.Info("Starting API server: address: %s port: %d", s.Config.IP, ApiPort)
	httpServer := &http.Server{
		Handler: s.Handler(),
		Addr:    fmt.Sprintf("%s:%d", s.Config.IP, ApiPort),
	}
	go func() {
		<-s.Context.Done()
		httpServer.Close()
	}()
	return httpServer.ListenAndServe()
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	subRouter.HandleFunc("/devices", s.handleDevices()).Methods("GET")
	subRouter.HandleFunc("/waveform/{device}", s.handleWaveform()).Methods("POST")
	subRouter.HandleFunc("/chirp/{device}", s.handleChirp()).Methods("POST")
	subRouter.HandleFunc("/chirp/{device}/{param}", s.handleChirpParam()).Methods("POST")
	subRouter.HandleFunc("/source/{device}/{source}", s.handleSource()).Methods("POST")
	subRouter.HandleFunc("/policy/{device}/{policy}", s.handlePolicy()).Methods("POST")
	subRouter.HandleFunc("/{setting:ctrl|policy|prf|adc|rxlen}/{device}", s.handleSetting()).Methods("POST")
	subRouter.HandleFunc("/stream/{device}", s.handleStream()).Methods("POST")
	subRouter.HandleFunc("/pulse/{device}", s.handlePulse()).Methods("POST")
	subRouter.HandleFunc("/clear/{device}", s.handleClear()).Methods("POST")
	subRouter.HandleFunc("/status/{device}", s.handleStatus()).Methods("GET")
	subRouter.HandleFunc("/reg/{device}", s.handleRegReadAll()).Methods("GET")
	subRouter.HandleFunc("/reg/{device}/{addr}", s.handleRegRead()).Methods("GET")

	s.Router.HandleFunc("/swagger.json", s.handleSpec("application/json", s.specJSON)).Methods("GET")
	s.Router.HandleFunc("/swagger.yaml", s.handleSpec("application/x-yaml", swaggerYAML)).Methods("GET")
	s.Router.Handle("/docs", middleware.Redoc(middleware.RedocOpts{
		Path:    "docs",
		SpecURL: "/swagger.json",
		Title:   "go-wavegen API",
	}, http.NotFoundHandler())).Methods("GET")
}

// httpError maps device and server errors to HTTP status codes
func httpError(w http.ResponseWriter, err error) {
	var (
		invalid    wavegen.ErrInvalidArgument
		unknown    srv.ErrUnknownOperation
		notFound   config.ErrDeviceNotFound
		notWritten ErrRegNotWritten
	)
	code := http.StatusBadGateway
	switch {
	case errors.As(err, &invalid), errors.As(err, &unknown):
		code = http.StatusBadRequest
	case errors.As(err, &notFound), errors.As(err, &notWritten):
		code = http.StatusNotFound
	}
	http.Error(w, err.Error(), code)
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return wavegen.ErrInvalidArgument{What: fmt.Sprintf("malformed request body: %s", err)}
	}
	return nil
}

func value32(v Value) (uint32, error) {
	if v.Value > math.MaxUint32 {
		return 0, wavegen.ErrInvalidArgument{What: fmt.Sprintf("value %d does not fit into 32 bits", v.Value)}
	}
	return uint32(v.Value), nil
}

// deviceOp resolves the device of a request and applies op to it
func (s *ApiServer) deviceOp(w http.ResponseWriter, r *http.Request, op func(deviceifc.Device) error) {
	device, err := s.ctrl.GetDeviceByName(mux.Vars(r)["device"])
	if err != nil {
		httpError(w, err)
		return
	}
	if err := op(device); err != nil {
		httpError(w, err)
	}
}

func (s *ApiServer) handleSpec(contentType string, data []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Write(data)
	}
}

func (s *ApiServer) handleDevices() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names := []string{}
		for _, d := range s.Config.Devices {
			names = append(names, d.Name)
		}
		json.NewEncoder(w).Encode(names)
	}
}

func (s *ApiServer) handleWaveform() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		setup := &WaveformSetup{}
		if err := decodeBody(r, setup); err != nil {
			httpError(w, err)
			return
		}
		log.Debug("Handling waveform upload request: device: %s samples: %d", vars["device"], len(setup.Samples))

		spp := setup.SamplesPerPacket
		if spp == 0 {
			configured, err := s.ctrl.SamplesPerPacket(vars["device"])
			if err != nil {
				httpError(w, err)
				return
			}
			spp = configured
		}
		s.deviceOp(w, r, func(d deviceifc.Device) error {
			if spp == 0 {
				return d.UploadWaveform(setup.Samples)
			}
			return d.UploadWaveform(setup.Samples, spp)
		})
	}
}

func (s *ApiServer) handleChirp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setup := &ChirpSetup{}
		if err := decodeBody(r, setup); err != nil {
			httpError(w, err)
			return
		}
		log.Debug("Handling chirp request: device: %s setup: %+v", mux.Vars(r)["device"], setup)
		s.deviceOp(w, r, func(d deviceifc.Device) error {
			return d.SetupChirp(setup.Len, setup.TuningCoef, setup.FreqOffset)
		})
	}
}

func (s *ApiServer) handleChirpParam() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		v := Value{}
		if err := decodeBody(r, &v); err != nil {
			httpError(w, err)
			return
		}
		value, err := value32(v)
		if err != nil {
			httpError(w, err)
			return
		}
		log.Debug("Handling chirp %s request: device: %s value: %d", vars["param"], vars["device"], value)
		s.deviceOp(w, r, func(d deviceifc.Device) error {
			switch vars["param"] {
			case "counter":
				return d.SetChirpCounter(value)
			case "coef":
				return d.SetChirpTuningCoef(value)
			case "offset":
				return d.SetChirpFreqOffset(value)
			}
			return srv.ErrUnknownOperation{What: "Wrong chirp parameter. Must be one of counter/coef/offset"}
		})
	}
}

func (s *ApiServer) handleSource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		log.Debug("Handling source request: device: %s source: %s", vars["device"], vars["source"])
		s.deviceOp(w, r, func(d deviceifc.Device) error {
			switch vars["source"] {
			case "awg":
				return d.SetSrcAwg()
			case "chirp":
				return d.SetSrcChirp()
			}
			return srv.ErrUnknownOperation{What: "Wrong source. Must be one of awg/chirp"}
		})
	}
}

func (s *ApiServer) handlePolicy() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		log.Debug("Handling policy request: device: %s policy: %s", vars["device"], vars["policy"])
		s.deviceOp(w, r, func(d deviceifc.Device) error {
			switch vars["policy"] {
			case "auto":
				return d.SetPolicyAuto()
			case "manual":
				return d.SetPolicyManual()
			}
			return srv.ErrUnknownOperation{What: "Wrong policy. Must be one of auto/manual"}
		})
	}
}

func (s *ApiServer) handleSetting() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		v := Value{}
		if err := decodeBody(r, &v); err != nil {
			httpError(w, err)
			return
		}
		log.Debug("Handling %s request: device: %s value: %d", vars["setting"], vars["device"], v.Value)
		s.deviceOp(w, r, func(d deviceifc.Device) error {
			if vars["setting"] == "prf" {
				return d.SetPrfCount(v.Value)
			}
			value, err := value32(v)
			if err != nil {
				return err
			}
			switch vars["setting"] {
			case "ctrl":
				return d.SetCtrlWord(value)
			case "policy":
				return d.SetPolicy(value)
			case "adc":
				return d.SetNumAdcSamples(value)
			case "rxlen":
				return d.SetRxLen(value)
			}
			return srv.ErrUnknownOperation{What: fmt.Sprintf("Unknown setting %s", vars["setting"])}
		})
	}
}

func (s *ApiServer) handleStream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setup := &StreamSetup{}
		if err := decodeBody(r, setup); err != nil {
			httpError(w, err)
			return
		}
		log.Debug("Handling stream request: device: %s setup: %+v", mux.Vars(r)["device"], setup)
		mode, ok := StreamModes[setup.Mode]
		if !ok {
			httpError(w, srv.ErrUnknownOperation{
				What: "Wrong stream mode. Must be one of start_continuous/stop_continuous/num_samps_and_done/num_samps_and_more",
			})
			return
		}
		s.deviceOp(w, r, func(d deviceifc.Device) error {
			ticks := setup.Ticks
			if ticks == 0 {
				ticks = d.TimeToTicks(setup.Seconds)
			}
			return d.IssueStreamCmd(deviceifc.StreamCmd{
				Mode:      mode,
				StreamNow: setup.Now,
				NumSamps:  setup.NumSamps,
				Ticks:     ticks,
			})
		})
	}
}

func (s *ApiServer) handlePulse() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setup := &PulseSetup{}
		if err := json.NewDecoder(r.Body).Decode(setup); err != nil && err != io.EOF {
			httpError(w, wavegen.ErrInvalidArgument{What: fmt.Sprintf("malformed request body: %s", err)})
			return
		}
		log.Debug("Handling pulse request: device: %s", mux.Vars(r)["device"])
		s.deviceOp(w, r, func(d deviceifc.Device) error {
			switch {
			case setup.Ticks != nil:
				return d.SendPulse(*setup.Ticks)
			case setup.Seconds != nil:
				return d.SendPulse(d.TimeToTicks(*setup.Seconds))
			}
			return d.SendPulse()
		})
	}
}

func (s *ApiServer) handleClear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling clear commands request: device: %s", mux.Vars(r)["device"])
		s.deviceOp(w, r, func(d deviceifc.Device) error {
			return d.ClearCommands()
		})
	}
}

func (s *ApiServer) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling status request: device: %s", mux.Vars(r)["device"])
		s.deviceOp(w, r, func(d deviceifc.Device) error {
			status, err := d.GetStatus()
			if err != nil {
				return err
			}
			return json.NewEncoder(w).Encode(status)
		})
	}
}

func (s *ApiServer) handleRegRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		log.Debug("Handling reg read request: device: %s, addr: %s", vars["device"], vars["addr"])

		addr, err := strconv.ParseUint(vars["addr"], 0, 32)
		if err != nil {
			httpError(w, wavegen.ErrInvalidArgument{What: fmt.Sprintf("bad register address %s", vars["addr"])})
			return
		}
		reg, err := s.ctrl.RegRead(vars["device"], uint32(addr))
		if err != nil {
			httpError(w, err)
			return
		}
		json.NewEncoder(w).Encode(reg)
	}
}

func (s *ApiServer) handleRegReadAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		log.Debug("Handling reg read all request: device: %s", vars["device"])

		regs, err := s.ctrl.RegReadAll(vars["device"])
		if err != nil {
			httpError(w, err)
			return
		}
		json.NewEncoder(w).Encode(regs)
	}
}

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
	"errors"
	"path/filepath"
	"testing"

	"jinr.ru/greenlab/go-wavegen/pkg/config"
)

func testConfig(t *testing.T, names ...string) *config.Config {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.SetPath(filepath.Join(t.TempDir(), config.ConfigFile))
	cfg.DBPath = filepath.Join(t.TempDir(), config.DBFile)
	cfg.Devices = nil
	for _, name := range names {
		cfg.Devices = append(cfg.Devices, &config.Device{Name: name, IP: "127.0.0.1", Port: config.DefaultBusPort})
	}
	return cfg
}

func TestRegState(t *testing.T) {
	state, err := NewRegState(context.Background(), testConfig(t, "dev0", "dev1"))
	if err != nil {
		t.Fatalf("NewRegState failed: %s", err)
	}
	defer state.Close()

	if err := state.SetReg("dev0", 203, 0x310); err != nil {
		t.Fatalf("SetReg failed: %s", err)
	}
	if err := state.SetReg("dev0", 200, 99); err != nil {
		t.Fatalf("SetReg failed: %s", err)
	}
	if err := state.SetReg("dev0", 203, 0x10); err != nil {
		t.Fatalf("SetReg failed: %s", err)
	}

	reg, err := state.GetReg("dev0", 203)
	if err != nil {
		t.Fatalf("GetReg failed: %s", err)
	}
	if reg.Value != 0x10 || reg.Name != "AWG_CTRL_WORD" {
		t.Errorf("Unexpected register %+v", reg)
	}
	addr, value := reg.Hex()
	if addr != "0x00cb" || value != "0x00000010" {
		t.Errorf("Unexpected hex %s %s", addr, value)
	}

	regs, err := state.GetRegAll("dev0")
	if err != nil {
		t.Fatalf("GetRegAll failed: %s", err)
	}
	if len(regs) != 2 || regs[0].Addr != 200 || regs[1].Addr != 203 {
		t.Errorf("Registers must be ordered by address, got %+v %+v", regs[0], regs[1])
	}

	if regs, err := state.GetRegAll("dev1"); err != nil || len(regs) != 0 {
		t.Errorf("Other devices must not see the writes: %v %v", regs, err)
	}
}

func TestRegStateErrors(t *testing.T) {
	state, err := NewRegState(context.Background(), testConfig(t, "dev0"))
	if err != nil {
		t.Fatalf("NewRegState failed: %s", err)
	}
	defer state.Close()

	var notWritten ErrRegNotWritten
	if _, err := state.GetReg("dev0", 200); !errors.As(err, &notWritten) {
		t.Errorf("Expected ErrRegNotWritten, got %v", err)
	}
	var notFound config.ErrDeviceNotFound
	if err := state.SetReg("nope", 200, 1); !errors.As(err, &notFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
	if _, err := state.GetRegAll("nope"); !errors.As(err, &notFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
}

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

package sim_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"jinr.ru/greenlab/go-wavegen/pkg/bus"
	"jinr.ru/greenlab/go-wavegen/pkg/device/wavegen"
	"jinr.ru/greenlab/go-wavegen/pkg/layers"
	"jinr.ru/greenlab/go-wavegen/pkg/sim"
)

func startServer(t *testing.T, regs *sim.RegisterFile) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s, err := sim.NewServer(ctx, "127.0.0.1:0", regs)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	go s.Run()
	select {
	case <-s.Ready():
	case <-time.After(5 * time.Second):
		t.Fatalf("Simulator did not start")
	}
	return s.LocalAddr().String()
}

func TestDeviceOverUDP(t *testing.T) {
	regs := sim.NewRegisterFile()
	addr := startServer(t, regs)

	b, err := bus.NewUDPBus(addr, time.Second)
	if err != nil {
		t.Fatalf("NewUDPBus failed: %v", err)
	}
	defer b.Close()

	d := wavegen.NewDevice("udp", b)
	wfrm := samples(50)
	if err := d.UploadWaveform(wfrm, 16); err != nil {
		t.Fatalf("UploadWaveform failed: %v", err)
	}
	if !equal(regs.Waveform(), wfrm) {
		t.Errorf("Waveform was not delivered")
	}
	if err := d.SetupChirp(100, 2, 3); err != nil {
		t.Fatalf("SetupChirp failed: %v", err)
	}
	if value, _ := regs.Setting(wavegen.RegChCounter.Addr()); value != 99 {
		t.Errorf("Unexpected chirp counter %d", value)
	}
	wfrmLen, err := d.GetWaveformLen()
	if err != nil || wfrmLen != 50 {
		t.Errorf("Unexpected waveform length %d: %v", wfrmLen, err)
	}
}

func TestUDPBusNack(t *testing.T) {
	regs := sim.NewRegisterFile()
	addr := startServer(t, regs)

	b, err := bus.NewUDPBus(addr, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	_, err = b.RegRead64(42)
	var nack bus.ErrNack
	if !errors.As(err, &nack) || nack.Op.Addr != 42 {
		t.Errorf("Expected ErrNack, got %v", err)
	}

	d := wavegen.NewDevice("udp", b)
	_, err = wavegen.NewDevice("strict", b, wavegen.WithReadbackCheck(wavegen.RejectZero)).GetState()
	var readErr wavegen.ErrDeviceRead
	if !errors.As(err, &readErr) {
		t.Errorf("Expected ErrDeviceRead for an idle state, got %v", err)
	}
	// a fragment with a foreign command tag is rejected by the device
	if err := b.RegWrite(wavegen.RegAwgReload.Addr(), 0x11110000); err != nil {
		t.Fatal(err)
	}
	if err := d.SetNumAdcSamples(1); err != nil {
		t.Fatal(err)
	}
	if err := b.RegWrite(wavegen.RegAwgReload.Addr(), 0); !errors.As(err, &nack) {
		t.Errorf("Expected ErrNack for a bad header, got %v", err)
	}
	if err := d.UploadWaveform([]uint32{1}); err != nil {
		t.Errorf("Upload after a rejected one failed: %v", err)
	}
	var transport wavegen.ErrTransport
	if _, err := d.GetNumAdcSamples(); errors.As(err, &transport) {
		t.Errorf("Unexpected transport error %v", err)
	}
}

func TestUDPBatch(t *testing.T) {
	regs := sim.NewRegisterFile()
	addr := startServer(t, regs)

	b, err := bus.NewUDPBus(addr, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	ops, err := b.Transact([]*layers.BusOp{
		{Addr: wavegen.RegAwgCtrlWord.Addr(), Value: uint64(wavegen.CtrlWordSelAwg)},
		{Read: true, Addr: wavegen.RbAwgCtrl.Addr()},
	})
	if err != nil {
		t.Fatalf("Transact failed: %v", err)
	}
	if ops[1].Value != uint64(wavegen.CtrlWordSelAwg) {
		t.Errorf("Read in the same frame must see the preceding write, got 0x%x", ops[1].Value)
	}
}

func TestUDPBusTimeout(t *testing.T) {
	// a socket nobody reads from
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	b, err := bus.NewUDPBus(conn.LocalAddr().String(), 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	var timeout bus.ErrTimeout
	if err := b.RegWrite(200, 1); !errors.As(err, &timeout) {
		t.Errorf("Expected ErrTimeout, got %v", err)
	}
	if _, err := b.RegRead64(5); !errors.As(err, &timeout) || timeout.Seq != 1 {
		t.Errorf("Expected ErrTimeout for the second request, got %v", err)
	}
}

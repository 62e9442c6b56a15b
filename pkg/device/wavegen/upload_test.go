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

package wavegen_test

import (
	"errors"
	"sync"
	"testing"

	"jinr.ru/greenlab/go-wavegen/pkg/device/wavegen"
)

func makeSamples(n int, base uint32) []uint32 {
	samples := make([]uint32, n)
	for i := range samples {
		samples[i] = base + uint32(i)
	}
	return samples
}

func TestUploadWaveformSinglePacket(t *testing.T) {
	bus := newRecordingBus()
	d := wavegen.NewDevice("test", bus)
	samples := []uint32{0x11, 0x22, 0x33}

	if err := d.UploadWaveform(samples); err != nil {
		t.Fatalf("UploadWaveform failed: %v", err)
	}

	expected := []regWrite{
		{212, 0x57440000}, // cmd | id 0
		{212, 0x00000003}, // ind 0 | len 3
		{212, 0x11},
		{212, 0x22},
		{213, 0x33},
	}
	writes := bus.Writes()
	if len(writes) != len(expected) {
		t.Fatalf("Expected %d writes, got %d: %v", len(expected), len(writes), writes)
	}
	for i := range expected {
		if writes[i] != expected[i] {
			t.Errorf("Write %d: expected %+v, got %+v", i, expected[i], writes[i])
		}
	}
	if h := d.Header(); h.ID != 1 {
		t.Errorf("Upload id must be incremented once, got %d", h.ID)
	}
}

func TestUploadWaveformOneSample(t *testing.T) {
	bus := newRecordingBus()
	d := wavegen.NewDevice("test", bus)
	if err := d.UploadWaveform([]uint32{0xabcd}); err != nil {
		t.Fatalf("UploadWaveform failed: %v", err)
	}
	fragments := parseFragments(t, bus.Writes())
	if len(fragments) != 1 || len(fragments[0].Samples) != 1 || fragments[0].Samples[0] != 0xabcd {
		t.Errorf("Unexpected fragments %+v", fragments)
	}
}

func TestUploadWaveformFragmentation(t *testing.T) {
	for n := 1; n <= 40; n++ {
		for spp := 1; spp <= 12; spp++ {
			bus := newRecordingBus()
			d := wavegen.NewDevice("test", bus)
			samples := makeSamples(n, 0x1000)

			if err := d.UploadWaveform(samples, spp); err != nil {
				t.Fatalf("N=%d P=%d: UploadWaveform failed: %v", n, spp, err)
			}

			fragments := parseFragments(t, bus.Writes())
			expectedCount := (n + spp - 1) / spp
			if len(fragments) != expectedCount {
				t.Fatalf("N=%d P=%d: expected %d fragments, got %d", n, spp, expectedCount, len(fragments))
			}

			var joined []uint32
			for j, f := range fragments {
				if f.Header.Ind != uint16(j) {
					t.Errorf("N=%d P=%d: fragment %d has index %d", n, spp, j, f.Header.Ind)
				}
				if f.Header.Len != uint16(n) {
					t.Errorf("N=%d P=%d: fragment %d has length %d", n, spp, j, f.Header.Len)
				}
				if f.Header.Cmd != wavegen.WaveformWriteCmd || f.Header.ID != 0 {
					t.Errorf("N=%d P=%d: fragment %d has header %+v", n, spp, j, f.Header)
				}
				if j < expectedCount-1 && len(f.Samples) != spp {
					t.Errorf("N=%d P=%d: full fragment %d has %d samples", n, spp, j, len(f.Samples))
				}
				joined = append(joined, f.Samples...)
			}
			if len(joined) != n {
				t.Fatalf("N=%d P=%d: reassembled %d samples", n, spp, len(joined))
			}
			for i := range samples {
				if joined[i] != samples[i] {
					t.Fatalf("N=%d P=%d: sample %d is 0x%x, expected 0x%x", n, spp, i, joined[i], samples[i])
				}
			}
		}
	}
}

func TestUploadWaveformIDIncrementsOncePerUpload(t *testing.T) {
	bus := newRecordingBus()
	d := wavegen.NewDevice("test", bus)
	samples := makeSamples(10, 0)

	if err := d.UploadWaveform(samples, 3); err != nil {
		t.Fatalf("UploadWaveform failed: %v", err)
	}
	first := len(bus.Writes())
	if err := d.UploadWaveform(samples, 3); err != nil {
		t.Fatalf("UploadWaveform failed: %v", err)
	}

	writes := bus.Writes()
	a := parseFragments(t, writes[:first])
	b := parseFragments(t, writes[first:])
	for _, f := range a {
		if f.Header.ID != 0 {
			t.Errorf("First upload fragment has id %d", f.Header.ID)
		}
	}
	for _, f := range b {
		if f.Header.ID != 1 {
			t.Errorf("Second upload fragment has id %d", f.Header.ID)
		}
	}
	if b[0].Header.Ind != 0 {
		t.Errorf("Fragment index must restart at 0, got %d", b[0].Header.Ind)
	}
}

func TestUploadWaveformIDWraps(t *testing.T) {
	bus := newRecordingBus()
	d := wavegen.NewDevice("test", bus)
	for i := 0; i < 0x10000; i++ {
		if err := d.UploadWaveform([]uint32{1}); err != nil {
			t.Fatalf("UploadWaveform %d failed: %v", i, err)
		}
	}
	if h := d.Header(); h.ID != 0 {
		t.Errorf("Upload id must wrap at 16 bits, got %d", h.ID)
	}
}

func TestUploadWaveformInvalidArguments(t *testing.T) {
	bus := newRecordingBus()
	d := wavegen.NewDevice("test", bus)

	cases := []struct {
		name    string
		samples []uint32
		spp     []int
	}{
		{"empty", nil, nil},
		{"empty fragmented", []uint32{}, []int{4}},
		{"zero packet size", []uint32{1, 2}, []int{0}},
		{"negative packet size", []uint32{1, 2}, []int{-1}},
		{"two packet sizes", []uint32{1, 2}, []int{1, 2}},
	}
	for _, c := range cases {
		err := d.UploadWaveform(c.samples, c.spp...)
		var invalid wavegen.ErrInvalidArgument
		if !errors.As(err, &invalid) {
			t.Errorf("%s: expected ErrInvalidArgument, got %v", c.name, err)
		}
	}
	if len(bus.Writes()) != 0 {
		t.Errorf("Rejected uploads must not touch the bus")
	}
	if h := d.Header(); h.ID != 0 {
		t.Errorf("Rejected uploads must not change the upload id")
	}
}

func TestUploadWaveformTransportError(t *testing.T) {
	bus := newRecordingBus()
	bus.failAt = 4
	d := wavegen.NewDevice("test", bus)

	err := d.UploadWaveform(makeSamples(8, 0), 4)
	var transport wavegen.ErrTransport
	if !errors.As(err, &transport) {
		t.Fatalf("Expected ErrTransport, got %v", err)
	}
	if !errors.Is(err, errBusDown) {
		t.Errorf("ErrTransport must wrap the bus error")
	}
	if len(bus.Writes()) != 4 {
		t.Errorf("Upload must stop at the failed write, got %d writes", len(bus.Writes()))
	}
	if h := d.Header(); h.ID != 0 {
		t.Errorf("Failed upload must not increment the upload id")
	}
}

func TestUploadWaveformConcurrentUploadsDoNotInterleave(t *testing.T) {
	bus := newRecordingBus()
	d := wavegen.NewDevice("test", bus)

	var wg sync.WaitGroup
	for _, base := range []uint32{0xa0000000, 0xb0000000, 0xc0000000} {
		wg.Add(1)
		go func(base uint32) {
			defer wg.Done()
			if err := d.UploadWaveform(makeSamples(50, base), 7); err != nil {
				t.Errorf("UploadWaveform failed: %v", err)
			}
		}(base)
	}
	wg.Wait()

	fragments := parseFragments(t, bus.Writes())
	ids := make(map[uint16]uint32)
	for _, f := range fragments {
		base := f.Samples[0] & 0xf0000000
		for _, s := range f.Samples {
			if s&0xf0000000 != base {
				t.Fatalf("Fragment mixes samples of different uploads: %v", f.Samples)
			}
		}
		if prev, ok := ids[f.Header.ID]; ok && prev != base {
			t.Fatalf("Upload id %d is shared by two uploads", f.Header.ID)
		}
		ids[f.Header.ID] = base
	}
	if len(ids) != 3 {
		t.Errorf("Expected 3 distinct upload ids, got %d", len(ids))
	}
}

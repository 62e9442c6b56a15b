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

var errBusDown = errors.New("bus down")

type regWrite struct {
	Addr  uint32
	Value uint32
}

// recordingBus records writes in order and serves readbacks from a map
type recordingBus struct {
	mutex     sync.Mutex
	writes    []regWrite
	readbacks map[uint32]uint64
	failAt    int // index of the write that fails, -1 never
}

func newRecordingBus() *recordingBus {
	return &recordingBus{
		readbacks: make(map[uint32]uint64),
		failAt:    -1,
	}
}

func (b *recordingBus) RegWrite(addr, value uint32) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.failAt == len(b.writes) {
		return errBusDown
	}
	b.writes = append(b.writes, regWrite{Addr: addr, Value: value})
	return nil
}

func (b *recordingBus) RegRead64(addr uint32) (uint64, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.readbacks[addr], nil
}

func (b *recordingBus) Writes() []regWrite {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	result := make([]regWrite, len(b.writes))
	copy(result, b.writes)
	return result
}

type fragment struct {
	Header  wavegen.WaveformHeader
	Samples []uint32
}

// parseFragments splits recorded reload writes into framed fragments
func parseFragments(t *testing.T, writes []regWrite) []fragment {
	t.Helper()
	reload := wavegen.RegMap[wavegen.RegAwgReload]
	reloadLast := wavegen.RegMap[wavegen.RegAwgReloadLast]

	var result []fragment
	i := 0
	for i < len(writes) {
		if i+2 >= len(writes) {
			t.Fatalf("Truncated fragment at write %d", i)
		}
		if writes[i].Addr != reload || writes[i+1].Addr != reload {
			t.Fatalf("Fragment header at write %d must go to AWG_RELOAD, got %d and %d", i, writes[i].Addr, writes[i+1].Addr)
		}
		f := fragment{Header: wavegen.DecodeWaveformHeader(writes[i].Value, writes[i+1].Value)}
		i += 2
		for ; i < len(writes); i++ {
			f.Samples = append(f.Samples, writes[i].Value)
			if writes[i].Addr == reloadLast {
				break
			}
			if writes[i].Addr != reload {
				t.Fatalf("Unexpected address %d inside fragment at write %d", writes[i].Addr, i)
			}
		}
		if i == len(writes) {
			t.Fatalf("Fragment is not terminated by AWG_RELOAD_LAST")
		}
		i++
		result = append(result, f)
	}
	return result
}

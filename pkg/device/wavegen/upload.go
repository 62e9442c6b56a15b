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

package wavegen

import (
	"fmt"

	"jinr.ru/greenlab/go-wavegen/pkg/log"
)

// UploadWaveform sends samples to the waveform memory. Without samplesPerPacket
// all samples go in a single fragment, otherwise they are split into
// fragments of samplesPerPacket samples and a shorter trailing one.
// Every fragment is framed as header high word, header low word, payload
// on AWG_RELOAD and the last sample on AWG_RELOAD_LAST.
// The upload id is incremented once per call.
func (d *Device) UploadWaveform(samples []uint32, samplesPerPacket ...int) error {
	if len(samples) == 0 {
		return ErrInvalidArgument{What: "waveform must contain at least one sample"}
	}
	if len(samplesPerPacket) > 1 {
		return ErrInvalidArgument{What: "at most one packet size is allowed"}
	}
	spp := len(samples)
	if len(samplesPerPacket) == 1 {
		spp = samplesPerPacket[0]
		if spp <= 0 {
			return ErrInvalidArgument{What: fmt.Sprintf("samples per packet must be positive, got %d", spp)}
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.header.Cmd = WaveformWriteCmd
	d.header.Ind = 0
	d.header.Len = uint16(len(samples))

	roundPkts := len(samples) / spp
	partial := len(samples) % spp
	log.Debug("wavegen %s: upload id %d, %d samples, %d full packets of %d, partial %d",
		d.name, d.header.ID, len(samples), roundPkts, spp, partial)

	for j := 0; j < roundPkts; j++ {
		if err := d.writeFragment(samples[j*spp : (j+1)*spp]); err != nil {
			return err
		}
		d.header.Ind++
	}
	if partial > 0 {
		if err := d.writeFragment(samples[roundPkts*spp:]); err != nil {
			return err
		}
	}

	d.header.ID++
	return nil
}

func (d *Device) writeFragment(fragment []uint32) error {
	hi, lo := d.header.Words()
	if err := d.write(RegAwgReload, hi); err != nil {
		return err
	}
	if err := d.write(RegAwgReload, lo); err != nil {
		return err
	}
	last := len(fragment) - 1
	for _, sample := range fragment[:last] {
		if err := d.write(RegAwgReload, sample); err != nil {
			return err
		}
	}
	return d.write(RegAwgReloadLast, fragment[last])
}

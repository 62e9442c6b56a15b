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

// WaveformHeader precedes every fragment of a waveform upload.
// On the wire it is a 64 bit word, from low to high bits: Len, Ind, ID, Cmd.
type WaveformHeader struct {
	Len uint16 // number of samples of the whole upload
	Ind uint16 // fragment index within the upload
	ID  uint16 // upload id, incremented after each upload
	Cmd uint16
}

// Uint64 packs the header into its wire representation
func (h *WaveformHeader) Uint64() uint64 {
	return uint64(h.Len) |
		uint64(h.Ind)<<16 |
		uint64(h.ID)<<32 |
		uint64(h.Cmd)<<48
}

// Words returns the high and the low 32 bit words of the header, in transmission order
func (h *WaveformHeader) Words() (hi, lo uint32) {
	v := h.Uint64()
	return uint32(v >> 32), uint32(v)
}

// DecodeWaveformHeader unpacks a header from its high and low words
func DecodeWaveformHeader(hi, lo uint32) WaveformHeader {
	return WaveformHeader{
		Len: uint16(lo),
		Ind: uint16(lo >> 16),
		ID:  uint16(hi),
		Cmd: uint16(hi >> 16),
	}
}

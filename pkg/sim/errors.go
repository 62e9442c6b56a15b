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

package sim

import (
	"fmt"
)

// ErrUnknownRegister returned for reads of addresses the block does not implement
type ErrUnknownRegister struct {
	Addr uint32
}

func (e ErrUnknownRegister) Error() string {
	return fmt.Sprintf("sim: unknown readback register %d", e.Addr)
}

// ErrUpload returned when a waveform fragment violates the upload framing
type ErrUpload struct {
	What string
}

func (e ErrUpload) Error() string {
	return fmt.Sprintf("sim: waveform upload: %s", e.What)
}

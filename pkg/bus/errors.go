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

package bus

import (
	"fmt"

	"jinr.ru/greenlab/go-wavegen/pkg/layers"
)

// ErrTimeout returned when the device does not answer a request in time
type ErrTimeout struct {
	Addr string
	Seq  uint16
}

func (e ErrTimeout) Error() string {
	return fmt.Sprintf("bus: no response from %s to request %d", e.Addr, e.Seq)
}

// ErrNack returned when the device reports a failed transaction
type ErrNack struct {
	Op *layers.BusOp
}

func (e ErrNack) Error() string {
	return fmt.Sprintf("bus: device rejected %s", e.Op)
}

// ErrBadResponse returned when a response does not match its request
type ErrBadResponse struct {
	What string
}

func (e ErrBadResponse) Error() string {
	return fmt.Sprintf("bus: bad response: %s", e.What)
}

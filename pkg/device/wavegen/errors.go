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
)

// ErrInvalidArgument returned when an operation is called with arguments the device can not accept.
// Nothing is written to the bus in this case.
type ErrInvalidArgument struct {
	What string
}

func (e ErrInvalidArgument) Error() string {
	return fmt.Sprintf("wavegen: invalid argument: %s", e.What)
}

// ErrDeviceRead returned when a readback value is rejected by the readback check
type ErrDeviceRead struct {
	Reg   RbAlias
	Value uint64
	Err   error
}

func (e ErrDeviceRead) Error() string {
	return fmt.Sprintf("wavegen: bad readback %s = 0x%x: %s", e.Reg, e.Value, e.Err)
}

func (e ErrDeviceRead) Unwrap() error {
	return e.Err
}

// ErrTransport returned when the bus fails in the middle of an operation.
// Device side state is undefined afterwards, ClearCommands should be issued before retrying.
type ErrTransport struct {
	Op   string
	Addr uint32
	Err  error
}

func (e ErrTransport) Error() string {
	return fmt.Sprintf("wavegen: bus %s at %d failed: %s", e.Op, e.Addr, e.Err)
}

func (e ErrTransport) Unwrap() error {
	return e.Err
}

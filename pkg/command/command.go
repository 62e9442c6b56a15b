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

package command

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/imroc/req"
)

// ErrApi returned when the control server rejects a request
type ErrApi struct {
	Code    int
	Message string
}

func (e ErrApi) Error() string {
	return fmt.Sprintf("control server: %d %s: %s", e.Code, http.StatusText(e.Code), e.Message)
}

// check turns non 200 responses into ErrApi
func check(r *req.Resp, err error) (*req.Resp, error) {
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != http.StatusOK {
		return nil, ErrApi{
			Code:    r.Response().StatusCode,
			Message: strings.TrimSpace(r.String()),
		}
	}
	return r, nil
}

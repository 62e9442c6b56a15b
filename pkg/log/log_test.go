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

package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := Init(buf, "warning"); err != nil {
		t.Fatal(err)
	}
	defer Init(os.Stderr, "info")

	Debug("hidden %d", 1)
	Info("hidden %d", 2)
	Warning("shown %d", 3)
	Error("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Records below warning level were written: %q", out)
	}
	for _, expected := range []string{WarningPrefix + "shown 3", ErrorPrefix + "shown 4", LogPrefix} {
		if !strings.Contains(out, expected) {
			t.Errorf("Expected %q in %q", expected, out)
		}
	}
	if Writer() != buf {
		t.Error("Writer must return the configured output")
	}
}

func TestWrongLevel(t *testing.T) {
	if err := SetLevel("trace"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

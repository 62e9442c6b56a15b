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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadSamples parses waveform samples, one per line, decimal or 0x prefixed hexadecimal.
// Empty lines and lines starting with # are skipped.
func ReadSamples(r io.Reader) ([]uint32, error) {
	var samples []uint32
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		value, err := strconv.ParseUint(text, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad sample %q: %w", line, text, err)
		}
		samples = append(samples, uint32(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

// ReadSamplesFile reads samples from a file, "-" means stdin
func ReadSamplesFile(path string) ([]uint32, error) {
	if path == "-" {
		return ReadSamples(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSamples(f)
}

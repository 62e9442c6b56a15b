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

package control

import (
	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-wavegen/pkg/command"
	"jinr.ru/greenlab/go-wavegen/pkg/config"
)

const (
	FileOptionName = "file"
	SppOptionName  = "spp"
)

func NewWaveformCommand(cfg *config.Config) *cobra.Command {
	var device, file string
	var spp int
	cmd := &cobra.Command{
		Use:   "waveform",
		Short: "Upload waveform samples",
		Long:  "Upload waveform samples read from a file with one sample per line, decimal or 0x prefixed",
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, err := command.ReadSamplesFile(file)
			if err != nil {
				return err
			}
			return command.NewApiClient(cfg).UploadWaveform(device, samples, spp)
		},
	}
	addDeviceFlag(cmd, &device)
	cmd.Flags().StringVar(&file, FileOptionName, "", "Samples file, - for stdin")
	cmd.MarkFlagRequired(FileOptionName)
	cmd.Flags().IntVar(&spp, SppOptionName, 0, "Samples per packet, 0 uses the configured value")
	return cmd
}

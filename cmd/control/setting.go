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
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-wavegen/pkg/command"
	"jinr.ru/greenlab/go-wavegen/pkg/config"
)

// NewSettingCommand creates a command writing a single numeric setting
func NewSettingCommand(cfg *config.Config, name, short string) *cobra.Command {
	var device string
	var value uint64
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			if name == "prf" {
				return apiClient.SetPrfCount(device, value)
			}
			if value > 0xffffffff {
				return fmt.Errorf("value %d does not fit into 32 bits", value)
			}
			switch name {
			case "ctrl":
				return apiClient.SetCtrlWord(device, uint32(value))
			case "adc":
				return apiClient.SetNumAdcSamples(device, uint32(value))
			case "rxlen":
				return apiClient.SetRxLen(device, uint32(value))
			}
			return fmt.Errorf("unknown setting %s", name)
		},
	}
	addDeviceFlag(cmd, &device)
	cmd.Flags().Uint64Var(&value, ValueOptionName, 0, "Value, decimal or 0x prefixed")
	cmd.MarkFlagRequired(ValueOptionName)
	return cmd
}

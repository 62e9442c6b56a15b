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

	"jinr.ru/greenlab/go-wavegen/cmd/control/reg"
	"jinr.ru/greenlab/go-wavegen/pkg/command"
	"jinr.ru/greenlab/go-wavegen/pkg/config"
)

const (
	IPOptionName     = "ip"
	DeviceOptionName = "device"
	ValueOptionName  = "value"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "control",
		Short: "Start control server and send requests to it",
	}
	cmd.AddCommand(NewStartCommand(cfg))
	cmd.AddCommand(NewWaveformCommand(cfg))
	cmd.AddCommand(NewChirpCommand(cfg))
	cmd.AddCommand(NewSourceCommand(cfg))
	cmd.AddCommand(NewPolicyCommand(cfg))
	cmd.AddCommand(NewSettingCommand(cfg, "ctrl", "Write raw AWG control word"))
	cmd.AddCommand(NewSettingCommand(cfg, "prf", "Write PRF count, integer part in the high 32 bits"))
	cmd.AddCommand(NewSettingCommand(cfg, "adc", "Set number of ADC samples"))
	cmd.AddCommand(NewSettingCommand(cfg, "rxlen", "Set receive window length including the waveform"))
	cmd.AddCommand(NewStreamCommand(cfg))
	cmd.AddCommand(NewPulseCommand(cfg))
	cmd.AddCommand(NewClearCommand(cfg))
	cmd.AddCommand(NewStatusCommand(cfg))
	cmd.AddCommand(reg.NewCommand(cfg))
	return cmd
}

func addDeviceFlag(cmd *cobra.Command, device *string) {
	cmd.Flags().StringVar(device, DeviceOptionName, config.DefaultDeviceName, fmt.Sprintf("Device name. E.g. %s", config.DefaultDeviceName))
}

func NewStartCommand(cfg *config.Config) *cobra.Command {
	var ip string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start control server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ip != "" {
				cfg.IP = ip
			}
			return command.StartControlServer(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&ip, IPOptionName, "", fmt.Sprintf("IP to bind. E.g. %s", config.DefaultIP))
	return cmd
}

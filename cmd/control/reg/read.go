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

package reg

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-wavegen/pkg/command"
	"jinr.ru/greenlab/go-wavegen/pkg/config"
)

const (
	DeviceOptionName = "device"
	AddrOptionName   = "addr"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reg",
		Short: "Settings register shadows",
	}
	cmd.AddCommand(NewReadCommand(cfg))
	return cmd
}

func NewReadCommand(cfg *config.Config) *cobra.Command {
	var device, addr string
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Show last values written to settings registers",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			out := cmd.OutOrStdout()
			if addr != "" {
				reg, err := apiClient.RegRead(device, addr)
				if err != nil {
					return err
				}
				hexAddr, hexValue := reg.Hex()
				fmt.Fprintf(out, "Register state: %s %s = %s\n", hexAddr, reg.Name, hexValue)
				return nil
			}
			regs, err := apiClient.RegReadAll(device)
			if err != nil {
				return err
			}
			for _, reg := range regs {
				hexAddr, hexValue := reg.Hex()
				fmt.Fprintf(out, "Register state: %s %s = %s\n", hexAddr, reg.Name, hexValue)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&device, DeviceOptionName, config.DefaultDeviceName, "Device name")
	cmd.Flags().StringVar(&addr, AddrOptionName, "", "Register address, decimal or 0x prefixed. All registers when empty")
	return cmd
}

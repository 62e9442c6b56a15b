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

func NewSourceCommand(cfg *config.Config) *cobra.Command {
	var device string
	cmd := &cobra.Command{
		Use:       "source awg|chirp",
		Short:     "Select signal source",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"awg", "chirp"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return command.NewApiClient(cfg).SetSource(device, args[0])
		},
	}
	addDeviceFlag(cmd, &device)
	return cmd
}

func NewPolicyCommand(cfg *config.Config) *cobra.Command {
	var device string
	var word uint32
	cmd := &cobra.Command{
		Use:       "policy auto|manual",
		Short:     "Select radar policy",
		Long:      "Select radar policy by name, or write a raw policy value with --value",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"auto", "manual"},
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			if cmd.Flags().Changed(ValueOptionName) {
				return apiClient.SetPolicyWord(device, word)
			}
			if len(args) == 0 {
				return cmd.Usage()
			}
			return apiClient.SetPolicy(device, args[0])
		},
	}
	addDeviceFlag(cmd, &device)
	cmd.Flags().Uint32Var(&word, ValueOptionName, 0, "Raw policy value")
	return cmd
}

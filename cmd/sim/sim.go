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

package sim

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-wavegen/pkg/command"
	"jinr.ru/greenlab/go-wavegen/pkg/config"
)

const (
	AddrOptionName = "addr"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Simulated device",
	}
	cmd.AddCommand(NewStartCommand(cfg))
	return cmd
}

func NewStartCommand(cfg *config.Config) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Serve a simulated device register bus over UDP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return command.StartSimulator(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, AddrOptionName, config.DefaultSimAddr, fmt.Sprintf("Address to bind. E.g. %s", config.DefaultSimAddr))
	return cmd
}

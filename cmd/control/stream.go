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
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-wavegen/pkg/command"
	"jinr.ru/greenlab/go-wavegen/pkg/config"
	srvcontrol "jinr.ru/greenlab/go-wavegen/pkg/srv/control"
)

const (
	NowOptionName      = "now"
	NumSampsOptionName = "num-samps"
	TicksOptionName    = "ticks"
	SecondsOptionName  = "seconds"
)

func NewStreamCommand(cfg *config.Config) *cobra.Command {
	var device string
	setup := &srvcontrol.StreamSetup{}
	modes := []string{}
	for mode := range srvcontrol.StreamModes {
		modes = append(modes, mode)
	}
	sort.Strings(modes)
	cmd := &cobra.Command{
		Use:       "stream " + strings.Join(modes, "|"),
		Short:     "Issue a stream command followed by an immediate pulse",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: modes,
		RunE: func(cmd *cobra.Command, args []string) error {
			setup.Mode = args[0]
			return command.NewApiClient(cfg).IssueStreamCmd(device, setup)
		},
	}
	addDeviceFlag(cmd, &device)
	cmd.Flags().BoolVar(&setup.Now, NowOptionName, false, "Execute immediately, the time tag is ignored")
	cmd.Flags().Uint32Var(&setup.NumSamps, NumSampsOptionName, 0, "Number of samples for num_samps modes")
	cmd.Flags().Uint64Var(&setup.Ticks, TicksOptionName, 0, "Time tag in device ticks")
	cmd.Flags().Float64Var(&setup.Seconds, SecondsOptionName, 0, "Time tag in seconds, used when --ticks is not set")
	return cmd
}

func NewPulseCommand(cfg *config.Config) *cobra.Command {
	var device string
	var ticks uint64
	var seconds float64
	cmd := &cobra.Command{
		Use:   "pulse",
		Short: "Fire a pulse now or at a time tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			setup := &srvcontrol.PulseSetup{}
			if cmd.Flags().Changed(TicksOptionName) {
				setup.Ticks = &ticks
			} else if cmd.Flags().Changed(SecondsOptionName) {
				setup.Seconds = &seconds
			}
			return command.NewApiClient(cfg).SendPulse(device, setup)
		},
	}
	addDeviceFlag(cmd, &device)
	cmd.Flags().Uint64Var(&ticks, TicksOptionName, 0, "Time tag in device ticks")
	cmd.Flags().Float64Var(&seconds, SecondsOptionName, 0, "Time tag in seconds")
	return cmd
}

func NewClearCommand(cfg *config.Config) *cobra.Command {
	var device string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear queued radar commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return command.NewApiClient(cfg).ClearCommands(device)
		},
	}
	addDeviceFlag(cmd, &device)
	return cmd
}

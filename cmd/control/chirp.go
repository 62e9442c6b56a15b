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
	LenOptionName    = "len"
	CoefOptionName   = "coef"
	OffsetOptionName = "offset"
)

func NewChirpCommand(cfg *config.Config) *cobra.Command {
	var device string
	var length, coef, offset uint32
	cmd := &cobra.Command{
		Use:   "chirp",
		Short: "Set up chirp generator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return command.NewApiClient(cfg).SetupChirp(device, length, coef, offset)
		},
	}
	addDeviceFlag(cmd, &device)
	cmd.Flags().Uint32Var(&length, LenOptionName, 0, "Chirp length in samples")
	cmd.MarkFlagRequired(LenOptionName)
	cmd.Flags().Uint32Var(&coef, CoefOptionName, 0, "Tuning coefficient")
	cmd.Flags().Uint32Var(&offset, OffsetOptionName, 0, "Frequency offset")
	cmd.AddCommand(NewChirpParamCommand(cfg))
	return cmd
}

func NewChirpParamCommand(cfg *config.Config) *cobra.Command {
	var device string
	var value uint32
	cmd := &cobra.Command{
		Use:       "set counter|coef|offset",
		Short:     "Write a single raw chirp register",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"counter", "coef", "offset"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return command.NewApiClient(cfg).SetChirpParam(device, args[0], value)
		},
	}
	addDeviceFlag(cmd, &device)
	cmd.Flags().Uint32Var(&value, ValueOptionName, 0, "Register value")
	cmd.MarkFlagRequired(ValueOptionName)
	return cmd
}

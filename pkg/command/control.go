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
	"context"

	"jinr.ru/greenlab/go-wavegen/pkg/config"
	"jinr.ru/greenlab/go-wavegen/pkg/log"
	"jinr.ru/greenlab/go-wavegen/pkg/sim"
	"jinr.ru/greenlab/go-wavegen/pkg/srv/control"
)

// StartControlServer ...
func StartControlServer(ctx context.Context, cfg *config.Config) error {
	s, err := control.NewControlServer(ctx, cfg, control.UDPBusFactory)
	if err != nil {
		return err
	}
	return s.Run()
}

// StartSimulator serves a simulated device on addr until ctx is done
func StartSimulator(ctx context.Context, addr string) error {
	s, err := sim.NewServer(ctx, addr, sim.NewRegisterFile())
	if err != nil {
		return err
	}
	log.Info("Starting simulator on %s", addr)
	return s.Run()
}

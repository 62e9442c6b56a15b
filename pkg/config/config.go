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

package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

// Device describes a single wavegen block reachable over the register bus
type Device struct {
	Name string `yaml:"name"`
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
	// TickRate is the device time base in Hz, used to convert seconds to time tag ticks
	TickRate float64 `yaml:"tickRate"`
	// SamplesPerPacket is the default upload fragment size, 0 means single packet uploads
	SamplesPerPacket uint32 `yaml:"samplesPerPacket"`
	// RejectZeroReadback turns zero status readbacks into errors instead of warnings
	RejectZeroReadback bool `yaml:"rejectZeroReadback"`
	// TimeoutMs bounds the wait for a bus response
	TimeoutMs int `yaml:"timeoutMs"`
}

// BusAddr returns host:port of the device register bus
func (d *Device) BusAddr() string {
	return fmt.Sprintf("%s:%d", d.IP, d.Port)
}

// Timeout returns the bus response timeout, DefaultBusTimeout when it is not set
func (d *Device) Timeout() time.Duration {
	if d.TimeoutMs <= 0 {
		return DefaultBusTimeout
	}
	return time.Duration(d.TimeoutMs) * time.Millisecond
}

type Config struct {
	IP       string    `yaml:"ip"`
	LogLevel string    `yaml:"logLevel"`
	DBPath   string    `yaml:"dbPath"`
	Devices  []*Device `yaml:"devices"`
	filepath string
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	return ioutil.WriteFile(c.filepath, data, 0644)
}

// Load reads the config file if it exists. Missing file leaves the defaults untouched.
func (c *Config) Load() error {
	data, err := ioutil.ReadFile(c.filepath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Path returns the location of the config file
func (c *Config) Path() string {
	return c.filepath
}

// SetPath changes the location of the config file used by Load and Persist
func (c *Config) SetPath(path string) {
	c.filepath = path
}

func (c *Config) GetDeviceByName(name string) (*Device, error) {
	for _, d := range c.Devices {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, ErrDeviceNotFound{Name: name}
}

func DefaultConfigPath() string {
	return filepath.Join(configHome(), ConfigDir, ConfigFile)
}

func DefaultDBPath() string {
	return filepath.Join(configHome(), ConfigDir, DBFile)
}

func configHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return home
}

func NewDefaultConfig() *Config {
	return &Config{
		IP:       DefaultIP,
		LogLevel: DefaultLogLevel,
		DBPath:   DefaultDBPath(),
		Devices: []*Device{
			{
				Name:             DefaultDeviceName,
				IP:               DefaultDeviceIP,
				Port:             DefaultBusPort,
				TickRate:         DefaultTickRate,
				SamplesPerPacket: DefaultSamplesPerPacket,
				TimeoutMs:        int(DefaultBusTimeout / time.Millisecond),
			},
		},
		filepath: DefaultConfigPath(),
	}
}

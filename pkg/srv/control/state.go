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
	"context"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"jinr.ru/greenlab/go-wavegen/pkg/config"
	"jinr.ru/greenlab/go-wavegen/pkg/device/wavegen"
	"jinr.ru/greenlab/go-wavegen/pkg/log"
	"jinr.ru/greenlab/go-wavegen/pkg/srv/control/ifc"
)

const (
	BucketNamePrefix = "reg_"
)

// RegState keeps a shadow copy of the settings registers of every device.
// Settings registers are write only, the shadow is the only way to see what was written.
type RegState struct {
	context.Context
	DB *bbolt.DB
}

func NewRegState(ctx context.Context, cfg *config.Config) (*RegState, error) {
	// open register database
	db, err := bbolt.Open(cfg.DBPath, 0600, nil)
	if err != nil {
		return nil, err
	}
	// create buckets in the register database for all devices
	if err = db.Update(func(tx *bbolt.Tx) error {
		for _, device := range cfg.Devices {
			_, err = tx.CreateBucketIfNotExists([]byte(bucketName(device.Name)))
			if err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &RegState{
		Context: ctx,
		DB:      db,
	}, nil
}

func uint32ToByte(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func bucketName(deviceName string) string {
	return fmt.Sprintf("%s%s", BucketNamePrefix, deviceName)
}

// Close ...
func (s *RegState) Close() {
	s.DB.Close()
}

// SetReg ...
func (s *RegState) SetReg(deviceName string, addr, value uint32) error {
	log.Debug("Setting register shadow: device: %s Addr: %d Value: 0x%x", deviceName, addr, value)
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName(deviceName)))
		if b == nil {
			return config.ErrDeviceNotFound{Name: deviceName}
		}
		return b.Put(uint32ToByte(addr), uint32ToByte(value))
	})
}

// GetReg ...
func (s *RegState) GetReg(deviceName string, addr uint32) (*ifc.Reg, error) {
	log.Debug("Getting register shadow: device: %s Addr: %d", deviceName, addr)
	var value uint32
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName(deviceName)))
		if b == nil {
			return config.ErrDeviceNotFound{Name: deviceName}
		}
		valueBytes := b.Get(uint32ToByte(addr))
		if valueBytes == nil {
			return ErrRegNotWritten{Addr: addr}
		}
		value = binary.BigEndian.Uint32(valueBytes)
		return nil
	}); err != nil {
		return nil, err
	}
	return &ifc.Reg{
		Addr:  addr,
		Name:  wavegen.RegName(addr),
		Value: value,
	}, nil
}

// GetRegAll returns all written registers ordered by address
func (s *RegState) GetRegAll(deviceName string) ([]*ifc.Reg, error) {
	log.Debug("Getting all register shadows: device: %s", deviceName)
	regs := []*ifc.Reg{}
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName(deviceName)))
		if b == nil {
			return config.ErrDeviceNotFound{Name: deviceName}
		}
		return b.ForEach(func(k, v []byte) error {
			addr := binary.BigEndian.Uint32(k)
			regs = append(regs, &ifc.Reg{
				Addr:  addr,
				Name:  wavegen.RegName(addr),
				Value: binary.BigEndian.Uint32(v),
			})
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return regs, nil
}

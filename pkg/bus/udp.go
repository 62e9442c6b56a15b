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

// Package bus implements the register bus over UDP
package bus

import (
	"errors"
	"net"
	"os"
	"sync"
	"time"

	"jinr.ru/greenlab/go-wavegen/pkg/config"
	"jinr.ru/greenlab/go-wavegen/pkg/device/ifc"
	"jinr.ru/greenlab/go-wavegen/pkg/layers"
	"jinr.ru/greenlab/go-wavegen/pkg/log"
)

// UDPBus sends every transaction as a request frame and waits for the
// matching response before the next one, so the device sees writes in call order.
type UDPBus struct {
	mu      sync.Mutex
	conn    *net.UDPConn
	addr    string
	seq     uint16
	timeout time.Duration
	buffer  []byte
}

var _ ifc.Bus = &UDPBus{}

// NewUDPBus ...
func NewUDPBus(addr string, timeout time.Duration) (*UDPBus, error) {
	log.Debug("Initializing UDP bus to %s", addr)
	uaddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, uaddr)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = config.DefaultBusTimeout
	}
	return &UDPBus{
		conn:    conn,
		addr:    addr,
		timeout: timeout,
		buffer:  make([]byte, 65536),
	}, nil
}

// NewUDPBusFromConfig dials the bus of a configured device
func NewUDPBusFromConfig(device *config.Device) (*UDPBus, error) {
	return NewUDPBus(device.BusAddr(), device.Timeout())
}

func (b *UDPBus) Close() error {
	return b.conn.Close()
}

func (b *UDPBus) NextSeq() uint16 {
	seq := b.seq
	b.seq++
	return seq
}

func (b *UDPBus) RegWrite(addr uint32, value uint32) error {
	_, err := b.Transact([]*layers.BusOp{{Addr: addr, Value: uint64(value)}})
	return err
}

func (b *UDPBus) RegRead64(addr uint32) (uint64, error) {
	ops, err := b.Transact([]*layers.BusOp{{Read: true, Addr: addr}})
	if err != nil {
		return 0, err
	}
	return ops[0].Value, nil
}

// Transact sends ops in a single request frame and returns the operations
// of the response. Requests are never retried, a lost write must not be repeated blindly.
func (b *UDPBus) Transact(ops []*layers.BusOp) ([]*layers.BusOp, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	seq := b.NextSeq()
	data, err := layers.SerializeBusFrame(layers.FrameTypeBusRequest, seq, layers.FrameHostAddr, layers.FrameDeviceAddr, ops)
	if err != nil {
		return nil, err
	}
	if _, err := b.conn.Write(data); err != nil {
		log.Error("Error while sending bus request to %s: %s", b.addr, err)
		return nil, err
	}

	deadline := time.Now().Add(b.timeout)
	if err := b.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	for {
		length, err := b.conn.Read(b.buffer)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return nil, ErrTimeout{Addr: b.addr, Seq: seq}
			}
			return nil, err
		}
		fl, bl, err := layers.DecodeBusFrame(b.buffer[:length])
		if err != nil {
			log.Debug("Drop malformed frame from %s: %s", b.addr, err)
			continue
		}
		if fl.Type != layers.FrameTypeBusResponse || fl.Seq != seq {
			log.Debug("Drop stale frame from %s: type %s seq %d, waiting for %d", b.addr, fl.Type, fl.Seq, seq)
			continue
		}
		return checkResponse(ops, bl.Ops)
	}
}

func checkResponse(request, response []*layers.BusOp) ([]*layers.BusOp, error) {
	if len(request) != len(response) {
		return nil, ErrBadResponse{What: "operation count differs from request"}
	}
	for i, op := range response {
		if op.Addr != request[i].Addr || op.Read != request[i].Read {
			return nil, ErrBadResponse{What: "operation " + op.String() + " does not match request"}
		}
		if op.Error {
			return nil, ErrNack{Op: op}
		}
	}
	return response, nil
}

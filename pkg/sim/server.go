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
	"context"
	"net"
	"time"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-wavegen/pkg/device/ifc"
	"jinr.ru/greenlab/go-wavegen/pkg/layers"
	"jinr.ru/greenlab/go-wavegen/pkg/log"
	"jinr.ru/greenlab/go-wavegen/pkg/srv"
)

// Server answers bus request frames on behalf of a simulated device
type Server struct {
	srv.Server
	bus  ifc.Bus
	conn *net.UDPConn
	// ready is closed once the socket is bound
	ready chan struct{}
}

// NewServer ...
func NewServer(ctx context.Context, addr string, bus ifc.Bus) (*Server, error) {
	log.Debug("Initializing simulator with address: %s", addr)

	uaddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}

	return &Server{
		Server: srv.Server{
			Context: ctx,
			UDPAddr: uaddr,
			ChIn:    make(chan srv.InPacket),
			ChOut:   make(chan srv.OutPacket),
		},
		bus:   bus,
		ready: make(chan struct{}),
	}, nil
}

// Ready is closed when the server is listening
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// LocalAddr returns the bound address, useful when listening on port 0.
// Only valid after Ready.
func (s *Server) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

func (s *Server) Run() error {
	conn, err := net.ListenUDP("udp", s.UDPAddr)
	if err != nil {
		return err
	}
	defer conn.Close()
	s.conn = conn
	close(s.ready)

	errChan := make(chan error, 1)

	// Read UDP packets from wire and put them to input queue
	go func() {
		buffer := make([]byte, 65536)
		for {
			length, udpAddr, readErr := conn.ReadFromUDP(buffer)
			if readErr != nil {
				errChan <- readErr
				return
			}
			data := make([]byte, length)
			copy(data, buffer[:length])

			captureInfo := gopacket.CaptureInfo{
				Length:        length,
				CaptureLength: length,
				Timestamp:     time.Now(),
				AncillaryData: []interface{}{udpAddr},
			}

			select {
			case s.ChIn <- srv.InPacket{Data: data, CaptureInfo: captureInfo}:
			case <-s.Context.Done():
				return
			}
		}
	}()

	// Read captured packets from input queue, apply them to the bus and respond
	go func() {
		source := gopacket.NewPacketSource(s, layers.FrameLayerType)
		for packet := range source.Packets() {
			if errLayer := packet.ErrorLayer(); errLayer != nil {
				log.Debug("Drop malformed frame: %s", errLayer.Error())
				continue
			}
			udpAddr, packetErr := srv.GetAddrPort(packet)
			if packetErr != nil {
				log.Error(packetErr.Error())
				continue
			}
			fl, ok := packet.Layer(layers.FrameLayerType).(*layers.FrameLayer)
			if !ok || fl.Type != layers.FrameTypeBusRequest {
				continue
			}
			var ops []*layers.BusOp
			if bl, ok := packet.Layer(layers.BusLayerType).(*layers.BusLayer); ok {
				ops = bl.Ops
			}
			data, respErr := s.respond(fl.Seq, ops)
			if respErr != nil {
				log.Error("Error while serializing response to %s: %s", udpAddr, respErr)
				continue
			}
			select {
			case s.ChOut <- srv.OutPacket{Data: data, UDPAddr: udpAddr}:
			case <-s.Context.Done():
				return
			}
		}
	}()

	// Read packets from output queue and send them to wire
	go func() {
		for {
			select {
			case outPacket := <-s.ChOut:
				_, sendErr := conn.WriteToUDP(outPacket.Data, outPacket.UDPAddr)
				if sendErr != nil {
					log.Error("Error while sending data to %s", outPacket.UDPAddr)
					errChan <- sendErr
					return
				}
			case <-s.Context.Done():
				return
			}
		}
	}()

	select {
	case <-s.Context.Done():
		return s.Context.Err()
	case err = <-errChan:
		return err
	}
}

// respond applies ops in order and builds the response frame
func (s *Server) respond(seq uint16, ops []*layers.BusOp) ([]byte, error) {
	result := make([]*layers.BusOp, len(ops))
	for i, op := range ops {
		res := &layers.BusOp{Read: op.Read, Addr: op.Addr, Value: op.Value}
		var err error
		if op.Read {
			res.Value, err = s.bus.RegRead64(op.Addr)
		} else {
			err = s.bus.RegWrite(op.Addr, uint32(op.Value))
		}
		if err != nil {
			log.Warning("sim: %s failed: %s", op, err)
			res.Error = true
		}
		result[i] = res
	}
	return layers.SerializeBusFrame(layers.FrameTypeBusResponse, seq, layers.FrameDeviceAddr, layers.FrameHostAddr, result)
}

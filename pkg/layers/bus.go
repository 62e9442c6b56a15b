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

package layers

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// BusLayerNum identifies the layer
	BusLayerNum = 2002
	// BusOpSize is the size of a serialized bus operation in bytes
	BusOpSize = 12
	// BusMaxOps is the max number of operations a single frame can carry
	BusMaxOps = FrameMaxPayloadSize / BusOpSize

	busOpReadBit  uint32 = 0x80000000
	busOpErrorBit uint32 = 0x40000000
	busOpAddrMask uint32 = 0x3fffffff
)

// BusOp is a single register transaction.
// Writes carry a 32 bit value in the low half of Value,
// read responses carry the full 64 bit readback.
type BusOp struct {
	Read  bool
	Error bool // set by the device when the transaction failed
	Addr  uint32
	Value uint64
}

func (op *BusOp) String() string {
	if op.Read {
		return fmt.Sprintf("read %d = 0x%x", op.Addr, op.Value)
	}
	return fmt.Sprintf("write %d = 0x%x", op.Addr, op.Value)
}

type BusLayer struct {
	layers.BaseLayer
	Ops []*BusOp
}

var BusLayerType = gopacket.RegisterLayerType(BusLayerNum,
	gopacket.LayerTypeMetadata{Name: "BusLayerType", Decoder: gopacket.DecodeFunc(DecodeBusLayer)})

// LayerType returns the type of the bus layer in the layer catalog
func (bl *BusLayer) LayerType() gopacket.LayerType {
	return BusLayerType
}

// Serialize serializes the operations to a buffer of len(Ops) * BusOpSize bytes.
// Each operation is three words: flags and address, value low half, value high half.
func (bl *BusLayer) Serialize(buf []byte) {
	for i, op := range bl.Ops {
		word := op.Addr & busOpAddrMask
		if op.Read {
			word |= busOpReadBit
		}
		if op.Error {
			word |= busOpErrorBit
		}
		binary.LittleEndian.PutUint32(buf[i*BusOpSize:i*BusOpSize+4], word)
		binary.LittleEndian.PutUint32(buf[i*BusOpSize+4:i*BusOpSize+8], uint32(op.Value))
		binary.LittleEndian.PutUint32(buf[i*BusOpSize+8:i*BusOpSize+12], uint32(op.Value>>32))
	}
}

// SerializeTo serializes the bus layer into bytes and writes the bytes to the SerializeBuffer
func (bl *BusLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.AppendBytes(len(bl.Ops) * BusOpSize)
	if err != nil {
		return err
	}
	bl.Serialize(bytes)
	return nil
}

func (bl *BusLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data)%BusOpSize != 0 {
		df.SetTruncated()
		return fmt.Errorf("bus payload of %d bytes is not a whole number of operations", len(data))
	}
	bl.BaseLayer = layers.BaseLayer{
		Contents: data[:],
		Payload:  []byte{},
	}
	bl.Ops = make([]*BusOp, 0, len(data)/BusOpSize)
	for i := 0; i < len(data); i += BusOpSize {
		word := binary.LittleEndian.Uint32(data[i : i+4])
		lo := binary.LittleEndian.Uint32(data[i+4 : i+8])
		hi := binary.LittleEndian.Uint32(data[i+8 : i+12])
		bl.Ops = append(bl.Ops, &BusOp{
			Read:  word&busOpReadBit != 0,
			Error: word&busOpErrorBit != 0,
			Addr:  word & busOpAddrMask,
			Value: uint64(hi)<<32 | uint64(lo),
		})
	}
	return nil
}

func (bl *BusLayer) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypeZero
}

func DecodeBusLayer(data []byte, p gopacket.PacketBuilder) error {
	bl := &BusLayer{}
	err := bl.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(bl)
	return nil
}

// SerializeBusFrame builds a complete frame carrying ops, including the crc tail
func SerializeBusFrame(frameType FrameType, seq, src, dst uint16, ops []*BusOp) ([]byte, error) {
	if len(ops) > BusMaxOps {
		return nil, fmt.Errorf("%d operations do not fit into a frame, max %d", len(ops), BusMaxOps)
	}
	fl := &FrameLayer{}
	fl.Type = frameType
	fl.Sync = FrameSync
	fl.Seq = seq
	// 3 words header + 1 word crc + 3 words per operation
	fl.Len = uint16(4 + len(ops)*BusOpSize/4)
	fl.Src = src
	fl.Dst = dst

	// Calculate crc32 checksum
	headerBytes := make([]byte, FrameHeaderSize)
	fl.SerializeHeader(headerBytes)

	bl := &BusLayer{Ops: ops}
	busBytes := make([]byte, len(ops)*BusOpSize)
	bl.Serialize(busBytes)

	fl.Crc = crc32.ChecksumIEEE(append(headerBytes, busBytes...))

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{}
	if err := gopacket.SerializeLayers(buf, opts, fl, bl); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBusFrame parses a frame and returns its header and bus operations
func DecodeBusFrame(data []byte) (*FrameLayer, *BusLayer, error) {
	packet := gopacket.NewPacket(data, FrameLayerType, gopacket.NoCopy)
	if errLayer := packet.ErrorLayer(); errLayer != nil {
		return nil, nil, errLayer.Error()
	}
	frameLayer := packet.Layer(FrameLayerType)
	if frameLayer == nil {
		return nil, nil, fmt.Errorf("not a frame")
	}
	fl := frameLayer.(*FrameLayer)
	if fl.NextLayerType() != BusLayerType {
		return nil, nil, fmt.Errorf("frame type 0x%04x is not a bus frame", uint16(fl.Type))
	}
	busLayer := packet.Layer(BusLayerType)
	if busLayer == nil {
		// gopacket does not decode empty payloads
		return fl, &BusLayer{}, nil
	}
	return fl, busLayer.(*BusLayer), nil
}

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
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"jinr.ru/greenlab/go-wavegen/pkg/log"
)

const (
	FrameHostAddr   = 1
	FrameDeviceAddr = 0xfefe
)

func init() {
	initUnknownFrameTypes()
	initActualFrameTypes()
}

const (
	// FrameLayerNum identifies the layer
	FrameLayerNum = 2001
	// FrameSync is a magic number that appears in the beginning of each frame
	FrameSync = 0x2A50
	// FrameHeaderSize is the size of the frame header in bytes
	FrameHeaderSize = 12
	// FrameTailSize is the size of the crc32 tail in bytes
	FrameTailSize = 4
	// FrameMaxSize is the max size of a frame including header and tail
	FrameMaxSize = 1400
	// FrameMaxPayloadSize is the max size of a frame payload
	FrameMaxPayloadSize = FrameMaxSize - FrameHeaderSize - FrameTailSize
)

type FrameType uint16

const (
	FrameTypeBusRequest  FrameType = 0x0101
	FrameTypeBusResponse FrameType = 0x0102
)

type errorDecoderForFrameType int

func (e *errorDecoderForFrameType) Decode(data []byte, p gopacket.PacketBuilder) error {
	return e
}

func (e *errorDecoderForFrameType) Error() string {
	return fmt.Sprintf("Unable to decode frame type %d", int(*e))
}

var errorDecodersForFrameType [65536]errorDecoderForFrameType
var FrameMetadata [65536]layers.EnumMetadata

func initUnknownFrameTypes() {
	for i := 0; i < 65536; i++ {
		errorDecodersForFrameType[i] = errorDecoderForFrameType(i)
		FrameMetadata[i] = layers.EnumMetadata{
			DecodeWith: &errorDecodersForFrameType[i],
			Name:       "UnknownFrameType",
		}
	}
}

func initActualFrameTypes() {
	FrameMetadata[FrameTypeBusRequest] = layers.EnumMetadata{DecodeWith: gopacket.DecodeFunc(DecodeBusLayer), Name: "BusRequest", LayerType: BusLayerType}
	FrameMetadata[FrameTypeBusResponse] = layers.EnumMetadata{DecodeWith: gopacket.DecodeFunc(DecodeBusLayer), Name: "BusResponse", LayerType: BusLayerType}
}

// LayerType returns FrameMetadata.LayerType
func (t FrameType) LayerType() gopacket.LayerType {
	return FrameMetadata[t].LayerType
}

// Decode calls FrameMetadata.DecodeWith's decoder
func (t FrameType) Decode(data []byte, p gopacket.PacketBuilder) error {
	return FrameMetadata[t].DecodeWith.Decode(data, p)
}

// String returns FrameMetadata.Name
func (t FrameType) String() string {
	return FrameMetadata[t].Name
}

type FrameHeader struct {
	Type FrameType
	Sync uint16
	Seq  uint16
	Len  uint16 // length of the frame including header, payload and crc in 4-byte words NOT in bytes
	Src  uint16
	Dst  uint16
}

// FrameLayer carries bus transactions between host and device.
// Its tail is the crc32 sum of the header and the payload.
type FrameLayer struct {
	layers.BaseLayer
	FrameHeader
	Crc uint32
}

var FrameLayerType = gopacket.RegisterLayerType(FrameLayerNum,
	gopacket.LayerTypeMetadata{Name: "FrameLayerType", Decoder: gopacket.DecodeFunc(decodeFrameLayer)})

func (fl *FrameLayer) LayerType() gopacket.LayerType {
	return FrameLayerType
}

// SerializeHeader serializes only the frame header (not tail) to a buffer.
// The crc depends on the serialized header, so upper layers use it to calculate the tail.
func (fl *FrameLayer) SerializeHeader(buf []byte) {
	binary.LittleEndian.PutUint16(buf[0:2], uint16(fl.Type))
	binary.LittleEndian.PutUint16(buf[2:4], fl.Sync)
	binary.LittleEndian.PutUint16(buf[4:6], fl.Seq)
	binary.LittleEndian.PutUint16(buf[6:8], fl.Len)
	binary.LittleEndian.PutUint16(buf[8:10], fl.Src)
	binary.LittleEndian.PutUint16(buf[10:12], fl.Dst)
}

// SerializeTo serializes the layer into bytes and writes the bytes to the SerializeBuffer
func (fl *FrameLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	headerBytes, err := b.PrependBytes(FrameHeaderSize)
	if err != nil {
		return err
	}
	fl.SerializeHeader(headerBytes)

	tailBytes, err := b.AppendBytes(FrameTailSize)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(tailBytes[0:4], fl.Crc)
	return nil
}

// DecodeFromBytes attempts to decode the byte slice as a frame
func (fl *FrameLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < FrameHeaderSize+FrameTailSize {
		df.SetTruncated()
		return errors.New("frame too short")
	}

	if binary.LittleEndian.Uint16(data[2:4]) != FrameSync {
		log.Debug("Frame sync is invalid")
		return fmt.Errorf("wrong frame sync, must be 0x%04x", FrameSync)
	}

	fl.Type = FrameType(binary.LittleEndian.Uint16(data[0:2]))
	fl.Sync = binary.LittleEndian.Uint16(data[2:4])
	fl.Seq = binary.LittleEndian.Uint16(data[4:6])
	fl.Len = binary.LittleEndian.Uint16(data[6:8])
	fl.Src = binary.LittleEndian.Uint16(data[8:10])
	fl.Dst = binary.LittleEndian.Uint16(data[10:12])

	size := int(fl.Len) * 4
	if size < FrameHeaderSize+FrameTailSize || size > len(data) {
		df.SetTruncated()
		return fmt.Errorf("frame length %d words does not match %d received bytes", fl.Len, len(data))
	}

	fl.BaseLayer = layers.BaseLayer{
		Contents: data[0:FrameHeaderSize],
		Payload:  data[FrameHeaderSize : size-FrameTailSize],
	}
	fl.Crc = binary.LittleEndian.Uint32(data[size-FrameTailSize : size])

	if crc := crc32.ChecksumIEEE(data[:size-FrameTailSize]); crc != fl.Crc {
		return fmt.Errorf("wrong frame crc 0x%08x, calculated 0x%08x", fl.Crc, crc)
	}
	return nil
}

func (fl *FrameLayer) NextLayerType() gopacket.LayerType {
	return fl.Type.LayerType()
}

func decodeFrameLayer(data []byte, p gopacket.PacketBuilder) error {
	fl := &FrameLayer{}
	err := fl.DecodeFromBytes(data, p)
	if err != nil {
		log.Error("Error while decoding frame layer: %s", err)
		return err
	}
	p.AddLayer(fl)
	return p.NextDecoder(fl.NextLayerType())
}

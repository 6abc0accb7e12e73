// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"encoding/binary"
	"math"

	p4config "github.com/p4lang/p4runtime/go/p4/config/v1"
	p4api "github.com/p4lang/p4runtime/go/p4/v1"
)

type metadataField struct {
	id       uint32
	bitwidth int32
}

// PacketMetadataCodec encodes and decodes the controller packet-out and
// packet-in metadata declared in P4Info.
type PacketMetadataCodec struct {
	egressPort  metadataField
	ingressPort metadataField
}

// NewPacketMetadataCodec creates a codec from the controller packet metadata
// declarations of the supplied P4Info.
func NewPacketMetadataCodec(info *p4config.P4Info) *PacketMetadataCodec {
	codec := &PacketMetadataCodec{}
	for _, cpm := range info.ControllerPacketMetadata {
		switch cpm.Preamble.Name {
		case "packet_out":
			for _, md := range cpm.Metadata {
				if md.Name == "egress_port" {
					codec.egressPort = metadataField{id: md.Id, bitwidth: md.Bitwidth}
				}
			}
		case "packet_in":
			for _, md := range cpm.Metadata {
				if md.Name == "ingress_port" {
					codec.ingressPort = metadataField{id: md.Id, bitwidth: md.Bitwidth}
				}
			}
		}
	}
	return codec
}

// DecodeEgressPort extracts the egress port from packet-out metadata;
// returns 0 if the metadata does not carry one.
func (c *PacketMetadataCodec) DecodeEgressPort(metadata []*p4api.PacketMetadata) uint32 {
	for _, md := range metadata {
		if md.MetadataId == c.egressPort.id {
			return decodeValue(md.Value)
		}
	}
	return 0
}

// EncodeIngressPort produces packet-in metadata carrying the ingress port.
func (c *PacketMetadataCodec) EncodeIngressPort(port uint32) []*p4api.PacketMetadata {
	if c.ingressPort.id == 0 {
		return nil
	}
	return []*p4api.PacketMetadata{{
		MetadataId: c.ingressPort.id,
		Value:      encodeValue(port, c.ingressPort.bitwidth),
	}}
}

func decodeValue(value []byte) uint32 {
	padded := make([]byte, 4)
	copy(padded[4-min(len(value), 4):], value)
	return binary.BigEndian.Uint32(padded)
}

func encodeValue(value uint32, bitwidth int32) []byte {
	size := int(math.Ceil(float64(bitwidth) / 8.0))
	bytes := make([]byte, 4)
	binary.BigEndian.PutUint32(bytes, value)
	if size > 4 {
		size = 4
	}
	return bytes[4-size:]
}

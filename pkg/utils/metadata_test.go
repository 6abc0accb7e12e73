// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"os"
	"path/filepath"
	"testing"

	p4config "github.com/p4lang/p4runtime/go/p4/config/v1"
	"github.com/stretchr/testify/assert"
)

func packetMetadataInfo() *p4config.P4Info {
	return &p4config.P4Info{
		ControllerPacketMetadata: []*p4config.ControllerPacketMetadata{
			{
				Preamble: &p4config.Preamble{Id: 1, Name: "packet_out"},
				Metadata: []*p4config.ControllerPacketMetadata_Metadata{
					{Id: 1, Name: "egress_port", Bitwidth: 9},
					{Id: 2, Name: "_pad", Bitwidth: 7},
				},
			},
			{
				Preamble: &p4config.Preamble{Id: 2, Name: "packet_in"},
				Metadata: []*p4config.ControllerPacketMetadata_Metadata{
					{Id: 1, Name: "ingress_port", Bitwidth: 9},
					{Id: 2, Name: "_pad", Bitwidth: 7},
				},
			},
		},
	}
}

func TestPacketOutMetadata(t *testing.T) {
	codec := NewPacketMetadataCodec(packetMetadataInfo())

	md := codec.EncodeIngressPort(213)
	assert.Len(t, md, 1)
	assert.Len(t, md[0].Value, 2)

	// The packet-in and packet-out metadata declarations use the same field IDs,
	// so the encoded ingress port decodes as an egress port.
	assert.Equal(t, uint32(213), codec.DecodeEgressPort(md))
}

func TestDecodeUnknownMetadata(t *testing.T) {
	codec := NewPacketMetadataCodec(&p4config.P4Info{})
	assert.Equal(t, uint32(0), codec.DecodeEgressPort(nil))
	assert.Nil(t, codec.EncodeIngressPort(42))
}

func TestLoadP4Info(t *testing.T) {
	info := packetMetadataInfo()
	path := filepath.Join(t.TempDir(), "p4info.txt")
	assert.NoError(t, os.WriteFile(path, P4InfoBytes(info), 0644))

	loaded, err := LoadP4Info(path)
	assert.NoError(t, err)
	assert.Len(t, loaded.ControllerPacketMetadata, 2)
	assert.Equal(t, "packet_out", loaded.ControllerPacketMetadata[0].Preamble.Name)

	_, err = LoadP4Info(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

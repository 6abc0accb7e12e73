// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package pipeline packs and unpacks the binary pipeline descriptor exchanged
// through SetForwardingPipelineConfig's p4_device_config field.
package pipeline

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Wire field numbers of the descriptor and its nested messages. The layout
// is fixed; changing a number breaks every deployed artifact.
const (
	fieldP4Name        = 1
	fieldBFRuntimeInfo = 2
	fieldPacketIO      = 3
	fieldProfile       = 4

	fieldPacketIOPorts = 1
	fieldPacketIONbRxq = 2
	fieldPacketIONbTxq = 3

	fieldProfileName      = 1
	fieldProfilePipeScope = 2
	fieldProfileContext   = 3
	fieldProfileBinary    = 4
)

// PacketIOConfig carries the optional DPDK packet I/O parameters.
type PacketIOConfig struct {
	Ports  []uint32
	NbRxqs uint32
	NbTxqs uint32
}

// Profile carries one pipeline profile: its name, the pipes it applies to,
// and the context and binary artifacts produced by the compiler.
type Profile struct {
	Name      string
	PipeScope []uint32
	Context   []byte
	Binary    []byte
}

// Config is the deserialized pipeline descriptor.
type Config struct {
	P4Name        string
	BFRuntimeInfo []byte
	PacketIO      *PacketIOConfig
	Profiles      []*Profile
}

// Validate checks the descriptor invariants: a named program and at least
// one named profile.
func (c *Config) Validate() error {
	if c.P4Name == "" {
		return errors.NewInvalid("pipeline descriptor has no program name")
	}
	if len(c.Profiles) == 0 {
		return errors.NewInvalid("pipeline descriptor for %q has no profiles", c.P4Name)
	}
	for _, profile := range c.Profiles {
		if profile.Name == "" {
			return errors.NewInvalid("pipeline descriptor for %q has an unnamed profile", c.P4Name)
		}
	}
	return nil
}

// Marshal serializes the descriptor. Fields are emitted in ascending field
// number order so equal descriptors produce equal bytes.
func (c *Config) Marshal() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var b []byte
	b = protowire.AppendTag(b, fieldP4Name, protowire.BytesType)
	b = protowire.AppendString(b, c.P4Name)
	if len(c.BFRuntimeInfo) > 0 {
		b = protowire.AppendTag(b, fieldBFRuntimeInfo, protowire.BytesType)
		b = protowire.AppendBytes(b, c.BFRuntimeInfo)
	}
	if c.PacketIO != nil {
		b = protowire.AppendTag(b, fieldPacketIO, protowire.BytesType)
		b = protowire.AppendBytes(b, c.PacketIO.marshal())
	}
	for _, profile := range c.Profiles {
		b = protowire.AppendTag(b, fieldProfile, protowire.BytesType)
		b = protowire.AppendBytes(b, profile.marshal())
	}
	return b, nil
}

func (p *PacketIOConfig) marshal() []byte {
	var b []byte
	for _, port := range p.Ports {
		b = protowire.AppendTag(b, fieldPacketIOPorts, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(port))
	}
	if p.NbRxqs != 0 {
		b = protowire.AppendTag(b, fieldPacketIONbRxq, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(p.NbRxqs))
	}
	if p.NbTxqs != 0 {
		b = protowire.AppendTag(b, fieldPacketIONbTxq, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(p.NbTxqs))
	}
	return b
}

func (p *Profile) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldProfileName, protowire.BytesType)
	b = protowire.AppendString(b, p.Name)
	for _, pipe := range p.PipeScope {
		b = protowire.AppendTag(b, fieldProfilePipeScope, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(pipe))
	}
	if len(p.Context) > 0 {
		b = protowire.AppendTag(b, fieldProfileContext, protowire.BytesType)
		b = protowire.AppendBytes(b, p.Context)
	}
	if len(p.Binary) > 0 {
		b = protowire.AppendTag(b, fieldProfileBinary, protowire.BytesType)
		b = protowire.AppendBytes(b, p.Binary)
	}
	return b
}

// Unmarshal deserializes and validates a pipeline descriptor.
func Unmarshal(data []byte) (*Config, error) {
	config := &Config{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, errors.NewInvalid("malformed pipeline descriptor tag")
		}
		data = data[n:]

		switch {
		case num == fieldP4Name && typ == protowire.BytesType:
			value, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, errors.NewInvalid("malformed program name")
			}
			config.P4Name = value
			data = data[n:]
		case num == fieldBFRuntimeInfo && typ == protowire.BytesType:
			value, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, errors.NewInvalid("malformed bfruntime info")
			}
			config.BFRuntimeInfo = append([]byte(nil), value...)
			data = data[n:]
		case num == fieldPacketIO && typ == protowire.BytesType:
			value, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, errors.NewInvalid("malformed packet I/O config")
			}
			packetIO, err := unmarshalPacketIO(value)
			if err != nil {
				return nil, err
			}
			config.PacketIO = packetIO
			data = data[n:]
		case num == fieldProfile && typ == protowire.BytesType:
			value, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, errors.NewInvalid("malformed profile")
			}
			profile, err := unmarshalProfile(value)
			if err != nil {
				return nil, err
			}
			config.Profiles = append(config.Profiles, profile)
			data = data[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, errors.NewInvalid("malformed pipeline descriptor field %d", num)
			}
			data = data[n:]
		}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func unmarshalPacketIO(data []byte) (*PacketIOConfig, error) {
	packetIO := &PacketIOConfig{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, errors.NewInvalid("malformed packet I/O tag")
		}
		data = data[n:]

		if typ != protowire.VarintType {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, errors.NewInvalid("malformed packet I/O field %d", num)
			}
			data = data[n:]
			continue
		}
		value, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return nil, errors.NewInvalid("malformed packet I/O field %d", num)
		}
		data = data[n:]

		switch num {
		case fieldPacketIOPorts:
			packetIO.Ports = append(packetIO.Ports, uint32(value))
		case fieldPacketIONbRxq:
			packetIO.NbRxqs = uint32(value)
		case fieldPacketIONbTxq:
			packetIO.NbTxqs = uint32(value)
		}
	}
	return packetIO, nil
}

func unmarshalProfile(data []byte) (*Profile, error) {
	profile := &Profile{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, errors.NewInvalid("malformed profile tag")
		}
		data = data[n:]

		switch {
		case num == fieldProfileName && typ == protowire.BytesType:
			value, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, errors.NewInvalid("malformed profile name")
			}
			profile.Name = value
			data = data[n:]
		case num == fieldProfilePipeScope && typ == protowire.VarintType:
			value, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, errors.NewInvalid("malformed profile pipe scope")
			}
			profile.PipeScope = append(profile.PipeScope, uint32(value))
			data = data[n:]
		case num == fieldProfileContext && typ == protowire.BytesType:
			value, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, errors.NewInvalid("malformed profile context")
			}
			profile.Context = append([]byte(nil), value...)
			data = data[n:]
		case num == fieldProfileBinary && typ == protowire.BytesType:
			value, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, errors.NewInvalid("malformed profile binary")
			}
			profile.Binary = append([]byte(nil), value...)
			data = data[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, errors.NewInvalid("malformed profile field %d", num)
			}
			data = data[n:]
		}
	}
	return profile, nil
}

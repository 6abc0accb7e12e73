// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package extern indexes target-specific extern object classes that the
// standard P4Info vocabulary does not cover.
package extern

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/stratum-tdi/pkg/p4info"
	p4config "github.com/p4lang/p4runtime/go/p4/config/v1"
)

// Extern type IDs recognized in P4Info extern blocks
const (
	TypeIDPacketModMeter       uint32 = 133
	TypeIDDirectPacketModMeter uint32 = 134
)

// ID prefixes (top 8 bits) of the extern instance classes
const (
	PrefixPacketModMeter       uint32 = 0x82
	PrefixDirectPacketModMeter uint32 = 0x83
)

// Class labels of the extern instance classes
const (
	ClassPacketModMeter       = "PacketModMeter"
	ClassDirectPacketModMeter = "DirectPacketModMeter"
)

// PacketModMeter describes one instance of the indirect packet-mod meter
// extern, synthesized from its P4Info extern block.
type PacketModMeter struct {
	Preamble   *p4config.Preamble
	Spec       *p4config.MeterSpec
	Size       int64
	IndexWidth int32
}

// GetPreamble returns the instance preamble
func (m *PacketModMeter) GetPreamble() *p4config.Preamble {
	return m.Preamble
}

// DirectPacketModMeter describes one instance of the direct packet-mod meter
// extern, synthesized from its P4Info extern block.
type DirectPacketModMeter struct {
	Preamble *p4config.Preamble
	Spec     *p4config.MeterSpec
}

// GetPreamble returns the instance preamble
func (m *DirectPacketModMeter) GetPreamble() *p4config.Preamble {
	return m.Preamble
}

// Manager indexes the extern instance classes of one target. Like the P4Info
// manager it is immutable after Initialize and safe for unsynchronized readers.
type Manager interface {
	p4info.ExternManager

	// FindPacketModMeter returns the packet-mod meter with the given ID
	FindPacketModMeter(id uint32) (*PacketModMeter, error)

	// FindPacketModMeterByName returns the packet-mod meter with the given name
	FindPacketModMeterByName(name string) (*PacketModMeter, error)

	// FindDirectPacketModMeter returns the direct packet-mod meter with the given ID
	FindDirectPacketModMeter(id uint32) (*DirectPacketModMeter, error)

	// FindDirectPacketModMeterByName returns the direct packet-mod meter with the given name
	FindDirectPacketModMeterByName(name string) (*DirectPacketModMeter, error)

	// PacketModMeters returns all indexed packet-mod meters; read-only
	PacketModMeters() []*PacketModMeter

	// DirectPacketModMeters returns all indexed direct packet-mod meters; read-only
	DirectPacketModMeters() []*DirectPacketModMeter
}

// BaseManager is the extern manager of targets without extern classes;
// it indexes nothing and all lookups miss.
type BaseManager struct{}

// NewBaseManager creates an extern manager that recognizes no externs
func NewBaseManager() *BaseManager {
	return &BaseManager{}
}

// Initialize does nothing; targets without externs have nothing to index
func (m *BaseManager) Initialize(info *p4config.P4Info, check p4info.PreambleCheck) error {
	return nil
}

// FindPacketModMeter always misses
func (m *BaseManager) FindPacketModMeter(id uint32) (*PacketModMeter, error) {
	return nil, errors.NewNotFound("%s with ID 0x%08x not found", ClassPacketModMeter, id)
}

// FindPacketModMeterByName always misses
func (m *BaseManager) FindPacketModMeterByName(name string) (*PacketModMeter, error) {
	return nil, errors.NewNotFound("%s with name %q not found", ClassPacketModMeter, name)
}

// FindDirectPacketModMeter always misses
func (m *BaseManager) FindDirectPacketModMeter(id uint32) (*DirectPacketModMeter, error) {
	return nil, errors.NewNotFound("%s with ID 0x%08x not found", ClassDirectPacketModMeter, id)
}

// FindDirectPacketModMeterByName always misses
func (m *BaseManager) FindDirectPacketModMeterByName(name string) (*DirectPacketModMeter, error) {
	return nil, errors.NewNotFound("%s with name %q not found", ClassDirectPacketModMeter, name)
}

// PacketModMeters returns no instances
func (m *BaseManager) PacketModMeters() []*PacketModMeter {
	return nil
}

// DirectPacketModMeters returns no instances
func (m *BaseManager) DirectPacketModMeters() []*DirectPacketModMeter {
	return nil
}

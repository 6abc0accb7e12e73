// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package tdi defines the contract consumed from the Target-Dependent Interface SDK.
// The daemon core drives tables and meters exclusively through these interfaces;
// concrete bindings are supplied by the per-target SDE integration.
package tdi

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
)

// Target denotes the flavor of the underlying TDI backend.
type Target int

const (
	// TargetTofino drives a Tofino ASIC
	TargetTofino Target = iota
	// TargetDPDK drives the DPDK soft-switch backend
	TargetDPDK
	// TargetES2K drives an ES2K IPU
	TargetES2K
)

func (t Target) String() string {
	switch t {
	case TargetTofino:
		return "tofino"
	case TargetDPDK:
		return "dpdk"
	case TargetES2K:
		return "es2k"
	}
	return "unknown"
}

// ParseTarget resolves a target name, as used in chassis configuration
// files, into a Target constant.
func ParseTarget(name string) (Target, error) {
	switch name {
	case "tofino":
		return TargetTofino, nil
	case "dpdk":
		return TargetDPDK, nil
	case "es2k":
		return TargetES2K, nil
	}
	return 0, errors.NewInvalid("unknown target %q", name)
}

// Session is an opaque handle over a batch of SDE operations; concrete
// session types are provided by the SDE bindings and are not inspected
// by the core.
type Session interface{}

// MeterCell carries the two-rate three-color configuration of a single
// indirect meter cell. Rates and bursts are in the units declared by the
// meter's P4Info spec.
type MeterCell struct {
	Index  uint32
	CIR    uint64
	CBurst uint64
	PIR    uint64
	PBurst uint64
}

// PktModMeterConfig is the extended policer configuration used by the
// packet-mod meter externs. Rates and bursts are carried in both unit
// systems; per-color counters reflect bytes and packets observed since
// the last reset.
type PktModMeterConfig struct {
	MeterProfID uint32

	CIRKbps     uint64
	PIRKbps     uint64
	CBurstKbits uint64
	PBurstKbits uint64

	CIRPps     uint64
	PIRPps     uint64
	CBurstPkts uint64
	PBurstPkts uint64

	GreenBytes    uint64
	GreenPackets  uint64
	YellowBytes   uint64
	YellowPackets uint64
	RedBytes      uint64
	RedPackets    uint64
}

// PktModMeterCell pairs a packet-mod meter index with its configuration.
type PktModMeterCell struct {
	Index  uint32
	Config PktModMeterConfig
}

// TableData is an opaque table-data buffer with typed accessors for the
// direct resources that share it.
type TableData interface {
	// SetCounterData stamps byte and packet counts into the buffer.
	SetCounterData(bytes, packets uint64) error

	// GetCounterData reads the byte and packet counts out of the buffer.
	GetCounterData() (bytes, packets uint64, err error)

	// SetMeterConfig stamps a standard meter configuration into the buffer.
	SetMeterConfig(inPackets bool, cir, cburst, pir, pburst uint64) error

	// GetMeterConfig reads the standard meter configuration out of the buffer.
	GetMeterConfig() (inPackets bool, cir, cburst, pir, pburst uint64, err error)

	// SetPktModMeterConfig stamps a packet-mod policer configuration into the buffer.
	SetPktModMeterConfig(config *PktModMeterConfig) error

	// GetPktModMeterConfig reads the packet-mod policer configuration out of
	// the buffer into the supplied structure.
	GetPktModMeterConfig(config *PktModMeterConfig) error
}

// SDE is the top-level southbound surface of the TDI SDK consumed by the core.
// All calls may block on hardware or driver I/O; reads return cells in the
// order the SDE yields them.
type SDE interface {
	// NewSession allocates a new SDE session.
	NewSession() (Session, error)

	// NewTableData allocates an empty table-data buffer for the specified table.
	NewTableData(tableID uint32) (TableData, error)

	// ReadIndirectMeters reads one cell, or all cells when index is nil,
	// of the specified indirect meter.
	ReadIndirectMeters(session Session, device uint64, meterID uint32, index *uint32) ([]MeterCell, error)

	// WriteIndirectMeter writes the configuration of a single indirect meter cell.
	WriteIndirectMeter(session Session, device uint64, meterID uint32, inPackets bool, cell MeterCell) error

	// ReadPktModMeters reads one cell, or all cells when index is nil,
	// of the specified packet-mod meter.
	ReadPktModMeters(session Session, device uint64, meterID uint32, index *uint32) ([]PktModMeterCell, error)

	// WritePktModMeter writes the configuration of a single packet-mod meter cell.
	WritePktModMeter(session Session, device uint64, meterID uint32, index uint32, config *PktModMeterConfig) error

	// DeletePktModMeterConfig resets the configuration of a single packet-mod meter cell.
	DeletePktModMeterConfig(session Session, device uint64, meterID uint32, index uint32) error
}

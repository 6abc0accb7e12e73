// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package sim provides an in-memory simulation of the TDI SDE contract,
// used by tests and by the daemon when running without hardware.
package sim

import (
	"sort"
	"sync"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/stratum-tdi/pkg/tdi"
)

// Session is a trivial in-memory SDE session.
type Session struct {
	ID int
}

// TableData is an in-memory table-data buffer.
type TableData struct {
	TableID uint32

	hasCounter bool
	bytes      uint64
	packets    uint64

	hasMeter  bool
	inPackets bool
	cir       uint64
	cburst    uint64
	pir       uint64
	pburst    uint64

	hasPktMod bool
	pktMod    tdi.PktModMeterConfig
}

// SetCounterData stamps byte and packet counts into the buffer
func (d *TableData) SetCounterData(bytes, packets uint64) error {
	d.hasCounter = true
	d.bytes, d.packets = bytes, packets
	return nil
}

// GetCounterData reads the byte and packet counts out of the buffer
func (d *TableData) GetCounterData() (uint64, uint64, error) {
	return d.bytes, d.packets, nil
}

// SetMeterConfig stamps a standard meter configuration into the buffer
func (d *TableData) SetMeterConfig(inPackets bool, cir, cburst, pir, pburst uint64) error {
	d.hasMeter = true
	d.inPackets = inPackets
	d.cir, d.cburst, d.pir, d.pburst = cir, cburst, pir, pburst
	return nil
}

// GetMeterConfig reads the standard meter configuration out of the buffer
func (d *TableData) GetMeterConfig() (bool, uint64, uint64, uint64, uint64, error) {
	return d.inPackets, d.cir, d.cburst, d.pir, d.pburst, nil
}

// SetPktModMeterConfig stamps a packet-mod policer configuration into the buffer
func (d *TableData) SetPktModMeterConfig(config *tdi.PktModMeterConfig) error {
	d.hasPktMod = true
	d.pktMod = *config
	return nil
}

// GetPktModMeterConfig reads the packet-mod policer configuration out of the buffer
func (d *TableData) GetPktModMeterConfig(config *tdi.PktModMeterConfig) error {
	*config = d.pktMod
	return nil
}

// MeterKey identifies a single meter cell.
type MeterKey struct {
	MeterID uint32
	Index   uint32
}

// SDE is an in-memory simulation of the TDI SDE surface. Meters written through it
// are retained and can be read back; deletions are recorded for assertions.
type SDE struct {
	mu sync.Mutex

	sessions int
	meters   map[MeterKey]tdi.MeterCell
	pktMod   map[MeterKey]tdi.PktModMeterConfig

	// Deleted records every cell passed to DeletePktModMeterConfig.
	Deleted []MeterKey

	// Err, when set, is returned by all meter operations.
	Err error
}

// NewSDE creates a new in-memory SDE
func NewSDE() *SDE {
	return &SDE{
		meters: make(map[MeterKey]tdi.MeterCell),
		pktMod: make(map[MeterKey]tdi.PktModMeterConfig),
	}
}

// NewSession allocates a new session
func (s *SDE) NewSession() (tdi.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions++
	return &Session{ID: s.sessions}, nil
}

// NewTableData allocates an empty in-memory table-data buffer
func (s *SDE) NewTableData(tableID uint32) (tdi.TableData, error) {
	return &TableData{TableID: tableID}, nil
}

// SeedIndirectMeter pre-populates an indirect meter cell
func (s *SDE) SeedIndirectMeter(meterID uint32, cell tdi.MeterCell) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meters[MeterKey{meterID, cell.Index}] = cell
}

// SeedPktModMeter pre-populates a packet-mod meter cell
func (s *SDE) SeedPktModMeter(meterID uint32, cell tdi.PktModMeterCell) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pktMod[MeterKey{meterID, cell.Index}] = cell.Config
}

// ReadIndirectMeters reads one or all cells of the specified indirect meter
func (s *SDE) ReadIndirectMeters(_ tdi.Session, _ uint64, meterID uint32, index *uint32) ([]tdi.MeterCell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if index != nil {
		cell, ok := s.meters[MeterKey{meterID, *index}]
		if !ok {
			return nil, errors.NewNotFound("meter 0x%08x has no cell at index %d", meterID, *index)
		}
		return []tdi.MeterCell{cell}, nil
	}
	cells := make([]tdi.MeterCell, 0, len(s.meters))
	for key, cell := range s.meters {
		if key.MeterID == meterID {
			cells = append(cells, cell)
		}
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Index < cells[j].Index })
	return cells, nil
}

// WriteIndirectMeter writes a single indirect meter cell
func (s *SDE) WriteIndirectMeter(_ tdi.Session, _ uint64, meterID uint32, _ bool, cell tdi.MeterCell) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.meters[MeterKey{meterID, cell.Index}] = cell
	return nil
}

// ReadPktModMeters reads one or all cells of the specified packet-mod meter
func (s *SDE) ReadPktModMeters(_ tdi.Session, _ uint64, meterID uint32, index *uint32) ([]tdi.PktModMeterCell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if index != nil {
		config, ok := s.pktMod[MeterKey{meterID, *index}]
		if !ok {
			return nil, errors.NewNotFound("meter 0x%08x has no cell at index %d", meterID, *index)
		}
		return []tdi.PktModMeterCell{{Index: *index, Config: config}}, nil
	}
	cells := make([]tdi.PktModMeterCell, 0, len(s.pktMod))
	for key, config := range s.pktMod {
		if key.MeterID == meterID {
			cells = append(cells, tdi.PktModMeterCell{Index: key.Index, Config: config})
		}
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Index < cells[j].Index })
	return cells, nil
}

// WritePktModMeter writes a single packet-mod meter cell
func (s *SDE) WritePktModMeter(_ tdi.Session, _ uint64, meterID uint32, index uint32, config *tdi.PktModMeterConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.pktMod[MeterKey{meterID, index}] = *config
	return nil
}

// DeletePktModMeterConfig resets a single packet-mod meter cell
func (s *SDE) DeletePktModMeterConfig(_ tdi.Session, _ uint64, meterID uint32, index uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	delete(s.pktMod, MeterKey{meterID, index})
	s.Deleted = append(s.Deleted, MeterKey{meterID, index})
	return nil
}

// DeletedCount returns the number of recorded packet-mod meter deletions
func (s *SDE) DeletedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Deleted)
}

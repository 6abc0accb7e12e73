// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package resources

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
	p4api "github.com/p4lang/p4runtime/go/p4/v1"
	"github.com/onosproject/stratum-tdi/pkg/p4info"
	"github.com/onosproject/stratum-tdi/pkg/tdi"
)

// directMeterHandler translates direct meter configuration to and from the
// table-data shared with the owning table entry.
type directMeterHandler struct {
	handlerBase
	deps *Deps
}

// NewDirectMeterHandler creates a handler for one direct meter class
func NewDirectMeterHandler(deps *Deps) Handler {
	return &directMeterHandler{handlerBase{kind: KindDirectMeter}, deps}
}

func (h *directMeterHandler) unitInPackets(tableID uint32) (bool, error) {
	meter, err := h.deps.P4Info.FindDirectMeterForTable(tableID)
	if err != nil {
		return false, err
	}
	return p4info.MeterUnitInPackets(meter.Spec)
}

// BuildTableData stamps the entry's meter config, if any, into the table data
func (h *directMeterHandler) BuildTableData(entry *p4api.TableEntry, data tdi.TableData) error {
	if entry.MeterConfig == nil {
		return nil
	}
	h.deps.Lock.RLock()
	inPackets, err := h.unitInPackets(entry.TableId)
	h.deps.Lock.RUnlock()
	if err != nil {
		return err
	}
	config := entry.MeterConfig
	return data.SetMeterConfig(inPackets,
		uint64(config.Cir), uint64(config.Cburst), uint64(config.Pir), uint64(config.Pburst))
}

// BuildDirectMeterEntryData stamps the direct meter entry's config into the table data
func (h *directMeterHandler) BuildDirectMeterEntryData(entry *p4api.DirectMeterEntry, data tdi.TableData) error {
	if entry.Config == nil {
		return errors.NewInvalid("direct meter entry carries no config")
	}
	if entry.TableEntry == nil {
		return errors.NewInvalid("direct meter entry carries no table entry")
	}
	h.deps.Lock.RLock()
	inPackets, err := h.unitInPackets(entry.TableEntry.TableId)
	h.deps.Lock.RUnlock()
	if err != nil {
		return err
	}
	config := entry.Config
	return data.SetMeterConfig(inPackets,
		uint64(config.Cir), uint64(config.Cburst), uint64(config.Pir), uint64(config.Pburst))
}

// BuildP4TableEntry back-fills the entry's meter config when the read asked for it
func (h *directMeterHandler) BuildP4TableEntry(data tdi.TableData, entry *p4api.TableEntry) error {
	if entry.MeterConfig == nil {
		return nil
	}
	_, cir, cburst, pir, pburst, err := data.GetMeterConfig()
	if err != nil {
		return err
	}
	entry.MeterConfig = &p4api.MeterConfig{
		Cir: int64(cir), Cburst: int64(cburst), Pir: int64(pir), Pburst: int64(pburst),
	}
	return nil
}

// BuildDirectMeterEntry back-fills the direct meter entry's config from the table data
func (h *directMeterHandler) BuildDirectMeterEntry(data tdi.TableData, entry *p4api.DirectMeterEntry) error {
	_, cir, cburst, pir, pburst, err := data.GetMeterConfig()
	if err != nil {
		return err
	}
	entry.Config = &p4api.MeterConfig{
		Cir: int64(cir), Cburst: int64(cburst), Pir: int64(pir), Pburst: int64(pburst),
	}
	return nil
}

// meterHandler drives indirect meters through the SDE's bulk cell operations.
type meterHandler struct {
	handlerBase
	deps *Deps
}

// NewMeterHandler creates a handler for one indirect meter class
func NewMeterHandler(deps *Deps) Handler {
	return &meterHandler{handlerBase{kind: KindMeter}, deps}
}

func (h *meterHandler) unitInPackets(meterID uint32) (bool, error) {
	meter, err := h.deps.P4Info.FindMeter(meterID)
	if err != nil {
		return false, err
	}
	return p4info.MeterUnitInPackets(meter.Spec)
}

// ReadMeterEntry reads the selected meter cell, or all cells when the entry
// carries no index, and streams the result as a single batched response.
func (h *meterHandler) ReadMeterEntry(session tdi.Session, entry *p4api.MeterEntry, send ResponseSender) error {
	h.deps.Lock.RLock()
	_, err := h.unitInPackets(entry.MeterId)
	h.deps.Lock.RUnlock()
	if err != nil {
		return err
	}

	var index *uint32
	if entry.Index != nil {
		value := uint32(entry.Index.Index)
		index = &value
	}
	cells, err := h.deps.SDE.ReadIndirectMeters(session, h.deps.Device, entry.MeterId, index)
	if err != nil {
		return err
	}

	response := &p4api.ReadResponse{}
	for _, cell := range cells {
		response.Entities = append(response.Entities, &p4api.Entity{
			Entity: &p4api.Entity_MeterEntry{MeterEntry: &p4api.MeterEntry{
				MeterId: entry.MeterId,
				Index:   &p4api.Index{Index: int64(cell.Index)},
				Config: &p4api.MeterConfig{
					Cir: int64(cell.CIR), Cburst: int64(cell.CBurst),
					Pir: int64(cell.PIR), Pburst: int64(cell.PBurst),
				},
			}},
		})
	}
	if err = send(response); err != nil {
		return errors.NewInternal("unable to send meter entries for 0x%08x: %v", entry.MeterId, err)
	}
	return nil
}

// WriteMeterEntry applies the update to a single meter cell. INSERT and
// MODIFY are an idempotent upsert; DELETE is not supported for indirect
// meters since the SDE exposes no cell reset.
func (h *meterHandler) WriteMeterEntry(session tdi.Session, update p4api.Update_Type, entry *p4api.MeterEntry) error {
	if update == p4api.Update_DELETE {
		return errors.NewNotSupported("DELETE is not supported for meter 0x%08x", entry.MeterId)
	}
	h.deps.Lock.RLock()
	inPackets, err := h.unitInPackets(entry.MeterId)
	h.deps.Lock.RUnlock()
	if err != nil {
		return err
	}
	if entry.Index == nil {
		return errors.NewInvalid("meter 0x%08x write requires an index", entry.MeterId)
	}
	if entry.Config == nil {
		return errors.NewInvalid("meter 0x%08x write requires a config", entry.MeterId)
	}
	cell := tdi.MeterCell{
		Index:  uint32(entry.Index.Index),
		CIR:    uint64(entry.Config.Cir),
		CBurst: uint64(entry.Config.Cburst),
		PIR:    uint64(entry.Config.Pir),
		PBurst: uint64(entry.Config.Pburst),
	}
	return h.deps.SDE.WriteIndirectMeter(session, h.deps.Device, entry.MeterId, inPackets, cell)
}

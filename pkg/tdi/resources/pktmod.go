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

// setPolicerConfig copies a meter config and optional per-color counters
// into the packet-mod policer structure using the meter's unit system.
func setPolicerConfig(config *tdi.PktModMeterConfig, mc *p4api.MeterConfig, cd *p4api.MeterCounterData, inPackets bool) {
	if mc != nil {
		if inPackets {
			config.CIRPps = uint64(mc.Cir)
			config.CBurstPkts = uint64(mc.Cburst)
			config.PIRPps = uint64(mc.Pir)
			config.PBurstPkts = uint64(mc.Pburst)
		} else {
			config.CIRKbps = uint64(mc.Cir)
			config.CBurstKbits = uint64(mc.Cburst)
			config.PIRKbps = uint64(mc.Pir)
			config.PBurstKbits = uint64(mc.Pburst)
		}
	}
	if cd != nil {
		if cd.Green != nil {
			config.GreenBytes = uint64(cd.Green.ByteCount)
			config.GreenPackets = uint64(cd.Green.PacketCount)
		}
		if cd.Yellow != nil {
			config.YellowBytes = uint64(cd.Yellow.ByteCount)
			config.YellowPackets = uint64(cd.Yellow.PacketCount)
		}
		if cd.Red != nil {
			config.RedBytes = uint64(cd.Red.ByteCount)
			config.RedPackets = uint64(cd.Red.PacketCount)
		}
	}
}

// getPolicerConfig produces the meter config in the meter's unit system.
func getPolicerConfig(config *tdi.PktModMeterConfig, inPackets bool) *p4api.MeterConfig {
	if inPackets {
		return &p4api.MeterConfig{
			Cir: int64(config.CIRPps), Cburst: int64(config.CBurstPkts),
			Pir: int64(config.PIRPps), Pburst: int64(config.PBurstPkts),
		}
	}
	return &p4api.MeterConfig{
		Cir: int64(config.CIRKbps), Cburst: int64(config.CBurstKbits),
		Pir: int64(config.PIRKbps), Pburst: int64(config.PBurstKbits),
	}
}

// getPolicerCounters produces the per-color byte and packet counters.
func getPolicerCounters(config *tdi.PktModMeterConfig) *p4api.MeterCounterData {
	return &p4api.MeterCounterData{
		Green:  &p4api.CounterData{ByteCount: int64(config.GreenBytes), PacketCount: int64(config.GreenPackets)},
		Yellow: &p4api.CounterData{ByteCount: int64(config.YellowBytes), PacketCount: int64(config.YellowPackets)},
		Red:    &p4api.CounterData{ByteCount: int64(config.RedBytes), PacketCount: int64(config.RedPackets)},
	}
}

// pktModMeterHandler drives indirect packet-mod meters through the SDE's
// policer primitives.
type pktModMeterHandler struct {
	handlerBase
	deps *Deps
}

// NewPacketModMeterHandler creates a handler for one packet-mod meter class
func NewPacketModMeterHandler(deps *Deps) Handler {
	return &pktModMeterHandler{handlerBase{kind: KindPacketModMeter}, deps}
}

func (h *pktModMeterHandler) unitInPackets(meterID uint32) (bool, error) {
	meter, err := h.deps.Externs.FindPacketModMeter(meterID)
	if err != nil {
		return false, err
	}
	return p4info.MeterUnitInPackets(meter.Spec)
}

// ReadMeterEntry reads the selected policer cell, or all cells when the entry
// carries no index, and streams the result as a single batched response.
func (h *pktModMeterHandler) ReadMeterEntry(session tdi.Session, entry *p4api.MeterEntry, send ResponseSender) error {
	h.deps.Lock.RLock()
	inPackets, err := h.unitInPackets(entry.MeterId)
	h.deps.Lock.RUnlock()
	if err != nil {
		return err
	}

	var index *uint32
	if entry.Index != nil {
		value := uint32(entry.Index.Index)
		index = &value
	}
	cells, err := h.deps.SDE.ReadPktModMeters(session, h.deps.Device, entry.MeterId, index)
	if err != nil {
		return err
	}

	response := &p4api.ReadResponse{}
	for i := range cells {
		cell := &cells[i]
		response.Entities = append(response.Entities, &p4api.Entity{
			Entity: &p4api.Entity_MeterEntry{MeterEntry: &p4api.MeterEntry{
				MeterId:     entry.MeterId,
				Index:       &p4api.Index{Index: int64(cell.Index)},
				Config:      getPolicerConfig(&cell.Config, inPackets),
				CounterData: getPolicerCounters(&cell.Config),
			}},
		})
	}
	if err = send(response); err != nil {
		return errors.NewInternal("unable to send meter entries for 0x%08x: %v", entry.MeterId, err)
	}
	return nil
}

// WriteMeterEntry applies the update to a single policer cell. DELETE resets
// the cell's configuration; writing a zero config is not sufficient.
func (h *pktModMeterHandler) WriteMeterEntry(session tdi.Session, update p4api.Update_Type, entry *p4api.MeterEntry) error {
	h.deps.Lock.RLock()
	inPackets, err := h.unitInPackets(entry.MeterId)
	h.deps.Lock.RUnlock()
	if err != nil {
		return err
	}
	if entry.Index == nil {
		return errors.NewInvalid("meter 0x%08x write requires an index", entry.MeterId)
	}
	index := uint32(entry.Index.Index)

	if update == p4api.Update_DELETE {
		return h.deps.SDE.DeletePktModMeterConfig(session, h.deps.Device, entry.MeterId, index)
	}

	config := &tdi.PktModMeterConfig{}
	setPolicerConfig(config, entry.Config, entry.CounterData, inPackets)
	return h.deps.SDE.WritePktModMeter(session, h.deps.Device, entry.MeterId, index, config)
}

// directPktModMeterHandler translates direct packet-mod policer configuration
// to and from the table-data shared with the owning table entry. Direct
// packet-mod meters are byte-based.
type directPktModMeterHandler struct {
	handlerBase
	deps *Deps
}

// NewDirectPacketModMeterHandler creates a handler for one direct packet-mod meter class
func NewDirectPacketModMeterHandler(deps *Deps) Handler {
	return &directPktModMeterHandler{handlerBase{kind: KindDirectPacketModMeter}, deps}
}

// BuildTableData stamps the entry's policer config, if any, into the table data
func (h *directPktModMeterHandler) BuildTableData(entry *p4api.TableEntry, data tdi.TableData) error {
	if entry.MeterConfig == nil {
		return nil
	}
	config := &tdi.PktModMeterConfig{}
	setPolicerConfig(config, entry.MeterConfig, entry.MeterCounterData, false)
	return data.SetPktModMeterConfig(config)
}

// BuildDirectMeterEntryData stamps the direct meter entry's policer config into the table data
func (h *directPktModMeterHandler) BuildDirectMeterEntryData(entry *p4api.DirectMeterEntry, data tdi.TableData) error {
	if entry.Config == nil {
		return errors.NewInvalid("direct meter entry carries no config")
	}
	config := &tdi.PktModMeterConfig{}
	setPolicerConfig(config, entry.Config, entry.CounterData, false)
	return data.SetPktModMeterConfig(config)
}

// BuildP4TableEntry back-fills the entry's policer config when the read asked for it
func (h *directPktModMeterHandler) BuildP4TableEntry(data tdi.TableData, entry *p4api.TableEntry) error {
	if entry.MeterConfig == nil {
		return nil
	}
	config := &tdi.PktModMeterConfig{}
	if err := data.GetPktModMeterConfig(config); err != nil {
		return err
	}
	entry.MeterConfig = getPolicerConfig(config, false)
	entry.MeterCounterData = getPolicerCounters(config)
	return nil
}

// BuildDirectMeterEntry back-fills the direct meter entry's policer config from the table data
func (h *directPktModMeterHandler) BuildDirectMeterEntry(data tdi.TableData, entry *p4api.DirectMeterEntry) error {
	config := &tdi.PktModMeterConfig{}
	if err := data.GetPktModMeterConfig(config); err != nil {
		return err
	}
	entry.Config = getPolicerConfig(config, false)
	entry.CounterData = getPolicerCounters(config)
	return nil
}

// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package helpers provides the per-target table helper bundle used by the
// request-processing layer for operations the generic handlers do not cover.
package helpers

import (
	p4api "github.com/p4lang/p4runtime/go/p4/v1"
	"github.com/onosproject/stratum-tdi/pkg/tdi"
	"github.com/onosproject/stratum-tdi/pkg/tdi/resources"
)

// TableHelper bundles the target-specific packet-mod meter operations.
// Targets without packet-mod meters use the base variant, whose operations
// succeed without effect.
type TableHelper interface {
	// BuildDirPktModTableData populates table data from a table entry's
	// direct packet-mod policer config
	BuildDirPktModTableData(entry *p4api.TableEntry, data tdi.TableData) error

	// ReadDirPktModMeterEntry back-fills a direct meter entry from table data
	ReadDirPktModMeterEntry(data tdi.TableData, entry *p4api.DirectMeterEntry) error

	// ReadPktModMeterEntry streams the policer cells selected by the entry
	ReadPktModMeterEntry(session tdi.Session, entry *p4api.MeterEntry, send resources.ResponseSender) error

	// WritePktModMeterEntry applies the update to the selected policer cell
	WritePktModMeterEntry(session tdi.Session, update p4api.Update_Type, entry *p4api.MeterEntry) error
}

// BaseTableHelper is the no-op helper used by targets without packet-mod meters.
type BaseTableHelper struct{}

// NewBaseTableHelper creates a no-op table helper
func NewBaseTableHelper() *BaseTableHelper {
	return &BaseTableHelper{}
}

// BuildDirPktModTableData does nothing
func (h *BaseTableHelper) BuildDirPktModTableData(entry *p4api.TableEntry, data tdi.TableData) error {
	return nil
}

// ReadDirPktModMeterEntry does nothing
func (h *BaseTableHelper) ReadDirPktModMeterEntry(data tdi.TableData, entry *p4api.DirectMeterEntry) error {
	return nil
}

// ReadPktModMeterEntry does nothing
func (h *BaseTableHelper) ReadPktModMeterEntry(session tdi.Session, entry *p4api.MeterEntry, send resources.ResponseSender) error {
	return nil
}

// WritePktModMeterEntry does nothing
func (h *BaseTableHelper) WritePktModMeterEntry(session tdi.Session, update p4api.Update_Type, entry *p4api.MeterEntry) error {
	return nil
}

// ES2KTableHelper delegates the packet-mod meter operations to the ES2K
// resource handlers.
type ES2KTableHelper struct {
	direct   resources.Handler
	indirect resources.Handler
}

// NewES2KTableHelper creates a table helper backed by the ES2K handlers
func NewES2KTableHelper(deps *resources.Deps) *ES2KTableHelper {
	return &ES2KTableHelper{
		direct:   resources.NewDirectPacketModMeterHandler(deps),
		indirect: resources.NewPacketModMeterHandler(deps),
	}
}

// BuildDirPktModTableData populates table data from the entry's policer config
func (h *ES2KTableHelper) BuildDirPktModTableData(entry *p4api.TableEntry, data tdi.TableData) error {
	return h.direct.BuildTableData(entry, data)
}

// ReadDirPktModMeterEntry back-fills the direct meter entry from table data
func (h *ES2KTableHelper) ReadDirPktModMeterEntry(data tdi.TableData, entry *p4api.DirectMeterEntry) error {
	return h.direct.BuildDirectMeterEntry(data, entry)
}

// ReadPktModMeterEntry streams the selected policer cells
func (h *ES2KTableHelper) ReadPktModMeterEntry(session tdi.Session, entry *p4api.MeterEntry, send resources.ResponseSender) error {
	return h.indirect.ReadMeterEntry(session, entry, send)
}

// WritePktModMeterEntry applies the update to the selected policer cell
func (h *ES2KTableHelper) WritePktModMeterEntry(session tdi.Session, update p4api.Update_Type, entry *p4api.MeterEntry) error {
	return h.indirect.WriteMeterEntry(session, update, entry)
}

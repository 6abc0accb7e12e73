// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package resources

import (
	p4api "github.com/p4lang/p4runtime/go/p4/v1"
	"github.com/onosproject/stratum-tdi/pkg/tdi"
)

// directCounterHandler translates direct counter reads and writes on the
// table-data shared with the owning table entry.
type directCounterHandler struct {
	handlerBase
}

// NewDirectCounterHandler creates a handler for one direct counter class
func NewDirectCounterHandler() Handler {
	return &directCounterHandler{handlerBase{kind: KindDirectCounter}}
}

// BuildTableData stamps the entry's counter data, if any, into the table data
func (h *directCounterHandler) BuildTableData(entry *p4api.TableEntry, data tdi.TableData) error {
	if entry.CounterData == nil {
		return nil
	}
	return data.SetCounterData(uint64(entry.CounterData.ByteCount), uint64(entry.CounterData.PacketCount))
}

// BuildP4TableEntry back-fills the entry's counter data when the read asked for it
func (h *directCounterHandler) BuildP4TableEntry(data tdi.TableData, entry *p4api.TableEntry) error {
	if entry.CounterData == nil {
		return nil
	}
	bytes, packets, err := data.GetCounterData()
	if err != nil {
		return err
	}
	entry.CounterData = &p4api.CounterData{
		ByteCount:   int64(bytes),
		PacketCount: int64(packets),
	}
	return nil
}

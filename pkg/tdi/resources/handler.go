// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package resources maps P4Runtime entity operations onto TDI table and
// meter primitives. Each P4Info resource class has one handler; the mapper
// dispatches by resource ID.
package resources

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	p4api "github.com/p4lang/p4runtime/go/p4/v1"
	"github.com/onosproject/stratum-tdi/pkg/tdi"
)

var log = logging.GetLogger("tdi", "resources")

// Kind identifies the resource class a handler serves.
type Kind int

const (
	// KindDirectCounter serves P4 direct counters
	KindDirectCounter Kind = iota
	// KindDirectMeter serves P4 direct meters
	KindDirectMeter
	// KindMeter serves P4 indirect meters
	KindMeter
	// KindDirectPacketModMeter serves ES2K direct packet-mod meters
	KindDirectPacketModMeter
	// KindPacketModMeter serves ES2K indirect packet-mod meters
	KindPacketModMeter
)

func (k Kind) String() string {
	switch k {
	case KindDirectCounter:
		return "DirectCounter"
	case KindDirectMeter:
		return "DirectMeter"
	case KindMeter:
		return "Meter"
	case KindDirectPacketModMeter:
		return "DirectPacketModMeter"
	case KindPacketModMeter:
		return "PacketModMeter"
	}
	return "Unknown"
}

// ResponseSender delivers a batch of read results to the caller's stream.
type ResponseSender func(*p4api.ReadResponse) error

// Handler translates P4Runtime operations on one resource class into TDI
// calls. Handlers are shared; all state lives in the session and table data.
type Handler interface {
	// Kind returns the resource class this handler serves
	Kind() Kind

	// ReadMeterEntry streams the meter cells selected by the entry
	ReadMeterEntry(session tdi.Session, entry *p4api.MeterEntry, send ResponseSender) error

	// WriteMeterEntry applies the update to the selected meter cell
	WriteMeterEntry(session tdi.Session, update p4api.Update_Type, entry *p4api.MeterEntry) error

	// BuildTableData populates table data from a table entry's direct resources
	BuildTableData(entry *p4api.TableEntry, data tdi.TableData) error

	// BuildDirectMeterEntryData populates table data from a direct meter entry
	BuildDirectMeterEntryData(entry *p4api.DirectMeterEntry, data tdi.TableData) error

	// BuildP4TableEntry back-fills a table entry's direct resources from table data
	BuildP4TableEntry(data tdi.TableData, entry *p4api.TableEntry) error

	// BuildDirectMeterEntry back-fills a direct meter entry from table data
	BuildDirectMeterEntry(data tdi.TableData, entry *p4api.DirectMeterEntry) error
}

// handlerBase supplies NotSupported defaults so concrete handlers implement
// only the operations their class admits.
type handlerBase struct {
	kind Kind
}

func (h *handlerBase) Kind() Kind {
	return h.kind
}

func (h *handlerBase) ReadMeterEntry(session tdi.Session, entry *p4api.MeterEntry, send ResponseSender) error {
	return errors.NewNotSupported("%s does not support reading meter entries", h.kind)
}

func (h *handlerBase) WriteMeterEntry(session tdi.Session, update p4api.Update_Type, entry *p4api.MeterEntry) error {
	return errors.NewNotSupported("%s does not support writing meter entries", h.kind)
}

func (h *handlerBase) BuildTableData(entry *p4api.TableEntry, data tdi.TableData) error {
	return errors.NewNotSupported("%s does not support building table data", h.kind)
}

func (h *handlerBase) BuildDirectMeterEntryData(entry *p4api.DirectMeterEntry, data tdi.TableData) error {
	return errors.NewNotSupported("%s does not support direct meter entries", h.kind)
}

func (h *handlerBase) BuildP4TableEntry(data tdi.TableData, entry *p4api.TableEntry) error {
	return errors.NewNotSupported("%s does not support building table entries", h.kind)
}

func (h *handlerBase) BuildDirectMeterEntry(data tdi.TableData, entry *p4api.DirectMeterEntry) error {
	return errors.NewNotSupported("%s does not support direct meter entries", h.kind)
}

// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package resources

import (
	"sync"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/stratum-tdi/pkg/p4info"
	"github.com/onosproject/stratum-tdi/pkg/tdi"
	"github.com/onosproject/stratum-tdi/pkg/tdi/extern"
)

// Deps carries the non-owning references shared by all resource handlers.
// The lock guards the P4Info and extern managers against concurrent
// pipeline reconfiguration.
type Deps struct {
	SDE     tdi.SDE
	P4Info  *p4info.Manager
	Externs ExternLookup
	Lock    *sync.RWMutex
	Device  uint64
}

// ExternLookup is the slice of the extern manager the handlers consume.
type ExternLookup interface {
	FindPacketModMeter(id uint32) (*extern.PacketModMeter, error)
}

// ExternHook registers the target-specific extern handlers with the mapper.
// The base targets use a nil hook.
type ExternHook func(mapper *Mapper, deps *Deps) error

// Mapper dispatches P4Runtime entity operations to the handler registered
// for the entity's resource ID.
type Mapper struct {
	deps     *Deps
	hook     ExternHook
	handlers map[uint32]Handler
}

// NewMapper creates a new resource mapper with the given extern hook
func NewMapper(hook ExternHook) *Mapper {
	return &Mapper{
		hook:     hook,
		handlers: make(map[uint32]Handler),
	}
}

// Initialize registers one shared handler per direct counter, direct meter
// and indirect meter in P4Info, then invokes the target extern hook.
func (m *Mapper) Initialize(deps *Deps) error {
	m.deps = deps

	counterHandler := NewDirectCounterHandler()
	for _, counter := range deps.P4Info.DirectCounters() {
		if err := m.Register(counter.Preamble.Id, counter.Preamble.Name, counterHandler); err != nil {
			return err
		}
	}

	meterHandler := NewDirectMeterHandler(deps)
	for _, meter := range deps.P4Info.DirectMeters() {
		if err := m.Register(meter.Preamble.Id, meter.Preamble.Name, meterHandler); err != nil {
			return err
		}
	}

	indirectHandler := NewMeterHandler(deps)
	for _, meter := range deps.P4Info.Meters() {
		if err := m.Register(meter.Preamble.Id, meter.Preamble.Name, indirectHandler); err != nil {
			return err
		}
	}

	if m.hook != nil {
		return m.hook(m, deps)
	}
	return nil
}

// Register binds the handler to the given resource ID
func (m *Mapper) Register(id uint32, name string, handler Handler) error {
	if id == 0 {
		return errors.NewInvalid("resource %q has ID 0", name)
	}
	if name == "" {
		return errors.NewInvalid("resource 0x%08x has no name", id)
	}
	if prior, ok := m.handlers[id]; ok {
		return errors.NewInvalid("resource 0x%08x (%s) already registered as %s", id, name, prior.Kind())
	}
	m.handlers[id] = handler
	log.Debugf("Registered %s handler for 0x%08x (%s)", handler.Kind(), id, name)
	return nil
}

// ResolveHandler returns the handler registered for the given resource ID
func (m *Mapper) ResolveHandler(id uint32) (Handler, error) {
	handler, ok := m.handlers[id]
	if !ok {
		return nil, errors.NewNotFound("no handler registered for resource 0x%08x", id)
	}
	return handler, nil
}

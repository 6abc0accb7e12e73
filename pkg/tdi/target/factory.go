// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package target selects the per-target component variants. Tofino and DPDK
// use the base variants; ES2K carries the packet-mod meter extensions.
package target

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/stratum-tdi/pkg/tdi"
	"github.com/onosproject/stratum-tdi/pkg/tdi/extern"
	"github.com/onosproject/stratum-tdi/pkg/tdi/helpers"
	"github.com/onosproject/stratum-tdi/pkg/tdi/resources"
)

// NewExternManager returns the extern manager variant for the given target
func NewExternManager(target tdi.Target, defaults extern.SynthesisDefaults) extern.Manager {
	if target == tdi.TargetES2K {
		return extern.NewES2KManager(defaults)
	}
	return extern.NewBaseManager()
}

// NewTableHelper returns the table helper variant for the given target
func NewTableHelper(target tdi.Target, deps *resources.Deps) helpers.TableHelper {
	if target == tdi.TargetES2K {
		return helpers.NewES2KTableHelper(deps)
	}
	return helpers.NewBaseTableHelper()
}

// NewMapper returns a resource mapper wired with the target's extern hook
func NewMapper(target tdi.Target) *resources.Mapper {
	if target == tdi.TargetES2K {
		return resources.NewMapper(es2kExternHook)
	}
	return resources.NewMapper(nil)
}

// es2kExternHook registers handlers for the ES2K packet-mod meter classes.
func es2kExternHook(mapper *resources.Mapper, deps *resources.Deps) error {
	externs, ok := deps.Externs.(extern.Manager)
	if !ok {
		return errors.NewInternal("extern manager does not expose the packet-mod meter classes")
	}

	directHandler := resources.NewDirectPacketModMeterHandler(deps)
	for _, meter := range externs.DirectPacketModMeters() {
		if err := mapper.Register(meter.Preamble.Id, meter.Preamble.Name, directHandler); err != nil {
			return err
		}
	}

	indirectHandler := resources.NewPacketModMeterHandler(deps)
	for _, meter := range externs.PacketModMeters() {
		if err := mapper.Register(meter.Preamble.Id, meter.Preamble.Name, indirectHandler); err != nil {
			return err
		}
	}
	return nil
}

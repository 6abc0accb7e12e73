// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package resources_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	p4api "github.com/p4lang/p4runtime/go/p4/v1"
	"github.com/onosproject/stratum-tdi/pkg/p4info"
	"github.com/onosproject/stratum-tdi/pkg/tdi"
	"github.com/onosproject/stratum-tdi/pkg/tdi/extern"
	"github.com/onosproject/stratum-tdi/pkg/tdi/resources"
	"github.com/onosproject/stratum-tdi/pkg/tdi/target"
	"github.com/onosproject/stratum-tdi/pkg/tdi/sim"
)

func TestHandlerDispatch(t *testing.T) {
	env := newTestEnv(t)

	for id, label := range map[uint32]string{
		testDirectCounterID: "DirectCounter",
		testDirectMeterID:   "DirectMeter",
		testMeterID:         "Meter",
		testDirPktModID:     "DirectPacketModMeter",
		testPktModMeterID:   "PacketModMeter",
	} {
		handler, err := env.mapper.ResolveHandler(id)
		require.NoError(t, err, "no handler for 0x%08x", id)
		assert.Equal(t, label, handler.Kind().String())
	}

	_, err := env.mapper.ResolveHandler(0x13000099)
	assert.True(t, errors.IsNotFound(err))
}

func TestRegistrationRejectsMalformedIDs(t *testing.T) {
	mapper := target.NewMapper(tdi.TargetTofino)
	handler := resources.NewDirectCounterHandler()

	err := mapper.Register(0, "counter", handler)
	assert.True(t, errors.IsInvalid(err))

	err = mapper.Register(testDirectCounterID, "", handler)
	assert.True(t, errors.IsInvalid(err))

	require.NoError(t, mapper.Register(testDirectCounterID, "counter", handler))
	err = mapper.Register(testDirectCounterID, "counter", handler)
	assert.True(t, errors.IsInvalid(err))
}

func TestBaseTargetSkipsExternHandlers(t *testing.T) {
	sde := sim.NewSDE()
	externs := target.NewExternManager(tdi.TargetDPDK, extern.DefaultSynthesis())

	mgr := p4info.NewManager(testP4Info())
	require.NoError(t, mgr.Initialize(externs))

	mapper := target.NewMapper(tdi.TargetDPDK)
	require.NoError(t, mapper.Initialize(&resources.Deps{
		SDE: sde, P4Info: mgr, Externs: externs, Lock: &sync.RWMutex{}, Device: 1,
	}))

	// Standard classes are registered; extern classes are not.
	_, err := mapper.ResolveHandler(testMeterID)
	assert.NoError(t, err)
	_, err = mapper.ResolveHandler(testPktModMeterID)
	assert.True(t, errors.IsNotFound(err))
}

func TestDirectCounterHandler(t *testing.T) {
	env := newTestEnv(t)

	handler, err := env.mapper.ResolveHandler(testDirectCounterID)
	require.NoError(t, err)

	data, err := env.sde.NewTableData(testTableID)
	require.NoError(t, err)

	entry := &p4api.TableEntry{
		TableId:     testTableID,
		CounterData: &p4api.CounterData{ByteCount: 4096, PacketCount: 32},
	}
	require.NoError(t, handler.BuildTableData(entry, data))

	read := &p4api.TableEntry{TableId: testTableID, CounterData: &p4api.CounterData{}}
	require.NoError(t, handler.BuildP4TableEntry(data, read))
	assert.Equal(t, int64(4096), read.CounterData.ByteCount)
	assert.Equal(t, int64(32), read.CounterData.PacketCount)

	// Entries that did not ask for counter data are left untouched.
	bare := &p4api.TableEntry{TableId: testTableID}
	require.NoError(t, handler.BuildP4TableEntry(data, bare))
	assert.Nil(t, bare.CounterData)
}

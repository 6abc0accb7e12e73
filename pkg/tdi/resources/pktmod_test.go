// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package resources_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	p4api "github.com/p4lang/p4runtime/go/p4/v1"
	"github.com/onosproject/stratum-tdi/pkg/tdi"
)

func TestPktModMeterWriteReadDelete(t *testing.T) {
	env := newTestEnv(t)

	handler, err := env.mapper.ResolveHandler(testPktModMeterID)
	require.NoError(t, err)
	assert.Equal(t, "PacketModMeter", handler.Kind().String())

	// Packet-mod meters are synthesized with a packet-based unit, so the
	// write lands in the pps/packet fields of the policer struct.
	entry := &p4api.MeterEntry{
		MeterId: testPktModMeterID,
		Index:   &p4api.Index{Index: 3},
		Config:  &p4api.MeterConfig{Cir: 100, Cburst: 10, Pir: 200, Pburst: 20},
	}
	require.NoError(t, handler.WriteMeterEntry(env.session, p4api.Update_INSERT, entry))

	var responses []*p4api.ReadResponse
	err = handler.ReadMeterEntry(env.session,
		&p4api.MeterEntry{MeterId: testPktModMeterID, Index: &p4api.Index{Index: 3}},
		func(response *p4api.ReadResponse) error {
			responses = append(responses, response)
			return nil
		})
	require.NoError(t, err)
	require.Len(t, responses, 1)
	require.Len(t, responses[0].Entities, 1)
	read := responses[0].Entities[0].GetMeterEntry()
	assert.Equal(t, int64(100), read.Config.Cir)
	assert.Equal(t, int64(20), read.Config.Pburst)
	assert.NotNil(t, read.CounterData)

	// DELETE must reach the SDE's config reset, not just write zeros.
	err = handler.WriteMeterEntry(env.session, p4api.Update_DELETE,
		&p4api.MeterEntry{MeterId: testPktModMeterID, Index: &p4api.Index{Index: 3}})
	require.NoError(t, err)
	assert.Equal(t, 1, env.sde.DeletedCount())
}

func TestPktModMeterWildcardRead(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 3; i++ {
		env.sde.SeedPktModMeter(testPktModMeterID, tdi.PktModMeterCell{
			Index: uint32(i),
			Config: tdi.PktModMeterConfig{
				CIRPps: uint64(100 * (i + 1)), PIRPps: uint64(200 * (i + 1)),
				GreenPackets: uint64(i), RedBytes: uint64(10 * i),
			},
		})
	}

	handler, err := env.mapper.ResolveHandler(testPktModMeterID)
	require.NoError(t, err)

	var responses []*p4api.ReadResponse
	err = handler.ReadMeterEntry(env.session, &p4api.MeterEntry{MeterId: testPktModMeterID},
		func(response *p4api.ReadResponse) error {
			responses = append(responses, response)
			return nil
		})
	require.NoError(t, err)
	require.Len(t, responses, 1)
	require.Len(t, responses[0].Entities, 3)

	last := responses[0].Entities[2].GetMeterEntry()
	assert.Equal(t, int64(300), last.Config.Cir)
	assert.Equal(t, int64(2), last.CounterData.Green.PacketCount)
	assert.Equal(t, int64(20), last.CounterData.Red.ByteCount)
}

func TestPktModMeterWriteRequiresIndex(t *testing.T) {
	env := newTestEnv(t)

	handler, err := env.mapper.ResolveHandler(testPktModMeterID)
	require.NoError(t, err)

	err = handler.WriteMeterEntry(env.session, p4api.Update_INSERT, &p4api.MeterEntry{
		MeterId: testPktModMeterID,
		Config:  &p4api.MeterConfig{Cir: 100},
	})
	assert.True(t, errors.IsInvalid(err))
}

func TestDirectPktModMeterRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	handler, err := env.mapper.ResolveHandler(testDirPktModID)
	require.NoError(t, err)
	assert.Equal(t, "DirectPacketModMeter", handler.Kind().String())

	data, err := env.sde.NewTableData(testTableID)
	require.NoError(t, err)

	entry := &p4api.DirectMeterEntry{
		TableEntry: &p4api.TableEntry{TableId: testTableID},
		Config:     &p4api.MeterConfig{Cir: 4000, Cburst: 400, Pir: 8000, Pburst: 800},
	}
	require.NoError(t, handler.BuildDirectMeterEntryData(entry, data))

	read := &p4api.DirectMeterEntry{}
	require.NoError(t, handler.BuildDirectMeterEntry(data, read))
	assert.Equal(t, int64(4000), read.Config.Cir)
	assert.Equal(t, int64(800), read.Config.Pburst)
	require.NotNil(t, read.CounterData)
	assert.Equal(t, int64(0), read.CounterData.Yellow.ByteCount)
}

func TestDirectPktModMeterViaTableEntry(t *testing.T) {
	env := newTestEnv(t)

	handler, err := env.mapper.ResolveHandler(testDirPktModID)
	require.NoError(t, err)

	data, err := env.sde.NewTableData(testTableID)
	require.NoError(t, err)

	entry := &p4api.TableEntry{
		TableId:     testTableID,
		MeterConfig: &p4api.MeterConfig{Cir: 1500, Cburst: 150, Pir: 3000, Pburst: 300},
	}
	require.NoError(t, handler.BuildTableData(entry, data))

	read := &p4api.TableEntry{TableId: testTableID, MeterConfig: &p4api.MeterConfig{}}
	require.NoError(t, handler.BuildP4TableEntry(data, read))
	assert.Equal(t, int64(1500), read.MeterConfig.Cir)
	assert.Equal(t, int64(300), read.MeterConfig.Pburst)
	assert.NotNil(t, read.MeterCounterData)
}

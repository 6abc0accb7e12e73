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

func seedMeterCells(env *testEnv, count int) {
	for i := 0; i < count; i++ {
		env.sde.SeedIndirectMeter(testMeterID, tdi.MeterCell{
			Index: uint32(i), CIR: uint64(1000 * (i + 1)), CBurst: 100,
			PIR: uint64(2000 * (i + 1)), PBurst: 200,
		})
	}
}

func TestReadAllMeterCells(t *testing.T) {
	env := newTestEnv(t)
	seedMeterCells(env, 4)

	handler, err := env.mapper.ResolveHandler(testMeterID)
	require.NoError(t, err)
	assert.Equal(t, "Meter", handler.Kind().String())

	var responses []*p4api.ReadResponse
	err = handler.ReadMeterEntry(env.session, &p4api.MeterEntry{MeterId: testMeterID},
		func(response *p4api.ReadResponse) error {
			responses = append(responses, response)
			return nil
		})
	require.NoError(t, err)

	require.Len(t, responses, 1)
	require.Len(t, responses[0].Entities, 4)
	for i, entity := range responses[0].Entities {
		entry := entity.GetMeterEntry()
		require.NotNil(t, entry)
		assert.Equal(t, uint32(testMeterID), entry.MeterId)
		assert.Equal(t, int64(i), entry.Index.Index)
		assert.Equal(t, int64(1000*(i+1)), entry.Config.Cir)
	}
}

func TestReadSingleMeterCell(t *testing.T) {
	env := newTestEnv(t)
	seedMeterCells(env, 4)

	handler, err := env.mapper.ResolveHandler(testMeterID)
	require.NoError(t, err)

	// Index zero selects the first cell; it is not a wildcard.
	var responses []*p4api.ReadResponse
	err = handler.ReadMeterEntry(env.session,
		&p4api.MeterEntry{MeterId: testMeterID, Index: &p4api.Index{Index: 0}},
		func(response *p4api.ReadResponse) error {
			responses = append(responses, response)
			return nil
		})
	require.NoError(t, err)

	require.Len(t, responses, 1)
	require.Len(t, responses[0].Entities, 1)
	entry := responses[0].Entities[0].GetMeterEntry()
	assert.Equal(t, int64(0), entry.Index.Index)
	assert.Equal(t, int64(1000), entry.Config.Cir)
}

func TestReadMeterUnknownID(t *testing.T) {
	env := newTestEnv(t)

	handler, err := env.mapper.ResolveHandler(testMeterID)
	require.NoError(t, err)

	err = handler.ReadMeterEntry(env.session, &p4api.MeterEntry{MeterId: 0x15000099},
		func(*p4api.ReadResponse) error { return nil })
	assert.True(t, errors.IsNotFound(err))
}

func TestReadMeterSendFailure(t *testing.T) {
	env := newTestEnv(t)
	seedMeterCells(env, 1)

	handler, err := env.mapper.ResolveHandler(testMeterID)
	require.NoError(t, err)

	err = handler.ReadMeterEntry(env.session, &p4api.MeterEntry{MeterId: testMeterID},
		func(*p4api.ReadResponse) error { return errors.NewUnavailable("stream closed") })
	assert.True(t, errors.IsInternal(err))
}

func TestWriteThenReadMeterCell(t *testing.T) {
	env := newTestEnv(t)

	handler, err := env.mapper.ResolveHandler(testMeterID)
	require.NoError(t, err)

	entry := &p4api.MeterEntry{
		MeterId: testMeterID,
		Index:   &p4api.Index{Index: 7},
		Config:  &p4api.MeterConfig{Cir: 5000, Cburst: 500, Pir: 9000, Pburst: 900},
	}
	require.NoError(t, handler.WriteMeterEntry(env.session, p4api.Update_INSERT, entry))

	// MODIFY is the same upsert
	entry.Config.Cir = 6000
	require.NoError(t, handler.WriteMeterEntry(env.session, p4api.Update_MODIFY, entry))

	var responses []*p4api.ReadResponse
	err = handler.ReadMeterEntry(env.session,
		&p4api.MeterEntry{MeterId: testMeterID, Index: &p4api.Index{Index: 7}},
		func(response *p4api.ReadResponse) error {
			responses = append(responses, response)
			return nil
		})
	require.NoError(t, err)
	require.Len(t, responses[0].Entities, 1)
	read := responses[0].Entities[0].GetMeterEntry()
	assert.Equal(t, int64(6000), read.Config.Cir)
	assert.Equal(t, int64(900), read.Config.Pburst)
}

func TestWriteMeterRequiresIndex(t *testing.T) {
	env := newTestEnv(t)

	handler, err := env.mapper.ResolveHandler(testMeterID)
	require.NoError(t, err)

	err = handler.WriteMeterEntry(env.session, p4api.Update_INSERT, &p4api.MeterEntry{
		MeterId: testMeterID,
		Config:  &p4api.MeterConfig{Cir: 5000},
	})
	assert.True(t, errors.IsInvalid(err))
}

func TestMeterDeleteNotSupported(t *testing.T) {
	env := newTestEnv(t)

	handler, err := env.mapper.ResolveHandler(testMeterID)
	require.NoError(t, err)

	err = handler.WriteMeterEntry(env.session, p4api.Update_DELETE, &p4api.MeterEntry{
		MeterId: testMeterID,
		Index:   &p4api.Index{Index: 1},
	})
	assert.True(t, errors.IsNotSupported(err))
}

func TestDirectMeterRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	handler, err := env.mapper.ResolveHandler(testDirectMeterID)
	require.NoError(t, err)
	assert.Equal(t, "DirectMeter", handler.Kind().String())

	data, err := env.sde.NewTableData(testTableID)
	require.NoError(t, err)

	entry := &p4api.TableEntry{
		TableId:     testTableID,
		MeterConfig: &p4api.MeterConfig{Cir: 1000, Cburst: 100, Pir: 2000, Pburst: 200},
	}
	require.NoError(t, handler.BuildTableData(entry, data))

	read := &p4api.TableEntry{TableId: testTableID, MeterConfig: &p4api.MeterConfig{}}
	require.NoError(t, handler.BuildP4TableEntry(data, read))
	assert.Equal(t, entry.MeterConfig.Cir, read.MeterConfig.Cir)
	assert.Equal(t, entry.MeterConfig.Pburst, read.MeterConfig.Pburst)

	direct := &p4api.DirectMeterEntry{}
	require.NoError(t, handler.BuildDirectMeterEntry(data, direct))
	assert.Equal(t, entry.MeterConfig.Pir, direct.Config.Pir)
}

func TestDirectMeterUnsupportedOps(t *testing.T) {
	env := newTestEnv(t)

	handler, err := env.mapper.ResolveHandler(testDirectMeterID)
	require.NoError(t, err)

	err = handler.ReadMeterEntry(env.session, &p4api.MeterEntry{MeterId: testDirectMeterID},
		func(*p4api.ReadResponse) error { return nil })
	assert.True(t, errors.IsNotSupported(err))

	err = handler.WriteMeterEntry(env.session, p4api.Update_INSERT, &p4api.MeterEntry{MeterId: testDirectMeterID})
	assert.True(t, errors.IsNotSupported(err))
}

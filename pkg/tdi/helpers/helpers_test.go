// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package helpers_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	p4config "github.com/p4lang/p4runtime/go/p4/config/v1"
	p4api "github.com/p4lang/p4runtime/go/p4/v1"
	"github.com/onosproject/stratum-tdi/pkg/p4info"
	"github.com/onosproject/stratum-tdi/pkg/tdi"
	"github.com/onosproject/stratum-tdi/pkg/tdi/extern"
	"github.com/onosproject/stratum-tdi/pkg/tdi/resources"
	"github.com/onosproject/stratum-tdi/pkg/tdi/target"
	"github.com/onosproject/stratum-tdi/pkg/tdi/sim"
)

const pktMeterID = 0x82000001

func newES2KDeps(t *testing.T) (*resources.Deps, *sim.SDE) {
	info := &p4config.P4Info{
		Tables: []*p4config.Table{{
			Preamble:    &p4config.Preamble{Id: 0x02000001, Name: "ingress.fwd"},
			MatchFields: []*p4config.MatchField{{Id: 1, Name: "hdr.ipv4.dst_addr", Bitwidth: 32}},
			ActionRefs:  []*p4config.ActionRef{{Id: 0x01000001}},
		}},
		Actions: []*p4config.Action{{
			Preamble: &p4config.Preamble{Id: 0x01000001, Name: "ingress.fwd_to_port"},
		}},
		Externs: []*p4config.Extern{{
			ExternTypeId: extern.TypeIDPacketModMeter,
			Instances: []*p4config.ExternInstance{{
				Preamble: &p4config.Preamble{Id: pktMeterID, Name: "ingress.rate_limit"},
			}},
		}},
	}

	sde := sim.NewSDE()
	externs := target.NewExternManager(tdi.TargetES2K, extern.DefaultSynthesis())
	mgr := p4info.NewManager(info)
	require.NoError(t, mgr.Initialize(externs))

	return &resources.Deps{
		SDE: sde, P4Info: mgr, Externs: externs, Lock: &sync.RWMutex{}, Device: 1,
	}, sde
}

func TestES2KHelperWriteAndDelete(t *testing.T) {
	deps, sde := newES2KDeps(t)
	helper := target.NewTableHelper(tdi.TargetES2K, deps)

	session, err := sde.NewSession()
	require.NoError(t, err)

	entry := &p4api.MeterEntry{
		MeterId: pktMeterID,
		Index:   &p4api.Index{Index: 5},
		Config:  &p4api.MeterConfig{Cir: 250, Pir: 500},
	}
	require.NoError(t, helper.WritePktModMeterEntry(session, p4api.Update_INSERT, entry))

	var got []*p4api.ReadResponse
	err = helper.ReadPktModMeterEntry(session, &p4api.MeterEntry{MeterId: pktMeterID},
		func(response *p4api.ReadResponse) error {
			got = append(got, response)
			return nil
		})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Entities, 1)

	require.NoError(t, helper.WritePktModMeterEntry(session, p4api.Update_DELETE, entry))
	assert.Equal(t, 1, sde.DeletedCount())
}

func TestBaseHelperIsNoOp(t *testing.T) {
	helper := target.NewTableHelper(tdi.TargetTofino, nil)

	assert.NoError(t, helper.BuildDirPktModTableData(&p4api.TableEntry{}, nil))
	assert.NoError(t, helper.ReadDirPktModMeterEntry(nil, &p4api.DirectMeterEntry{}))
	assert.NoError(t, helper.ReadPktModMeterEntry(nil, &p4api.MeterEntry{}, nil))
	assert.NoError(t, helper.WritePktModMeterEntry(nil, p4api.Update_DELETE, &p4api.MeterEntry{}))
}

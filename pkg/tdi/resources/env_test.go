// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package resources_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	p4config "github.com/p4lang/p4runtime/go/p4/config/v1"
	"github.com/onosproject/stratum-tdi/pkg/p4info"
	"github.com/onosproject/stratum-tdi/pkg/tdi"
	"github.com/onosproject/stratum-tdi/pkg/tdi/extern"
	"github.com/onosproject/stratum-tdi/pkg/tdi/resources"
	"github.com/onosproject/stratum-tdi/pkg/tdi/target"
	"github.com/onosproject/stratum-tdi/pkg/tdi/sim"
)

const (
	testTableID         = 0x02000001
	testActionID        = 0x01000001
	testDirectCounterID = 0x13000001
	testMeterID         = 0x15000001
	testDirectMeterID   = 0x16000001
	testPktModMeterID   = 0x82000001
	testDirPktModID     = 0x83000001
)

func preamble(id uint32, name string) *p4config.Preamble {
	return &p4config.Preamble{Id: id, Name: name}
}

// testP4Info builds a minimal pipeline with one ACL table carrying a direct
// counter and a direct meter, one indirect meter, and the two ES2K
// packet-mod meter extern classes.
func testP4Info() *p4config.P4Info {
	return &p4config.P4Info{
		PkgInfo: &p4config.PkgInfo{Name: "test.p4", Arch: "pna"},
		Tables: []*p4config.Table{{
			Preamble: preamble(testTableID, "ingress.acl"),
			MatchFields: []*p4config.MatchField{
				{Id: 1, Name: "hdr.ipv4.dst_addr", Bitwidth: 32},
			},
			ActionRefs:        []*p4config.ActionRef{{Id: testActionID}},
			DirectResourceIds: []uint32{testDirectCounterID, testDirectMeterID},
			Size:              1024,
		}},
		Actions: []*p4config.Action{{
			Preamble: preamble(testActionID, "ingress.drop"),
		}},
		DirectCounters: []*p4config.DirectCounter{{
			Preamble:      preamble(testDirectCounterID, "ingress.acl_counter"),
			Spec:          &p4config.CounterSpec{Unit: p4config.CounterSpec_BOTH},
			DirectTableId: testTableID,
		}},
		Meters: []*p4config.Meter{{
			Preamble: preamble(testMeterID, "ingress.policer"),
			Spec:     &p4config.MeterSpec{Unit: p4config.MeterSpec_BYTES},
			Size:     1024,
		}},
		DirectMeters: []*p4config.DirectMeter{{
			Preamble:      preamble(testDirectMeterID, "ingress.acl_meter"),
			Spec:          &p4config.MeterSpec{Unit: p4config.MeterSpec_BYTES},
			DirectTableId: testTableID,
		}},
		Externs: []*p4config.Extern{
			{
				ExternTypeId:   extern.TypeIDPacketModMeter,
				ExternTypeName: "PacketModMeter",
				Instances: []*p4config.ExternInstance{
					{Preamble: preamble(testPktModMeterID, "ingress.pkt_policer")},
				},
			},
			{
				ExternTypeId:   extern.TypeIDDirectPacketModMeter,
				ExternTypeName: "DirectPacketModMeter",
				Instances: []*p4config.ExternInstance{
					{Preamble: preamble(testDirPktModID, "ingress.acl_pkt_meter")},
				},
			},
		},
	}
}

type testEnv struct {
	sde     *sim.SDE
	p4info  *p4info.Manager
	externs extern.Manager
	mapper  *resources.Mapper
	deps    *resources.Deps
	session tdi.Session
}

func newTestEnv(t *testing.T) *testEnv {
	sde := sim.NewSDE()
	externs := target.NewExternManager(tdi.TargetES2K, extern.DefaultSynthesis())

	mgr := p4info.NewManager(testP4Info())
	require.NoError(t, mgr.Initialize(externs))

	deps := &resources.Deps{
		SDE:     sde,
		P4Info:  mgr,
		Externs: externs,
		Lock:    &sync.RWMutex{},
		Device:  1,
	}
	mapper := target.NewMapper(tdi.TargetES2K)
	require.NoError(t, mapper.Initialize(deps))

	session, err := sde.NewSession()
	require.NoError(t, err)

	return &testEnv{sde: sde, p4info: mgr, externs: externs, mapper: mapper, deps: deps, session: session}
}

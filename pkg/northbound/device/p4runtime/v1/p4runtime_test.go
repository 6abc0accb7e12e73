// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package p4runtime

import (
	"context"
	"testing"

	p4api "github.com/p4lang/p4runtime/go/p4/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"

	"github.com/onosproject/stratum-tdi/pkg/device"
	"github.com/onosproject/stratum-tdi/pkg/tdi"
	"github.com/onosproject/stratum-tdi/pkg/tdi/sim"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dev := device.NewDevice(device.Config{ID: 1, Target: tdi.TargetDPDK}, sim.NewSDE())
	return NewServer(dev)
}

// Unary requests carry the role as a plain name; mastership is checked
// against that name, with "" standing for the default role.
func TestWriteMastershipGate(t *testing.T) {
	s := newTestServer(t)
	election := &p4api.Uint128{Low: 1}
	require.NoError(t, s.device.RunMastershipArbitration(nil, election))

	// A stale election ID must not get past the mastership gate.
	_, err := s.Write(context.Background(), &p4api.WriteRequest{
		DeviceId: 1, Role: "", ElectionId: &p4api.Uint128{Low: 2},
	})
	assert.Equal(t, codes.Unauthenticated, grpcstatus.Code(err))

	// The master passes the gate; without a committed pipeline the write
	// itself is then rejected as unavailable.
	_, err = s.Write(context.Background(), &p4api.WriteRequest{
		DeviceId: 1, ElectionId: election,
	})
	assert.Equal(t, codes.Unavailable, grpcstatus.Code(err))
}

func TestSetForwardingPipelineConfigMastershipGate(t *testing.T) {
	s := newTestServer(t)
	election := &p4api.Uint128{Low: 7}
	require.NoError(t, s.device.RunMastershipArbitration(nil, election))

	_, err := s.SetForwardingPipelineConfig(context.Background(), &p4api.SetForwardingPipelineConfigRequest{
		DeviceId: 1, Role: "", ElectionId: &p4api.Uint128{Low: 6},
		Action: p4api.SetForwardingPipelineConfigRequest_VERIFY,
	})
	assert.Equal(t, codes.Unauthenticated, grpcstatus.Code(err))

	// The master reaches verification, which rejects the empty config.
	_, err = s.SetForwardingPipelineConfig(context.Background(), &p4api.SetForwardingPipelineConfigRequest{
		DeviceId: 1, ElectionId: election,
		Action: p4api.SetForwardingPipelineConfigRequest_VERIFY,
		Config: &p4api.ForwardingPipelineConfig{},
	})
	assert.Equal(t, codes.InvalidArgument, grpcstatus.Code(err))
}

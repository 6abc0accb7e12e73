// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package gnoi

import (
	"context"
	"testing"
	"time"

	gnoiapi "github.com/openconfig/gnoi/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"

	"github.com/onosproject/stratum-tdi/pkg/device"
	"github.com/onosproject/stratum-tdi/pkg/tdi"
	"github.com/onosproject/stratum-tdi/pkg/tdi/sim"
)

func TestSystemTime(t *testing.T) {
	dev := device.NewDevice(device.Config{ID: 1, Target: tdi.TargetDPDK}, sim.NewSDE())
	s := NewServer(dev)

	before := uint64(time.Now().UnixNano())
	response, err := s.Time(context.Background(), &gnoiapi.TimeRequest{})
	require.NoError(t, err)
	after := uint64(time.Now().UnixNano())
	assert.LessOrEqual(t, before, response.Time)
	assert.LessOrEqual(t, response.Time, after)

	_, err = s.Reboot(context.Background(), &gnoiapi.RebootRequest{})
	assert.Equal(t, codes.Unimplemented, grpcstatus.Code(err))
}

// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package device registers the P4Runtime and gNMI services of the device
package device

import (
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/onosproject/onos-lib-go/pkg/northbound"
	gnmiapi "github.com/openconfig/gnmi/proto/gnmi"
	gnoiapi "github.com/openconfig/gnoi/system"
	p4api "github.com/p4lang/p4runtime/go/p4/v1"
	"google.golang.org/grpc"

	"github.com/onosproject/stratum-tdi/pkg/device"
	gnmisvc "github.com/onosproject/stratum-tdi/pkg/northbound/device/gnmi/v2"
	gnoisvc "github.com/onosproject/stratum-tdi/pkg/northbound/device/gnoi/v2"
	"github.com/onosproject/stratum-tdi/pkg/northbound/device/p4runtime/v1"
)

var log = logging.GetLogger("northbound", "device")

// Service bundles the P4Runtime and gNMI services of one device
type Service struct {
	northbound.Service
	device *device.Device
}

// NewService creates a new device service
func NewService(dev *device.Device) Service {
	return Service{device: dev}
}

// Register registers the P4Runtime, gNMI and gNOI servers with the given gRPC server
func (s Service) Register(r *grpc.Server) {
	p4api.RegisterP4RuntimeServer(r, p4runtime.NewServer(s.device))
	gnmiapi.RegisterGNMIServer(r, gnmisvc.NewServer(s.device))
	gnoiapi.RegisterSystemServer(r, gnoisvc.NewServer(s.device))
	log.Debugf("Device %d: P4Runtime, gNMI and gNOI services registered", s.device.ID)
}

// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package gnoi implements the device gNOI System service
package gnoi

import (
	"context"
	"time"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	gnoiapi "github.com/openconfig/gnoi/system"

	"github.com/onosproject/stratum-tdi/pkg/device"
)

var log = logging.GetLogger("northbound", "gnoi")

// Server implements the gNOI System API on top of the device core
type Server struct {
	device *device.Device
	gnoiapi.UnimplementedSystemServer
}

// NewServer creates a new gNOI System API server
func NewServer(dev *device.Device) *Server {
	return &Server{device: dev}
}

func notImplemented() error {
	return errors.Status(errors.NewNotSupported("method not supported")).Err()
}

// Time returns the device's time since start of epoch, expressed in nanoseconds
func (s *Server) Time(ctx context.Context, request *gnoiapi.TimeRequest) (*gnoiapi.TimeResponse, error) {
	log.Debugf("Device %d: time requested", s.device.ID)
	return &gnoiapi.TimeResponse{Time: uint64(time.Now().UnixNano())}, nil
}

// Ping is not implemented
func (s *Server) Ping(request *gnoiapi.PingRequest, server gnoiapi.System_PingServer) error {
	return notImplemented()
}

// Traceroute is not implemented
func (s *Server) Traceroute(request *gnoiapi.TracerouteRequest, server gnoiapi.System_TracerouteServer) error {
	return notImplemented()
}

// SetPackage is not implemented
func (s *Server) SetPackage(server gnoiapi.System_SetPackageServer) error {
	return notImplemented()
}

// SwitchControlProcessor is not implemented
func (s *Server) SwitchControlProcessor(ctx context.Context, request *gnoiapi.SwitchControlProcessorRequest) (*gnoiapi.SwitchControlProcessorResponse, error) {
	return nil, notImplemented()
}

// Reboot is not implemented
func (s *Server) Reboot(ctx context.Context, request *gnoiapi.RebootRequest) (*gnoiapi.RebootResponse, error) {
	return nil, notImplemented()
}

// RebootStatus is not implemented
func (s *Server) RebootStatus(ctx context.Context, request *gnoiapi.RebootStatusRequest) (*gnoiapi.RebootStatusResponse, error) {
	return nil, notImplemented()
}

// CancelReboot is not implemented
func (s *Server) CancelReboot(ctx context.Context, request *gnoiapi.CancelRebootRequest) (*gnoiapi.CancelRebootResponse, error) {
	return nil, notImplemented()
}

// KillProcess is not implemented
func (s *Server) KillProcess(ctx context.Context, request *gnoiapi.KillProcessRequest) (*gnoiapi.KillProcessResponse, error) {
	return nil, notImplemented()
}

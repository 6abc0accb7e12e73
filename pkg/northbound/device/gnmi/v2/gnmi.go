// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package gnmi implements the device gNMI service over the configuration tree
package gnmi

import (
	"context"
	"time"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/openconfig/gnmi/proto/gnmi"

	"github.com/onosproject/stratum-tdi/pkg/device"
)

var log = logging.GetLogger("northbound", "gnmi")

// Server implements the gNMI API on top of the device configuration tree
type Server struct {
	device *device.Device
}

// NewServer creates a new gNMI API server
func NewServer(dev *device.Device) *Server {
	return &Server{device: dev}
}

// Capabilities responds with the supported gNMI version and encodings
func (s *Server) Capabilities(ctx context.Context, request *gnmi.CapabilityRequest) (*gnmi.CapabilityResponse, error) {
	log.Debugf("Device %d: gNMI capabilities requested", s.device.ID)
	return &gnmi.CapabilityResponse{
		GNMIVersion:        "0.8.0",
		SupportedEncodings: []gnmi.Encoding{gnmi.Encoding_PROTO},
	}, nil
}

// Get serves the requested paths from the configuration tree
func (s *Server) Get(ctx context.Context, request *gnmi.GetRequest) (*gnmi.GetResponse, error) {
	notifications, err := s.device.ProcessConfigGet(request.Prefix, request.Path)
	if err != nil {
		return nil, errors.Status(err).Err()
	}
	now := time.Now().UnixNano()
	for _, notification := range notifications {
		notification.Timestamp = now
	}
	return &gnmi.GetResponse{Notification: notifications}, nil
}

// Set applies the requested changes to the configuration tree
func (s *Server) Set(ctx context.Context, request *gnmi.SetRequest) (*gnmi.SetResponse, error) {
	results, err := s.device.ProcessConfigSet(request.Prefix, request.Update, request.Replace, request.Delete)
	if err != nil {
		return nil, errors.Status(err).Err()
	}
	return &gnmi.SetResponse{
		Prefix:    request.Prefix,
		Response:  results,
		Timestamp: time.Now().UnixNano(),
	}, nil
}

// Subscribe serves one-shot subscriptions; streaming telemetry is not supported
func (s *Server) Subscribe(server gnmi.GNMI_SubscribeServer) error {
	request, err := server.Recv()
	if err != nil {
		return err
	}
	subscribe := request.GetSubscribe()
	if subscribe == nil {
		return errors.Status(errors.NewInvalid("first message must carry a subscription list")).Err()
	}
	if subscribe.Mode != gnmi.SubscriptionList_ONCE {
		return errors.Status(errors.NewNotSupported("only ONCE subscriptions are supported")).Err()
	}

	paths := make([]*gnmi.Path, 0, len(subscribe.Subscription))
	for _, subscription := range subscribe.Subscription {
		paths = append(paths, subscription.Path)
	}
	notifications, err := s.device.ProcessConfigGet(subscribe.Prefix, paths)
	if err != nil {
		return errors.Status(err).Err()
	}
	now := time.Now().UnixNano()
	for _, notification := range notifications {
		notification.Timestamp = now
		if err = server.Send(&gnmi.SubscribeResponse{
			Response: &gnmi.SubscribeResponse_Update{Update: notification},
		}); err != nil {
			return err
		}
	}
	return server.Send(&gnmi.SubscribeResponse{
		Response: &gnmi.SubscribeResponse_SyncResponse{SyncResponse: true},
	})
}

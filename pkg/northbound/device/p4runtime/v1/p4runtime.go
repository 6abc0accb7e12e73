// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package p4runtime implements the device P4Runtime service
package p4runtime

import (
	"context"
	"io"
	"sync"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	p4api "github.com/p4lang/p4runtime/go/p4/v1"
	"google.golang.org/genproto/googleapis/rpc/code"
	"google.golang.org/genproto/googleapis/rpc/status"

	"github.com/onosproject/stratum-tdi/pkg/device"
)

var log = logging.GetLogger("northbound", "p4runtime")

// Server implements the P4Runtime API on top of the device core
type Server struct {
	device *device.Device
	p4api.UnimplementedP4RuntimeServer
}

// NewServer creates a new P4Runtime API server
func NewServer(dev *device.Device) *Server {
	return &Server{device: dev}
}

// Capabilities responds with the supported P4Runtime API version
func (s *Server) Capabilities(ctx context.Context, request *p4api.CapabilitiesRequest) (*p4api.CapabilitiesResponse, error) {
	log.Debugf("Device %d: capabilities requested", s.device.ID)
	return &p4api.CapabilitiesResponse{P4RuntimeApiVersion: "1.3.0"}, nil
}

// SetForwardingPipelineConfig verifies and applies the forwarding pipeline configuration
func (s *Server) SetForwardingPipelineConfig(ctx context.Context, request *p4api.SetForwardingPipelineConfigRequest) (*p4api.SetForwardingPipelineConfigResponse, error) {
	if err := s.device.IsMaster(request.DeviceId, request.Role, request.ElectionId); err != nil {
		return nil, errors.Status(err).Err()
	}

	var err error
	switch request.Action {
	case p4api.SetForwardingPipelineConfigRequest_VERIFY:
		err = s.device.VerifyPipelineConfig(request.Config)
	case p4api.SetForwardingPipelineConfigRequest_VERIFY_AND_COMMIT,
		p4api.SetForwardingPipelineConfigRequest_VERIFY_AND_SAVE,
		p4api.SetForwardingPipelineConfigRequest_COMMIT,
		p4api.SetForwardingPipelineConfigRequest_RECONCILE_AND_COMMIT:
		err = s.device.SetPipelineConfig(request.Config)
	default:
		err = errors.NewInvalid("unsupported action %s", request.Action)
	}
	if err != nil {
		return nil, errors.Status(err).Err()
	}
	return &p4api.SetForwardingPipelineConfigResponse{}, nil
}

// GetForwardingPipelineConfig returns the active forwarding pipeline configuration
func (s *Server) GetForwardingPipelineConfig(ctx context.Context, request *p4api.GetForwardingPipelineConfigRequest) (*p4api.GetForwardingPipelineConfigResponse, error) {
	fpc := s.device.GetPipelineConfig()
	if fpc == nil {
		return nil, errors.Status(errors.NewNotFound("device %d has no pipeline config", s.device.ID)).Err()
	}
	response := &p4api.GetForwardingPipelineConfigResponse{Config: fpc}
	switch request.ResponseType {
	case p4api.GetForwardingPipelineConfigRequest_COOKIE_ONLY:
		response.Config = &p4api.ForwardingPipelineConfig{Cookie: fpc.Cookie}
	case p4api.GetForwardingPipelineConfigRequest_P4INFO_AND_COOKIE:
		response.Config = &p4api.ForwardingPipelineConfig{P4Info: fpc.P4Info, Cookie: fpc.Cookie}
	}
	return response, nil
}

// Write applies the requested batch of updates
func (s *Server) Write(ctx context.Context, request *p4api.WriteRequest) (*p4api.WriteResponse, error) {
	if err := s.device.IsMaster(request.DeviceId, request.Role, request.ElectionId); err != nil {
		return nil, errors.Status(err).Err()
	}
	if err := s.device.ProcessWrite(request.Updates); err != nil {
		return nil, errors.Status(err).Err()
	}
	return &p4api.WriteResponse{}, nil
}

// Read streams back the requested entities
func (s *Server) Read(request *p4api.ReadRequest, server p4api.P4Runtime_ReadServer) error {
	results := s.device.ProcessRead(request.Entities, func(response *p4api.ReadResponse) error {
		return server.Send(response)
	})
	for _, err := range results {
		if err != nil {
			return errors.Status(err).Err()
		}
	}
	return nil
}

// streamResponder queues outbound messages of one stream channel and tracks
// the arbitration it latched.
type streamResponder struct {
	mu          sync.RWMutex
	arbitration *p4api.MasterArbitrationUpdate
	responses   chan *p4api.StreamMessageResponse
}

func newStreamResponder() *streamResponder {
	return &streamResponder{responses: make(chan *p4api.StreamMessageResponse, 128)}
}

// Send queues the message for delivery
func (r *streamResponder) Send(response *p4api.StreamMessageResponse) {
	r.responses <- response
}

// IsMaster returns true if this stream latched the winning election ID for the role
func (r *streamResponder) IsMaster(role *p4api.Role, masterElectionID *p4api.Uint128) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.arbitration == nil || roleName(r.arbitration.Role) != roleName(role) {
		return false
	}
	id := r.arbitration.ElectionId
	return id != nil && masterElectionID != nil && id.High == masterElectionID.High && id.Low == masterElectionID.Low
}

// SendMastershipArbitration notifies the stream of an arbitration outcome for its role
func (r *streamResponder) SendMastershipArbitration(role *p4api.Role, masterElectionID *p4api.Uint128, failCode code.Code) {
	r.mu.RLock()
	arbitration := r.arbitration
	r.mu.RUnlock()
	if arbitration == nil || roleName(arbitration.Role) != roleName(role) {
		return
	}

	electionStatus := &status.Status{Code: int32(code.Code_OK)}
	if !r.IsMaster(role, masterElectionID) {
		electionStatus.Code = int32(failCode)
	}
	r.Send(&p4api.StreamMessageResponse{
		Update: &p4api.StreamMessageResponse_Arbitration{
			Arbitration: &p4api.MasterArbitrationUpdate{
				DeviceId:   arbitration.DeviceId,
				Role:       role,
				ElectionId: masterElectionID,
				Status:     electionStatus,
			},
		},
	})
}

func (r *streamResponder) latch(arbitration *p4api.MasterArbitrationUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.arbitration = arbitration
}

// StreamChannel handles the bidirectional stream: mastership arbitration,
// packet-outs and digest acks inbound; arbitration outcomes and packet-ins
// outbound.
func (s *Server) StreamChannel(server p4api.P4Runtime_StreamChannelServer) error {
	responder := newStreamResponder()
	s.device.AddStreamResponder(responder)
	defer s.device.RemoveStreamResponder(responder)

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case msg := <-responder.responses:
				if err := server.Send(msg); err != nil {
					return
				}
			case <-server.Context().Done():
				return
			case <-done:
				return
			}
		}
	}()

	for {
		msg, err := server.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		s.processRequest(responder, msg)
	}
}

func (s *Server) processRequest(responder *streamResponder, msg *p4api.StreamMessageRequest) {
	if arbitration := msg.GetArbitration(); arbitration != nil {
		responder.latch(arbitration)
		if err := s.device.RunMastershipArbitration(arbitration.Role, arbitration.ElectionId); err != nil {
			log.Warnf("Device %d: arbitration failed: %v", s.device.ID, err)
		}
		return
	}

	if packet := msg.GetPacket(); packet != nil {
		if err := s.device.ProcessPacketOut(packet); err != nil {
			log.Warnf("Device %d: unable to process packet-out: %v", s.device.ID, err)
		}
		return
	}

	if digestAck := msg.GetDigestAck(); digestAck != nil {
		log.Debugf("Device %d: digest ack: %+v", s.device.ID, digestAck)
	}
}

func roleName(role *p4api.Role) string {
	if role == nil {
		return ""
	}
	return role.Name
}

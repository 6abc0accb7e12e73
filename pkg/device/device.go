// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package device hosts the per-device daemon core: it owns the pipeline
// state, the P4Info and extern indices and the resource handler dispatch,
// and processes P4Runtime and gNMI requests against the TDI SDE.
package device

import (
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/openconfig/gnmi/proto/gnmi"
	p4api "github.com/p4lang/p4runtime/go/p4/v1"
	"google.golang.org/genproto/googleapis/rpc/code"

	"github.com/onosproject/stratum-tdi/pkg/config"
	"github.com/onosproject/stratum-tdi/pkg/p4info"
	"github.com/onosproject/stratum-tdi/pkg/pipeline"
	"github.com/onosproject/stratum-tdi/pkg/tdi"
	"github.com/onosproject/stratum-tdi/pkg/tdi/extern"
	"github.com/onosproject/stratum-tdi/pkg/tdi/helpers"
	"github.com/onosproject/stratum-tdi/pkg/tdi/resources"
	"github.com/onosproject/stratum-tdi/pkg/tdi/target"
	"github.com/onosproject/stratum-tdi/pkg/utils"
)

var log = logging.GetLogger("device")

// StreamResponder abstracts a single P4Runtime stream channel attached to
// the device.
type StreamResponder interface {
	// Send queues the given message for delivery on the stream
	Send(response *p4api.StreamMessageResponse)

	// IsMaster returns true if the stream won mastership for the given role
	IsMaster(role *p4api.Role, masterElectionID *p4api.Uint128) bool

	// SendMastershipArbitration notifies the stream of an arbitration outcome
	SendMastershipArbitration(role *p4api.Role, masterElectionID *p4api.Uint128, failCode code.Code)
}

// Config carries the static device parameters.
type Config struct {
	ID        uint64
	Target    tdi.Target
	Ports     []config.Port
	Synthesis extern.SynthesisDefaults
}

// Device is the daemon core of one switching device.
type Device struct {
	ID     uint64
	Target tdi.Target

	sde tdi.SDE

	lock                     sync.RWMutex
	forwardingPipelineConfig *p4api.ForwardingPipelineConfig
	descriptor               *pipeline.Config
	session                  tdi.Session
	p4Info                   *p4info.Manager
	externs                  extern.Manager
	mapper                   *resources.Mapper
	helper                   helpers.TableHelper
	codec                    *utils.PacketMetadataCodec

	streamResponders []StreamResponder
	roleElections    map[string]*p4api.Uint128

	synthesis extern.SynthesisDefaults
	tree      *config.Node
}

// NewDevice creates a new device core on top of the given SDE binding
func NewDevice(cfg Config, sde tdi.SDE) *Device {
	log.Infof("Device %d: creating %s core", cfg.ID, cfg.Target)
	return &Device{
		ID:            cfg.ID,
		Target:        cfg.Target,
		sde:           sde,
		roleElections: make(map[string]*p4api.Uint128),
		synthesis:     cfg.Synthesis,
		tree:          config.NewSwitchTree(cfg.Ports),
	}
}

// Components built from one forwarding pipeline configuration.
type pipelineState struct {
	descriptor *pipeline.Config
	p4Info     *p4info.Manager
	externs    extern.Manager
	mapper     *resources.Mapper
	helper     helpers.TableHelper
	session    tdi.Session
}

// Builds all pipeline-derived components without touching device state;
// the caller must hold the write lock before committing the result.
func (d *Device) buildPipeline(fpc *p4api.ForwardingPipelineConfig) (*pipelineState, error) {
	if fpc == nil || fpc.P4Info == nil {
		return nil, errors.NewInvalid("device %d: pipeline config carries no P4Info", d.ID)
	}

	state := &pipelineState{}
	if len(fpc.P4DeviceConfig) > 0 {
		var err error
		if state.descriptor, err = pipeline.Unmarshal(fpc.P4DeviceConfig); err != nil {
			return nil, err
		}
	}

	state.externs = target.NewExternManager(d.Target, d.synthesis)
	state.p4Info = p4info.NewManager(fpc.P4Info)
	if err := state.p4Info.Initialize(state.externs); err != nil {
		return nil, err
	}

	deps := &resources.Deps{
		SDE:     d.sde,
		P4Info:  state.p4Info,
		Externs: state.externs,
		Lock:    &d.lock,
		Device:  d.ID,
	}
	state.mapper = target.NewMapper(d.Target)
	if err := state.mapper.Initialize(deps); err != nil {
		return nil, err
	}
	state.helper = target.NewTableHelper(d.Target, deps)

	session, err := d.sde.NewSession()
	if err != nil {
		return nil, err
	}
	state.session = session
	return state, nil
}

// VerifyPipelineConfig validates the forwarding pipeline configuration
// without committing it.
func (d *Device) VerifyPipelineConfig(fpc *p4api.ForwardingPipelineConfig) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	_, err := d.buildPipeline(fpc)
	return err
}

// SetPipelineConfig applies the forwarding pipeline configuration: it
// unpacks the embedded pipeline descriptor, indexes the P4Info and extern
// classes, and rebuilds the resource handler dispatch.
func (d *Device) SetPipelineConfig(fpc *p4api.ForwardingPipelineConfig) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	state, err := d.buildPipeline(fpc)
	if err != nil {
		return err
	}

	d.forwardingPipelineConfig = fpc
	d.descriptor = state.descriptor
	d.session = state.session
	d.p4Info = state.p4Info
	d.externs = state.externs
	d.mapper = state.mapper
	d.helper = state.helper
	d.codec = utils.NewPacketMetadataCodec(fpc.P4Info)

	if state.descriptor != nil {
		log.Infof("Device %d: pipeline %q committed with %d profiles", d.ID, state.descriptor.P4Name, len(state.descriptor.Profiles))
	} else {
		log.Infof("Device %d: pipeline committed without a descriptor", d.ID)
	}
	return nil
}

// GetPipelineConfig returns the active forwarding pipeline configuration;
// nil if none has been committed.
func (d *Device) GetPipelineConfig() *p4api.ForwardingPipelineConfig {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.forwardingPipelineConfig
}

// P4Info returns the device's P4Info index; nil before the first pipeline commit
func (d *Device) P4Info() *p4info.Manager {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.p4Info
}

// Externs returns the device's extern index; nil before the first pipeline commit
func (d *Device) Externs() extern.Manager {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.externs
}

// TableHelper returns the device's table helper; nil before the first pipeline commit
func (d *Device) TableHelper() helpers.TableHelper {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.helper
}

// ProcessWrite applies the specified batch of updates; processing stops at
// the first failing update.
func (d *Device) ProcessWrite(updates []*p4api.Update) error {
	d.lock.RLock()
	mapper, session := d.mapper, d.session
	d.lock.RUnlock()
	if mapper == nil {
		return errors.NewUnavailable("device %d: pipeline config not set yet", d.ID)
	}

	for _, update := range updates {
		if err := d.processUpdate(mapper, session, update); err != nil {
			log.Warnf("Device %d: unable to apply %s: %v", d.ID, update.Type, err)
			return err
		}
	}
	return nil
}

func (d *Device) processUpdate(mapper *resources.Mapper, session tdi.Session, update *p4api.Update) error {
	switch entity := update.Entity.GetEntity().(type) {
	case *p4api.Entity_MeterEntry:
		entry := entity.MeterEntry
		handler, err := mapper.ResolveHandler(entry.MeterId)
		if err != nil {
			return err
		}
		return handler.WriteMeterEntry(session, update.Type, entry)

	case *p4api.Entity_DirectMeterEntry:
		return d.writeDirectMeterEntry(mapper, update.Type, entity.DirectMeterEntry)

	case *p4api.Entity_TableEntry:
		return errors.NewNotSupported("device %d: table entry programming is not handled by the meter core", d.ID)

	default:
		return errors.NewNotSupported("device %d: entity type %T is not supported", d.ID, entity)
	}
}

func (d *Device) writeDirectMeterEntry(mapper *resources.Mapper, updateType p4api.Update_Type, entry *p4api.DirectMeterEntry) error {
	if updateType == p4api.Update_DELETE {
		return errors.NewInvalid("direct meter entry cannot be deleted")
	}
	if entry.TableEntry == nil {
		return errors.NewInvalid("direct meter entry carries no table entry")
	}
	meter, err := d.directMeterForTable(entry.TableEntry.TableId)
	if err != nil {
		return err
	}
	handler, err := mapper.ResolveHandler(meter)
	if err != nil {
		return err
	}
	data, err := d.sde.NewTableData(entry.TableEntry.TableId)
	if err != nil {
		return err
	}
	return handler.BuildDirectMeterEntryData(entry, data)
}

// Resolves the direct meter attached to the given table, preferring the
// standard class over the packet-mod extern.
func (d *Device) directMeterForTable(tableID uint32) (uint32, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	meter, err := d.p4Info.FindDirectMeterForTable(tableID)
	if err != nil {
		return 0, err
	}
	return meter.Preamble.Id, nil
}

// ProcessRead executes the specified read requests, streaming results
// through the supplied sender; one error slot is returned per request.
func (d *Device) ProcessRead(requests []*p4api.Entity, sender resources.ResponseSender) []error {
	d.lock.RLock()
	mapper, session := d.mapper, d.session
	d.lock.RUnlock()

	results := make([]error, len(requests))
	if mapper == nil {
		err := errors.NewUnavailable("device %d: pipeline config not set yet", d.ID)
		for i := range results {
			results[i] = err
		}
		return results
	}

	for i, request := range requests {
		results[i] = d.processRead(mapper, session, request, sender)
	}
	return results
}

func (d *Device) processRead(mapper *resources.Mapper, session tdi.Session, request *p4api.Entity, sender resources.ResponseSender) error {
	switch entity := request.GetEntity().(type) {
	case *p4api.Entity_MeterEntry:
		entry := entity.MeterEntry
		handler, err := mapper.ResolveHandler(entry.MeterId)
		if err != nil {
			return err
		}
		return handler.ReadMeterEntry(session, entry, sender)

	case *p4api.Entity_DirectMeterEntry:
		return d.readDirectMeterEntry(mapper, entity.DirectMeterEntry, sender)

	default:
		return errors.NewNotSupported("device %d: entity type %T is not readable by the meter core", d.ID, entity)
	}
}

func (d *Device) readDirectMeterEntry(mapper *resources.Mapper, entry *p4api.DirectMeterEntry, sender resources.ResponseSender) error {
	if entry.TableEntry == nil {
		return errors.NewInvalid("direct meter entry carries no table entry")
	}
	meter, err := d.directMeterForTable(entry.TableEntry.TableId)
	if err != nil {
		return err
	}
	handler, err := mapper.ResolveHandler(meter)
	if err != nil {
		return err
	}
	data, err := d.sde.NewTableData(entry.TableEntry.TableId)
	if err != nil {
		return err
	}
	result := &p4api.DirectMeterEntry{TableEntry: entry.TableEntry}
	if err = handler.BuildDirectMeterEntry(data, result); err != nil {
		return err
	}
	response := &p4api.ReadResponse{
		Entities: []*p4api.Entity{{Entity: &p4api.Entity_DirectMeterEntry{DirectMeterEntry: result}}},
	}
	if err = sender(response); err != nil {
		return errors.NewInternal("unable to send direct meter entry: %v", err)
	}
	return nil
}

// IsMaster returns an error unless the given election ID holds mastership
// for the specified device and role.
func (d *Device) IsMaster(deviceID uint64, role string, electionID *p4api.Uint128) error {
	if deviceID != d.ID {
		return errors.NewConflict("incorrect device ID: %d", deviceID)
	}
	d.lock.RLock()
	defer d.lock.RUnlock()
	winner, ok := d.roleElections[role]
	if electionID == nil || !ok || winner.High != electionID.High || winner.Low != electionID.Low {
		return errors.NewUnauthorized("not master for role %s on device %d", role, deviceID)
	}
	return nil
}

// RecordRoleElection records the given election ID for the role if it is
// higher than the previously recorded one; returns the winning election ID,
// or nil if this exact election ID has already been claimed.
func (d *Device) RecordRoleElection(role *p4api.Role, electionID *p4api.Uint128) *p4api.Uint128 {
	d.lock.Lock()
	defer d.lock.Unlock()

	roleName := ""
	if role != nil {
		roleName = role.Name
	}

	winner, ok := d.roleElections[roleName]
	if !ok || winner.High < electionID.High || (winner.High == electionID.High && winner.Low < electionID.Low) {
		d.roleElections[roleName] = electionID
		return electionID
	}
	if winner.High == electionID.High && winner.Low == electionID.Low {
		return nil
	}
	return winner
}

// RunMastershipArbitration records the role election and notifies every
// attached stream of the outcome.
func (d *Device) RunMastershipArbitration(role *p4api.Role, electionID *p4api.Uint128) error {
	log.Debugf("Device %d: mastership arbitration for role %v election %v", d.ID, role, electionID)
	winner := d.RecordRoleElection(role, electionID)

	d.lock.RLock()
	defer d.lock.RUnlock()

	failCode := code.Code_NOT_FOUND
	if winner == nil {
		failCode = code.Code_INVALID_ARGUMENT
	} else {
		for _, responder := range d.streamResponders {
			if responder.IsMaster(role, winner) {
				failCode = code.Code_ALREADY_EXISTS
				break
			}
		}
	}

	for _, responder := range d.streamResponders {
		responder.SendMastershipArbitration(role, winner, failCode)
	}
	return nil
}

// AddStreamResponder attaches the given stream to the device
func (d *Device) AddStreamResponder(responder StreamResponder) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.streamResponders = append(d.streamResponders, responder)
}

// RemoveStreamResponder detaches the given stream from the device
func (d *Device) RemoveStreamResponder(responder StreamResponder) {
	d.lock.Lock()
	defer d.lock.Unlock()
	for i, r := range d.streamResponders {
		if r == responder {
			d.streamResponders[i] = d.streamResponders[len(d.streamResponders)-1]
			d.streamResponders[len(d.streamResponders)-1] = nil
			d.streamResponders = d.streamResponders[:len(d.streamResponders)-1]
			return
		}
	}
}

// SendToAllResponders sends the specified message on every attached stream
func (d *Device) SendToAllResponders(response *p4api.StreamMessageResponse) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	for _, responder := range d.streamResponders {
		responder.Send(response)
	}
}

// ProcessPacketOut decodes and logs the packet-out; the TDI packet path
// delivers it to the dataplane outside this core.
func (d *Device) ProcessPacketOut(packetOut *p4api.PacketOut) error {
	d.lock.RLock()
	codec := d.codec
	d.lock.RUnlock()
	if codec == nil {
		return errors.NewUnavailable("device %d: pipeline config not set yet", d.ID)
	}

	egressPort := codec.DecodeEgressPort(packetOut.Metadata)
	packet := gopacket.NewPacket(packetOut.Payload, layers.LayerTypeEthernet, gopacket.Default)
	if eth := packet.Layer(layers.LayerTypeEthernet); eth != nil {
		frame := eth.(*layers.Ethernet)
		log.Debugf("Device %d: packet-out to port %d: %s -> %s type %s",
			d.ID, egressPort, frame.SrcMAC, frame.DstMAC, frame.EthernetType)
	} else {
		log.Debugf("Device %d: packet-out to port %d: %d bytes", d.ID, egressPort, len(packetOut.Payload))
	}
	return nil
}

// SendPacketIn emits a packet-in with the given payload and ingress port
// metadata on all attached streams.
func (d *Device) SendPacketIn(payload []byte, ingressPort uint32) {
	d.lock.RLock()
	codec := d.codec
	d.lock.RUnlock()
	if codec == nil {
		return
	}
	d.SendToAllResponders(&p4api.StreamMessageResponse{
		Update: &p4api.StreamMessageResponse_Packet{
			Packet: &p4api.PacketIn{
				Payload:  payload,
				Metadata: codec.EncodeIngressPort(ingressPort),
			},
		},
	})
}

// ProcessConfigGet serves a gNMI get against the configuration tree
func (d *Device) ProcessConfigGet(prefix *gnmi.Path, paths []*gnmi.Path) ([]*gnmi.Notification, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	root := d.tree
	if prefix != nil {
		ps := utils.ToString(prefix)
		if root = root.GetPath(ps); root == nil {
			return nil, errors.NewInvalid("node with prefix %s not found", ps)
		}
	}

	notifications := make([]*gnmi.Notification, 0, len(paths))
	for _, path := range paths {
		nodes := root.FindAll(utils.ToString(path))
		if len(nodes) > 0 {
			notifications = append(notifications, toNotification(prefix, nodes))
		}
	}
	return notifications, nil
}

func toNotification(prefix *gnmi.Path, nodes []*config.Node) *gnmi.Notification {
	updates := make([]*gnmi.Update, 0, len(nodes))
	for _, node := range nodes {
		updates = append(updates, &gnmi.Update{
			Path: utils.ToPath(node.Path()),
			Val:  node.Value(),
		})
	}
	return &gnmi.Notification{Prefix: prefix, Update: updates}
}

// ProcessConfigSet serves a gNMI set against the configuration tree
func (d *Device) ProcessConfigSet(prefix *gnmi.Path,
	updates []*gnmi.Update, replacements []*gnmi.Update, deletes []*gnmi.Path) ([]*gnmi.UpdateResult, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	opCount := len(updates) + len(replacements) + len(deletes)
	if opCount < 1 {
		return nil, errors.NewInvalid("no updates, replacements or deletes")
	}

	root := d.tree
	if prefix != nil {
		ps := utils.ToString(prefix)
		if root = root.GetPath(ps); root == nil {
			return nil, errors.NewInvalid("node with prefix %s not found", ps)
		}
	}

	results := make([]*gnmi.UpdateResult, 0, opCount)
	for _, path := range deletes {
		root.DeletePath(utils.ToString(path))
		results = append(results, &gnmi.UpdateResult{Path: path, Op: gnmi.UpdateResult_DELETE})
	}
	for _, update := range replacements {
		root.ReplacePath(utils.ToString(update.Path), update.Val)
		results = append(results, &gnmi.UpdateResult{Path: update.Path, Op: gnmi.UpdateResult_REPLACE})
	}
	for _, update := range updates {
		root.AddPath(utils.ToString(update.Path), update.Val)
		results = append(results, &gnmi.UpdateResult{Path: update.Path, Op: gnmi.UpdateResult_UPDATE})
	}
	return results, nil
}

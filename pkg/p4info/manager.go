// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package p4info

import (
	stderrors "errors"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	p4config "github.com/p4lang/p4runtime/go/p4/config/v1"
	"google.golang.org/protobuf/proto"
)

var log = logging.GetLogger("p4info")

// Class labels used in diagnostics and in the ID-to-class index
const (
	ClassTable         = "Table"
	ClassAction        = "Action"
	ClassActionProfile = "ActionProfile"
	ClassCounter       = "Counter"
	ClassDirectCounter = "DirectCounter"
	ClassMeter         = "Meter"
	ClassDirectMeter   = "DirectMeter"
	ClassValueSet      = "ValueSet"
	ClassRegister      = "Register"
	ClassDigest        = "Digest"
)

// ExternManager indexes target-specific extern object classes that are not
// part of the standard P4Info vocabulary. Its objects join the same ID and
// name uniqueness namespace as the standard classes.
type ExternManager interface {
	// Initialize builds the extern indices from the given P4Info, admitting
	// each synthesized instance through the supplied preamble check.
	Initialize(info *p4config.P4Info, check PreambleCheck) error
}

// RequiredObjects is the minimum-required-objects rule applied after indexing;
// targets may override the defaults.
type RequiredObjects struct {
	MinTables      int
	MinActions     int
	MinMatchFields int
}

// DefaultRequiredObjects returns the standard minimum-required-objects rule
func DefaultRequiredObjects() RequiredObjects {
	return RequiredObjects{MinTables: 1, MinActions: 1, MinMatchFields: 1}
}

// Manager owns a private copy of a P4Info descriptor and serves verified
// lookups over all its object classes. It is immutable once Initialize
// returns OK and is safe for unsynchronized readers thereafter.
type Manager struct {
	info     *p4config.P4Info
	required RequiredObjects

	tables         *ResourceMap[*p4config.Table]
	actions        *ResourceMap[*p4config.Action]
	actionProfiles *ResourceMap[*p4config.ActionProfile]
	counters       *ResourceMap[*p4config.Counter]
	directCounters *ResourceMap[*p4config.DirectCounter]
	meters         *ResourceMap[*p4config.Meter]
	directMeters   *ResourceMap[*p4config.DirectMeter]
	valueSets      *ResourceMap[*p4config.ValueSet]
	registers      *ResourceMap[*p4config.Register]
	digests        *ResourceMap[*p4config.Digest]

	allIDs           map[uint32]struct{}
	allNames         map[string]*p4config.Preamble
	classOfID        map[uint32]string
	meterOfTable     map[uint32]*p4config.DirectMeter
	counterOfTable   map[uint32]*p4config.DirectCounter
	totalMatchFields int
	initialized      bool
}

// NewManager creates a new manager over a private copy of the given P4Info
func NewManager(info *p4config.P4Info) *Manager {
	return &Manager{
		info:           proto.Clone(info).(*p4config.P4Info),
		required:       DefaultRequiredObjects(),
		tables:         NewResourceMap[*p4config.Table](ClassTable),
		actions:        NewResourceMap[*p4config.Action](ClassAction),
		actionProfiles: NewResourceMap[*p4config.ActionProfile](ClassActionProfile),
		counters:       NewResourceMap[*p4config.Counter](ClassCounter),
		directCounters: NewResourceMap[*p4config.DirectCounter](ClassDirectCounter),
		meters:         NewResourceMap[*p4config.Meter](ClassMeter),
		directMeters:   NewResourceMap[*p4config.DirectMeter](ClassDirectMeter),
		valueSets:      NewResourceMap[*p4config.ValueSet](ClassValueSet),
		registers:      NewResourceMap[*p4config.Register](ClassRegister),
		digests:        NewResourceMap[*p4config.Digest](ClassDigest),
		allIDs:         make(map[uint32]struct{}),
		allNames:       make(map[string]*p4config.Preamble),
		classOfID:      make(map[uint32]string),
		meterOfTable:   make(map[uint32]*p4config.DirectMeter),
		counterOfTable: make(map[uint32]*p4config.DirectCounter),
	}
}

// SetRequiredObjects overrides the minimum-required-objects rule; it must be
// called before Initialize.
func (m *Manager) SetRequiredObjects(required RequiredObjects) error {
	if m.initialized {
		return errors.NewConflict("manager has already been initialized")
	}
	m.required = required
	return nil
}

// Initialize builds and verifies all indices in one shot. The supplied extern
// manager, if any, is initialized with the same preamble check so that extern
// IDs and names share the uniqueness namespace. A second call fails. On any
// verification failure the composite error is returned and the manager must
// be discarded.
func (m *Manager) Initialize(externs ExternManager) error {
	if m.initialized {
		return errors.NewConflict("manager has already been initialized")
	}
	m.initialized = true

	var errs []error
	appendErr := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	// Standard classes are indexed in a fixed order so that diagnostics for
	// cross-class collisions are deterministic.
	appendErr(m.tables.Build(m.info.Tables, m.preambleCheck))
	appendErr(m.actions.Build(m.info.Actions, m.preambleCheck))
	appendErr(m.actionProfiles.Build(m.info.ActionProfiles, m.preambleCheck))
	appendErr(m.counters.Build(m.info.Counters, m.preambleCheck))
	appendErr(m.directCounters.Build(m.info.DirectCounters, m.preambleCheck))
	appendErr(m.meters.Build(m.info.Meters, m.preambleCheck))
	appendErr(m.directMeters.Build(m.info.DirectMeters, m.preambleCheck))
	appendErr(m.valueSets.Build(m.info.ValueSets, m.preambleCheck))
	appendErr(m.registers.Build(m.info.Registers, m.preambleCheck))
	appendErr(m.digests.Build(m.info.Digests, m.preambleCheck))

	if externs != nil {
		appendErr(externs.Initialize(m.info, m.preambleCheck))
	}

	for _, table := range m.tables.Objects() {
		m.totalMatchFields += len(table.MatchFields)
	}
	for _, meter := range m.directMeters.Objects() {
		m.meterOfTable[meter.DirectTableId] = meter
	}
	for _, counter := range m.directCounters.Objects() {
		m.counterOfTable[counter.DirectTableId] = counter
	}

	appendErr(m.verifyRequiredObjects())
	appendErr(m.verifyTableReferences())

	if err := stderrors.Join(errs...); err != nil {
		return err
	}
	log.Infof("P4Info %q indexed: %d tables, %d actions, %d meters, %d direct meters",
		m.info.GetPkgInfo().GetName(), m.tables.Count(), m.actions.Count(), m.meters.Count(), m.directMeters.Count())
	return nil
}

// The shared preamble check: rejects zero IDs and empty names and enforces
// cross-class uniqueness of both; successful objects are recorded in the
// global indices.
func (m *Manager) preambleCheck(preamble *p4config.Preamble, class string) error {
	if preamble == nil || preamble.Id == 0 {
		return errors.NewInvalid("%s has a zero object ID", class)
	}
	if preamble.Name == "" {
		return errors.NewInvalid("%s 0x%08x has an empty name", class, preamble.Id)
	}
	if otherClass, ok := m.classOfID[preamble.Id]; ok {
		other := "another object"
		for name, p := range m.allNames {
			if p.Id == preamble.Id {
				other = name
				break
			}
		}
		return errors.NewInvalid("duplicate ID 0x%08x: %s %q collides with %s %q",
			preamble.Id, class, preamble.Name, otherClass, other)
	}
	if other, ok := m.allNames[preamble.Name]; ok {
		return errors.NewInvalid("duplicate name %q: %s 0x%08x collides with %s 0x%08x",
			preamble.Name, class, preamble.Id, m.classOfID[other.Id], other.Id)
	}
	m.allIDs[preamble.Id] = struct{}{}
	m.allNames[preamble.Name] = preamble
	m.classOfID[preamble.Id] = class
	return nil
}

func (m *Manager) verifyRequiredObjects() error {
	var errs []error
	if m.tables.Count() < m.required.MinTables {
		errs = append(errs, errors.NewInvalid("P4Info defines %d tables; at least %d required",
			m.tables.Count(), m.required.MinTables))
	}
	if m.actions.Count() < m.required.MinActions {
		errs = append(errs, errors.NewInvalid("P4Info defines %d actions; at least %d required",
			m.actions.Count(), m.required.MinActions))
	}
	if m.totalMatchFields < m.required.MinMatchFields {
		errs = append(errs, errors.NewInvalid("P4Info defines %d match fields; at least %d required",
			m.totalMatchFields, m.required.MinMatchFields))
	}
	return stderrors.Join(errs...)
}

// Verifies that every ID referenced from a table resolves to an object of
// the expected class.
func (m *Manager) verifyTableReferences() error {
	var errs []error
	for _, table := range m.tables.Objects() {
		name := table.Preamble.Name
		for _, field := range table.MatchFields {
			if field.Id == 0 || field.Name == "" {
				errs = append(errs, errors.NewInvalid("table %q has a malformed match field %d", name, field.Id))
			}
		}
		for _, ref := range table.ActionRefs {
			if _, err := m.actions.FindByID(ref.Id); err != nil {
				errs = append(errs, errors.NewInvalid("table %q references undefined action 0x%08x", name, ref.Id))
			}
		}
		if id := table.ConstDefaultActionId; id != 0 {
			if _, err := m.actions.FindByID(id); err != nil {
				errs = append(errs, errors.NewInvalid("table %q has undefined const default action 0x%08x", name, id))
			}
		}
		if id := table.ImplementationId; id != 0 {
			if _, err := m.actionProfiles.FindByID(id); err != nil {
				errs = append(errs, errors.NewInvalid("table %q has undefined implementation 0x%08x", name, id))
			}
		}
		for _, id := range table.DirectResourceIds {
			switch id >> 24 {
			case uint32(p4config.P4Ids_DIRECT_COUNTER):
				if _, err := m.directCounters.FindByID(id); err != nil {
					errs = append(errs, errors.NewInvalid("table %q references undefined direct counter 0x%08x", name, id))
				}
			case uint32(p4config.P4Ids_DIRECT_METER):
				if _, err := m.directMeters.FindByID(id); err != nil {
					errs = append(errs, errors.NewInvalid("table %q references undefined direct meter 0x%08x", name, id))
				}
			default:
				errs = append(errs, errors.NewInvalid("table %q references direct resource 0x%08x of unknown class", name, id))
			}
		}
	}
	return stderrors.Join(errs...)
}

// P4Info returns the manager's private P4Info copy; callers must treat it as read-only
func (m *Manager) P4Info() *p4config.P4Info {
	return m.info
}

// ClassOf returns the class label of the object with the given ID
func (m *Manager) ClassOf(id uint32) (string, bool) {
	class, ok := m.classOfID[id]
	return class, ok
}

// FindTable returns a copy of the table with the given ID
func (m *Manager) FindTable(id uint32) (*p4config.Table, error) {
	table, err := m.tables.FindByID(id)
	if err != nil {
		return nil, err
	}
	return proto.Clone(table).(*p4config.Table), nil
}

// FindTableByName returns a copy of the table with the given name
func (m *Manager) FindTableByName(name string) (*p4config.Table, error) {
	table, err := m.tables.FindByName(name)
	if err != nil {
		return nil, err
	}
	return proto.Clone(table).(*p4config.Table), nil
}

// FindAction returns a copy of the action with the given ID
func (m *Manager) FindAction(id uint32) (*p4config.Action, error) {
	action, err := m.actions.FindByID(id)
	if err != nil {
		return nil, err
	}
	return proto.Clone(action).(*p4config.Action), nil
}

// FindActionByName returns a copy of the action with the given name
func (m *Manager) FindActionByName(name string) (*p4config.Action, error) {
	action, err := m.actions.FindByName(name)
	if err != nil {
		return nil, err
	}
	return proto.Clone(action).(*p4config.Action), nil
}

// FindActionProfile returns a copy of the action profile with the given ID
func (m *Manager) FindActionProfile(id uint32) (*p4config.ActionProfile, error) {
	profile, err := m.actionProfiles.FindByID(id)
	if err != nil {
		return nil, err
	}
	return proto.Clone(profile).(*p4config.ActionProfile), nil
}

// FindCounter returns a copy of the indirect counter with the given ID
func (m *Manager) FindCounter(id uint32) (*p4config.Counter, error) {
	counter, err := m.counters.FindByID(id)
	if err != nil {
		return nil, err
	}
	return proto.Clone(counter).(*p4config.Counter), nil
}

// FindDirectCounter returns a copy of the direct counter with the given ID
func (m *Manager) FindDirectCounter(id uint32) (*p4config.DirectCounter, error) {
	counter, err := m.directCounters.FindByID(id)
	if err != nil {
		return nil, err
	}
	return proto.Clone(counter).(*p4config.DirectCounter), nil
}

// FindMeter returns a copy of the indirect meter with the given ID
func (m *Manager) FindMeter(id uint32) (*p4config.Meter, error) {
	meter, err := m.meters.FindByID(id)
	if err != nil {
		return nil, err
	}
	return proto.Clone(meter).(*p4config.Meter), nil
}

// FindMeterByName returns a copy of the indirect meter with the given name
func (m *Manager) FindMeterByName(name string) (*p4config.Meter, error) {
	meter, err := m.meters.FindByName(name)
	if err != nil {
		return nil, err
	}
	return proto.Clone(meter).(*p4config.Meter), nil
}

// FindDirectMeter returns a copy of the direct meter with the given ID
func (m *Manager) FindDirectMeter(id uint32) (*p4config.DirectMeter, error) {
	meter, err := m.directMeters.FindByID(id)
	if err != nil {
		return nil, err
	}
	return proto.Clone(meter).(*p4config.DirectMeter), nil
}

// FindDirectMeterForTable returns a copy of the direct meter attached to the given table
func (m *Manager) FindDirectMeterForTable(tableID uint32) (*p4config.DirectMeter, error) {
	meter, ok := m.meterOfTable[tableID]
	if !ok {
		return nil, errors.NewNotFound("table 0x%08x has no direct meter", tableID)
	}
	return proto.Clone(meter).(*p4config.DirectMeter), nil
}

// FindDirectCounterForTable returns a copy of the direct counter attached to the given table
func (m *Manager) FindDirectCounterForTable(tableID uint32) (*p4config.DirectCounter, error) {
	counter, ok := m.counterOfTable[tableID]
	if !ok {
		return nil, errors.NewNotFound("table 0x%08x has no direct counter", tableID)
	}
	return proto.Clone(counter).(*p4config.DirectCounter), nil
}

// FindRegister returns a copy of the register with the given ID
func (m *Manager) FindRegister(id uint32) (*p4config.Register, error) {
	register, err := m.registers.FindByID(id)
	if err != nil {
		return nil, err
	}
	return proto.Clone(register).(*p4config.Register), nil
}

// FindValueSet returns a copy of the value set with the given ID
func (m *Manager) FindValueSet(id uint32) (*p4config.ValueSet, error) {
	valueSet, err := m.valueSets.FindByID(id)
	if err != nil {
		return nil, err
	}
	return proto.Clone(valueSet).(*p4config.ValueSet), nil
}

// FindDigest returns a copy of the digest with the given ID
func (m *Manager) FindDigest(id uint32) (*p4config.Digest, error) {
	digest, err := m.digests.FindByID(id)
	if err != nil {
		return nil, err
	}
	return proto.Clone(digest).(*p4config.Digest), nil
}

// DirectCounters returns the indexed direct counters; read-only
func (m *Manager) DirectCounters() []*p4config.DirectCounter {
	return m.directCounters.Objects()
}

// DirectMeters returns the indexed direct meters; read-only
func (m *Manager) DirectMeters() []*p4config.DirectMeter {
	return m.directMeters.Objects()
}

// Meters returns the indexed indirect meters; read-only
func (m *Manager) Meters() []*p4config.Meter {
	return m.meters.Objects()
}

// MeterUnitInPackets returns true when the given meter spec counts packets,
// false when it counts bytes
func MeterUnitInPackets(spec *p4config.MeterSpec) (bool, error) {
	switch spec.GetUnit() {
	case p4config.MeterSpec_PACKETS:
		return true, nil
	case p4config.MeterSpec_BYTES:
		return false, nil
	}
	return false, errors.NewInvalid("unsupported meter unit %v", spec.GetUnit())
}

// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package extern

import (
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/onosproject/stratum-tdi/pkg/p4info"
	p4config "github.com/p4lang/p4runtime/go/p4/config/v1"
	"google.golang.org/protobuf/proto"
)

var log = logging.GetLogger("tdi", "extern")

// SynthesisDefaults configures the constants applied to synthesized extern
// instances; the P4Info extern blocks do not carry them.
type SynthesisDefaults struct {
	PacketModMeterSize       int64
	PacketModMeterIndexWidth int32
}

// DefaultSynthesis returns the stock synthesis constants.
// TODO: the 1024/20 values are inherited from the SDE examples without a
// stated derivation; revisit once the ES2K meter profile budget is published.
func DefaultSynthesis() SynthesisDefaults {
	return SynthesisDefaults{
		PacketModMeterSize:       1024,
		PacketModMeterIndexWidth: 20,
	}
}

// ES2KManager indexes the ES2K packet-mod meter extern classes.
type ES2KManager struct {
	defaults SynthesisDefaults

	pktModMeters    *p4info.ResourceMap[*PacketModMeter]
	dirPktModMeters *p4info.ResourceMap[*DirectPacketModMeter]
}

// NewES2KManager creates a new ES2K extern manager with the given synthesis constants
func NewES2KManager(defaults SynthesisDefaults) *ES2KManager {
	return &ES2KManager{
		defaults:        defaults,
		pktModMeters:    p4info.NewResourceMap[*PacketModMeter](ClassPacketModMeter),
		dirPktModMeters: p4info.NewResourceMap[*DirectPacketModMeter](ClassDirectPacketModMeter),
	}
}

// Initialize synthesizes one instance per extern block entry with a recognized
// extern type ID and indexes them through the shared preamble check. Extern
// blocks with unrecognized type IDs are logged and skipped.
func (m *ES2KManager) Initialize(info *p4config.P4Info, check p4info.PreambleCheck) error {
	var pktModMeters []*PacketModMeter
	var dirPktModMeters []*DirectPacketModMeter

	for _, block := range info.Externs {
		switch block.ExternTypeId {
		case TypeIDPacketModMeter:
			for _, instance := range block.Instances {
				pktModMeters = append(pktModMeters, &PacketModMeter{
					Preamble:   proto.Clone(instance.Preamble).(*p4config.Preamble),
					Spec:       &p4config.MeterSpec{Unit: p4config.MeterSpec_PACKETS},
					Size:       m.defaults.PacketModMeterSize,
					IndexWidth: m.defaults.PacketModMeterIndexWidth,
				})
			}
		case TypeIDDirectPacketModMeter:
			for _, instance := range block.Instances {
				dirPktModMeters = append(dirPktModMeters, &DirectPacketModMeter{
					Preamble: proto.Clone(instance.Preamble).(*p4config.Preamble),
					Spec:     &p4config.MeterSpec{Unit: p4config.MeterSpec_BYTES},
				})
			}
		default:
			log.Infof("Skipping unrecognized extern type 0x%x (%s)", block.ExternTypeId, block.ExternTypeName)
		}
	}

	if err := m.pktModMeters.Build(pktModMeters, check); err != nil {
		return err
	}
	if err := m.dirPktModMeters.Build(dirPktModMeters, check); err != nil {
		return err
	}
	return nil
}

// FindPacketModMeter returns the packet-mod meter with the given ID
func (m *ES2KManager) FindPacketModMeter(id uint32) (*PacketModMeter, error) {
	return m.pktModMeters.FindByID(id)
}

// FindPacketModMeterByName returns the packet-mod meter with the given name
func (m *ES2KManager) FindPacketModMeterByName(name string) (*PacketModMeter, error) {
	return m.pktModMeters.FindByName(name)
}

// FindDirectPacketModMeter returns the direct packet-mod meter with the given ID
func (m *ES2KManager) FindDirectPacketModMeter(id uint32) (*DirectPacketModMeter, error) {
	return m.dirPktModMeters.FindByID(id)
}

// FindDirectPacketModMeterByName returns the direct packet-mod meter with the given name
func (m *ES2KManager) FindDirectPacketModMeterByName(name string) (*DirectPacketModMeter, error) {
	return m.dirPktModMeters.FindByName(name)
}

// PacketModMeters returns all indexed packet-mod meters; read-only
func (m *ES2KManager) PacketModMeters() []*PacketModMeter {
	return m.pktModMeters.Objects()
}

// DirectPacketModMeters returns all indexed direct packet-mod meters; read-only
func (m *ES2KManager) DirectPacketModMeters() []*DirectPacketModMeter {
	return m.dirPktModMeters.Objects()
}

// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package loader reads chassis configuration files and turns them into
// device configurations consumable by the daemon core.
package loader

import (
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/onosproject/stratum-tdi/pkg/config"
	"github.com/onosproject/stratum-tdi/pkg/device"
	"github.com/onosproject/stratum-tdi/pkg/tdi"
	"github.com/onosproject/stratum-tdi/pkg/tdi/extern"
)

var log = logging.GetLogger()

// LoadDeviceConfig loads the specified chassis YAML file and translates it
// into a device configuration.
func LoadDeviceConfig(chassisPath string) (*device.Config, string, error) {
	chassis := &Chassis{}
	if err := LoadChassisFile(chassisPath, chassis); err != nil {
		return nil, "", err
	}

	log.Infof("Loaded chassis config: %+v", chassis)
	cfg, err := DeviceConfig(chassis)
	if err != nil {
		return nil, "", err
	}
	return cfg, chassis.P4InfoPath, nil
}

// DeviceConfig translates the chassis description into a device configuration,
// applying stock policer sizing where the file leaves it unspecified.
func DeviceConfig(chassis *Chassis) (*device.Config, error) {
	target, err := tdi.ParseTarget(chassis.Target)
	if err != nil {
		return nil, err
	}

	synthesis := extern.DefaultSynthesis()
	if chassis.Policers.MeterSize > 0 {
		synthesis.PacketModMeterSize = int64(chassis.Policers.MeterSize)
	}
	if chassis.Policers.IndexWidth > 0 {
		synthesis.PacketModMeterIndexWidth = chassis.Policers.IndexWidth
	}

	ports := make([]config.Port, 0, len(chassis.Ports))
	for _, port := range chassis.Ports {
		ports = append(ports, config.Port{
			Name:    port.Name,
			Number:  port.Number,
			SDNID:   port.SDNID,
			Speed:   port.Speed,
			Enabled: port.Enabled,
		})
	}

	return &device.Config{
		ID:        chassis.DeviceID,
		Target:    target,
		Ports:     ports,
		Synthesis: synthesis,
	}, nil
}

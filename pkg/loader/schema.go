// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"path/filepath"

	"github.com/spf13/viper"
)

// Chassis is a description of the switch chassis the daemon fronts
type Chassis struct {
	Target     string   `mapstructure:"target" yaml:"target"`
	DeviceID   uint64   `mapstructure:"device_id" yaml:"device_id"`
	P4InfoPath string   `mapstructure:"p4info" yaml:"p4info"`
	Ports      []Port   `mapstructure:"ports" yaml:"ports"`
	Policers   Policers `mapstructure:"policers" yaml:"policers"`
}

// Port is a description of a chassis port
type Port struct {
	Name    string `mapstructure:"name" yaml:"name"`
	Number  uint32 `mapstructure:"number" yaml:"number"`
	SDNID   uint32 `mapstructure:"sdn_id" yaml:"sdn_id"`
	Speed   string `mapstructure:"speed" yaml:"speed"`
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
}

// Policers carries the sizing applied to synthesized packet-mod meter
// instances on targets that do not describe them in P4Info.
type Policers struct {
	MeterSize  uint32 `mapstructure:"meter_size" yaml:"meter_size"`
	IndexWidth int32  `mapstructure:"index_width" yaml:"index_width"`
}

// LoadChassisFile loads the specified chassis YAML file
func LoadChassisFile(path string, chassis *Chassis) error {
	viper.SetConfigType("yaml")
	viper.SetConfigName(filepath.Base(path))
	viper.AddConfigPath(filepath.Dir(path))

	if err := viper.ReadInConfig(); err != nil {
		return err
	}
	return viper.Unmarshal(chassis)
}

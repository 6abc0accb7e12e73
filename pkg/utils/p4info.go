// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package utils contains various utilities for working with P4Info and gNMI paths
package utils

import (
	"os"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	p4config "github.com/p4lang/p4runtime/go/p4/config/v1"
	"google.golang.org/protobuf/encoding/prototext"
)

// LoadP4Info loads the specified file containing a prototext P4Info descriptor
func LoadP4Info(path string) (*p4config.P4Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewInvalid("unable to read P4Info %s: %v", path, err)
	}
	info := &p4config.P4Info{}
	if err = prototext.Unmarshal(data, info); err != nil {
		return nil, errors.NewInvalid("unable to parse P4Info %s: %v", path, err)
	}
	return info, nil
}

// P4InfoBytes serializes the given P4Info into prototext bytes
func P4InfoBytes(info *p4config.P4Info) []byte {
	bytes, err := prototext.Marshal(info)
	if err != nil {
		return nil
	}
	return bytes
}

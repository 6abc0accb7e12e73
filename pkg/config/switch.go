// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"

	"github.com/openconfig/gnmi/proto/gnmi"
)

// Port describes one switch port exposed through the configuration tree.
type Port struct {
	Name    string
	Number  uint32
	SDNID   uint32
	Speed   string
	Enabled bool
}

var interfaceCounters = []string{
	"in-octets",
	"out-octets",
	"in-discards",
	"in-fcs-errors",
	"out-discards",
	"in-errors",
	"out-errors",
	"in-unicast-pkts",
	"in-broadcast-pkts",
	"in-multicast-pkts",
	"in-unknown-protos",
	"out-unicast-pkts",
	"out-broadcast-pkts",
	"out-multicast-pkts",
}

// NewSwitchTree creates the skeleton configuration of a switch with the
// given ports, laid out in the openconfig interfaces shape.
func NewSwitchTree(ports []Port) *Node {
	root := NewRoot()
	interfaces := root.Add("interfaces", nil, nil)
	for _, port := range ports {
		name := port.Name
		if name == "" {
			name = fmt.Sprintf("%d", port.Number)
		}
		node := interfaces.Add("interface", map[string]string{"name": name}, nil)

		node.AddPath("state/ifindex", uintValue(uint64(port.Number)))
		node.AddPath("state/id", uintValue(uint64(port.SDNID)))
		node.AddPath("state/oper-status", stringValue(operStatus(port.Enabled)))
		node.AddPath("state/last-change", uintValue(0))
		node.AddPath("config/enabled", boolValue(port.Enabled))
		if port.Speed != "" {
			node.AddPath("ethernet/config/port-speed", stringValue(port.Speed))
		}

		counters := node.AddPath("state/counters", nil)
		for _, counter := range interfaceCounters {
			counters.Add(counter, nil, &gnmi.TypedValue{Value: &gnmi.TypedValue_IntVal{IntVal: 0}})
		}
	}
	return root
}

// SetPortStatus updates the oper-status leaf of the named interface;
// returns false if the interface is not in the tree.
func SetPortStatus(root *Node, name string, up bool) bool {
	node := root.GetPath(fmt.Sprintf("interfaces/interface[name=%s]/state/oper-status", name))
	if node == nil {
		return false
	}
	node.SetValue(stringValue(operStatus(up)))
	return true
}

func operStatus(up bool) string {
	if up {
		return "UP"
	}
	return "DOWN"
}

func uintValue(value uint64) *gnmi.TypedValue {
	return &gnmi.TypedValue{Value: &gnmi.TypedValue_UintVal{UintVal: value}}
}

func stringValue(value string) *gnmi.TypedValue {
	return &gnmi.TypedValue{Value: &gnmi.TypedValue_StringVal{StringVal: value}}
}

func boolValue(value bool) *gnmi.TypedValue {
	return &gnmi.TypedValue{Value: &gnmi.TypedValue_BoolVal{BoolVal: value}}
}

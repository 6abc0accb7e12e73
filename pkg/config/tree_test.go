// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSwitchTree validates the shape and navigation of the switch gNMI config.
func TestSwitchTree(t *testing.T) {
	rootNode := createSwitchTree(8)
	assert.NotNil(t, rootNode.Get("interfaces", nil))

	node := rootNode.GetPath("interfaces/interface[name=5]/state/id")
	assert.NotNil(t, node)
	assert.Equal(t, "id", node.Name())
	assert.Equal(t, uint64(1029), node.Value().GetUintVal())

	nodes := rootNode.FindAll("interfaces/interface[name=7]")
	assert.Len(t, nodes, 20)

	nodes = rootNode.FindAll("interfaces/interface[name=7]/state")
	assert.Len(t, nodes, 18)

	nodes = rootNode.FindAll("interfaces/interface[name=7]/state/counters")
	assert.Len(t, nodes, 14)

	nodes = rootNode.FindAll("interfaces/interface[name=7]/state/ifindex")
	assert.Len(t, nodes, 1)

	nodes = rootNode.FindAll("interfaces/interface[name=...]/state")
	assert.Len(t, nodes, 8*18)

	nodes = rootNode.FindAll("interfaces/interface[name=...]/state/ifindex")
	assert.Len(t, nodes, 8)

	nodes = rootNode.FindAll("interfaces/interface[name=...]")
	assert.Len(t, nodes, 8*20)

	node = rootNode.GetPath("interfaces/interface[name=2]/state/counters")
	assert.NotNil(t, node)
	node = rootNode.DeletePath("interfaces/interface[name=2]/state/counters")
	assert.NotNil(t, node)
	node = rootNode.GetPath("interfaces/interface[name=2]/state/counters")
	assert.Nil(t, node)
}

func TestPortStatus(t *testing.T) {
	rootNode := createSwitchTree(2)

	node := rootNode.GetPath("interfaces/interface[name=1]/state/oper-status")
	assert.Equal(t, "UP", node.Value().GetStringVal())

	assert.True(t, SetPortStatus(rootNode, "1", false))
	assert.Equal(t, "DOWN", node.Value().GetStringVal())

	assert.False(t, SetPortStatus(rootNode, "99", true))
}

func TestReplacePath(t *testing.T) {
	rootNode := createSwitchTree(1)

	leaf := rootNode.ReplacePath("interfaces/interface[name=1]/state", stringValue("gone"))
	assert.Equal(t, "gone", leaf.Value().GetStringVal())
	assert.Nil(t, rootNode.GetPath("interfaces/interface[name=1]/state/ifindex"))
}

// createSwitchTree creates a test switch configuration
func createSwitchTree(portCount uint32) *Node {
	ports := make([]Port, 0, portCount)
	for i := uint32(1); i <= portCount; i++ {
		ports = append(ports, Port{
			Name:    fmt.Sprintf("%d", i),
			Number:  i,
			SDNID:   1024 + i,
			Speed:   "100GB",
			Enabled: true,
		})
	}
	return NewSwitchTree(ports)
}

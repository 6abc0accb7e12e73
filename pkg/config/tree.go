// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package config holds the device configuration tree served over gNMI.
package config

import (
	"github.com/openconfig/gnmi/proto/gnmi"
	"github.com/onosproject/stratum-tdi/pkg/utils"
)

// Node is a single node of the configuration tree. Leaf nodes carry a value;
// interior nodes carry children. Children with the same name are told apart
// by their key.
type Node struct {
	path     string
	name     string
	key      map[string]string
	value    *gnmi.TypedValue
	children []*Node
}

// NewRoot creates an empty configuration tree
func NewRoot() *Node {
	return &Node{key: map[string]string{}}
}

// Path returns the full string path of the node
func (n *Node) Path() string {
	return n.path
}

// Name returns the node name
func (n *Node) Name() string {
	return n.name
}

// Key returns the node key
func (n *Node) Key() map[string]string {
	return n.key
}

// Value returns the node value; nil for interior nodes
func (n *Node) Value() *gnmi.TypedValue {
	return n.value
}

// SetValue replaces the node value
func (n *Node) SetValue(value *gnmi.TypedValue) {
	n.value = value
}

// MatchesKey returns true if the node key matches the given key; "..." in
// the given key matches any value.
func (n *Node) MatchesKey(key map[string]string) bool {
	if len(key) != len(n.key) {
		return false
	}
	for name, value := range key {
		if value != "..." && value != n.key[name] {
			return false
		}
	}
	return true
}

// Add returns the child with the given name and key, creating it if needed;
// in either case the child's value is set to the given value.
func (n *Node) Add(name string, key map[string]string, value *gnmi.TypedValue) *Node {
	child := n.Get(name, key)
	if child == nil {
		child = &Node{
			path: utils.Subpath(n.path, name, key),
			name: name,
			key:  key,
		}
		n.children = append(n.children, child)
	}
	child.value = value
	return child
}

// Get returns the immediate child with the given name and key; nil if absent
func (n *Node) Get(name string, key map[string]string) *Node {
	for _, child := range n.children {
		if child.name == name && child.MatchesKey(key) {
			return child
		}
	}
	return nil
}

// Delete removes and returns the immediate child with the given name and
// key; nil if absent.
func (n *Node) Delete(name string, key map[string]string) *Node {
	for i, child := range n.children {
		if child.name == name && child.MatchesKey(key) {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return child
		}
	}
	return nil
}

// AddPath adds nodes along the given string path and returns the leaf node
func (n *Node) AddPath(path string, value *gnmi.TypedValue) *Node {
	current := n
	segments := utils.SplitPath(path)
	for _, segment := range segments[:len(segments)-1] {
		name, key, _ := utils.NameKey(segment)
		current = current.Add(name, key, nil)
	}
	name, key, _ := utils.NameKey(segments[len(segments)-1])
	return current.Add(name, key, value)
}

// GetPath walks the given string path and returns the node it ends at;
// nil if any segment is absent.
func (n *Node) GetPath(path string) *Node {
	current := n
	for _, segment := range utils.SplitPath(path) {
		name, key, _ := utils.NameKey(segment)
		if current = current.Get(name, key); current == nil {
			return nil
		}
	}
	return current
}

// ReplacePath performs like AddPath but discards any children of the leaf
func (n *Node) ReplacePath(path string, value *gnmi.TypedValue) *Node {
	leaf := n.AddPath(path, value)
	leaf.children = nil
	return leaf
}

// DeletePath walks the given string path and removes its last node;
// returns the removed node or nil if absent.
func (n *Node) DeletePath(path string) *Node {
	current := n
	segments := utils.SplitPath(path)
	for _, segment := range segments[:len(segments)-1] {
		name, key, _ := utils.NameKey(segment)
		if current = current.Get(name, key); current == nil {
			return nil
		}
	}
	name, key, _ := utils.NameKey(segments[len(segments)-1])
	return current.Delete(name, key)
}

// FindAll returns the leaves reachable through the given path, which may use
// the "..." wildcard as a key value.
func (n *Node) FindAll(path string) []*Node {
	current := n
	segments := utils.SplitPath(path)
	for i, segment := range segments[:len(segments)-1] {
		name, key, hasWildcard := utils.NameKey(segment)
		if hasWildcard {
			var nodes []*Node
			for _, child := range current.children {
				if child.name == name && child.MatchesKey(key) {
					nodes = append(nodes, child.FindAll(utils.JoinPath(segments[i+1:]))...)
				}
			}
			return nodes
		}
		if current = current.Get(name, key); current == nil {
			return nil
		}
	}
	name, key, hasWildcard := utils.NameKey(segments[len(segments)-1])
	if hasWildcard {
		var nodes []*Node
		for _, child := range current.children {
			if child.name == name && child.MatchesKey(key) {
				nodes = append(nodes, child.Leaves()...)
			}
		}
		return nodes
	}
	if current = current.Get(name, key); current == nil {
		return nil
	}
	return current.Leaves()
}

// Leaves returns all value-carrying descendants of the node, itself included
func (n *Node) Leaves() []*Node {
	if n.value != nil {
		return []*Node{n}
	}
	var nodes []*Node
	for _, child := range n.children {
		nodes = append(nodes, child.Leaves()...)
	}
	return nodes
}

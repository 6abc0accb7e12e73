// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package p4info builds verified, immutable lookup indices over the object
// classes of a compiled P4 program descriptor.
package p4info

import (
	stderrors "errors"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	p4config "github.com/p4lang/p4runtime/go/p4/config/v1"
)

// Object is implemented by every P4Info object class as well as by
// synthesized extern instances; anything that carries a preamble.
type Object interface {
	GetPreamble() *p4config.Preamble
}

// PreambleCheck validates the preamble of an object of the named class
// before the object is admitted into a resource map.
type PreambleCheck func(preamble *p4config.Preamble, class string) error

// ResourceMap is a dual index (ID and name) over a frozen collection of
// P4 objects of a single class. It is populated exactly once via Build
// and is read-only thereafter; the indices refer into the backing slice.
type ResourceMap[T Object] struct {
	class   string
	objects []T
	byID    map[uint32]int
	byName  map[string]int
	built   bool
}

// NewResourceMap creates an empty resource map with the given class label
func NewResourceMap[T Object](class string) *ResourceMap[T] {
	return &ResourceMap[T]{
		class:  class,
		byID:   make(map[uint32]int),
		byName: make(map[string]int),
	}
}

// Class returns the descriptive class label of the map
func (m *ResourceMap[T]) Class() string {
	return m.class
}

// Build populates the map from the given collection. Each object's preamble is
// validated with the supplied check; objects failing the check are skipped and
// their errors accumulated into the composite result. Duplicate IDs or names
// surviving the check indicate a caller bug and are reported the same way.
func (m *ResourceMap[T]) Build(objects []T, check PreambleCheck) error {
	if m.built {
		return errors.NewConflict("%s resource map has already been built", m.class)
	}
	m.built = true

	var errs []error
	for _, object := range objects {
		preamble := object.GetPreamble()
		if err := check(preamble, m.class); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, ok := m.byID[preamble.Id]; ok {
			errs = append(errs, errors.NewInvalid("duplicate %s ID 0x%08x", m.class, preamble.Id))
			continue
		}
		if _, ok := m.byName[preamble.Name]; ok {
			errs = append(errs, errors.NewInvalid("duplicate %s name %q", m.class, preamble.Name))
			continue
		}
		m.objects = append(m.objects, object)
		index := len(m.objects) - 1
		m.byID[preamble.Id] = index
		m.byName[preamble.Name] = index
	}
	return stderrors.Join(errs...)
}

// FindByID returns the object with the given ID
func (m *ResourceMap[T]) FindByID(id uint32) (T, error) {
	index, ok := m.byID[id]
	if !ok {
		var zero T
		return zero, errors.NewNotFound("%s with ID 0x%08x not found", m.class, id)
	}
	return m.objects[index], nil
}

// FindByName returns the object with the given fully-qualified name
func (m *ResourceMap[T]) FindByName(name string) (T, error) {
	index, ok := m.byName[name]
	if !ok {
		var zero T
		return zero, errors.NewNotFound("%s with name %q not found", m.class, name)
	}
	return m.objects[index], nil
}

// Objects returns the backing collection; callers must treat it as read-only
func (m *ResourceMap[T]) Objects() []T {
	return m.objects
}

// Count returns the number of indexed objects
func (m *ResourceMap[T]) Count() int {
	return len(m.objects)
}

// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package p4info

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
	p4config "github.com/p4lang/p4runtime/go/p4/config/v1"
	p4api "github.com/p4lang/p4runtime/go/p4/v1"
)

// VerifyRegisterEntry confirms that the register referenced by the given entry
// exists and, when data is present, that the data conforms to the register's
// declared type spec.
func (m *Manager) VerifyRegisterEntry(entry *p4api.RegisterEntry) error {
	register, err := m.registers.FindByID(entry.RegisterId)
	if err != nil {
		return err
	}
	if index := entry.Index; index != nil {
		if index.Index < 0 || index.Index >= int64(register.Size) {
			return errors.NewInvalid("register %q index %d out of range [0, %d)",
				register.Preamble.Name, index.Index, register.Size)
		}
	}
	if entry.Data != nil {
		return m.VerifyTypeSpec(entry.Data, register.TypeSpec)
	}
	return nil
}

// VerifyTypeSpec recursively validates that the given P4 data value conforms
// to the given type spec: bitstrings must fit the declared width, struct-like
// values must have the declared member count with conforming members, and
// header stacks must have the declared element count. Unknown spec kinds fail.
func (m *Manager) VerifyTypeSpec(data *p4api.P4Data, spec *p4config.P4DataTypeSpec) error {
	switch t := spec.GetTypeSpec().(type) {
	case *p4config.P4DataTypeSpec_Bitstring:
		return verifyBitstring(data.GetBitstring(), t.Bitstring)

	case *p4config.P4DataTypeSpec_Bool:
		if _, ok := data.GetData().(*p4api.P4Data_Bool); !ok {
			return errors.NewInvalid("expected bool data, got %T", data.GetData())
		}
		return nil

	case *p4config.P4DataTypeSpec_Tuple:
		tuple := data.GetTuple()
		if tuple == nil {
			return errors.NewInvalid("expected tuple data, got %T", data.GetData())
		}
		members := t.Tuple.Members
		if len(tuple.Members) != len(members) {
			return errors.NewInvalid("tuple has %d members; %d expected", len(tuple.Members), len(members))
		}
		for i, member := range tuple.Members {
			if err := m.VerifyTypeSpec(member, members[i]); err != nil {
				return err
			}
		}
		return nil

	case *p4config.P4DataTypeSpec_Struct:
		value := data.GetStruct()
		if value == nil {
			return errors.NewInvalid("expected struct data, got %T", data.GetData())
		}
		structSpec, err := m.structSpec(t.Struct.Name)
		if err != nil {
			return err
		}
		if len(value.Members) != len(structSpec.Members) {
			return errors.NewInvalid("struct %q has %d members; %d expected",
				t.Struct.Name, len(value.Members), len(structSpec.Members))
		}
		for i, member := range value.Members {
			if err := m.VerifyTypeSpec(member, structSpec.Members[i].TypeSpec); err != nil {
				return err
			}
		}
		return nil

	case *p4config.P4DataTypeSpec_Header:
		return m.verifyHeader(data.GetHeader(), t.Header.Name)

	case *p4config.P4DataTypeSpec_HeaderStack:
		stack := data.GetHeaderStack()
		if stack == nil {
			return errors.NewInvalid("expected header stack data, got %T", data.GetData())
		}
		if int32(len(stack.Entries)) != t.HeaderStack.Size {
			return errors.NewInvalid("header stack has %d entries; %d expected",
				len(stack.Entries), t.HeaderStack.Size)
		}
		for _, entry := range stack.Entries {
			if err := m.verifyHeader(entry, t.HeaderStack.Header.Name); err != nil {
				return err
			}
		}
		return nil
	}
	return errors.NewInvalid("unsupported type spec %T", spec.GetTypeSpec())
}

func (m *Manager) structSpec(name string) (*p4config.P4StructTypeSpec, error) {
	spec, ok := m.info.GetTypeInfo().GetStructs()[name]
	if !ok {
		return nil, errors.NewInvalid("struct type %q is not defined", name)
	}
	return spec, nil
}

func (m *Manager) verifyHeader(header *p4api.P4Header, name string) error {
	if header == nil {
		return errors.NewInvalid("expected header data of type %q", name)
	}
	spec, ok := m.info.GetTypeInfo().GetHeaders()[name]
	if !ok {
		return errors.NewInvalid("header type %q is not defined", name)
	}
	if !header.IsValid {
		return nil
	}
	if len(header.Bitstrings) != len(spec.Members) {
		return errors.NewInvalid("header %q has %d fields; %d expected",
			name, len(header.Bitstrings), len(spec.Members))
	}
	for i, bits := range header.Bitstrings {
		if err := verifyBitstring(bits, spec.Members[i].TypeSpec); err != nil {
			return err
		}
	}
	return nil
}

// Validates a raw bitstring value against a bitstring-like spec; the value
// uses the canonical big-endian representation and must not exceed the
// declared width.
func verifyBitstring(value []byte, spec *p4config.P4BitstringLikeTypeSpec) error {
	var width int32
	switch t := spec.GetTypeSpec().(type) {
	case *p4config.P4BitstringLikeTypeSpec_Bit:
		width = t.Bit.Bitwidth
	case *p4config.P4BitstringLikeTypeSpec_Int:
		width = t.Int.Bitwidth
	case *p4config.P4BitstringLikeTypeSpec_Varbit:
		width = t.Varbit.MaxBitwidth
	default:
		return errors.NewInvalid("unsupported bitstring spec %T", spec.GetTypeSpec())
	}
	if len(value) == 0 {
		return errors.NewInvalid("empty bitstring for width %d", width)
	}
	maxBytes := int(width+7) / 8
	if len(value) > maxBytes {
		return errors.NewInvalid("bitstring of %d bytes exceeds width %d", len(value), width)
	}
	return nil
}

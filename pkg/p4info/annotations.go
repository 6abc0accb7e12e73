// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package p4info

import (
	"strings"

	"github.com/onosproject/onos-lib-go/pkg/errors"
)

const (
	switchStackPrefix = "@switchstack("
	switchStackSuffix = ")"
)

// SwitchStackAnnotation carries per-object hints parsed from the
// @switchstack(...) annotation family. The payload of each annotation is a
// text-format message; multiple annotations on one object merge in encounter
// order with last-wins on duplicated fields.
type SwitchStackAnnotation struct {
	PipelineStage string
	FieldType     string
}

// GetSwitchStackAnnotations locates the object with the given name and returns
// the merged content of all its @switchstack annotations; an object without
// any yields an empty result.
func (m *Manager) GetSwitchStackAnnotations(name string) (*SwitchStackAnnotation, error) {
	preamble, ok := m.allNames[name]
	if !ok {
		return nil, errors.NewNotFound("object with name %q not found", name)
	}
	annotation := &SwitchStackAnnotation{}
	for _, text := range preamble.Annotations {
		payload, ok := switchStackPayload(text)
		if !ok {
			continue
		}
		if err := parseSwitchStackPayload(payload, annotation); err != nil {
			return nil, err
		}
	}
	return annotation, nil
}

// Extracts the payload of a @switchstack annotation; returns false for
// annotations of any other family.
func switchStackPayload(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, switchStackPrefix) || !strings.HasSuffix(text, switchStackSuffix) {
		return "", false
	}
	payload := text[len(switchStackPrefix) : len(text)-len(switchStackSuffix)]
	payload = strings.TrimSpace(payload)
	if len(payload) >= 2 && payload[0] == '"' && payload[len(payload)-1] == '"' {
		payload = payload[1 : len(payload)-1]
	}
	return payload, true
}

// Parses the text-format payload of a single annotation into the given
// structure, overwriting any fields already set by earlier annotations.
func parseSwitchStackPayload(payload string, annotation *SwitchStackAnnotation) error {
	tokens := strings.Fields(strings.ReplaceAll(payload, ",", " "))
	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		var key, value string
		if colon := strings.Index(token, ":"); colon > 0 {
			key = token[:colon]
			value = token[colon+1:]
		} else {
			return errors.NewInvalid("malformed @switchstack payload %q", payload)
		}
		if value == "" {
			i++
			if i >= len(tokens) {
				return errors.NewInvalid("missing value for @switchstack field %q", key)
			}
			value = tokens[i]
		}
		value = strings.Trim(value, `"`)
		switch key {
		case "pipeline_stage":
			annotation.PipelineStage = value
		case "field_type":
			annotation.FieldType = value
		default:
			return errors.NewInvalid("unknown @switchstack field %q", key)
		}
	}
	return nil
}

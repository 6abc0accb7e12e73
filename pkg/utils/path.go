// SPDX-FileCopyrightText: 2023-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"fmt"
	"sort"
	"strings"

	"github.com/openconfig/gnmi/proto/gnmi"
)

const pathSeparator = "/"

// SplitPath splits the given string path into its segments
func SplitPath(path string) []string {
	return strings.Split(strings.TrimPrefix(path, pathSeparator), pathSeparator)
}

// JoinPath joins the given path segments into a path string
func JoinPath(segments []string) string {
	return strings.Join(segments, pathSeparator)
}

// Subpath extends the given path with a named segment and its optional key
func Subpath(path string, name string, key map[string]string) string {
	if len(key) == 0 {
		return path + pathSeparator + name
	}
	return strings.TrimPrefix(fmt.Sprintf("%s/%s[%s]", path, name, keyString(key)), pathSeparator)
}

// ToPath produces a gNMI path from its string representation
func ToPath(path string) *gnmi.Path {
	segments := SplitPath(path)
	elements := make([]*gnmi.PathElem, 0, len(segments))
	for _, segment := range segments {
		name, key, _ := NameKey(segment)
		elements = append(elements, &gnmi.PathElem{Name: name, Key: key})
	}
	return &gnmi.Path{Elem: elements}
}

// ToString produces a deterministic string representation of the given gNMI path
func ToString(path *gnmi.Path) string {
	segments := make([]string, 0, len(path.Elem))
	for _, element := range path.Elem {
		if len(element.Name) == 0 {
			continue
		}
		segment := element.Name
		if len(element.Key) > 0 {
			segment = fmt.Sprintf("%s[%s]", element.Name, keyString(element.Key))
		}
		segments = append(segments, segment)
	}
	return strings.Join(segments, pathSeparator)
}

// Produces a deterministic representation of the key map
func keyString(key map[string]string) string {
	names := make([]string, 0, len(key))
	for name := range key {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, fmt.Sprintf("%s=%s", name, key[name]))
	}
	return strings.Join(pairs, ",")
}

// NameKey splits a path segment into its name and optional key; the last
// return indicates whether the key holds the "..." wildcard.
func NameKey(segment string) (string, map[string]string, bool) {
	open := strings.IndexByte(segment, '[')
	if open < 0 {
		return segment, nil, false
	}
	name := segment[:open]
	body := segment[open+1:]
	if end := strings.IndexByte(body, ']'); end >= 0 {
		body = body[:end]
	}

	hasWildcard := false
	key := make(map[string]string)
	for _, pair := range strings.Split(body, ",") {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) == 2 {
			if kv[1] == "..." {
				hasWildcard = true
			}
			key[kv[0]] = kv[1]
		}
	}
	return name, key, hasWildcard
}

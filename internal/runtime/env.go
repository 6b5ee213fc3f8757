// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"maps"
	"slices"
	"strings"
)

// MergeEnv layers overrides on top of a KEY=VALUE environment list and
// returns a new list. base is not modified. Overridden keys keep the position
// of their first occurrence; new keys are appended in sorted order so the
// result is deterministic.
func MergeEnv(base []string, overrides map[string]string) []string {
	out := make([]string, 0, len(base)+len(overrides))
	applied := make(map[string]struct{}, len(overrides))

	for _, entry := range base {
		name, _, ok := strings.Cut(entry, "=")
		if !ok {
			out = append(out, entry)
			continue
		}
		if v, override := overrides[name]; override {
			if _, done := applied[name]; done {
				continue
			}
			applied[name] = struct{}{}
			out = append(out, name+"="+v)
			continue
		}
		out = append(out, entry)
	}

	for _, name := range slices.Sorted(maps.Keys(overrides)) {
		if _, done := applied[name]; done {
			continue
		}
		out = append(out, name+"="+overrides[name])
	}

	return out
}

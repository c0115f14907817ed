// Package protocol checks that a plugin speaks a protocol this host understands.
package protocol

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/distil/pkg/plugin"
)

// Version represents a parsed protocol version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse parses a version string in "MAJOR.MINOR.PATCH" format.
func Parse(version string) (Version, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version format: %s (expected MAJOR.MINOR.PATCH)", version)
	}

	var nums [3]int
	for i, name := range []string{"major", "minor", "patch"} {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid %s version: %s", name, parts[i])
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String returns the string representation of the version.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare orders versions by major, minor, then patch.
func (v Version) Compare(other Version) int {
	if n := cmp.Compare(v.Major, other.Major); n != 0 {
		return n
	}
	if n := cmp.Compare(v.Minor, other.Minor); n != 0 {
		return n
	}
	return cmp.Compare(v.Patch, other.Patch)
}

// IsCompatible reports whether a plugin speaking pluginVersion can be used.
// The major version must match exactly and the plugin must not be older
// than plugin.MinCompatibleVersion.
func IsCompatible(pluginVersion string) (bool, error) {
	pv, err := Parse(pluginVersion)
	if err != nil {
		return false, fmt.Errorf("failed to parse plugin version: %w", err)
	}

	current := mustParse(plugin.ProtocolVersion)
	minimum := mustParse(plugin.MinCompatibleVersion)

	if pv.Major != current.Major {
		return false, fmt.Errorf("incompatible major version: plugin is %s, distil requires %d.x.x", pv, current.Major)
	}
	if pv.Compare(minimum) < 0 {
		return false, fmt.Errorf("plugin version %s is too old, minimum required is %s", pv, minimum)
	}
	return true, nil
}

// GetCurrentVersion returns the current protocol version as a Version struct.
func GetCurrentVersion() Version {
	return mustParse(plugin.ProtocolVersion)
}

func mustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("invalid protocol version constant %q: %v", s, err))
	}
	return v
}

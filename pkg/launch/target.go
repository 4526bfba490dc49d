package launch

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Target identifies a GPU architecture as major*10+minor of its compute
// capability, so compute capability 7.5 is Target 75 (sm_75).
type Target uint32

// Fallback tags the record used when no record names the active target.
const Fallback Target = 0

const (
	SM30 Target = 30
	SM35 Target = 35
	SM37 Target = 37
	SM50 Target = 50
	SM52 Target = 52
	SM53 Target = 53
	SM60 Target = 60
	SM61 Target = 61
	SM62 Target = 62
	SM70 Target = 70
	SM72 Target = 72
	SM75 Target = 75
	SM80 Target = 80
	SM86 Target = 86
	SM87 Target = 87
	SM89 Target = 89
	SM90 Target = 90
)

var knownTargets = map[Target]string{
	SM30: "Kepler",
	SM35: "Kepler",
	SM37: "Kepler",
	SM50: "Maxwell",
	SM52: "Maxwell",
	SM53: "Maxwell",
	SM60: "Pascal",
	SM61: "Pascal",
	SM62: "Pascal",
	SM70: "Volta",
	SM72: "Volta",
	SM75: "Turing",
	SM80: "Ampere",
	SM86: "Ampere",
	SM87: "Ampere",
	SM89: "Ada",
	SM90: "Hopper",
}

// KnownTargets returns the named architectures in ascending order.
func KnownTargets() []Target {
	targets := make([]Target, 0, len(knownTargets))
	for t := range knownTargets {
		targets = append(targets, t)
	}
	slices.Sort(targets)
	return targets
}

// IsFallback reports whether t is the fallback marker.
func (t Target) IsFallback() bool {
	return t == Fallback
}

// Major returns the major compute capability version.
func (t Target) Major() uint32 {
	return uint32(t) / 10
}

// Minor returns the minor compute capability version.
func (t Target) Minor() uint32 {
	return uint32(t) % 10
}

// Family returns the architecture family name, or "" for unnamed targets.
func (t Target) Family() string {
	return knownTargets[t]
}

// Known reports whether t is one of the named architectures.
func (t Target) Known() bool {
	_, ok := knownTargets[t]
	return ok
}

func (t Target) String() string {
	if t.IsFallback() {
		return "fallback"
	}
	return fmt.Sprintf("sm_%d", uint32(t))
}

// ParseTarget parses a target written as "sm_75", "compute_75", "75",
// "7.5" or "fallback". Surrounding whitespace and case are ignored.
func ParseTarget(s string) (Target, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "":
		return 0, fmt.Errorf("empty target")
	case v == "fallback" || v == "default":
		return Fallback, nil
	case strings.HasPrefix(v, "sm_"):
		v = strings.TrimPrefix(v, "sm_")
	case strings.HasPrefix(v, "compute_"):
		v = strings.TrimPrefix(v, "compute_")
	}

	if major, minor, ok := strings.Cut(v, "."); ok {
		ma, err := strconv.ParseUint(major, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid target %q: %w", s, err)
		}
		mi, err := strconv.ParseUint(minor, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid target %q: %w", s, err)
		}
		if mi > 9 {
			return 0, fmt.Errorf("invalid target %q: minor version must be a single digit", s)
		}
		if n := ma*10 + mi; n <= math.MaxUint32 {
			return Target(n), nil
		}
		return 0, fmt.Errorf("invalid target %q: out of range", s)
	}

	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid target %q: %w", s, err)
	}
	return Target(n), nil
}

// MarshalText implements encoding.TextMarshaler.
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Target) UnmarshalText(text []byte) error {
	parsed, err := ParseTarget(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

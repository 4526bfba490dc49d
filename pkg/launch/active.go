package launch

import (
	"errors"
	"fmt"
)

// activeTarget is set at link time:
//
//	go build -ldflags "-X github.com/fxnlabs/launchbox/pkg/launch.activeTarget=sm_75"
var activeTarget string

// ErrNoActiveTarget is returned by ActiveTarget when the binary was linked
// without a target.
var ErrNoActiveTarget = errors.New("no active target linked into binary")

// ActiveTarget returns the architecture the binary was built for.
func ActiveTarget() (Target, error) {
	if activeTarget == "" {
		return 0, ErrNoActiveTarget
	}
	t, err := ParseTarget(activeTarget)
	if err != nil {
		return 0, fmt.Errorf("linked active target: %w", err)
	}
	if t.IsFallback() {
		return 0, fmt.Errorf("linked active target: %q is not an architecture", activeTarget)
	}
	return t, nil
}

// MustActiveTarget is like ActiveTarget but panics on error.
func MustActiveTarget() Target {
	t, err := ActiveTarget()
	if err != nil {
		panic(err)
	}
	return t
}

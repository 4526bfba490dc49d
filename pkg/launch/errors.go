package launch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnresolved matches every *ResolutionError.
	ErrUnresolved = errors.New("no launch params for target")
	// ErrInvalid matches every *ValidationError.
	ErrInvalid = errors.New("invalid launch declaration")
)

// ResolutionError reports a kernel whose box has neither a record for the
// active target nor a fallback record.
type ResolutionError struct {
	Kernel string
	Target Target
	Source string
}

func (e *ResolutionError) Error() string {
	var sb strings.Builder
	if e.Source != "" {
		sb.WriteString(e.Source)
		sb.WriteString(": ")
	}
	fmt.Fprintf(&sb, "kernel %q: no launch params for %s and no fallback declared", e.Kernel, e.Target)
	return sb.String()
}

func (e *ResolutionError) Is(target error) bool {
	return target == ErrUnresolved
}

// ValidationError reports a malformed declaration. Index is the position of
// the offending record, or -1 when the problem concerns the whole box.
type ValidationError struct {
	Kernel string
	Index  int
	Field  string
	Reason string
	Source string
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	if e.Source != "" {
		sb.WriteString(e.Source)
		sb.WriteString(": ")
	}
	fmt.Fprintf(&sb, "kernel %q", e.Kernel)
	if e.Index >= 0 {
		fmt.Fprintf(&sb, ": record %d", e.Index)
	}
	if e.Field != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Field)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Reason)
	return sb.String()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

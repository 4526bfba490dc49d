package launch

import (
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/multierr"
)

// Box is the set of launch configurations declared for one kernel. Records
// keep their declaration order, which decides ties during resolution. A Box
// is immutable once declared.
type Box struct {
	kernel  string
	source  string
	records []Record
}

type options struct {
	strict bool
	source string
}

// Option configures Declare.
type Option func(*options)

// Strict rejects boxes that name the same target twice or declare more than
// one fallback record.
func Strict() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithSource records where the box was declared, for diagnostics.
func WithSource(source string) Option {
	return func(o *options) {
		o.source = source
	}
}

// Declare validates records and returns them as the box for kernel. Every
// problem found is returned, combined into a single error.
func Declare(kernel string, records []Record, opts ...Option) (*Box, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var err error
	if kernel == "" {
		err = multierr.Append(err, &ValidationError{Index: -1, Field: "kernel", Reason: "name must not be empty", Source: o.source})
	} else if strings.ContainsFunc(kernel, unicode.IsControl) {
		err = multierr.Append(err, &ValidationError{Kernel: kernel, Index: -1, Field: "kernel", Reason: "name must not contain control characters", Source: o.source})
	}

	seen := make(map[Target]int, len(records))
	for i, r := range records {
		invalid := func(field, reason string) {
			err = multierr.Append(err, &ValidationError{Kernel: kernel, Index: i, Field: field, Reason: reason, Source: o.source})
		}
		if r.BlockDims == 0 || r.BlockDims > MaxBlockDims {
			invalid("block_dims", fmt.Sprintf("must be between 1 and %d, got %d", MaxBlockDims, r.BlockDims))
		}
		if r.GridDims == 0 {
			invalid("grid_dims", "must be at least 1")
		}
		if first, dup := seen[r.Target]; dup && o.strict {
			if r.IsFallback() {
				invalid("target", fmt.Sprintf("second fallback record, first declared at record %d", first))
			} else {
				invalid("target", fmt.Sprintf("%s already declared at record %d", r.Target, first))
			}
		} else if !dup {
			seen[r.Target] = i
		}
	}
	if err != nil {
		return nil, err
	}

	return &Box{
		kernel:  kernel,
		source:  o.source,
		records: append([]Record(nil), records...),
	}, nil
}

// MustDeclare is like Declare but panics on error.
func MustDeclare(kernel string, records []Record, opts ...Option) *Box {
	b, err := Declare(kernel, records, opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// Kernel returns the name of the kernel the box was declared for.
func (b *Box) Kernel() string {
	if b == nil {
		return ""
	}
	return b.kernel
}

// Source returns where the box was declared, if known.
func (b *Box) Source() string {
	if b == nil {
		return ""
	}
	return b.source
}

// Len returns the number of records in the box.
func (b *Box) Len() int {
	if b == nil {
		return 0
	}
	return len(b.records)
}

// Records returns a copy of the records in declaration order.
func (b *Box) Records() []Record {
	if b == nil {
		return nil
	}
	return append([]Record(nil), b.records...)
}

// HasFallback reports whether the box declares a fallback record.
func (b *Box) HasFallback() bool {
	if b == nil {
		return false
	}
	for _, r := range b.records {
		if r.IsFallback() {
			return true
		}
	}
	return false
}

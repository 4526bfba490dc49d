package launch

// Resolve returns the record of box that applies to active: the first record
// declared for active, else the first fallback record. When neither exists
// it returns a *ResolutionError. A nil box resolves like an empty one.
func Resolve(box *Box, active Target) (Record, error) {
	var kernel, source string
	var records []Record
	if box != nil {
		kernel, source, records = box.kernel, box.source, box.records
	}

	fallback := -1
	for i, r := range records {
		if r.Target == active {
			return r, nil
		}
		if fallback < 0 && r.IsFallback() {
			fallback = i
		}
	}
	if fallback >= 0 {
		return records[fallback], nil
	}
	return Record{}, &ResolutionError{Kernel: kernel, Target: active, Source: source}
}

// Resolve is shorthand for Resolve(b, active).
func (b *Box) Resolve(active Target) (Record, error) {
	return Resolve(b, active)
}

// MustResolve returns the launch params box resolves to for active and
// panics when there are none. Call it from a package-level var so an
// unresolvable kernel stops the process before anything launches.
func MustResolve(box *Box, active Target) Params {
	r, err := Resolve(box, active)
	if err != nil {
		panic(err)
	}
	return r.Params
}

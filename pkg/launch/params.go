package launch

import "fmt"

// MaxBlockDims is the largest number of threads a single block may hold.
const MaxBlockDims = 1024

// Params are the arguments a kernel launch site passes to the device.
// SharedMemoryBytes defaults to zero.
type Params struct {
	BlockDims         uint32 `json:"blockDims"`
	GridDims          uint32 `json:"gridDims"`
	SharedMemoryBytes uint32 `json:"sharedMemoryBytes"`
}

// Threads returns the total number of threads a launch with p starts.
func (p Params) Threads() uint64 {
	return uint64(p.BlockDims) * uint64(p.GridDims)
}

func (p Params) String() string {
	return fmt.Sprintf("<<<%d, %d, %d>>>", p.GridDims, p.BlockDims, p.SharedMemoryBytes)
}

// Record is one launch configuration tagged with the target it applies to.
type Record struct {
	Target Target `json:"target"`
	Params
}

// SM returns a record that applies only to target t.
func SM(t Target, p Params) Record {
	return Record{Target: t, Params: p}
}

// Default returns the fallback record.
func Default(p Params) Record {
	return Record{Target: Fallback, Params: p}
}

// IsFallback reports whether r is a fallback record.
func (r Record) IsFallback() bool {
	return r.Target.IsFallback()
}

func (r Record) String() string {
	return fmt.Sprintf("%s%s", r.Target, r.Params)
}

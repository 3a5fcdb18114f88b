package lacuna

// ScanHook is the interface for sparsity-scan instrumentation.
// The runtime calls these methods while answering Runtime.IsSparse (and the
// Array.isSparse builtin), making the sequence of observable operations
// available to profilers, conformance harnesses and tests.
//
// For convenience, embed BaseScanHook to get no-op implementations
// of all methods, then override only the ones you need.
type ScanHook interface {
	// OnLengthRead is called after the single length read that starts a
	// full scan. length is the value after standard length coercion.
	OnLengthRead(obj *Object, length int64)

	// OnIndexCheck is called after each own property existence check of a
	// full scan, in ascending index order. present reports the outcome.
	// A scan stops at the first check where present is false.
	OnIndexCheck(obj *Object, idx int64, present bool)

	// OnFastPath is called instead of OnLengthRead/OnIndexCheck when the
	// answer came from the representation counters without a scan.
	// dense is true if the array had no holes.
	OnFastPath(obj *Object, dense bool)

	// OnRepresentationChange is called when an array switches between its
	// backing representations. from and to are representation names as
	// reported by the scan profiler ("dense", "sparse").
	OnRepresentationChange(obj *Object, from, to string)
}

// BaseScanHook provides no-op implementations of all ScanHook methods.
// Embed this struct and override only the methods you need.
//
// Example:
//
//	type MyHook struct {
//	    lacuna.BaseScanHook
//	    checks int
//	}
//
//	func (h *MyHook) OnIndexCheck(obj *lacuna.Object, idx int64, present bool) {
//	    h.checks++
//	}
type BaseScanHook struct{}

func (BaseScanHook) OnLengthRead(obj *Object, length int64) {}

func (BaseScanHook) OnIndexCheck(obj *Object, idx int64, present bool) {}

func (BaseScanHook) OnFastPath(obj *Object, dense bool) {}

func (BaseScanHook) OnRepresentationChange(obj *Object, from, to string) {}

package lacuna

var defaultOptions = options{}

type Option interface {
	apply(*options)
}
type options struct {
	scanHook   ScanHook
	noFastPath bool
}
type funcOption struct {
	f func(*options)
}

func (fdo *funcOption) apply(do *options) {
	fdo.f(do)
}
func newFuncOption(f func(*options)) *funcOption {
	return &funcOption{
		f: f,
	}
}

// WithScanHook installs a ScanHook on the Runtime. The hook receives a
// callback for every observable step of a sparsity scan and for array
// representation changes. Only one hook can be installed; the last one wins.
func WithScanHook(hook ScanHook) Option {
	return newFuncOption(func(o *options) {
		o.scanHook = hook
	})
}

// WithoutFastPath disables the O(1) representation-counter answer in
// Runtime.IsSparse and Array.isSparse, forcing a full index-by-index scan
// even for arrays whose backing store already knows the answer. The result
// is unchanged; only the amount of observable work differs. Used by the
// conformance harness to check that both paths agree.
func WithoutFastPath() Option {
	return newFuncOption(func(o *options) {
		o.noFastPath = true
	})
}

package lacuna

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/pprof/profile"
)

type _globalProfiler struct {
	p       scanCollector
	w       io.Writer
	enabled int32
}

var globalProfiler _globalProfiler

var (
	ErrProfilerAlreadyEnabled = errors.New("scan profiler is already enabled")
	ErrProfilerNotEnabled     = errors.New("scan profiler is not enabled")
)

type scanSample struct {
	scans  int64
	checks int64
}

type scanCollector struct {
	mu      sync.Mutex
	running bool
	start   time.Time
	samples map[string]*scanSample
}

func (p *scanCollector) record(repr string, checks int64) {
	p.mu.Lock()
	if !p.running {
		p.running = true
		p.start = time.Now()
		p.samples = make(map[string]*scanSample)
	}
	s := p.samples[repr]
	if s == nil {
		s = &scanSample{}
		p.samples[repr] = s
	}
	s.scans++
	s.checks += checks
	p.mu.Unlock()
}

func (p *scanCollector) stop() *profile.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()

	pr := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "scans", Unit: "count"},
			{Type: "checks", Unit: "count"},
		},
		PeriodType: &profile.ValueType{Type: "scans", Unit: "count"},
		Period:     1,
	}
	if p.running {
		pr.TimeNanos = p.start.UnixNano()
		pr.DurationNanos = time.Since(p.start).Nanoseconds()
	}

	id := uint64(1)
	for repr, s := range p.samples {
		fn := &profile.Function{
			ID:         id,
			Name:       "lacuna.isSparse." + repr,
			SystemName: "lacuna.isSparse." + repr,
		}
		loc := &profile.Location{
			ID:   id,
			Line: []profile.Line{{Function: fn}},
		}
		id++
		pr.Function = append(pr.Function, fn)
		pr.Location = append(pr.Location, loc)
		pr.Sample = append(pr.Sample, &profile.Sample{
			Location: []*profile.Location{loc},
			Value:    []int64{s.scans, s.checks},
		})
	}

	p.running = false
	p.samples = nil

	return pr
}

// recordScan feeds one finished sparsity query into the global profiler.
// Every isSparse records exactly one sample, fast path answers included
// (with zero checks). Must stay cheap when the profiler is off.
func recordScan(repr string, checks int64) {
	if atomic.LoadInt32(&globalProfiler.enabled) == 0 {
		return
	}
	globalProfiler.p.record(repr, checks)
}

// StartScanProfile enables collection of sparsity scan counts across all
// Runtimes. The profile is written to w in pprof format by StopScanProfile.
// Samples are keyed by array representation under synthetic function names
// of the form lacuna.isSparse.<repr>, with two values per sample: the number
// of queries answered and the number of per-index checks performed.
//
// An error is returned if the profiler is already enabled.
func StartScanProfile(w io.Writer) error {
	if !atomic.CompareAndSwapInt32(&globalProfiler.enabled, 0, 1) {
		return ErrProfilerAlreadyEnabled
	}
	globalProfiler.w = w
	return nil
}

// StopScanProfile stops the collection started by StartScanProfile and
// writes out the profile. An error is returned if the profiler is not
// currently enabled.
func StopScanProfile() error {
	if !atomic.CompareAndSwapInt32(&globalProfiler.enabled, 1, 0) {
		return ErrProfilerNotEnabled
	}
	pr := globalProfiler.p.stop()
	var err error
	if globalProfiler.w != nil {
		err = pr.Write(globalProfiler.w)
		globalProfiler.w = nil
	}
	return err
}

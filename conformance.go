package lacuna

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// ConformanceFixture is a parsed fixture file: a named set of sparsity
// vectors, optionally gated on a library version range.
type ConformanceFixture struct {
	Name     string               `yaml:"name"`
	Requires string               `yaml:"requires,omitempty"`
	Vectors  []*ConformanceVector `yaml:"vectors"`
}

// ConformanceVector pairs a constructed value with the expected outcome of a
// sparsity query.
type ConformanceVector struct {
	Name   string        `yaml:"name"`
	Value  *FixtureValue `yaml:"value"`
	Sparse bool          `yaml:"sparse"`

	// Error marks vectors whose query must fail, e.g. revoked proxies.
	Error bool `yaml:"error,omitempty"`

	// Checks, if set, is the exact number of index checks the forced scan
	// must perform before reaching its answer.
	Checks *int64 `yaml:"checks,omitempty"`
}

// FixtureValue describes how to build one value. Kind selects the shape:
//
//	scalar    the Scalar field converted with ToValue
//	array     a real array; a YAML null element is a missing index, Assign
//	          sets further indices, Length then extends or truncates
//	arraylike a plain object with index properties and a length property
//	goslice   a wrapped Go slice; null elements read as missing indices
//	dynarray  a virtualized array backed by a DynamicArray handler
//	proxy     a proxy around Target, optionally revoked before the query
type FixtureValue struct {
	Kind     string          `yaml:"kind"`
	Scalar   interface{}     `yaml:"scalar,omitempty"`
	Elements []interface{}   `yaml:"elements,omitempty"`
	Length   *int64          `yaml:"length,omitempty"`
	Assign   []FixtureAssign `yaml:"assign,omitempty"`
	Target   *FixtureValue   `yaml:"target,omitempty"`
	Revoked  bool            `yaml:"revoked,omitempty"`
}

// FixtureAssign is a single index assignment applied after construction.
// Assigning far beyond the current length is how fixtures force the switch
// to the sparse representation.
type FixtureAssign struct {
	Index int64       `yaml:"index"`
	Value interface{} `yaml:"value"`
}

// Build constructs the described value on r.
func (fv *FixtureValue) Build(r *Runtime) (Value, error) {
	if fv == nil {
		return _undefined, nil
	}
	switch fv.Kind {
	case "undefined":
		return _undefined, nil
	case "null":
		return _null, nil
	case "scalar":
		return r.ToValue(fv.Scalar), nil
	case "array":
		values := make([]Value, len(fv.Elements))
		for i, el := range fv.Elements {
			if el == nil {
				continue
			}
			values[i] = r.ToValue(el)
		}
		obj := r.newArrayValues(values)
		for _, as := range fv.Assign {
			if err := obj.Set(strconv.FormatInt(as.Index, 10), as.Value); err != nil {
				return nil, err
			}
		}
		if fv.Length != nil {
			if err := obj.Set("length", intToValue(*fv.Length)); err != nil {
				return nil, err
			}
		}
		return obj, nil
	case "arraylike":
		obj := r.NewObject()
		for i, el := range fv.Elements {
			if el == nil {
				continue
			}
			if err := obj.Set(strconv.Itoa(i), el); err != nil {
				return nil, err
			}
		}
		l := int64(len(fv.Elements))
		if fv.Length != nil {
			l = *fv.Length
		}
		if err := obj.Set("length", intToValue(l)); err != nil {
			return nil, err
		}
		return obj, nil
	case "goslice":
		data := make([]interface{}, len(fv.Elements))
		copy(data, fv.Elements)
		return r.ToValue(data), nil
	case "dynarray":
		items := make([]Value, len(fv.Elements))
		for i, el := range fv.Elements {
			if el == nil {
				items[i] = _undefined
			} else {
				items[i] = r.ToValue(el)
			}
		}
		return r.NewDynamicArray(&fixtureDynArray{items: items}), nil
	case "proxy":
		if fv.Target == nil {
			return nil, fmt.Errorf("proxy fixture value requires a target")
		}
		tv, err := fv.Target.Build(r)
		if err != nil {
			return nil, err
		}
		target, ok := tv.(*Object)
		if !ok {
			return nil, fmt.Errorf("proxy target must build an object, got %v", tv)
		}
		p := r.NewProxy(target, &ProxyTrapConfig{})
		if fv.Revoked {
			p.Revoke()
		}
		return r.ToValue(p), nil
	}
	return nil, fmt.Errorf("unknown fixture value kind %q", fv.Kind)
}

// fixtureDynArray backs dynarray fixture values. Like any virtualized array
// it has no holes; out of range reads yield undefined.
type fixtureDynArray struct {
	items []Value
}

func (a *fixtureDynArray) Len() int {
	return len(a.items)
}

func (a *fixtureDynArray) Get(idx int) Value {
	if idx >= 0 && idx < len(a.items) {
		return nilSafe(a.items[idx])
	}
	return _undefined
}

func (a *fixtureDynArray) Set(idx int, val Value) bool {
	if idx < 0 {
		return false
	}
	for idx >= len(a.items) {
		a.items = append(a.items, _undefined)
	}
	a.items[idx] = val
	return true
}

func (a *fixtureDynArray) SetLen(n int) bool {
	if n < 0 {
		return false
	}
	for n > len(a.items) {
		a.items = append(a.items, _undefined)
	}
	a.items = a.items[:n]
	return true
}

// LoadFixture reads and parses a single conformance fixture file. A fixture
// without an explicit name is named after the file.
func LoadFixture(path string) (*ConformanceFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f ConformanceFixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &f, nil
}

// LoadFixtureDir loads every *.yaml file in dir, sorted by file name.
func LoadFixtureDir(dir string) ([]*ConformanceFixture, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	fixtures := make([]*ConformanceFixture, 0, len(paths))
	for _, p := range paths {
		f, err := LoadFixture(p)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

// Applicable reports whether the fixture's version constraint, if any,
// matches the given library version.
func (f *ConformanceFixture) Applicable(version string) (bool, error) {
	if f.Requires == "" {
		return true, nil
	}
	c, err := semver.NewConstraint(f.Requires)
	if err != nil {
		return false, fmt.Errorf("fixture %s: invalid requires %q: %w", f.Name, f.Requires, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, err
	}
	return c.Check(v), nil
}

// countingScanHook tallies scan activity for the Checks assertion.
type countingScanHook struct {
	BaseScanHook
	lengthReads int
	checks      int64
	fastPaths   int
}

func (h *countingScanHook) OnLengthRead(obj *Object, length int64) {
	h.lengthReads++
}

func (h *countingScanHook) OnIndexCheck(obj *Object, idx int64, present bool) {
	h.checks++
}

func (h *countingScanHook) OnFastPath(obj *Object, dense bool) {
	h.fastPaths++
}

// Check runs the vector twice, once on a runtime with the representation
// fast path and once with a forced scan, and verifies both answers against
// the expectation and against each other. The forced scan must read length
// at most once, and must perform exactly Checks index checks when that
// field is set.
func (vec *ConformanceVector) Check() error {
	fastSparse, fastErr := vec.query(New())

	hook := &countingScanHook{}
	slowSparse, slowErr := vec.query(New(WithoutFastPath(), WithScanHook(hook)))

	if vec.Error {
		if fastErr == nil || slowErr == nil {
			return fmt.Errorf("%s: expected the query to fail (fast path err %v, scan err %v)", vec.Name, fastErr, slowErr)
		}
		return nil
	}
	if fastErr != nil {
		return fmt.Errorf("%s: %w", vec.Name, fastErr)
	}
	if slowErr != nil {
		return fmt.Errorf("%s (forced scan): %w", vec.Name, slowErr)
	}
	if fastSparse != vec.Sparse {
		return fmt.Errorf("%s: got %v, expected %v", vec.Name, fastSparse, vec.Sparse)
	}
	if slowSparse != fastSparse {
		return fmt.Errorf("%s: fast path answered %v but the forced scan answered %v", vec.Name, fastSparse, slowSparse)
	}
	if hook.lengthReads > 1 {
		return fmt.Errorf("%s: length was read %d times during a single scan", vec.Name, hook.lengthReads)
	}
	if hook.fastPaths != 0 {
		return fmt.Errorf("%s: the fast path fired %d times despite being disabled", vec.Name, hook.fastPaths)
	}
	if vec.Checks != nil && hook.checks != *vec.Checks {
		return fmt.Errorf("%s: scan performed %d index checks, expected %d", vec.Name, hook.checks, *vec.Checks)
	}
	return nil
}

func (vec *ConformanceVector) query(r *Runtime) (bool, error) {
	v, err := vec.Value.Build(r)
	if err != nil {
		return false, err
	}
	return r.IsSparse(v)
}

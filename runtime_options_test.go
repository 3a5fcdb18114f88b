package lacuna_test

import (
	"testing"

	"github.com/lacunajs/lacuna"
)

type fixedArray struct {
	items []lacuna.Value
}

func (a *fixedArray) Len() int {
	return len(a.items)
}

func (a *fixedArray) Get(idx int) lacuna.Value {
	if idx >= 0 && idx < len(a.items) {
		return a.items[idx]
	}
	return nil
}

// TestWithoutFastPathAgreement builds an array in every representation and
// checks that the counter-based answer and the full scan agree.
func TestWithoutFastPathAgreement(t *testing.T) {
	cases := []struct {
		name  string
		build func(t *testing.T, vm *lacuna.Runtime) lacuna.Value
		want  bool
	}{
		{"dense", func(t *testing.T, vm *lacuna.Runtime) lacuna.Value {
			return vm.NewArray(1, 2, 3)
		}, false},
		{"dense with hole", func(t *testing.T, vm *lacuna.Runtime) lacuna.Value {
			a := vm.NewArray(1, 2, 3)
			if err := a.Delete("1"); err != nil {
				t.Fatal(err)
			}
			return a
		}, true},
		{"far index", func(t *testing.T, vm *lacuna.Runtime) lacuna.Value {
			a := vm.NewArray()
			if err := a.Set("100000", 1); err != nil {
				t.Fatal(err)
			}
			return a
		}, true},
		{"truncated", func(t *testing.T, vm *lacuna.Runtime) lacuna.Value {
			a := vm.NewArray()
			if err := a.Set("100000", 1); err != nil {
				t.Fatal(err)
			}
			if err := a.Set("length", 0); err != nil {
				t.Fatal(err)
			}
			return a
		}, false},
		{"go slice", func(t *testing.T, vm *lacuna.Runtime) lacuna.Value {
			return vm.ToValue([]interface{}{1, nil, 3})
		}, true},
		{"go slice full", func(t *testing.T, vm *lacuna.Runtime) lacuna.Value {
			return vm.ToValue([]interface{}{1, 2, 3})
		}, false},
		{"readonly array", func(t *testing.T, vm *lacuna.Runtime) lacuna.Value {
			return vm.NewReadonlyArray(&fixedArray{items: []lacuna.Value{nil, nil}})
		}, false},
		{"proxy", func(t *testing.T, vm *lacuna.Runtime) lacuna.Value {
			a := vm.NewArray(1, 2, 3)
			if err := a.Delete("0"); err != nil {
				t.Fatal(err)
			}
			return vm.ToValue(vm.NewProxy(a, &lacuna.ProxyTrapConfig{}))
		}, true},
		{"non-array", func(t *testing.T, vm *lacuna.Runtime) lacuna.Value {
			return vm.NewObject()
		}, false},
		{"primitive", func(t *testing.T, vm *lacuna.Runtime) lacuna.Value {
			return vm.ToValue(42)
		}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fast := lacuna.New()
			if got, err := fast.IsSparse(tc.build(t, fast)); err != nil || got != tc.want {
				t.Fatalf("fast path: got %v, err %v, want %v", got, err, tc.want)
			}
			slow := lacuna.New(lacuna.WithoutFastPath())
			if got, err := slow.IsSparse(tc.build(t, slow)); err != nil || got != tc.want {
				t.Fatalf("full scan: got %v, err %v, want %v", got, err, tc.want)
			}
		})
	}
}

func TestWithScanHookOption(t *testing.T) {
	var length int64
	hook := &lengthHook{length: &length}
	vm := lacuna.New(lacuna.WithScanHook(hook), lacuna.WithoutFastPath())
	if _, err := vm.IsSparse(vm.NewArray(1, 2)); err != nil {
		t.Fatal(err)
	}
	if length != 2 {
		t.Fatalf("length: %d", length)
	}
}

type lengthHook struct {
	lacuna.BaseScanHook
	length *int64
}

func (h *lengthHook) OnLengthRead(obj *lacuna.Object, length int64) {
	*h.length = length
}

package lacuna

import (
	"fmt"
	"reflect"
	"strconv"
	"testing"
)

// recordingHook captures every scan callback as a formatted line.
type recordingHook struct {
	events []string
}

func (h *recordingHook) OnLengthRead(obj *Object, length int64) {
	h.events = append(h.events, fmt.Sprintf("length %d", length))
}

func (h *recordingHook) OnIndexCheck(obj *Object, idx int64, present bool) {
	h.events = append(h.events, fmt.Sprintf("check %d %t", idx, present))
}

func (h *recordingHook) OnFastPath(obj *Object, dense bool) {
	h.events = append(h.events, fmt.Sprintf("fast dense=%t", dense))
}

func (h *recordingHook) OnRepresentationChange(obj *Object, from, to string) {
	h.events = append(h.events, fmt.Sprintf("repr %s->%s", from, to))
}

func (h *recordingHook) take() []string {
	ev := h.events
	h.events = nil
	return ev
}

func TestScanHookFastPath(t *testing.T) {
	h := &recordingHook{}
	vm := New(WithScanHook(h))

	a := vm.NewArray(1, 2, 3)
	if sparse, err := vm.IsSparse(a); err != nil || sparse {
		t.Fatalf("sparse: %v, err: %v", sparse, err)
	}
	if ev := h.take(); !reflect.DeepEqual(ev, []string{"fast dense=true"}) {
		t.Fatalf("events: %v", ev)
	}

	if err := a.Delete("1"); err != nil {
		t.Fatal(err)
	}
	if sparse, err := vm.IsSparse(a); err != nil || !sparse {
		t.Fatalf("sparse: %v, err: %v", sparse, err)
	}
	if ev := h.take(); !reflect.DeepEqual(ev, []string{"fast dense=false"}) {
		t.Fatalf("events: %v", ev)
	}
}

func TestScanHookFullScan(t *testing.T) {
	h := &recordingHook{}
	vm := New(WithScanHook(h), WithoutFastPath())

	a := vm.NewArray(1, 2, 3)
	if sparse, err := vm.IsSparse(a); err != nil || sparse {
		t.Fatalf("sparse: %v, err: %v", sparse, err)
	}
	want := []string{"length 3", "check 0 true", "check 1 true", "check 2 true"}
	if ev := h.take(); !reflect.DeepEqual(ev, want) {
		t.Fatalf("events: %v", ev)
	}

	// The scan stops at the first hole.
	if err := a.Delete("1"); err != nil {
		t.Fatal(err)
	}
	if sparse, err := vm.IsSparse(a); err != nil || !sparse {
		t.Fatalf("sparse: %v, err: %v", sparse, err)
	}
	want = []string{"length 3", "check 0 true", "check 1 false"}
	if ev := h.take(); !reflect.DeepEqual(ev, want) {
		t.Fatalf("events: %v", ev)
	}

	// Non-arrays are rejected before the length read.
	if sparse, err := vm.IsSparse(vm.NewObject()); err != nil || sparse {
		t.Fatalf("sparse: %v, err: %v", sparse, err)
	}
	if ev := h.take(); len(ev) != 0 {
		t.Fatalf("events: %v", ev)
	}
}

func TestScanHookProxy(t *testing.T) {
	h := &recordingHook{}
	vm := New(WithScanHook(h))

	target := vm.NewArray(1, 2)
	p := vm.NewProxy(target, &ProxyTrapConfig{})
	obj := vm.ToValue(p).(*Object)

	// Proxies are never answered from representation counters.
	if sparse, err := vm.IsSparse(obj); err != nil || sparse {
		t.Fatalf("sparse: %v, err: %v", sparse, err)
	}
	want := []string{"length 2", "check 0 true", "check 1 true"}
	if ev := h.take(); !reflect.DeepEqual(ev, want) {
		t.Fatalf("events: %v", ev)
	}
}

func TestScanHookRepresentationChange(t *testing.T) {
	h := &recordingHook{}
	vm := New(WithScanHook(h))

	a := vm.NewArray()
	// A write far beyond the occupied range abandons the dense backing.
	if err := a.Set("5000", 1); err != nil {
		t.Fatal(err)
	}
	if ev := h.take(); !reflect.DeepEqual(ev, []string{"repr dense->sparse"}) {
		t.Fatalf("events: %v", ev)
	}
	if _, ok := a.self.(*sparseArrayObject); !ok {
		t.Fatalf("unexpected representation: %T", a.self)
	}

	// Filling in the low indices makes the item list dense enough to switch
	// back.
	for i := 0; i <= 1023; i++ {
		if err := a.Set(strconv.Itoa(i), i); err != nil {
			t.Fatal(err)
		}
	}
	if ev := h.take(); !reflect.DeepEqual(ev, []string{"repr sparse->dense"}) {
		t.Fatalf("events: %v", ev)
	}
	if _, ok := a.self.(*arrayObject); !ok {
		t.Fatalf("unexpected representation: %T", a.self)
	}

	// Indices 1024 to 4999 are still missing.
	if sparse, err := vm.IsSparse(a); err != nil || !sparse {
		t.Fatalf("sparse: %v, err: %v", sparse, err)
	}
	if ev := h.take(); !reflect.DeepEqual(ev, []string{"fast dense=false"}) {
		t.Fatalf("events: %v", ev)
	}
}

func TestScanHookBaseEmbedding(t *testing.T) {
	hook := &indexCountHook{}
	vm := New(WithScanHook(hook), WithoutFastPath())
	if sparse, err := vm.IsSparse(vm.NewArray(1, 2, 3)); err != nil || sparse {
		t.Fatalf("sparse: %v, err: %v", sparse, err)
	}
	if hook.checks != 3 {
		t.Fatalf("checks: %d", hook.checks)
	}
}

type indexCountHook struct {
	BaseScanHook
	checks int
}

func (h *indexCountHook) OnIndexCheck(obj *Object, idx int64, present bool) {
	h.checks++
}

package lacuna

import (
	"sort"
	"testing"
)

type testDynObject struct {
	m map[string]Value
}

func (t *testDynObject) Get(key string) Value {
	return t.m[key]
}

func (t *testDynObject) Set(key string, val Value) bool {
	t.m[key] = val
	return true
}

func (t *testDynObject) Has(key string) bool {
	_, exists := t.m[key]
	return exists
}

func (t *testDynObject) Delete(key string) bool {
	delete(t.m, key)
	return true
}

func (t *testDynObject) Keys() []string {
	keys := make([]string, 0, len(t.m))
	for k := range t.m {
		keys = append(keys, k)
	}
	return keys
}

type testDynArray struct {
	a []Value
}

func (t *testDynArray) Len() int {
	return len(t.a)
}

func (t *testDynArray) Get(idx int) Value {
	if idx < 0 {
		idx += len(t.a)
	}
	if idx >= 0 && idx < len(t.a) {
		return t.a[idx]
	}
	return nil
}

func (t *testDynArray) expand(newLen int) {
	if newLen > cap(t.a) {
		a := make([]Value, newLen)
		copy(a, t.a)
		t.a = a
	} else {
		t.a = t.a[:newLen]
	}
}

func (t *testDynArray) Set(idx int, val Value) bool {
	if idx < 0 {
		idx += len(t.a)
	}
	if idx < 0 {
		return false
	}
	if idx >= len(t.a) {
		t.expand(idx + 1)
	}
	t.a[idx] = val
	return true
}

func (t *testDynArray) SetLen(i int) bool {
	if i > len(t.a) {
		t.expand(i)
		return true
	}
	if i < 0 {
		return false
	}
	if i < len(t.a) {
		tail := t.a[i:len(t.a)]
		for j := range tail {
			tail[j] = nil
		}
		t.a = t.a[:i]
	}
	return true
}

func TestDynamicObject(t *testing.T) {
	vm := New()
	h := &testDynObject{
		m: make(map[string]Value),
	}
	o := vm.NewDynamicObject(h)

	if err := o.Set("test", 42); err != nil {
		t.Fatal(err)
	}
	if _, exists := h.m["test"]; !exists {
		t.Fatal("value did not reach the handler")
	}
	if v := o.Get("test").ToInteger(); v != 42 {
		t.Fatalf("unexpected value: %d", v)
	}
	if !o.self.hasOwnPropertyStr("test") {
		t.Fatal("property not reported")
	}
	if o.self.hasOwnPropertyStr("missing") {
		t.Fatal("missing property reported")
	}

	if err := o.Set("second", 1); err != nil {
		t.Fatal(err)
	}
	keys := o.Keys()
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "second" || keys[1] != "test" {
		t.Fatalf("keys: %v", keys)
	}

	if err := o.Delete("test"); err != nil {
		t.Fatal(err)
	}
	if _, exists := h.m["test"]; exists {
		t.Fatal("value not deleted from the handler")
	}

	// Properties are always writable, enumerable and configurable; defining
	// anything else must fail.
	if err := o.DefineDataProperty("third", intToValue(3), FLAG_NOT_SET, FLAG_NOT_SET, FLAG_NOT_SET); err != nil {
		t.Fatal(err)
	}
	if err := o.DefineDataProperty("bad", intToValue(0), FLAG_FALSE, FLAG_NOT_SET, FLAG_NOT_SET); err == nil {
		t.Fatal("1: expected TypeError")
	}
	getter := vm.newNativeFunc(func(FunctionCall) Value {
		return intToValue(1)
	}, nil, "get", nil, 0)
	if err := o.DefineAccessorProperty("acc", getter, nil, FLAG_TRUE, FLAG_TRUE); err == nil {
		t.Fatal("2: expected TypeError")
	}

	if cls := o.ClassName(); cls != "Object" {
		t.Fatalf("className: %s", cls)
	}
	if exported := o.Export(); exported != h {
		t.Fatalf("export: %v", exported)
	}
}

func TestDynamicObjectPrototype(t *testing.T) {
	vm := New()
	h := &testDynObject{
		m: make(map[string]Value),
	}
	o := vm.NewDynamicObject(h)

	if proto := o.Prototype(); proto != vm.global.ObjectPrototype {
		t.Fatal("initial prototype is not Object.prototype")
	}

	parent := vm.NewObject()
	if err := parent.Set("inherited", 7); err != nil {
		t.Fatal(err)
	}
	if err := o.SetPrototype(parent); err != nil {
		t.Fatal(err)
	}
	if v := o.Get("inherited").ToInteger(); v != 7 {
		t.Fatalf("unexpected value: %d", v)
	}
	if o.self.hasOwnPropertyStr("inherited") {
		t.Fatal("inherited property reported as own")
	}

	// Assignment shadows the inherited property in the handler.
	if err := o.Set("inherited", 8); err != nil {
		t.Fatal(err)
	}
	if v, exists := h.m["inherited"]; !exists || v.ToInteger() != 8 {
		t.Fatalf("handler value: %v", v)
	}
	if v := parent.Get("inherited").ToInteger(); v != 7 {
		t.Fatalf("parent value changed: %d", v)
	}
}

func TestDynamicArray(t *testing.T) {
	vm := New()
	h := &testDynArray{}
	a := vm.NewDynamicArray(h)

	if cls := a.ClassName(); cls != "Array" {
		t.Fatalf("className: %s", cls)
	}
	if sparse, err := vm.IsSparse(a); err != nil || sparse {
		t.Fatalf("1: sparse: %v, err: %v", sparse, err)
	}

	if err := a.Set("0", 1); err != nil {
		t.Fatal(err)
	}
	if v := a.Get("length").ToInteger(); v != 1 {
		t.Fatalf("length: %d", v)
	}

	// Writing beyond the current length grows the handler with zeroed
	// elements. The gap still reads back as present, so the array is never
	// sparse.
	if err := a.Set("3", 4); err != nil {
		t.Fatal(err)
	}
	if v := a.Get("length").ToInteger(); v != 4 {
		t.Fatalf("length after grow: %d", v)
	}
	if !a.self.hasOwnPropertyStr("1") {
		t.Fatal("zeroed element not reported")
	}
	if v := a.Get("1"); v != nil {
		t.Fatalf("zeroed element value: %v", v)
	}
	if sparse, err := vm.IsSparse(a); err != nil || sparse {
		t.Fatalf("2: sparse: %v, err: %v", sparse, err)
	}

	// The same writes on a regular array do produce holes.
	ref := vm.NewArray()
	if err := ref.Set("0", 1); err != nil {
		t.Fatal(err)
	}
	if err := ref.Set("3", 4); err != nil {
		t.Fatal(err)
	}
	if sparse, err := vm.IsSparse(ref); err != nil || !sparse {
		t.Fatalf("3: sparse: %v, err: %v", sparse, err)
	}

	// Negative indices are passed through to the handler, which counts them
	// from the end.
	if v := a.Get("-1").ToInteger(); v != 4 {
		t.Fatalf("negative index: %d", v)
	}

	keys := a.Keys()
	if len(keys) != 4 || keys[0] != "0" || keys[3] != "3" {
		t.Fatalf("keys: %v", keys)
	}

	if err := a.Set("length", 6); err != nil {
		t.Fatal(err)
	}
	if l := h.Len(); l != 6 {
		t.Fatalf("handler length: %d", l)
	}
	if sparse, err := vm.IsSparse(a); err != nil || sparse {
		t.Fatalf("4: sparse: %v, err: %v", sparse, err)
	}
	if err := a.Set("length", 2); err != nil {
		t.Fatal(err)
	}
	if l := h.Len(); l != 2 {
		t.Fatalf("handler length after shrink: %d", l)
	}

	// Deleting an existing index merely stores undefined; the index remains
	// present.
	if err := a.Delete("0"); err != nil {
		t.Fatal(err)
	}
	if !a.self.hasOwnPropertyStr("0") {
		t.Fatal("deleted element no longer reported")
	}
	if v := a.Get("0"); v != _undefined {
		t.Fatalf("deleted element value: %v", v)
	}
	if sparse, err := vm.IsSparse(a); err != nil || sparse {
		t.Fatalf("5: sparse: %v, err: %v", sparse, err)
	}

	if exported := a.Export(); exported != h {
		t.Fatalf("export: %v", exported)
	}
}

type testROArray struct {
	a []Value
}

func (t *testROArray) Len() int {
	return len(t.a)
}

func (t *testROArray) Get(idx int) Value {
	if idx >= 0 && idx < len(t.a) {
		return t.a[idx]
	}
	return nil
}

func TestReadonlyObject(t *testing.T) {
	vm := New()
	h := &testDynObject{
		m: map[string]Value{"answer": intToValue(42)},
	}
	o := vm.NewReadonlyObject(h)

	if v := o.Get("answer").ToInteger(); v != 42 {
		t.Fatalf("unexpected value: %d", v)
	}
	if keys := o.Keys(); len(keys) != 1 || keys[0] != "answer" {
		t.Fatalf("keys: %v", keys)
	}

	// Writes must fail even though the handler could accept them.
	if err := o.Set("answer", 1); err == nil {
		t.Fatal("1: expected TypeError")
	}
	if err := o.Set("new", 1); err == nil {
		t.Fatal("2: expected TypeError")
	}
	if err := o.Delete("answer"); err == nil {
		t.Fatal("3: expected TypeError")
	}
	if err := o.Delete("missing"); err != nil {
		t.Fatal(err)
	}
	if err := o.DefineDataProperty("answer", intToValue(1), FLAG_NOT_SET, FLAG_NOT_SET, FLAG_NOT_SET); err == nil {
		t.Fatal("4: expected TypeError")
	}
	if v := o.Get("answer").ToInteger(); v != 42 {
		t.Fatalf("value changed: %d", v)
	}

	prop, ok := o.self.getOwnPropStr("answer").(*valueProperty)
	if !ok {
		t.Fatal("own property is not a descriptor")
	}
	if prop.writable || prop.configurable || !prop.enumerable {
		t.Fatalf("descriptor flags: %+v", prop)
	}

	// Two wrappers over the same handler are strictly equal.
	if !o.StrictEquals(vm.NewReadonlyObject(h)) {
		t.Fatal("wrappers not equal")
	}
	if o.StrictEquals(vm.NewDynamicObject(h)) {
		t.Fatal("readonly wrapper equal to dynamic wrapper")
	}

	if !o.self.isExtensible() {
		t.Fatal("not extensible")
	}
	if o.self.preventExtensions(false) {
		t.Fatal("preventExtensions succeeded")
	}
}

func TestReadonlyObjectPrototypeShadowing(t *testing.T) {
	vm := New()
	h := &testDynObject{
		m: map[string]Value{"x": intToValue(1)},
	}

	// A readonly prototype property cannot be shadowed by assignment.
	child := vm.NewObject()
	if err := child.SetPrototype(vm.NewReadonlyObject(h)); err != nil {
		t.Fatal(err)
	}
	if err := child.Set("x", 2); err == nil {
		t.Fatal("expected TypeError")
	}
	if child.self.hasOwnPropertyStr("x") {
		t.Fatal("own property created")
	}

	// A dynamic prototype property can.
	child2 := vm.NewObject()
	if err := child2.SetPrototype(vm.NewDynamicObject(h)); err != nil {
		t.Fatal(err)
	}
	if err := child2.Set("x", 2); err != nil {
		t.Fatal(err)
	}
	if !child2.self.hasOwnPropertyStr("x") {
		t.Fatal("own property not created")
	}
	if v := h.m["x"].ToInteger(); v != 1 {
		t.Fatalf("handler value changed: %d", v)
	}
}

func TestReadonlyArray(t *testing.T) {
	vm := New()
	h := &testROArray{
		a: []Value{intToValue(1), intToValue(2), intToValue(3)},
	}
	a := vm.NewReadonlyArray(h)

	if cls := a.ClassName(); cls != "Array" {
		t.Fatalf("className: %s", cls)
	}
	if v := a.Get("length").ToInteger(); v != 3 {
		t.Fatalf("length: %d", v)
	}
	if v := a.Get("1").ToInteger(); v != 2 {
		t.Fatalf("unexpected value: %d", v)
	}
	if keys := a.Keys(); len(keys) != 3 || keys[0] != "0" || keys[2] != "2" {
		t.Fatalf("keys: %v", keys)
	}
	if sparse, err := vm.IsSparse(a); err != nil || sparse {
		t.Fatalf("sparse: %v, err: %v", sparse, err)
	}

	if err := a.Set("1", 5); err == nil {
		t.Fatal("1: expected TypeError")
	}
	if err := a.Set("length", 0); err == nil {
		t.Fatal("2: expected TypeError")
	}
	if err := a.Delete("1"); err == nil {
		t.Fatal("3: expected TypeError")
	}
	if err := a.Delete("99"); err != nil {
		t.Fatal(err)
	}
	if err := a.DefineDataProperty("1", intToValue(5), FLAG_NOT_SET, FLAG_NOT_SET, FLAG_NOT_SET); err == nil {
		t.Fatal("4: expected TypeError")
	}
	if v := a.Get("1").ToInteger(); v != 2 {
		t.Fatalf("value changed: %d", v)
	}

	length, ok := a.self.getOwnPropStr("length").(*valueProperty)
	if !ok {
		t.Fatal("length is not a descriptor")
	}
	if length.writable {
		t.Fatal("length reported as writable")
	}

	if exported := a.Export(); exported != h {
		t.Fatalf("export: %v", exported)
	}
}

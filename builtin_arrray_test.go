package lacuna

import "testing"

func callable(t *testing.T, v Value) func(FunctionCall) Value {
	t.Helper()
	obj, ok := v.(*Object)
	if !ok {
		t.Fatalf("not an object: %v", v)
	}
	f, ok := obj.self.assertCallable()
	if !ok {
		t.Fatalf("not callable: %v", v)
	}
	return f
}

func TestArrayConstructor(t *testing.T) {
	vm := New()
	ctor := getConstructor(vm.Get("Array").(*Object))

	a := ctor([]Value{intToValue(5)})
	if l := a.Get("length").ToInteger(); l != 5 {
		t.Fatalf("1: invalid length: %d", l)
	}
	if sparse, err := vm.IsSparse(a); err != nil || !sparse {
		t.Fatalf("2: sparse: %v, %v", sparse, err)
	}

	a = ctor([]Value{intToValue(1), intToValue(2), intToValue(3)})
	if l := a.Get("length").ToInteger(); l != 3 {
		t.Fatalf("3: invalid length: %d", l)
	}
	if sparse, err := vm.IsSparse(a); err != nil || sparse {
		t.Fatalf("4: sparse: %v, %v", sparse, err)
	}
	if v := a.Get("1").ToInteger(); v != 2 {
		t.Fatalf("5: invalid value: %d", v)
	}

	// A single non-numeric argument is an element, not a length.
	a = ctor([]Value{newStringValue("5")})
	if l := a.Get("length").ToInteger(); l != 1 {
		t.Fatalf("6: invalid length: %d", l)
	}
	if v := a.Get("0").String(); v != "5" {
		t.Fatalf("7: invalid value: %s", v)
	}

	a = ctor([]Value{valueFloat(3)})
	if l := a.Get("length").ToInteger(); l != 3 {
		t.Fatalf("8: invalid length: %d", l)
	}
}

func TestArrayConstructorInvalidLength(t *testing.T) {
	vm := New()
	ctor := getConstructor(vm.Get("Array").(*Object))
	ex := vm.try(func() {
		ctor([]Value{valueFloat(2.5)})
	})
	if ex == nil {
		t.Fatal("expected RangeError")
	}
	if name := ex.Value().(*Object).Get("name").String(); name != "RangeError" {
		t.Fatalf("invalid error: %s", name)
	}
}

func TestArrayIsArrayBuiltin(t *testing.T) {
	vm := New()
	f := callable(t, vm.Get("Array").(*Object).Get("isArray"))

	if v := f(FunctionCall{Arguments: []Value{vm.NewArray(1)}}); v != valueTrue {
		t.Fatalf("1: %v", v)
	}
	if v := f(FunctionCall{Arguments: []Value{vm.NewObject()}}); v != valueFalse {
		t.Fatalf("2: %v", v)
	}
	if v := f(FunctionCall{Arguments: []Value{newStringValue("abc")}}); v != valueFalse {
		t.Fatalf("3: %v", v)
	}
	if v := f(FunctionCall{}); v != valueFalse {
		t.Fatalf("4: %v", v)
	}

	p := vm.NewProxy(vm.NewArray(1, 2), &ProxyTrapConfig{})
	if v := f(FunctionCall{Arguments: []Value{vm.ToValue(p)}}); v != valueTrue {
		t.Fatalf("5: %v", v)
	}
}

func TestArrayIsSparseBuiltin(t *testing.T) {
	vm := New()
	f := callable(t, vm.Get("Array").(*Object).Get("isSparse"))

	a := vm.NewArray(1, 2, 3)
	if v := f(FunctionCall{Arguments: []Value{a}}); v != valueFalse {
		t.Fatalf("1: %v", v)
	}
	if err := a.Delete("1"); err != nil {
		t.Fatal(err)
	}
	if v := f(FunctionCall{Arguments: []Value{a}}); v != valueTrue {
		t.Fatalf("2: %v", v)
	}

	if v := f(FunctionCall{Arguments: []Value{intToValue(42)}}); v != valueFalse {
		t.Fatalf("3: %v", v)
	}
	if v := f(FunctionCall{}); v != valueFalse {
		t.Fatalf("4: %v", v)
	}

	// Array-likes do not qualify no matter how hole-ridden they look.
	o := vm.NewObject()
	if err := o.Set("length", 3); err != nil {
		t.Fatal(err)
	}
	if v := f(FunctionCall{Arguments: []Value{o}}); v != valueFalse {
		t.Fatalf("5: %v", v)
	}

	// Functions have a length too, but are not arrays.
	if v := f(FunctionCall{Arguments: []Value{vm.Get("Array")}}); v != valueFalse {
		t.Fatalf("6: %v", v)
	}
}

func TestIsSparseIdempotent(t *testing.T) {
	for _, opts := range [][]Option{nil, {WithoutFastPath()}} {
		vm := New(opts...)
		dense := vm.NewArray(1, 2, 3)
		holey := vm.newArrayValues([]Value{intToValue(1), nil, intToValue(3)})

		for i := 0; i < 3; i++ {
			if sparse, err := vm.IsSparse(dense); err != nil || sparse {
				t.Fatalf("dense, call %d: %v, %v", i, sparse, err)
			}
			if sparse, err := vm.IsSparse(holey); err != nil || !sparse {
				t.Fatalf("holey, call %d: %v, %v", i, sparse, err)
			}
		}
	}
}

func TestArrayIsSparseThrowingLengthGetter(t *testing.T) {
	vm := New()

	var reads int
	getter := vm.ToValue(func(FunctionCall) Value {
		reads++
		panic(vm.NewTypeError("no length"))
	})
	o := vm.NewObject()
	if err := o.DefineAccessorProperty("length", getter, nil, FLAG_TRUE, FLAG_TRUE); err != nil {
		t.Fatal(err)
	}

	// Non-arrays are answered before the length read, so the getter never
	// runs.
	sparse, err := vm.IsSparse(o)
	if err != nil {
		t.Fatal(err)
	}
	if sparse {
		t.Fatal("array-like reported sparse")
	}
	if reads != 0 {
		t.Fatalf("length getter invoked %d times", reads)
	}
}

func TestArrayOf(t *testing.T) {
	vm := New()
	f := callable(t, vm.Get("Array").(*Object).Get("of"))

	res := f(FunctionCall{Arguments: []Value{intToValue(7), newStringValue("x")}}).(*Object)
	if l := res.Get("length").ToInteger(); l != 2 {
		t.Fatalf("1: invalid length: %d", l)
	}
	if v := res.Get("0").ToInteger(); v != 7 {
		t.Fatalf("2: invalid value: %d", v)
	}
	if v := res.Get("1").String(); v != "x" {
		t.Fatalf("3: invalid value: %s", v)
	}
	if sparse, err := vm.IsSparse(res); err != nil || sparse {
		t.Fatalf("4: sparse: %v, %v", sparse, err)
	}

	res = f(FunctionCall{}).(*Object)
	if l := res.Get("length").ToInteger(); l != 0 {
		t.Fatalf("5: invalid length: %d", l)
	}
}

func TestArrayJoinHoles(t *testing.T) {
	vm := New()
	a := vm.newArrayValues([]Value{intToValue(1), nil, intToValue(3)})
	f := callable(t, a.Get("join"))

	if s := f(FunctionCall{This: a}).String(); s != "1,,3" {
		t.Fatalf("1: %q", s)
	}
	if s := f(FunctionCall{This: a, Arguments: []Value{newStringValue("-")}}).String(); s != "1--3" {
		t.Fatalf("2: %q", s)
	}

	// undefined and null render as empty strings, same as holes.
	b := vm.newArrayValues([]Value{intToValue(1), _undefined, _null, intToValue(4)})
	fb := callable(t, b.Get("join"))
	if s := fb(FunctionCall{This: b}).String(); s != "1,,,4" {
		t.Fatalf("3: %q", s)
	}

	// toString defers to join.
	if s := a.String(); s != "1,,3" {
		t.Fatalf("4: %q", s)
	}
}

func TestArrayJoinLengthCoercion(t *testing.T) {
	vm := New()
	f := callable(t, vm.NewArray().Get("join"))

	// join is generic; the length of an array-like receiver goes through the
	// standard length coercion.
	o := vm.NewObject()
	if err := o.Set("0", "a"); err != nil {
		t.Fatal(err)
	}
	if err := o.Set("1", "b"); err != nil {
		t.Fatal(err)
	}
	if err := o.Set("length", 2.7); err != nil {
		t.Fatal(err)
	}
	if s := f(FunctionCall{This: o}).String(); s != "a,b" {
		t.Fatalf("1: %q", s)
	}
	if err := o.Set("length", -5); err != nil {
		t.Fatal(err)
	}
	if s := f(FunctionCall{This: o}).String(); s != "" {
		t.Fatalf("2: %q", s)
	}
}

func TestArrayPush(t *testing.T) {
	vm := New()
	a := vm.NewArray()
	f := callable(t, a.Get("push"))

	ret := f(FunctionCall{This: a, Arguments: []Value{intToValue(1), intToValue(2)}})
	if l := ret.ToInteger(); l != 2 {
		t.Fatalf("1: invalid return: %d", l)
	}
	if l := a.Get("length").ToInteger(); l != 2 {
		t.Fatalf("2: invalid length: %d", l)
	}
	if v := a.Get("1").ToInteger(); v != 2 {
		t.Fatalf("3: invalid value: %d", v)
	}

	// push appends after the trailing hole region and keeps it intact.
	b := vm.newArrayLength(2)
	fb := callable(t, b.Get("push"))
	fb(FunctionCall{This: b, Arguments: []Value{intToValue(9)}})
	if l := b.Get("length").ToInteger(); l != 3 {
		t.Fatalf("4: invalid length: %d", l)
	}
	if sparse, err := vm.IsSparse(b); err != nil || !sparse {
		t.Fatalf("5: sparse: %v, %v", sparse, err)
	}

	o := vm.NewObject()
	if err := o.Set("length", maxInt-1); err != nil {
		t.Fatal(err)
	}
	fo := callable(t, vm.global.ArrayPrototype.Get("push"))
	ex := vm.try(func() {
		fo(FunctionCall{This: o, Arguments: []Value{intToValue(1)}})
	})
	if ex == nil {
		t.Fatal("6: expected RangeError")
	}
	if name := ex.Value().(*Object).Get("name").String(); name != "RangeError" {
		t.Fatalf("7: invalid error: %s", name)
	}
}

func TestArrayProtoProp(t *testing.T) {
	vm := New()
	proto := vm.global.ArrayPrototype
	if err := proto.DefineDataProperty("0", intToValue(42), FLAG_FALSE, FLAG_TRUE, FLAG_NOT_SET); err != nil {
		t.Fatal(err)
	}

	a := vm.NewArray()
	if err := a.Set("0", 1); err == nil {
		t.Fatal("expected TypeError")
	}
	if v := a.Get("0").ToInteger(); v != 42 {
		t.Fatalf("invalid value: %d", v)
	}
	if a.self.hasOwnPropertyStr("0") {
		t.Fatal("own element appeared")
	}
}

func TestArrayDelete(t *testing.T) {
	vm := New()
	a := vm.NewArray(1, 2)
	if err := a.Delete("0"); err != nil {
		t.Fatal(err)
	}
	if a.self.hasOwnPropertyStr("0") {
		t.Fatal("element still present")
	}
	if l := a.Get("length").ToInteger(); l != 2 {
		t.Fatalf("invalid length: %d", l)
	}
	if sparse, err := vm.IsSparse(a); err != nil || !sparse {
		t.Fatalf("sparse: %v, %v", sparse, err)
	}
	// Deleting a missing element is a no-op.
	if err := a.Delete("5"); err != nil {
		t.Fatal(err)
	}
}

func TestArraySetLength(t *testing.T) {
	vm := New()
	a := vm.NewArray(1, 2)
	if err := a.Set("length", "1"); err != nil {
		t.Fatal(err)
	}
	if l := a.Get("length").ToInteger(); l != 1 {
		t.Fatalf("1: invalid length: %d", l)
	}
	if err := a.Set("length", valueFloat(1)); err != nil {
		t.Fatal(err)
	}
	if err := a.Set("length", 2); err != nil {
		t.Fatal(err)
	}
	if l := a.Get("length").ToInteger(); l != 2 {
		t.Fatalf("2: invalid length: %d", l)
	}
	if a.self.hasOwnPropertyStr("1") {
		t.Fatal("3: element 1 reappeared")
	}
	if sparse, err := vm.IsSparse(a); err != nil || !sparse {
		t.Fatalf("4: sparse: %v, %v", sparse, err)
	}
}

package lacuna

import "testing"

func TestObjectPutGet(t *testing.T) {
	vm := New()
	o := vm.NewObject()
	if err := o.Set("test", 42); err != nil {
		t.Fatal(err)
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

	// Keys follow insertion order.
	if err := o.Set("second", 1); err != nil {
		t.Fatal(err)
	}
	keys := o.Keys()
	if len(keys) != 2 || keys[0] != "test" || keys[1] != "second" {
		t.Fatalf("keys: %v", keys)
	}
}

func TestObjectAccessorProperty(t *testing.T) {
	vm := New()
	o := vm.NewObject()

	var stored Value = intToValue(1)
	getter := vm.newNativeFunc(func(FunctionCall) Value {
		return stored
	}, nil, "get", nil, 0)
	setter := vm.newNativeFunc(func(call FunctionCall) Value {
		stored = call.Argument(0)
		return _undefined
	}, nil, "set", nil, 1)

	if err := o.DefineAccessorProperty("x", getter, setter, FLAG_TRUE, FLAG_TRUE); err != nil {
		t.Fatal(err)
	}
	if v := o.Get("x").ToInteger(); v != 1 {
		t.Fatalf("1: unexpected value: %d", v)
	}
	if err := o.Set("x", 5); err != nil {
		t.Fatal(err)
	}
	if v := o.Get("x").ToInteger(); v != 5 {
		t.Fatalf("2: unexpected value: %d", v)
	}
}

func TestObjectDeleteNonConfigurable(t *testing.T) {
	vm := New()
	o := vm.NewObject()
	if err := o.DefineDataProperty("x", intToValue(1), FLAG_TRUE, FLAG_FALSE, FLAG_TRUE); err != nil {
		t.Fatal(err)
	}
	if err := o.Delete("x"); err == nil {
		t.Fatal("expected TypeError")
	}
	if v := o.Get("x").ToInteger(); v != 1 {
		t.Fatalf("unexpected value: %d", v)
	}
}

func TestObjectPrototypeChain(t *testing.T) {
	vm := New()
	parent := vm.NewObject()
	if err := parent.Set("inherited", 7); err != nil {
		t.Fatal(err)
	}
	child := vm.NewObject()
	if err := child.SetPrototype(parent); err != nil {
		t.Fatal(err)
	}
	if p := child.Prototype(); p != parent {
		t.Fatal("1: wrong prototype")
	}
	if v := child.Get("inherited").ToInteger(); v != 7 {
		t.Fatalf("2: unexpected value: %d", v)
	}
	if child.self.hasOwnPropertyStr("inherited") {
		t.Fatal("3: inherited reported as own")
	}
	if !child.self.hasPropertyStr("inherited") {
		t.Fatal("4: inherited not reported")
	}

	if err := child.SetPrototype(nil); err != nil {
		t.Fatal(err)
	}
	if v := child.Get("inherited"); v != nil {
		t.Fatalf("5: unexpected value: %v", v)
	}
}

func TestObjectPreventExtensions(t *testing.T) {
	vm := New()
	o := vm.NewObject()
	if err := o.Set("x", 1); err != nil {
		t.Fatal(err)
	}
	o.self.preventExtensions(false)
	if o.self.isExtensible() {
		t.Fatal("still extensible")
	}
	if err := o.Set("y", 2); err == nil {
		t.Fatal("expected TypeError")
	}
	// Existing properties stay writable.
	if err := o.Set("x", 3); err != nil {
		t.Fatal(err)
	}
}

func BenchmarkPut(b *testing.B) {
	v := &Object{}

	o := &baseObject{
		val:        v,
		extensible: true,
	}
	v.self = o

	o.init()

	var key Value = newStringValue("test")
	var val Value = valueInt(123)

	for i := 0; i < b.N; i++ {
		o.setOwn(key, val, false)
	}
}

func BenchmarkPutStr(b *testing.B) {
	v := &Object{}

	o := &baseObject{
		val:        v,
		extensible: true,
	}

	o.init()

	v.self = o

	var val Value = valueInt(123)

	for i := 0; i < b.N; i++ {
		o.setOwnStr("test", val, false)
	}
}

func BenchmarkGet(b *testing.B) {
	v := &Object{}

	o := &baseObject{
		val:        v,
		extensible: true,
	}

	o.init()

	v.self = o
	var n Value = newStringValue("test")

	for i := 0; i < b.N; i++ {
		o.get(n, nil)
	}

}

func BenchmarkGetStr(b *testing.B) {
	v := &Object{}

	o := &baseObject{
		val:        v,
		extensible: true,
	}
	v.self = o

	o.init()

	for i := 0; i < b.N; i++ {
		o.getStr("test", nil)
	}
}

func BenchmarkConv(b *testing.B) {
	count := int64(0)
	for i := 0; i < b.N; i++ {
		count += valueInt(123).ToInteger()
	}
	if count == 0 {
		b.Fatal("zero")
	}
}

package lacuna

import (
	"sort"
	"testing"
)

func TestGoMapBasic(t *testing.T) {
	vm := New()
	m := map[string]interface{}{"test": 42}
	o := vm.ToValue(m).(*Object)

	if cls := o.ClassName(); cls != "Object" {
		t.Fatalf("className: %s", cls)
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
	if sparse, err := vm.IsSparse(o); err != nil || sparse {
		t.Fatalf("sparse: %v, err: %v", sparse, err)
	}

	// The wrapper references the map, it does not copy it.
	if err := o.Set("test", 43); err != nil {
		t.Fatal(err)
	}
	if m["test"] != int64(43) {
		t.Fatalf("map not updated: %v", m["test"])
	}
	m["other"] = "x"
	if v := o.Get("other").String(); v != "x" {
		t.Fatalf("unexpected value: %q", v)
	}

	if err := o.Delete("test"); err != nil {
		t.Fatal(err)
	}
	if _, exists := m["test"]; exists {
		t.Fatal("key not deleted")
	}

	exported := o.Export().(map[string]interface{})
	exported["fromExport"] = 1
	if _, exists := m["fromExport"]; !exists {
		t.Fatal("export returned a copy")
	}
}

func TestGoMapKeysDefine(t *testing.T) {
	vm := New()
	m := map[string]interface{}{"a": 1, "b": 2}
	o := vm.ToValue(m).(*Object)

	keys := o.Keys()
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("keys: %v", keys)
	}

	if err := o.DefineDataProperty("c", intToValue(3), FLAG_NOT_SET, FLAG_NOT_SET, FLAG_NOT_SET); err != nil {
		t.Fatal(err)
	}
	if m["c"] != int64(3) {
		t.Fatalf("map not updated: %v", m["c"])
	}
	if err := o.DefineDataProperty("d", intToValue(4), FLAG_FALSE, FLAG_NOT_SET, FLAG_NOT_SET); err == nil {
		t.Fatal("1: expected TypeError")
	}
	getter := vm.newNativeFunc(func(FunctionCall) Value {
		return intToValue(1)
	}, nil, "get", nil, 0)
	if err := o.DefineAccessorProperty("e", getter, nil, FLAG_TRUE, FLAG_TRUE); err == nil {
		t.Fatal("2: expected TypeError")
	}
}

func TestGoMapProto(t *testing.T) {
	vm := New()
	m := map[string]interface{}{}
	o := vm.ToValue(m).(*Object)

	parent := vm.NewObject()
	if err := parent.Set("inherited", 7); err != nil {
		t.Fatal(err)
	}

	// Assigning __proto__ changes the prototype instead of storing a key.
	if err := o.Set("__proto__", parent); err != nil {
		t.Fatal(err)
	}
	if proto := o.Prototype(); proto != parent {
		t.Fatal("prototype not replaced")
	}
	if _, exists := m["__proto__"]; exists {
		t.Fatal("__proto__ stored in the map")
	}
	if v := o.Get("inherited").ToInteger(); v != 7 {
		t.Fatalf("unexpected value: %d", v)
	}

	// Assignment shadows the inherited property in the map.
	if err := o.Set("inherited", 8); err != nil {
		t.Fatal(err)
	}
	if m["inherited"] != int64(8) {
		t.Fatalf("map value: %v", m["inherited"])
	}
	if v := parent.Get("inherited").ToInteger(); v != 7 {
		t.Fatalf("parent value changed: %d", v)
	}
}

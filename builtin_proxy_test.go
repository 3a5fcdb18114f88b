package lacuna

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxy_native_passthrough(t *testing.T) {
	vm := New()

	dense := vm.NewProxy(vm.NewArray(1, 2, 3), &ProxyTrapConfig{})
	sparse, err := vm.IsSparse(vm.ToValue(dense).(*Object))
	require.NoError(t, err)
	assert.False(t, sparse)

	holey := vm.newArrayValues([]Value{intToValue(1), nil, intToValue(3)})
	p := vm.NewProxy(holey, &ProxyTrapConfig{})
	sparse, err = vm.IsSparse(vm.ToValue(p).(*Object))
	require.NoError(t, err)
	assert.True(t, sparse)

	obj := vm.ToValue(p).(*Object)
	assert.Equal(t, int64(3), obj.Get("length").ToInteger())
	assert.Equal(t, int64(1), obj.Get("0").ToInteger())
}

func TestProxy_native_getOwnPropertyDescriptor_holes(t *testing.T) {
	vm := New()
	target := vm.NewArray(1, 2, 3)

	var checked []string
	p := vm.NewProxy(target, &ProxyTrapConfig{
		GetOwnPropertyDescriptor: func(tgt *Object, prop string) PropertyDescriptor {
			checked = append(checked, prop)
			if prop == "1" {
				// An empty descriptor reports the index as missing.
				return PropertyDescriptor{}
			}
			return PropertyDescriptor{
				Value:        tgt.Get(prop),
				Writable:     FLAG_TRUE,
				Enumerable:   FLAG_TRUE,
				Configurable: FLAG_TRUE,
			}
		},
	})
	obj := vm.ToValue(p).(*Object)

	sparse, err := vm.IsSparse(obj)
	require.NoError(t, err)
	assert.True(t, sparse)

	// The scan stops at the first virtual hole.
	assert.Equal(t, []string{"0", "1"}, checked)
}

func TestProxy_native_getOwnPropertyDescriptor_invariant(t *testing.T) {
	vm := New()
	target := vm.NewArray(1)
	require.NoError(t, target.DefineDataProperty("0", intToValue(1), FLAG_TRUE, FLAG_FALSE, FLAG_TRUE))

	p := vm.NewProxy(target, &ProxyTrapConfig{
		GetOwnPropertyDescriptor: func(tgt *Object, prop string) PropertyDescriptor {
			return PropertyDescriptor{}
		},
	})

	sparse, err := vm.IsSparse(vm.ToValue(p).(*Object))
	require.Error(t, err)
	assert.False(t, sparse)
	assert.Contains(t, err.Error(), "cannot report non-configurable property as non-existing")
}

func TestProxy_native_get_length(t *testing.T) {
	vm := New()
	target := vm.NewArray(1, 2, 3)

	p := vm.NewProxy(target, &ProxyTrapConfig{
		Get: func(tgt *Object, property string, receiver *Object) Value {
			if property == "length" {
				return intToValue(5)
			}
			return tgt.Get(property)
		},
	})
	obj := vm.ToValue(p).(*Object)

	assert.Equal(t, int64(5), obj.Get("length").ToInteger())

	// The claimed length exceeds the populated range, so the scan runs off
	// the end of the target and finds a hole at index 3.
	sparse, err := vm.IsSparse(obj)
	require.NoError(t, err)
	assert.True(t, sparse)
}

func TestProxy_native_get_length_throws(t *testing.T) {
	vm := New()
	target := vm.NewArray(1, 2, 3)

	p := vm.NewProxy(target, &ProxyTrapConfig{
		Get: func(tgt *Object, property string, receiver *Object) Value {
			if property == "length" {
				panic(vm.NewTypeError("length is off limits"))
			}
			return tgt.Get(property)
		},
	})

	sparse, err := vm.IsSparse(vm.ToValue(p).(*Object))
	require.Error(t, err)
	assert.False(t, sparse)
	assert.Contains(t, err.Error(), "length is off limits")
}

func TestProxy_native_has(t *testing.T) {
	vm := New()
	target := vm.NewArray(1, 2, 3)

	var asked []string
	p := vm.NewProxy(target, &ProxyTrapConfig{
		Has: func(tgt *Object, property string) bool {
			asked = append(asked, property)
			return property != "1"
		},
	})
	obj := vm.ToValue(p).(*Object)

	assert.True(t, obj.self.hasPropertyStr("0"))
	assert.False(t, obj.self.hasPropertyStr("1"))
	assert.Equal(t, []string{"0", "1"}, asked)

	// The scan uses own-property semantics, so the has trap does not
	// introduce holes.
	sparse, err := vm.IsSparse(obj)
	require.NoError(t, err)
	assert.False(t, sparse)
}

func TestProxy_native_ownKeys(t *testing.T) {
	vm := New()
	target := vm.NewArray(1, 2, 3)

	p := vm.NewProxy(target, &ProxyTrapConfig{
		OwnKeys: func(tgt *Object) *Object {
			return vm.NewArray("0", "1", "2", "length")
		},
	})
	obj := vm.ToValue(p).(*Object)

	// length is filtered out as non-enumerable.
	assert.Equal(t, []string{"0", "1", "2"}, obj.Keys())
}

func TestProxy_native_defineProperty(t *testing.T) {
	vm := New()
	target := vm.NewArray(1, 2, 3)

	var defined []string
	p := vm.NewProxy(target, &ProxyTrapConfig{
		DefineProperty: func(tgt *Object, key string, desc PropertyDescriptor) bool {
			defined = append(defined, key)
			return tgt.DefineDataProperty(key, desc.Value, desc.Writable, desc.Configurable, desc.Enumerable) == nil
		},
	})
	obj := vm.ToValue(p).(*Object)

	require.NoError(t, obj.DefineDataProperty("3", intToValue(4), FLAG_TRUE, FLAG_TRUE, FLAG_TRUE))
	assert.Equal(t, []string{"3"}, defined)
	assert.Equal(t, int64(4), target.Get("length").ToInteger())

	sparse, err := vm.IsSparse(obj)
	require.NoError(t, err)
	assert.False(t, sparse)
}

func TestProxy_native_set_delete(t *testing.T) {
	vm := New()
	target := vm.NewArray(1, 2, 3)

	var sets, deletes []string
	p := vm.NewProxy(target, &ProxyTrapConfig{
		Set: func(tgt *Object, property string, value Value, receiver *Object) bool {
			sets = append(sets, property)
			return tgt.Set(property, value) == nil
		},
		DeleteProperty: func(tgt *Object, property string) bool {
			deletes = append(deletes, property)
			return tgt.Delete(property) == nil
		},
	})
	obj := vm.ToValue(p).(*Object)

	require.NoError(t, obj.Set("5", 9))
	assert.Equal(t, []string{"5"}, sets)
	assert.Equal(t, int64(6), target.Get("length").ToInteger())

	require.NoError(t, obj.Delete("0"))
	assert.Equal(t, []string{"0"}, deletes)
	assert.False(t, target.self.hasOwnPropertyStr("0"))

	sparse, err := vm.IsSparse(obj)
	require.NoError(t, err)
	assert.True(t, sparse)
}

func TestProxy_native_getPrototypeOf(t *testing.T) {
	vm := New()
	proto := vm.NewObject()

	p := vm.NewProxy(vm.NewObject(), &ProxyTrapConfig{
		GetPrototypeOf: func(tgt *Object) *Object {
			return proto
		},
	})
	obj := vm.ToValue(p).(*Object)
	assert.Same(t, proto, obj.Prototype())
}

func TestProxy_native_apply(t *testing.T) {
	vm := New()
	fn := vm.newNativeFunc(func(FunctionCall) Value {
		return intToValue(42)
	}, nil, "f", nil, 0)

	p := vm.NewProxy(fn, &ProxyTrapConfig{
		Apply: func(tgt *Object, this *Object, args []Value) Value {
			return intToValue(int64(len(args)))
		},
	})
	obj := vm.ToValue(p).(*Object)

	call, ok := obj.self.assertCallable()
	require.True(t, ok)
	v := call(FunctionCall{This: vm.GlobalObject(), Arguments: []Value{intToValue(1), intToValue(2)}})
	assert.Equal(t, int64(2), v.ToInteger())
}

func TestProxy_native_construct(t *testing.T) {
	vm := New()
	ctorTarget := vm.newNativeFuncConstruct(func(args []Value, proto *Object) *Object {
		o := vm.NewObject()
		_ = o.Set("mark", "target")
		return o
	}, "C", vm.global.ObjectPrototype, 0)

	p := vm.NewProxy(ctorTarget, &ProxyTrapConfig{
		Construct: func(tgt *Object, args []Value, newTarget *Object) *Object {
			o := vm.NewObject()
			_ = o.Set("mark", "trap")
			return o
		},
	})
	obj := vm.ToValue(p).(*Object)

	ctor := getConstructor(obj)
	require.NotNil(t, ctor)
	res := ctor(nil)
	assert.Equal(t, "trap", res.Get("mark").String())
}

func TestProxy_revoked(t *testing.T) {
	vm := New()
	p := vm.NewProxy(vm.NewArray(1), &ProxyTrapConfig{})
	obj := vm.ToValue(p).(*Object)
	p.Revoke()

	sparse, err := vm.IsSparse(obj)
	require.Error(t, err)
	assert.False(t, sparse)
	assert.Contains(t, err.Error(), "revoked")
}

func TestProxy_export(t *testing.T) {
	vm := New()
	p := vm.NewProxy(vm.NewArray(), &ProxyTrapConfig{})
	obj := vm.ToValue(p).(*Object)

	exported, ok := obj.Export().(Proxy)
	require.True(t, ok)
	assert.Same(t, obj, exported.proxy.val)
}

package lacuna

import (
	"fmt"
)

// Version is the library version. Conformance fixtures may declare a semver
// constraint on it to gate vectors that rely on newer behaviour.
const Version = "1.2.0"

type global struct {
	Object     *Object
	Array      *Object
	Proxy      *Object
	Error      *Object
	TypeError  *Object
	RangeError *Object

	ObjectPrototype   *Object
	ArrayPrototype    *Object
	FunctionPrototype *Object
	NumberPrototype   *Object
	StringPrototype   *Object
	BooleanPrototype  *Object
	ProxyPrototype    *Object

	ErrorPrototype      *Object
	TypeErrorPrototype  *Object
	RangeErrorPrototype *Object
}

// Runtime is an instance of the object runtime. It is not goroutine-safe;
// wrap it in a sync.Mutex if concurrent access is required. Values belonging
// to one Runtime must not be passed to another.
type Runtime struct {
	global       global
	globalObject *Object

	scanHook   ScanHook
	noFastPath bool
}

// An Exception wraps a thrown value (usually an Error object) so that it can
// be returned through Go error channels. Runtime methods that take user traps
// or accessors recover panics into an *Exception.
type Exception struct {
	val Value
}

func (e *Exception) Value() Value {
	return e.val
}

func (e *Exception) Error() string {
	if e == nil || e.val == nil {
		return "<nil>"
	}
	return e.val.String()
}

func (e *Exception) String() string {
	return e.Error()
}

// New creates an instance of the runtime. Multiple instances may be created
// and used simultaneously, however it is not possible to pass values across
// runtimes.
func New(opts ...Option) *Runtime {
	opt := defaultOptions
	for _, o := range opts {
		o.apply(&opt)
	}
	r := &Runtime{
		scanHook:   opt.scanHook,
		noFastPath: opt.noFastPath,
	}
	r.init()
	return r
}

func (r *Runtime) init() {
	r.global.ObjectPrototype = r.newBaseObject(nil, classObject).val
	r.globalObject = r.NewObject()

	funcProto := r.newNativeFunc(func(FunctionCall) Value {
		return _undefined
	}, nil, " ", nil, 0)
	r.global.FunctionPrototype = funcProto
	funcProtoObj := funcProto.self.(*nativeFuncObject)
	funcProtoObj.prototype = r.global.ObjectPrototype

	r.initObject()
	r.initArray()
	r.initErrors()
	r.initPrimitivePrototypes()
	r.initProxy()

	o := r.globalObject.self
	o._putProp("globalThis", r.globalObject, true, false, true)
	o._putProp("undefined", _undefined, false, false, false)
}

func (r *Runtime) newBaseObject(proto *Object, class string) (o *baseObject) {
	v := &Object{runtime: r}

	o = &baseObject{}
	o.class = class
	o.val = v
	o.extensible = true
	v.self = o
	o.prototype = proto
	o.init()

	return
}

// NewObject creates a plain Object with the default prototype.
func (r *Runtime) NewObject() *Object {
	return r.newBaseObject(r.global.ObjectPrototype, classObject).val
}

// CreateObject creates an object with the given prototype, which may be nil.
func (r *Runtime) CreateObject(proto *Object) *Object {
	return r.newBaseObject(proto, classObject).val
}

func (r *Runtime) newPrimitiveObject(value Value, proto *Object, class string) *Object {
	v := &Object{runtime: r}

	o := &primitiveValueObject{}
	o.class = class
	o.val = v
	o.extensible = true
	v.self = o
	o.prototype = proto
	o.pValue = value
	o.init()

	return v
}

func (r *Runtime) newLazyObject(create func(*Object) objectImpl) *Object {
	val := &Object{runtime: r}
	o := &lazyObject{
		val:    val,
		create: create,
	}
	val.self = o
	return val
}

func (r *Runtime) newNativeFunc(call func(FunctionCall) Value, construct func(args []Value, proto *Object) *Object, name string, proto *Object, length int) *Object {
	v := &Object{runtime: r}

	f := &nativeFuncObject{
		baseFuncObject: baseFuncObject{
			baseObject: baseObject{
				class:      classFunction,
				val:        v,
				extensible: true,
				prototype:  r.global.FunctionPrototype,
			},
		},
		f:         call,
		construct: r.wrapNativeConstruct(construct, proto),
	}
	v.self = f
	f.init(name, length)
	if proto != nil {
		f._putProp("prototype", proto, false, false, false)
	}
	return v
}

func (r *Runtime) newNativeFuncConstructObj(v *Object, construct func(args []Value, proto *Object) *Object, name string, prototype *Object, length int) *nativeFuncObject {
	f := &nativeFuncObject{
		baseFuncObject: baseFuncObject{
			baseObject: baseObject{
				class:      classFunction,
				val:        v,
				extensible: true,
				prototype:  r.global.FunctionPrototype,
			},
		},
		f:         r.constructToCall(construct, prototype),
		construct: r.wrapNativeConstruct(construct, prototype),
	}

	f.init(name, length)
	if prototype != nil {
		f._putProp("prototype", prototype, false, false, false)
	}
	return f
}

func (r *Runtime) newNativeFuncConstruct(construct func(args []Value, proto *Object) *Object, name string, prototype *Object, length int64) *Object {
	return r.newNativeFuncConstructProto(construct, name, prototype, r.global.FunctionPrototype, length)
}

func (r *Runtime) newNativeFuncConstructProto(construct func(args []Value, proto *Object) *Object, name string, prototype, proto *Object, length int64) *Object {
	v := &Object{runtime: r}

	f := &nativeFuncObject{}
	f.class = classFunction
	f.val = v
	f.extensible = true
	v.self = f
	f.prototype = proto
	f.f = r.constructToCall(construct, prototype)
	f.construct = r.wrapNativeConstruct(construct, prototype)
	f.init(name, int(length))
	if prototype != nil {
		f._putProp("prototype", prototype, false, false, false)
		prototype.self._putProp("constructor", v, true, false, true)
	}
	return v
}

func (r *Runtime) newNativeConstructor(call func(ConstructorCall) *Object, name string, length int) *Object {
	v := &Object{runtime: r}

	f := &nativeFuncObject{
		baseFuncObject: baseFuncObject{
			baseObject: baseObject{
				class:      classFunction,
				val:        v,
				extensible: true,
				prototype:  r.global.FunctionPrototype,
			},
		},
	}

	f.f = func(c FunctionCall) Value {
		thisObj, _ := c.This.(*Object)
		if thisObj != nil {
			res := call(ConstructorCall{
				This:      thisObj,
				Arguments: c.Arguments,
			})
			if res == nil {
				return _undefined
			}
			return res
		}
		return f.defaultConstruct(call, c.Arguments)
	}

	f.construct = func(args []Value) *Object {
		return f.defaultConstruct(call, args)
	}

	v.self = f
	f.init(name, length)

	proto := r.NewObject()
	proto.self._putProp("constructor", v, true, false, true)
	f._putProp("prototype", proto, true, false, false)

	return v
}

func (r *Runtime) constructToCall(construct func(args []Value, proto *Object) *Object, proto *Object) func(call FunctionCall) Value {
	return func(call FunctionCall) Value {
		return construct(call.Arguments, proto)
	}
}

func (r *Runtime) wrapNativeConstruct(c func(args []Value, proto *Object) *Object, proto *Object) func(args []Value) *Object {
	if c == nil {
		return nil
	}
	return func(args []Value) *Object {
		var p *Object
		if proto != nil {
			p = proto
		}
		return c(args, p)
	}
}

func getConstructor(construct *Object) func(args []Value) *Object {
	switch f := construct.self.(type) {
	case *nativeFuncObject:
		return f.construct
	case *proxyObject:
		if f.ctor != nil {
			return f.construct
		}
	case *lazyObject:
		construct.self = f.create(construct)
		return getConstructor(construct)
	}
	return nil
}

func (r *Runtime) builtin_new(construct *Object, args []Value) *Object {
	if ctor := getConstructor(construct); ctor != nil {
		return ctor(args)
	}
	panic(r.NewTypeError("Not a constructor"))
}

func (r *Runtime) newError(typ *Object, format string, args ...interface{}) Value {
	msg := fmt.Sprintf(format, args...)
	return r.builtin_new(typ, []Value{newStringValue(msg)})
}

// NewTypeError creates a TypeError object with the given formatted message.
// The return value is ready to be panicked with or wrapped in an Exception.
func (r *Runtime) NewTypeError(args ...interface{}) *Object {
	msg := ""
	if len(args) > 0 {
		f, _ := args[0].(string)
		msg = fmt.Sprintf(f, args[1:]...)
	}
	return r.builtin_new(r.global.TypeError, []Value{newStringValue(msg)})
}

func (r *Runtime) typeErrorResult(throw bool, args ...interface{}) {
	if throw {
		panic(r.NewTypeError(args...))
	}
}

func (r *Runtime) addToGlobal(name string, value Value) {
	r.globalObject.self._putProp(name, value, true, false, true)
}

func (r *Runtime) primitiveValue(v Value, methodName string) Value {
	if o, ok := v.(*Object); ok {
		if p, ok := o.self.(*primitiveValueObject); ok {
			return p.pValue
		}
		panic(r.NewTypeError("Method %s called on incompatible receiver %s", methodName, v.String()))
	}
	return v
}

func (r *Runtime) primitiveproto_valueOf(call FunctionCall) Value {
	return r.primitiveValue(call.This, "valueOf")
}

func (r *Runtime) primitiveproto_toString(call FunctionCall) Value {
	return r.primitiveValue(call.This, "toString").toString()
}

// initPrimitivePrototypes creates the wrapper prototypes used by
// Value.ToObject for numbers, strings and booleans. The constructors
// themselves are not exposed; only the prototypes exist so that methods can
// be resolved on wrapped primitives.
func (r *Runtime) initPrimitivePrototypes() {
	for _, p := range []struct {
		proto **Object
		value Value
		class string
	}{
		{&r.global.NumberPrototype, valueInt(0), classNumber},
		{&r.global.StringPrototype, stringEmpty, classString},
		{&r.global.BooleanPrototype, valueFalse, classBoolean},
	} {
		o := r.newPrimitiveObject(p.value, r.global.ObjectPrototype, p.class)
		o.self._putProp("valueOf", r.newNativeFunc(r.primitiveproto_valueOf, nil, "valueOf", nil, 0), true, false, true)
		o.self._putProp("toString", r.newNativeFunc(r.primitiveproto_toString, nil, "toString", nil, 0), true, false, true)
		*p.proto = o
	}
}

func (r *Runtime) toObject(v Value, args ...interface{}) *Object {
	if obj, ok := v.(*Object); ok {
		return obj
	}
	if len(args) > 0 {
		panic(r.NewTypeError(args...))
	} else {
		var s string
		if v == nil {
			s = "undefined"
		} else {
			s = v.String()
		}
		panic(r.NewTypeError("Value is not an object: %s", s))
	}
}

func (r *Runtime) toPropertyDescriptor(v Value) (ret PropertyDescriptor) {
	if o, ok := v.(*Object); ok {
		descr := o.self

		ret.jsDescriptor = o

		ret.Value = descr.getStr("value", nil)

		if p := descr.getStr("writable", nil); p != nil {
			ret.Writable = ToFlag(p.ToBoolean())
		}
		if p := descr.getStr("enumerable", nil); p != nil {
			ret.Enumerable = ToFlag(p.ToBoolean())
		}
		if p := descr.getStr("configurable", nil); p != nil {
			ret.Configurable = ToFlag(p.ToBoolean())
		}

		ret.Getter = descr.getStr("get", nil)
		ret.Setter = descr.getStr("set", nil)

		if ret.Getter != nil && ret.Getter != _undefined {
			if _, ok := r.toObject(ret.Getter).self.assertCallable(); !ok {
				panic(r.NewTypeError("Getter must be a function: %s", ret.Getter.String()))
			}
		}

		if ret.Setter != nil && ret.Setter != _undefined {
			if _, ok := r.toObject(ret.Setter).self.assertCallable(); !ok {
				panic(r.NewTypeError("Setter must be a function: %s", ret.Setter.String()))
			}
		}

		if (ret.Getter != nil || ret.Setter != nil) && (ret.Value != nil || ret.Writable != FLAG_NOT_SET) {
			panic(r.NewTypeError("Invalid property descriptor. Cannot both specify accessors and a value or writable attribute"))
		}
	} else {
		panic(r.NewTypeError("Property description must be an object: %s", v.String()))
	}

	return
}

func (r *Runtime) toValueProp(v Value) *valueProperty {
	if v == nil || v == _undefined {
		return nil
	}
	obj := r.toObject(v)
	getter := obj.self.getStr("get", nil)
	setter := obj.self.getStr("set", nil)
	writable := obj.self.getStr("writable", nil)
	value := obj.self.getStr("value", nil)
	if (getter != nil || setter != nil) && (value != nil || writable != nil) {
		panic(r.NewTypeError("Invalid property descriptor. Cannot both specify accessors and a value or writable attribute"))
	}

	ret := &valueProperty{}
	if writable != nil && writable.ToBoolean() {
		ret.writable = true
	}
	if e := obj.self.getStr("enumerable", nil); e != nil && e.ToBoolean() {
		ret.enumerable = true
	}
	if c := obj.self.getStr("configurable", nil); c != nil && c.ToBoolean() {
		ret.configurable = true
	}
	ret.value = value

	if getter != nil && getter != _undefined {
		o := r.toObject(getter)
		if _, ok := o.self.assertCallable(); !ok {
			panic(r.NewTypeError("getter must be a function"))
		}
		ret.getterFunc = o
	}

	if setter != nil && setter != _undefined {
		o := r.toObject(setter)
		if _, ok := o.self.assertCallable(); !ok {
			panic(r.NewTypeError("setter must be a function"))
		}
		ret.setterFunc = o
	}

	if ret.getterFunc != nil || ret.setterFunc != nil {
		ret.accessor = true
	}

	return ret
}

func (r *Runtime) checkHostObjectPropertyDescr(name string, descr PropertyDescriptor, throw bool) bool {
	if descr.Getter != nil || descr.Setter != nil {
		r.typeErrorResult(throw, "Host objects do not support accessor properties")
		return false
	}
	if descr.Writable == FLAG_FALSE {
		r.typeErrorResult(throw, "Host object field %s cannot be made read-only", name)
		return false
	}
	if descr.Configurable == FLAG_FALSE {
		r.typeErrorResult(throw, "Host object field %s cannot be made non-configurable", name)
		return false
	}
	return true
}

// ToValue converts a Go value into a runtime Value. Supported types:
//
//	nil                           null
//	bool                          Boolean
//	string                        String
//	integer and float types       Number
//	func(FunctionCall) Value      native function
//	func(ConstructorCall) *Object native constructor
//	map[string]interface{}        host object backed by the map
//	[]interface{}                 host array backed by the slice, nil elements
//	                              read as missing indices
//	*[]interface{}                same, but the array can grow
//	Proxy                         the proxy object
//	Value, *Object                returned as is
//
// Any other type panics with a TypeError. Host objects reference the original
// value, they do not copy it; mutations on either side are visible to both.
func (r *Runtime) ToValue(i interface{}) Value {
	switch i := i.(type) {
	case nil:
		return _null
	case Value:
		return i
	case string:
		return newStringValue(i)
	case bool:
		if i {
			return valueTrue
		}
		return valueFalse
	case func(FunctionCall) Value:
		return r.newNativeFunc(i, nil, "", nil, 0)
	case func(ConstructorCall) *Object:
		return r.newNativeConstructor(i, "", 0)
	case int:
		return intToValue(int64(i))
	case int8:
		return intToValue(int64(i))
	case int16:
		return intToValue(int64(i))
	case int32:
		return intToValue(int64(i))
	case int64:
		return intToValue(i)
	case uint:
		if uint64(i) <= uint64(maxInt) {
			return intToValue(int64(i))
		}
		return floatToValue(float64(i))
	case uint8:
		return intToValue(int64(i))
	case uint16:
		return intToValue(int64(i))
	case uint32:
		return intToValue(int64(i))
	case uint64:
		if i <= uint64(maxInt) {
			return intToValue(int64(i))
		}
		return floatToValue(float64(i))
	case float32:
		return floatToValue(float64(i))
	case float64:
		return floatToValue(i)
	case map[string]interface{}:
		if i == nil {
			return _null
		}
		obj := &Object{runtime: r}
		m := &objectGoMapSimple{
			baseObject: baseObject{
				val:        obj,
				extensible: true,
			},
			data: i,
		}
		obj.self = m
		m.init()
		return obj
	case []interface{}:
		if i == nil {
			return _null
		}
		obj := &Object{runtime: r}
		a := &objectGoSlice{
			baseObject: baseObject{
				val: obj,
			},
			data: &i,
		}
		obj.self = a
		a.init()
		return obj
	case *[]interface{}:
		if i == nil {
			return _null
		}
		obj := &Object{runtime: r}
		a := &objectGoSlice{
			baseObject: baseObject{
				val: obj,
			},
			data:            i,
			sliceExtensible: true,
		}
		obj.self = a
		a.init()
		return obj
	case Proxy:
		return i.proxy.val
	}

	panic(r.NewTypeError("Could not convert %v (%T) to a value", i, i))
}

// NewArray creates an array backed by the dense representation, converting
// each item with ToValue. To create an array with holes use the Array
// constructor with a length, or delete indices from a dense array.
func (r *Runtime) NewArray(items ...interface{}) *Object {
	values := make([]Value, len(items))
	for i, item := range items {
		values[i] = r.ToValue(item)
	}
	return r.newArrayValues(values)
}

// GlobalObject returns the global object.
func (r *Runtime) GlobalObject() *Object {
	return r.globalObject
}

// Set the specified value as a property of the global object. The value is
// first converted using ToValue.
func (r *Runtime) Set(name string, value interface{}) error {
	return tryFunc(func() {
		r.globalObject.self.setOwnStr(name, r.ToValue(value), true)
	})
}

// Get the specified property of the global object. Returns nil if the
// property does not exist.
func (r *Runtime) Get(name string) Value {
	return r.globalObject.self.getStr(name, nil)
}

// IsSparse reports whether v is an array with at least one missing own index
// below its length. Non-array values (including array-likes and strings)
// report false without their length being read. Proxies of arrays are
// scanned through their traps; a trap that throws, or a revoked proxy,
// results in a non-nil error wrapping the thrown value.
func (r *Runtime) IsSparse(v Value) (sparse bool, err error) {
	ex := r.try(func() {
		sparse = r.isSparse(v)
	})
	if ex != nil {
		return false, ex
	}
	return sparse, nil
}

// IsArray reports whether v is an array in any representation. A proxy
// counts if its target does. Array-likes and strings do not count, matching
// what IsSparse accepts. A revoked proxy results in a non-nil error.
func (r *Runtime) IsArray(v Value) (array bool, err error) {
	ex := r.try(func() {
		if obj, ok := v.(*Object); ok {
			array = isArray(obj)
		}
	})
	if ex != nil {
		return false, ex
	}
	return array, nil
}

func (r *Runtime) try(f func()) (ex *Exception) {
	defer func() {
		if x := recover(); x != nil {
			switch x1 := x.(type) {
			case *Exception:
				ex = x1
			case Value:
				ex = &Exception{val: x1}
			case typeError:
				ex = &Exception{val: r.NewTypeError(string(x1))}
			default:
				panic(x)
			}
		}
	}()

	f()
	return
}

func tryFunc(f func()) (err error) {
	defer func() {
		if x := recover(); x != nil {
			switch x1 := x.(type) {
			case *Exception:
				err = x1
			case Value:
				err = &Exception{val: x1}
			case typeError:
				err = &Exception{val: newStringValue("TypeError: " + string(x1))}
			default:
				panic(x)
			}
		}
	}()

	f()
	return
}

func nilSafe(v Value) Value {
	if v != nil {
		return v
	}
	return _undefined
}

// Undefined returns the undefined value.
func Undefined() Value {
	return _undefined
}

// Null returns the null value.
func Null() Value {
	return _null
}

// IsUndefined returns true if the supplied Value is undefined. Note that it
// checks against the real undefined, not against the global object's
// 'undefined' property.
func IsUndefined(v Value) bool {
	return v == _undefined
}

// IsNull returns true if the supplied Value is null.
func IsNull(v Value) bool {
	return v == _null
}

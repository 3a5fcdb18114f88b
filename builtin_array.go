package lacuna

import (
	"strconv"
	"strings"
)

// Representation names used for scan hooks and the scan profiler.
const (
	reprDense    = "dense"
	reprSparse   = "sparse"
	reprGoSlice  = "goslice"
	reprDynArray = "dynarray"
	reprProxy    = "proxy"
	reprGeneric  = "generic"
)

func reprName(self objectImpl) string {
	switch self.(type) {
	case *arrayObject:
		return reprDense
	case *sparseArrayObject:
		return reprSparse
	case *objectGoSlice:
		return reprGoSlice
	case *readonlyArray, *dynamicArray:
		return reprDynArray
	case *proxyObject:
		return reprProxy
	default:
		return reprGeneric
	}
}

func (r *Runtime) newArray(prototype *Object) *arrayObject {
	v := &Object{runtime: r}

	a := &arrayObject{}
	a.class = classArray
	a.val = v
	a.extensible = true
	v.self = a
	a.prototype = prototype
	a.init()
	return a
}

func (r *Runtime) newArrayObject() *arrayObject {
	return r.newArray(r.global.ArrayPrototype)
}

func setArrayValues(a *arrayObject, values []Value) *arrayObject {
	a.values = values
	a.length = int64(len(values))
	for _, item := range values {
		if item != nil {
			a.objCount++
		}
	}
	return a
}

func setArrayLength(a *arrayObject, l int64) *arrayObject {
	a.setOwnStr("length", intToValue(l), true)
	return a
}

// newArrayValues builds a dense array from the given slice. nil entries become
// missing indices, so callers may construct arrays with holes directly from Go.
func (r *Runtime) newArrayValues(values []Value) *Object {
	return setArrayValues(r.newArrayObject(), values).val
}

func (r *Runtime) newArrayLength(l int64) *Object {
	return setArrayLength(r.newArrayObject(), l).val
}

func (r *Runtime) builtin_newArray(args []Value, proto *Object) *Object {
	l := len(args)
	if l == 1 {
		if al, ok := args[0].(valueInt); ok {
			return setArrayLength(r.newArray(proto), int64(al)).val
		} else if f, ok := args[0].(valueFloat); ok {
			al := int64(f)
			if float64(al) == float64(f) {
				return setArrayLength(r.newArray(proto), al).val
			} else {
				panic(r.newError(r.global.RangeError, "Invalid array length"))
			}
		}
		return setArrayValues(r.newArray(proto), []Value{args[0]}).val
	} else {
		argsCopy := make([]Value, l)
		copy(argsCopy, args)
		return setArrayValues(r.newArray(proto), argsCopy).val
	}
}

// isArray is the IsArray abstract operation: only array exotic objects (in any
// representation) qualify; a proxy delegates to its target. Array-likes and
// strings do not qualify.
func isArray(object *Object) bool {
	self := object.self
	if proxy, ok := self.(*proxyObject); ok {
		if proxy.target == nil {
			panic(object.runtime.NewTypeError("Cannot perform 'IsArray' on a proxy that has been revoked"))
		}
		return isArray(proxy.target)
	}
	switch self.(type) {
	case *arrayObject, *sparseArrayObject, *objectGoSlice, *readonlyArray, *dynamicArray:
		return true
	default:
		return false
	}
}

func (r *Runtime) array_isArray(call FunctionCall) Value {
	if o, ok := call.Argument(0).(*Object); ok {
		if isArray(o) {
			return valueTrue
		}
	}
	return valueFalse
}

func (r *Runtime) array_isSparse(call FunctionCall) Value {
	if r.isSparse(call.Argument(0)) {
		return valueTrue
	}
	return valueFalse
}

func (r *Runtime) array_of(call FunctionCall) Value {
	values := make([]Value, len(call.Arguments))
	copy(values, call.Arguments)
	return r.newArrayValues(values)
}

// isSparse reports whether v is an array with at least one missing own index
// below its length. Non-arrays are never sparse and their length is not read.
// Exceptions raised by user traps propagate as panics; use Runtime.IsSparse
// for an error-returning wrapper.
func (r *Runtime) isSparse(v Value) bool {
	obj, ok := v.(*Object)
	if !ok {
		return false
	}
	if !isArray(obj) {
		return false
	}

	// The dense and sparse representations track their occupancy exactly, so
	// for untrapped arrays the answer does not require a scan.
	if !r.noFastPath {
		switch a := obj.self.(type) {
		case *arrayObject:
			dense := a.objCount == a.length
			if h := r.scanHook; h != nil {
				h.OnFastPath(obj, dense)
			}
			recordScan(reprDense, 0)
			return !dense
		case *sparseArrayObject:
			dense := int64(len(a.items)) == a.length
			if h := r.scanHook; h != nil {
				h.OnFastPath(obj, dense)
			}
			recordScan(reprSparse, 0)
			return !dense
		}
	}

	return r.isSparseSlow(obj)
}

// isSparseSlow is the generic scan: one length read followed by an ascending
// own-property walk that stops at the first missing index. It is the only
// path taken for proxies, virtualized arrays and wrapped Go slices, and for
// everything when the fast path is disabled.
func (r *Runtime) isSparseSlow(obj *Object) bool {
	l := toLength(obj.self.getStr("length", nil))
	if h := r.scanHook; h != nil {
		h.OnLengthRead(obj, l)
	}

	var checks int64
	sparse := false
	for i := int64(0); i < l; i++ {
		present := obj.self.hasOwnPropertyStr(strconv.FormatInt(i, 10))
		checks++
		if h := r.scanHook; h != nil {
			h.OnIndexCheck(obj, i, present)
		}
		if !present {
			sparse = true
			break
		}
	}
	recordScan(reprName(obj.self), checks)
	return sparse
}

func (r *Runtime) arrayproto_push(call FunctionCall) Value {
	obj := call.This.ToObject(r)
	l := toLength(obj.self.getStr("length", nil))
	nl := l + int64(len(call.Arguments))
	if nl > maxInt-1 {
		panic(r.newError(r.global.RangeError, "Invalid array length"))
	}
	for i, arg := range call.Arguments {
		obj.self.setOwn(intToValue(l+int64(i)), arg, true)
	}
	obj.self.setOwnStr("length", intToValue(nl), true)
	return intToValue(nl)
}

// arrayproto_join renders missing indices, undefined and null as empty
// strings, matching the standard behaviour.
func (r *Runtime) arrayproto_join(call FunctionCall) Value {
	o := call.This.ToObject(r)
	separator := ","
	if s := call.Argument(0); s != _undefined {
		separator = s.String()
	}
	l := toLength(o.self.getStr("length", nil))

	var sb strings.Builder
	for i := int64(0); i < l; i++ {
		if i > 0 {
			sb.WriteString(separator)
		}
		v := o.self.getStr(strconv.FormatInt(i, 10), nil)
		if v != nil && v != _undefined && v != _null {
			sb.WriteString(v.String())
		}
	}

	return newStringValue(sb.String())
}

func (r *Runtime) arrayproto_toString(call FunctionCall) Value {
	array := call.This.ToObject(r)
	f := array.self.getStr("join", nil)
	if fObj, ok := f.(*Object); ok {
		if f, ok := fObj.self.assertCallable(); ok {
			return f(FunctionCall{This: array})
		}
	}
	return r.objectproto_toString(FunctionCall{This: array})
}

func (r *Runtime) initArray() {
	r.global.ArrayPrototype = r.newArray(r.global.ObjectPrototype).val
	o := r.global.ArrayPrototype.self
	o._putProp("push", r.newNativeFunc(r.arrayproto_push, nil, "push", nil, 1), true, false, true)
	o._putProp("join", r.newNativeFunc(r.arrayproto_join, nil, "join", nil, 1), true, false, true)
	o._putProp("toString", r.newNativeFunc(r.arrayproto_toString, nil, "toString", nil, 0), true, false, true)

	r.global.Array = r.newNativeFuncConstruct(r.builtin_newArray, "Array", r.global.ArrayPrototype, 1)
	o = r.global.Array.self
	o._putProp("isArray", r.newNativeFunc(r.array_isArray, nil, "isArray", nil, 1), true, false, true)
	o._putProp("isSparse", r.newNativeFunc(r.array_isSparse, nil, "isSparse", nil, 1), true, false, true)
	o._putProp("of", r.newNativeFunc(r.array_of, nil, "of", nil, 0), true, false, true)

	r.addToGlobal("Array", r.global.Array)
}

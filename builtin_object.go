package lacuna

import (
	"fmt"
)

func (r *Runtime) builtin_Object(call FunctionCall) Value {
	if len(call.Arguments) > 0 {
		arg := call.Argument(0)
		if arg != _undefined && arg != _null {
			return arg.ToObject(r)
		}
	}
	return r.newBaseObject(r.global.ObjectPrototype, classObject).val
}

func (r *Runtime) builtin_newObject(args []Value, proto *Object) *Object {
	if len(args) > 0 {
		arg := args[0]
		if arg != _undefined && arg != _null {
			return arg.ToObject(r)
		}
	}
	if proto == nil {
		proto = r.global.ObjectPrototype
	}
	return r.newBaseObject(proto, classObject).val
}

func (r *Runtime) object_getOwnPropertyDescriptor(call FunctionCall) Value {
	o := r.toObject(call.Argument(0))
	propName := call.Argument(1).String()
	return r.valuePropToDescriptorObject(o.self.getOwnPropStr(propName))
}

func (r *Runtime) valuePropToDescriptorObject(desc Value) Value {
	if desc == nil {
		return _undefined
	}
	var writable, configurable, enumerable, accessor bool
	var get, set *Object
	var value Value
	if v, ok := desc.(*valueProperty); ok {
		writable = v.writable
		configurable = v.configurable
		enumerable = v.enumerable
		accessor = v.accessor
		value = v.value
		get = v.getterFunc
		set = v.setterFunc
	} else {
		writable = true
		configurable = true
		enumerable = true
		value = desc
	}

	ret := r.NewObject()
	obj := ret.self
	if !accessor {
		obj._putProp("value", value, true, true, true)
		obj._putProp("writable", valueBool(writable), true, true, true)
	} else {
		if get != nil {
			obj._putProp("get", get, true, true, true)
		} else {
			obj._putProp("get", _undefined, true, true, true)
		}
		if set != nil {
			obj._putProp("set", set, true, true, true)
		} else {
			obj._putProp("set", _undefined, true, true, true)
		}
	}
	obj._putProp("enumerable", valueBool(enumerable), true, true, true)
	obj._putProp("configurable", valueBool(configurable), true, true, true)

	return ret
}

func (r *Runtime) object_defineProperty(call FunctionCall) (ret Value) {
	if obj, ok := call.Argument(0).(*Object); ok {
		descr := r.toPropertyDescriptor(call.Argument(2))
		obj.self.defineOwnProperty(call.Argument(1), descr, true)
		ret = call.Argument(0)
	} else {
		r.typeErrorResult(true, "Object.defineProperty called on non-object")
	}
	return
}

func (r *Runtime) object_keys(call FunctionCall) Value {
	if obj, ok := call.Argument(0).(*Object); ok {
		return r.newArrayValues(obj.self.ownKeys(false, nil))
	}
	panic(r.NewTypeError("Object.keys called on non-object"))
}

func (r *Runtime) object_preventExtensions(call FunctionCall) (ret Value) {
	arg := call.Argument(0)
	if obj, ok := arg.(*Object); ok {
		obj.self.preventExtensions(false)
	}
	return arg
}

func (r *Runtime) object_isExtensible(call FunctionCall) Value {
	if obj, ok := call.Argument(0).(*Object); ok {
		return valueBool(obj.self.isExtensible())
	}
	return valueFalse
}

func (r *Runtime) objectproto_hasOwnProperty(call FunctionCall) Value {
	p := call.Argument(0)
	o := call.This.ToObject(r)
	if o.self.hasOwnProperty(p) {
		return valueTrue
	}
	return valueFalse
}

func (r *Runtime) objectproto_propertyIsEnumerable(call FunctionCall) Value {
	p := call.Argument(0)
	o := call.This.ToObject(r)
	pv := o.self.getOwnProp(p)
	if pv == nil {
		return valueFalse
	}
	if prop, ok := pv.(*valueProperty); ok {
		if !prop.enumerable {
			return valueFalse
		}
	}
	return valueTrue
}

func (r *Runtime) objectproto_toString(call FunctionCall) Value {
	switch o := call.This.(type) {
	case valueNull:
		return newStringValue("[object Null]")
	case valueUndefined:
		return newStringValue("[object Undefined]")
	case *Object:
		return newStringValue(fmt.Sprintf("[object %s]", o.self.className()))
	default:
		obj := call.This.ToObject(r)
		return newStringValue(fmt.Sprintf("[object %s]", obj.self.className()))
	}
}

func (r *Runtime) objectproto_valueOf(call FunctionCall) Value {
	return call.This.ToObject(r)
}

func (r *Runtime) initObject() {
	o := r.global.ObjectPrototype.self
	o._putProp("hasOwnProperty", r.newNativeFunc(r.objectproto_hasOwnProperty, nil, "hasOwnProperty", nil, 1), true, false, true)
	o._putProp("propertyIsEnumerable", r.newNativeFunc(r.objectproto_propertyIsEnumerable, nil, "propertyIsEnumerable", nil, 1), true, false, true)
	o._putProp("toString", r.newNativeFunc(r.objectproto_toString, nil, "toString", nil, 0), true, false, true)
	o._putProp("toLocaleString", r.newNativeFunc(r.objectproto_toString, nil, "toLocaleString", nil, 0), true, false, true)
	o._putProp("valueOf", r.newNativeFunc(r.objectproto_valueOf, nil, "valueOf", nil, 0), true, false, true)

	r.global.Object = r.newNativeFunc(r.builtin_Object, r.builtin_newObject, "Object", r.global.ObjectPrototype, 1)
	o = r.global.Object.self
	o._putProp("defineProperty", r.newNativeFunc(r.object_defineProperty, nil, "defineProperty", nil, 3), true, false, true)
	o._putProp("getOwnPropertyDescriptor", r.newNativeFunc(r.object_getOwnPropertyDescriptor, nil, "getOwnPropertyDescriptor", nil, 2), true, false, true)
	o._putProp("keys", r.newNativeFunc(r.object_keys, nil, "keys", nil, 1), true, false, true)
	o._putProp("preventExtensions", r.newNativeFunc(r.object_preventExtensions, nil, "preventExtensions", nil, 1), true, false, true)
	o._putProp("isExtensible", r.newNativeFunc(r.object_isExtensible, nil, "isExtensible", nil, 1), true, false, true)

	r.global.ObjectPrototype.self._putProp("constructor", r.global.Object, true, false, true)

	r.addToGlobal("Object", r.global.Object)
}

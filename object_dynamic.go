package lacuna

import (
	"reflect"
	"strconv"
)

/*
ReadonlyObject is an interface representing a handler for a readonly Object. Such an object can be created
using the Runtime.NewReadonlyObject() method.

Note that Runtime.ToValue() does not have any special treatment for ReadonlyObject. The only way to create
a readonly object is by using the Runtime.NewReadonlyObject() method. This is done deliberately to avoid
silent code breaks when this interface changes.
*/
type ReadonlyObject interface {
	// Get a property value for the key. May return nil if the property does not exist.
	Get(key string) Value
	// Has should return true if and only if the property exists.
	Has(key string) bool
	// Keys returns a list of all existing property keys. There are no checks for duplicates or to make sure
	// that the order conforms to https://262.ecma-international.org/#sec-ordinaryownpropertykeys
	Keys() []string
}

/*
DynamicObject is an interface representing a handler for a dynamic Object. Such an object can be created
using the Runtime.NewDynamicObject() method.

Note that Runtime.ToValue() does not have any special treatment for DynamicObject. The only way to create
a dynamic object is by using the Runtime.NewDynamicObject() method. This is done deliberately to avoid
silent code breaks when this interface changes.
*/
type DynamicObject interface {
	ReadonlyObject
	// Set a property value for the key. Return true if success, false otherwise.
	Set(key string, val Value) bool
	// Delete the property for the key. Returns true on success (note, that includes missing property).
	Delete(key string) bool
}

/*
ReadonlyArray is an interface representing a handler for a readonly array Object. Such an object can be created
using the Runtime.NewReadonlyArray() method.

Any integer property key or a string property key that can be parsed into an int value (including negative
ones) is treated as an index and passed to the trap methods of the ReadonlyArray. Note this is different from
the regular ECMAScript arrays which only support positive indexes up to 2^32-1.

A readonly array can never be sparse: hasOwnProperty(num) will return true for any num >= 0 && num < Len(),
so Array.isSparse() always reports false for such objects. Attempts to set or delete an index (or the length)
fail with a TypeError.

Note that Runtime.ToValue() does not have any special treatment for ReadonlyArray. The only way to create
a readonly array is by using the Runtime.NewReadonlyArray() method. This is done deliberately to avoid
silent code breaks when this interface changes.
*/
type ReadonlyArray interface {
	// Len returns the current array length.
	Len() int
	// Get an item at index idx. Note that idx may be any integer, negative or beyond the current length.
	Get(idx int) Value
}

/*
DynamicArray is an interface representing a handler for a dynamic array Object. Such an object can be created
using the Runtime.NewDynamicArray() method.

Any integer property key or a string property key that can be parsed into an int value (including negative
ones) is treated as an index and passed to the trap methods of the DynamicArray. Note this is different from
the regular ECMAScript arrays which only support positive indexes up to 2^32-1.

A dynamic array can never be sparse: hasOwnProperty(num) will return true for any num >= 0 && num < Len(),
so Array.isSparse() always reports false for such objects. Deleting an existing index is equivalent to setting
it to undefined. Note that this creates a slight peculiarity because hasOwnProperty() will still return true,
even after deletion.

Note that Runtime.ToValue() does not have any special treatment for DynamicArray. The only way to create
a dynamic array is by using the Runtime.NewDynamicArray() method. This is done deliberately to avoid
silent code breaks when this interface changes.
*/
type DynamicArray interface {
	ReadonlyArray
	// Set an item at index idx. Note that idx may be any integer, negative or beyond the current length.
	// The expected behaviour when it's beyond length is that the array's length is increased to accommodate
	// the item. All elements in the 'new' section of the array should be zeroed.
	Set(idx int, val Value) bool
	// SetLen is called when the array's 'length' property is changed. If the length is increased all elements in the
	// 'new' section of the array should be zeroed.
	SetLen(int) bool
}

type baseRWObject struct {
	val       *Object
	prototype *Object
}

type readonlyObject struct {
	baseRWObject
	d        ReadonlyObject
	readonly bool
}

func (o *readonlyObject) getDynamicObject() (do DynamicObject, ok bool) {
	do, ok = o.d.(DynamicObject)
	return
}

type dynamicObject struct {
	readonlyObject
	d DynamicObject
}

type readonlyArray struct {
	baseRWObject
	a        ReadonlyArray
	readonly bool
}

func (o *readonlyArray) getDynamicArray() (da DynamicArray, ok bool) {
	da, ok = o.a.(DynamicArray)
	return
}

type dynamicArray struct {
	readonlyArray
	a DynamicArray
}

/*
NewReadonlyObject creates an Object backed by the provided ReadonlyObject handler.

All properties of this Object are enumerable, non-writable and non-configurable data properties. Attempts
to set, define or delete a property fail with a TypeError.

The Object is always extensible and cannot be made non-extensible. Object.preventExtensions() will fail.

The Object's prototype is initially set to Object.prototype, but can be changed using regular mechanisms
(Object.SetPrototype() in Go or Object.setPrototypeOf() in JS).

Export() returns the original ReadonlyObject.

This mechanism is similar to ECMAScript Proxy, however because all properties are enumerable and the object
is always extensible there is no need for invariant checks which removes the need to have a target object and
makes it a lot more efficient.
*/
func (r *Runtime) NewReadonlyObject(d ReadonlyObject) *Object {
	v := &Object{runtime: r}
	o := &readonlyObject{
		readonly: true,
		d:        d,
		baseRWObject: baseRWObject{
			val:       v,
			prototype: r.global.ObjectPrototype,
		},
	}
	v.self = o
	return v
}

/*
NewDynamicObject creates an Object backed by the provided DynamicObject handler.

All properties of this Object are Writable, Enumerable and Configurable data properties. Any attempt to define
a property that does not conform to this will fail.

The Object is always extensible and cannot be made non-extensible. Object.preventExtensions() will fail.

The Object's prototype is initially set to Object.prototype, but can be changed using regular mechanisms
(Object.SetPrototype() in Go or Object.setPrototypeOf() in JS).

Export() returns the original DynamicObject.

This mechanism is similar to ECMAScript Proxy, however because all properties are enumerable and the object
is always extensible there is no need for invariant checks which removes the need to have a target object and
makes it a lot more efficient.
*/
func (r *Runtime) NewDynamicObject(d DynamicObject) *Object {
	v := &Object{runtime: r}
	o := &dynamicObject{
		d: d,
		readonlyObject: readonlyObject{baseRWObject: baseRWObject{
			val:       v,
			prototype: r.global.ObjectPrototype,
		},
			d: d,
		},
	}
	v.self = o
	return v
}

/*
NewReadonlyArray creates an array Object backed by the provided ReadonlyArray handler.
It is similar to NewReadonlyObject, the differences are:

- the Object is an array (i.e. Array.isArray() will return true and it will have the length property).

- the prototype will be initially set to Array.prototype.

- the Object cannot have any own string properties except for the 'length'.
*/
func (r *Runtime) NewReadonlyArray(a ReadonlyArray) *Object {
	v := &Object{runtime: r}
	o := &readonlyArray{
		readonly: true,
		a:        a,
		baseRWObject: baseRWObject{
			val:       v,
			prototype: r.global.ArrayPrototype,
		},
	}
	v.self = o
	return v
}

/*
NewDynamicArray creates an array Object backed by the provided DynamicArray handler.
It is similar to NewDynamicObject, the differences are:

- the Object is an array (i.e. Array.isArray() will return true and it will have the length property).

- the prototype will be initially set to Array.prototype.

- the Object cannot have any own string properties except for the 'length'.
*/
func (r *Runtime) NewDynamicArray(a DynamicArray) *Object {
	v := &Object{runtime: r}
	o := &dynamicArray{
		a: a,
		readonlyArray: readonlyArray{baseRWObject: baseRWObject{
			val:       v,
			prototype: r.global.ArrayPrototype,
		},
			a: a,
		},
	}
	v.self = o
	return v
}

// strToInt parses a property key as an integer. Unlike strToIdx it accepts
// negative values, matching the contract of the ReadonlyArray handlers.
func strToInt(s string) (int, bool) {
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	return 0, false
}

func genericTryPrimitive(obj *Object, methodName string) Value {
	if method, ok := obj.self.getStr(methodName, nil).(*Object); ok {
		if call, ok := method.self.assertCallable(); ok {
			v := call(FunctionCall{
				This: obj,
			})
			if _, fail := v.(*Object); !fail {
				return v
			}
		}
	}
	return nil
}

func genericToPrimitiveNumber(obj *Object) Value {
	if v := genericTryPrimitive(obj, "valueOf"); v != nil {
		return v
	}

	if v := genericTryPrimitive(obj, "toString"); v != nil {
		return v
	}

	obj.runtime.typeErrorResult(true, "Could not convert %v to primitive", obj)
	return nil
}

func genericToPrimitiveString(obj *Object) Value {
	if v := genericTryPrimitive(obj, "toString"); v != nil {
		return v
	}

	if v := genericTryPrimitive(obj, "valueOf"); v != nil {
		return v
	}

	obj.runtime.typeErrorResult(true, "Could not convert %v to primitive", obj)
	return nil
}

func (*readonlyObject) className() string {
	return classObject
}

func (o *baseRWObject) getParentStr(p string, receiver Value) Value {
	if proto := o.prototype; proto != nil {
		if receiver == nil {
			return proto.self.getStr(p, o.val)
		}
		return proto.self.getStr(p, receiver)
	}
	return nil
}

func (o *readonlyObject) getStr(p string, receiver Value) Value {
	prop := o.d.Get(p)
	if prop == nil {
		return o.getParentStr(p, receiver)
	}
	return prop
}

func (o *readonlyObject) get(p Value, receiver Value) Value {
	return o.getStr(p.String(), receiver)
}

func (o *readonlyObject) getOwnPropStr(name string) Value {
	v := o.d.Get(name)
	if v != nil && o.readonly {
		// report what setOwnStr enforces
		return &valueProperty{
			value:      v,
			enumerable: true,
		}
	}
	return v
}

func (o *readonlyObject) getOwnProp(p Value) Value {
	return o.getOwnPropStr(p.String())
}

func (o *readonlyObject) _set(prop string, v Value, throw bool) bool {
	if !o.readonly {
		if do, ok := o.getDynamicObject(); ok {
			if do.Set(prop, v) {
				return true
			}
			o.val.runtime.typeErrorResult(throw, "'Set' on a dynamic object returned false")
			return false
		}
	}
	o.val.runtime.typeErrorResult(throw, "Cannot set property %q on a readonly object", prop)
	return false
}

func (o *readonlyObject) setOwnStr(p string, v Value, throw bool) {
	if !o.d.Has(p) {
		if proto := o.prototype; proto != nil {
			// we know it's foreign because prototype loops are not allowed
			if proto.self.setForeignStr(p, v, o.val, throw) {
				return
			}
		}
	}
	o._set(p, v, throw)
}

func (o *readonlyObject) setOwn(p Value, v Value, throw bool) {
	o.setOwnStr(p.String(), v, throw)
}

func (o *baseRWObject) setParentForeignStr(p string, v, receiver Value, throw bool) bool {
	if proto := o.prototype; proto != nil {
		if receiver != proto {
			return proto.self.setForeignStr(p, v, receiver, throw)
		}
		proto.self.setOwnStr(p, v, throw)
		return true
	}
	return false
}

func (o *readonlyObject) setForeignStr(p string, v, receiver Value, throw bool) bool {
	if !o.d.Has(p) {
		return o.setParentForeignStr(p, v, receiver, throw)
	}
	if o.readonly {
		// a non-writable inherited property cannot be shadowed by assignment
		o._set(p, v, throw)
		return true
	}
	return false
}

func (o *readonlyObject) setForeign(p Value, v, receiver Value, throw bool) bool {
	return o.setForeignStr(p.String(), v, receiver, throw)
}

func (o *readonlyObject) hasPropertyStr(name string) bool {
	if o.hasOwnPropertyStr(name) {
		return true
	}
	if proto := o.prototype; proto != nil {
		return proto.self.hasPropertyStr(name)
	}
	return false
}

func (o *readonlyObject) hasProperty(n Value) bool {
	return o.hasPropertyStr(n.String())
}

func (o *readonlyObject) hasOwnPropertyStr(name string) bool {
	return o.d.Has(name)
}

func (o *readonlyObject) hasOwnProperty(n Value) bool {
	return o.d.Has(n.String())
}

func (o *baseRWObject) checkReadonlyObjectPropertyDescr(name string, descr PropertyDescriptor, throw bool) bool {
	if descr.Getter != nil || descr.Setter != nil {
		o.val.runtime.typeErrorResult(throw, "Readonly objects do not support accessor properties")
		return false
	}
	if descr.Writable == FLAG_FALSE {
		o.val.runtime.typeErrorResult(throw, "Readonly object field %q cannot be made read-only", name)
		return false
	}
	if descr.Enumerable == FLAG_FALSE {
		o.val.runtime.typeErrorResult(throw, "Readonly object field %q cannot be made non-enumerable", name)
		return false
	}
	if descr.Configurable == FLAG_FALSE {
		o.val.runtime.typeErrorResult(throw, "Readonly object field %q cannot be made non-configurable", name)
		return false
	}
	return true
}

func (o *readonlyObject) defineOwnPropertyStr(name string, desc PropertyDescriptor, throw bool) bool {
	if o.checkReadonlyObjectPropertyDescr(name, desc, throw) {
		return o._set(name, desc.Value, throw)
	}
	return false
}

func (o *readonlyObject) defineOwnProperty(n Value, desc PropertyDescriptor, throw bool) bool {
	return o.defineOwnPropertyStr(n.String(), desc, throw)
}

func (o *readonlyObject) _delete(prop string, throw bool) bool {
	if !o.readonly {
		if do, ok := o.getDynamicObject(); ok {
			if do.Delete(prop) {
				return true
			}
			o.val.runtime.typeErrorResult(throw, "Could not delete property %q of a dynamic object", prop)
			return false
		}
	}
	if o.d.Has(prop) {
		o.val.runtime.typeErrorResult(throw, "Cannot delete property %q of a readonly object", prop)
		return false
	}
	return true
}

func (o *readonlyObject) deleteStr(name string, throw bool) bool {
	return o._delete(name, throw)
}

func (o *readonlyObject) delete(n Value, throw bool) bool {
	return o._delete(n.String(), throw)
}

func (o *baseRWObject) toPrimitiveNumber() Value {
	return genericToPrimitiveNumber(o.val)
}

func (o *baseRWObject) toPrimitiveString() Value {
	return genericToPrimitiveString(o.val)
}

func (o *baseRWObject) toPrimitive() Value {
	return genericToPrimitiveString(o.val)
}

func (o *baseRWObject) assertCallable() (call func(FunctionCall) Value, ok bool) {
	return nil, false
}

func (o *baseRWObject) proto() *Object {
	return o.prototype
}

func (o *baseRWObject) setProto(proto *Object, throw bool) bool {
	o.prototype = proto
	return true
}

func (*baseRWObject) isExtensible() bool {
	return true
}

func (o *baseRWObject) preventExtensions(throw bool) bool {
	o.val.runtime.typeErrorResult(throw, "Cannot make a readonly object non-extensible")
	return false
}

func (o *readonlyObject) export() interface{} {
	return o.d
}

func (o *readonlyObject) exportType() reflect.Type {
	return reflect.TypeOf(o.d)
}

func (o *readonlyObject) equal(impl objectImpl) bool {
	if other, ok := impl.(*readonlyObject); ok {
		return o.d == other.d
	}
	return false
}

func (o *readonlyObject) ownKeys(_ bool, accum []Value) []Value {
	keys := o.d.Keys()
	if l := len(accum) + len(keys); l > cap(accum) {
		oldAccum := accum
		accum = make([]Value, len(accum), l)
		copy(accum, oldAccum)
	}
	for _, key := range keys {
		accum = append(accum, newStringValue(key))
	}
	return accum
}

func (*baseRWObject) _putProp(name string, value Value, writable, enumerable, configurable bool) Value {
	return nil
}

func (a *readonlyArray) className() string {
	return classArray
}

func (a *readonlyArray) getStr(p string, receiver Value) Value {
	if p == "length" {
		return intToValue(int64(a.a.Len()))
	}
	if idx, ok := strToInt(p); ok {
		return a.a.Get(idx)
	}
	return a.getParentStr(p, receiver)
}

func (a *readonlyArray) get(p Value, receiver Value) Value {
	return a.getStr(p.String(), receiver)
}

func (a *readonlyArray) getOwnPropStr(name string) Value {
	if name == "length" {
		return &valueProperty{
			value:    intToValue(int64(a.a.Len())),
			writable: !a.readonly,
		}
	}
	if idx, ok := strToInt(name); ok {
		v := a.a.Get(idx)
		if v != nil && a.readonly {
			return &valueProperty{
				value:      v,
				enumerable: true,
			}
		}
		return v
	}
	return nil
}

func (a *readonlyArray) getOwnProp(p Value) Value {
	return a.getOwnPropStr(p.String())
}

func (a *readonlyArray) _setLen(v Value, throw bool) bool {
	if !a.readonly {
		if da, ok := a.getDynamicArray(); ok {
			if da.SetLen(int(v.ToInteger())) {
				return true
			}
			a.val.runtime.typeErrorResult(throw, "'SetLen' on a dynamic array returned false")
			return false
		}
	}
	a.val.runtime.typeErrorResult(throw, "Cannot assign to length of a readonly array")
	return false
}

func (a *readonlyArray) _setIdx(idx int, v Value, throw bool) bool {
	if !a.readonly {
		if da, ok := a.getDynamicArray(); ok {
			if da.Set(idx, v) {
				return true
			}
			a.val.runtime.typeErrorResult(throw, "'Set' on a dynamic array returned false")
			return false
		}
	}
	a.val.runtime.typeErrorResult(throw, "Cannot assign to index %d of a readonly array", idx)
	return false
}

func (a *readonlyArray) setOwnStr(p string, v Value, throw bool) {
	if p == "length" {
		a._setLen(v, throw)
		return
	}
	if idx, ok := strToInt(p); ok {
		a._setIdx(idx, v, throw)
		return
	}
	a.val.runtime.typeErrorResult(throw, "Cannot set property %q on a readonly array", p)
}

func (a *readonlyArray) setOwn(p Value, v Value, throw bool) {
	a.setOwnStr(p.String(), v, throw)
}

func (a *readonlyArray) setForeignStr(p string, v, receiver Value, throw bool) bool {
	if a.readonly && a.hasOwnPropertyStr(p) {
		a.setOwnStr(p, v, throw)
		return true
	}
	return a.setParentForeignStr(p, v, receiver, throw)
}

func (a *readonlyArray) setForeign(p Value, v, receiver Value, throw bool) bool {
	return a.setForeignStr(p.String(), v, receiver, throw)
}

func (a *readonlyArray) hasPropertyStr(name string) bool {
	if a.hasOwnPropertyStr(name) {
		return true
	}
	if proto := a.prototype; proto != nil {
		return proto.self.hasPropertyStr(name)
	}
	return false
}

func (a *readonlyArray) hasProperty(n Value) bool {
	return a.hasPropertyStr(n.String())
}

func (a *readonlyArray) _has(idx int) bool {
	return idx >= 0 && idx < a.a.Len()
}

func (a *readonlyArray) hasOwnPropertyStr(name string) bool {
	if name == "length" {
		return true
	}
	if idx, ok := strToInt(name); ok {
		return a._has(idx)
	}
	return false
}

func (a *readonlyArray) hasOwnProperty(n Value) bool {
	return a.hasOwnPropertyStr(n.String())
}

func (a *readonlyArray) defineOwnPropertyStr(name string, desc PropertyDescriptor, throw bool) bool {
	if a.checkReadonlyObjectPropertyDescr(name, desc, throw) {
		if idx, ok := strToInt(name); ok {
			return a._setIdx(idx, desc.Value, throw)
		}
		a.val.runtime.typeErrorResult(throw, "Cannot define property %q on a readonly array", name)
	}
	return false
}

func (a *readonlyArray) defineOwnProperty(n Value, desc PropertyDescriptor, throw bool) bool {
	return a.defineOwnPropertyStr(n.String(), desc, throw)
}

func (a *readonlyArray) _delete(idx int, throw bool) bool {
	if a._has(idx) {
		return a._setIdx(idx, _undefined, throw)
	}
	return true
}

func (a *readonlyArray) deleteStr(name string, throw bool) bool {
	if idx, ok := strToInt(name); ok {
		return a._delete(idx, throw)
	}
	if a.hasOwnPropertyStr(name) {
		a.val.runtime.typeErrorResult(throw, "Cannot delete property %q on a readonly array", name)
		return false
	}
	return true
}

func (a *readonlyArray) delete(n Value, throw bool) bool {
	return a.deleteStr(n.String(), throw)
}

func (a *readonlyArray) export() interface{} {
	return a.a
}

func (a *readonlyArray) exportType() reflect.Type {
	return reflect.TypeOf(a.a)
}

func (a *readonlyArray) equal(impl objectImpl) bool {
	if other, ok := impl.(*readonlyArray); ok {
		return a == other
	}
	return false
}

func (a *readonlyArray) ownKeys(all bool, accum []Value) []Value {
	al := a.a.Len()
	l := len(accum) + al
	if all {
		l++
	}
	if l > cap(accum) {
		oldAccum := accum
		accum = make([]Value, len(oldAccum), l)
		copy(accum, oldAccum)
	}
	for i := 0; i < al; i++ {
		accum = append(accum, newStringValue(strconv.Itoa(i)))
	}
	if all {
		accum = append(accum, newStringValue("length"))
	}
	return accum
}

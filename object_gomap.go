package lacuna

import (
	"reflect"
)

type objectGoMapSimple struct {
	baseObject
	data map[string]interface{}
}

func (o *objectGoMapSimple) init() {
	o.baseObject.init()
	o.prototype = o.val.runtime.global.ObjectPrototype
	o.class = classObject
	o.extensible = true
}

func (o *objectGoMapSimple) _getStr(name string) Value {
	v, exists := o.data[name]
	if !exists {
		return nil
	}
	return o.val.runtime.ToValue(v)
}

func (o *objectGoMapSimple) get(p Value, receiver Value) Value {
	return o.getStr(p.String(), receiver)
}

func (o *objectGoMapSimple) getStr(name string, receiver Value) Value {
	if v := o._getStr(name); v != nil {
		return v
	}
	return o.baseObject.getStr(name, receiver)
}

func (o *objectGoMapSimple) getOwnPropStr(name string) Value {
	if v := o._getStr(name); v != nil {
		return v
	}
	return o.baseObject.getOwnPropStr(name)
}

func (o *objectGoMapSimple) getOwnProp(n Value) Value {
	return o.getOwnPropStr(n.String())
}

func (o *objectGoMapSimple) setOwn(n Value, val Value, throw bool) {
	o.setOwnStr(n.String(), val, throw)
}

func (o *objectGoMapSimple) setOwnStr(name string, val Value, throw bool) {
	if _, exists := o.data[name]; exists {
		o.data[name] = val.Export()
		return
	}
	if name == __proto__ {
		o._setProto(val)
		return
	}
	if proto := o.prototype; proto != nil {
		// we know it's foreign because prototype loops are not allowed
		if proto.self.setForeignStr(name, val, o.val, throw) {
			return
		}
	}
	// new property
	if !o.extensible {
		o.val.runtime.typeErrorResult(throw, "Cannot add property %s, object is not extensible", name)
	} else {
		o.data[name] = val.Export()
	}
}

func trueValIfPresent(present bool) Value {
	if present {
		return valueTrue
	}
	return nil
}

func (o *objectGoMapSimple) setForeign(name Value, val, receiver Value, throw bool) bool {
	return o._setForeign(name, o.getOwnProp(name), val, receiver, throw)
}

func (o *objectGoMapSimple) setForeignStr(name string, val, receiver Value, throw bool) bool {
	return o._setForeignStr(name, trueValIfPresent(o._hasStr(name)), val, receiver, throw)
}

func (o *objectGoMapSimple) _hasStr(name string) bool {
	_, exists := o.data[name]
	return exists
}

func (o *objectGoMapSimple) hasOwnProperty(n Value) bool {
	return o._hasStr(n.String())
}

func (o *objectGoMapSimple) hasOwnPropertyStr(name string) bool {
	return o._hasStr(name)
}

func (o *objectGoMapSimple) defineOwnPropertyStr(name string, descr PropertyDescriptor, throw bool) bool {
	if !o.val.runtime.checkHostObjectPropertyDescr(name, descr, throw) {
		return false
	}

	if o.extensible || o._hasStr(name) {
		o.data[name] = descr.Value.Export()
		return true
	}

	o.val.runtime.typeErrorResult(throw, "Cannot define property %s, object is not extensible", name)
	return false
}

func (o *objectGoMapSimple) defineOwnProperty(n Value, descr PropertyDescriptor, throw bool) bool {
	return o.defineOwnPropertyStr(n.String(), descr, throw)
}

func (o *objectGoMapSimple) deleteStr(name string, _ bool) bool {
	delete(o.data, name)
	return true
}

func (o *objectGoMapSimple) delete(n Value, throw bool) bool {
	return o.deleteStr(n.String(), throw)
}

func (o *objectGoMapSimple) ownKeys(_ bool, accum []Value) []Value {
	// all own keys are enumerable
	for key := range o.data {
		accum = append(accum, newStringValue(key))
	}
	return accum
}

func (o *objectGoMapSimple) export() interface{} {
	return o.data
}

func (o *objectGoMapSimple) exportType() reflect.Type {
	return reflectTypeMap
}

func (o *objectGoMapSimple) equal(other objectImpl) bool {
	if other, ok := other.(*objectGoMapSimple); ok {
		return o == other
	}
	return false
}

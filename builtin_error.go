package lacuna

func (r *Runtime) builtin_Error(args []Value, proto *Object) *Object {
	obj := r.newBaseObject(proto, classError)
	if len(args) > 0 && args[0] != _undefined {
		obj._putProp("message", args[0].toString(), true, false, true)
	}
	return obj.val
}

func (r *Runtime) error_toString(call FunctionCall) Value {
	obj := call.This.ToObject(r).self
	msg := obj.getStr("message", nil)
	name := obj.getStr("name", nil)
	var nameStr, msgStr valueString
	if name == nil || name == _undefined {
		nameStr = stringError
	} else {
		nameStr = name.toString()
	}
	if msg == nil || msg == _undefined {
		msgStr = stringEmpty
	} else {
		msgStr = msg.toString()
	}

	if nameStr == stringEmpty {
		return msgStr
	}
	if msgStr == stringEmpty {
		return nameStr
	}
	return nameStr + ": " + msgStr
}

func (r *Runtime) createErrorPrototype(name valueString) *Object {
	o := r.newBaseObject(r.global.ErrorPrototype, classError)
	o._putProp("message", stringEmpty, true, false, true)
	o._putProp("name", name, true, false, true)
	return o.val
}

func (r *Runtime) initErrors() {
	r.global.ErrorPrototype = r.newBaseObject(r.global.ObjectPrototype, classError).val
	o := r.global.ErrorPrototype.self
	o._putProp("message", stringEmpty, true, false, true)
	o._putProp("name", stringError, true, false, true)
	o._putProp("toString", r.newNativeFunc(r.error_toString, nil, "toString", nil, 0), true, false, true)

	r.global.Error = r.newNativeFuncConstruct(r.builtin_Error, "Error", r.global.ErrorPrototype, 1)
	r.addToGlobal("Error", r.global.Error)

	r.global.TypeErrorPrototype = r.createErrorPrototype(stringTypeError)
	r.global.TypeError = r.newNativeFuncConstructProto(r.builtin_Error, "TypeError", r.global.TypeErrorPrototype, r.global.Error, 1)
	r.addToGlobal("TypeError", r.global.TypeError)

	r.global.RangeErrorPrototype = r.createErrorPrototype(stringRangeError)
	r.global.RangeError = r.newNativeFuncConstructProto(r.builtin_Error, "RangeError", r.global.RangeErrorPrototype, r.global.Error, 1)
	r.addToGlobal("RangeError", r.global.RangeError)
}

package gospin

import (
	"fmt"

	"github.com/njchilds90/gospin/symbolic"
)

// ============================================================
// JSON forms of kets, states and operators
// ============================================================
//
// A ket is {"basis": "Jz", "j": E, "m": E} with optional "jn": [E, ...]
// and "coupling": [[n1, n2, E], ...] for coupled kets, where E is an
// expression object, an expression string or a number. A state is either a
// ket or {"terms": [{"coeff": E, "kets": [ket, ...]}, ...]}.

// KetJSON returns the JSON form of k.
func KetJSON(k Ket) map[string]interface{} {
	out := map[string]interface{}{
		"basis": k.basis.String(),
		"j":     symbolic.JSONValue(k.j),
		"m":     symbolic.JSONValue(k.m),
	}
	if k.IsCoupled() {
		jn := make([]interface{}, len(k.jn))
		for i, ji := range k.jn {
			jn[i] = symbolic.JSONValue(ji)
		}
		steps := make([]interface{}, len(k.coupling))
		for i, c := range k.coupling {
			steps[i] = []interface{}{c.N1, c.N2, symbolic.JSONValue(c.J)}
		}
		out["jn"] = jn
		out["coupling"] = steps
	}
	return out
}

// StateJSON returns the JSON form of s.
func StateJSON(s State) map[string]interface{} {
	terms := make([]interface{}, len(s.terms))
	for i, t := range s.terms {
		kets := make([]interface{}, len(t.Kets))
		for k, ket := range t.Kets {
			kets[k] = KetJSON(ket)
		}
		terms[i] = map[string]interface{}{"coeff": symbolic.JSONValue(t.Coeff), "kets": kets}
	}
	return map[string]interface{}{"terms": terms}
}

// ExprFromValue decodes an expression given as a JSON object, a string in
// the parser syntax or a number.
func ExprFromValue(v interface{}) (symbolic.Expr, error) {
	switch x := v.(type) {
	case map[string]interface{}:
		return symbolic.FromJSON(x)
	case string:
		return symbolic.Parse(x)
	case float64:
		return symbolic.FromJSON(map[string]interface{}{"type": "num", "value": x})
	case int:
		return symbolic.N(int64(x)), nil
	}
	return symbolic.Expr{}, fmt.Errorf("gospin: cannot read an expression from %T", v)
}

// KetFromJSON decodes a ket.
func KetFromJSON(v map[string]interface{}) (Ket, error) {
	b := BasisZ
	if raw, ok := v["basis"]; ok {
		s, ok := raw.(string)
		if !ok {
			return Ket{}, fmt.Errorf("gospin: ket basis must be a string")
		}
		var err error
		if b, err = ParseBasis(s); err != nil {
			return Ket{}, err
		}
	}
	j, err := field(v, "j")
	if err != nil {
		return Ket{}, err
	}
	m, err := field(v, "m")
	if err != nil {
		return Ket{}, err
	}
	rawJn, ok := v["jn"]
	if !ok {
		return NewKet(b, j, m)
	}
	list, ok := rawJn.([]interface{})
	if !ok {
		return Ket{}, fmt.Errorf("gospin: ket jn must be an array")
	}
	jn := make([]symbolic.Expr, len(list))
	for i, x := range list {
		if jn[i], err = ExprFromValue(x); err != nil {
			return Ket{}, fmt.Errorf("gospin: ket jn[%d]: %w", i, err)
		}
	}
	var steps []CouplingStep
	if rawSteps, ok := v["coupling"]; ok {
		list, ok := rawSteps.([]interface{})
		if !ok {
			return Ket{}, fmt.Errorf("gospin: ket coupling must be an array")
		}
		for i, x := range list {
			st, err := stepFromJSON(x)
			if err != nil {
				return Ket{}, fmt.Errorf("gospin: ket coupling[%d]: %w", i, err)
			}
			steps = append(steps, st)
		}
	}
	return NewCoupledKet(b, j, m, jn, steps...)
}

func stepFromJSON(v interface{}) (CouplingStep, error) {
	triple, ok := v.([]interface{})
	if !ok || len(triple) != 3 {
		return CouplingStep{}, fmt.Errorf("want [n1, n2, j]")
	}
	n1, ok1 := triple[0].(float64)
	n2, ok2 := triple[1].(float64)
	if !ok1 || !ok2 {
		return CouplingStep{}, fmt.Errorf("space numbers must be integers")
	}
	j, err := ExprFromValue(triple[2])
	if err != nil {
		return CouplingStep{}, err
	}
	return CouplingStep{N1: int(n1), N2: int(n2), J: j}, nil
}

// StateFromJSON decodes a state or a single ket.
func StateFromJSON(v map[string]interface{}) (State, error) {
	rawTerms, ok := v["terms"]
	if !ok {
		k, err := KetFromJSON(v)
		if err != nil {
			return State{}, err
		}
		return k.State(), nil
	}
	list, ok := rawTerms.([]interface{})
	if !ok {
		return State{}, fmt.Errorf("gospin: state terms must be an array")
	}
	ts := make([]StateTerm, 0, len(list))
	for i, x := range list {
		obj, ok := x.(map[string]interface{})
		if !ok {
			return State{}, fmt.Errorf("gospin: state term %d must be an object", i)
		}
		coeff := symbolic.N(1)
		if raw, ok := obj["coeff"]; ok {
			var err error
			if coeff, err = ExprFromValue(raw); err != nil {
				return State{}, fmt.Errorf("gospin: state term %d coeff: %w", i, err)
			}
		}
		kets, ok := obj["kets"].([]interface{})
		if !ok || len(kets) == 0 {
			return State{}, fmt.Errorf("gospin: state term %d needs a non-empty kets array", i)
		}
		t := StateTerm{Coeff: coeff}
		for n, rk := range kets {
			kobj, ok := rk.(map[string]interface{})
			if !ok {
				return State{}, fmt.Errorf("gospin: state term %d ket %d must be an object", i, n)
			}
			k, err := KetFromJSON(kobj)
			if err != nil {
				return State{}, err
			}
			t.Kets = append(t.Kets, k)
		}
		ts = append(ts, t)
	}
	return newState(ts), nil
}

func field(v map[string]interface{}, key string) (symbolic.Expr, error) {
	raw, ok := v[key]
	if !ok {
		return symbolic.Expr{}, fmt.Errorf("gospin: missing %q", key)
	}
	e, err := ExprFromValue(raw)
	if err != nil {
		return symbolic.Expr{}, fmt.Errorf("gospin: %q: %w", key, err)
	}
	return e, nil
}

// OperatorFromValue decodes an operator: a spin operator name such as "Jx"
// or "J+", an array of names (null or "1" for the identity) for an
// uncoupled operator, or {"rotation": [alpha, beta, gamma]}.
func OperatorFromValue(v interface{}) (Operator, error) {
	switch x := v.(type) {
	case string:
		op, err := ParseSpinOp(x)
		if err != nil {
			return nil, err
		}
		return op, nil
	case []interface{}:
		ops := make([]Operator, len(x))
		for i, item := range x {
			if item == nil || item == "1" {
				continue
			}
			op, err := OperatorFromValue(item)
			if err != nil {
				return nil, err
			}
			ops[i] = op
		}
		return NewTensorOp(ops...), nil
	case map[string]interface{}:
		angles, ok := x["rotation"].([]interface{})
		if !ok || len(angles) != 3 {
			return nil, fmt.Errorf("gospin: rotation needs [alpha, beta, gamma]")
		}
		var e [3]symbolic.Expr
		for i, a := range angles {
			var err error
			if e[i], err = ExprFromValue(a); err != nil {
				return nil, err
			}
		}
		return NewRotation(e[0], e[1], e[2]), nil
	}
	return nil, fmt.Errorf("gospin: cannot read an operator from %T", v)
}

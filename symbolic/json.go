package symbolic

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// ============================================================
// JSON Serialization
// ============================================================
//
// Expressions travel as tagged trees:
//
//	{"type":"num","value":"-3/2"}
//	{"type":"sym","name":"beta"}          ("I" is the imaginary unit)
//	{"type":"add","terms":[...]}
//	{"type":"mul","factors":[...]}
//	{"type":"pow","base":{...},"exp":{...}}
//	{"type":"func","name":"cos","arg":{...}}   or "args":[...]

func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(toJSONValue(e))
	return string(b), err
}

// JSONValue returns the tree form of e, ready for encoding/json.
func JSONValue(e Expr) map[string]interface{} { return toJSONValue(e) }

func toJSONValue(e Expr) map[string]interface{} {
	switch len(e.terms) {
	case 0:
		return numJSON(new(big.Rat))
	case 1:
		return e.terms[0].toJSON()
	}
	terms := make([]interface{}, len(e.terms))
	for i, t := range e.terms {
		terms[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": terms}
}

func numJSON(r *big.Rat) map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": r.RatString()}
}

func (n Num) toJSON() map[string]interface{} {
	us := n.units()
	terms := make([]interface{}, 0, len(us))
	for _, u := range us {
		c := new(big.Rat).SetFrac(u.p, u.q)
		if u.neg {
			c.Neg(c)
		}
		factors := []interface{}{numJSON(c)}
		if u.rad.Cmp(bigOne) != 0 {
			factors = append(factors, map[string]interface{}{
				"type": "func", "name": "sqrt",
				"arg": numJSON(new(big.Rat).SetInt(u.rad)),
			})
		}
		if u.imag {
			factors = append(factors, map[string]interface{}{"type": "sym", "name": "I"})
		}
		if len(factors) == 1 {
			terms = append(terms, factors[0])
			continue
		}
		terms = append(terms, map[string]interface{}{"type": "mul", "factors": factors})
	}
	if len(terms) == 1 {
		return terms[0].(map[string]interface{})
	}
	return map[string]interface{}{"type": "add", "terms": terms}
}

func (t term) toJSON() map[string]interface{} {
	var factors []interface{}
	if !t.coeff.IsOne() || len(t.mono.factors) == 0 {
		factors = append(factors, t.coeff.toJSON())
	}
	for _, f := range t.mono.factors {
		a := f.a.toJSON()
		if f.pow == 1 {
			factors = append(factors, a)
			continue
		}
		factors = append(factors, map[string]interface{}{
			"type": "pow", "base": a, "exp": numJSON(big.NewRat(int64(f.pow), 1)),
		})
	}
	if len(factors) == 1 {
		return factors[0].(map[string]interface{})
	}
	return map[string]interface{}{"type": "mul", "factors": factors}
}

// ParseJSON decodes a JSON document into an expression.
func ParseJSON(data []byte) (Expr, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Expr{}, fmt.Errorf("symbolic: %w", err)
	}
	return FromJSON(raw)
}

func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return Expr{}, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return Expr{}, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return Expr{}, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (map[string]interface{}, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		return m, nil
	}

	subExprArray := func(field string) ([]Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]Expr, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			e, err := FromJSON(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
			}
			out[i] = e
		}
		return out, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		var r *big.Rat
		switch v := data["value"].(type) {
		case string:
			if v == "" {
				return Expr{}, fmt.Errorf("num: 'value' must be a non-empty string")
			}
			var ok bool
			if r, ok = new(big.Rat).SetString(v); !ok {
				return Expr{}, fmt.Errorf("invalid num value: %s", v)
			}
		case float64:
			r = new(big.Rat)
			if r.SetFloat64(v) == nil {
				return Expr{}, fmt.Errorf("invalid num value: %v", v)
			}
		default:
			return Expr{}, fmt.Errorf("num: 'value' must be a string or number")
		}
		return Rat(r), nil

	case "sym":
		name, err := subString("name")
		if err != nil {
			return Expr{}, err
		}
		if name == "I" {
			return I(), nil
		}
		return S(name), nil

	case "add":
		terms, err := subExprArray("terms")
		if err != nil {
			return Expr{}, err
		}
		return AddOf(terms...), nil

	case "mul":
		factors, err := subExprArray("factors")
		if err != nil {
			return Expr{}, err
		}
		return MulOf(factors...), nil

	case "pow":
		baseM, err := subObj("base")
		if err != nil {
			return Expr{}, err
		}
		expM, err := subObj("exp")
		if err != nil {
			return Expr{}, err
		}
		base, err := FromJSON(baseM)
		if err != nil {
			return Expr{}, fmt.Errorf("pow: base: %w", err)
		}
		exp, err := FromJSON(expM)
		if err != nil {
			return Expr{}, fmt.Errorf("pow: exp: %w", err)
		}
		return PowOf(base, exp), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return Expr{}, err
		}
		if _, multi := data["args"]; multi {
			args, err := subExprArray("args")
			if err != nil {
				return Expr{}, err
			}
			return Func(name, args...), nil
		}
		argM, err := subObj("arg")
		if err != nil {
			return Expr{}, err
		}
		arg, err := FromJSON(argM)
		if err != nil {
			return Expr{}, fmt.Errorf("func: arg: %w", err)
		}
		return Func(name, arg), nil
	}
	return Expr{}, fmt.Errorf("unknown expression type: %s", typ)
}

// PowOf raises base to exp. Integer exponents and 1/2 are exact; any other
// exponent stays unevaluated.
func PowOf(base, exp Expr) Expr {
	if r, ok := exp.AsRat(); ok {
		if r.IsInt() && r.Num().IsInt64() {
			return base.Pow(int(r.Num().Int64()))
		}
		if r.Cmp(big.NewRat(1, 2)) == 0 {
			return Sqrt(base)
		}
		if r.Cmp(big.NewRat(-1, 2)) == 0 {
			return Sqrt(base).Pow(-1)
		}
	}
	return opaque("pow", base, exp)
}

package gospin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/njchilds90/gospin/symbolic"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// ToolOptions bounds the work a single tool call may request.
type ToolOptions struct {
	// MaxTwoJ is the largest 2j accepted for any angular momentum label.
	MaxTwoJ int64
}

// DefaultToolOptions allows j up to 20.
func DefaultToolOptions() ToolOptions { return ToolOptions{MaxTwoJ: 40} }

// HandleToolCall runs req with the default options.
func HandleToolCall(req ToolRequest) ToolResponse {
	return HandleToolCallWith(context.Background(), req, DefaultToolOptions())
}

// HandleToolCallWith runs req under ctx and opts. Failures are reported in
// ToolResponse.Error.
func HandleToolCallWith(ctx context.Context, req ToolRequest, opts ToolOptions) ToolResponse {
	p := toolParams{params: req.Params, opts: opts}
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }
	respond := func(e symbolic.Expr) ToolResponse {
		return ToolResponse{Result: symbolic.JSONValue(e), LaTeX: e.LaTeX(), String: e.String()}
	}
	respondState := func(s State) ToolResponse {
		return ToolResponse{Result: StateJSON(s), LaTeX: s.LaTeX(), String: s.String()}
	}
	respondMatrix := func(mat *symbolic.Matrix) ToolResponse {
		entries := make([]string, 0, mat.Rows()*mat.Cols())
		for i := 0; i < mat.Rows(); i++ {
			for _, e := range mat.Row(i) {
				entries = append(entries, e.String())
			}
		}
		return ToolResponse{
			Result: map[string]interface{}{"rows": mat.Rows(), "cols": mat.Cols(), "entries": entries},
			LaTeX:  mat.LaTeX(),
			String: mat.String(),
		}
	}

	switch req.Tool {
	case "simplify":
		e, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		return respond(e)

	case "wigner_small_d":
		args, err := p.labels("j", "m", "mp")
		if err != nil {
			return fail(err)
		}
		beta, err := p.expr("beta")
		if err != nil {
			return fail(err)
		}
		d, err := WignerSmallD(args[0], args[1], args[2], beta)
		if err != nil {
			return fail(err)
		}
		return respond(d)

	case "wigner_d":
		args, err := p.labels("j", "m", "mp")
		if err != nil {
			return fail(err)
		}
		angles, err := p.exprs("alpha", "beta", "gamma")
		if err != nil {
			return fail(err)
		}
		d, err := WignerD(args[0], args[1], args[2], angles[0], angles[1], angles[2])
		if err != nil {
			return fail(err)
		}
		return respond(d)

	case "clebsch_gordan":
		a, err := p.labels("j1", "m1", "j2", "m2", "j3", "m3")
		if err != nil {
			return fail(err)
		}
		c, err := ClebschGordan(a[0], a[1], a[2], a[3], a[4], a[5])
		if err != nil {
			return fail(err)
		}
		return respond(c)

	case "wigner_3j":
		a, err := p.labels("j1", "j2", "j3", "m1", "m2", "m3")
		if err != nil {
			return fail(err)
		}
		c, err := Wigner3j(a[0], a[1], a[2], a[3], a[4], a[5])
		if err != nil {
			return fail(err)
		}
		return respond(c)

	case "wigner_6j":
		a, err := p.labels("j1", "j2", "j3", "j4", "j5", "j6")
		if err != nil {
			return fail(err)
		}
		c, err := Wigner6j(a[0], a[1], a[2], a[3], a[4], a[5])
		if err != nil {
			return fail(err)
		}
		return respond(c)

	case "rewrite":
		s, err := p.state("state")
		if err != nil {
			return fail(err)
		}
		b, err := p.basis("basis", BasisZ)
		if err != nil {
			return fail(err)
		}
		var r State
		switch {
		case p.flag("coupled"):
			r, err = RewriteCoupled(s, b)
		case p.flag("uncoupled"):
			r, err = RewriteUncoupled(s, b)
		default:
			r, err = Rewrite(s, b)
		}
		if err != nil {
			return fail(err)
		}
		return respondState(r)

	case "couple":
		s, err := p.state("state")
		if err != nil {
			return fail(err)
		}
		scheme, err := p.scheme("scheme")
		if err != nil {
			return fail(err)
		}
		r, err := Couple(s, scheme...)
		if err != nil {
			return fail(err)
		}
		return respondState(r)

	case "uncouple":
		s, err := p.state("state")
		if err != nil {
			return fail(err)
		}
		r, err := Uncouple(s)
		if err != nil {
			return fail(err)
		}
		return respondState(r)

	case "inner_product":
		bra, err := p.state("bra")
		if err != nil {
			return fail(err)
		}
		ket, err := p.state("ket")
		if err != nil {
			return fail(err)
		}
		ip, err := Overlap(bra, ket)
		if err != nil {
			return fail(err)
		}
		return respond(ip)

	case "apply":
		op, err := p.operator("op")
		if err != nil {
			return fail(err)
		}
		s, err := p.state("state")
		if err != nil {
			return fail(err)
		}
		r, err := Apply(op, s)
		if err != nil {
			return fail(err)
		}
		return respondState(r)

	case "matrix_element":
		op, err := p.operator("op")
		if err != nil {
			return fail(err)
		}
		a, err := p.labels("j", "m", "jp", "mp")
		if err != nil {
			return fail(err)
		}
		e, err := MatrixElement(op, a[0], a[1], a[2], a[3])
		if err != nil {
			return fail(err)
		}
		return respond(e)

	case "represent":
		s, err := p.state("state")
		if err != nil {
			return fail(err)
		}
		b, err := p.basis("basis", BasisZ)
		if err != nil {
			return fail(err)
		}
		var mat *symbolic.Matrix
		if p.flag("coupled") {
			mat, err = RepresentCoupled(s, b)
		} else {
			mat, err = Represent(s, b)
		}
		if err != nil {
			return fail(err)
		}
		return respondMatrix(mat)

	case "represent_operator":
		op, err := p.operator("op")
		if err != nil {
			return fail(err)
		}
		b, err := p.basis("basis", BasisZ)
		if err != nil {
			return fail(err)
		}
		jn, err := p.optionalLabels("jn")
		if err != nil {
			return fail(err)
		}
		mat, err := RepresentOperator(ctx, op, b, jn...)
		if err != nil {
			return fail(err)
		}
		return respondMatrix(mat)

	case "commutator":
		a, err := p.operator("a")
		if err != nil {
			return fail(err)
		}
		b, err := p.operator("b")
		if err != nil {
			return fail(err)
		}
		c := CommutatorOf(a, b).Doit()
		return ToolResponse{Result: c.String(), LaTeX: c.LaTeX(), String: c.String()}

	case "rewrite_operator":
		op, err := p.operator("op")
		if err != nil {
			return fail(err)
		}
		form := PlusMinus
		if f, _ := p.params["form"].(string); strings.EqualFold(f, "xyz") {
			form = XYZ
		}
		r := RewriteOperator(op, form)
		return ToolResponse{Result: r.String(), LaTeX: r.LaTeX(), String: r.String()}

	case "mcp_spec":
		return ToolResponse{Result: json.RawMessage(MCPToolSpec())}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// toolParams reads typed parameters out of a request.
type toolParams struct {
	params map[string]interface{}
	opts   ToolOptions
}

func (p toolParams) expr(key string) (symbolic.Expr, error) {
	v, ok := p.params[key]
	if !ok {
		return symbolic.Expr{}, fmt.Errorf("missing param: %s", key)
	}
	e, err := ExprFromValue(v)
	if err != nil {
		return symbolic.Expr{}, fmt.Errorf("param %s: %w", key, err)
	}
	return e, nil
}

func (p toolParams) exprs(keys ...string) ([]symbolic.Expr, error) {
	out := make([]symbolic.Expr, len(keys))
	for i, k := range keys {
		e, err := p.expr(k)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// labels reads quantum numbers, rejecting numeric values above MaxTwoJ.
func (p toolParams) labels(keys ...string) ([]symbolic.Expr, error) {
	out, err := p.exprs(keys...)
	if err != nil {
		return nil, err
	}
	for i, e := range out {
		if err := p.checkLimit(keys[i], e); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p toolParams) checkLimit(key string, e symbolic.Expr) error {
	if v, ok := twice(e); ok && p.opts.MaxTwoJ > 0 && abs64(v) > p.opts.MaxTwoJ {
		return fmt.Errorf("param %s = %s exceeds the limit 2j <= %d", key, e, p.opts.MaxTwoJ)
	}
	return nil
}

func (p toolParams) optionalLabels(key string) ([]symbolic.Expr, error) {
	v, ok := p.params[key]
	if !ok {
		return nil, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("param %s must be array", key)
	}
	out := make([]symbolic.Expr, len(raw))
	for i, r := range raw {
		e, err := ExprFromValue(r)
		if err != nil {
			return nil, fmt.Errorf("param %s[%d]: %w", key, i, err)
		}
		if err := p.checkLimit(fmt.Sprintf("%s[%d]", key, i), e); err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (p toolParams) state(key string) (State, error) {
	v, ok := p.params[key]
	if !ok {
		return State{}, fmt.Errorf("missing param: %s", key)
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return State{}, fmt.Errorf("param %s must be a ket or state object", key)
	}
	s, err := StateFromJSON(obj)
	if err != nil {
		return State{}, fmt.Errorf("param %s: %w", key, err)
	}
	for _, t := range s.terms {
		for _, k := range t.Kets {
			if err := p.checkLimit(key+".j", k.j); err != nil {
				return State{}, err
			}
			for _, ji := range k.jn {
				if err := p.checkLimit(key+".jn", ji); err != nil {
					return State{}, err
				}
			}
		}
	}
	return s, nil
}

func (p toolParams) basis(key string, def Basis) (Basis, error) {
	v, ok := p.params[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("param %s must be a string", key)
	}
	return ParseBasis(s)
}

func (p toolParams) flag(key string) bool {
	b, _ := p.params[key].(bool)
	return b
}

func (p toolParams) operator(key string) (Operator, error) {
	v, ok := p.params[key]
	if !ok {
		return nil, fmt.Errorf("missing param: %s", key)
	}
	op, err := OperatorFromValue(v)
	if err != nil {
		return nil, fmt.Errorf("param %s: %w", key, err)
	}
	return op, nil
}

func (p toolParams) scheme(key string) ([][2]int, error) {
	v, ok := p.params[key]
	if !ok {
		return nil, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("param %s must be array", key)
	}
	out := make([][2]int, len(raw))
	for i, r := range raw {
		pair, ok := r.([]interface{})
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("param %s[%d] must be [n1, n2]", key, i)
		}
		a, okA := pair[0].(float64)
		b, okB := pair[1].(float64)
		if !okA || !okB {
			return nil, fmt.Errorf("param %s[%d] must hold space numbers", key, i)
		}
		out[i] = [2]int{int(a), int(b)}
	}
	return out, nil
}

// MCPToolSpec returns the JSON tool schema for agent registration.
func MCPToolSpec() string {
	label := "object"
	tools := []map[string]interface{}{
		ts("simplify", "Canonicalize an expression", []string{"expr"}, map[string]string{"expr": label}),
		ts("wigner_small_d", "Wigner small-d matrix element d^j_{m,mp}(beta)", []string{"j", "m", "mp", "beta"},
			map[string]string{"j": label, "m": label, "mp": label, "beta": label}),
		ts("wigner_d", "Wigner D matrix element D^j_{m,mp}(alpha, beta, gamma)", []string{"j", "m", "mp", "alpha", "beta", "gamma"},
			map[string]string{"j": label, "m": label, "mp": label, "alpha": label, "beta": label, "gamma": label}),
		ts("clebsch_gordan", "Clebsch-Gordan coefficient <j1 m1 j2 m2|j3 m3>", []string{"j1", "m1", "j2", "m2", "j3", "m3"}, map[string]string{}),
		ts("wigner_3j", "Wigner 3j symbol (j1 j2 j3; m1 m2 m3)", []string{"j1", "j2", "j3", "m1", "m2", "m3"}, map[string]string{}),
		ts("wigner_6j", "Wigner 6j symbol {j1 j2 j3; j4 j5 j6}", []string{"j1", "j2", "j3", "j4", "j5", "j6"}, map[string]string{}),
		ts("rewrite", "Rewrite a state into the Jx, Jy or Jz basis. Optional: coupled, uncoupled (bool)", []string{"state", "basis"},
			map[string]string{"state": "object", "basis": "string", "coupled": "boolean", "uncoupled": "boolean"}),
		ts("couple", "Couple product states. Optional: scheme [[n1, n2], ...]", []string{"state"}, map[string]string{"state": "object", "scheme": "array"}),
		ts("uncouple", "Expand coupled kets over product states", []string{"state"}, map[string]string{"state": "object"}),
		ts("inner_product", "Inner product <bra|ket> of two states", []string{"bra", "ket"}, map[string]string{"bra": "object", "ket": "object"}),
		ts("apply", "Apply an operator to a state", []string{"op", "state"}, map[string]string{"op": "string", "state": "object"}),
		ts("matrix_element", "Matrix element <j m|op|jp mp> in the Jz basis", []string{"op", "j", "m", "jp", "mp"}, map[string]string{"op": "string"}),
		ts("represent", "Column vector of a state in a basis. Optional: coupled (bool)", []string{"state"},
			map[string]string{"state": "object", "basis": "string", "coupled": "boolean"}),
		ts("represent_operator", "Matrix of an operator. Optional: basis, jn (default [1/2])", []string{"op"},
			map[string]string{"op": "string", "basis": "string", "jn": "array"}),
		ts("commutator", "Evaluate the commutator [a, b]", []string{"a", "b"}, map[string]string{"a": "string", "b": "string"}),
		ts("rewrite_operator", "Rewrite spin operators in plusminus or xyz form", []string{"op"}, map[string]string{"op": "string", "form": "string"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}

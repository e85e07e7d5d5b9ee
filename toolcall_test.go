package gospin_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gospin"
	"github.com/njchilds90/gospin/symbolic"
)

// call decodes a JSON request the way an agent would send it and runs it.
func call(t *testing.T, raw string) gospin.ToolResponse {
	t.Helper()
	var req gospin.ToolRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	return gospin.HandleToolCall(req)
}

func mustSucceed(t *testing.T, resp gospin.ToolResponse) gospin.ToolResponse {
	t.Helper()
	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}
	return resp
}

func TestHandleToolCall_Simplify(t *testing.T) {
	resp := mustSucceed(t, call(t, `{"tool": "simplify", "params": {"expr": "x + x"}}`))
	assert.Equal(t, ex(t, "2*x").String(), resp.String)

	// the JSON expression form is accepted as well
	m := symbolic.JSONValue(ex(t, "sqrt(8)"))
	resp = mustSucceed(t, gospin.HandleToolCall(gospin.ToolRequest{Tool: "simplify", Params: map[string]interface{}{"expr": m}}))
	assert.Equal(t, ex(t, "2*sqrt(2)").String(), resp.String)
	assert.NotEmpty(t, resp.LaTeX)
}

func TestHandleToolCall_Wigner(t *testing.T) {
	resp := mustSucceed(t, call(t, `{"tool": "wigner_small_d", "params": {"j": "1/2", "m": "1/2", "mp": "-1/2", "beta": "pi/2"}}`))
	assert.Equal(t, ex(t, "-sqrt(2)/2").String(), resp.String)

	resp = mustSucceed(t, call(t, `{"tool": "wigner_d", "params": {"j": 1, "m": 0, "mp": 0, "alpha": "alpha", "beta": "pi", "gamma": 0}}`))
	assert.Equal(t, "-1", resp.String)

	resp = mustSucceed(t, call(t, `{"tool": "clebsch_gordan", "params": {"j1": 0.5, "m1": 0.5, "j2": 0.5, "m2": -0.5, "j3": 1, "m3": 0}}`))
	assert.Equal(t, ex(t, "sqrt(2)/2").String(), resp.String)

	resp = mustSucceed(t, call(t, `{"tool": "wigner_3j", "params": {"j1": 1, "j2": 1, "j3": 0, "m1": 0, "m2": 0, "m3": 0}}`))
	assert.Equal(t, ex(t, "-sqrt(3)/3").String(), resp.String)

	resp = mustSucceed(t, call(t, `{"tool": "wigner_6j", "params": {"j1": 1, "j2": 1, "j3": 1, "j4": 1, "j5": 1, "j6": 1}}`))
	assert.Equal(t, "1/6", resp.String)
}

func TestHandleToolCall_States(t *testing.T) {
	resp := mustSucceed(t, call(t, `{"tool": "rewrite", "params": {"state": {"basis": "Jx", "j": "1/2", "m": "1/2"}, "basis": "Jz"}}`))
	r2 := ex(t, "sqrt(2)/2")
	want := sum(r2, gospin.JzKet(half, half), r2, gospin.JzKet(half, mhalf))
	assert.Equal(t, want.String(), resp.String)

	// the result decodes back into the same state
	obj, ok := resp.Result.(map[string]interface{})
	require.True(t, ok, "result is %T", resp.Result)
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	var back map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &back))
	decoded, err := gospin.StateFromJSON(back)
	require.NoError(t, err)
	assertState(t, want, decoded)

	resp = mustSucceed(t, call(t, `{"tool": "uncouple", "params": {"state": {"j": 1, "m": 1, "jn": ["1/2", "1/2"]}}}`))
	assert.Equal(t, tp(gospin.JzKet(half, half), gospin.JzKet(half, half)).String(), resp.String)

	resp = mustSucceed(t, call(t, `{"tool": "couple", "params": {"state": {"terms": [
		{"kets": [{"j": "1/2", "m": "1/2"}, {"j": "1/2", "m": "1/2"}, {"j": "1/2", "m": "1/2"}]}
	]}, "scheme": [[2, 3], [1, 2]]}}`))
	top := gospin.JzKetCoupled(symbolic.F(3, 2), symbolic.F(3, 2), []symbolic.Expr{half, half, half},
		gospin.CouplingStep{N1: 2, N2: 3, J: n(1)}, gospin.CouplingStep{N1: 1, N2: 2, J: symbolic.F(3, 2)})
	assert.Equal(t, top.State().String(), resp.String)

	resp = mustSucceed(t, call(t, `{"tool": "rewrite", "params": {"state": {"basis": "Jx", "j": 1, "m": 1, "jn": ["1/2", "1/2"]}, "basis": "z", "uncoupled": true}}`))
	assert.Contains(t, resp.String, "TensorProduct(JzKet(1/2, 1/2), JzKet(1/2, 1/2))")

	resp = mustSucceed(t, call(t, `{"tool": "inner_product", "params": {
		"bra": {"basis": "Jz", "j": 1, "m": 0},
		"ket": {"basis": "Jy", "j": 1, "m": 1}}}`))
	assert.Equal(t, ex(t, "sqrt(2)*I/2").String(), resp.String)
}

func TestHandleToolCall_Operators(t *testing.T) {
	resp := mustSucceed(t, call(t, `{"tool": "apply", "params": {"op": "J+", "state": {"j": 1, "m": 0}}}`))
	assert.Equal(t, sum(ex(t, "sqrt(2)*hbar"), gospin.JzKet(n(1), n(1))).String(), resp.String)

	resp = mustSucceed(t, call(t, `{"tool": "apply", "params": {"op": [null, "Jz"], "state": {"terms": [
		{"coeff": 2, "kets": [{"j": "1/2", "m": "1/2"}, {"j": "1/2", "m": "-1/2"}]}
	]}}}`))
	assert.Equal(t, sum(hbar.Neg(), tp(gospin.JzKet(half, half), gospin.JzKet(half, mhalf))).String(), resp.String)

	resp = mustSucceed(t, call(t, `{"tool": "matrix_element", "params": {"op": "J-", "j": 1, "m": 0, "jp": 1, "mp": 1}}`))
	assert.Equal(t, ex(t, "sqrt(2)*hbar").String(), resp.String)

	resp = mustSucceed(t, call(t, `{"tool": "commutator", "params": {"a": "Jx", "b": "Jy"}}`))
	assert.Equal(t, gospin.ScaleOp(symbolic.I().Mul(hbar), gospin.Jz).String(), resp.String)

	resp = mustSucceed(t, call(t, `{"tool": "rewrite_operator", "params": {"op": "J+", "form": "xyz"}}`))
	assert.Equal(t, gospin.RewriteOperator(gospin.Jplus, gospin.XYZ).String(), resp.String)

	resp = mustSucceed(t, call(t, `{"tool": "rewrite_operator", "params": {"op": "Jx"}}`))
	assert.Equal(t, gospin.RewriteOperator(gospin.Jx, gospin.PlusMinus).String(), resp.String)
}

func TestHandleToolCall_Represent(t *testing.T) {
	resp := mustSucceed(t, call(t, `{"tool": "represent", "params": {"state": {"terms": [
		{"kets": [{"basis": "Jx", "j": "1/2", "m": "1/2"}, {"basis": "Jx", "j": "1/2", "m": "1/2"}]}
	]}, "coupled": true}}`))
	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 4, result["rows"])
	assert.Equal(t, 1, result["cols"])
	assert.Equal(t, []string{"0", "1/2", ex(t, "sqrt(2)/2").String(), "1/2"}, result["entries"])

	resp = mustSucceed(t, call(t, `{"tool": "represent_operator", "params": {"op": "Jz", "jn": [1]}}`))
	result = resp.Result.(map[string]interface{})
	assert.Equal(t, 3, result["rows"])
	entries := result["entries"].([]string)
	require.Len(t, entries, 9)
	assert.Equal(t, hbar.String(), entries[0])
	assert.Equal(t, "0", entries[4])
	assert.Equal(t, hbar.Neg().String(), entries[8])

	resp = mustSucceed(t, call(t, `{"tool": "represent_operator", "params": {"op": {"rotation": [0, "pi/2", 0]}}}`))
	result = resp.Result.(map[string]interface{})
	assert.Equal(t, 2, result["rows"])
}

func TestHandleToolCall_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown tool":    `{"tool": "nonexistent", "params": {}}`,
		"missing param":   `{"tool": "clebsch_gordan", "params": {"j1": 1}}`,
		"bad expression":  `{"tool": "simplify", "params": {"expr": "x +"}}`,
		"bad basis":       `{"tool": "rewrite", "params": {"state": {"j": 1, "m": 0}, "basis": "Jw"}}`,
		"bad ket":         `{"tool": "uncouple", "params": {"state": {"j": 1, "m": 2}}}`,
		"bad operator":    `{"tool": "apply", "params": {"op": "Jw", "state": {"j": 1, "m": 0}}}`,
		"bad scheme":      `{"tool": "couple", "params": {"state": {"j": 1, "m": 0}, "scheme": [[1]]}}`,
		"symbolic rotate": `{"tool": "rewrite", "params": {"state": {"j": "j", "m": "m"}, "basis": "Jx"}}`,
		"over the limit":  `{"tool": "clebsch_gordan", "params": {"j1": 30, "m1": 0, "j2": 30, "m2": 0, "j3": 0, "m3": 0}}`,
		"state too large": `{"tool": "represent", "params": {"state": {"j": 25, "m": 0}}}`,
		"jn too large":    `{"tool": "represent_operator", "params": {"op": "Jz", "jn": [21]}}`,
	}
	for name, raw := range cases {
		resp := call(t, raw)
		assert.NotEmpty(t, resp.Error, name)
		assert.Nil(t, resp.Result, name)
	}

	resp := call(t, `{"tool": "clebsch_gordan", "params": {"j1": 30, "m1": 0, "j2": 30, "m2": 0, "j3": 0, "m3": 0}}`)
	assert.Contains(t, resp.Error, "exceeds the limit")
}

func TestHandleToolCallWith_Options(t *testing.T) {
	req := gospin.ToolRequest{Tool: "represent_operator", Params: map[string]interface{}{"op": "Jz", "jn": []interface{}{2.0}}}

	resp := gospin.HandleToolCallWith(context.Background(), req, gospin.ToolOptions{MaxTwoJ: 2})
	assert.Contains(t, resp.Error, "exceeds the limit")

	resp = gospin.HandleToolCallWith(context.Background(), req, gospin.ToolOptions{MaxTwoJ: 4})
	assert.Empty(t, resp.Error)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp = gospin.HandleToolCallWith(ctx, req, gospin.DefaultToolOptions())
	assert.NotEmpty(t, resp.Error)
}

func TestMCPToolSpec(t *testing.T) {
	spec := gospin.MCPToolSpec()
	var m struct {
		Tools []struct {
			Name        string `json:"name"`
			InputSchema struct {
				Type     string   `json:"type"`
				Required []string `json:"required"`
			} `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(spec), &m), "MCP spec should be valid JSON")
	require.NotEmpty(t, m.Tools)

	// every advertised tool is handled
	for _, tool := range m.Tools {
		assert.Equal(t, "object", tool.InputSchema.Type, tool.Name)
		resp := gospin.HandleToolCall(gospin.ToolRequest{Tool: tool.Name, Params: map[string]interface{}{}})
		assert.False(t, strings.HasPrefix(resp.Error, "unknown tool"), tool.Name)
	}

	resp := mustSucceed(t, call(t, `{"tool": "mcp_spec", "params": {}}`))
	raw, ok := resp.Result.(json.RawMessage)
	require.True(t, ok)
	assert.JSONEq(t, spec, string(raw))
}

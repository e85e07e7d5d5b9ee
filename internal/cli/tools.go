package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/njchilds90/gospin"
	"github.com/njchilds90/gospin/internal/config"
)

// toolOptions maps the configured limits onto the dispatcher.
func toolOptions(cfg *config.Config) gospin.ToolOptions {
	if cfg == nil {
		return gospin.DefaultToolOptions()
	}
	return gospin.ToolOptions{MaxTwoJ: cfg.Limits.MaxTwoJ}
}

func (o *RootOptions) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

// runTool sends req through the same dispatcher the server uses and prints
// the response.
func runTool(opts *RootOptions, cmd *cobra.Command, req gospin.ToolRequest) error {
	f := opts.formatter(cmd)
	start := time.Now()
	resp := gospin.HandleToolCallWith(cmd.Context(), req, toolOptions(opts.Config))
	opts.logger().Debug("tool call",
		zap.String("tool", req.Tool),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("ok", resp.Error == ""))
	if resp.Error != "" {
		if err := f.Error(ErrCodeCompute, resp.Error); err != nil {
			return err
		}
		return NewExitError(ExitFailure, resp.Error)
	}
	return f.Success(resp, resp.String)
}

// inputError reports unreadable arguments and exits with ExitCommandError.
func inputError(opts *RootOptions, cmd *cobra.Command, err error) error {
	if werr := opts.formatter(cmd).Error(ErrCodeInput, err.Error()); werr != nil {
		return werr
	}
	return WrapExitError(ExitCommandError, "invalid arguments", err)
}

// labelParams pairs names with positional expression arguments.
func labelParams(names []string, args []string) map[string]interface{} {
	params := make(map[string]interface{}, len(names))
	for i, name := range names {
		params[name] = args[i]
	}
	return params
}

// stateArg decodes a JSON ket or state.
func stateArg(raw string) (map[string]interface{}, error) {
	var v map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("state %q is not a JSON object: %w", raw, err)
	}
	return v, nil
}

// operatorArg reads "Jx", a comma list such as "Jz,1" for an uncoupled
// operator, or a JSON operator value.
func operatorArg(raw string) (interface{}, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		var v interface{}
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, fmt.Errorf("operator %q: %w", raw, err)
		}
		return v, nil
	}
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		out := make([]interface{}, len(parts))
		for i, p := range parts {
			out[i] = strings.TrimSpace(p)
		}
		return out, nil
	}
	return s, nil
}

// schemeArg reads coupling pairs such as "2,3".
func schemeArg(pairs []string) ([]interface{}, error) {
	out := make([]interface{}, len(pairs))
	for i, p := range pairs {
		parts := strings.Split(p, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("scheme step %q must be n1,n2", p)
		}
		var pair [2]interface{}
		for k, part := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("scheme step %q: %w", p, err)
			}
			pair[k] = float64(n)
		}
		out[i] = []interface{}{pair[0], pair[1]}
	}
	return out, nil
}

// labelCommand builds a command whose positional arguments are the named
// quantum numbers and angles of one tool. Flags go before the first label.
func labelCommand(opts *RootOptions, use, short, tool string, names []string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(len(names)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(opts, cmd, gospin.ToolRequest{Tool: tool, Params: labelParams(names, args)})
		},
	}
	// m values such as -1/2 must not be read as flags.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// NewWignerDCommand creates the wigner-d command.
func NewWignerDCommand(opts *RootOptions) *cobra.Command {
	return labelCommand(opts, "wigner-d <j> <m> <mp> <beta>",
		"Wigner small-d matrix element d^j_{m,mp}(beta)",
		"wigner_small_d", []string{"j", "m", "mp", "beta"})
}

// NewWignerBigDCommand creates the wigner-big-d command.
func NewWignerBigDCommand(opts *RootOptions) *cobra.Command {
	return labelCommand(opts, "wigner-big-d <j> <m> <mp> <alpha> <beta> <gamma>",
		"Wigner D matrix element D^j_{m,mp}(alpha, beta, gamma)",
		"wigner_d", []string{"j", "m", "mp", "alpha", "beta", "gamma"})
}

// NewCGCommand creates the cg command.
func NewCGCommand(opts *RootOptions) *cobra.Command {
	return labelCommand(opts, "cg <j1> <m1> <j2> <m2> <j3> <m3>",
		"Clebsch-Gordan coefficient <j1 m1; j2 m2|j3 m3>",
		"clebsch_gordan", []string{"j1", "m1", "j2", "m2", "j3", "m3"})
}

// NewWigner3jCommand creates the wigner-3j command.
func NewWigner3jCommand(opts *RootOptions) *cobra.Command {
	return labelCommand(opts, "wigner-3j <j1> <j2> <j3> <m1> <m2> <m3>",
		"Wigner 3j symbol",
		"wigner_3j", []string{"j1", "j2", "j3", "m1", "m2", "m3"})
}

// NewWigner6jCommand creates the wigner-6j command.
func NewWigner6jCommand(opts *RootOptions) *cobra.Command {
	return labelCommand(opts, "wigner-6j <j1> <j2> <j3> <j4> <j5> <j6>",
		"Wigner 6j symbol",
		"wigner_6j", []string{"j1", "j2", "j3", "j4", "j5", "j6"})
}

// NewRewriteCommand creates the rewrite command.
func NewRewriteCommand(opts *RootOptions) *cobra.Command {
	var basis string
	var coupled, uncoupled bool
	cmd := &cobra.Command{
		Use:   "rewrite <state>",
		Short: "Rewrite a state into the Jx, Jy or Jz basis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if coupled && uncoupled {
				return inputError(opts, cmd, fmt.Errorf("--coupled and --uncoupled are exclusive"))
			}
			state, err := stateArg(args[0])
			if err != nil {
				return inputError(opts, cmd, err)
			}
			return runTool(opts, cmd, gospin.ToolRequest{Tool: "rewrite", Params: map[string]interface{}{
				"state": state, "basis": basis, "coupled": coupled, "uncoupled": uncoupled,
			}})
		},
	}
	cmd.Flags().StringVarP(&basis, "basis", "b", "Jz", "target basis (Jx|Jy|Jz)")
	cmd.Flags().BoolVar(&coupled, "coupled", false, "couple product terms after rewriting")
	cmd.Flags().BoolVar(&uncoupled, "uncoupled", false, "uncouple coupled kets after rewriting")
	return cmd
}

// NewCoupleCommand creates the couple command.
func NewCoupleCommand(opts *RootOptions) *cobra.Command {
	var scheme []string
	cmd := &cobra.Command{
		Use:   "couple <state>",
		Short: "Couple product states into total angular momentum states",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := stateArg(args[0])
			if err != nil {
				return inputError(opts, cmd, err)
			}
			params := map[string]interface{}{"state": state}
			if len(scheme) > 0 {
				steps, err := schemeArg(scheme)
				if err != nil {
					return inputError(opts, cmd, err)
				}
				params["scheme"] = steps
			}
			return runTool(opts, cmd, gospin.ToolRequest{Tool: "couple", Params: params})
		},
	}
	cmd.Flags().StringArrayVar(&scheme, "scheme", nil, "coupling step n1,n2 (repeat for each step)")
	return cmd
}

// NewUncoupleCommand creates the uncouple command.
func NewUncoupleCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "uncouple <state>",
		Short: "Expand coupled kets over product states",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := stateArg(args[0])
			if err != nil {
				return inputError(opts, cmd, err)
			}
			return runTool(opts, cmd, gospin.ToolRequest{Tool: "uncouple", Params: map[string]interface{}{"state": state}})
		},
	}
}

// NewInnerCommand creates the inner command.
func NewInnerCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inner <bra-state> <ket-state>",
		Short: "Inner product <bra|ket>",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bra, err := stateArg(args[0])
			if err != nil {
				return inputError(opts, cmd, err)
			}
			ket, err := stateArg(args[1])
			if err != nil {
				return inputError(opts, cmd, err)
			}
			return runTool(opts, cmd, gospin.ToolRequest{Tool: "inner_product", Params: map[string]interface{}{"bra": bra, "ket": ket}})
		},
	}
}

// NewRepresentCommand creates the represent command. With --op it prints
// the operator matrix instead of a state vector.
func NewRepresentCommand(opts *RootOptions) *cobra.Command {
	var basis, op string
	var coupled bool
	var jn []string
	cmd := &cobra.Command{
		Use:   "represent [state]",
		Short: "Column vector of a state, or matrix of an operator with --op",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if op != "" {
				if len(args) > 0 {
					return inputError(opts, cmd, fmt.Errorf("give either a state or --op"))
				}
				opv, err := operatorArg(op)
				if err != nil {
					return inputError(opts, cmd, err)
				}
				params := map[string]interface{}{"op": opv, "basis": basis}
				if len(jn) > 0 {
					list := make([]interface{}, len(jn))
					for i, j := range jn {
						list[i] = j
					}
					params["jn"] = list
				}
				return runTool(opts, cmd, gospin.ToolRequest{Tool: "represent_operator", Params: params})
			}
			if len(args) == 0 {
				return inputError(opts, cmd, fmt.Errorf("a state or --op is required"))
			}
			state, err := stateArg(args[0])
			if err != nil {
				return inputError(opts, cmd, err)
			}
			return runTool(opts, cmd, gospin.ToolRequest{Tool: "represent", Params: map[string]interface{}{
				"state": state, "basis": basis, "coupled": coupled,
			}})
		},
	}
	cmd.Flags().StringVarP(&basis, "basis", "b", "Jz", "basis (Jx|Jy|Jz)")
	cmd.Flags().BoolVar(&coupled, "coupled", false, "represent over the coupled basis")
	cmd.Flags().StringVar(&op, "op", "", "operator to represent (Jx, J+, Jz,1, ...)")
	cmd.Flags().StringSliceVar(&jn, "jn", nil, "spins of the factor spaces for --op (default 1/2)")
	return cmd
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <op> <state>",
		Short: "Apply an operator to a state",
		Long: `Apply an operator to a state. The operator is a spin operator name
(Jx, Jy, Jz, J+, J-, J2), a comma list such as "Jz,1" acting factor-wise on
product states, or JSON such as '{"rotation": [0, "pi/2", 0]}'.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := operatorArg(args[0])
			if err != nil {
				return inputError(opts, cmd, err)
			}
			state, err := stateArg(args[1])
			if err != nil {
				return inputError(opts, cmd, err)
			}
			return runTool(opts, cmd, gospin.ToolRequest{Tool: "apply", Params: map[string]interface{}{"op": op, "state": state}})
		},
	}
}

// NewCommutatorCommand creates the commutator command.
func NewCommutatorCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "commutator <a> <b>",
		Short: "Evaluate the commutator [a, b] of two spin operators",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(opts, cmd, gospin.ToolRequest{Tool: "commutator", Params: map[string]interface{}{"a": args[0], "b": args[1]}})
		},
	}
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the tool schema used for agent registration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := gospin.MCPToolSpec()
			return opts.formatter(cmd).Success(json.RawMessage(spec), spec)
		},
	}
}

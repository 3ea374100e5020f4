package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"survkit/internal/engine"
)

var (
	prepareEngine string
	prepareParams []string
	prepareJSON   bool
)

var prepareCmd = &cobra.Command{
	Use:   "prepare [formula]",
	Short: "Translate a formula and hyperparameters for one engine",
	Long: `Applies the engine's strata policy to the formula and renames
hyperparameters to the engine's argument names.

Example:
  survkit prepare -e coxnet -p lambda=0.01 -p alpha=1 \
      "Surv(time, status) ~ age + sex + strata(site)"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPrepare,
}

func runPrepare(cmd *cobra.Command, args []string) error {
	d, err := registry.Get(prepareEngine)
	if err != nil {
		return err
	}
	f, err := parseArgs(args)
	if err != nil {
		return err
	}
	params, err := parseParams(prepareParams)
	if err != nil {
		return err
	}

	call, err := engine.Prepare(d, f, params)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if prepareJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(call)
	}

	fmt.Fprintf(w, "engine:  %s (%s)\n", call.Engine, call.Package)
	fmt.Fprintf(w, "formula: %s\n", call.Formula)
	if len(call.Strata) > 0 {
		fmt.Fprintf(w, "strata:  %s\n", strings.Join(call.Strata, ", "))
	}
	if len(call.Args) > 0 {
		fmt.Fprintln(w, "args:")
		names := make([]string, 0, len(call.Args))
		for k := range call.Args {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			fmt.Fprintf(w, "  %s = %v\n", k, call.Args[k])
		}
	}
	return nil
}

// parseParams turns name=value flags into typed values: integers, then
// floats, then booleans, otherwise strings.
func parseParams(raw []string) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]interface{}, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q (want name=value)", kv)
		}
		value = strings.TrimSpace(value)
		if i, err := strconv.Atoi(value); err == nil {
			out[name] = i
		} else if f, err := strconv.ParseFloat(value, 64); err == nil {
			out[name] = f
		} else if b, err := strconv.ParseBool(value); err == nil {
			out[name] = b
		} else {
			out[name] = value
		}
	}
	return out, nil
}

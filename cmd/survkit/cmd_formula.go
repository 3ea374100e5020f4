package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"survkit/internal/formula"
	"survkit/internal/logging"
)

// =============================================================================
// FORMULA COMMANDS - strata removal and validation
// =============================================================================

var stripCmd = &cobra.Command{
	Use:   "strip [formula]",
	Short: "Remove top-level strata() terms from a formula",
	Long: `Removes strata() terms from the additive top level of a formula and
lists the stratification variables that were removed.

strata() nested inside an interaction is left in place; run 'survkit check'
to detect it.

Example:
  survkit strip "Surv(time, status) ~ age + strata(site)"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStrip,
}

var checkRaw bool

var checkCmd = &cobra.Command{
	Use:   "check [formula]",
	Short: "Fail if a formula keeps a strata() term engines cannot extract",
	Long: `Removes top-level strata() terms, then fails if any strata() term is left
anywhere in the formula. With --raw the formula is checked as given, which is
what engines without stratification support require.

Exits with status 1 on a configuration error.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func parseArgs(args []string) (formula.Formula, error) {
	src := strings.Join(args, " ")
	f, err := formula.Parse(src)
	if err != nil {
		return formula.Formula{}, err
	}
	logging.FormulaDebug("parsed %q as %s", src, f.String())
	return f, nil
}

func runStrip(cmd *cobra.Command, args []string) error {
	f, err := parseArgs(args)
	if err != nil {
		return err
	}

	out := f.WithRHS(formula.RemoveStrata(f.RHS))
	strata := formula.StrataVars(f.RHS)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "formula: %s\n", out)
	if len(strata) == 0 {
		fmt.Fprintln(w, "strata:  (none)")
	} else {
		fmt.Fprintf(w, "strata:  %s\n", strings.Join(strata, ", "))
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	f, err := parseArgs(args)
	if err != nil {
		return err
	}

	rhs := f.RHS
	if !checkRaw {
		rhs = formula.RemoveStrata(rhs)
	}
	if err := formula.ValidateNoStrata(rhs); err != nil {
		logger.Debug("check failed", zap.String("formula", f.String()), zap.Error(err))
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", f.WithRHS(rhs))
	return nil
}

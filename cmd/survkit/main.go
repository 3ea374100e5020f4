package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"survkit/internal/config"
	"survkit/internal/engine"
	"survkit/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	registry *engine.Registry

	// Logger
	logger = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "survkit",
	Short: "survkit - survival engine adapter",
	Long: `survkit prepares model formulas and hyperparameters for external
survival-analysis engines and normalizes what they predict.

Formulas use the form:
  Surv(time, status) ~ age + sex * trt + strata(site)`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// setup loads config, initializes the logger and builds the engine registry.
func setup() error {
	path := configPath
	if path == "" {
		path = os.Getenv("SURVKIT_CONFIG")
	}
	if path == "" {
		path = config.DefaultPath
	}

	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}

	if err := logging.Initialize(c.Logging, verbose); err != nil {
		return err
	}
	logger = logging.L()

	reg := engine.Default()
	if err := reg.ApplyConfig(c.Engines); err != nil {
		return fmt.Errorf("invalid engine config: %w", err)
	}

	registry = reg
	logging.BootDebug("config %s loaded, %d engine entries", path, len(c.Engines))
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $SURVKIT_CONFIG or survkit.yaml)")

	prepareCmd.Flags().StringVarP(&prepareEngine, "engine", "e", "", "Engine ID (see 'survkit engines')")
	prepareCmd.Flags().StringArrayVarP(&prepareParams, "param", "p", nil, "Hyperparameter as name=value (repeatable)")
	prepareCmd.Flags().BoolVar(&prepareJSON, "json", false, "Print the call as JSON")
	_ = prepareCmd.MarkFlagRequired("engine")

	checkCmd.Flags().BoolVar(&checkRaw, "raw", false, "Validate the formula as given, without removing top-level strata first")

	rootCmd.AddCommand(stripCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(prepareCmd)
	rootCmd.AddCommand(enginesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

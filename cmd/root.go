package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version is reported in every choice log.
const Version = "1.0.0"

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "resume-randomizer",
	Short: "Generate randomized resumes from a template",
	Long: `resume-randomizer reads a resume template made of Leaf, Random, Constant and
Dependent sections and generates batches of randomized resumes for audit studies.

Every resume comes with a log and a trace of each random choice, plus a CSV row of
coded choices. A codebook describing every Leaf is written once per run.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if getVerbose() {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging of every choice)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file, JSON or YAML (default is $HOME/.resume-randomizer/config.json)")
}

// getVerbose returns the verbose flag value.
func getVerbose() (result bool) {
	result = verbose
	return result
}

// getConfigFile returns the config file path.
func getConfigFile() (result string) {
	result = configFile
	return result
}

// getLogger returns the structured logger configured for this run.
func getLogger() (result *slog.Logger) {
	result = logger
	return result
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"haggle/internal/config"
	"haggle/internal/simulate"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// simulate flags
	matches    int
	rounds     int
	seed       int64
	parallel   int
	model      string
	bidding    string
	acceptance string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "haggle",
	Short: "haggle - bilateral negotiation decision core",
	Long: `haggle is a decision core for bilateral negotiation agents.

Each turn it infers the opponent's hidden preference structure from the
offers observed so far and balances own utility against predicted opponent
utility under a shrinking time budget. Three opponent estimators, three bid
strategies, and three acceptance policies can be combined per session.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run self-play negotiation matches on the demo scenario",
	Long: `Plays configured self-play matches between two sessions over the built-in
party-planning domain and prints an outcome summary. Matches are
deterministic for a fixed seed.`,
	RunE: runSimulate,
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write the default configuration to a yaml file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.DefaultConfig().Save(args[0]); err != nil {
			return err
		}
		fmt.Printf("wrote default config to %s\n", args[0])
		return nil
	},
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("matches") {
		cfg.Simulate.Matches = matches
	}
	if cmd.Flags().Changed("rounds") {
		cfg.Simulate.Rounds = rounds
	}
	if cmd.Flags().Changed("seed") {
		cfg.Simulate.Seed = seed
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Simulate.Parallel = parallel
	}

	sideA := cfg.Session
	if cmd.Flags().Changed("model") {
		sideA.Model = model
	}
	if cmd.Flags().Changed("bidding") {
		sideA.Bidding = bidding
	}
	if cmd.Flags().Changed("acceptance") {
		sideA.Acceptance = acceptance
	}
	if err := sideA.Validate(); err != nil {
		return err
	}

	profileA, profileB, err := simulate.DemoScenario()
	if err != nil {
		return err
	}
	spec := simulate.MatchSpec{
		ConfigA:  sideA,
		ConfigB:  cfg.Session,
		ProfileA: profileA,
		ProfileB: profileB,
		Rounds:   cfg.Simulate.Rounds,
		Seed:     cfg.Simulate.Seed,
	}

	logger.Info("starting tournament",
		zap.Int("matches", cfg.Simulate.Matches),
		zap.Int("rounds", cfg.Simulate.Rounds),
		zap.Int64("seed", cfg.Simulate.Seed))

	outcomes, err := simulate.Tournament(spec, cfg.Simulate.Matches, cfg.Simulate.Parallel, logger)
	if err != nil {
		return err
	}

	fmt.Printf("%-38s %-8s %-8s %-8s %-8s\n", "MATCH", "AGREED", "ROUNDS", "UTIL A", "UTIL B")
	for _, o := range outcomes {
		fmt.Printf("%-38s %-8v %-8d %-8.3f %-8.3f\n", o.ID, o.Agreed(), o.Rounds, o.UtilityA, o.UtilityB)
	}
	s := simulate.Summarize(outcomes)
	fmt.Printf("\n%d/%d agreed, mean rounds %.1f, mean utilities %.3f / %.3f\n",
		s.Agreements, s.Matches, s.MeanRounds, s.MeanUtilityA, s.MeanUtilityB)
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to yaml config")

	simulateCmd.Flags().IntVar(&matches, "matches", 10, "number of matches to play")
	simulateCmd.Flags().IntVar(&rounds, "rounds", 1000, "round deadline per match")
	simulateCmd.Flags().Int64Var(&seed, "seed", 1, "base RNG seed")
	simulateCmd.Flags().IntVar(&parallel, "parallel", 4, "matches run concurrently")
	simulateCmd.Flags().StringVar(&model, "model", config.ModelFrequency, "side A opponent model: frequency|rankdistance|density")
	simulateCmd.Flags().StringVar(&bidding, "bidding", config.BiddingSampler, "side A bidding: sampler|concession|tradeoff")
	simulateCmd.Flags().StringVar(&acceptance, "acceptance", config.AcceptDynamic, "side A acceptance: dynamic|cutoff|acnext")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(initConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

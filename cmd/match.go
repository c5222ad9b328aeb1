package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/fit-scorer/internal/profile"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score one candidate profile against one job requirement",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("profile", "p", "", "path to the candidate profile JSON")
	matchCmd.Flags().String("job", "", "path to the job requirement JSON")
	matchCmd.MarkFlagRequired("profile")
	matchCmd.MarkFlagRequired("job")
}

func match(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, logger := setup()

	p, err := profile.LoadProfileFile(cmd.Flag("profile").Value.String())
	if err != nil {
		logger.Fatal("loading the profile", zap.Error(err))
	}

	jobs, err := profile.LoadJobRequirementsFile(cmd.Flag("job").Value.String())
	if err != nil {
		logger.Fatal("loading the job requirement", zap.Error(err))
	}
	if len(jobs) != 1 {
		logger.Fatal("match expects exactly one job requirement",
			zap.Int("count", len(jobs)),
			zap.String("hint", "use the rank command for several jobs"),
		)
	}

	eng, err := buildEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the scoring engine", zap.Error(err))
	}
	defer eng.Close()

	result, err := eng.composer.ComputeScore(ctx, p, jobs[0])
	if err != nil {
		logger.Fatal("computing the match", zap.Error(err))
	}

	logger.Info("match computed",
		zap.Int("score", result.Score),
		zap.Float64("cosine", result.CosineSimilarity),
		zap.Bool("gated", result.Gated()),
	)
	logger.Debug("embedding cache", zap.Any("stats", eng.cache.Stats(ctx)))

	if err := printJSON(result); err != nil {
		logger.Fatal("printing the result", zap.Error(err))
	}
}

func printJSON(v any) error {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(pretty))
	return err
}

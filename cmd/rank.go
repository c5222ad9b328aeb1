package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/fit-scorer/internal/profile"
	"github.com/spigell/fit-scorer/internal/ranking"
)

const (
	PromptExit  = "exit"
	PromptSteps = "Show filter steps"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank job requirements for one candidate profile",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("profile", "p", "", "path to the candidate profile JSON")
	rankCmd.Flags().StringArray("job", nil, "path to a job requirement JSON (object or array); repeatable")
	rankCmd.Flags().BoolP("yes", "y", false, "print the ranking and exit without the interactive breakdown")
	rankCmd.MarkFlagRequired("profile")
	rankCmd.MarkFlagRequired("job")
}

func rank(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, logger := setup()

	p, err := profile.LoadProfileFile(cmd.Flag("profile").Value.String())
	if err != nil {
		logger.Fatal("loading the profile", zap.Error(err))
	}

	paths, err := cmd.Flags().GetStringArray("job")
	if err != nil {
		logger.Fatal("reading job flags", zap.Error(err))
	}
	var jobs []*profile.JobRequirement
	for _, path := range paths {
		loaded, err := profile.LoadJobRequirementsFile(path)
		if err != nil {
			logger.Fatal("loading job requirements", zap.String("path", path), zap.Error(err))
		}
		jobs = append(jobs, loaded...)
	}
	logger.Info("job requirements loaded", zap.Int("count", len(jobs)))

	eng, err := buildEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the scoring engine", zap.Error(err))
	}
	defer eng.Close()

	for _, status := range eng.ranker.Filters() {
		logger.Debug("filter", zap.String("name", status.Name), zap.Bool("enabled", status.Enabled), zap.String("reason", status.Reason))
	}

	ranked, err := eng.ranker.Rank(ctx, p, jobs)
	if err != nil {
		logger.Fatal("ranking failed", zap.Error(err))
	}
	logger.Debug("embedding cache", zap.Any("stats", eng.cache.Stats(ctx)))

	if len(ranked.Candidates) == 0 {
		logger.Info("exiting", zap.String("reason", "no jobs left after filters"))
		return
	}

	if err := printJSON(ranked); err != nil {
		logger.Fatal("printing the ranking", zap.Error(err))
	}
	if cmd.Flag("yes").Value.String() == "true" {
		return
	}

	if err := browse(ranked); err != nil && !errors.Is(err, promptui.ErrInterrupt) {
		logger.Fatal("exiting", zap.Error(err))
	}
}

// browse lets the user pick candidates and read their score breakdown.
func browse(ranked *ranking.Ranking) error {
	for {
		items := make([]string, 0, len(ranked.Candidates)+2)
		for pos, c := range ranked.Candidates {
			items = append(items, candidateLabel(pos, c))
		}
		items = append(items, PromptSteps, PromptExit)

		candidatePrompt := promptui.Select{
			Label: "Choose a job and press ENTER",
			Items: items,
			Size:  10,
		}

		idx, selected, err := candidatePrompt.Run()
		if err != nil {
			return err
		}

		switch selected {
		case PromptExit:
			return nil
		case PromptSteps:
			for _, step := range ranked.Steps {
				fmt.Printf("%-15s initial %d, dropped %d, left %d\n", step.Name, step.Initial, step.Dropped, step.Left)
			}
		default:
			printBreakdown(ranked.Candidates[idx])
		}
	}
}

func candidateLabel(pos int, c *ranking.Candidate) string {
	name := c.Title
	if c.JobID != "" {
		name = fmt.Sprintf("%s (%s)", name, c.JobID)
	}
	if c.Result == nil {
		return fmt.Sprintf("#%d  failed  %s", pos+1, name)
	}
	return fmt.Sprintf("#%d  %3d  %s", pos+1, c.Result.Score, name)
}

func printBreakdown(c *ranking.Candidate) {
	if c.Result == nil {
		fmt.Printf("job #%d could not be scored: %s\n", c.Index, c.Error)
		return
	}

	r := c.Result
	fmt.Printf("score %d (cosine %s)\n", r.Score, strconv.FormatFloat(r.CosineSimilarity, 'f', 4, 64))
	for _, reason := range r.Reasons {
		fmt.Printf("  %+4d  %-8s %-22s %s\n", reason.Amount, reason.Kind, reason.Type, reason.Detail)
	}

	for _, category := range []struct {
		name    string
		matches int
	}{
		{"functions", len(r.Overlaps.Functions)},
		{"skills", len(r.Overlaps.Skills)},
		{"languages", len(r.Overlaps.Languages)},
		{"outcomes", len(r.Overlaps.Outcomes)},
	} {
		if category.matches > 0 {
			fmt.Printf("  %s: %d job terms matched\n", category.name, category.matches)
		}
	}
	if len(r.Gates) > 0 {
		gates := make([]string, 0, len(r.Gates))
		for _, g := range r.Gates {
			gates = append(gates, string(g.Type))
		}
		fmt.Printf("  gated by: %s\n", strings.Join(gates, ", "))
	}
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spigell/lead-assistant/internal/ai"
	"github.com/spigell/lead-assistant/internal/ai/gemini"
	"github.com/spigell/lead-assistant/internal/logger"
	"github.com/spigell/lead-assistant/internal/scoring"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a single lead and print the result",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("industry", "i", "", "industry of the prospect")
	scoreCmd.Flags().StringP("text", "t", "", "website text of the prospect")
	scoreCmd.Flags().StringP("requirement", "r", "", "stated requirement of the prospect")
	scoreCmd.Flags().StringP("url", "u", "", "website url to fetch when no text is given (needs website.enabled)")
	scoreCmd.Flags().Bool("json-output", false, "print the result as json")
}

func score(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	var generator *gemini.Generator
	if config.Scoring.Strategy != scoring.StrategyRules {
		generator, err = newGenerator(ctx, config.AI.Gemini)
		if err != nil {
			logger.Fatal("loading gemini api key", zap.Error(err), zap.String("hint", apiKeyHint))
		}
	}

	scorer, err := newScorer(config, generator, logger)
	if err != nil {
		logger.Fatal("building lead scorer", zap.Error(err))
	}

	req := &ai.ScoreRequest{
		Industry:    flagString(cmd, "industry"),
		WebsiteText: flagString(cmd, "text"),
		Requirement: flagString(cmd, "requirement"),
		WebsiteURL:  flagString(cmd, "url"),
	}

	res, err := scorer.Score(ctx, req)
	if err != nil {
		logger.Warn("lead scoring failed, reporting degraded result", zap.Error(err))
		res = scoring.Degraded()
	}

	asJSON, _ := cmd.Flags().GetBool("json-output")
	if err := printScore(os.Stdout, scorer.Name(), res, asJSON); err != nil {
		logger.Fatal("printing result", zap.Error(err))
	}
}

func printScore(w io.Writer, strategy string, res *ai.ScoreResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	keywords := "-"
	if len(res.KeywordsFound) > 0 {
		keywords = strings.Join(res.KeywordsFound, ", ")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "strategy:\t%s\n", strategy)
	fmt.Fprintf(tw, "lead score:\t%d\n", res.LeadScore)
	fmt.Fprintf(tw, "reason:\t%s\n", res.Reason)
	fmt.Fprintf(tw, "keywords:\t%s\n", keywords)
	return tw.Flush()
}

func flagString(cmd *cobra.Command, name string) string {
	value, _ := cmd.Flags().GetString(name)
	return strings.TrimSpace(value)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spigell/lead-assistant/internal/ai"
	"github.com/spigell/lead-assistant/internal/ai/gemini"
	"github.com/spigell/lead-assistant/internal/logger"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptAccept     = "Accept"
	PromptRegenerate = "Regenerate"
	PromptQuit       = "Quit"
)

var errQuit = errors.New("quit requested")

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Interactively draft a cold email with Gemini",
	Run: func(_ *cobra.Command, _ []string) {
		draft()
	},
}

func init() {
	rootCmd.AddCommand(draftCmd)
}

func draft() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	generator, err := newGenerator(ctx, config.AI.Gemini)
	if err != nil {
		logger.Fatal("loading gemini api key", zap.Error(err), zap.String("hint", apiKeyHint))
	}

	writer := gemini.NewEmailWriter(generator, logger.Named("gemini"), config.AI.Gemini.MaxLogLength)

	req, err := askEmailRequest()
	if err != nil {
		logger.Fatal("reading prospect details", zap.Error(err))
	}

	for {
		text, err := writer.Generate(ctx, req)
		if err != nil {
			logger.Fatal("generating email", zap.Error(err), zap.String("hint", "check the gemini quota and api key"))
		}

		fmt.Printf("\n%s\n\n", text)

		if err := handleDraftAction(); err != nil {
			if errors.Is(err, errQuit) {
				logger.Info("exiting", zap.String("reason", "draft finished"))
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// handleDraftAction returns nil when another draft is wanted.
func handleDraftAction() error {
	prompt := promptui.Select{
		Label: "What next?",
		Items: []string{PromptAccept, PromptRegenerate, PromptQuit},
	}

	_, action, err := prompt.Run()
	if err != nil {
		return err
	}

	switch action {
	case PromptRegenerate:
		return nil
	case PromptAccept, PromptQuit:
		return errQuit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func askEmailRequest() (*ai.EmailRequest, error) {
	company, err := askText("Company name", true)
	if err != nil {
		return nil, err
	}

	industry, err := askText("Industry", false)
	if err != nil {
		return nil, err
	}

	keywords, err := askText("Keywords (comma separated, empty to describe a requirement)", false)
	if err != nil {
		return nil, err
	}

	req := &ai.EmailRequest{
		CompanyName: company,
		Industry:    industry,
		Keywords:    splitKeywords(keywords),
	}

	if len(req.Keywords) == 0 {
		if req.Requirement, err = askText("Requirement", false); err != nil {
			return nil, err
		}
	}

	return req, nil
}

func askText(label string, required bool) (string, error) {
	prompt := promptui.Prompt{Label: label}
	if required {
		prompt.Validate = func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("value is required")
			}
			return nil
		}
	}

	value, err := prompt.Run()
	return strings.TrimSpace(value), err
}

func splitKeywords(raw string) []string {
	var out []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

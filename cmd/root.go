package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spigell/lead-assistant/internal/ai/gemini"
	"github.com/spigell/lead-assistant/internal/nlp"
	"github.com/spigell/lead-assistant/internal/scoring"
	"github.com/spigell/lead-assistant/internal/server"
	"github.com/spigell/lead-assistant/internal/website"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "lead-assistant"
)

type Config struct {
	Server  server.Config `mapstructure:"server"`
	Scoring ScoringConfig `mapstructure:"scoring"`
	NLP     NLPConfig     `mapstructure:"nlp"`
	AI      AIConfig      `mapstructure:"ai"`
	Website WebsiteConfig `mapstructure:"website"`
}

type ScoringConfig struct {
	Strategy string `mapstructure:"strategy" validate:"oneof=rules ai"`
}

type NLPConfig struct {
	Engine string `mapstructure:"engine" validate:"oneof=full blank"`
	Lazy   bool   `mapstructure:"lazy"`
}

type AIConfig struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

type WebsiteConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	website.Config `mapstructure:",squash"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "lead-assistant scores sales leads and drafts cold outreach emails",
	}

	envBindings = map[string]string{
		"server.port":            "PORT",
		"scoring.strategy":       "LEAD_SCORING_STRATEGY",
		"ai.gemini.api-key":      "GEMINI_API_KEY",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is lead-assistant.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("strategy", "", fmt.Sprintf("scoring strategy (%s)", strings.Join(scoring.Strategies, "|")))

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("scoring.strategy", rootCmd.PersistentFlags().Lookup("strategy"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", server.DefaultPort)
	v.SetDefault("server.read-timeout", server.DefaultReadTimeout)
	v.SetDefault("server.write-timeout", server.DefaultWriteTimeout)
	v.SetDefault("scoring.strategy", scoring.StrategyRules)
	v.SetDefault("nlp.engine", nlp.KindFull)
	v.SetDefault("nlp.lazy", false)
	v.SetDefault("ai.gemini.model", gemini.DefaultModel)
	v.SetDefault("ai.gemini.max-log-length", 200)
	v.SetDefault("website.enabled", false)
	v.SetDefault("website.timeout", website.DefaultTimeout)
	v.SetDefault("website.user-agent", website.DefaultUserAgent)
	v.SetDefault("website.max-runes", website.DefaultMaxRunes)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional; defaults and environment are enough to run.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if config == nil {
		config = &Config{}
	}

	config.Scoring.Strategy = strings.ToLower(strings.TrimSpace(config.Scoring.Strategy))
	config.NLP.Engine = strings.ToLower(strings.TrimSpace(config.NLP.Engine))

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

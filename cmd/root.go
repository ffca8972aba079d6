package cmd

import (
	"log"

	"github.com/warmlead/reachout/internal/peoplesearch"
	"github.com/warmlead/reachout/internal/scoring"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "reachout"
)

type Config struct {
	Intent          string                     `mapstructure:"intent"`
	Search          *peoplesearch.SearchParams `mapstructure:"search"`
	ExcludeFile     string                     `mapstructure:"exclude-file"`
	UserAgent       string                     `mapstructure:"user-agent"`
	SearchTokenFile string                     `mapstructure:"search-token-file"`
	ProfileFile     string                     `mapstructure:"profile-file"`
	HistoryFile     string                     `mapstructure:"history-file"`
	Outreach        *OutreachConfig            `mapstructure:"outreach"`
	Scoring         *ScoringConfig             `mapstructure:"scoring"`
	AI              *AIConfig                  `mapstructure:"ai"`
}

type OutreachConfig struct {
	From       string `mapstructure:"from"`
	Subject    string `mapstructure:"subject"`
	Message    string `mapstructure:"message"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

type ScoringConfig struct {
	MinimumScore    float64                  `mapstructure:"minimum-score"`
	BatchSize       int                      `mapstructure:"batch-size"`
	BatchDelayMS    int                      `mapstructure:"batch-delay-ms"`
	LLMTimeoutSec   int                      `mapstructure:"llm-timeout-sec"`
	PrioritySchools []scoring.PrioritySchool `mapstructure:"priority-schools"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "reachout is a simple cli for finding professional contacts, ranking them and sending outreach emails",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("search-token-file", "REACHOUT_SEARCH_TOKEN_FILE"); err != nil {
		log.Fatalf("binding REACHOUT_SEARCH_TOKEN_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("outreach.api-key-file", "RESEND_API_KEY_FILE"); err != nil {
		log.Fatalf("binding RESEND_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is reachout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

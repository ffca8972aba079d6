package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/warmlead/reachout/internal/ai"
	"github.com/warmlead/reachout/internal/ai/gemini"
	"github.com/warmlead/reachout/internal/contacts"
	"github.com/warmlead/reachout/internal/filtering"
	"github.com/warmlead/reachout/internal/history"
	"github.com/warmlead/reachout/internal/logger"
	"github.com/warmlead/reachout/internal/outreach"
	"github.com/warmlead/reachout/internal/peoplesearch"
	"github.com/warmlead/reachout/internal/scoring"
	"github.com/warmlead/reachout/internal/secrets"
	"github.com/warmlead/reachout/internal/store"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes                 = "Yes"
	PromptNo                  = "No"
	PromptBack                = "back"
	PromptReportByCompany     = "Report by company"
	PromptManualSend          = "Send outreach in manual mode"
	PromptAppendToExcludeFile = "Append all candidates to exclude file"
	PromptCandidatesToFile    = "Dump candidates to file"

	defaultSubject     = "Would love to connect"
	searchCacheTTL     = 10 * time.Minute
	defaultLLMTimeout  = 60 * time.Second
	evictionInterval   = time.Minute
	defaultHistoryFile = ".reachout/history.db"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptYes, PromptNo, PromptReportByCompany, PromptManualSend, PromptCandidatesToFile},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reachout main command",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("do-not-exclude-contacted", "f", false, "do not exclude candidates if already contacted")
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation if found suitable candidates")
	runCmd.Flags().StringP("exclude-file", "e", "", "special file with candidates to exclude. Default is unset.")
	runCmd.Flags().StringP("intent", "i", "", "what kind of contacts to look for, e.g. 'Find SWE contacts at Amazon in Seattle'")

	viper.BindPFlag("exclude-file", runCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("intent", runCmd.Flags().Lookup("intent"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the reachout", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	intent := strings.TrimSpace(viper.GetString("intent"))
	if intent == "" && config.Intent != "" {
		intent = strings.TrimSpace(config.Intent)
	}
	if intent == "" {
		logger.Fatal("intent is required to search and rank candidates",
			zap.String("hint", "set the 'intent' key in the configuration file or pass --intent"),
		)
	}

	if config.Outreach == nil || config.Outreach.From == "" {
		logger.Fatal("sender address is required under outreach.from to send emails")
	}

	searchToken, err := resolveSearchToken(config)
	if err != nil {
		logger.Fatal(
			"loading people search token",
			zap.Error(err),
			zap.String("hint", "set REACHOUT_SEARCH_TOKEN_FILE environment variable or the 'search-token-file' key in the configuration file"),
		)
	}

	ps := peoplesearch.New(ctx, logger, searchToken)

	if config.UserAgent != "" {
		ps.UserAgent = config.UserAgent
	}

	profile := loadProfile(config, logger)

	hist, err := history.Open(historyPath(config))
	if err != nil {
		logger.Fatal("opening outreach history", zap.Error(err))
	}
	defer hist.Close()

	cache := store.NewInMem()
	cache.StartEviction(ctx, evictionInterval)

	logger.Info("starting the search", zap.String("intent", intent))

	candidates, err := getCandidates(ps, config, intent, cache, logger)
	if err != nil {
		logger.Fatal("getting candidates", zap.Error(err))
	}

	if candidates.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no candidates found"))
		return
	}

	logger.Info("getting candidates", zap.Int("count", candidates.Len()))

	filterCfg := &filtering.Config{
		ExcludeFile:  viper.GetString("exclude-file"),
		MinimumScore: minimumScore(config),
	}
	filterDeps := filtering.Deps{History: hist, Logger: logger}

	preFilters := []filtering.Filter{
		filtering.NewMissingEmail(),
		filtering.NewContactedHistory(ignoreContacted(cmd)),
		filtering.NewExcludeFile(),
	}

	candidates, err = filtering.Run(ctx, filterCfg, filterDeps, preFilters, candidates)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if candidates.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no candidates left after filters"))
		return
	}

	generator := prepareGenerator(ctx, config.AI, logger)
	strategy := scoring.New(scoringConfig(config), generator, logger)

	logger.Info("scoring candidates",
		zap.String("strategy", strategy.Name()),
		zap.Int("count", candidates.Len()),
	)

	scoreCtx, cancel := context.WithTimeout(ctx, llmTimeout(config))
	candidates.Items = strategy.Score(scoreCtx, profile, intent, candidates.Items)
	cancel()

	candidates, err = filtering.Run(ctx, filterCfg, filterDeps, []filtering.Filter{filtering.NewMinScore()}, candidates)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if candidates.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no candidates passed the minimum score"))
		return
	}

	sender, err := prepareSender(ctx, config, generator, hist, logger)
	if err != nil {
		logger.Fatal("preparing sender", zap.Error(err))
	}

	action := PromptYes
	for {
		var err error
		if cmd.Flag("auto-approve").Value.String() == "false" {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		logger.Info("current list of candidates", zap.Int("count", candidates.Len()))

		if err := handleAction(ctx, action, sender, logger, profile, intent, candidates); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if cmd.Flag("auto-approve").Value.String() == "true" {
			return
		}
	}
}

func handleAction(ctx context.Context, action string, sender *outreach.Sender, logger *zap.Logger, profile *contacts.UserProfile, intent string, candidates *contacts.Candidates) error {
	switch action {
	case PromptYes:
		_, err := sender.SendAll(ctx, profile, intent, candidates)
		if err != nil {
			return err
		}
		return errExit
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptManualSend:
		return manualSend(ctx, sender, logger, profile, intent, candidates)
	case PromptReportByCompany:
		pretty, _ := json.MarshalIndent(candidates.ReportByCompany(), "", "  ")
		logger.Info(string(pretty), zap.Int("candidates count", candidates.Len()))
		return nil
	case PromptCandidatesToFile:
		filename, err := candidates.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func manualSend(ctx context.Context, sender *outreach.Sender, logger *zap.Logger, profile *contacts.UserProfile, intent string, candidates *contacts.Candidates) error {
	for {
		items := make([]string, 0)

		for _, candidate := range candidates.Items {
			label := fmt.Sprintf("%s %s / %s / %s / %.3f",
				candidate.ID, candidate.Name, candidate.Company, candidate.Email, candidate.Score,
			)

			items = append(items, label)
		}

		excludeFile := viper.GetString("exclude-file")
		if excludeFile != "" && candidates.Len() != 0 {
			items = append(items, PromptAppendToExcludeFile)
		}

		candidatePrompt := promptui.Select{
			Label: "Choose a candidate and press ENTER",
			Items: append(items, PromptBack),
		}

		_, candidateSelected, err := candidatePrompt.Run()
		if err != nil {
			return err
		}

		switch candidateSelected {
		case PromptBack:
			return nil
		case PromptAppendToExcludeFile:
			excluded, err := contacts.GetExcludedCandidatesFromFile(excludeFile)
			if err != nil {
				return err
			}

			excluded.Append(candidates.ToExcluded("declined in manual mode"))

			if err = excluded.ToFile(excludeFile); err != nil {
				return err
			}

			logger.Info("appended to exclude file", zap.String("filename", excludeFile))

			candidates.Exclude(contacts.CandidateIDField, excluded.CandidateIDs())
		default:
			candidateID := strings.Split(candidateSelected, " ")[0]

			candidate := candidates.FindByID(candidateID)
			if candidate == nil {
				return fmt.Errorf("there is no such candidate id %s", candidateID)
			}

			if err := sender.Send(ctx, profile, intent, candidate); err != nil {
				return err
			}

			candidates.Exclude(contacts.CandidateIDField, []string{candidateID})
		}
	}
}

func resolveSearchToken(config *Config) (string, error) {
	if config == nil {
		return "", errors.New("config is required")
	}

	tokenFile := strings.TrimSpace(config.SearchTokenFile)
	if tokenFile == "" {
		tokenFile = strings.TrimSpace(viper.GetString("search-token-file"))
	}

	if tokenFile == "" {
		return "", errors.New("people search token file is not configured")
	}

	return secrets.Load(secrets.Source{
		Name: "people search token",
		File: tokenFile,
	})
}

// loadProfile reads the user profile used for relevance scoring. A missing
// profile degrades scoring quality but is not fatal.
func loadProfile(config *Config, logger *zap.Logger) *contacts.UserProfile {
	if config.ProfileFile == "" {
		logger.Warn("no profile file configured, scoring without user context",
			zap.String("hint", "set the 'profile-file' key in the configuration file"),
		)
		return &contacts.UserProfile{}
	}

	profile, err := contacts.LoadUserProfile(config.ProfileFile)
	if err != nil {
		logger.Warn("loading user profile failed, scoring without user context", zap.Error(err))
		return &contacts.UserProfile{}
	}

	return profile
}

// getCandidates returns candidates for the intent, reusing the cached result
// from a previous loop iteration when present.
func getCandidates(ps *peoplesearch.Client, config *Config, intent string, cache store.KV, logger *zap.Logger) (*contacts.Candidates, error) {
	cacheKey := "search:" + intent
	if cached, ok := cache.Get(cacheKey); ok {
		if candidates, ok := cached.(*contacts.Candidates); ok {
			logger.Debug("using cached search results", zap.Int("count", candidates.Len()))
			return candidates, nil
		}
	}

	params := config.Search
	if params == nil {
		params = &peoplesearch.SearchParams{}
	}
	if params.Query == "" {
		params.Query = intent
	}

	results, err := ps.Search(params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	cache.Set(cacheKey, results, searchCacheTTL)

	return results, nil
}

func prepareGenerator(ctx context.Context, cfg *AIConfig, logger *zap.Logger) ai.Generator {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		logger.Warn("unsupported ai provider, falling back to heuristic scoring", zap.String("provider", cfg.Provider))
		return nil
	}

	if cfg.Gemini == nil {
		logger.Warn("gemini configuration is required when ai is enabled, falling back to heuristic scoring")
		return nil
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		logger.Warn("loading gemini api key failed, falling back to heuristic scoring",
			zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file or GEMINI_API_KEY_FILE"),
		)
		return nil
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		logger.Warn("creating gemini generator failed, falling back to heuristic scoring", zap.Error(err))
		return nil
	}

	logger.Info("ai scoring enabled",
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)

	return generator
}

func prepareSender(ctx context.Context, config *Config, generator ai.Generator, hist *history.Store, logger *zap.Logger) (*outreach.Sender, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name: "email provider api key",
		File: config.Outreach.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set outreach.api-key-file or RESEND_API_KEY_FILE)", err)
	}

	subject := config.Outreach.Subject
	if subject == "" {
		subject = defaultSubject
	}

	client := outreach.NewClient(ctx, logger, apiKey)
	drafter := ai.NewDrafter(generator, config.Outreach.Message, logger)

	return outreach.NewSender(client, drafter, hist, outreach.SenderConfig{
		From:    config.Outreach.From,
		Subject: subject,
	}, logger), nil
}

func ignoreContacted(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	flag := cmd.Flag("do-not-exclude-contacted")
	return flag != nil && strings.EqualFold(flag.Value.String(), "true")
}

func scoringConfig(config *Config) *scoring.Config {
	cfg := &scoring.Config{}
	if config.Scoring == nil {
		return cfg
	}

	cfg.PrioritySchools = config.Scoring.PrioritySchools
	cfg.BatchSize = config.Scoring.BatchSize
	if config.Scoring.BatchDelayMS > 0 {
		cfg.BatchDelay = time.Duration(config.Scoring.BatchDelayMS) * time.Millisecond
	}

	return cfg
}

func minimumScore(config *Config) float64 {
	if config.Scoring == nil {
		return 0
	}
	return config.Scoring.MinimumScore
}

func llmTimeout(config *Config) time.Duration {
	if config.Scoring == nil || config.Scoring.LLMTimeoutSec <= 0 {
		return defaultLLMTimeout
	}
	return time.Duration(config.Scoring.LLMTimeoutSec) * time.Second
}

func historyPath(config *Config) string {
	if config.HistoryFile != "" {
		return config.HistoryFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return defaultHistoryFile
	}
	return filepath.Join(home, defaultHistoryFile)
}

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-autopilot/internal/ai/gemini"
	"github.com/spigell/job-autopilot/internal/dedupe"
	"github.com/spigell/job-autopilot/internal/filtering"
	"github.com/spigell/job-autopilot/internal/insights"
	"github.com/spigell/job-autopilot/internal/logger"
	"github.com/spigell/job-autopilot/internal/matching"
	"github.com/spigell/job-autopilot/internal/posting"
	"github.com/spigell/job-autopilot/internal/profile"
	"github.com/spigell/job-autopilot/internal/secrets"
	"github.com/spigell/job-autopilot/internal/similarity"
	"github.com/spigell/job-autopilot/internal/storage"
)

const (
	PromptYes             = "Yes"
	PromptNo              = "No"
	PromptBack            = "back"
	PromptReportByCompany = "Report by company"
	PromptManualReview    = "Review postings one by one"
	PromptMatchesToFile   = "Dump match results to file"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptYes, PromptNo, PromptReportByCompany, PromptManualReview, PromptMatchesToFile},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Match postings against the resume and record chosen applications",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("ignore-applied", "f", false, "keep postings even when an application is already on record")
	runCmd.Flags().BoolP("auto-approve", "y", false, "record every posting above apply.min-score without asking for confirmation")
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

	logger.Info("starting the job-autopilot", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.ResumeFile == "" {
		logger.Fatal("a parsed resume file is required under resume-file")
	}

	if config.PostingsFile == "" {
		logger.Fatal("a postings file is required under postings-file")
	}

	store, err := storage.Open(config.DatabaseFile)
	if err != nil {
		logger.Fatal("opening the application database",
			zap.Error(err),
			zap.String("hint", "the database file may be corrupted; fix or move it instead of starting with an empty history"),
		)
	}
	defer store.Close()

	scorer := newScorer(ctx, config, logger)

	index, err := dedupe.New(store, scorer, dedupeThresholds(config), logger)
	if err != nil {
		logger.Fatal("building the application index", zap.Error(err))
	}

	matcher, err := matching.New(scorer, matchParams(config), logger)
	if err != nil {
		logger.Fatal("building the matcher", zap.Error(err))
	}

	resume, err := profile.Load(config.ResumeFile)
	if err != nil {
		logger.Fatal("loading the parsed resume", zap.Error(err))
	}

	logger.Info("loaded the resume",
		zap.String("name", resume.Contact.Name),
		zap.Float64("experience_years", resume.TotalExperienceYears),
		zap.Int("skills", len(resume.AllSkills())),
	)

	postings, err := posting.Load(config.PostingsFile)
	if err != nil {
		logger.Fatal("loading postings", zap.Error(err))
	}

	logger.Info("loaded postings", zap.Int("count", postings.Len()))

	if postings.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no postings found"))
		return
	}

	autoApprove := cmd.Flag("auto-approve").Value.String() == "true"

	deps := filtering.Deps{
		Logger:  logger,
		Resume:  resume,
		Matcher: matcher,
		Index:   index,
	}

	steps := []filtering.Filter{
		filtering.NewCompanies(),
		filtering.NewApplied(cmd),
		filtering.NewFit(),
	}

	if config.Match != nil && !config.Match.Enabled {
		filtering.DisableByName(steps, "fit", "disabled in config")
	}

	filtered, results, err := filtering.Run(ctx, filterConfig(config, autoApprove), deps, steps, postings)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}
	postings = filtered

	if postings.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no postings left after filters"))
		return
	}

	action := PromptYes
	for {
		var err error
		if !autoApprove {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		logger.Info("current list of postings", zap.Int("count", postings.Len()))

		if err := handleAction(ctx, action, logger, index, postings, results); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, logger *zap.Logger, index *dedupe.Index, postings *posting.Postings, results map[string]*matching.Result) error {
	switch action {
	case PromptYes:
		if err := recordAll(ctx, logger, index, postings, results); err != nil {
			return err
		}
		return errExit
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptManualReview:
		return manualReview(ctx, logger, index, postings, results)
	case PromptReportByCompany:
		pretty, _ := json.MarshalIndent(postings.ReportByCompany(), "", "  ")
		logger.Info(string(pretty), zap.Int("postings count", postings.Len()))
		return nil
	case PromptMatchesToFile:
		filename, err := dumpResults(postings, results)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// recordAll queues an application record for every surviving posting and
// prints insights for the strongest match.
func recordAll(ctx context.Context, logger *zap.Logger, index *dedupe.Index, postings *posting.Postings, results map[string]*matching.Result) error {
	for _, item := range postings.Items {
		if err := record(ctx, logger, index, item); err != nil {
			return err
		}
	}

	// The fit filter hands the postings over ranked, so the first one is
	// the strongest match.
	top := postings.Items[0]
	printInsights(logger, top, results[top.ID])

	logger.Info("recorded applications", zap.Int("count", postings.Len()))
	return nil
}

func record(ctx context.Context, logger *zap.Logger, index *dedupe.Index, item *posting.Posting) error {
	cand := dedupe.CandidateFromPosting(item)
	cand.Status = storage.StatusQueued

	created, app, err := index.Add(ctx, cand)
	if err != nil {
		return fmt.Errorf("recording application %s: %w", item.ID, err)
	}

	if !created {
		logger.Warn("posting is already tracked",
			zap.String("posting_id", item.ID),
			zap.String("existing_id", app.ID),
		)
		return nil
	}

	logger.Info("queued an application",
		zap.String("posting_id", app.ID),
		zap.String("title", item.Title),
		zap.String("company", item.Company),
	)

	return nil
}

func printInsights(logger *zap.Logger, item *posting.Posting, result *matching.Result) {
	tips := insights.Build(result)
	if tips == nil {
		return
	}

	pretty, _ := json.MarshalIndent(tips, "", "  ")
	logger.Info(string(pretty),
		zap.String("posting_id", item.ID),
		zap.String("title", item.Title),
	)
}

func manualReview(ctx context.Context, logger *zap.Logger, index *dedupe.Index, postings *posting.Postings, results map[string]*matching.Result) error {
	for {
		if postings.Len() == 0 {
			return nil
		}

		items := make([]string, 0, postings.Len())
		for _, item := range postings.Items {
			label := fmt.Sprintf("%s %s / %s", item.ID, item.Title, item.Company)
			if item.Match != nil {
				label = fmt.Sprintf("%s / score %.2f", label, item.Match.Score)
			}

			items = append(items, label)
		}

		postingPrompt := promptui.Select{
			Label: "Choose a posting and press ENTER",
			Items: append(items, PromptBack),
		}

		_, selected, err := postingPrompt.Run()
		if err != nil {
			return err
		}

		if selected == PromptBack {
			return nil
		}

		id := strings.Split(selected, " ")[0]
		item := postings.FindByID(id)
		if item == nil {
			return fmt.Errorf("there is no such posting id %s", id)
		}

		if err := record(ctx, logger, index, item); err != nil {
			return err
		}

		printInsights(logger, item, results[item.ID])
		postings.Exclude(posting.FieldID, []string{id})
	}
}

// dumpResults writes the collected match results to a temporary JSON
// file, ranked like the surviving postings. Without match results the
// postings themselves are dumped.
func dumpResults(postings *posting.Postings, results map[string]*matching.Result) (string, error) {
	ranked := make([]*matching.Result, 0, len(results))
	for _, item := range postings.Items {
		if result, ok := results[item.ID]; ok {
			ranked = append(ranked, result)
		}
	}

	if len(ranked) == 0 {
		return postings.DumpToTmpFile()
	}

	file, err := os.CreateTemp("", "match_results_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ranked); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// newScorer builds the similarity scorer, semantic when the Gemini
// backend is configured and lexical-only otherwise.
func newScorer(ctx context.Context, config *Config, logger *zap.Logger) *similarity.Scorer {
	cfg := config.AI
	if cfg == nil || !cfg.Enabled {
		return similarity.NewScorer(nil, 0, logger)
	}

	if cfg.Gemini == nil {
		logger.Warn("semantic matching disabled",
			zap.String("reason", "gemini configuration is missing under ai.gemini"),
		)
		return similarity.NewScorer(nil, 0, logger)
	}

	apiKey, err := resolveAPIKey(cfg.Gemini)
	if err != nil {
		logger.Warn("semantic matching disabled", zap.Error(err))
		return similarity.NewScorer(nil, 0, logger)
	}

	embedder, err := gemini.NewEmbedder(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.Dimensions, cfg.Gemini.MaxRetries, logger)
	if err != nil {
		logger.Warn("semantic matching disabled", zap.Error(err))
		return similarity.NewScorer(nil, 0, logger)
	}

	logger.Info("semantic matching enabled",
		zap.String("provider", "gemini"),
		zap.String("model", embedder.Model()),
	)

	return similarity.NewScorer(embedder, cfg.Gemini.Timeout, logger)
}

func resolveAPIKey(cfg *GeminiConfig) (string, error) {
	file := strings.TrimSpace(cfg.APIKeyFile)
	if file == "" {
		file = strings.TrimSpace(viper.GetString("ai.gemini.api-key-file"))
	}

	key, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: file,
	})
	if err != nil {
		return "", fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	return key, nil
}

func matchParams(config *Config) matching.Params {
	params := matching.Params{Weights: matching.DefaultWeights()}
	if config.Match == nil {
		return params
	}

	if config.Match.Weights != nil {
		params.Weights = *config.Match.Weights
	}

	params.Preferences = matching.Preferences{
		Locations: config.Match.Locations,
		MinSalary: config.Match.MinSalary,
	}
	params.SkillThreshold = config.Match.SkillThreshold

	return params
}

func dedupeThresholds(config *Config) dedupe.Thresholds {
	if config.Dedupe == nil || config.Dedupe.Thresholds == nil {
		return dedupe.DefaultThresholds()
	}
	return *config.Dedupe.Thresholds
}

func filterConfig(config *Config, autoApprove bool) *filtering.Config {
	cfg := &filtering.Config{}

	if config.Apply != nil && config.Apply.Exclude != nil {
		cfg.ExcludedCompanies = config.Apply.Exclude.Companies
	}

	fit := &filtering.FitConfig{}
	if config.Match != nil {
		fit.Workers = config.Match.Workers
	}
	if config.Apply != nil {
		fit.Top = config.Apply.Top
		// Interactive runs keep the whole ranked list; the threshold
		// gates only unattended approval.
		if autoApprove {
			fit.MinScore = config.Apply.MinScore
		}
	}
	cfg.Fit = fit

	return cfg
}

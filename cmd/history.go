package cmd

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-autopilot/internal/dedupe"
	"github.com/spigell/job-autopilot/internal/logger"
	"github.com/spigell/job-autopilot/internal/similarity"
	"github.com/spigell/job-autopilot/internal/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and maintain the recorded application history",
	Run: func(cmd *cobra.Command, _ []string) {
		history(cmd)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().Bool("duplicates", false, "list potential duplicate pairs across recorded applications")
	historyCmd.Flags().Int("cleanup", 0, "remove rejected and unanswered applications older than the given days")
	historyCmd.Flags().String("set-status", "", "update one application, formatted as <id>=<status>")
}

func history(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	store, err := storage.Open(config.DatabaseFile)
	if err != nil {
		logger.Fatal("opening the application database",
			zap.Error(err),
			zap.String("hint", "the database file may be corrupted; fix or move it instead of starting with an empty history"),
		)
	}
	defer store.Close()

	// History maintenance stays offline: the lexical scorer is enough for
	// scanning records that were normalized at insert time.
	index, err := dedupe.New(store, similarity.NewScorer(nil, 0, logger), dedupeThresholds(config), logger)
	if err != nil {
		logger.Fatal("building the application index", zap.Error(err))
	}

	switch {
	case cmd.Flag("set-status").Value.String() != "":
		setStatus(ctx, logger, index, cmd.Flag("set-status").Value.String())
	case cmd.Flag("duplicates").Value.String() == "true":
		reportDuplicates(ctx, logger, index)
	case cmd.Flag("cleanup").Changed:
		cleanup(ctx, logger, index, cmd.Flag("cleanup").Value.String())
	default:
		reportStats(ctx, logger, index)
	}
}

func setStatus(ctx context.Context, logger *zap.Logger, index *dedupe.Index, assignment string) {
	id, status, ok := strings.Cut(assignment, "=")
	if !ok {
		logger.Fatal("invalid set-status value", zap.String("expected format", "<id>=<status>"))
	}

	if err := index.UpdateStatus(ctx, strings.TrimSpace(id), strings.TrimSpace(status)); err != nil {
		logger.Fatal("updating application status", zap.Error(err))
	}
}

func reportDuplicates(ctx context.Context, logger *zap.Logger, index *dedupe.Index) {
	pairs, err := index.PotentialDuplicates(ctx)
	if err != nil {
		logger.Fatal("scanning for duplicates", zap.Error(err))
	}

	if len(pairs) == 0 {
		logger.Info("no potential duplicates found")
		return
	}

	pretty, _ := json.MarshalIndent(pairs, "", "  ")
	logger.Info(string(pretty), zap.Int("pairs", len(pairs)))
}

func cleanup(ctx context.Context, logger *zap.Logger, index *dedupe.Index, daysValue string) {
	days, err := strconv.Atoi(daysValue)
	if err != nil {
		logger.Fatal("parsing the cleanup flag", zap.Error(err))
	}

	removed, err := index.Cleanup(ctx, days)
	if err != nil {
		logger.Fatal("cleaning up old applications", zap.Error(err))
	}

	logger.Info("cleanup finished", zap.Int64("removed", removed))
}

func reportStats(ctx context.Context, logger *zap.Logger, index *dedupe.Index) {
	stats, err := index.Stats(ctx)
	if err != nil {
		logger.Fatal("collecting application stats", zap.Error(err))
	}

	pretty, _ := json.MarshalIndent(stats, "", "  ")
	logger.Info(string(pretty), zap.Int("total", stats.Total))
}

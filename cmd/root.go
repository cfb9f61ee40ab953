package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/job-autopilot/internal/dedupe"
	"github.com/spigell/job-autopilot/internal/matching"
)

const (
	app = "job-autopilot"
)

type Config struct {
	ResumeFile   string        `mapstructure:"resume-file"`
	PostingsFile string        `mapstructure:"postings-file"`
	DatabaseFile string        `mapstructure:"database-file"`
	Match        *MatchConfig  `mapstructure:"match"`
	Apply        *ApplyConfig  `mapstructure:"apply"`
	Dedupe       *DedupeConfig `mapstructure:"dedupe"`
	AI           *AIConfig     `mapstructure:"ai"`
}

// MatchConfig tunes the scoring engine.
type MatchConfig struct {
	Enabled        bool              `mapstructure:"enabled"`
	Weights        *matching.Weights `mapstructure:"weights"`
	Locations      []string          `mapstructure:"locations"`
	MinSalary      int               `mapstructure:"min-salary"`
	SkillThreshold float64           `mapstructure:"skill-threshold"`
	Workers        int               `mapstructure:"workers"`
}

// ApplyConfig controls which surviving postings get recorded.
type ApplyConfig struct {
	MinScore float64 `mapstructure:"min-score"`
	Top      int     `mapstructure:"top"`
	Exclude  *struct {
		Companies []string
	} `mapstructure:"exclude"`
}

// DedupeConfig carries the duplicate detection tuning.
type DedupeConfig struct {
	Thresholds *dedupe.Thresholds `mapstructure:"thresholds"`
}

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile string        `mapstructure:"api-key-file"`
	Model      string        `mapstructure:"model"`
	Dimensions int           `mapstructure:"dimensions"`
	MaxRetries int           `mapstructure:"max-retries"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-autopilot matches scraped job postings against a parsed resume and tracks applications",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-autopilot.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for the run and history commands. If there is no
	// config, we can skip initialization.
	if runCmd.CalledAs() == "" && historyCmd.CalledAs() == "" {
		return
	}

	viper.SetDefault("database-file", "data/applications.db")
	viper.SetDefault("match.enabled", true)
	viper.SetDefault("apply.min-score", 0.8)
	viper.SetDefault("apply.top", 20)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
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

package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spigell/hh-screener/internal/calendar"
	"github.com/spigell/hh-screener/internal/matching"
	"github.com/spigell/hh-screener/internal/pipeline"
	"github.com/spigell/hh-screener/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "hh-screener"
)

type Config struct {
	Store        store.Config         `mapstructure:"store"`
	Screening    ScreeningConfig      `mapstructure:"screening"`
	Matching     matching.Config      `mapstructure:"matching"`
	Scheduling   SchedulingConfig     `mapstructure:"scheduling"`
	Retry        pipeline.RetryPolicy `mapstructure:"retry"`
	StageTimeout time.Duration        `mapstructure:"stage-timeout"`
}

type ScreeningConfig struct {
	Provider       string        `mapstructure:"provider"`
	Mode           string        `mapstructure:"mode"`
	SimulatedDelay time.Duration `mapstructure:"simulated-delay"`
	Gemini         GeminiConfig  `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type SchedulingConfig struct {
	Calendar    string                `mapstructure:"calendar"`
	StaticSlots []calendar.SlotOffset `mapstructure:"static-slots"`
	HTTP        CalendarHTTPConfig    `mapstructure:"http"`
}

type CalendarHTTPConfig struct {
	BaseURL   string `mapstructure:"base-url"`
	TokenFile string `mapstructure:"token-file"`
	UserAgent string `mapstructure:"user-agent"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hh-screener drives candidates through parsing, screening, matching and interview scheduling",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// A missing .env file is fine; the environment may be set some other way.
	_ = godotenv.Load()

	bindings := map[string]string{
		"store.dsn":                     "HH_SCREENER_STORE_DSN",
		"screening.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"scheduling.http.token-file":    "CALENDAR_TOKEN_FILE",
	}
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hh-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	m := matching.DefaultConfig()
	r := pipeline.DefaultRetryPolicy()

	viper.SetDefault("store.backend", store.BackendFile)
	viper.SetDefault("store.path", app+".db.json")

	viper.SetDefault("screening.provider", providerSimulated)
	viper.SetDefault("screening.mode", "chat")
	viper.SetDefault("screening.simulated-delay", "1s")
	viper.SetDefault("screening.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("screening.gemini.max-log-length", 2000)

	viper.SetDefault("matching.weights.skill", m.Weights.Skill)
	viper.SetDefault("matching.weights.experience", m.Weights.Experience)
	viper.SetDefault("matching.weights.screening", m.Weights.Screening)
	viper.SetDefault("matching.top-threshold", m.TopThreshold)
	viper.SetDefault("matching.review-threshold", m.ReviewThreshold)
	viper.SetDefault("matching.red-flag-limit", m.RedFlagLimit)

	viper.SetDefault("scheduling.calendar", calendarStatic)

	viper.SetDefault("retry.max-attempts", r.MaxAttempts)
	viper.SetDefault("retry.backoff", r.Backoff)
	viper.SetDefault("retry.max-backoff", r.MaxBackoff)
	viper.SetDefault("stage-timeout", pipeline.DefaultStageTimeout)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// Defaults are enough to work without a config file, but a broken one is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if len(config.Scheduling.StaticSlots) == 0 {
		config.Scheduling.StaticSlots = calendar.DefaultOffsets()
	}

	return config, nil
}

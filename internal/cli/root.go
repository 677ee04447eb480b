// Package cli implements the continuity command line interface.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/continuity/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "continuity",
	Short: "Continuity - evidence-grounded backstory consistency checking",
	Long: `Continuity checks whether a character backstory is consistent with the
full text of a novel.

It segments the novel into overlapping evidence units, decomposes the
backstory into atomic claims, retrieves the most relevant evidence for
each claim, judges every claim-evidence pair with a language model, and
aggregates the judgments conservatively: a single strong contradiction
is enough to flag the backstory as inconsistent, no matter how much
support the other claims have.

Every verdict is traceable to specific passages of the novel.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("continuity v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.continuity/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.continuity")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CONTINUITY_*
	viper.SetEnvPrefix("CONTINUITY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, the config file and CONTINUITY_* environment
// variables into one Config. API keys come from the environment only.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, &model.ConfigError{Field: "config file", Reason: err.Error()}
	}

	cfg.Output.Verbose = cfg.Output.Verbose || verbose
	cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")

	switch cfg.Judge.Provider {
	case "openai":
		cfg.Judge.APIKey = os.Getenv("OPENAI_API_KEY")
	case "anthropic", "claude":
		cfg.Judge.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.Judge.BaseURL = baseURL
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from config.
func newLogger(cfg *model.Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Output.LogLevel != "" {
		if err := level.Set(cfg.Output.LogLevel); err != nil {
			return nil, &model.ConfigError{Field: "output.log_level", Reason: err.Error()}
		}
	}
	if cfg.Output.Verbose {
		level = zapcore.DebugLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}
	return zapCfg.Build()
}

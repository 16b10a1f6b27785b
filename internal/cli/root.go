package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/distrust/internal/logging"
	"github.com/ppiankov/distrust/internal/model"
)

// Version is set at build time with -ldflags "-X github.com/ppiankov/distrust/internal/cli.Version=..."
var Version = "dev"

var (
	cfgFile  string
	verbose  bool
	logLevel string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "distrust",
	Short: "Distrust - epistemic distrust scoring for evidence sets (non-normative)",
	Long: `Distrust scores how much skepticism a claim's supporting evidence
warrants. It looks at who the sources are, how diverse they are, whether
they look coordinated, and how old they are.

It does not determine what is true. High authority counts toward
distrust, not away from it: official consensus is not independent
confirmation.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// preRun loads configuration and sets up logging for every command
func preRun(cmd *cobra.Command, args []string) error {
	if err := initConfig(cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	level := logging.ParseLevel(viper.GetString("output.log_level"))
	if viper.GetBool("output.verbose") {
		level = slog.LevelDebug
	}
	// JSON diagnostics when the command itself writes JSON to stdout
	jsonLogs := false
	if f := cmd.Flags().Lookup("json"); f != nil && f.Value.String() == "-" {
		jsonLogs = true
	}
	logging.Init(cmd.ErrOrStderr(), level, jsonLogs)
	return nil
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
		fmt.Fprintf(cmd.OutOrStdout(), "distrust %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.distrust/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.PersistentPreRunE = preRun
	rootCmd.AddCommand(versionCmd)
}

// initConfig registers defaults, then reads the config file and DISTRUST_* env vars
func initConfig(flags *pflag.FlagSet) error {
	if err := setDefaults(model.DefaultConfig()); err != nil {
		return err
	}

	_ = viper.BindPFlag("output.verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("output.log_level", flags.Lookup("log-level"))

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".distrust"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("DISTRUST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	} else if verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}

	return nil
}

// setDefaults registers every key of cfg with viper, so env vars can
// override keys that appear in no config file
func setDefaults(cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}

	var walk func(prefix string, node map[string]any)
	walk = func(prefix string, node map[string]any) {
		for k, v := range node {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if child, ok := v.(map[string]any); ok {
				walk(key, child)
				continue
			}
			viper.SetDefault(key, v)
		}
	}
	walk("", tree)

	// Keys omitted from the defaults because they are empty
	for _, key := range []string{
		"embedding.api_key", "embedding.base_url",
		"http.http_proxy", "http.https_proxy", "http.no_proxy",
	} {
		viper.SetDefault(key, "")
	}

	return nil
}

// loadConfig builds the effective configuration
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Embedding.APIKey == "" && strings.EqualFold(cfg.Embedding.Provider, "openai") {
		cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, nil
}

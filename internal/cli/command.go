package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/csvtrans/internal"
	"codeberg.org/snonux/csvtrans/internal/config"
)

// DefaultConfigFile is read from the working directory unless --config is
// given.
const DefaultConfigFile = "config.properties"

// EnvPrefix prefixes environment variables that override config keys,
// for example CSVTRANS_INPUTCSV.
const EnvPrefix = "CSVTRANS"

// UsageError is an error after which the command usage is printed
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// IsUsageError reports whether err asks for the usage to be printed
func IsUsageError(err error) bool {
	var uerr *UsageError
	return errors.As(err, &uerr)
}

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "csvtrans",
		Short: "Batch CSV column translator",
		Long: `csvtrans translates selected columns of a CSV file through a chain of
target languages using the Google and Bing translation APIs, writing one
output file per language.

Settings are read from config.properties, CSVTRANS_* environment variables
and flags, in increasing order of precedence.

Examples:
  csvtrans -i words.csv -c 2,3             # use config.properties for the rest
  csvtrans -i words.csv -c 2 --to fr,de    # chain en -> fr -> de
  csvtrans --config run.properties --bing --bing-to GERMAN`,
		Args:          cobra.NoArgs,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", flags.CfgFile, "config properties file")
	cmd.PersistentFlags().StringVar(&flags.EnvFile, "env", flags.EnvFile, "optional .env file loaded before the config")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "log level: debug, info, warn, error")

	// Local flags
	cmd.Flags().StringVarP(&flags.InputCSV, "inputcsv", "i", "", "input CSV file")
	cmd.Flags().StringVarP(&flags.Columns, "columns", "c", "", "1-based column numbers to translate, e.g. '1,3,4'")
	cmd.Flags().StringVarP(&flags.OutputCSV, "outputcsv", "o", "", "output CSV path; the language is appended to the name")
	cmd.Flags().StringVar(&flags.AccountsCSV, "accounts", "", "accounts CSV file")
	cmd.Flags().StringVar(&flags.From, "from", "", "source language, or 'auto' to detect it per cell")
	cmd.Flags().StringVar(&flags.To, "to", "", "comma separated target language chain, replaces toLanguageN")
	cmd.Flags().StringVar(&flags.BingTo, "bing-to", "", "target language of the terminal Bing stage")
	cmd.Flags().BoolVar(&flags.Google, "google", false, "enable the Google provider")
	cmd.Flags().BoolVar(&flags.Bing, "bing", false, "enable the Bing provider")
	cmd.Flags().IntVar(&flags.Workers, "workers", flags.Workers, "rows translated in parallel")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "timeout of a single provider request")
	cmd.Flags().IntVar(&flags.Retries, "retries", flags.Retries, "retries for temporary provider errors")
	cmd.Flags().Float64Var(&flags.Rate, "rate", flags.Rate, "requests per second per provider (0 = unlimited)")
	cmd.Flags().StringVar(&flags.CacheDB, "cache-db", "", "SQLite file that keeps translations between runs")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "move existing output files to archive/ before writing")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	bindings := map[string]*pflag.Flag{
		config.KeyInputCSV:          cmd.Flags().Lookup("inputcsv"),
		config.KeyColumns:           cmd.Flags().Lookup("columns"),
		config.KeyOutputCSV:         cmd.Flags().Lookup("outputcsv"),
		config.KeyAccountsCSV:       cmd.Flags().Lookup("accounts"),
		config.KeyFromLanguage:      cmd.Flags().Lookup("from"),
		config.KeyToLanguages:       cmd.Flags().Lookup("to"),
		config.KeyToLanguageBing:    cmd.Flags().Lookup("bing-to"),
		config.KeyGoogle:            cmd.Flags().Lookup("google"),
		config.KeyBing:              cmd.Flags().Lookup("bing"),
		config.KeyWorkers:           cmd.Flags().Lookup("workers"),
		config.KeyTimeout:           cmd.Flags().Lookup("timeout"),
		config.KeyMaxRetries:        cmd.Flags().Lookup("retries"),
		config.KeyRequestsPerSecond: cmd.Flags().Lookup("rate"),
		config.KeyCacheDB:           cmd.Flags().Lookup("cache-db"),
		config.KeyArchive:           cmd.Flags().Lookup("archive"),
		config.KeyLogLevel:          cmd.PersistentFlags().Lookup("log-level"),
	}
	for key, flag := range bindings {
		viper.BindPFlag(key, flag)
	}
}

// InitConfig initializes viper configuration. An optional .env file is
// loaded first so CSVTRANS_* variables can live there; the properties file
// itself is required.
func InitConfig(cfgFile, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: failed to load env file %s: %v", config.ErrConfig, envFile, err)
		}
	}

	if cfgFile == "" {
		cfgFile = DefaultConfigFile
	}
	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("properties")

	// Environment variables
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: failed to read %s: %v", config.ErrConfig, cfgFile, err)
	}
	return nil
}

// LoadConfig initializes viper from the flags and builds the run config.
// Missing required settings and bad column lists become usage errors.
func LoadConfig(flags *Flags) (*config.Config, error) {
	if err := InitConfig(flags.CfgFile, flags.EnvFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		var colErr *config.InvalidColumnSpecError
		if errors.Is(err, config.ErrMissing) || errors.As(err, &colErr) {
			return nil, &UsageError{Err: err}
		}
		return nil, err
	}
	return cfg, nil
}

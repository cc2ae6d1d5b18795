// Package config turns the merged properties file, environment and flags
// into an immutable run configuration.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/csvtrans/internal/translation"
)

// Keys read from the properties file. Flags and CSVTRANS_* environment
// variables bind to the same keys.
const (
	KeyGoogle            = "google"
	KeyBing              = "bing"
	KeyInputCSV          = "inputCsv"
	KeyOutputCSV         = "outputCsv"
	KeyAccountsCSV       = "accountsCsv"
	KeyColumns           = "columns"
	KeyFromLanguage      = "fromLanguage"
	KeyToLanguagePrefix  = "toLanguage"
	KeyToLanguages       = "toLanguages"
	KeyToLanguageBing    = "toLanguageBing"
	KeyWorkers           = "workers"
	KeyTimeout           = "timeout"
	KeyMaxRetries        = "maxRetries"
	KeyRequestsPerSecond = "requestsPerSecond"
	KeyCacheDB           = "cacheDb"
	KeyProxyHost         = "proxyHost"
	KeyProxyPort         = "proxyPort"
	KeyProxyUser         = "proxyUser"
	KeyProxyPassword     = "proxyPassword"
	KeyLogLevel          = "logLevel"
	KeyArchive           = "archive"
)

// Defaults
const (
	DefaultOutputCSV         = "output.csv"
	DefaultAccountsCSV       = "accounts.csv"
	DefaultWorkers           = 4
	DefaultTimeout           = 30 * time.Second
	DefaultMaxRetries        = 2
	DefaultRequestsPerSecond = 5.0
	DefaultLogLevel          = "info"
)

var (
	// ErrConfig marks fatal configuration errors
	ErrConfig = errors.New("config error")
	// ErrMissing marks a required setting that is absent; the CLI prints
	// usage for it
	ErrMissing = fmt.Errorf("%w: missing required setting", ErrConfig)
)

// Config holds the run parameters
type Config struct {
	UseGoogle bool
	UseBing   bool

	InputPath    string
	OutputPath   string
	AccountsPath string

	Columns ColumnSelector

	SourceLanguage string
	// TargetLanguages is the chain; order defines stage order
	TargetLanguages []string
	// BingTargetLanguage is only read when UseBing is set
	BingTargetLanguage string

	Workers           int
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
	CacheDB           string
	Proxy             translation.ProxyConfig
	LogLevel          string
	Archive           bool
}

// SetDefaults registers the default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyOutputCSV, DefaultOutputCSV)
	v.SetDefault(KeyAccountsCSV, DefaultAccountsCSV)
	v.SetDefault(KeyWorkers, DefaultWorkers)
	v.SetDefault(KeyTimeout, DefaultTimeout.String())
	v.SetDefault(KeyMaxRetries, DefaultMaxRetries)
	v.SetDefault(KeyRequestsPerSecond, DefaultRequestsPerSecond)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
}

// Load builds a Config from v. It fails with an *InvalidColumnSpecError for
// a bad column list and with ErrConfig for anything else that makes the run
// impossible.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		UseGoogle:          IsTruthy(v.GetString(KeyGoogle)),
		UseBing:            IsTruthy(v.GetString(KeyBing)),
		InputPath:          strings.TrimSpace(v.GetString(KeyInputCSV)),
		OutputPath:         strings.TrimSpace(v.GetString(KeyOutputCSV)),
		AccountsPath:       strings.TrimSpace(v.GetString(KeyAccountsCSV)),
		SourceLanguage:     strings.TrimSpace(v.GetString(KeyFromLanguage)),
		TargetLanguages:    targetLanguages(v),
		Workers:            v.GetInt(KeyWorkers),
		MaxRetries:         v.GetInt(KeyMaxRetries),
		RequestsPerSecond:  v.GetFloat64(KeyRequestsPerSecond),
		CacheDB:            strings.TrimSpace(v.GetString(KeyCacheDB)),
		LogLevel:           strings.TrimSpace(v.GetString(KeyLogLevel)),
		Archive:            IsTruthy(v.GetString(KeyArchive)),
	}
	if cfg.UseBing {
		cfg.BingTargetLanguage = strings.TrimSpace(v.GetString(KeyToLanguageBing))
	}

	timeout, err := ParseTimeout(v.GetString(KeyTimeout))
	if err != nil {
		return nil, err
	}
	cfg.Timeout = timeout

	cfg.Proxy = translation.ProxyConfig{
		Host:     strings.TrimSpace(v.GetString(KeyProxyHost)),
		Username: v.GetString(KeyProxyUser),
		Password: v.GetString(KeyProxyPassword),
	}
	if cfg.Proxy.Enabled() {
		port, err := strconv.Atoi(strings.TrimSpace(v.GetString(KeyProxyPort)))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid %s %q", ErrConfig, KeyProxyPort, v.GetString(KeyProxyPort))
		}
		cfg.Proxy.Port = port
	}

	columns, err := ParseColumns(v.GetString(KeyColumns))
	if err != nil {
		return nil, err
	}
	cfg.Columns = columns

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that Load cannot default
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("%w: %s", ErrMissing, KeyInputCSV)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("%w: %s", ErrMissing, KeyOutputCSV)
	}
	if len(c.Columns) == 0 {
		return fmt.Errorf("%w: %s", ErrMissing, KeyColumns)
	}
	if (c.UseGoogle || c.UseBing) && c.AccountsPath == "" {
		return fmt.Errorf("%w: %s (a provider is enabled)", ErrMissing, KeyAccountsCSV)
	}
	if c.UseBing && c.BingTargetLanguage == "" {
		return fmt.Errorf("%w: %s (bing is enabled)", ErrMissing, KeyToLanguageBing)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: %s must be at least 1, got %d", ErrConfig, KeyWorkers, c.Workers)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrConfig, KeyMaxRetries)
	}
	if c.Proxy.Enabled() {
		if _, err := c.Proxy.URL(); err != nil {
			return fmt.Errorf("%w: %v", ErrConfig, err)
		}
	}
	return nil
}

// IsTruthy accepts YES in any case, as the properties files always used,
// and true.
func IsTruthy(value string) bool {
	v := strings.TrimSpace(value)
	return strings.EqualFold(v, "yes") || strings.EqualFold(v, "true")
}

// ParseTimeout accepts Go durations ("45s") and plain seconds ("45").
func ParseTimeout(value string) (time.Duration, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return DefaultTimeout, nil
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		if seconds <= 0 {
			return 0, fmt.Errorf("%w: %s must be positive", ErrConfig, KeyTimeout)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrConfig, KeyTimeout, value)
	}
	return d, nil
}

// targetLanguages returns the --to override when given, otherwise
// toLanguage1, toLanguage2, ... up to the first missing or empty key.
func targetLanguages(v *viper.Viper) []string {
	if override := strings.TrimSpace(v.GetString(KeyToLanguages)); override != "" {
		var out []string
		for _, token := range strings.Split(override, ",") {
			if token = strings.TrimSpace(token); token != "" {
				out = append(out, token)
			}
		}
		return out
	}

	var out []string
	for i := 1; ; i++ {
		token := strings.TrimSpace(v.GetString(fmt.Sprintf("%s%d", KeyToLanguagePrefix, i)))
		if token == "" {
			return out
		}
		out = append(out, token)
	}
}

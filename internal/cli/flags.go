package cli

import (
	"time"

	"codeberg.org/snonux/csvtrans/internal/config"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile  string
	EnvFile  string
	LogLevel string
	Archive  bool

	// Batch flags
	InputCSV    string
	OutputCSV   string
	AccountsCSV string
	Columns     string

	// Language chain flags
	From   string
	To     string
	BingTo string

	// Provider flags
	Google  bool
	Bing    bool
	Workers int
	Timeout time.Duration
	Retries int
	Rate    float64
	CacheDB string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		CfgFile:  DefaultConfigFile,
		EnvFile:  ".env",
		LogLevel: config.DefaultLogLevel,
		Workers:  config.DefaultWorkers,
		Timeout:  config.DefaultTimeout,
		Retries:  config.DefaultMaxRetries,
		Rate:     config.DefaultRequestsPerSecond,
	}
}

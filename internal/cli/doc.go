// Package cli provides command-line interface setup and configuration
// for csvtrans. It handles flag parsing, command creation, and merging the
// properties file, environment and flags using cobra and viper.
package cli

// Package processor runs a complete translation batch. It wires the
// accounts, provider clients, cache and pipeline together from a loaded
// config and writes the output files. This package serves as the main
// coordinator between all other components.
package processor

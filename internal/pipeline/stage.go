package pipeline

import (
	"fmt"
	"strings"

	"codeberg.org/snonux/csvtrans/internal/accounts"
	"codeberg.org/snonux/csvtrans/internal/config"
)

// BingToken is the chain token that denotes the Bing terminal stage
const BingToken = "bing"

// Stage is one hop of the chain. Stages are built once per run and executed
// in order for every selected cell.
type Stage struct {
	Index int
	// Key names the output file: the configured chain token
	Key string
	// Source and Target are the language tokens handed to the provider
	Source string
	Target string
	// Provider is KindNone for stages that pass values through
	Provider accounts.ProviderKind
	// Terminal marks the Bing stage, which uses the dedicated Bing target
	Terminal bool
}

// BuildStages turns the configured chain into stage descriptors. When Bing
// is enabled a terminal Bing stage is appended unless the chain already
// names one. A chain token that names Bing routes to the Bing client with
// the Bing target language, or passes values through when Bing is disabled
// or has no target. Other tokens go to Google when it is enabled and pass
// through otherwise.
//
// A stage reads the language written by the nearest earlier stage that has
// a provider, or the global source language if there is none. Repeated
// tokens get a numeric suffix so every stage keeps its own output file.
func BuildStages(cfg *config.Config) []Stage {
	tokens := append([]string(nil), cfg.TargetLanguages...)
	if cfg.UseBing && !hasBingToken(tokens) {
		tokens = append(tokens, BingToken)
	}
	bingReady := cfg.UseBing && strings.TrimSpace(cfg.BingTargetLanguage) != ""

	stages := make([]Stage, 0, len(tokens))
	seen := make(map[string]int, len(tokens))
	source := cfg.SourceLanguage
	for i, token := range tokens {
		st := Stage{
			Index:  i,
			Key:    token,
			Source: source,
			Target: token,
		}

		switch {
		case isBingToken(token):
			st.Key = BingToken
			st.Terminal = true
			st.Target = cfg.BingTargetLanguage
			if bingReady {
				st.Provider = accounts.KindBing
			}
		case cfg.UseGoogle:
			st.Provider = accounts.KindGoogle
		default:
			st.Provider = accounts.KindNone
		}

		seen[strings.ToLower(st.Key)]++
		if n := seen[strings.ToLower(st.Key)]; n > 1 {
			st.Key = fmt.Sprintf("%s_%d", st.Key, n)
		}

		if st.Provider != accounts.KindNone {
			source = st.Target
		}
		stages = append(stages, st)
	}
	return stages
}

func isBingToken(token string) bool {
	return strings.EqualFold(strings.TrimSpace(token), BingToken)
}

func hasBingToken(tokens []string) bool {
	for _, token := range tokens {
		if isBingToken(token) {
			return true
		}
	}
	return false
}

// ActiveStages selects the stages that produce an output file. Google alone
// writes every non-terminal stage, Bing alone writes only the terminal
// stage, and both write everything. With neither provider the non-terminal
// stages are written unchanged.
func ActiveStages(stages []Stage, useGoogle, useBing bool) []Stage {
	var out []Stage
	for _, st := range stages {
		if st.Terminal {
			if useBing {
				out = append(out, st)
			}
			continue
		}
		if useGoogle || !useBing {
			out = append(out, st)
		}
	}
	return out
}

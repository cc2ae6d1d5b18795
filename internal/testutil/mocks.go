package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockTranslator mocks a translation provider. It is safe for concurrent use.
//
// Lookups go through Translations keyed by TripleKey(text, from, to) first,
// then by text alone. Without a match the result is "<to>(<text>)", which
// makes chained translations easy to assert on.
type MockTranslator struct {
	ProviderName string
	Translations map[string]string
	Errors       map[string]error
	Delay        time.Duration

	mu    sync.Mutex
	calls []string
	count map[string]int
}

// TripleKey builds the lookup key used by MockTranslator.
func TripleKey(text, from, to string) string {
	return fmt.Sprintf("%s|%s|%s", text, from, to)
}

// Translate mocks translating text
func (m *MockTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	key := TripleKey(text, from, to)

	m.mu.Lock()
	m.calls = append(m.calls, fmt.Sprintf("Translate: %s (%s->%s)", text, from, to))
	if m.count == nil {
		m.count = make(map[string]int)
	}
	m.count[key]++
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if err, ok := m.Errors[key]; ok {
		return "", err
	}
	if err, ok := m.Errors[text]; ok {
		return "", err
	}

	if translation, ok := m.Translations[key]; ok {
		return translation, nil
	}
	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}

	return fmt.Sprintf("%s(%s)", to, text), nil
}

// Name returns the provider name
func (m *MockTranslator) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// Calls returns a copy of the recorded calls in call order
func (m *MockTranslator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how often the triple was requested
func (m *MockTranslator) CallCount(text, from, to string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count[TripleKey(text, from, to)]
}

// TotalCalls returns the number of Translate calls
func (m *MockTranslator) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/csvtrans/internal/accounts"
	"codeberg.org/snonux/csvtrans/internal/batch"
	"codeberg.org/snonux/csvtrans/internal/cache"
	"codeberg.org/snonux/csvtrans/internal/config"
	"codeberg.org/snonux/csvtrans/internal/testutil"
	"codeberg.org/snonux/csvtrans/internal/translation"
)

func columns(t *testing.T, spec string) config.ColumnSelector {
	t.Helper()
	sel, err := config.ParseColumns(spec)
	if err != nil {
		t.Fatal(err)
	}
	return sel
}

func googleChain(targets ...string) []Stage {
	return BuildStages(&config.Config{
		UseGoogle:       true,
		SourceLanguage:  "en",
		TargetLanguages: targets,
	})
}

func newTestPipeline(t *testing.T, stages []Stage, cols string, google, bing translation.Provider) *Pipeline {
	t.Helper()
	clients := map[accounts.ProviderKind]translation.Provider{}
	if google != nil {
		clients[accounts.KindGoogle] = google
	}
	if bing != nil {
		clients[accounts.KindBing] = bing
	}
	return New(Options{
		Stages:  stages,
		Columns: columns(t, cols),
		Clients: clients,
		Workers: 4,
		Logger:  zerolog.Nop(),
	})
}

func cell(buf Buffer, row, col int) string {
	return buf.Rows[row][col]
}

func TestRunChainFeedsForward(t *testing.T) {
	google := &testutil.MockTranslator{ProviderName: "google"}
	p := newTestPipeline(t, googleChain("fr", "de", "es"), "1", google, nil)

	buffers, _, err := p.Run(context.Background(), []batch.Row{{"hello"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"fr(hello)", "de(fr(hello))", "es(de(fr(hello)))"}
	for i, w := range want {
		if got := cell(buffers[i], 0, 0); got != w {
			t.Errorf("stage %d = %q, want %q", i, got, w)
		}
	}

	if google.CallCount("hello", "en", "fr") != 1 ||
		google.CallCount("fr(hello)", "fr", "de") != 1 ||
		google.CallCount("de(fr(hello))", "de", "es") != 1 {
		t.Errorf("unexpected calls: %v", google.Calls())
	}
	if google.CallCount("hello", "en", "de") != 0 {
		t.Error("stage 2 must translate the stage 1 output, not the original")
	}
}

func TestRunCacheCallsProviderOncePerTriple(t *testing.T) {
	google := &testutil.MockTranslator{ProviderName: "google", Delay: 5 * time.Millisecond}
	p := newTestPipeline(t, googleChain("fr"), "1,2", google, nil)

	rows := []batch.Row{
		{"hello", "hello"},
		{"hello", "world"},
		{"world", "hello"},
		{" hello ", "world"},
	}
	buffers, stats, err := p.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if n := google.CallCount("hello", "en", "fr"); n != 1 {
		t.Errorf("hello calls = %d, want 1", n)
	}
	if n := google.CallCount("world", "en", "fr"); n != 1 {
		t.Errorf("world calls = %d, want 1", n)
	}
	if google.TotalCalls() != 2 {
		t.Errorf("total calls = %d, want 2", google.TotalCalls())
	}
	if got := cell(buffers[0], 3, 0); got != "fr(hello)" {
		t.Errorf("trimmed lookup = %q", got)
	}
	if stats.Translated != 2 || stats.Cached != 6 || stats.Cells != 8 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRunStatsArePerRun(t *testing.T) {
	google := &testutil.MockTranslator{ProviderName: "google"}
	p := newTestPipeline(t, googleChain("fr"), "1", google, nil)

	if _, _, err := p.Run(context.Background(), []batch.Row{{"hello"}, {"world"}}); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	_, stats, err := p.Run(context.Background(), []batch.Row{{"hello"}})
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	want := Stats{Rows: 1, Cells: 1, Cached: 1}
	if stats != want {
		t.Errorf("second run stats = %+v, want %+v", stats, want)
	}
}

func TestRunPassThroughColumns(t *testing.T) {
	google := &testutil.MockTranslator{}
	p := newTestPipeline(t, googleChain("fr", "de"), "2", google, nil)

	rows := []batch.Row{
		{"id-1", "cat", " keep me ", ""},
		{"id-2", "dog"},
		{"only"},
	}
	buffers, _, err := p.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, buf := range buffers {
		for r, row := range rows {
			got := buf.Rows[r]
			if len(got) != len(row) {
				t.Fatalf("stage %s row %d has %d fields, want %d", buf.Stage.Key, r, len(got), len(row))
			}
			for c := range row {
				if c == 1 {
					continue
				}
				if got[c] != row[c] {
					t.Errorf("stage %s row %d col %d = %q, want %q", buf.Stage.Key, r, c, got[c], row[c])
				}
			}
		}
	}
	if got := cell(buffers[1], 1, 1); got != "de(fr(dog))" {
		t.Errorf("translated cell = %q", got)
	}
}

func TestRunFailureIsNonFatal(t *testing.T) {
	google := &testutil.MockTranslator{
		Errors: map[string]error{
			testutil.TripleKey("broken", "en", "fr"): errors.New("provider down"),
		},
	}
	p := newTestPipeline(t, googleChain("fr", "de"), "1", google, nil)

	buffers, stats, err := p.Run(context.Background(), []batch.Row{{"ok"}, {"broken"}, {"fine"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := cell(buffers[0], 1, 0); got != "broken" {
		t.Errorf("failed cell = %q, want original value", got)
	}
	// the next stage still runs on the unchanged value
	if got := cell(buffers[1], 1, 0); got != "de(broken)" {
		t.Errorf("next stage = %q", got)
	}
	if got := cell(buffers[1], 0, 0); got != "de(fr(ok))" {
		t.Errorf("other row = %q", got)
	}
	if got := cell(buffers[1], 2, 0); got != "de(fr(fine))" {
		t.Errorf("other row = %q", got)
	}
	if stats.Failed != 1 {
		t.Errorf("Failed = %d, want 1", stats.Failed)
	}
}

func TestRunFailureNotCached(t *testing.T) {
	google := &testutil.MockTranslator{
		Errors: map[string]error{"flaky": errors.New("timeout")},
	}
	c := cache.New(nil)
	p := New(Options{
		Stages:  googleChain("fr"),
		Columns: columns(t, "1"),
		Clients: map[accounts.ProviderKind]translation.Provider{accounts.KindGoogle: google},
		Cache:   c,
		Workers: 1,
		Logger:  zerolog.Nop(),
	})

	if _, _, err := p.Run(context.Background(), []batch.Row{{"flaky"}, {"flaky"}}); err != nil {
		t.Fatal(err)
	}
	if n := google.CallCount("flaky", "en", "fr"); n != 2 {
		t.Errorf("calls = %d, want 2 (errors are not memoized)", n)
	}
	if c.Len() != 0 {
		t.Errorf("cache has %d entries, want 0", c.Len())
	}
}

func TestRunPreservesRowOrder(t *testing.T) {
	google := &testutil.MockTranslator{Delay: time.Millisecond}
	p := New(Options{
		Stages:  googleChain("fr"),
		Columns: columns(t, "1"),
		Clients: map[accounts.ProviderKind]translation.Provider{accounts.KindGoogle: google},
		Workers: 8,
		Logger:  zerolog.Nop(),
	})

	var rows []batch.Row
	for i := 0; i < 50; i++ {
		rows = append(rows, batch.Row{fmt.Sprintf("word%02d", i), fmt.Sprint(i)})
	}

	buffers, stats, err := p.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for i := range rows {
		want := batch.Row{fmt.Sprintf("fr(word%02d)", i), fmt.Sprint(i)}
		if !reflect.DeepEqual(buffers[0].Rows[i], want) {
			t.Fatalf("row %d = %v, want %v", i, buffers[0].Rows[i], want)
		}
	}
	if stats.Rows != 50 {
		t.Errorf("Rows = %d", stats.Rows)
	}
}

func TestRunBingTerminalStage(t *testing.T) {
	google := &testutil.MockTranslator{ProviderName: "google"}
	bing := &testutil.MockTranslator{ProviderName: "bing"}
	stages := BuildStages(&config.Config{
		UseGoogle:          true,
		UseBing:            true,
		SourceLanguage:     "en",
		TargetLanguages:    []string{"fr"},
		BingTargetLanguage: "GERMAN",
	})
	p := newTestPipeline(t, stages, "1", google, bing)

	buffers, _, err := p.Run(context.Background(), []batch.Row{{"hello"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := cell(buffers[1], 0, 0); got != "GERMAN(fr(hello))" {
		t.Errorf("bing stage = %q", got)
	}
	if bing.CallCount("fr(hello)", "fr", "GERMAN") != 1 {
		t.Errorf("bing calls = %v", bing.Calls())
	}
	if google.TotalCalls() != 1 {
		t.Errorf("google calls = %v", google.Calls())
	}
}

func TestRunWithoutProviderPassesThrough(t *testing.T) {
	stages := BuildStages(&config.Config{SourceLanguage: "en", TargetLanguages: []string{"fr"}})
	p := newTestPipeline(t, stages, "1", nil, nil)

	buffers, stats, err := p.Run(context.Background(), []batch.Row{{"hello", "x"}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(buffers[0].Rows[0], batch.Row{"hello", "x"}) {
		t.Errorf("row = %v", buffers[0].Rows[0])
	}
	if stats.PassedThrough != 1 {
		t.Errorf("PassedThrough = %d", stats.PassedThrough)
	}
}

func TestRunBlankCellsSkipProvider(t *testing.T) {
	google := &testutil.MockTranslator{}
	p := newTestPipeline(t, googleChain("fr"), "1", google, nil)

	buffers, _, err := p.Run(context.Background(), []batch.Row{{"  "}, {""}})
	if err != nil {
		t.Fatal(err)
	}
	if google.TotalCalls() != 0 {
		t.Errorf("calls = %v", google.Calls())
	}
	if cell(buffers[0], 0, 0) != "  " {
		t.Errorf("blank cell changed: %q", cell(buffers[0], 0, 0))
	}
}

func TestRunAutoDetectSource(t *testing.T) {
	google := &testutil.MockTranslator{}
	stages := BuildStages(&config.Config{
		UseGoogle:       true,
		SourceLanguage:  "auto",
		TargetLanguages: []string{"en", "fr"},
	})
	p := newTestPipeline(t, stages, "1", google, nil)
	p.detect = func(text string) string {
		if text == "guten Morgen" {
			return "de"
		}
		return ""
	}

	if _, _, err := p.Run(context.Background(), []batch.Row{{"guten Morgen"}, {"zzz"}}); err != nil {
		t.Fatal(err)
	}
	if google.CallCount("guten Morgen", "de", "en") != 1 {
		t.Errorf("detected source not used: %v", google.Calls())
	}
	// undetectable text falls back to English
	if google.CallCount("zzz", "en", "en") != 1 {
		t.Errorf("fallback source not used: %v", google.Calls())
	}
	// later stages read the previous target
	if google.CallCount("en(guten Morgen)", "en", "fr") != 1 {
		t.Errorf("second stage source wrong: %v", google.Calls())
	}
}

func TestRunCanceled(t *testing.T) {
	google := &testutil.MockTranslator{Delay: time.Second}
	p := newTestPipeline(t, googleChain("fr"), "1", google, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := p.Run(ctx, []batch.Row{{"a"}, {"b"}})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want deadline exceeded", err)
	}
}

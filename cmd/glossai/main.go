// Command glossai scans chapter files for glossary terms and batch-translates
// them with glossary-constrained AI prompts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ZaguanLabs/glossai"
	"github.com/ZaguanLabs/glossai/cache"
	"github.com/ZaguanLabs/glossai/processor"
	"github.com/ZaguanLabs/glossai/provider"
	"github.com/ZaguanLabs/glossai/store"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = glossai.Version
	commit    = glossai.GitCommit
	buildDate = glossai.BuildDate
)

// fileConfig is the optional YAML project config. Flags set on the
// command line override it.
type fileConfig struct {
	Project      string  `yaml:"project"`
	Lang         string  `yaml:"lang"`
	Source       string  `yaml:"source"`
	Provider     string  `yaml:"provider"`
	Model        string  `yaml:"model"`
	Style        string  `yaml:"style"`
	Context      string  `yaml:"context"`
	DB           string  `yaml:"db"`
	CooldownSecs float64 `yaml:"cooldown_secs"`
	RPM          int     `yaml:"rpm"`
	CacheTTL     int     `yaml:"cache_ttl"`
	RedisURL     string  `yaml:"redis_url"`
	IncludeStale bool    `yaml:"include_stale"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	// Best-effort .env loading; a missing file is not an error.
	_ = godotenv.Load()

	fs := flag.NewFlagSet("glossai", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Flags
	project := fs.String("project", "", "Project ID (required)")
	targetLang := fs.String("lang", "", "Target language code (e.g., en_US, es_ES)")
	sourceLang := fs.String("source", "zh_CN", "Source language code")
	providerName := fs.String("provider", "openai", "AI provider: openai or ollama")
	model := fs.String("model", "", "Model to use (provider default if empty)")
	apiKey := fs.String("api-key", "", "OpenAI API key (default: OPENAI_API_KEY env)")
	styleStr := fs.String("style", "faithful", "Translation style: faithful, literal or liberal")
	contextStr := fs.String("context", "", "Translation context (e.g., 'xianxia web novel')")
	configPath := fs.String("config", "", "YAML project config file")
	dbPath := fs.String("db", "glossai.db", "SQLite database file")
	scanMode := fs.Bool("scan", false, "Deep-scan chapters for glossary terms instead of translating")
	dryRun := fs.Bool("dry-run", false, "Show what would be translated without calling the provider")
	cooldownSecs := fs.Float64("cooldown", 2, "Seconds to wait between provider calls")
	rpm := fs.Int("rpm", 0, "Rate limit in requests per minute (0 to disable)")
	cacheTTL := fs.Int("cache-ttl", 3600, "Result cache TTL in seconds (0 to disable)")
	redisURL := fs.String("redis", "", "Redis URL for the result cache (default: in-memory)")
	includeStale := fs.Bool("include-stale", false, "Re-translate chapters whose source changed")
	exportPath := fs.String("export", "", "Export the project glossary to a JSON file and exit")
	importPath := fs.String("import", "", "Import glossary terms from a JSON file and exit")
	showVersion := fs.Bool("version", false, "Show version")
	quiet := fs.Bool("quiet", false, "Suppress progress output")
	jsonOutput := fs.Bool("json", false, "Output result as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s %s\n", glossai.Name, version)
		if commit != "unknown" && commit != "" {
			fmt.Fprintf(stdout, "  commit:  %s\n", commit)
		}
		if buildDate != "unknown" && buildDate != "" {
			fmt.Fprintf(stdout, "  built:   %s\n", buildDate)
		}
		return nil
	}

	// Merge config file under explicitly set flags.
	if *configPath != "" {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		set := map[string]bool{}
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

		applyString := func(name string, dst *string, val string) {
			if !set[name] && val != "" {
				*dst = val
			}
		}
		applyString("project", project, cfg.Project)
		applyString("lang", targetLang, cfg.Lang)
		applyString("source", sourceLang, cfg.Source)
		applyString("provider", providerName, cfg.Provider)
		applyString("model", model, cfg.Model)
		applyString("style", styleStr, cfg.Style)
		applyString("context", contextStr, cfg.Context)
		applyString("db", dbPath, cfg.DB)
		applyString("redis", redisURL, cfg.RedisURL)
		if !set["cooldown"] && cfg.CooldownSecs > 0 {
			*cooldownSecs = cfg.CooldownSecs
		}
		if !set["rpm"] && cfg.RPM > 0 {
			*rpm = cfg.RPM
		}
		if !set["cache-ttl"] && cfg.CacheTTL > 0 {
			*cacheTTL = cfg.CacheTTL
		}
		if !set["include-stale"] && cfg.IncludeStale {
			*includeStale = true
		}
	}

	// Validate required flags
	if *project == "" {
		fs.Usage()
		return fmt.Errorf("--project is required")
	}

	ctx := context.Background()

	// Open store
	st, err := store.OpenSQLite(ctx, *dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	// Glossary export/import shortcuts
	if *exportPath != "" {
		exporter := store.NewExporter(st.Glossary())
		meta := map[string]string{"target_lang": *targetLang}
		if err := exporter.ExportToFile(ctx, *project, *exportPath, meta); err != nil {
			return fmt.Errorf("exporting glossary: %w", err)
		}
		if !*quiet {
			fmt.Fprintf(stderr, "Glossary exported to %s\n", *exportPath)
		}
		return nil
	}
	if *importPath != "" {
		importer := store.NewImporter(st.Glossary())
		result, err := importer.ImportFromFile(ctx, *project, *importPath)
		if err != nil {
			return fmt.Errorf("importing glossary: %w", err)
		}
		if *jsonOutput {
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		fmt.Fprintf(stdout, "Imported %d terms (%d skipped, %d failed)\n",
			result.Imported, result.Skipped, result.Failed)
		return nil
	}

	// Import chapters from a directory argument, ordered by filename.
	if fs.NArg() > 0 {
		n, err := importChapters(ctx, st, *project, fs.Arg(0))
		if err != nil {
			return err
		}
		if !*quiet {
			fmt.Fprintf(stderr, "Imported %d chapters from %s\n", n, fs.Arg(0))
		}
	}

	docs, err := st.Documents().ListByProject(ctx, *project)
	if err != nil {
		return fmt.Errorf("listing chapters: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("project %q has no chapters (pass a chapter directory)", *project)
	}

	if *targetLang == "" {
		fs.Usage()
		return fmt.Errorf("--lang is required")
	}

	// Result cache
	var resultCache glossai.ResultCache
	if *redisURL != "" {
		rc, err := cache.NewRedisCache(cache.RedisConfig{URL: *redisURL, TTL: *cacheTTL})
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rc.Close()
		resultCache = rc
	} else if *cacheTTL > 0 {
		resultCache = cache.NewInMemoryCache(*cacheTTL)
	}

	// Handle dry-run mode
	if *dryRun {
		return runDryRun(ctx, st, resultCache, *project, *targetLang, docs, *includeStale, stdout, *jsonOutput)
	}

	// Create provider
	p, err := buildProvider(*providerName, *model, *apiKey)
	if err != nil {
		return err
	}

	// Handle scan mode
	if *scanMode {
		return runScan(ctx, st, p, *project, *targetLang, *sourceLang, docs, stdout, stderr, *quiet, *jsonOutput)
	}

	// Wrap with retry, then rate limiting
	var docTranslator glossai.DocumentTranslator = glossai.NewRetryableTranslator(p, glossai.DefaultRetryConfig())
	if *rpm > 0 {
		docTranslator = glossai.NewRateLimitedTranslator(docTranslator, glossai.RateLimitConfig{RequestsPerMinute: *rpm})
	}

	// Build translator
	opts := []glossai.TranslatorOption{
		glossai.WithSourceLang(*sourceLang),
		glossai.WithStyle(glossai.TranslationStyle(*styleStr)),
	}
	if resultCache != nil {
		opts = append(opts, glossai.WithCache(resultCache))
	}
	if *contextStr != "" {
		opts = append(opts, glossai.WithContext(*contextStr))
	}
	translator := glossai.NewTranslator(*targetLang, docTranslator, opts...)

	// Build scheduler
	schedOpts := []glossai.SchedulerOption{
		glossai.WithCooldown(time.Duration(*cooldownSecs * float64(time.Second))),
	}
	if *includeStale {
		schedOpts = append(schedOpts, glossai.WithStaleRequeue())
	}
	if !*quiet {
		schedOpts = append(schedOpts, glossai.WithBatchProgress(func(pr glossai.Progress) {
			fmt.Fprintf(stderr, "[%d/%d] %s\n", pr.Current, pr.Total, pr.Label)
		}))
	}
	sched := glossai.NewScheduler(translator, st.Glossary(), st.Documents(), schedOpts...)

	if !*quiet {
		fmt.Fprintf(stderr, "Translating %d chapters of %s to %s (%s)...\n",
			len(docs), *project, glossai.GetLanguageName(*targetLang), *targetLang)
	}

	start := time.Now()
	batch, err := sched.Start(ctx, *project, docs)
	if err != nil {
		return fmt.Errorf("starting batch: %w", err)
	}

	// First interrupt stops the run after the current chapter.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			if !*quiet {
				fmt.Fprintf(stderr, "Stopping after current chapter...\n")
			}
			batch.Stop()
		case <-batch.Done():
		}
	}()

	report := batch.Wait()
	elapsed := time.Since(start)

	if *jsonOutput {
		if err := outputJSON(stdout, report, elapsed); err != nil {
			return err
		}
	} else if !*quiet {
		fmt.Fprintf(stderr, "\n%s in %v\n", report.State, elapsed.Round(time.Millisecond))
		fmt.Fprintf(stderr, "  Succeeded:  %d\n", report.Succeeded)
		fmt.Fprintf(stderr, "  From cache: %d\n", report.Cached)
		fmt.Fprintf(stderr, "  Failed:     %d\n", report.Failed)
		fmt.Fprintf(stderr, "  Skipped:    %d\n", report.Skipped)
	}

	if report.Failed > 0 {
		return fmt.Errorf("%d chapters failed", report.Failed)
	}
	return nil
}

// loadConfig reads a YAML project config file.
func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// buildProvider constructs the configured AI provider. OpenAI and Ollama
// providers both implement extraction, term and document translation.
func buildProvider(name, model, apiKey string) (fullProvider, error) {
	switch name {
	case "openai":
		key := apiKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("OpenAI API key required (--api-key or OPENAI_API_KEY env)")
		}
		return provider.NewOpenAIProvider(provider.OpenAIConfig{APIKey: key, Model: model}), nil
	case "ollama":
		return provider.NewOllamaProvider(provider.OllamaConfig{
			BaseURL: os.Getenv("OLLAMA_HOST"),
			Model:   model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want openai or ollama)", name)
	}
}

// fullProvider combines the three provider roles.
type fullProvider interface {
	glossai.TermExtractor
	glossai.TermTranslator
	glossai.DocumentTranslator
}

// importChapters loads chapter files from a directory into the store,
// ordered by filename. HTML files are stripped to plain text.
func importChapters(ctx context.Context, st *store.SQLiteStore, projectID, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading chapter directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	htmlNorm := processor.NewHTMLNormalizer()
	plainNorm := processor.NewPlainNormalizer()

	count := 0
	for i, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
		if err != nil {
			return count, fmt.Errorf("reading chapter %s: %w", name, err)
		}

		var norm processor.Normalizer = plainNorm
		switch strings.ToLower(filepath.Ext(name)) {
		case ".html", ".htm":
			norm = htmlNorm
		}
		text, err := norm.Normalize(string(data))
		if err != nil {
			return count, fmt.Errorf("normalizing chapter %s: %w", name, err)
		}

		_, err = st.UpsertDocument(ctx, glossai.Document{
			ProjectID:  projectID,
			Order:      i,
			SourceText: text,
			SourceHash: glossai.HashText(text),
		})
		if err != nil {
			return count, fmt.Errorf("storing chapter %s: %w", name, err)
		}
		count++
	}
	return count, nil
}

// runScan deep-scans the chapters for new glossary terms.
func runScan(ctx context.Context, st *store.SQLiteStore, p fullProvider, projectID, targetLang, sourceLang string, docs []glossai.Document, stdout, stderr io.Writer, quiet, jsonOut bool) error {
	opts := []glossai.ScannerOption{
		glossai.WithScanSourceLang(sourceLang),
	}
	if !quiet {
		opts = append(opts, glossai.WithScanProgress(func(pr glossai.Progress) {
			fmt.Fprintf(stderr, "[%d/%d] %s\n", pr.Current, pr.Total, pr.Label)
		}))
	}
	scanner := glossai.NewScanner(targetLang, p, p, st.Glossary(), opts...)

	report, err := scanner.DeepScan(ctx, projectID, docs)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(stdout, "Scan complete:\n")
	fmt.Fprintf(stdout, "  Extracted:  %d candidates\n", report.Extracted)
	fmt.Fprintf(stdout, "  New:        %d\n", report.New)
	fmt.Fprintf(stdout, "  Inserted:   %d\n", report.Inserted)
	if report.FellBack > 0 {
		fmt.Fprintf(stdout, "  Fell back:  %d (kept original rendering)\n", report.FellBack)
	}
	if report.Failed > 0 {
		fmt.Fprintf(stdout, "  Failed:     %d\n", report.Failed)
	}
	return nil
}

// runDryRun shows the translation queue without calling the provider.
func runDryRun(ctx context.Context, st *store.SQLiteStore, resultCache glossai.ResultCache, projectID, targetLang string, docs []glossai.Document, includeStale bool, stdout io.Writer, jsonOut bool) error {
	plan := glossai.PlanQueue(docs)
	stats := plan.Stats()
	queue := plan.NeedsTranslation(includeStale)

	cacheHits := 0
	if resultCache != nil && len(queue) > 0 {
		glossary, err := st.Glossary().ListByProject(ctx, projectID)
		if err != nil {
			return fmt.Errorf("listing glossary: %w", err)
		}
		hits, _ := glossai.ParallelCacheProbe(resultCache, queue, glossary, targetLang)
		cacheHits = len(hits)
	}

	if jsonOut {
		type dryRunOutput struct {
			Project    string   `json:"project"`
			TargetLang string   `json:"target_lang"`
			Pending    int      `json:"pending"`
			Stale      int      `json:"stale"`
			Fresh      int      `json:"fresh"`
			Queued     int      `json:"queued"`
			CacheHits  int      `json:"cache_hits"`
			Chapters   []string `json:"chapters"`
		}

		out := dryRunOutput{
			Project:    projectID,
			TargetLang: targetLang,
			Pending:    stats.Pending,
			Stale:      stats.Stale,
			Fresh:      stats.Fresh,
			Queued:     len(queue),
			CacheHits:  cacheHits,
		}
		for _, d := range queue {
			out.Chapters = append(out.Chapters, d.Label())
		}

		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(stdout, "Dry run: %s -> %s\n", projectID, targetLang)
	fmt.Fprintf(stdout, "  Pending: %d\n", stats.Pending)
	fmt.Fprintf(stdout, "  Stale:   %d\n", stats.Stale)
	fmt.Fprintf(stdout, "  Fresh:   %d\n", stats.Fresh)
	fmt.Fprintf(stdout, "Would translate %d chapters", len(queue))
	if cacheHits > 0 {
		fmt.Fprintf(stdout, " (%d already cached)", cacheHits)
	}
	fmt.Fprintf(stdout, ":\n")
	for _, d := range queue {
		fmt.Fprintf(stdout, "  %s\n", d.Label())
	}
	return nil
}

// JSONOutput represents the JSON batch result format.
type JSONOutput struct {
	State     string `json:"state"`
	Succeeded int    `json:"succeeded"`
	Cached    int    `json:"cached"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// outputJSON writes the batch report as JSON.
func outputJSON(w io.Writer, report glossai.BatchReport, elapsed time.Duration) error {
	out := JSONOutput{
		State:     report.State.String(),
		Succeeded: report.Succeeded,
		Cached:    report.Cached,
		Failed:    report.Failed,
		Skipped:   report.Skipped,
		ElapsedMs: elapsed.Milliseconds(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Package main is the cdpdocs CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ronak0808/CDP-chatbot/internal/cli"
	"github.com/ronak0808/CDP-chatbot/internal/collection"
	"github.com/ronak0808/CDP-chatbot/internal/config"
	"github.com/ronak0808/CDP-chatbot/internal/extract"
	"github.com/ronak0808/CDP-chatbot/internal/models"
	"github.com/ronak0808/CDP-chatbot/internal/search"
	"github.com/ronak0808/CDP-chatbot/internal/server"
	"github.com/ronak0808/CDP-chatbot/internal/storage"
	"github.com/ronak0808/CDP-chatbot/internal/watcher"
	"github.com/ronak0808/CDP-chatbot/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/cdpdocs/config.yaml"
	defaultServerURL  = "http://localhost:5000"
	clientTimeout     = 2 * time.Minute
)

// loadConfig loads config from path. When path is the default, config.yaml in the current
// directory wins if present, and built-in defaults are used if neither file exists.
// Returns the config and the path that was actually loaded ("" for built-in defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "update":
		runUpdate()
	case "import":
		runImport()
	case "rebuild":
		runRebuild()
	case "collections":
		runCollections()
	case "status":
		runStatus()
	case "init":
		runInit()
	case "version", "--version", "-v":
		fmt.Printf("cdpdocs version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode, cfg.LogFile)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
		zap.String("storage_backend", cfg.Storage.Backend),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	if cfg.Watch.Enabled {
		if cfg.Storage.Backend != storage.BackendJSON {
			logger.Warn("watch is only supported for the json backend", zap.String("backend", cfg.Storage.Backend))
		} else {
			watchSvc, err := watcher.NewWatcher(
				cfg.Storage.DocsPath,
				cfg.Watch.Patterns,
				watcher.ReloadOnChange(ctx, components.Store, logger),
				watcher.LogRemoval(logger),
				watcher.WithLogger(logger),
				watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMS)*time.Millisecond),
			)
			if err != nil {
				logger.Fatal("Failed to create watcher", zap.Error(err))
			}
			if err := watchSvc.Start(ctx); err != nil {
				logger.Fatal("Failed to start watcher", zap.Error(err))
			}
			defer watchSvc.Stop()
			if err := watchSvc.SyncExistingFiles(); err != nil {
				logger.Warn("watcher sync failed", zap.Error(err))
			}
		}
	}

	srv := server.NewServer(components.Engine, components.Store, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: cdpdocs search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  cdpdocs search --collection segment how do I create a source
  cdpdocs search --collection lytics --top-k 5 "audience segments"
  cdpdocs search --collection zeotap --min-score 0 --output json identity resolution
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// reorderArgs moves any flags (and their values) that appear after the positional
// arguments to the front so that flag.Parse sees them. Go's flag package stops at the
// first non-flag argument, so "cdpdocs search query --top-k 5" would otherwise leave
// --top-k unparsed.
func reorderArgs(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = search the configured source directly)")
	key := fs.String("collection", "", "collection to search, e.g. segment")
	topK := fs.Int("top-k", 0, "maximum number of results (0 = configured default)")
	minScore := fs.String("min-score", "", "drop results scoring at or below this value (empty = configured default)")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" || *key == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	query := &models.SearchQuery{Query: queryStr, Collection: *key, TopK: *topK}
	if *minScore != "" {
		v, err := strconv.ParseFloat(*minScore, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid --min-score %q: %v\n", *minScore, err)
			os.Exit(1)
		}
		query.MinScore = &v
	}

	ctx := context.Background()
	snippetLen := config.DefaultSnippetLength
	var response *models.SearchResponse
	if *serverURL != "" {
		response, err = cli.NewClient(*serverURL, clientTimeout).Search(ctx, query)
	} else {
		cfg, logger, components := openDirect(ctx, *configPath)
		defer logger.Sync()
		defer components.Close()
		snippetLen = cfg.Search.SnippetLength
		if query.TopK == 0 {
			query.TopK = cfg.Search.DefaultTopK
		}
		response, err = components.Engine.Search(ctx, query)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format, snippetLen); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// readSectionsFile reads a collection document ({"platform", "sections"}) or a bare
// JSON array of sections.
func readSectionsFile(path string) (string, []models.Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read file: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var sections []models.Section
		if err := json.Unmarshal(data, &sections); err != nil {
			return "", nil, fmt.Errorf("parse sections: %w", err)
		}
		return "", sections, nil
	}
	var doc models.CollectionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", nil, fmt.Errorf("parse collection document: %w", err)
	}
	return doc.Platform, doc.Sections, nil
}

func runUpdate() {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = write to the configured source directly)")
	key := fs.String("collection", "", "collection key (defaults to the document's platform)")
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: cdpdocs update [flags] <file.json>")
		os.Exit(1)
	}
	platform, sections, err := readSectionsFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
		os.Exit(1)
	}
	target := *key
	if target == "" {
		target = platform
	}
	if target == "" {
		fmt.Fprintln(os.Stderr, "Update failed: no --collection given and the document has no platform")
		os.Exit(1)
	}
	if platform != "" && platform != target {
		fmt.Fprintf(os.Stderr, "Update failed: document platform %q does not match collection %q\n", platform, target)
		os.Exit(1)
	}
	applySections(*configPath, *serverURL, target, sections)
	fmt.Printf("Updated %s with %d section(s)\n", target, max(len(sections), 1))
}

// collectImportFiles returns path itself, or every supported file under it sorted by path.
func collectImportFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if extract.Supported(filepath.Ext(p)) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = write to the configured source directly)")
	key := fs.String("collection", "", "collection key to replace")
	maxWords := fs.Int("max-words", extract.DefaultMaxWords, "split sections longer than this many words (0 = never)")
	dryRun := fs.Bool("dry-run", false, "print the extracted sections as JSON instead of importing")
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	if fs.NArg() < 1 || (*key == "" && !*dryRun) {
		fmt.Println("Usage: cdpdocs import --collection <key> [flags] <file-or-directory>")
		os.Exit(1)
	}
	files, err := collectImportFiles(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}
	ex := extract.NewExtractor(extract.WithMaxWords(*maxWords))
	var sections []models.Section
	for _, f := range files {
		extracted, err := ex.ExtractSections(f)
		if errors.Is(err, extract.ErrNoSections) {
			fmt.Fprintf(os.Stderr, "Skipping %s: no text\n", f)
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Import failed: %s: %v\n", f, err)
			os.Exit(1)
		}
		sections = append(sections, extracted...)
	}
	if len(sections) == 0 {
		fmt.Fprintln(os.Stderr, "Import failed: no sections extracted")
		os.Exit(1)
	}
	if *dryRun {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(models.CollectionDocument{Platform: *key, Sections: sections})
		return
	}
	applySections(*configPath, *serverURL, *key, sections)
	fmt.Printf("Imported %d section(s) from %d file(s) into %s\n", len(sections), len(files), *key)
}

// applySections replaces a collection through the server, or directly against the
// configured source when serverURL is empty. Exits on failure.
func applySections(configPath, serverURL, key string, sections []models.Section) {
	ctx := context.Background()
	if serverURL != "" {
		if err := cli.NewClient(serverURL, clientTimeout).Update(ctx, key, sections); err != nil {
			fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	_, logger, components := openDirect(ctx, configPath)
	defer logger.Sync()
	defer components.Close()
	if err := components.Store.Update(ctx, key, sections); err != nil {
		fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
		os.Exit(1)
	}
}

func runRebuild() {
	fs := flag.NewFlagSet("rebuild", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	reload := fs.Bool("reload", false, "re-read every collection from the source before rebuilding")
	_ = fs.Parse(os.Args[2:])

	gen, err := cli.NewClient(*serverURL, clientTimeout).Rebuild(context.Background(), *reload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Rebuild failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Index rebuilt: generation %s\n", gen)
}

func runCollections() {
	fs := flag.NewFlagSet("collections", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = read the configured source directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx := context.Background()
	var resp *server.CollectionsResponse
	if *serverURL != "" {
		resp, err = cli.NewClient(*serverURL, clientTimeout).Collections(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Listing collections failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		_, logger, components := openDirect(ctx, *configPath)
		defer logger.Sync()
		defer components.Close()
		resp = components.collections()
	}
	if err := cli.WriteCollections(os.Stdout, resp, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = read the configured source directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx := context.Background()
	var status *server.StatusResponse
	if *serverURL != "" {
		status, err = cli.NewClient(*serverURL, clientTimeout).Status(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, logger, components := openDirect(ctx, *configPath)
		defer logger.Sync()
		defer components.Close()
		status = components.status(cfg)
	}
	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("config", "config.yaml", "where to write the starter config")
	force := fs.Bool("force", false, "overwrite an existing file")
	_ = fs.Parse(os.Args[2:])

	if _, err := os.Stat(*path); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "%s already exists (use --force to overwrite)\n", *path)
		os.Exit(1)
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	if err := config.Save(*path, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Writing config failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *path)
}

// Components holds initialized services.
type Components struct {
	Source storage.Source
	Store  *collection.Store
	Engine *search.Engine
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Source != nil {
		_ = c.Source.Close()
	}
}

// initializeComponents opens the configured source and loads the configured collections
// plus every collection the source already holds.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	src, err := storage.Open(cfg.Storage.Backend, cfg.Storage.DocsPath, cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	store, err := collection.NewStore(src,
		collection.WithLogger(logger),
		collection.WithWorkers(cfg.Index.Workers),
	)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("failed to initialize collection store: %w", err)
	}
	components := &Components{
		Source: src,
		Store:  store,
		Engine: search.NewEngine(store, &cfg.Search, search.WithLogger(logger)),
	}

	known, err := src.Keys(ctx)
	if err != nil {
		components.Close()
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	keys := mergeKeys(cfg.Index.Collections, known)
	if err := store.LoadAll(ctx, keys); err != nil {
		components.Close()
		return nil, fmt.Errorf("failed to load collections: %w", err)
	}
	logger.Info("collections loaded",
		zap.Strings("collections", keys),
		zap.Int("sections", store.Snapshot().SectionCount()),
	)
	return components, nil
}

// mergeKeys returns the sorted union of the given key lists, skipping empty keys.
func mergeKeys(lists ...[]string) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, list := range lists {
		for _, k := range list {
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// openDirect loads config and components for commands running without a server.
// Exits on failure.
func openDirect(ctx context.Context, configPath string) (*config.Config, *zap.Logger, *Components) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return cfg, logger, components
}

func (c *Components) collections() *server.CollectionsResponse {
	snap := c.Store.Snapshot()
	resp := &server.CollectionsResponse{
		Collections: make([]server.CollectionInfo, 0),
		Generation:  snap.Generation,
	}
	for _, key := range snap.Keys() {
		col, _ := snap.Collection(key)
		resp.Collections = append(resp.Collections, server.CollectionInfo{
			Key:         key,
			Sections:    len(col.Sections),
			Fingerprint: strconv.FormatUint(col.Fingerprint, 16),
		})
	}
	return resp
}

func (c *Components) status(cfg *config.Config) *server.StatusResponse {
	snap := c.Store.Snapshot()
	status := &server.StatusResponse{
		Collections:    len(snap.Keys()),
		Sections:       snap.SectionCount(),
		Vocabulary:     snap.Model.Dimensions(),
		Generation:     snap.Generation,
		BuiltAt:        snap.BuiltAt,
		StorageBackend: cfg.Storage.Backend,
	}
	path := cfg.Storage.DocsPath
	if cfg.Storage.Backend == storage.BackendSQLite {
		path = cfg.Storage.DatabasePath
	}
	if n, err := storage.DiskUsageBytes(path); err == nil {
		status.DiskUsageBytes = n
	}
	return status
}

func printUsage() {
	fmt.Println(`cdpdocs - TF-IDF search over CDP documentation collections

Usage:
  cdpdocs server [flags]                          Start the HTTP server
  cdpdocs search --collection <key> <query>       Search one collection
  cdpdocs update [--collection <key>] <file.json> Replace a collection from a JSON document
  cdpdocs import --collection <key> <path>        Replace a collection from pdf/docx/xlsx/odt/rtf/md/txt files
  cdpdocs rebuild [--reload]                      Rebuild the server's index
  cdpdocs collections [flags]                     List loaded collections
  cdpdocs status [flags]                          Show index and storage status
  cdpdocs init [--config path]                    Write a starter config file
  cdpdocs version                                 Show version
  cdpdocs help                                    Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/cdpdocs/config.yaml, or ./config.yaml)
  --server string    Server URL (default: http://localhost:5000). Use --server "" to work on the
                     configured storage directly when no server is running.
  --output string    Output format: text, compact (search only), or json

Search Flags:
  --collection string  Collection key, e.g. segment, mparticle, lytics, zeotap
  --top-k int          Maximum number of results (default from config: 3)
  --min-score float    Drop results scoring at or below this value (default from config: 0.1)

Import Flags:
  --max-words int    Split sections longer than this many words (default: 400)
  --dry-run          Print the extracted sections instead of importing

Examples:
  cdpdocs server
  cdpdocs search --collection segment how do I set up a new source
  cdpdocs search --collection lytics --output json "audience segments"
  cdpdocs update data/docs/segment_docs.json
  cdpdocs import --collection zeotap ./zeotap-guides/
  cdpdocs rebuild --reload
  cdpdocs status --output json`)
}

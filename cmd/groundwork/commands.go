package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/groundwork"
	"github.com/poiesic/groundwork/config"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/ingestion"
	"github.com/poiesic/groundwork/search"
	"github.com/poiesic/groundwork/storage"
)

func configPath(c *cli.Context) string {
	if path := c.String("config"); path != "" {
		return path
	}
	return filepath.Join(c.String("corpus"), config.FileName)
}

// loadSettings reads the config file and applies command line overrides.
func loadSettings(c *cli.Context) (*config.File, error) {
	settings, err := config.Load(configPath(c))
	if err != nil {
		return nil, err
	}
	if c.IsSet("provider") {
		settings.AI.Provider = c.String("provider")
	}
	if c.IsSet("embedding-host") {
		settings.AI.Host = c.String("embedding-host")
	}
	if c.IsSet("embedding-model") {
		settings.AI.Model = c.String("embedding-model")
	}
	return settings, nil
}

func openCorpus(c *cli.Context, settings *config.File) (*groundwork.Corpus, error) {
	corpus, err := groundwork.Open(c.String("corpus"),
		groundwork.WithAIConfig(settings.AIConfig()),
		groundwork.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	return corpus, nil
}

func initCommand(c *cli.Context) error {
	path := configPath(c)
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	if err := config.Default().Save(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	return nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one file or directory is required")
	}
	sourceType, err := core.ParseSourceType(c.String("type"))
	if err != nil {
		return err
	}

	docs, err := loadDocuments(c.Args().Slice(), sourceType, c.String("domain"))
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return errors.New("no supported files found")
	}

	settings, err := loadSettings(c)
	if err != nil {
		return err
	}
	opts, err := settings.IngestOptions()
	if err != nil {
		return err
	}
	corpus, err := openCorpus(c, settings)
	if err != nil {
		return err
	}
	defer corpus.Close()

	pipeline, err := corpus.NewIngestionPipeline(opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	report, err := pipeline.Ingest(c.Context, docs...)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	renderReport(c.App.Writer, report)
	return nil
}

// loadDocuments reads every path, walking directories. Files with
// unsupported extensions inside directories are skipped.
func loadDocuments(paths []string, sourceType core.SourceType, domain string) ([]*ingestion.Document, error) {
	var docs []*ingestion.Document
	add := func(path string) error {
		doc, err := ingestion.LoadFile(path, sourceType)
		if err != nil {
			return err
		}
		doc.Domain = domain
		docs = append(docs, doc)
		return nil
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if err := add(root); err != nil {
				return nil, err
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			err = add(path)
			if errors.Is(err, ingestion.ErrUnsupportedFormat) || errors.Is(err, ingestion.ErrInvalidDocument) {
				slog.Debug("skipping file", "path", path, "err", err)
				return nil
			}
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return errors.New("query is required")
	}
	filter, err := core.ParseSourceTypes(c.StringSlice("type"))
	if err != nil {
		return err
	}

	settings, err := loadSettings(c)
	if err != nil {
		return err
	}
	opts, err := settings.SearchOptions()
	if err != nil {
		return err
	}
	corpus, err := openCorpus(c, settings)
	if err != nil {
		return err
	}
	defer corpus.Close()

	var searcher *search.Searcher
	if domain := c.String("domain"); domain != "" {
		searcher, err = corpus.NewGlobalSearcher(domain, opts...)
	} else {
		searcher, err = corpus.NewSearcher(opts...)
	}
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	if !c.Bool("explain") {
		renderResults(c.App.Writer, query, searcher.Search(c.Context, query, filter, c.Int("top-k")), false)
		return nil
	}

	monitor := &explainMonitor{}
	results := searcher.SearchWithMonitor(c.Context, query, filter, c.Int("top-k"), monitor)
	renderResults(c.App.Writer, query, results, true)
	renderDiagnostics(c.App.Writer, monitor)
	return nil
}

func reembedCommand(c *cli.Context) error {
	settings, err := loadSettings(c)
	if err != nil {
		return err
	}
	reembedConfig, err := settings.ReembedConfig()
	if err != nil {
		return err
	}
	reembedConfig.MissingOnly = c.Bool("missing-only")
	reembedConfig.ReportInterval = c.Int("report-interval")
	if c.IsSet("batch-size") {
		reembedConfig.BatchSize = c.Int("batch-size")
	}

	// Validate config
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}

	corpus, err := openCorpus(c, settings)
	if err != nil {
		return err
	}
	defer corpus.Close()

	reembedder, err := corpus.NewReembedder(reembedConfig, c.App.ErrWriter)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "Corpus: %s\n", c.String("corpus"))
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", corpus.Model())
	fmt.Fprintln(c.App.ErrWriter)

	if _, err := reembedder.Run(c.Context); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	settings, err := loadSettings(c)
	if err != nil {
		return err
	}
	corpus, err := openCorpus(c, settings)
	if err != nil {
		return err
	}
	defer corpus.Close()

	stats, err := corpus.Stats(c.Context)
	if err != nil {
		return err
	}
	cached, err := corpus.CachedVectors(c.Context)
	if err != nil {
		return err
	}
	renderStats(c.App.Writer, corpus.Model(), stats, cached)
	return nil
}

func exportCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("exactly one snapshot file is required")
	}
	path := c.Args().First()

	settings, err := loadSettings(c)
	if err != nil {
		return err
	}
	corpus, err := openCorpus(c, settings)
	if err != nil {
		return err
	}
	defer corpus.Close()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	n, err := storage.ExportSnapshot(c.Context, corpus.Store(), f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Exported %d chunks to %s\n", n, path)
	return nil
}

func importCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("exactly one snapshot file is required")
	}
	path := c.Args().First()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	settings, err := loadSettings(c)
	if err != nil {
		return err
	}
	corpus, err := openCorpus(c, settings)
	if err != nil {
		return err
	}
	defer corpus.Close()

	n, err := storage.ImportSnapshot(c.Context, corpus.Store(), f)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Imported %d chunks from %s\n", n, path)
	return nil
}

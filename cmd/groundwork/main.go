// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "groundwork",
		Usage: "Hybrid lexical and semantic retrieval over an evidence corpus",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "corpus",
				Aliases: []string{"c"},
				Usage:   "Path to the corpus directory",
				Value:   "./corpus",
				EnvVars: []string{"GROUNDWORK_CORPUS"},
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the TOML config file (default: <corpus>/groundwork.toml)",
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: "Embedding provider (local, openai), overrides the config file",
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL, overrides the config file",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name, overrides the config file",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write a default config file into the corpus",
				Action: initCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing config file",
					},
				},
			},
			{
				Name:      "ingest",
				Usage:     "Chunk, embed and store text, markdown and PDF files",
				ArgsUsage: "<file or directory>...",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Source type of the ingested files",
						Value:   "document",
					},
					&cli.StringFlag{
						Name:  "domain",
						Usage: "Domain tag for chunks in a shared corpus",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Run a hybrid search",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Maximum number of results (0 uses the configured default)",
					},
					&cli.StringSliceFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Restrict results to these source types",
					},
					&cli.StringFlag{
						Name:  "domain",
						Usage: "Search only chunks tagged with this domain",
					},
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Show lane ranks, bonuses and lane diagnostics",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Recompute chunk embeddings, e.g. after switching models",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "missing-only",
						Usage: "Only embed chunks that have no embedding",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch (0 uses the config file)",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show corpus statistics",
				Action: statsCommand,
			},
			{
				Name:      "export",
				Usage:     "Write every chunk, embeddings included, to a snapshot file",
				ArgsUsage: "<file>",
				Action:    exportCommand,
			},
			{
				Name:      "import",
				Usage:     "Load a snapshot file, replacing the sources it contains",
				ArgsUsage: "<file>",
				Action:    importCommand,
			},
		},
	}
}

func setup(c *cli.Context) error {
	// .env is optional
	_ = godotenv.Load()
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// Command seeder fills a corpus with a small demo set of documents, or with
// one document per line of a source file.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"

	"github.com/poiesic/groundwork"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/ingestion"
)

type seed struct {
	source     string
	sourceType core.SourceType
	domain     string
	text       string
}

var seeds = []seed{
	{"handbook/onboarding.md", core.SourceTypeDocument, "", "New engineers get production read access after their first week. Write access needs a second approval from the on-call lead."},
	{"handbook/oncall.md", core.SourceTypeDocument, "", "The on-call rotation changes every Monday at 10:00 UTC. Pages that are not acknowledged within 15 minutes escalate to the secondary."},
	{"handbook/releases.md", core.SourceTypeDocument, "", "Releases are cut from main on Tuesdays and Thursdays. A release is blocked when the canary error rate exceeds one percent."},
	{"reports/2025-q3-latency.md", core.SourceTypeReport, "", "Median search latency dropped from 180ms to 95ms after the index rebuild. The p99 remains above 900ms during nightly compaction."},
	{"reports/2025-q3-cost.md", core.SourceTypeReport, "", "Storage costs grew 22 percent quarter over quarter. Most of the growth came from uncompressed embedding snapshots."},
	{"reports/incident-0412.md", core.SourceTypeReport, "", "The billing export stalled for three hours because the disk on db-2 filled up. Old WAL segments were not being archived."},
	{"strategy/2026-platform.md", core.SourceTypeStrategy, "", "We will consolidate the three search services into one hybrid retrieval service. Lexical and semantic ranking will be fused in a single pass."},
	{"strategy/data-retention.md", core.SourceTypeStrategy, "", "Raw captures are kept for ninety days. Derived reports are kept for seven years to satisfy audit requirements."},
	{"code/retry.go", core.SourceTypeCode, "", "func retry(ctx context.Context, attempts int, fn func() error) error { for i := 0; i < attempts; i++ { if err := fn(); err == nil { return nil } } return errRetriesExhausted }"},
	{"code/limits.yaml", core.SourceTypeCode, "", "rate_limit: requests_per_second: 50 burst: 100 # applies per API key"},
	{"snapshots/db-2-disk.txt", core.SourceTypeSnapshot, "infra", "Filesystem /var/lib/postgres is 97 percent full on db-2. Inodes are at 41 percent."},
	{"snapshots/queue-depth.txt", core.SourceTypeSnapshot, "infra", "The ingest queue holds 12,400 pending messages. Consumer lag is 7 minutes."},
	{"captures/standup-0918.txt", core.SourceTypeCapture, "", "Priya is migrating the release pipeline to the new runners. Tom is blocked on the billing export until the disk issue is fixed."},
	{"captures/chat-0919.txt", core.SourceTypeCapture, "", "Someone asked whether the quick brown fox example is still used in the tokenizer tests. It is, in three places."},
	{"artifacts/schema-v7.sql", core.SourceTypeArtifact, "", "CREATE TABLE invoices (id BIGINT PRIMARY KEY, customer_id BIGINT NOT NULL, total_cents BIGINT NOT NULL, issued_at TIMESTAMP NOT NULL);"},
	{"artifacts/runbook-disk.md", core.SourceTypeArtifact, "infra", "When a database disk passes 90 percent, archive WAL segments first. Only then consider resizing the volume."},
}

var (
	corpusDir    = flag.String("corpus", "./corpus", "corpus directory")
	seedFileName = flag.String("src", "", "file of seed data, one document per line")
	sourceType   = flag.String("type", "document", "source type for documents read from -src")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// documentsFromFile returns an iterator over one document per non-empty line.
func documentsFromFile(filename string, st core.SourceType) (iter.Seq[*ingestion.Document], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(*ingestion.Document) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		line := 0
		for scanner.Scan() {
			line++
			if scanner.Text() == "" {
				continue
			}
			doc := &ingestion.Document{
				SourceId:   fmt.Sprintf("%s:%d", filename, line),
				SourceType: st,
				Text:       scanner.Text(),
			}
			if !yield(doc) {
				return
			}
		}
	}, nil
}

// documentsFromSeeds returns an iterator over the built-in demo documents.
func documentsFromSeeds() iter.Seq[*ingestion.Document] {
	return func(yield func(*ingestion.Document) bool) {
		for _, s := range seeds {
			doc := &ingestion.Document{SourceId: s.source, SourceType: s.sourceType, Domain: s.domain, Text: s.text}
			if !yield(doc) {
				return
			}
		}
	}
}

// ingestBatched reads from a source iterator and ingests documents in batches.
func ingestBatched(ctx context.Context, pipeline *ingestion.Pipeline, source iter.Seq[*ingestion.Document], batchSize int) error {
	batch := make([]*ingestion.Document, 0, batchSize)

	for doc := range source {
		batch = append(batch, doc)
		if len(batch) == batchSize {
			if _, err := pipeline.Ingest(ctx, batch...); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}

	// Process any remaining documents
	if len(batch) > 0 {
		if _, err := pipeline.Ingest(ctx, batch...); err != nil {
			return err
		}
	}

	return nil
}

func main() {
	corpus, err := groundwork.Open(*corpusDir)
	if err != nil {
		panic(err)
	}
	defer corpus.Close()

	ingester, err := corpus.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer ingester.Release()

	ctx := context.Background()

	// Determine source of seed data
	var source iter.Seq[*ingestion.Document]
	if *seedFileName != "" {
		st, err := core.ParseSourceType(*sourceType)
		if err != nil {
			panic(err)
		}
		source, err = documentsFromFile(*seedFileName, st)
		if err != nil {
			panic(err)
		}
	} else {
		source = documentsFromSeeds()
	}

	// Ingest in batches of 5
	if err := ingestBatched(ctx, ingester, source, 5); err != nil {
		panic(err)
	}

	stats, err := corpus.Stats(ctx)
	if err != nil {
		panic(err)
	}
	slog.Info("seeded corpus", "dir", *corpusDir, "sources", stats.Sources, "chunks", stats.Chunks, "embedded", stats.Embedded)
}

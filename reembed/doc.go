// Package reembed recomputes chunk embeddings in place, either for a whole
// corpus after an embedding model change or only for chunks that have none.
//
// This package supports batch processing over a storage.ChunkRepository,
// progress tracking, retry logic with exponential backoff, and vector
// normalization. The retry and normalization helpers are shared with the
// ingestion pipeline.
package reembed

// Package ingestion turns source documents into stored, embedded chunks.
//
// The Pipeline type manages the ingestion workflow:
//   - Splitting documents into sentence windows with a Chunker
//   - Embedding the chunks concurrently on a bounded worker pool
//   - Replacing any chunks previously stored for the same source
//
// Embedding failures never fail an ingestion: chunks whose batch could not
// be embedded are stored without a vector and remain searchable lexically
// until a reembed pass fills them in.
package ingestion

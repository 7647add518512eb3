// Package sqlite implements the evidence store on SQLite.
//
// Chunks live in a single table with their embeddings stored as
// mus-encoded BLOBs. An external-content FTS5 table mirrors chunk text
// and is kept in sync with triggers, so lexical search and chunk lookups
// read from one consistent database file.
package sqlite

// Package domain contains the core business entities for hybrid
// retrieval: chunks, queries, retrieval results and agent turns.
// It has no dependencies on adapters or external services.
package domain

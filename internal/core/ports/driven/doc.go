// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the vector store, embedding provider,
// chunk source, generation model and configuration stores.
package driven

// Package driving provides interfaces for external actors (primary/
// inbound ports): the CLI and any other caller of the core services.
package driving

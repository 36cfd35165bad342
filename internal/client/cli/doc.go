// Package cli provides the interactive journal command-line client.
//
// It wires configuration, the HTTP API client and a REPL. A background
// watcher probes the server and flips the prompt between online and offline.
//
// Key features:
//   - Write entries with an optional persona and show the reflection
//   - List recent entries, clear the journal
//   - Browse the catalog and the unlocked personas and features
//   - Start a checkout, verify it, and export the journal
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli

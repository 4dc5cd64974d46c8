// Package cli provides the interactive CodePulse command-line client.
//
// It wires configuration, the local session store, the API client and a
// read-eval-print loop. Anyone may browse categories, posts and images;
// the commands that change content pass the writer guard first.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli

// Command mediasync indexes one or more on-disk media roots, keeps that
// index current against filesystem and cloud-mount changes, and serves it
// over HTTP to a BooServer-compatible client.
//
// Subcommands:
//
//	mediasync serve     run the synchronization engine and HTTP server
//	mediasync reindex    run one full reconciliation pass and exit
//	mediasync migrate    apply pending store schema migrations and exit
//
// Configuration is read from the file named by --config (default
// ./config.yaml) and MEDIASYNC_-prefixed environment variables; see
// internal/config.
package main

// Package server runs the HTTP API and the background workers, and shuts
// both down on SIGINT, SIGTERM or SIGQUIT.
package server

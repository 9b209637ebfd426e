// Package handlers implements the pipeline passes. Every pass is a small
// struct built over the container: per-Type passes implement
// container.Handler, container-wide passes implement container.Runner.
package handlers

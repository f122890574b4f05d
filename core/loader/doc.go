// Package loader mounts the engine's HTTP features.
//
// A Feature names itself, says whether it is enabled and registers its routes
// on a router. The Manager loads features in registration order and skips the
// disabled ones; cmd/server.go registers sync, rows, outbox, grid and
// integrity under /api.
package loader

// Package scheduler drives the two sync directions on independent timers.
//
// A Poller invokes its tick function immediately at start and then once per
// interval. Ticks of one poller never overlap: a tick that comes due while the
// previous one is still running is skipped, not queued. Manual triggers share
// the same guard through TryRun.
//
// Stopping a poller does not cancel a running tick. Run waits for it to finish
// so that a half-applied batch is not abandoned; TickTimeout bounds a tick when
// configured.
//
// # Usage
//
//	grid := scheduler.NewPoller("grid_to_store", cfg.GridInterval, g2s.Run, logger)
//	store := scheduler.NewPoller("store_to_grid", cfg.StoreInterval, s2g.Run, logger)
//	err := scheduler.Run(ctx, grid, store)
package scheduler

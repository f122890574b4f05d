// Package syncapi exposes the running sync engine over HTTP.
//
// Routes:
//   - GET /health reports liveness. It is public.
//   - POST /sync/grid-to-store runs one grid to store tick now.
//   - POST /sync/store-to-grid runs one store to grid tick now.
//   - GET /events streams engine events as Server-Sent Events.
//
// Manual ticks share the non-overlap guard of the scheduled pollers, so a
// request that arrives while a tick is running gets 409 Conflict instead of a
// second concurrent tick.
package syncapi

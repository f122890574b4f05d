// Package middleware groups the Fiber middleware mounted in front of the sync
// engine's HTTP surface.
//
//   - auth: optional API key check. The key is read from the X-API-Key header,
//     falling back to the api_key query parameter because EventSource clients
//     cannot set headers. Public paths such as the health probe bypass it.
//   - rayid: assigns every request a ray id, stored in Locals and echoed in the
//     X-Ray-ID response header, so request logs can be correlated.
package middleware

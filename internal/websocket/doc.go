// Package websocket pushes dataset lifecycle events to connected browsers.
//
// A single Hub goroutine owns the client set. Services call Hub.Publish,
// which never blocks; each Client runs a read pump for control frames and
// a write pump that forwards queued events and keeps the connection alive
// with pings.
package websocket

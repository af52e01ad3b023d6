// Package session owns the client connection to an ESP server.
//
// Ownership boundary:
// - dialing with bounded connect retries
// - the single goroutine that owns the esp.Decoder for a connection
// - serialized line writes and prompt signaling
//
// There is no reconnection: a Session ends with its connection.
package session

// Package protocol owns the ESP wire contract.
//
// Ownership boundary:
// - esp: line codec, stream tags, transport read/write helpers
// - session: connection setup and the single-owner read loop
package protocol

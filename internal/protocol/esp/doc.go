// Package esp implements the client side of the ESP line protocol.
//
// Inbound bytes are turned into Events by a Decoder that keeps its parse
// state across arbitrarily fragmented reads. A control byte (0x00 or
// 0x80..0x87) switches the logical stream that subsequent lines belong to.
// Outbound lines are framed by EncodeLine as payload, NUL, newline.
//
// Ownership boundary:
// - stream tag table and event model
// - incremental decoder and stateless encoder
// - transport error shape shared with read loops
package esp

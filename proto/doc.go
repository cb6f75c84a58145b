// Package proto provides low-level routines for parsing and producing
// 9P2000.L messages.
//
// The proto package is to be used for building higher-level 9P2000.L
// servers. The parsing routines within make very few assumptions or
// decisions, so they can back a wide variety of transport and backend
// implementations.
//
// Decoding bounds memory usage per connection to one reused buffer:
// messages are not unmarshalled into structures, they are thin views
// over the bytes read off the wire. A Decoder reuses its buffer from
// message to message and replaces it with a larger one, up to MaxSize,
// when a message does not fit; callers that need to keep data past the
// next call to Next must copy it out first.
package proto

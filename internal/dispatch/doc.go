// Package dispatch owns the relay loop.
//
// Per datagram, in order:
// - decode the TZSP envelope
// - drop short frames, discarded frame types and, in beacon mode, non-beacons
// - send the original datagram to every port of every matching target
//
// Processing is sequential on one goroutine. Malformed input is dropped without
// logging; drops are visible only through counters.
package dispatch

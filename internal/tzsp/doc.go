// Package tzsp owns the TZSP envelope wire contract.
//
// Ownership boundary:
// - fixed header primitives
// - tag stream walking
// - envelope encoding for senders and tests
//
// Decoded views (payload, sensor) alias the caller's datagram buffer and are only
// valid until that buffer is reused.
package tzsp

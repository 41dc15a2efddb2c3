// Package planning holds the order/technician assignment and availability model.
//
// Every function here is a pure derivation over a snapshot of orders and
// technicians handed in by the caller. Nothing in this package reads from or
// writes to the database or the cache, and no function returns an error:
// incomplete records are skipped rather than rejected.
package planning

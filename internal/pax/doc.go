// Package pax converts lap times between competition classes using PAX
// handicap indices and checks the integrity of the index data it relies on.
//
// Everything here is pure: functions take plain values and return plain
// values or typed errors. Loading, caching and persisting indices or results
// is left to callers.
//
// # Time strings
//
// ParseTime accepts, after trimming outer whitespace:
//
//   - m:ss.mmm      e.g. "1:05.123"
//   - h:mm:ss.mmm   e.g. "1:05:12.123"
//   - s.mmm         e.g. "65.123"
//   - s             e.g. "65"
//
// Fractions are right-padded, so ".1" means 100 ms. Minute and second fields
// are not range checked.
//
// # Conversion
//
// A time set in class A is expressed in class B as
//
//	t * (A.PaxIndex / B.PaxIndex)
//
// rounded to the millisecond.
package pax

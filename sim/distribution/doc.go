// Package distribution provides the random variate families used to drive
// client mobility, placement, request timing and request sizes, plus the
// cumulative weighted selection used to assign mobility patterns and
// affinity slices.
//
// Families are a closed set (Kind). Unknown names and out-of-domain
// parameters are rejected by New, at configuration-load time, never at
// first use.
package distribution

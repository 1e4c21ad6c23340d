// Package testutil holds small helpers shared by the test suites.
//
// Everything in the calibration pipeline is floating-point, so comparisons
// go through absolute tolerances instead of exact equality or golden files.
package testutil

import (
	"math"
	"testing"
)

// AlmostEqual reports whether a and b differ by at most tol.
// NaN never compares equal to anything.
func AlmostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// AssertClose fails the test when got is not within tol of want.
func AssertClose(t *testing.T, got, want, tol float64, name string) {
	t.Helper()
	if math.IsNaN(got) || !AlmostEqual(got, want, tol) {
		t.Fatalf("%s: got=%v want=%v (tol=%v)", name, got, want, tol)
	}
}

// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import "testing"

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertNear fails the test if got is further than tol from want.
func AssertNear(t testing.TB, got, want, tol float64) {
	t.Helper()
	d := got - want
	if d < -tol || d > tol {
		t.Errorf("got %v, want %v (±%v)", got, want, tol)
	}
}

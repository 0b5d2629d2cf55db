// Package testutil holds deterministic signal generators and tolerance
// assertions shared by the package tests.
package testutil

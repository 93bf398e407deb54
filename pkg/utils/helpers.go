// Package utils provides utility functions and constants for common operations
// throughout the application.
package utils

import (
	"regexp"
	"strings"
)

// transactionHashPattern matches a 32-byte transaction hash: a 0x prefix
// followed by exactly 64 hex digits.
var transactionHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// IsValidTransactionHash reports whether s is a well-formed 32-byte
// transaction hash.
func IsValidTransactionHash(s string) bool {
	return transactionHashPattern.MatchString(s)
}

// AreAddressesEqual compares two Ethereum addresses for equality, ignoring case.
func AreAddressesEqual(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Map applies the mapper function to each element of the list and returns
// a new list with the results.
func Map[A any, B any](coll []A, mapper func(i A, index uint64) B) []B {
	out := make([]B, len(coll))
	for i, item := range coll {
		out[i] = mapper(item, uint64(i))
	}
	return out
}

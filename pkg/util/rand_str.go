// Package util contains any functions used across the application that don't match
// any other package
package util

import "math/rand"

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandStr returns a short random identifier, used for request IDs where
// nothing cryptographic is needed. The global rand source is locked, so this
// is safe from concurrent handlers.
func RandStr(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}

	return string(b)
}

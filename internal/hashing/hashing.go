// Package hashing provides the BLAKE3 digests tsuzulint uses for cache
// invalidation: content hashes, config hashes, and per-block hashes all go
// through the same hex-encoded digest so cache entries can compare them
// directly.
package hashing

import "github.com/zeebo/blake3"

// Content returns the hex-encoded BLAKE3 digest of data.
func Content(data []byte) string {
	sum := blake3.Sum256(data)
	return hex(sum[:])
}

// String is Content for a string, avoiding a []byte conversion at call
// sites that already hold a string.
func String(s string) string {
	sum := blake3.Sum256([]byte(s))
	return hex(sum[:])
}

const hexDigits = "0123456789abcdef"

func hex(b []byte) string {
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hexDigits[v>>4]
		out[i*2+1] = hexDigits[v&0x0f]
	}
	return string(out)
}

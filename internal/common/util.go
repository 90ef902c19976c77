package common

import "crypto/rand"

// GenerateRandByteArray returns size bytes read from the cryptographically
// secure random source. It panics if the source fails, which on supported
// platforms means the process environment is broken beyond recovery.
func GenerateRandByteArray(size int) []byte {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return buf
}

// WipeByteArray overwrites the buffer with zeros. Safe to call on nil.
func WipeByteArray(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

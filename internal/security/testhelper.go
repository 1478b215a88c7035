package security

import "time"

// testSecret signs credentials in unit tests only. Do not use in production.
const testSecret = "unit-test-secret-do-not-use-in-prod"

// NewTestTokenCodec returns a TokenCodec using the embedded test secret.
// For unit tests only. Callers must not use in production.
func NewTestTokenCodec(opts ...CodecOption) *TokenCodec {
	c, err := NewTokenCodec([]byte(testSecret), opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// FixedClock returns a clock function that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

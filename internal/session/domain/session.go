package domain

import "time"

// Session binds a refresh credential to a user and a device. The credential is
// stored only as its SHA-256 digest. Sessions are never deleted here; their
// lifetime ends when the refresh credential expires.
type Session struct {
	ID               string
	UserID           string
	Fingerprint      string
	UserAgent        string
	RefreshTokenHash string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Device identifies the client a request came from.
type Device struct {
	Fingerprint string
	UserAgent   string
}

// Complete reports whether both device headers were supplied.
func (d Device) Complete() bool {
	return d.Fingerprint != "" && d.UserAgent != ""
}

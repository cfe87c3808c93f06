package admission

import "time"

// Limiters groups the named route-class limiters the API mounts.
type Limiters struct {
	// General covers ordinary API traffic.
	General *Limiter
	// Auth covers login attempts; successful logins are not counted.
	Auth *Limiter
	// CredentialChange covers password-change attempts.
	CredentialChange *Limiter
	// Sensitive covers other sensitive state changes (logout, role edits).
	Sensitive *Limiter
}

// NewLimiters returns the standard route-class thresholds.
func NewLimiters() *Limiters {
	return &Limiters{
		General: New("general", Config{
			Window:         15 * time.Minute,
			Max:            100,
			CountSuccesses: true,
		}),
		Auth: New("auth", Config{
			Window:         15 * time.Minute,
			Max:            5,
			CountSuccesses: false,
		}),
		CredentialChange: New("credential_change", Config{
			Window:         time.Hour,
			Max:            3,
			CountSuccesses: false,
		}),
		Sensitive: New("sensitive", Config{
			Window:         15 * time.Minute,
			Max:            3,
			CountSuccesses: true,
		}),
	}
}

package models

import "time"

// UsedResetToken is a ledger entry recording a redeemed password-reset token.
// Entries are written once and never deleted; the fingerprint alone decides
// whether a token is spent, regardless of its cryptographic validity.
type UsedResetToken struct {
	ID               int64
	TokenFingerprint string
	UserEmail        string
	UsedAt           time.Time
}

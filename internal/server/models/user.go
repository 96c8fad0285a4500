package models

// User is a stored account record. PasswordHash is opaque bcrypt output and
// must never be logged or returned to clients.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Address      *string
	Gender       *string
	Age          *int
}

// ProfileUpdate describes a partial profile mutation. A nil field means
// "do not change", not "clear".
type ProfileUpdate struct {
	Address *string
	Gender  *string
	Age     *int
}

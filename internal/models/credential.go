// Package models holds the record types shared between the repositories and
// the services.
package models

// Credential is a stored credential record. Password is ciphertext produced
// by cryptox.Cipher; it is never plaintext at this layer.
type Credential struct {
	ID       int64
	Website  string
	Username string
	Password []byte
}

// PlainCredential is the decrypted view handed to an authenticated caller.
type PlainCredential struct {
	ID       int64
	Website  string
	Username string
	Password string
}

// CredentialUpdate carries a partial update. Nil fields keep their current
// value.
type CredentialUpdate struct {
	Website  *string
	Username *string
	Password *string
}

// Empty reports whether the update changes nothing.
func (u CredentialUpdate) Empty() bool {
	return u.Website == nil && u.Username == nil && u.Password == nil
}

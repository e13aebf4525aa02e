// Package services contains the vault's business logic over the repositories.
//
// CredentialService encrypts credentials before they reach storage and
// decrypts them on the way out. MasterService keeps the encrypted master
// password. Every operation runs in its own transaction via dbx.WithTx, so
// nothing is held open between calls.
//
// Services do not check authentication; callers (the vault facade) must
// authorize before calling them.
package services

// Cipher is the authenticated encryption used for secrets at rest.
// *cryptox.Cipher satisfies it.
type Cipher interface {
	Encrypt(key, plaintext []byte) ([]byte, error)
	Decrypt(key, ciphertext []byte) ([]byte, error)
}

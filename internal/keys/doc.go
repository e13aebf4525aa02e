// Package keys owns the lifecycle of the vault's symmetric key.
//
// Exactly one key exists per vault. Manager.EnsureKey creates it on first use
// and loads it on every later call; it never replaces an existing key, since
// doing so would orphan all ciphertext written under it.
//
// Where the key lives is decided by a Store:
//
//   - FileStore keeps it in a single file (default <data_dir>/vault.key).
//   - S3Store keeps it as one object in an S3-compatible bucket.
//
// Both stores write base64 text and refuse to overwrite an existing artifact.
package keys

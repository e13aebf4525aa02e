// Package credentials persists encrypted credential records.
//
// Records are opaque to this layer: the password column holds ciphertext and
// is stored and returned as-is. Two implementations are provided over
// dbx.DBTX, so they work equally on a *sql.DB or inside a transaction:
//
//   - SQLiteRepository for the default embedded database
//   - PostgresRepository for a server-backed vault
//
// Missing rows are reported as common.ErrNotFound.
package credentials

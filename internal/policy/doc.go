// Package policy evaluates password strength and generates strong passwords.
//
// A password is strong when it meets all of:
//
//   - at least 8 characters
//   - an uppercase letter, a lowercase letter and a digit
//   - a special character from StrengthSpecials
//   - not too similar to the identity it protects (usually the username)
//
// Similarity compares the letters-only, lower-cased forms of password and
// identity. They are too similar when either contains the other, or when
// their Ratcliff/Obershelp ratio is at least SimilarityThreshold. An identity
// without letters disables the check.
package policy

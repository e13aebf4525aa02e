package common

// DefaultMasterPassword is written on first initialization of a vault.
const DefaultMasterPassword = "1"

// OTPDigits is the length of one-time reset codes.
const OTPDigits = 6

// MasterSecretID is the fixed primary key of the master row.
const MasterSecretID = 1

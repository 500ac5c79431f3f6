// Package transfer holds the value-movement rails the ledger hands off to
// once a withdrawal or deposit has been validated.
//
//   - Rails moves public amounts between accounts (the plaintext fallback
//     path).
//   - ConfidentialRails moves encrypted amounts; the public side sees only
//     that a transfer happened.
//   - Book and ConfidentialBook are in-process reference implementations
//     for tests and local deployments.
//
// The subpackage transfer/private models the external Private Transfer
// Service: a Groth16 proof that a committed transfer amount is a valid
// 64-bit quantity, without revealing it.
package transfer

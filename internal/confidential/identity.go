// identity.go - MiMC hashing of caller identities before encryption.
//
// Employer and employee identities are never stored or encrypted raw: the
// ledger keeps an encryption of a MiMC hash of the identity, so even a full
// decrypt reveals only the hash.

package confidential

import (
	"math/big"

	mimcNative "github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"
)

// HashIdentity maps an identity (a public key, an address) to a 128-bit
// digest suitable for encryption as a ledger quantity.
func HashIdentity(identity []byte) *big.Int {
	h := mimcNative.NewMiMC()
	h.Write(identity)
	sum := h.Sum(nil)
	// Keep the low ValueSize bytes so the digest fits the encrypted domain.
	return new(big.Int).SetBytes(sum[len(sum)-ValueSize:])
}

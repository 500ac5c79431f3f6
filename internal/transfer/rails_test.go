package transfer

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payroll/internal/confidential"
)

func acct(b byte) Account {
	var a Account
	a[0] = b
	return a
}

func TestBookMoveValue(t *testing.T) {
	book := NewBook()
	src, dst := acct(1), acct(2)

	require.NoError(t, book.Credit(src, 1000))
	require.NoError(t, book.MoveValue(src, dst, 400))
	assert.Equal(t, uint64(600), book.Balance(src))
	assert.Equal(t, uint64(400), book.Balance(dst))

	err := book.MoveValue(src, dst, 601)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	// Failed moves change nothing.
	assert.Equal(t, uint64(600), book.Balance(src))
	assert.Equal(t, uint64(400), book.Balance(dst))
}

func TestBookOverflow(t *testing.T) {
	book := NewBook()
	a, b := acct(1), acct(2)
	require.NoError(t, book.Credit(a, math.MaxUint64))
	assert.ErrorIs(t, book.Credit(a, 1), ErrBalanceOverflow)

	require.NoError(t, book.Credit(b, 1))
	assert.ErrorIs(t, book.MoveValue(a, b, math.MaxUint64), ErrBalanceOverflow)
}

func TestConfidentialBookMoveEncrypted(t *testing.T) {
	auth := confidential.Authorization("auth")
	engine := confidential.NewServiceEngine(auth)
	book := NewConfidentialBook(engine)
	src, dst := acct(1), acct(2)

	funding, err := engine.Encrypt(big.NewInt(1000))
	require.NoError(t, err)
	require.NoError(t, book.CreditEncrypted(src, funding))

	amount, err := engine.Encrypt(big.NewInt(400))
	require.NoError(t, err)
	require.NoError(t, book.MoveEncrypted(src, dst, amount))

	open := func(a Account) uint64 {
		v, err := book.EncryptedBalance(a)
		require.NoError(t, err)
		x, err := engine.DecryptForTransfer(v, auth)
		require.NoError(t, err)
		return x.Uint64()
	}
	assert.Equal(t, uint64(600), open(src))
	assert.Equal(t, uint64(400), open(dst))

	// Overdraw fails without touching either balance.
	tooMuch, err := engine.Encrypt(big.NewInt(601))
	require.NoError(t, err)
	assert.ErrorIs(t, book.MoveEncrypted(src, dst, tooMuch), ErrInsufficientBalance)
	assert.Equal(t, uint64(600), open(src))
	assert.Equal(t, uint64(400), open(dst))
}

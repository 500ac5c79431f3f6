// service.go - In-process reference implementation of the compute service.
//
// Models the handle-registry behaviour of the external service: plaintexts
// never leave the engine, handles are PRF-derived and unlinkable.

package confidential

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"

	mimcNative "github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"
)

// ServiceEngine implements Engine with an internal handle registry.
// Safe for concurrent use.
type ServiceEngine struct {
	mu      sync.Mutex
	key     []byte
	counter uint64
	values  map[Value]*big.Int
	auth    Authorization
}

// NewServiceEngine creates a reference engine provisioned with the given
// decrypt authorization token. The handle-derivation key is drawn from
// crypto/rand.
func NewServiceEngine(auth Authorization) *ServiceEngine {
	key := make([]byte, 32)
	rand.Read(key)
	return &ServiceEngine{
		key:    key,
		values: make(map[Value]*big.Int),
		auth:   append(Authorization(nil), auth...),
	}
}

// nextHandle derives a fresh handle as MiMC(key || counter) truncated to
// ValueSize bytes. The caller must hold e.mu.
func (e *ServiceEngine) nextHandle() Value {
	e.counter++
	var ctr [8]byte
	binary.LittleEndian.PutUint64(ctr[:], e.counter)
	h := mimcNative.NewMiMC()
	h.Write(e.key)
	h.Write(ctr[:])
	sum := h.Sum(nil)
	var v Value
	copy(v[:], sum[len(sum)-ValueSize:])
	return v
}

// seal stores a plaintext under a fresh handle. The caller must hold e.mu.
func (e *ServiceEngine) seal(x *big.Int) Value {
	v := e.nextHandle()
	e.values[v] = new(big.Int).Set(x)
	return v
}

// open resolves a handle to its plaintext. The caller must hold e.mu.
func (e *ServiceEngine) open(v Value) (*big.Int, error) {
	x, ok := e.values[v]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandle, v)
	}
	return x, nil
}

// Encrypt implements Engine.
func (e *ServiceEngine) Encrypt(plaintext *big.Int) (Value, error) {
	if plaintext == nil || !inRange(plaintext) {
		return Value{}, ErrOverflow
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seal(plaintext), nil
}

// Add implements Engine.
func (e *ServiceEngine) Add(a, b Value) (Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	xa, err := e.open(a)
	if err != nil {
		return Value{}, err
	}
	xb, err := e.open(b)
	if err != nil {
		return Value{}, err
	}
	sum := new(big.Int).Add(xa, xb)
	if !inRange(sum) {
		return Value{}, ErrOverflow
	}
	return e.seal(sum), nil
}

// Sub implements Engine.
func (e *ServiceEngine) Sub(a, b Value) (Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	xa, err := e.open(a)
	if err != nil {
		return Value{}, err
	}
	xb, err := e.open(b)
	if err != nil {
		return Value{}, err
	}
	diff := new(big.Int).Sub(xa, xb)
	if diff.Sign() < 0 {
		return Value{}, ErrUnderflow
	}
	return e.seal(diff), nil
}

// Scale implements Engine.
func (e *ServiceEngine) Scale(a Value, factor uint64) (Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	xa, err := e.open(a)
	if err != nil {
		return Value{}, err
	}
	prod := new(big.Int).Mul(xa, new(big.Int).SetUint64(factor))
	if !inRange(prod) {
		return Value{}, ErrOverflow
	}
	return e.seal(prod), nil
}

// LessOrEqual implements Engine.
func (e *ServiceEngine) LessOrEqual(a, b Value) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	xa, err := e.open(a)
	if err != nil {
		return false, err
	}
	xb, err := e.open(b)
	if err != nil {
		return false, err
	}
	return xa.Cmp(xb) <= 0, nil
}

// DecryptForTransfer implements Engine.
func (e *ServiceEngine) DecryptForTransfer(v Value, auth Authorization) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !bytes.Equal(auth, e.auth) {
		return nil, ErrUnauthorized
	}
	x, err := e.open(v)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(x), nil
}

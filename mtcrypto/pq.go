package mtcrypto

import (
	"fmt"
	"math/big"
)

// maxFermatIterations bounds the search so a malformed pq fails fast
// instead of spinning; pq values arising from a genuine product of two
// primes of comparable size converge well within this bound.
const maxFermatIterations = 1 << 24

// DecomposePQ factors pq into primes p < q such that p*q = pq, using
// Fermat's method: start from ceil(sqrt(pq)) and search for a perfect
// square pq_sqrt^2 - pq (spec §4.2 PQ factorization; Pollard-rho, the
// original source's alternate algorithm, is intentionally not ported —
// see DESIGN.md). Arithmetic runs through math/big.Int.Sqrt to avoid
// the precision loss float64 would introduce over millions of
// iterations.
func DecomposePQ(pq uint64) (p, q uint64, err error) {
	if pq < 2 {
		return 0, 0, fmt.Errorf("mtcrypto: pq=%d is not factorizable", pq)
	}

	pqBig := new(big.Int).SetUint64(pq)
	x := new(big.Int).Sqrt(pqBig)
	if new(big.Int).Mul(x, x).Cmp(pqBig) < 0 {
		x.Add(x, big.NewInt(1))
	}

	x2 := new(big.Int)
	y2 := new(big.Int)
	y := new(big.Int)
	ySq := new(big.Int)
	one := big.NewInt(1)

	for i := 0; i < maxFermatIterations; i++ {
		x2.Mul(x, x)
		y2.Sub(x2, pqBig)
		y.Sqrt(y2)
		ySq.Mul(y, y)
		if ySq.Cmp(y2) == 0 {
			pBig := new(big.Int).Sub(x, y)
			qBig := new(big.Int).Add(x, y)
			if pBig.Cmp(one) > 0 {
				if pBig.Cmp(qBig) > 0 {
					pBig, qBig = qBig, pBig
				}
				return pBig.Uint64(), qBig.Uint64(), nil
			}
		}
		x.Add(x, one)
	}
	return 0, 0, fmt.Errorf("mtcrypto: factorization of %d did not converge", pq)
}

// DeriveAuthKey performs the client side of the finite-field
// Diffie-Hellman exchange: pick a random exponent b, return g_b = g^b
// mod dh_prime (to send to the server) and the shared auth_key =
// g_a^b mod dh_prime (retained locally) (spec §4.2 DH auth-key
// derivation). b is drawn from exactly 2048 bits; modular
// exponentiation is delegated to math/big, which is not constant-time
// — acceptable here since b is ephemeral and discarded after use, per
// spec §9's note to use a vetted library for the arithmetic itself.
func DeriveAuthKey(randSource RandReader, g int32, dhPrime, gA *big.Int) (authKey, gB *big.Int, err error) {
	b, err := randomBigInt(randSource, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("mtcrypto: generate DH exponent: %w", err)
	}

	gBig := big.NewInt(int64(g))
	gB = new(big.Int).Exp(gBig, b, dhPrime)
	authKey = new(big.Int).Exp(gA, b, dhPrime)
	return authKey, gB, nil
}

// RandReader is the subset of io.Reader DeriveAuthKey needs; it is
// satisfied by crypto/rand.Reader.
type RandReader interface {
	Read(p []byte) (n int, err error)
}

func randomBigInt(r RandReader, bits int) (*big.Int, error) {
	buf := make([]byte, (bits+7)/8)
	if _, err := r.Read(buf); err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(buf), nil
}

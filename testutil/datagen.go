package testutil

import (
	"encoding/hex"
	"math/rand"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
)

func AddRandomSeedsToFuzzer(f *testing.F, num uint) {
	// Seed based on the current time
	r := rand.New(rand.NewSource(time.Now().Unix()))
	var idx uint
	for idx = 0; idx < num; idx++ {
		f.Add(r.Int63())
	}
}

func GenRandomByteArray(r *rand.Rand, length uint64) []byte {
	newHeaderBytes := make([]byte, length)
	r.Read(newHeaderBytes)
	return newHeaderBytes
}

func GenRandomHexStr(r *rand.Rand, length uint64) string {
	return hex.EncodeToString(GenRandomByteArray(r, length))
}

// GenRandomAccountID returns an account id shaped like a named account
func GenRandomAccountID(r *rand.Rand) string {
	return GenRandomHexStr(r, 8) + ".stake"
}

// RandomAmount returns a positive amount of at most 10^12 units
func RandomAmount(r *rand.Rand) sdkmath.Uint {
	return sdkmath.NewUint(uint64(r.Int63n(1_000_000_000_000)) + 1)
}

// RandomAmountUpTo returns an amount in [1, max], max must be positive
func RandomAmountUpTo(r *rand.Rand, max sdkmath.Uint) sdkmath.Uint {
	if max.Uint64() <= 1 {
		return max
	}
	return sdkmath.NewUint(uint64(r.Int63n(int64(max.Uint64()))) + 1)
}

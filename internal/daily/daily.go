package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed derives the daily game seed from HMAC(salt, YYYY-MM-DD).
// Everyone playing on the same UTC day gets the same words and masks.
func Seed(date time.Time, salt string) (uint64, uint64) {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])
}

// RNG returns the random source of the daily game.
func RNG(date time.Time, salt string) *rand.Rand {
	return rand.New(rand.NewPCG(Seed(date, salt)))
}

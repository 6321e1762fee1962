// internal/words/tier.go
//
// Difficulty tiers and the level → tier table.
//
//   levels  1–7  → easy
//   levels  8–14 → medium
//   levels 15–20 → hard

package words

// Tier is a difficulty bucket of the word bank.
type Tier string

const (
	Easy   Tier = "easy"
	Medium Tier = "medium"
	Hard   Tier = "hard"
)

// Tiers lists every tier in ascending difficulty.
var Tiers = []Tier{Easy, Medium, Hard}

const (
	lastEasyLevel   = 7
	lastMediumLevel = 14
)

// TierForLevel maps a level number to the tier its word is drawn from.
func TierForLevel(level int) Tier {
	switch {
	case level <= lastEasyLevel:
		return Easy
	case level <= lastMediumLevel:
		return Medium
	default:
		return Hard
	}
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// internal/game/mask.go
//
// Word masking and hint reveals.
//
// A position is maskable when its character is neither whitespace nor
// diacritic-bearing. Diacritic-bearing characters (NFD form longer than one
// code point, e.g. "à", "ộ") stay visible: they carry Vietnamese tone marks
// and are not meant to be guessed.
//
// The initial mask hides max(1, ceil(0.7 × maskable)) positions chosen
// uniformly at random without replacement.

package game

import (
	"math/rand/v2"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Placeholder replaces hidden characters in the rendered word.
const Placeholder = '_'

// HasDiacritic reports whether r decomposes into more than one code point.
func HasDiacritic(r rune) bool {
	return utf8.RuneCountInString(norm.NFD.String(string(r))) > 1
}

// Maskable reports whether r may be hidden.
func Maskable(r rune) bool {
	return !unicode.IsSpace(r) && !HasDiacritic(r)
}

// MaskablePositions returns the rune indices of word that may be hidden.
func MaskablePositions(word string) []int {
	var out []int
	for i, r := range []rune(word) {
		if Maskable(r) {
			out = append(out, i)
		}
	}
	return out
}

// HideCount is max(1, ceil(0.7 × maskable)), or 0 when nothing is maskable.
// Integer arithmetic keeps ceil exact.
func HideCount(maskable int) int {
	if maskable <= 0 {
		return 0
	}
	return (7*maskable + 9) / 10
}

// Masked is a word with part of its maskable positions hidden.
type Masked struct {
	runes    []rune
	maskable []int
	revealed []bool
}

// NewMasked hides HideCount positions of word at random.
func NewMasked(word string, rng *rand.Rand) *Masked {
	m := &Masked{
		runes:    []rune(word),
		maskable: MaskablePositions(word),
	}
	m.revealed = make([]bool, len(m.runes))
	for i := range m.revealed {
		m.revealed[i] = true
	}
	order := rng.Perm(len(m.maskable))
	for _, k := range order[:HideCount(len(m.maskable))] {
		m.revealed[m.maskable[k]] = false
	}
	return m
}

// String renders the word with hidden positions replaced by Placeholder.
func (m *Masked) String() string {
	out := make([]rune, len(m.runes))
	for i, r := range m.runes {
		if m.revealed[i] {
			out[i] = r
		} else {
			out[i] = Placeholder
		}
	}
	return string(out)
}

// Hidden returns the hidden positions in ascending order.
func (m *Masked) Hidden() []int {
	var out []int
	for _, i := range m.maskable {
		if !m.revealed[i] {
			out = append(out, i)
		}
	}
	return out
}

// Revealed reports whether position i is visible.
func (m *Masked) Revealed(i int) bool {
	return i >= 0 && i < len(m.revealed) && m.revealed[i]
}

// RevealRandom uncovers one hidden position chosen uniformly at random.
// It returns false when nothing is left to reveal.
func (m *Masked) RevealRandom(rng *rand.Rand) (int, bool) {
	hidden := m.Hidden()
	if len(hidden) == 0 {
		return -1, false
	}
	i := hidden[rng.IntN(len(hidden))]
	m.revealed[i] = true
	return i, true
}

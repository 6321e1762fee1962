// internal/words/words.go
//
// Word bank for the game engine.
//
// Responsibilities:
//   - Load the tiered (word, hint) bank from a YAML file or the embedded default.
//   - Normalise entries (trim, Unicode NFC) and reject empty ones.
//   - Supply uniform random picks per tier (with replacement).
//
// YAML layout:
//
//	easy:
//	  - word: Mèo
//	    hint: Con vật kêu meo meo
//	medium: [...]
//	hard:   [...]
//
// Environment variables:
//   WORDS_BANK_FILE=/path/to/words.yaml (read by internal/config)
//
// The bank is read-only once built and safe for concurrent use.

package words

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/doanchu/assets"
)

// ErrEmptyTier is returned when a tier has no usable entries.
var ErrEmptyTier = errors.New("words: tier is empty")

// Entry is one guessable word and the hint shown with it.
type Entry struct {
	Word string `yaml:"word" json:"word"`
	Hint string `yaml:"hint" json:"hint"`
}

// Bank holds the entries of every tier.
type Bank struct {
	tiers map[Tier][]Entry
}

// Load reads the bank from path, or from the embedded default when path is empty.
func Load(path string) (*Bank, error) {
	if path == "" {
		raw, err := assets.WordBank()
		if err != nil {
			return nil, fmt.Errorf("read embedded word bank: %w", err)
		}
		return Parse(raw)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word bank %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes a YAML word bank.
func Parse(raw []byte) (*Bank, error) {
	var doc map[Tier][]Entry
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode word bank: %w", err)
	}
	for t := range doc {
		if !t.Valid() {
			return nil, fmt.Errorf("decode word bank: unknown tier %q", t)
		}
	}
	return New(doc)
}

// New builds a bank from in-memory lists. Every tier must end up non-empty.
func New(lists map[Tier][]Entry) (*Bank, error) {
	b := &Bank{tiers: make(map[Tier][]Entry, len(Tiers))}
	for _, t := range Tiers {
		var out []Entry
		for i, e := range lists[t] {
			e.Word = norm.NFC.String(strings.TrimSpace(e.Word))
			e.Hint = norm.NFC.String(strings.TrimSpace(e.Hint))
			if e.Word == "" || e.Hint == "" {
				return nil, fmt.Errorf("words: %s entry %d: word and hint are required", t, i)
			}
			out = append(out, e)
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyTier, t)
		}
		b.tiers[t] = out
	}
	return b, nil
}

// Pick returns a uniformly random entry of tier t. Unknown tiers fall back to Easy.
func (b *Bank) Pick(t Tier, rng *rand.Rand) Entry {
	list, ok := b.tiers[t]
	if !ok {
		list = b.tiers[Easy]
	}
	return list[rng.IntN(len(list))]
}

// Entries returns a copy of the entries of tier t.
func (b *Bank) Entries(t Tier) []Entry {
	return append([]Entry(nil), b.tiers[t]...)
}

// Stats returns the number of entries per tier.
func (b *Bank) Stats() map[Tier]int {
	out := make(map[Tier]int, len(b.tiers))
	for t, list := range b.tiers {
		out[t] = len(list)
	}
	return out
}

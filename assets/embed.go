// assets/embed.go
//
// Embedded default word bank. The server falls back to this file when
// WORDS_BANK_FILE is not configured.

package assets

import (
	"embed"
)

//go:embed words.yaml
var FS embed.FS

// WordBank returns the raw YAML of the embedded word bank.
func WordBank() ([]byte, error) {
	return FS.ReadFile("words.yaml")
}

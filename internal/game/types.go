// internal/game/types.go
//
// Core type definitions for the game engine.
// Defines:
//   - Phase: lifecycle state of a session.
//   - Message: transient status line shown to the player.
//   - Rules: tunable constants (levels, lives, points, timer, hint budget).
//   - Outcome: result of a submission.
//   - Snapshot: read-only view of a session handed to transports.

package game

import (
	"fmt"

	"github.com/robalobadob/doanchu/internal/words"
)

// Phase is the lifecycle state of a session.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseActive     Phase = "active"
	PhaseTransition Phase = "level_transition" // correct answer shown, advance pending
	PhaseVictory    Phase = "victory"
	PhaseDefeat     Phase = "defeat"
)

// Terminal reports whether no further play is possible without a restart.
func (p Phase) Terminal() bool {
	return p == PhaseVictory || p == PhaseDefeat
}

// EndReason tells why a session was lost.
type EndReason string

const (
	EndNone    EndReason = ""
	EndLives   EndReason = "lives"
	EndTimeout EndReason = "timeout"
)

// Severity of a status message.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Message is the transient status line under the input field.
type Message struct {
	Text string   `json:"text"`
	Type Severity `json:"type"`
}

func msgCorrect(points int) *Message {
	return &Message{Text: fmt.Sprintf("Chính xác! +%d điểm", points), Type: SeveritySuccess}
}

func msgWrong(lives int) *Message {
	return &Message{Text: fmt.Sprintf("Sai! Còn %d lần thử.", lives), Type: SeverityError}
}

func msgGameOver(answer string) *Message {
	return &Message{Text: "Game Over! Đáp án là: " + answer, Type: SeverityError}
}

func msgTimeout(answer string) *Message {
	return &Message{Text: "Hết giờ! Đáp án là: " + answer, Type: SeverityError}
}

func msgVictory() *Message {
	return &Message{Text: "Chúc mừng! Bạn đã hoàn thành trò chơi! 🎉", Type: SeveritySuccess}
}

// Rules holds the game constants.
type Rules struct {
	MaxLevel      int // last level; a correct answer here wins the game
	StartLives    int
	PointsPerWord int
	TimerSeconds  int // countdown length per word, in ticks
	HintBudget    int // hints per game shown to the player
	// StrictHintBudget blocks hints once HintBudget is spent.
	// When false the budget is informational only.
	StrictHintBudget bool
}

// DefaultRules returns the standard 20-level game.
func DefaultRules() Rules {
	return Rules{
		MaxLevel:      20,
		StartLives:    3,
		PointsPerWord: 10,
		TimerSeconds:  45,
		HintBudget:    20,
	}
}

// Validate rejects rules that cannot produce a playable game.
func (r Rules) Validate() error {
	switch {
	case r.MaxLevel < 1:
		return fmt.Errorf("rules: max level must be positive, got %d", r.MaxLevel)
	case r.StartLives < 1:
		return fmt.Errorf("rules: start lives must be positive, got %d", r.StartLives)
	case r.PointsPerWord < 0:
		return fmt.Errorf("rules: points per word must not be negative, got %d", r.PointsPerWord)
	case r.TimerSeconds < 1:
		return fmt.Errorf("rules: timer must be at least one tick, got %d", r.TimerSeconds)
	case r.HintBudget < 0:
		return fmt.Errorf("rules: hint budget must not be negative, got %d", r.HintBudget)
	}
	return nil
}

// MaxHints is the per-level hint allowance: 2 on easy, 3 on medium, 4 on hard levels.
func (r Rules) MaxHints(level int) int {
	switch words.TierForLevel(level) {
	case words.Easy:
		return 2
	case words.Medium:
		return 3
	default:
		return 4
	}
}

// Result classifies what a submission did.
type Result string

const (
	ResultIgnored Result = "ignored" // inactive session or blank input
	ResultCorrect Result = "correct"
	ResultWrong   Result = "wrong"
	ResultDefeat  Result = "defeat" // wrong answer that used the last life
)

// Outcome is returned by Session.Submit.
type Outcome struct {
	Result     Result `json:"result"`
	ClearInput bool   `json:"clearInput"`
	// Epoch identifies the level transition to complete with Session.Advance.
	// Only set for ResultCorrect.
	Epoch uint64 `json:"-"`
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	GameID         string     `json:"gameId,omitempty"`
	Phase          Phase      `json:"phase"`
	Active         bool       `json:"active"`
	Level          int        `json:"level"`
	MaxLevel       int        `json:"maxLevel"`
	Tier           words.Tier `json:"tier,omitempty"`
	Score          int        `json:"score"`
	Lives          int        `json:"lives"`
	Hint           string     `json:"hint,omitempty"`
	Masked         string     `json:"masked,omitempty"`
	HintsUsed      int        `json:"hintsUsed"`
	HintsLeft      int        `json:"hintsLeft"`
	HintBudgetLeft int        `json:"hintBudgetLeft"`
	Remaining      int        `json:"remaining"`
	Message        *Message   `json:"message,omitempty"`
	EndReason      EndReason  `json:"endReason,omitempty"`
	Answer         string     `json:"answer,omitempty"` // disclosed on defeat only
}

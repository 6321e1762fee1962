// internal/game/engine.go
//
// Core game engine for a single Đoán Chữ session.
// Responsibilities:
//   - Start (or restart) a 20-level run: level 1, score 0, three lives.
//   - Evaluate submissions (case-insensitive, NFC-normalised exact match).
//   - Reveal hint letters within the per-level allowance.
//   - Drive the per-word countdown and end the run on timeout.
//   - Advance levels after the post-success delay, or declare victory.
//
// State transitions:
//
//	not_started ─Start─▶ active ─correct─▶ level_transition ─Advance─▶ active
//	                       │                       └──(level == max)──▶ victory
//	                       └─(lives == 0 | timeout)─▶ defeat
//	any ─Start─▶ active
//
// Notes:
//   - A Session is not safe for concurrent use; internal/play serialises access.
//   - All randomness comes from the injected *rand.Rand so runs are reproducible.
//   - Each Start bumps the epoch. Advance only completes a transition of the
//     current epoch, so a restart supersedes a pending delayed advance.

package game

import (
	"math/rand/v2"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/robalobadob/doanchu/internal/words"
)

// WordSource supplies a random entry of a tier.
type WordSource interface {
	Pick(t words.Tier, rng *rand.Rand) words.Entry
}

// Session holds the state of one player's run.
type Session struct {
	rules Rules
	bank  WordSource
	rng   *rand.Rand

	phase      Phase
	reason     EndReason
	level      int
	score      int
	lives      int
	hintsLevel int
	hintsTotal int
	entry      words.Entry
	mask       *Masked
	timer      *Countdown
	message    *Message
	epoch      uint64
}

// NewSession constructs a session in the not_started phase.
func NewSession(bank WordSource, rng *rand.Rand, rules Rules) *Session {
	return &Session{
		rules: rules,
		bank:  bank,
		rng:   rng,
		phase: PhaseNotStarted,
		timer: NewCountdown(rules.TimerSeconds),
	}
}

// Start begins a new run from level 1, discarding any previous state.
func (s *Session) Start() {
	s.epoch++
	s.phase = PhaseActive
	s.reason = EndNone
	s.level = 1
	s.score = 0
	s.lives = s.rules.StartLives
	s.hintsTotal = 0
	s.message = nil
	s.loadWord()
}

// Submit evaluates the player's answer.
//
// Blank input and submissions outside the active phase are ignored.
// A correct answer scores and enters level_transition; the caller completes
// it with Advance(outcome.Epoch) after the success delay.
func (s *Session) Submit(input string) Outcome {
	if s.phase != PhaseActive {
		return Outcome{Result: ResultIgnored}
	}
	guess := norm.NFC.String(strings.TrimSpace(input))
	if guess == "" {
		return Outcome{Result: ResultIgnored}
	}

	if strings.EqualFold(guess, s.entry.Word) {
		s.score += s.rules.PointsPerWord
		s.message = msgCorrect(s.rules.PointsPerWord)
		s.phase = PhaseTransition
		s.timer.Stop()
		return Outcome{Result: ResultCorrect, Epoch: s.epoch}
	}

	s.lives--
	if s.lives <= 0 {
		s.lives = 0
		s.lose(EndLives, msgGameOver(s.entry.Word))
		return Outcome{Result: ResultDefeat, ClearInput: true}
	}
	s.message = msgWrong(s.lives)
	return Outcome{Result: ResultWrong, ClearInput: true}
}

// RevealHint uncovers one hidden letter. It reports false (and changes
// nothing) when the session is not active, the level allowance is used up,
// the strict game budget is spent, or no hidden letter remains.
func (s *Session) RevealHint() bool {
	if s.phase != PhaseActive {
		return false
	}
	if s.hintsLevel >= s.rules.MaxHints(s.level) {
		return false
	}
	if s.rules.StrictHintBudget && s.hintsTotal >= s.rules.HintBudget {
		return false
	}
	if _, ok := s.mask.RevealRandom(s.rng); !ok {
		return false
	}
	s.hintsLevel++
	if s.hintsTotal < s.rules.HintBudget {
		s.hintsTotal++
	}
	return true
}

// Tick advances the countdown by one unit. It reports true when this tick
// timed the player out.
func (s *Session) Tick() bool {
	if s.phase != PhaseActive {
		return false
	}
	if !s.timer.Tick() {
		return false
	}
	s.lose(EndTimeout, msgTimeout(s.entry.Word))
	return true
}

// Advance completes the level transition started by the correct answer of
// the given epoch. Stale epochs and other phases are ignored.
func (s *Session) Advance(epoch uint64) bool {
	if epoch != s.epoch || s.phase != PhaseTransition {
		return false
	}
	if s.level >= s.rules.MaxLevel {
		s.phase = PhaseVictory
		s.message = msgVictory()
		return true
	}
	s.level++
	s.phase = PhaseActive
	s.message = nil
	s.loadWord()
	return true
}

// loadWord draws the word for the current level and resets per-level state.
func (s *Session) loadWord() {
	s.entry = s.bank.Pick(words.TierForLevel(s.level), s.rng)
	s.mask = NewMasked(s.entry.Word, s.rng)
	s.hintsLevel = 0
	s.timer.Reset()
}

func (s *Session) lose(reason EndReason, msg *Message) {
	s.phase = PhaseDefeat
	s.reason = reason
	s.message = msg
	s.timer.Stop()
}

// Phase returns the lifecycle phase.
func (s *Session) Phase() Phase { return s.phase }

// Epoch returns the current run counter.
func (s *Session) Epoch() uint64 { return s.epoch }

// Snapshot copies the state for rendering.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:          s.phase,
		Active:         s.phase == PhaseActive || s.phase == PhaseTransition,
		Level:          s.level,
		MaxLevel:       s.rules.MaxLevel,
		Score:          s.score,
		Lives:          s.lives,
		HintsUsed:      s.hintsLevel,
		HintBudgetLeft: s.rules.HintBudget - s.hintsTotal,
		Remaining:      s.timer.Remaining(),
		EndReason:      s.reason,
	}
	if s.phase == PhaseNotStarted {
		return snap
	}
	snap.Tier = words.TierForLevel(s.level)
	snap.Hint = s.entry.Hint
	snap.Masked = s.mask.String()
	snap.HintsLeft = s.rules.MaxHints(s.level) - s.hintsLevel
	if s.message != nil {
		m := *s.message
		snap.Message = &m
	}
	if s.phase == PhaseDefeat {
		snap.Answer = s.entry.Word
	}
	return snap
}

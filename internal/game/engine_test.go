package game

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/doanchu/internal/words"
)

// fixedBank always returns the same entry per tier.
type fixedBank map[words.Tier]words.Entry

func (b fixedBank) Pick(t words.Tier, _ *rand.Rand) words.Entry { return b[t] }

var testBank = fixedBank{
	words.Easy:   {Word: "abcdefghij", Hint: "easy hint"},
	words.Medium: {Word: "Hà Nội", Hint: "Thủ đô Việt Nam"},
	words.Hard:   {Word: "Múa rối nước", Hint: "hard hint"},
}

func newTestSession(t *testing.T, rules Rules) *Session {
	t.Helper()
	require.NoError(t, rules.Validate())
	s := NewSession(testBank, rand.New(rand.NewPCG(1, 1)), rules)
	s.Start()
	return s
}

// solve answers the current word correctly and completes the transition.
func solve(t *testing.T, s *Session) {
	t.Helper()
	out := s.Submit(testBank[words.TierForLevel(s.level)].Word)
	require.Equal(t, ResultCorrect, out.Result)
	require.True(t, s.Advance(out.Epoch))
}

func TestNotStarted(t *testing.T) {
	s := NewSession(testBank, rand.New(rand.NewPCG(1, 1)), DefaultRules())
	snap := s.Snapshot()
	assert.Equal(t, PhaseNotStarted, snap.Phase)
	assert.False(t, snap.Active)
	assert.Equal(t, ResultIgnored, s.Submit("abcdefghij").Result)
	assert.False(t, s.RevealHint())
	assert.False(t, s.Tick())
}

func TestStartInitialState(t *testing.T) {
	s := newTestSession(t, DefaultRules())
	snap := s.Snapshot()

	assert.Equal(t, PhaseActive, snap.Phase)
	assert.True(t, snap.Active)
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 3, snap.Lives)
	assert.Equal(t, words.Easy, snap.Tier)
	assert.Equal(t, "easy hint", snap.Hint)
	assert.Equal(t, 45, snap.Remaining)
	assert.Equal(t, 2, snap.HintsLeft)
	assert.Equal(t, 20, snap.HintBudgetLeft)
	assert.Len(t, s.mask.Hidden(), 7)
	assert.Empty(t, snap.Answer)
	assert.Nil(t, snap.Message)
}

func TestCorrectAnswerScoresAndTransitions(t *testing.T) {
	s := newTestSession(t, DefaultRules())

	out := s.Submit("  ABCDEFGHIJ ")
	require.Equal(t, ResultCorrect, out.Result)
	assert.False(t, out.ClearInput)

	snap := s.Snapshot()
	assert.Equal(t, PhaseTransition, snap.Phase)
	assert.True(t, snap.Active)
	assert.Equal(t, 10, snap.Score)
	assert.Equal(t, &Message{Text: "Chính xác! +10 điểm", Type: SeveritySuccess}, snap.Message)

	// Input and hints are ignored until the level advances.
	assert.Equal(t, ResultIgnored, s.Submit("wrong").Result)
	assert.False(t, s.RevealHint())
	assert.Equal(t, 3, s.Snapshot().Lives)

	require.True(t, s.Advance(out.Epoch))
	snap = s.Snapshot()
	assert.Equal(t, PhaseActive, snap.Phase)
	assert.Equal(t, 2, snap.Level)
	assert.Nil(t, snap.Message)
	assert.False(t, s.Advance(out.Epoch), "transition already completed")
}

func TestScoreIsTenPerCorrectAnswer(t *testing.T) {
	s := newTestSession(t, DefaultRules())
	for n := 1; n <= 16; n++ {
		solve(t, s)
		assert.Equal(t, 10*n, s.Snapshot().Score)
	}
}

func TestLevelSevenToEightSwitchesTier(t *testing.T) {
	s := newTestSession(t, DefaultRules())
	for s.level < 7 {
		solve(t, s)
	}
	require.True(t, s.RevealHint())
	for i := 0; i < 10; i++ {
		s.Tick()
	}
	snap := s.Snapshot()
	require.Equal(t, 7, snap.Level)
	require.Equal(t, 1, snap.HintsUsed)
	require.Equal(t, 35, snap.Remaining)

	solve(t, s)
	snap = s.Snapshot()
	assert.Equal(t, 8, snap.Level)
	assert.Equal(t, words.Medium, snap.Tier)
	assert.Equal(t, "Thủ đô Việt Nam", snap.Hint)
	assert.Equal(t, 0, snap.HintsUsed)
	assert.Equal(t, 3, snap.HintsLeft)
	assert.Equal(t, 45, snap.Remaining)
	assert.Equal(t, "_à _ộ_", snap.Masked)
}

func TestVictoryAtMaxLevel(t *testing.T) {
	s := newTestSession(t, DefaultRules())
	for s.level < 20 {
		solve(t, s)
	}
	out := s.Submit("múa rối NƯỚC")
	require.Equal(t, ResultCorrect, out.Result)
	require.True(t, s.Advance(out.Epoch))

	snap := s.Snapshot()
	assert.Equal(t, PhaseVictory, snap.Phase)
	assert.False(t, snap.Active)
	assert.Equal(t, 20, snap.Level)
	assert.Equal(t, 200, snap.Score)
	assert.Equal(t, SeveritySuccess, snap.Message.Type)
	assert.Contains(t, snap.Message.Text, "Chúc mừng")
	assert.Equal(t, ResultIgnored, s.Submit("anything").Result)
}

func TestWrongAnswerCostsALife(t *testing.T) {
	s := newTestSession(t, DefaultRules())

	out := s.Submit("nope")
	assert.Equal(t, Outcome{Result: ResultWrong, ClearInput: true}, out)
	snap := s.Snapshot()
	assert.Equal(t, 2, snap.Lives)
	assert.Equal(t, &Message{Text: "Sai! Còn 2 lần thử.", Type: SeverityError}, snap.Message)
	assert.Equal(t, 1, snap.Level)
}

func TestLastLifeEndsTheGame(t *testing.T) {
	s := newTestSession(t, DefaultRules())
	s.Submit("one")
	s.Submit("two")

	out := s.Submit("three")
	assert.Equal(t, ResultDefeat, out.Result)
	assert.True(t, out.ClearInput)

	snap := s.Snapshot()
	assert.Equal(t, PhaseDefeat, snap.Phase)
	assert.False(t, snap.Active)
	assert.Equal(t, 0, snap.Lives)
	assert.Equal(t, EndLives, snap.EndReason)
	assert.Equal(t, "abcdefghij", snap.Answer)
	assert.Equal(t, "Game Over! Đáp án là: abcdefghij", snap.Message.Text)

	assert.Equal(t, ResultIgnored, s.Submit("four").Result)
	assert.Equal(t, 0, s.Snapshot().Lives)
}

func TestBlankInputIgnored(t *testing.T) {
	s := newTestSession(t, DefaultRules())
	assert.Equal(t, ResultIgnored, s.Submit("").Result)
	assert.Equal(t, ResultIgnored, s.Submit(" \t ").Result)
	assert.Equal(t, 3, s.Snapshot().Lives)
}

func TestDecomposedInputMatches(t *testing.T) {
	s := newTestSession(t, DefaultRules())
	for s.level < 8 {
		solve(t, s)
	}
	// "hà nội" typed with combining marks.
	out := s.Submit("ha\u0300 no\u0323\u0302i")
	assert.Equal(t, ResultCorrect, out.Result)
}

func TestDiacriticsMustMatch(t *testing.T) {
	s := newTestSession(t, DefaultRules())
	for s.level < 8 {
		solve(t, s)
	}
	assert.Equal(t, ResultWrong, s.Submit("Ha Noi").Result)
}

func TestTimeoutEndsTheGame(t *testing.T) {
	s := newTestSession(t, DefaultRules())
	for i := 0; i < 44; i++ {
		require.False(t, s.Tick())
	}
	require.True(t, s.Tick())

	snap := s.Snapshot()
	assert.Equal(t, PhaseDefeat, snap.Phase)
	assert.False(t, snap.Active)
	assert.Equal(t, EndTimeout, snap.EndReason)
	assert.Equal(t, 0, snap.Remaining)
	assert.Equal(t, "abcdefghij", snap.Answer)
	assert.Equal(t, "Hết giờ! Đáp án là: abcdefghij", snap.Message.Text)

	assert.False(t, s.Tick(), "timeout is reported once")
	assert.Equal(t, ResultIgnored, s.Submit("abcdefghij").Result)
}

func TestCountdownPausedDuringTransition(t *testing.T) {
	s := newTestSession(t, DefaultRules())
	s.Tick()
	out := s.Submit("abcdefghij")
	for i := 0; i < 100; i++ {
		assert.False(t, s.Tick())
	}
	assert.Equal(t, PhaseTransition, s.Phase())
	require.True(t, s.Advance(out.Epoch))
	assert.Equal(t, 45, s.Snapshot().Remaining)
}

func TestRestartSupersedesPendingAdvance(t *testing.T) {
	s := newTestSession(t, DefaultRules())
	solve(t, s)
	out := s.Submit("abcdefghij")
	require.Equal(t, ResultCorrect, out.Result)

	s.Start()
	assert.False(t, s.Advance(out.Epoch))
	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, PhaseActive, snap.Phase)
}

func TestRestartAfterDefeat(t *testing.T) {
	s := newTestSession(t, DefaultRules())
	s.Submit("x")
	s.RevealHint()
	for s.Phase() == PhaseActive {
		s.Tick()
	}
	s.Start()

	snap := s.Snapshot()
	assert.Equal(t, PhaseActive, snap.Phase)
	assert.Equal(t, 3, snap.Lives)
	assert.Equal(t, 20, snap.HintBudgetLeft)
	assert.Equal(t, 45, snap.Remaining)
	assert.Equal(t, EndNone, snap.EndReason)
	assert.Nil(t, snap.Message)
}

func TestHintAllowancePerLevel(t *testing.T) {
	s := newTestSession(t, DefaultRules())

	before := len(s.mask.Hidden())
	require.True(t, s.RevealHint())
	require.True(t, s.RevealHint())
	assert.False(t, s.RevealHint(), "easy levels allow two hints")
	assert.Len(t, s.mask.Hidden(), before-2)

	snap := s.Snapshot()
	assert.Equal(t, 2, snap.HintsUsed)
	assert.Equal(t, 0, snap.HintsLeft)
	assert.Equal(t, 18, snap.HintBudgetLeft)

	for s.level < 15 {
		solve(t, s)
	}
	// "Múa rối nước": M a r i n c maskable → 6, ceil(4.2) = 5 hidden.
	require.Len(t, s.mask.Hidden(), 5)
	for i := 0; i < 4; i++ {
		require.True(t, s.RevealHint(), "hint %d", i+1)
	}
	assert.False(t, s.RevealHint(), "hard levels allow four hints")
}

func TestHintStopsWhenNothingHidden(t *testing.T) {
	s := newTestSession(t, DefaultRules())
	for s.level < 8 {
		solve(t, s)
	}
	// "Hà Nội" hides all three maskable letters; medium allows three hints.
	for i := 0; i < 3; i++ {
		require.True(t, s.RevealHint())
	}
	assert.Equal(t, "Hà Nội", s.Snapshot().Masked)
	assert.False(t, s.RevealHint())
}

func TestHintBudgetInformational(t *testing.T) {
	rules := DefaultRules()
	rules.HintBudget = 3
	s := newTestSession(t, rules)

	s.RevealHint()
	s.RevealHint()
	solve(t, s)
	require.True(t, s.RevealHint())
	require.True(t, s.RevealHint(), "soft budget does not block hints")
	assert.Equal(t, 0, s.Snapshot().HintBudgetLeft)
	assert.Equal(t, 3, s.hintsTotal)
}

func TestHintBudgetStrict(t *testing.T) {
	rules := DefaultRules()
	rules.HintBudget = 3
	rules.StrictHintBudget = true
	s := newTestSession(t, rules)

	s.RevealHint()
	s.RevealHint()
	solve(t, s)
	require.True(t, s.RevealHint())
	assert.False(t, s.RevealHint())
	assert.Equal(t, 0, s.Snapshot().HintBudgetLeft)
}

func TestRulesValidate(t *testing.T) {
	assert.NoError(t, DefaultRules().Validate())

	bad := DefaultRules()
	bad.TimerSeconds = 0
	assert.Error(t, bad.Validate())

	bad = DefaultRules()
	bad.StartLives = 0
	assert.Error(t, bad.Validate())
}

func TestMaxHints(t *testing.T) {
	r := DefaultRules()
	assert.Equal(t, 2, r.MaxHints(1))
	assert.Equal(t, 2, r.MaxHints(7))
	assert.Equal(t, 3, r.MaxHints(8))
	assert.Equal(t, 3, r.MaxHints(14))
	assert.Equal(t, 4, r.MaxHints(15))
	assert.Equal(t, 4, r.MaxHints(20))
}

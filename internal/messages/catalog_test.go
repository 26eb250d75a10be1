package messages

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWelcomeGreetingContainsName(t *testing.T) {
	got := WelcomeGreeting("田中")
	assert.Contains(t, got, "田中さん")
	assert.Contains(t, got, "RepoTomo")
}

func TestTodaySummaryContainsCount(t *testing.T) {
	assert.Contains(t, TodaySummary(3), "3件")
	assert.Contains(t, CarouselAltText(2), "2件")
}

func TestDueDateHint(t *testing.T) {
	assert.Equal(t, "金曜日頃まで", DueDateHint("金曜日"))
	assert.Equal(t, "期限なし頃まで", DueDateHint(""))
}

func TestPickerDeterministic(t *testing.T) {
	a := NewPicker(rand.NewPCG(1, 2))
	b := NewPicker(rand.NewPCG(1, 2))

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Pick(KindSubmit), b.Pick(KindSubmit))
	}
}

func TestPickerCoversPool(t *testing.T) {
	p := NewPicker(rand.NewPCG(42, 0))
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		seen[p.Pick(KindSubmit)] = true
	}
	// A uniform pick over four phrases should see every phrase in 500 draws.
	require.Len(t, seen, len(Phrases(KindSubmit)))
	for phrase := range seen {
		assert.Contains(t, Phrases(KindSubmit), phrase)
	}
}

func TestPickerUnknownKindFallsBack(t *testing.T) {
	p := NewPicker(rand.NewPCG(7, 7))
	assert.Contains(t, Phrases(KindSubmit), p.Pick(Kind("unknown")))
}

func TestConsultPoolDistinct(t *testing.T) {
	assert.NotEqual(t, Phrases(KindSubmit), Phrases(KindConsult))
	assert.NotEmpty(t, Phrases(KindConsult))
}

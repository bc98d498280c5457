package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedScore(t *testing.T) {
	assert.InDelta(t, 0.5, ExpectedScore(1200, 1200), 1e-12)

	stronger := ExpectedScore(1400, 1200)
	assert.Greater(t, stronger, 0.5)
	assert.Less(t, stronger, 1.0)
	assert.InDelta(t, 1.0, stronger+ExpectedScore(1200, 1400), 1e-12)
	// 400 points difference means 10:1 odds.
	assert.InDelta(t, 10.0/11.0, ExpectedScore(1600, 1200), 1e-12)
}

func TestTeamRating(t *testing.T) {
	assert.Equal(t, 1300.0, TeamRating([]Participant{{"a", 1200}, {"b", 1400}}))
	assert.Equal(t, 1250.0, TeamRating([]Participant{{"a", 1250}}))
	assert.Zero(t, TeamRating(nil))
}

func TestCalculate_EqualTeamsWin(t *testing.T) {
	calc := NewCalculator(32)
	updates := calc.Calculate(
		[]Participant{{"a", 1200}, {"b", 1200}},
		[]Participant{{"c", 1200}, {"d", 1200}},
		10, 3,
	)
	require.Len(t, updates, 4)

	for _, u := range updates[:2] {
		assert.InDelta(t, 16.0, u.Delta, 1e-9)
		assert.InDelta(t, 1216.0, u.NewRating, 1e-9)
	}
	for _, u := range updates[2:] {
		assert.InDelta(t, -16.0, u.Delta, 1e-9)
		assert.InDelta(t, 1184.0, u.NewRating, 1e-9)
	}
}

func TestCalculate_MarginDoesNotMatter(t *testing.T) {
	calc := NewCalculator(32)
	team1 := []Participant{{"a", 1300}}
	team2 := []Participant{{"b", 1100}}

	narrow := calc.Calculate(team1, team2, 10, 9)
	wide := calc.Calculate(team1, team2, 10, 0)

	assert.Equal(t, narrow, wide)
}

func TestCalculate_TieFavoursUnderdog(t *testing.T) {
	calc := NewCalculator(32)
	updates := calc.Calculate([]Participant{{"fav", 1500}}, []Participant{{"dog", 1200}}, 10, 10)
	require.Len(t, updates, 2)

	assert.Less(t, updates[0].Delta, 0.0)
	assert.Greater(t, updates[1].Delta, 0.0)
	assert.InDelta(t, 0.0, updates[0].Delta+updates[1].Delta, 1e-9)
}

func TestCalculate_UsesTeamMean(t *testing.T) {
	calc := NewCalculator(20)
	updates := calc.Calculate(
		[]Participant{{"a", 1000}, {"b", 1400}},
		[]Participant{{"c", 1200}, {"d", 1200}},
		0, 10,
	)

	assert.InDelta(t, -10.0, updates[0].Delta, 1e-9)
	assert.Equal(t, updates[0].Delta, updates[1].Delta)
	assert.InDelta(t, 10.0, updates[2].Delta, 1e-9)
}

func TestRevert(t *testing.T) {
	calc := NewCalculator(0)
	assert.Equal(t, DefaultKFactor, calc.KFactor())

	updates := calc.Calculate([]Participant{{"a", 1234.5}}, []Participant{{"b", 1111.25}}, 3, 10)
	for i, before := range []float64{1234.5, 1111.25} {
		assert.InDelta(t, before, Revert(updates[i].NewRating, updates[i].Delta), 1e-9)
	}
}

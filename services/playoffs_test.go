package services

import (
	"testing"

	"github.com/Dosada05/kicker-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayoffs_SemiFinalsThenFinal(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.SetOneOnOne(true))
	f.signUp(t, "a", "b", "c", "d")

	semis, err := f.svc.GeneratePlayoffs()
	require.NoError(t, err)
	require.Len(t, semis, 2)
	assert.Equal(t, []string{"a"}, semis[0].Team1)
	assert.Equal(t, []string{"d"}, semis[0].Team2)
	assert.Equal(t, []string{"b"}, semis[1].Team1)
	assert.Equal(t, []string{"c"}, semis[1].Team2)
	assert.True(t, f.svc.Snapshot().SemiFinalsGenerated)

	_, err = f.svc.GenerateRound()
	assert.ErrorIs(t, err, ErrPlayoffsStarted)
	assert.ErrorIs(t, err, models.ErrInvalidState)

	_, err = f.svc.GeneratePlayoffs()
	assert.ErrorIs(t, err, ErrSemiFinalsNotFinished)
	assert.ErrorIs(t, err, models.ErrPreconditionViolation)

	require.NoError(t, f.svc.FinalizeGame(0, 10, 4))
	require.NoError(t, f.svc.FinalizeGame(1, 3, 10))

	final, err := f.svc.GeneratePlayoffs()
	require.NoError(t, err)
	require.Len(t, final, 1)
	assert.Equal(t, models.StageFinal, final[0].Stage)
	assert.Equal(t, []string{"a"}, final[0].Team1)
	assert.Equal(t, []string{"c"}, final[0].Team2)

	_, err = f.svc.GeneratePlayoffs()
	assert.ErrorIs(t, err, ErrFinalAlreadyGenerated)

	_, err = f.svc.Winner()
	assert.ErrorIs(t, err, ErrFinalNotFinished)

	require.NoError(t, f.svc.FinalizeGame(2, 8, 10))
	winner, err := f.svc.Winner()
	require.NoError(t, err)
	require.Len(t, winner, 1)
	assert.Equal(t, "c", winner[0].Name)
}

func TestPlayoffs_AmbiguousSemiFinal(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.SetOneOnOne(true))
	require.NoError(t, f.svc.SetParameters(10, 2))
	f.signUp(t, "a", "b", "c", "d")

	semis, err := f.svc.GeneratePlayoffs()
	require.NoError(t, err)
	require.Len(t, semis, 4)
	for i, g := range semis {
		assert.Equal(t, models.StageSemiFinal, g.Stage)
		if i < 2 {
			assert.Equal(t, []string{"a"}, g.Team1, "semifinal A comes first")
		}
	}

	// semifinal A: a wins 2-0, semifinal B: 1-1 with 17 goals each
	require.NoError(t, f.svc.FinalizeGame(0, 10, 2))
	require.NoError(t, f.svc.FinalizeGame(1, 10, 5))
	require.NoError(t, f.svc.FinalizeGame(2, 10, 7))
	require.NoError(t, f.svc.FinalizeGame(3, 7, 10))

	_, err = f.svc.GeneratePlayoffs()
	assert.ErrorIs(t, err, ErrNoDistinctWinner)
	assert.ErrorIs(t, err, models.ErrAmbiguousOutcome)
	assert.Len(t, f.svc.Games(), 4)
	assert.False(t, f.svc.Snapshot().FinalGenerated)

	// goals decide a drawn matchup
	require.NoError(t, f.svc.FinalizeGame(2, 10, 6))
	final, err := f.svc.GeneratePlayoffs()
	require.NoError(t, err)
	require.Len(t, final, 2)
	assert.Equal(t, []string{"a"}, final[0].Team1)
	assert.Equal(t, []string{"b"}, final[0].Team2)
}

func TestPlayoffs_TeamSemiFinalsCrossSeeded(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "a", "b", "c", "d", "e", "f", "g", "h")

	semis, err := f.svc.GeneratePlayoffs()
	require.NoError(t, err)
	require.Len(t, semis, 2)
	assert.Equal(t, []string{"a", "e"}, semis[0].Team1)
	assert.Equal(t, []string{"d", "h"}, semis[0].Team2)
	assert.Equal(t, []string{"b", "f"}, semis[1].Team1)
	assert.Equal(t, []string{"c", "g"}, semis[1].Team2)
}

func TestPlayoffs_DirectFinalForSmallPool(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "a", "b", "c", "d", "e")

	final, err := f.svc.GeneratePlayoffs()
	require.NoError(t, err)
	require.Len(t, final, 1)

	game := final[0]
	assert.Equal(t, models.StageFinal, game.Stage)
	assert.Len(t, game.Team1, 2)
	assert.Len(t, game.Team2, 2)
	assert.Equal(t, "a", game.Team1[0], "top ranked player anchors the first team")
	for _, name := range game.Team1 {
		assert.NotContains(t, game.Team2, name)
	}

	snapshot := f.svc.Snapshot()
	assert.True(t, snapshot.FinalGenerated)
	assert.False(t, snapshot.SemiFinalsGenerated)
}

func TestPlayoffs_DirectFinalOneOnOne(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.SetOneOnOne(true))
	f.signUp(t, "a", "b", "c")

	game, err := f.svc.GenerateGame()
	require.NoError(t, err)
	require.NoError(t, f.svc.RecordResult(0, 2, 10))

	var idle string
	for _, name := range []string{"a", "b", "c"} {
		if !game.HasPlayer(name) {
			idle = name
		}
	}

	// winner first, then the idle player ahead of the loser on goal difference
	final, err := f.svc.GeneratePlayoffs()
	require.NoError(t, err)
	require.Len(t, final, 1)
	assert.Equal(t, game.Team2, final[0].Team1)
	assert.Equal(t, []string{idle}, final[0].Team2)
}

func TestPlayoffs_NotEnoughPlayersForFinal(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "a", "b", "c")

	_, err := f.svc.GeneratePlayoffs()
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
	assert.False(t, f.svc.Snapshot().FinalGenerated)
	assert.Empty(t, f.svc.Games())
}

func TestWinner_WithoutFinal(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Winner()
	assert.ErrorIs(t, err, ErrFinalNotGenerated)
}

func TestMatchupBlocks(t *testing.T) {
	a1, _ := models.NewGame(models.StageSemiFinal, []string{"a"}, []string{"d"})
	b1, _ := models.NewGame(models.StageSemiFinal, []string{"b"}, []string{"c"})
	a2, _ := models.NewGame(models.StageSemiFinal, []string{"a"}, []string{"d"})
	regular, _ := models.NewGame(models.StageRegular, []string{"a"}, []string{"d"})

	blocks := matchupBlocks([]*models.Game{regular, a1, b1, a2}, models.StageSemiFinal)
	require.Len(t, blocks, 2)
	assert.Equal(t, []*models.Game{a1, a2}, blocks[0])
	assert.Equal(t, []*models.Game{b1}, blocks[1])
}

package services

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/Dosada05/kicker-system/brackets"
	"github.com/Dosada05/kicker-system/models"
)

// GeneratePlayoffs appends the semifinals, or the final when semifinals were
// already generated or too few players are signed up for them.
func (s *tournamentService) GeneratePlayoffs() ([]*models.Game, error) {
	t, err := s.mutable()
	if err != nil {
		return nil, err
	}
	if t.FinalGenerated {
		return nil, ErrFinalAlreadyGenerated
	}
	if s.matchmaker == nil {
		return nil, brackets.ErrModeNotSet
	}

	if t.SemiFinalsGenerated || len(t.SignedUp) < brackets.MinPlayersForSemiFinals(t.OneOnOne) {
		final, err := s.finalMatchup(t)
		if err != nil {
			return nil, err
		}
		games, err := final.Games(models.StageFinal, t.NumberOfGames)
		if err != nil {
			return nil, err
		}
		t.Games = append(t.Games, games...)
		t.FinalGenerated = true
		s.logger.Info("final generated", slog.Any("team1", final.Team1), slog.Any("team2", final.Team2))
		return cloneGames(games), nil
	}

	a, b, err := brackets.SemiFinalMatchups(rankPlayers(t.SignedUpPlayers()), t.OneOnOne)
	if err != nil {
		return nil, err
	}
	gamesA, err := a.Games(models.StageSemiFinal, t.NumberOfGames)
	if err != nil {
		return nil, err
	}
	gamesB, err := b.Games(models.StageSemiFinal, t.NumberOfGames)
	if err != nil {
		return nil, err
	}
	games := append(gamesA, gamesB...)
	t.Games = append(t.Games, games...)
	t.SemiFinalsGenerated = true
	s.logger.Info("semifinals generated", slog.Int("games", len(games)))
	return cloneGames(games), nil
}

func (s *tournamentService) finalMatchup(t *models.Tournament) (brackets.Matchup, error) {
	if t.SemiFinalsGenerated {
		blocks := matchupBlocks(t.Games, models.StageSemiFinal)
		if len(blocks) != 2 {
			return brackets.Matchup{}, fmt.Errorf("%w: found %d", ErrSemiFinalsMalformed, len(blocks))
		}
		winnerA, err := matchupWinner(blocks[0], ErrSemiFinalsNotFinished)
		if err != nil {
			return brackets.Matchup{}, fmt.Errorf("semifinal A: %w", err)
		}
		winnerB, err := matchupWinner(blocks[1], ErrSemiFinalsNotFinished)
		if err != nil {
			return brackets.Matchup{}, fmt.Errorf("semifinal B: %w", err)
		}
		return brackets.Matchup{Team1: winnerA, Team2: winnerB}, nil
	}

	teamSize := t.TeamSize()
	ranked := rankPlayers(t.SignedUpPlayers())
	team1, err := s.matchmaker.GenerateTeam(ranked, teamSize)
	if err != nil {
		return brackets.Matchup{}, err
	}
	rest := slices.DeleteFunc(slices.Clone(ranked), func(p *models.Player) bool {
		return slices.ContainsFunc(team1, p.Equal)
	})
	team2, err := s.matchmaker.GenerateTeam(rest, teamSize)
	if err != nil {
		return brackets.Matchup{}, err
	}
	return brackets.Matchup{Team1: playerNames(team1), Team2: playerNames(team2)}, nil
}

// matchupBlocks groups the games of a stage by matchup, in order of first
// appearance.
func matchupBlocks(games []*models.Game, stage models.GameStage) [][]*models.Game {
	var blocks [][]*models.Game
	for _, g := range games {
		if g.Stage != stage {
			continue
		}
		idx := slices.IndexFunc(blocks, func(b []*models.Game) bool { return b[0].SameMatchup(g) })
		if idx < 0 {
			blocks = append(blocks, []*models.Game{g})
			continue
		}
		blocks[idx] = append(blocks[idx], g)
	}
	return blocks
}

// matchupWinner decides a matchup by games won, then by goals.
func matchupWinner(games []*models.Game, notFinished error) ([]string, error) {
	var wins1, wins2, goals1, goals2 int
	for _, g := range games {
		if !g.Finished {
			return nil, notFinished
		}
		goals1 += g.ScoreTeam1
		goals2 += g.ScoreTeam2
		switch {
		case g.ScoreTeam1 > g.ScoreTeam2:
			wins1++
		case g.ScoreTeam2 > g.ScoreTeam1:
			wins2++
		}
	}

	ref := games[0]
	switch {
	case wins1 > wins2:
		return slices.Clone(ref.Team1), nil
	case wins2 > wins1:
		return slices.Clone(ref.Team2), nil
	case goals1 > goals2:
		return slices.Clone(ref.Team1), nil
	case goals2 > goals1:
		return slices.Clone(ref.Team2), nil
	}
	return nil, fmt.Errorf("%w: %v and %v are tied at %d wins and %d goals each",
		ErrNoDistinctWinner, ref.Team1, ref.Team2, wins1, goals1)
}

// Winner returns the team that won the final.
func (s *tournamentService) Winner() ([]*models.Player, error) {
	t := s.active()
	if !t.FinalGenerated {
		return nil, ErrFinalNotGenerated
	}
	blocks := matchupBlocks(t.Games, models.StageFinal)
	if len(blocks) == 0 {
		return nil, ErrFinalNotGenerated
	}
	names, err := matchupWinner(blocks[0], ErrFinalNotFinished)
	if err != nil {
		return nil, err
	}
	team, err := resolveTeam(t, names)
	if err != nil {
		return nil, err
	}
	for i, p := range team {
		team[i] = p.Clone()
	}
	return team, nil
}

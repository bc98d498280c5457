package services

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/Dosada05/kicker-system/brackets"
	"github.com/Dosada05/kicker-system/models"
	"github.com/Dosada05/kicker-system/rating"
)

// GenerateRound appends as many regular games as the signed-up players allow.
func (s *tournamentService) GenerateRound() ([]*models.Game, error) {
	t, err := s.regularPlay()
	if err != nil {
		return nil, err
	}
	games, err := s.matchmaker.GenerateRound(t.SignedUpPlayers(), t.OneOnOne, t.Games)
	if err != nil {
		return nil, err
	}
	t.Games = append(t.Games, games...)
	s.logger.Debug("round generated", slog.Int("games", len(games)))
	return cloneGames(games), nil
}

// GenerateGame appends a single regular game.
func (s *tournamentService) GenerateGame() (*models.Game, error) {
	t, err := s.regularPlay()
	if err != nil {
		return nil, err
	}
	game, err := s.matchmaker.GenerateGame(t.SignedUpPlayers(), t.OneOnOne, t.Games)
	if err != nil {
		return nil, err
	}
	t.Games = append(t.Games, game)
	return game.Clone(), nil
}

func (s *tournamentService) regularPlay() (*models.Tournament, error) {
	t, err := s.mutable()
	if err != nil {
		return nil, err
	}
	if t.SemiFinalsGenerated || t.FinalGenerated {
		return nil, ErrPlayoffsStarted
	}
	if s.matchmaker == nil {
		return nil, brackets.ErrModeNotSet
	}
	return t, nil
}

func gameAt(t *models.Tournament, position int) (*models.Game, error) {
	if position < 0 || position >= len(t.Games) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidPosition, position, len(t.Games))
	}
	return t.Games[position], nil
}

// finalizable returns the game at position if its score may be set to the
// given values.
func (s *tournamentService) finalizable(position, scoreTeam1, scoreTeam2 int) (*models.Tournament, *models.Game, error) {
	t, err := s.mutable()
	if err != nil {
		return nil, nil, err
	}
	g, err := gameAt(t, position)
	if err != nil {
		return nil, nil, err
	}
	if scoreTeam1 < 0 || scoreTeam2 < 0 || scoreTeam1 > t.MaxScore || scoreTeam2 > t.MaxScore {
		return nil, nil, fmt.Errorf("%w: %d:%d, allowed 0..%d", ErrInvalidScore, scoreTeam1, scoreTeam2, t.MaxScore)
	}
	if g.ResultCommitted {
		return nil, nil, ErrGameCommitted
	}
	return t, g, nil
}

// FinalizeGame sets the score of a game and marks it finished.
func (s *tournamentService) FinalizeGame(position, scoreTeam1, scoreTeam2 int) error {
	_, g, err := s.finalizable(position, scoreTeam1, scoreTeam2)
	if err != nil {
		return err
	}
	g.ScoreTeam1, g.ScoreTeam2 = scoreTeam1, scoreTeam2
	g.Finished = true
	return nil
}

// RecordResult finalizes and commits a game in one step. One of the teams
// must have reached the max score.
func (s *tournamentService) RecordResult(position, scoreTeam1, scoreTeam2 int) error {
	t, g, err := s.finalizable(position, scoreTeam1, scoreTeam2)
	if err != nil {
		return err
	}
	if scoreTeam1 != t.MaxScore && scoreTeam2 != t.MaxScore {
		return fmt.Errorf("%w: %d:%d, max score %d", ErrMaxScoreNotReached, scoreTeam1, scoreTeam2, t.MaxScore)
	}
	team1, team2, err := resolveTeams(t, g)
	if err != nil {
		return err
	}
	g.ScoreTeam1, g.ScoreTeam2 = scoreTeam1, scoreTeam2
	g.Finished = true
	s.applyCommit(g, team1, team2)
	return nil
}

// CommitResults commits every finished game that is not committed yet and
// returns how many were committed.
func (s *tournamentService) CommitResults() (int, error) {
	t, err := s.mutable()
	if err != nil {
		return 0, err
	}

	type pending struct {
		game         *models.Game
		team1, team2 []*models.Player
	}
	var batch []pending
	for _, g := range t.Games {
		if !g.Finished || g.ResultCommitted {
			continue
		}
		team1, team2, err := resolveTeams(t, g)
		if err != nil {
			return 0, err
		}
		batch = append(batch, pending{g, team1, team2})
	}

	for _, p := range batch {
		s.applyCommit(p.game, p.team1, p.team2)
	}
	return len(batch), nil
}

// CommitGame commits a single finished game.
func (s *tournamentService) CommitGame(position int) error {
	t, err := s.mutable()
	if err != nil {
		return err
	}
	g, err := gameAt(t, position)
	if err != nil {
		return err
	}
	if g.ResultCommitted {
		return ErrGameCommitted
	}
	if !g.Finished {
		return ErrGameNotFinished
	}
	team1, team2, err := resolveTeams(t, g)
	if err != nil {
		return err
	}
	s.applyCommit(g, team1, team2)
	return nil
}

// RevertGame undoes a committed game and puts it back to an unplayed state.
func (s *tournamentService) RevertGame(position int) error {
	t, err := s.mutable()
	if err != nil {
		return err
	}
	g, err := gameAt(t, position)
	if err != nil {
		return err
	}
	if !g.ResultCommitted {
		return ErrGameNotCommitted
	}
	if !g.Finished {
		return ErrGameNotFinished
	}
	return s.resetGame(t, g)
}

// RemoveGame deletes a game, undoing its result first if it was committed.
func (s *tournamentService) RemoveGame(position int) error {
	t, err := s.mutable()
	if err != nil {
		return err
	}
	g, err := gameAt(t, position)
	if err != nil {
		return err
	}
	if err := s.resetGame(t, g); err != nil {
		return err
	}
	t.Games = slices.Delete(t.Games, position, position+1)
	return nil
}

// resetGame returns a game to zero score, unfinished and uncommitted,
// undoing its effects when it was committed. It is a no-op on a pending game.
func (s *tournamentService) resetGame(t *models.Tournament, g *models.Game) error {
	if g.ResultCommitted {
		team1, team2, err := resolveTeams(t, g)
		if err != nil {
			return err
		}
		s.undoCommit(g, team1, team2)
	}
	g.ScoreTeam1, g.ScoreTeam2 = 0, 0
	g.Finished = false
	g.ResultCommitted = false
	g.RatingDeltas = nil
	return nil
}

func resolveTeams(t *models.Tournament, g *models.Game) ([]*models.Player, []*models.Player, error) {
	team1, err := resolveTeam(t, g.Team1)
	if err != nil {
		return nil, nil, err
	}
	team2, err := resolveTeam(t, g.Team2)
	if err != nil {
		return nil, nil, err
	}
	return team1, team2, nil
}

func resolveTeam(t *models.Tournament, names []string) ([]*models.Player, error) {
	team := make([]*models.Player, len(names))
	for i, name := range names {
		p, ok := t.RosterPlayer(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
		}
		team[i] = p
	}
	return team, nil
}

func participants(team []*models.Player) []rating.Participant {
	out := make([]rating.Participant, len(team))
	for i, p := range team {
		out[i] = rating.Participant{Name: p.Name, Rating: p.Rating}
	}
	return out
}

func (s *tournamentService) applyCommit(g *models.Game, team1, team2 []*models.Player) {
	updates := s.calculator.Calculate(participants(team1), participants(team2), g.ScoreTeam1, g.ScoreTeam2)

	byName := make(map[string]*models.Player, len(team1)+len(team2))
	for _, p := range team1 {
		applyResult(p, g.ScoreTeam1, g.ScoreTeam2)
		byName[p.Name] = p
	}
	for _, p := range team2 {
		applyResult(p, g.ScoreTeam2, g.ScoreTeam1)
		byName[p.Name] = p
	}

	g.RatingDeltas = make(map[string]float64, len(updates))
	for _, u := range updates {
		p := byName[u.Name]
		p.Rating = u.NewRating
		p.RatingDelta = u.Delta
		g.RatingDeltas[u.Name] = u.Delta
	}
	g.ResultCommitted = true

	s.logger.Debug("game committed",
		slog.String("game_id", g.ID.String()),
		slog.Any("team1", g.Team1),
		slog.Any("team2", g.Team2),
		slog.Int("score_team1", g.ScoreTeam1),
		slog.Int("score_team2", g.ScoreTeam2),
		slog.Float64("k_factor", s.calculator.KFactor()))
}

func (s *tournamentService) undoCommit(g *models.Game, team1, team2 []*models.Player) {
	undo := func(p *models.Player) {
		delta, ok := g.RatingDeltas[p.Name]
		if !ok {
			delta = p.RatingDelta
		}
		p.Rating = rating.Revert(p.Rating, delta)
		p.RatingDelta = 0
	}
	for _, p := range team1 {
		revertResult(p, g.ScoreTeam1, g.ScoreTeam2)
		undo(p)
	}
	for _, p := range team2 {
		revertResult(p, g.ScoreTeam2, g.ScoreTeam1)
		undo(p)
	}

	s.logger.Debug("game reverted",
		slog.String("game_id", g.ID.String()),
		slog.Any("team1", g.Team1),
		slog.Any("team2", g.Team2),
		slog.Int("score_team1", g.ScoreTeam1),
		slog.Int("score_team2", g.ScoreTeam2),
		slog.Float64("k_factor", s.calculator.KFactor()))
}

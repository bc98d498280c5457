package services

import (
	"cmp"
	"slices"

	"github.com/Dosada05/kicker-system/models"
)

// applyResult adds one game to the lifetime and tournament counters of a
// player who scored `shot` and conceded `received`.
func applyResult(p *models.Player, shot, received int) {
	switch {
	case shot > received:
		p.WonGames++
		p.WonGamesInTournament++
	case shot < received:
		p.LostGames++
		p.LostGamesInTournament++
	default:
		p.TiedGames++
		p.TiedGamesInTournament++
	}
	p.GoalsShot += shot
	p.GoalsReceived += received
	p.GoalsShotInTournament += shot
	p.GoalsReceivedInTournament += received
}

// revertResult is the inverse of applyResult. Tournament counters stop at
// zero: they are reset when a player rejoins, after which an older game can
// still be reverted.
func revertResult(p *models.Player, shot, received int) {
	switch {
	case shot > received:
		p.WonGames--
		p.WonGamesInTournament = floorSub(p.WonGamesInTournament, 1)
	case shot < received:
		p.LostGames--
		p.LostGamesInTournament = floorSub(p.LostGamesInTournament, 1)
	default:
		p.TiedGames--
		p.TiedGamesInTournament = floorSub(p.TiedGamesInTournament, 1)
	}
	p.GoalsShot -= shot
	p.GoalsReceived -= received
	p.GoalsShotInTournament = floorSub(p.GoalsShotInTournament, shot)
	p.GoalsReceivedInTournament = floorSub(p.GoalsReceivedInTournament, received)
}

func floorSub(v, d int) int {
	if v < d {
		return 0
	}
	return v - d
}

// rankPlayers returns copies of the players ordered by tournament win rate,
// then wins, then goal difference, then name.
func rankPlayers(players []*models.Player) []*models.Player {
	ranked := make([]*models.Player, len(players))
	for i, p := range players {
		ranked[i] = p.Clone()
	}
	slices.SortStableFunc(ranked, func(a, b *models.Player) int {
		if c := cmp.Compare(b.WinRateInTournament(), a.WinRateInTournament()); c != 0 {
			return c
		}
		if c := cmp.Compare(b.WonGamesInTournament, a.WonGamesInTournament); c != 0 {
			return c
		}
		if c := cmp.Compare(b.GoalDifferenceInTournament(), a.GoalDifferenceInTournament()); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return ranked
}

func playerNames(players []*models.Player) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.Name
	}
	return out
}

func cloneGames(games []*models.Game) []*models.Game {
	out := make([]*models.Game, len(games))
	for i, g := range games {
		out[i] = g.Clone()
	}
	return out
}

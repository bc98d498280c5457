package brackets

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/Dosada05/kicker-system/models"
)

const DefaultSpread = 200.0

// MonsterDypMatchmaker pairs the players with the fewest games. Teammates, and
// opponents in one-on-one, are drawn at random, weighted towards similar
// ratings and away from players already met.
type MonsterDypMatchmaker struct {
	rng    *rand.Rand
	spread float64
}

func NewMonsterDypMatchmaker(rng *rand.Rand, spread float64) *MonsterDypMatchmaker {
	if spread <= 0 {
		spread = DefaultSpread
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	return &MonsterDypMatchmaker{rng: rng, spread: spread}
}

func (m *MonsterDypMatchmaker) GetName() string {
	return string(models.ModeMonsterDYP)
}

func (m *MonsterDypMatchmaker) GenerateRound(players []*models.Player, oneOnOne bool, games []*models.Game) ([]*models.Game, error) {
	teamSize := teamSizeFor(oneOnOne)
	numGames := len(players) / (2 * teamSize)
	if numGames == 0 {
		return nil, fmt.Errorf("%w: round needs at least %d players, found %d", ErrNotEnoughPlayers, 2*teamSize, len(players))
	}
	return m.generate(players, teamSize, numGames, games)
}

func (m *MonsterDypMatchmaker) GenerateGame(players []*models.Player, oneOnOne bool, games []*models.Game) (*models.Game, error) {
	teamSize := teamSizeFor(oneOnOne)
	if len(players) < 2*teamSize {
		return nil, fmt.Errorf("%w: game needs %d players, found %d", ErrNotEnoughPlayers, 2*teamSize, len(players))
	}
	generated, err := m.generate(players, teamSize, 1, games)
	if err != nil {
		return nil, err
	}
	return generated[0], nil
}

func (m *MonsterDypMatchmaker) GenerateTeam(pool []*models.Player, teamSize int) ([]*models.Player, error) {
	if teamSize < 1 || len(pool) < teamSize {
		return nil, fmt.Errorf("%w: team of %d from %d players", ErrNotEnoughPlayers, teamSize, len(pool))
	}
	team, _, _ := m.formTeam(slices.Clone(pool), len(pool), teamSize, pairHistory{})
	return team, nil
}

func (m *MonsterDypMatchmaker) generate(players []*models.Player, teamSize, numGames int, games []*models.Game) ([]*models.Game, error) {
	remaining := SortForFairness(players)
	slots := numGames * 2 * teamSize
	history := newPairHistory(games)

	generated := make([]*models.Game, 0, numGames)
	for range numGames {
		var team1, team2 []*models.Player
		team1, remaining, slots = m.formTeam(remaining, slots, teamSize, history)
		if teamSize == 1 {
			team2, remaining, slots = m.drawOpponent(team1[0], remaining, slots, history)
		} else {
			team2, remaining, slots = m.formTeam(remaining, slots, teamSize, history)
		}

		game, err := models.NewGame(models.StageRegular, names(team1), names(team2))
		if err != nil {
			return nil, fmt.Errorf("failed to create game: %w", err)
		}
		generated = append(generated, game)
	}
	return generated, nil
}

// formTeam takes remaining[0] as anchor and draws teammates from the
// eligible prefix of remaining. slots is the number of players still to be
// consumed; restricting picks to eligiblePrefix(remaining, slots) keeps
// players with fewer games from being left out.
func (m *MonsterDypMatchmaker) formTeam(remaining []*models.Player, slots, teamSize int, history pairHistory) ([]*models.Player, []*models.Player, int) {
	anchor := remaining[0]
	team := []*models.Player{anchor}
	remaining = remaining[1:]
	slots--

	for len(team) < teamSize {
		var mate *models.Player
		mate, remaining, slots = m.draw(anchor, remaining, slots, history.partners)
		team = append(team, mate)
	}
	return team, remaining, slots
}

// drawOpponent picks the one-on-one opponent of anchor the same way
// teammates are picked, penalising earlier opponents instead of partners.
func (m *MonsterDypMatchmaker) drawOpponent(anchor *models.Player, remaining []*models.Player, slots int, history pairHistory) ([]*models.Player, []*models.Player, int) {
	opponent, remaining, slots := m.draw(anchor, remaining, slots, history.opponents)
	return []*models.Player{opponent}, remaining, slots
}

// draw removes one weighted pick from the eligible prefix of remaining.
func (m *MonsterDypMatchmaker) draw(anchor *models.Player, remaining []*models.Player, slots int, met map[pairKey]int) (*models.Player, []*models.Player, int) {
	candidates := remaining[:eligiblePrefix(remaining, slots)]
	idx := m.pickWeighted(anchor, candidates, met)
	picked := remaining[idx]
	return picked, slices.Delete(remaining, idx, idx+1), slots - 1
}

// pickWeighted samples a candidate index with a Gaussian weight over the
// rating difference to the anchor. Players the anchor already met get their
// weight divided by one plus the number of earlier meetings.
func (m *MonsterDypMatchmaker) pickWeighted(anchor *models.Player, candidates []*models.Player, met map[pairKey]int) int {
	weights := make([]float64, len(candidates))
	total := 0.0
	for i, c := range candidates {
		d := anchor.Rating - c.Rating
		w := math.Exp(-(d * d) / (2 * m.spread * m.spread))
		w /= float64(1 + met[newPairKey(anchor.Name, c.Name)])
		weights[i] = w
		total += w
	}
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return m.rng.IntN(len(candidates))
	}

	r := m.rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(candidates) - 1
}

// SortForFairness returns a copy ordered by tournament games played, then
// by name.
func SortForFairness(players []*models.Player) []*models.Player {
	sorted := slices.Clone(players)
	slices.SortStableFunc(sorted, func(a, b *models.Player) int {
		if c := cmp.Compare(a.PlayedGamesInTournament(), b.PlayedGamesInTournament()); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return sorted
}

// eligiblePrefix returns the length of the shortest prefix of sorted that
// holds at least `slots` players without splitting a group of players with
// equal games played.
func eligiblePrefix(sorted []*models.Player, slots int) int {
	if slots >= len(sorted) {
		return len(sorted)
	}
	if slots <= 0 {
		return 0
	}
	threshold := sorted[slots-1].PlayedGamesInTournament()
	n := slots
	for n < len(sorted) && sorted[n].PlayedGamesInTournament() == threshold {
		n++
	}
	return n
}

type pairKey struct{ a, b string }

func newPairKey(x, y string) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{x, y}
}

// pairHistory counts how often two players shared a team or faced each
// other in the games so far.
type pairHistory struct {
	partners  map[pairKey]int
	opponents map[pairKey]int
}

func newPairHistory(games []*models.Game) pairHistory {
	h := pairHistory{partners: make(map[pairKey]int), opponents: make(map[pairKey]int)}
	for _, g := range games {
		for _, team := range [][]string{g.Team1, g.Team2} {
			for i := 0; i < len(team); i++ {
				for j := i + 1; j < len(team); j++ {
					h.partners[newPairKey(team[i], team[j])]++
				}
			}
		}
		for _, x := range g.Team1 {
			for _, y := range g.Team2 {
				h.opponents[newPairKey(x, y)]++
			}
		}
	}
	return h
}

func names(players []*models.Player) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.Name
	}
	return out
}

package slot

import "math/rand/v2"

// drawWindow reads a visible window from the strip set picked by the phase's
// reel_weights. Multipliers are not assigned yet.
func (g *Game) drawWindow(r *rand.Rand, cond *conditions, phase string) (*Board, error) {
	w := cond.reels[phase]
	if w == nil {
		return nil, configErrorf("bucket has no reel_weights for %s", phase)
	}
	strips := g.strips[w.Pick(r)]
	b := &Board{
		Reels:  make([][]Symbol, g.numReels),
		Top:    make([]Symbol, g.numReels),
		Bottom: make([]Symbol, g.numReels),
		Stops:  make([]int, g.numReels),
	}
	for reel, strip := range strips {
		size := len(strip)
		rows := g.numRows[reel]
		stop := r.IntN(size)
		col := make([]Symbol, rows)
		for row := range rows {
			col[row] = strip[(stop+row)%size]
		}
		b.Reels[reel] = col
		b.Stops[reel] = stop
		if g.padding {
			b.Top[reel] = strip[(stop-1+size)%size]
			b.Bottom[reel] = strip[(stop+rows)%size]
		}
	}
	return b, nil
}

// assignMultipliers gives every multiplier-class symbol on the board a value from the
// phase's mult_values table.
func (g *Game) assignMultipliers(r *rand.Rand, cond *conditions, phase string, b *Board) error {
	if len(g.multSymbols) == 0 {
		return nil
	}
	var w *Weighted[int]
	for reel, col := range b.Reels {
		for row, s := range col {
			if !g.multSymbols[s.Name] {
				continue
			}
			if w == nil {
				if w = cond.mults[phase]; w == nil {
					return configErrorf("bucket has no mult_values for %s", phase)
				}
			}
			b.Reels[reel][row].Multiplier = w.Pick(r)
		}
	}
	return nil
}

// drawBaseBoard draws the base-game board of a round. A bucket forcing the feature fixes
// the scatter count first and redraws until the board shows exactly that many; any other
// bucket redraws until the board cannot trigger the feature.
func (g *Game) drawBaseBoard(r *rand.Rand, cond *conditions) (*Board, error) {
	trigger := g.triggers[BaseGame].min()
	accept := func(n int) bool { return n < trigger }
	target := -1
	if cond.forceFreegame {
		target = cond.scatterTriggers.Pick(r)
		accept = func(n int) bool { return n == target }
	}
	for range g.limits.MaxBoardDraws {
		b, err := g.drawWindow(r, cond, BaseGame)
		if err != nil {
			return nil, err
		}
		if !accept(len(b.scatters())) {
			continue
		}
		if err := g.assignMultipliers(r, cond, BaseGame, b); err != nil {
			return nil, err
		}
		return b, nil
	}
	if target >= 0 {
		return nil, calibrationErrorf("no base board with %d scatters after %d draws", target, g.limits.MaxBoardDraws)
	}
	return nil, calibrationErrorf("no base board below %d scatters after %d draws", trigger, g.limits.MaxBoardDraws)
}

// drawFreeBoard draws one bonus spin board.
func (g *Game) drawFreeBoard(r *rand.Rand, cond *conditions) (*Board, error) {
	b, err := g.drawWindow(r, cond, FreeGame)
	if err != nil {
		return nil, err
	}
	if err := g.assignMultipliers(r, cond, FreeGame, b); err != nil {
		return nil, err
	}
	return b, nil
}

// anticipation marks the reels still to stop once the scatters already shown are one
// short of a trigger. Marked reels count up from 1.
func (g *Game) anticipation(b *Board, phase string) []int {
	out := make([]int, g.numReels)
	t, ok := g.triggers[phase]
	if !ok {
		return out
	}
	need := t.min() - 1
	seen, next := 0, 1
	for reel, col := range b.Reels {
		if need > 0 && seen >= need {
			out[reel] = next
			next++
		}
		for _, s := range col {
			if s.Scatter {
				seen++
			}
		}
	}
	return out
}

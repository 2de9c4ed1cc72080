package slot

import (
	"math/rand/v2"
	"slices"
)

// wildSymbol returns a fresh wild carrying mult when the wild is multiplier-class.
func (g *Game) wildSymbol(mult int) Symbol {
	s := g.symbol(g.wildName)
	if g.multSymbols[g.wildName] {
		s.Multiplier = mult
	}
	return s
}

// eligible returns the cells a wild may be placed on: reels listed in wild_reels, holding
// a plain symbol, not held by a sticky wild.
func (g *Game) eligible(b *Board, sticky []StickyWild) []Position {
	held := make(map[Position]bool, len(sticky))
	for _, w := range sticky {
		held[w.pos()] = true
	}
	var out []Position
	for reel, col := range b.Reels {
		if !g.wildReels[reel] {
			continue
		}
		for row, s := range col {
			p := Position{Reel: reel, Row: row}
			if s.plain() && !held[p] {
				out = append(out, p)
			}
		}
	}
	return out
}

// pickPositions draws up to n distinct cells uniformly.
func pickPositions(r *rand.Rand, cells []Position, n int) []Position {
	cells = slices.Clone(cells)
	n = min(n, len(cells))
	for i := range n {
		j := i + r.IntN(len(cells)-i)
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells[:n]
}

// drawMultiplier draws a wild multiplier for phase, 0 when wilds carry none.
func (g *Game) drawMultiplier(r *rand.Rand, cond *conditions, phase string) (int, error) {
	if !g.multSymbols[g.wildName] {
		return 0, nil
	}
	w := cond.mults[phase]
	if w == nil {
		return 0, configErrorf("bucket has no mult_values for %s", phase)
	}
	return w.Pick(r), nil
}

// replaceWilds swaps every wild on b for a replacement symbol.
func (g *Game) replaceWilds(r *rand.Rand, b *Board) {
	for _, p := range b.wilds() {
		b.set(p, g.symbol(g.replacements.Pick(r)))
	}
}

// stampSticky writes the held sticky wilds onto b.
func (g *Game) stampSticky(b *Board, sticky []StickyWild) {
	for _, w := range sticky {
		b.set(w.pos(), g.wildSymbol(w.Multiplier))
	}
}

// stampTriggers lands extra overlay trigger symbols on plain cells.
func (g *Game) stampTriggers(r *rand.Rand, cond *conditions, b *Board) []Position {
	if cond.landingTrigger == nil || g.overlay == nil {
		return nil
	}
	n := cond.landingTrigger.Pick(r)
	if n == 0 {
		return nil
	}
	cells := pickPositions(r, b.positions(Symbol.plain), n)
	for _, p := range cells {
		b.set(p, g.symbol(g.overlay.symbol))
	}
	return cells
}

// placeSticky lands new sticky wilds on b and returns the extended sticky set together
// with the wilds just added.
func (g *Game) placeSticky(r *rand.Rand, cond *conditions, b *Board, sticky []StickyWild) ([]StickyWild, []StickyWild, error) {
	if cond.landingWilds == nil {
		return nil, nil, configErrorf("bucket has no landing_wilds")
	}
	n := cond.landingWilds.Pick(r)
	if n == 0 {
		return sticky, nil, nil
	}
	cells := pickPositions(r, g.eligible(b, sticky), n)
	added := make([]StickyWild, 0, len(cells))
	for _, p := range cells {
		mult, err := g.drawMultiplier(r, cond, FreeGame)
		if err != nil {
			return nil, nil, err
		}
		w := StickyWild{Reel: p.Reel, Row: p.Row, Multiplier: mult}
		b.set(p, g.wildSymbol(mult))
		added = append(added, w)
	}
	out := make([]StickyWild, 0, len(sticky)+len(added))
	out = append(out, sticky...)
	out = append(out, added...)
	return out, added, nil
}

// overlayOutcome is what one special overlay did to the board.
type overlayOutcome struct {
	flipped   []StickyWild
	increases []WildIncrease
}

// triggered reports whether the overlay fires on b and where its trigger symbols sit.
func (g *Game) triggered(b *Board) ([]Position, bool) {
	if g.overlay == nil {
		return nil, false
	}
	cells := b.positions(func(s Symbol) bool { return s.Name == g.overlay.symbol })
	return cells, len(cells) >= g.overlay.threshold
}

// applyOverlay flips plain cells to wilds and then grows the multiplier of every wild on
// the board. Draws repeat until at least one of the two steps changes something. Sticky
// wilds keep their increases; the updated sticky set is returned.
func (g *Game) applyOverlay(r *rand.Rand, cond *conditions, b *Board, sticky []StickyWild) (overlayOutcome, []StickyWild, error) {
	o := g.overlay
	wilds := b.wilds()
	flip, ok := o.flip[len(wilds)]
	if !ok {
		return overlayOutcome{}, nil, configErrorf("special_overlay.wild_flip has no table for %d wilds", len(wilds))
	}
	eligible := g.eligible(b, sticky)
	if len(wilds) == 0 && len(eligible) == 0 {
		return overlayOutcome{}, nil, calibrationErrorf("special overlay has no wild and no free cell")
	}

	var (
		flips []Position
		incs  []int
	)
	for attempt := 0; ; attempt++ {
		if attempt == g.limits.MaxOverlayDraws {
			return overlayOutcome{}, nil, calibrationErrorf("special overlay was a no-op for %d draws", attempt)
		}
		flips = pickPositions(r, eligible, flip.Pick(r))
		incs = make([]int, len(wilds)+len(flips))
		effect := len(flips) > 0
		for i := range incs {
			incs[i] = o.increase.Pick(r)
			effect = effect || incs[i] > 0
		}
		if effect {
			break
		}
	}

	var out overlayOutcome
	for _, p := range flips {
		mult, err := g.drawMultiplier(r, cond, FreeGame)
		if err != nil {
			return overlayOutcome{}, nil, err
		}
		b.set(p, g.wildSymbol(mult))
		out.flipped = append(out.flipped, StickyWild{Reel: p.Reel, Row: p.Row, Multiplier: mult})
	}

	next := slices.Clone(sticky)
	index := make(map[Position]int, len(next))
	for i, w := range next {
		index[w.pos()] = i
	}
	for i, p := range append(slices.Clone(wilds), flips...) {
		if incs[i] == 0 {
			continue
		}
		s := b.at(p)
		s.Multiplier += incs[i]
		b.set(p, s)
		if j, ok := index[p]; ok {
			next[j].Multiplier = s.Multiplier
		}
		out.increases = append(out.increases, WildIncrease{
			Reel:       p.Reel,
			Row:        p.Row,
			Increase:   incs[i],
			Multiplier: s.Multiplier,
		})
	}
	return out, next, nil
}

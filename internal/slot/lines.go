package slot

import "github.com/shopspring/decimal"

// evaluateLines scores every payline of b. globalMult scales each line win.
func (g *Game) evaluateLines(b *Board, globalMult int) WinData {
	wd := WinData{TotalWin: decimal.Zero}
	for i, line := range g.paylines {
		lw, ok := g.evaluateLine(b, i+1, line, globalMult)
		if !ok {
			continue
		}
		wd.Wins = append(wd.Wins, lw)
		wd.TotalWin = wd.TotalWin.Add(lw.Win)
	}
	return wd
}

// evaluateLine scans one payline from the leftmost reel. Wilds substitute for the first
// plain symbol; a line opening with wilds is also priced as a pure wild run and the
// better of the two pays.
func (g *Game) evaluateLine(b *Board, idx int, line []int, globalMult int) (LineWin, bool) {
	cells := make([]Symbol, len(line))
	for reel, row := range line {
		cells[reel] = b.Reels[reel][row]
	}

	wildRun := 0
	for wildRun < len(cells) && cells[wildRun].Wild {
		wildRun++
	}

	var best LineWin
	found := false
	consider := func(name string, kind int) {
		pay, ok := g.pays[payKey{kind: kind, name: name}]
		if !ok || kind == 0 {
			return
		}
		mult := runMultiplier(cells[:kind])
		win := pay.Mul(decimal.NewFromInt(int64(mult * globalMult)))
		if found && !win.GreaterThan(best.Win) {
			return
		}
		best = LineWin{
			Line:       idx,
			Symbol:     name,
			Kind:       kind,
			Pay:        pay,
			Multiplier: mult,
			GlobalMult: globalMult,
			Win:        win,
			Positions:  linePositions(line[:kind]),
		}
		found = true
	}

	if wildRun < len(cells) && cells[wildRun].plain() {
		base := cells[wildRun].Name
		kind := wildRun + 1
		for kind < len(cells) && (cells[kind].Wild || cells[kind].Name == base) {
			kind++
		}
		consider(base, kind)
	}
	if wildRun > 0 {
		consider(cells[0].Name, wildRun)
	}
	if !found || !best.Win.IsPositive() {
		return LineWin{}, false
	}
	return best, true
}

// runMultiplier sums the multipliers of the wilds in a run, 1 when none carries one.
func runMultiplier(run []Symbol) int {
	m := 0
	for _, s := range run {
		if s.Wild {
			m += s.Multiplier
		}
	}
	if m == 0 {
		return 1
	}
	return m
}

func linePositions(rows []int) []Position {
	out := make([]Position, len(rows))
	for reel, row := range rows {
		out[reel] = Position{Reel: reel, Row: row}
	}
	return out
}

// winManager keeps the running totals of a round and clips them at the win cap. Once the
// cap is reached no further win is credited.
type winManager struct {
	wincap decimal.Decimal

	total    decimal.Decimal
	baseWins decimal.Decimal
	freeWins decimal.Decimal
	capped   bool
}

func newWinManager(wincap decimal.Decimal) *winManager {
	return &winManager{
		wincap:   wincap,
		total:    decimal.Zero,
		baseWins: decimal.Zero,
		freeWins: decimal.Zero,
	}
}

// credit adds win to the phase and returns the amount actually credited after clipping.
func (m *winManager) credit(phase string, win decimal.Decimal) decimal.Decimal {
	if m.capped || !win.IsPositive() {
		return decimal.Zero
	}
	if next := m.total.Add(win); next.GreaterThanOrEqual(m.wincap) {
		win = m.wincap.Sub(m.total)
		m.capped = true
	}
	m.total = m.total.Add(win)
	if phase == FreeGame {
		m.freeWins = m.freeWins.Add(win)
	} else {
		m.baseWins = m.baseWins.Add(win)
	}
	return win
}

package slot

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEvaluateLines(t *testing.T) {
	g := miniGame(t)
	wild := func(b *Board, reel, row, mult int) {
		b.Reels[reel][row] = g.wildSymbol(mult)
	}

	tests := []struct {
		name  string
		board func() *Board
		want  []string // expected win per payline, "" for no win
	}{
		{
			name: "plain lines",
			board: func() *Board {
				return boardOf(g,
					[]string{"A", "A", "A"},
					[]string{"B", "B", "C"},
					[]string{"C", "C", "C"},
				)
			},
			want: []string{"1", "", "0.5"},
		},
		{
			name: "wild multiplier applies to the run",
			board: func() *Board {
				b := boardOf(g,
					[]string{"B", "A", "B"},
					[]string{"A", "A", "A"},
					[]string{"S", "A", "S"},
				)
				wild(b, 1, 0, 3)
				return b
			},
			want: []string{"6", "1", ""},
		},
		{
			name: "leading wilds priced as wild run",
			board: func() *Board {
				b := boardOf(g,
					[]string{"A", "A", "C"},
					[]string{"A", "A", "A"},
					[]string{"A", "A", "A"},
				)
				wild(b, 0, 0, 2)
				wild(b, 1, 0, 2)
				wild(b, 2, 0, 2)
				return b
			},
			// wild run pays 5 x (2+2+2)
			want: []string{"30", "1", "1"},
		},
		{
			name: "scatter and trigger never pay",
			board: func() *Board {
				return boardOf(g,
					[]string{"S", "S", "S"},
					[]string{"KM", "KM", "KM"},
					[]string{"A", "B", "A"},
				)
			},
			want: []string{"", "", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wd := g.evaluateLines(tt.board(), 1)
			got := make([]string, len(g.paylines))
			sum := decimal.Zero
			for _, w := range wd.Wins {
				got[w.Line-1] = w.Win.String()
				sum = sum.Add(w.Win)
				if len(w.Positions) != w.Kind {
					t.Errorf("line %d: %d positions for kind %d", w.Line, len(w.Positions), w.Kind)
				}
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("line %d win = %q, want %q", i+1, got[i], tt.want[i])
				}
			}
			if !sum.Equal(wd.TotalWin) {
				t.Errorf("sum of line wins %s != total %s", sum, wd.TotalWin)
			}
		})
	}
}

func TestEvaluateLinesGlobalMultiplier(t *testing.T) {
	g := miniGame(t)
	b := boardOf(g,
		[]string{"B", "B", "B"},
		[]string{"A", "C", "A"},
		[]string{"C", "A", "C"},
	)
	wd := g.evaluateLines(b, 3)
	if !wd.TotalWin.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("total = %s, want 6", wd.TotalWin)
	}
	if wd.Wins[0].GlobalMult != 3 || wd.Wins[0].Multiplier != 1 {
		t.Errorf("meta = %+v", wd.Wins[0])
	}
}

func TestWinManagerClipsAtCap(t *testing.T) {
	m := newWinManager(decimal.NewFromInt(50))
	if got := m.credit(BaseGame, decimal.NewFromInt(20)); !got.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("credited %s", got)
	}
	if got := m.credit(FreeGame, decimal.NewFromInt(40)); !got.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("credited %s, want 30", got)
	}
	if !m.capped {
		t.Fatal("cap not flagged")
	}
	if got := m.credit(FreeGame, decimal.NewFromInt(5)); !got.IsZero() {
		t.Fatalf("credited %s after cap", got)
	}
	if !m.total.Equal(decimal.NewFromInt(50)) || !m.baseWins.Equal(decimal.NewFromInt(20)) || !m.freeWins.Equal(decimal.NewFromInt(30)) {
		t.Errorf("totals = %s/%s/%s", m.total, m.baseWins, m.freeWins)
	}
}

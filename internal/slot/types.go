package slot

import "github.com/shopspring/decimal"

// Symbol is one board cell. Multiplier is 0 when the symbol carries no multiplier.
type Symbol struct {
	Name       string `json:"name"`
	Wild       bool   `json:"wild,omitempty"`
	Scatter    bool   `json:"scatter,omitempty"`
	Trigger    bool   `json:"trigger,omitempty"`
	Multiplier int    `json:"multiplier,omitempty"`
}

// plain reports whether the symbol is neither wild nor special.
func (s Symbol) plain() bool { return !s.Wild && !s.Scatter && !s.Trigger }

// Position addresses a board cell.
type Position struct {
	Reel int `json:"reel"`
	Row  int `json:"row"`
}

// Board is the visible window indexed [reel][row], plus the padding cells directly above
// and below each reel and the stop positions the window was read from.
type Board struct {
	Reels  [][]Symbol
	Top    []Symbol
	Bottom []Symbol
	Stops  []int
}

func (b *Board) at(p Position) Symbol { return b.Reels[p.Reel][p.Row] }

func (b *Board) set(p Position, s Symbol) { b.Reels[p.Reel][p.Row] = s }

// positions returns the cells holding a symbol matching fn, reel by reel.
func (b *Board) positions(fn func(Symbol) bool) []Position {
	var out []Position
	for reel, syms := range b.Reels {
		for row, s := range syms {
			if fn(s) {
				out = append(out, Position{Reel: reel, Row: row})
			}
		}
	}
	return out
}

func (b *Board) scatters() []Position {
	return b.positions(func(s Symbol) bool { return s.Scatter })
}

func (b *Board) wilds() []Position {
	return b.positions(func(s Symbol) bool { return s.Wild })
}

// StickyWild is a wild held on the board for the rest of a bonus round.
type StickyWild struct {
	Reel       int `json:"reel"`
	Row        int `json:"row"`
	Multiplier int `json:"multiplier"`
}

func (w StickyWild) pos() Position { return Position{Reel: w.Reel, Row: w.Row} }

// LineWin is the detail of one paying line.
type LineWin struct {
	Line       int
	Symbol     string
	Kind       int
	Pay        decimal.Decimal // paytable value
	Multiplier int             // combined wild multiplier of the run, 1 without wilds
	GlobalMult int
	Win        decimal.Decimal
	Positions  []Position
}

// WinData is the result of evaluating one board.
type WinData struct {
	TotalWin decimal.Decimal
	Wins     []LineWin
}

// Book is an accepted round: the event stream and its final payout.
type Book struct {
	ID               int             `json:"id"`
	Criteria         string          `json:"criteria"`
	PayoutMultiplier int64           `json:"payoutMultiplier"`
	BaseGameWins     decimal.Decimal `json:"baseGameWins"`
	FreeGameWins     decimal.Decimal `json:"freeGameWins"`
	Events           []Event         `json:"events"`

	// Attempts is the number of whole rounds played for this index, the accepted one included.
	Attempts int `json:"-"`
	// FinalWin is the payout in bet multiples.
	FinalWin decimal.Decimal `json:"-"`
	// WincapHit reports that the round was clipped at the win cap.
	WincapHit bool `json:"-"`
	// FreeSpins is the number of bonus spins played, retriggers included.
	FreeSpins int `json:"-"`
}

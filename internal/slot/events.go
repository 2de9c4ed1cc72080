package slot

import "github.com/shopspring/decimal"

// Event is one entry of a book's event stream. Every event serialises with an index and
// a type next to its payload.
type Event interface {
	header() *EventHeader
}

// EventHeader carries the fields shared by every event.
type EventHeader struct {
	Index int    `json:"index"`
	Type  string `json:"type"`
}

func (h *EventHeader) header() *EventHeader { return h }

// EventType returns the type tag of e.
func EventType(e Event) string { return e.header().Type }

type RevealEvent struct {
	EventHeader
	Board            [][]Symbol `json:"board"`
	PaddingPositions []int      `json:"paddingPositions"`
	GameType         string     `json:"gameType"`
	Anticipation     []int      `json:"anticipation"`
}

type WinInfoEvent struct {
	EventHeader
	TotalWin int64      `json:"totalWin"`
	Wins     []EventWin `json:"wins"`
}

// EventWin is the client shape of one line win.
type EventWin struct {
	Symbol    string     `json:"symbol"`
	Kind      int        `json:"kind"`
	Win       int64      `json:"win"`
	Positions []Position `json:"positions"`
	Meta      WinMeta    `json:"meta"`
}

type WinMeta struct {
	LineIndex      int   `json:"lineIndex"`
	Multiplier     int   `json:"multiplier"`
	WinWithoutMult int64 `json:"winWithoutMult"`
	GlobalMult     int   `json:"globalMult"`
}

type SetWinEvent struct {
	EventHeader
	Amount   int64 `json:"amount"`
	WinLevel int   `json:"winLevel"`
}

type SetTotalWinEvent struct {
	EventHeader
	Amount int64 `json:"amount"`
}

type FreeSpinTriggerEvent struct {
	EventHeader
	TotalFs   int        `json:"totalFs"`
	Positions []Position `json:"positions"`
}

type UpdateFreeSpinEvent struct {
	EventHeader
	Amount int `json:"amount"`
	Total  int `json:"total"`
}

type FreeSpinRetriggerEvent struct {
	EventHeader
	TotalFs   int        `json:"totalFs"`
	Positions []Position `json:"positions"`
}

type NewStickySymbolsEvent struct {
	EventHeader
	Symbols []StickyWild `json:"symbols"`
}

type SpecialTriggerEvent struct {
	EventHeader
	Symbol    string     `json:"symbol"`
	Positions []Position `json:"positions"`
}

type FlipWildsEvent struct {
	EventHeader
	Wilds []StickyWild `json:"wilds"`
}

type IncreaseWildMultiplierEvent struct {
	EventHeader
	Wilds []WildIncrease `json:"wilds"`
}

// WildIncrease records one wild whose multiplier grew.
type WildIncrease struct {
	Reel       int `json:"reel"`
	Row        int `json:"row"`
	Increase   int `json:"increase"`
	Multiplier int `json:"multiplier"`
}

type FreeSpinEndEvent struct {
	EventHeader
	Amount   int64 `json:"amount"`
	WinLevel int   `json:"winLevel"`
}

type WincapEvent struct {
	EventHeader
	Amount int64 `json:"amount"`
}

type FinalWinEvent struct {
	EventHeader
	Amount int64 `json:"amount"`
}

// winLevels are the bet-multiple thresholds of the client's celebration tiers.
var winLevels = []float64{0.1, 1, 2, 5, 15, 30, 50, 100, 500}

func winLevel(win decimal.Decimal) int {
	f := win.InexactFloat64()
	if f <= 0 {
		return 0
	}
	lvl := 1
	for i, t := range winLevels {
		if f >= t {
			lvl = i + 1
		}
	}
	return lvl
}

// eventAmount converts a bet multiple to integer hundredths.
func eventAmount(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(_eventAmountScale)).Round(0).IntPart()
}

// recorder appends events to a round's book, numbering them and shifting rows past the
// top padding cell.
type recorder struct {
	padding bool
	events  []Event
}

func (r *recorder) add(typ string, e Event) {
	h := e.header()
	h.Index = len(r.events)
	h.Type = typ
	r.events = append(r.events, e)
}

func (r *recorder) row(row int) int {
	if r.padding {
		return row + 1
	}
	return row
}

func (r *recorder) positions(ps []Position) []Position {
	out := make([]Position, len(ps))
	for i, p := range ps {
		out[i] = Position{Reel: p.Reel, Row: r.row(p.Row)}
	}
	return out
}

func (r *recorder) wilds(ws []StickyWild) []StickyWild {
	out := make([]StickyWild, len(ws))
	for i, w := range ws {
		out[i] = StickyWild{Reel: w.Reel, Row: r.row(w.Row), Multiplier: w.Multiplier}
	}
	return out
}

func (r *recorder) increases(ws []WildIncrease) []WildIncrease {
	out := make([]WildIncrease, len(ws))
	for i, w := range ws {
		w.Row = r.row(w.Row)
		out[i] = w
	}
	return out
}

func (r *recorder) reveal(b *Board, gameType string, anticipation []int) {
	board := make([][]Symbol, len(b.Reels))
	for i, reel := range b.Reels {
		if r.padding {
			board[i] = make([]Symbol, 0, len(reel)+2)
			board[i] = append(board[i], b.Top[i])
			board[i] = append(board[i], reel...)
			board[i] = append(board[i], b.Bottom[i])
			continue
		}
		board[i] = append([]Symbol(nil), reel...)
	}
	r.add(EventReveal, &RevealEvent{
		Board:            board,
		PaddingPositions: append([]int(nil), b.Stops...),
		GameType:         gameType,
		Anticipation:     anticipation,
	})
}

func (r *recorder) winInfo(wd WinData) {
	if wd.TotalWin.IsZero() {
		return
	}
	wins := make([]EventWin, len(wd.Wins))
	for i, w := range wd.Wins {
		wins[i] = EventWin{
			Symbol:    w.Symbol,
			Kind:      w.Kind,
			Win:       eventAmount(w.Win),
			Positions: r.positions(w.Positions),
			Meta: WinMeta{
				LineIndex:      w.Line,
				Multiplier:     w.Multiplier,
				WinWithoutMult: eventAmount(w.Pay),
				GlobalMult:     w.GlobalMult,
			},
		}
	}
	r.add(EventWinInfo, &WinInfoEvent{TotalWin: eventAmount(wd.TotalWin), Wins: wins})
}

func (r *recorder) setWin(win decimal.Decimal) {
	if win.IsZero() {
		return
	}
	r.add(EventSetWin, &SetWinEvent{Amount: eventAmount(win), WinLevel: winLevel(win)})
}

func (r *recorder) setTotalWin(total decimal.Decimal) {
	r.add(EventSetTotalWin, &SetTotalWinEvent{Amount: eventAmount(total)})
}

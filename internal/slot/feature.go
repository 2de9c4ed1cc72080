package slot

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// bonus sequence states
const (
	stateIdle      = "idle"
	stateSpinning  = "spinning"
	stateOverlay   = "special_overlay"
	stateEvaluated = "evaluated"
	stateRetrigger = "retrigger_check"
	stateTerminal  = "terminal"
)

// bonus sequence transitions
const (
	eventSpin     = "spin"
	eventOverlay  = "overlay"
	eventEvaluate = "evaluate"
	eventCheck    = "check"
	eventFinish   = "finish"
)

func (rd *round) newFeatureFSM() *fsm.FSM {
	return fsm.NewFSM(
		stateIdle,
		fsm.Events{
			{Name: eventSpin, Src: []string{stateIdle, stateRetrigger}, Dst: stateSpinning},
			{Name: eventOverlay, Src: []string{stateSpinning}, Dst: stateOverlay},
			{Name: eventEvaluate, Src: []string{stateSpinning, stateOverlay}, Dst: stateEvaluated},
			{Name: eventCheck, Src: []string{stateEvaluated}, Dst: stateRetrigger},
			{Name: eventFinish, Src: []string{stateRetrigger}, Dst: stateTerminal},
		},
		fsm.Callbacks{
			"enter_" + stateSpinning: func(_ context.Context, _ *fsm.Event) {
				rd.fs++
				rd.rec.add(EventUpdateFreeSpin, &UpdateFreeSpinEvent{Amount: rd.fs, Total: rd.totalFs})
			},
		},
	)
}

// runFreeSpins plays the bonus sequence until the spins run out or the cap is hit.
func (rd *round) runFreeSpins(scatters []Position, spins int) error {
	rd.phase = FreeGame
	rd.totalFs = spins
	rd.fs = 0
	rd.sticky = nil
	rd.rec.add(EventFreeSpinTrigger, &FreeSpinTriggerEvent{
		TotalFs:   spins,
		Positions: rd.rec.positions(scatters),
	})

	ctx := context.Background()
	machine := rd.newFeatureFSM()
	fire := func(event string) error {
		if err := machine.Event(ctx, event); err != nil {
			return configErrorf("bonus sequence %s from %s: %v", event, machine.Current(), err)
		}
		return nil
	}
	for {
		if err := fire(eventSpin); err != nil {
			return err
		}
		b, err := rd.freeSpin(fire)
		if err != nil {
			return err
		}
		if err := fire(eventCheck); err != nil {
			return err
		}
		rd.retrigger(b)
		if rd.fs >= rd.totalFs || rd.wins.capped {
			break
		}
	}
	if err := fire(eventFinish); err != nil {
		return err
	}
	rd.rec.add(EventFreeSpinEnd, &FreeSpinEndEvent{
		Amount:   eventAmount(rd.wins.freeWins),
		WinLevel: winLevel(rd.wins.freeWins),
	})
	rd.sticky = nil
	return nil
}

// freeSpin plays one bonus spin up to its evaluation.
func (rd *round) freeSpin(fire func(string) error) (*Board, error) {
	g := rd.g
	b, err := g.drawFreeBoard(rd.r, rd.cond)
	if err != nil {
		return nil, err
	}
	g.replaceWilds(rd.r, b)
	g.stampSticky(b, rd.sticky)
	g.stampTriggers(rd.r, rd.cond, b)
	rd.rec.reveal(b, FreeGame, g.anticipation(b, FreeGame))

	sticky, added, err := g.placeSticky(rd.r, rd.cond, b, rd.sticky)
	if err != nil {
		return nil, err
	}
	rd.sticky = sticky
	if len(added) > 0 {
		rd.rec.add(EventNewStickySymbols, &NewStickySymbolsEvent{Symbols: rd.rec.wilds(added)})
	}

	if err := rd.overlay(b, fire); err != nil {
		return nil, err
	}

	if err := fire(eventEvaluate); err != nil {
		return nil, err
	}
	rd.settle(g.evaluateLines(b, 1))
	return b, nil
}

// overlay runs the special overlay when b shows enough trigger symbols. An activation
// with no wild to grow and no cell to flip fails the round.
func (rd *round) overlay(b *Board, fire func(string) error) error {
	g := rd.g
	cells, ok := g.triggered(b)
	if !ok {
		return nil
	}
	if err := fire(eventOverlay); err != nil {
		return err
	}
	rd.rec.add(EventSpecialTrigger, &SpecialTriggerEvent{
		Symbol:    g.overlay.symbol,
		Positions: rd.rec.positions(cells),
	})
	out, sticky, err := g.applyOverlay(rd.r, rd.cond, b, rd.sticky)
	if err != nil {
		return fmt.Errorf("free spin %d: %w", rd.fs, err)
	}
	rd.sticky = sticky
	if len(out.flipped) > 0 {
		rd.rec.add(EventFlipWilds, &FlipWildsEvent{Wilds: rd.rec.wilds(out.flipped)})
	}
	if len(out.increases) > 0 {
		rd.rec.add(EventIncreaseWildMult, &IncreaseWildMultiplierEvent{Wilds: rd.rec.increases(out.increases)})
	}
	return nil
}

// retrigger adds spins when the board shows enough scatters for the free-game table.
func (rd *round) retrigger(b *Board) {
	t, ok := rd.g.triggers[FreeGame]
	if !ok || rd.wins.capped {
		return
	}
	scatters := b.scatters()
	spins, ok := t.award(len(scatters))
	if !ok {
		return
	}
	rd.totalFs += spins
	rd.rec.add(EventFreeSpinRetrigger, &FreeSpinRetriggerEvent{
		TotalFs:   rd.totalFs,
		Positions: rd.rec.positions(scatters),
	})
}

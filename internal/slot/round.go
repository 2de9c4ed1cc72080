package slot

import (
	"fmt"
	"math/rand/v2"
)

// Simulator plays classified rounds of one game. It holds no mutable state and may be
// shared by any number of goroutines.
type Simulator struct {
	game *Game
	seed uint64
}

// NewSimulator returns a simulator whose rounds are derived from seed.
func NewSimulator(game *Game, seed uint64) *Simulator {
	return &Simulator{game: game, seed: seed}
}

// Game returns the game the simulator plays.
func (s *Simulator) Game() *Game { return s.game }

// Run plays simulation index sim of a bet mode. The bucket is drawn from the mode's
// quotas on the index's own stream and stays fixed while rounds are rejected.
func (s *Simulator) Run(mode string, sim int) (*Book, error) {
	m, err := s.game.Mode(mode)
	if err != nil {
		return nil, err
	}
	r := NewRoundRand(s.seed, sim)
	return s.play(m, m.Buckets[m.selector.Pick(r)], r, sim)
}

// SelectBucket returns the bucket simulation index sim of m is played under for seed.
// It is the first draw of the index's stream.
func SelectBucket(m *BetMode, seed uint64, sim int) *Bucket {
	return m.Buckets[m.selector.Pick(NewRoundRand(seed, sim))]
}

// RunCriteria plays simulation index sim under the named bucket.
func (s *Simulator) RunCriteria(mode, criteria string, sim int) (*Book, error) {
	m, err := s.game.Mode(mode)
	if err != nil {
		return nil, err
	}
	b := m.Bucket(criteria)
	if b == nil {
		return nil, configErrorf("bet mode %s has no criteria %q", mode, criteria)
	}
	return s.play(m, b, NewRoundRand(s.seed, sim), sim)
}

// Bucket looks up a bucket by criteria.
func (m *BetMode) Bucket(criteria string) *Bucket {
	for _, b := range m.Buckets {
		if b.Criteria == criteria {
			return b
		}
	}
	return nil
}

// play replays whole rounds until one satisfies the bucket. A rejected round leaves
// nothing behind: every attempt starts from a fresh round state.
func (s *Simulator) play(m *BetMode, b *Bucket, r *rand.Rand, sim int) (*Book, error) {
	limit := s.game.limits.MaxRoundAttempts
	for attempt := 1; attempt <= limit; attempt++ {
		rd := newRound(s.game, b, r)
		if err := rd.play(); err != nil {
			return nil, fmt.Errorf("mode %s criteria %s sim %d: %w", m.Name, b.Criteria, sim, err)
		}
		if b.Accepts(rd.wins.total) {
			return rd.book(sim, attempt), nil
		}
	}
	return nil, calibrationErrorf("mode %s criteria %s sim %d: no accepted round after %d attempts",
		m.Name, b.Criteria, sim, limit)
}

// round is the state of one round attempt.
type round struct {
	g      *Game
	bucket *Bucket
	cond   *conditions
	r      *rand.Rand

	rec     recorder
	wins    *winManager
	phase   string
	sticky  []StickyWild
	fs      int
	totalFs int
}

func newRound(g *Game, b *Bucket, r *rand.Rand) *round {
	return &round{
		g:      g,
		bucket: b,
		cond:   b.cond,
		r:      r,
		rec:    recorder{padding: g.padding},
		wins:   newWinManager(g.wincap),
		phase:  BaseGame,
	}
}

func (rd *round) play() error {
	b, err := rd.g.drawBaseBoard(rd.r, rd.cond)
	if err != nil {
		return err
	}
	rd.rec.reveal(b, BaseGame, rd.g.anticipation(b, BaseGame))
	rd.settle(rd.g.evaluateLines(b, 1))

	scatters := b.scatters()
	if spins, ok := rd.g.triggers[BaseGame].award(len(scatters)); ok && !rd.wins.capped {
		if err := rd.runFreeSpins(scatters, spins); err != nil {
			return err
		}
	}
	rd.rec.add(EventFinalWin, &FinalWinEvent{Amount: eventAmount(rd.wins.total)})
	return nil
}

// settle records one spin's line wins and credits them against the cap.
func (rd *round) settle(wd WinData) {
	rd.rec.winInfo(wd)
	wasCapped := rd.wins.capped
	credited := rd.wins.credit(rd.phase, wd.TotalWin)
	rd.rec.setWin(credited)
	if rd.wins.capped && !wasCapped {
		rd.rec.add(EventWincap, &WincapEvent{Amount: eventAmount(rd.wins.total)})
	}
	rd.rec.setTotalWin(rd.wins.total)
}

func (rd *round) book(sim, attempts int) *Book {
	return &Book{
		ID:               sim + 1,
		Criteria:         rd.bucket.Criteria,
		PayoutMultiplier: eventAmount(rd.wins.total),
		BaseGameWins:     rd.wins.baseWins.Round(2),
		FreeGameWins:     rd.wins.freeWins.Round(2),
		Events:           rd.rec.events,
		Attempts:         attempts,
		FinalWin:         rd.wins.total,
		WincapHit:        rd.wins.capped,
		FreeSpins:        rd.totalFs,
	}
}

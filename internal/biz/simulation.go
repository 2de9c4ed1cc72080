package biz

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"slices"
	"sync"
	"time"

	"slotsim/internal/conf"
	"slotsim/internal/slot"

	"github.com/google/uuid"
	"github.com/yola1107/kratos/v2/errors"
	"github.com/yola1107/kratos/v2/log"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidPass  = errors.BadRequest("INVALID_PASS", "invalid simulation pass")
	ErrPassNotFound = errors.NotFound("PASS_NOT_FOUND", "simulation pass not found")
)

const (
	_defaultBatchSize  = 1000
	_defaultMaxRounds  = 10_000_000
	_defaultKeepPasses = 64
)

// PassRequest asks for Rounds simulation indices of one bet mode.
type PassRequest struct {
	Mode   string `json:"mode"`
	Rounds int    `json:"rounds"`
	Seed   uint64 `json:"seed,omitempty"` // 0 keeps the configured seed
	Exact  *bool  `json:"exact,omitempty"`
}

// Pass is a finished simulation pass.
type Pass struct {
	ID       string          `json:"id"`
	Mode     string          `json:"mode"`
	Seed     uint64          `json:"seed"`
	Rounds   int             `json:"rounds"`
	Exact    bool            `json:"exact"`
	Started  time.Time       `json:"started"`
	Finished time.Time       `json:"finished"`
	Stats    *slot.PassStats `json:"stats"`
}

// BookRepo receives the accepted books of a pass.
type BookRepo interface {
	SaveBooks(ctx context.Context, passID, mode string, books []*slot.Book) error
}

// CalibrationRepo stores pass statistics for the optimizer and hands back its updates.
type CalibrationRepo interface {
	SaveStats(ctx context.Context, passID string, stats *slot.PassStats) error
	// TakeUpdate returns the pending update for mode and removes it. nil without one.
	TakeUpdate(ctx context.Context, mode string) (*slot.CalibrationUpdate, error)
}

// SimulationUsecase runs simulation passes over the current game definition.
type SimulationUsecase struct {
	c     *conf.Simulation
	books BookRepo
	calib CalibrationRepo
	log   *log.Helper

	mu     sync.RWMutex
	game   *slot.Game
	passes map[string]*Pass
	order  []string // pass ids, oldest first
}

func NewSimulationUsecase(c *conf.Simulation, game *slot.Game, books BookRepo, calib CalibrationRepo, logger log.Logger) *SimulationUsecase {
	return &SimulationUsecase{
		c:      c,
		books:  books,
		calib:  calib,
		log:    log.NewHelper(logger),
		game:   game,
		passes: make(map[string]*Pass),
	}
}

// Game returns the definition the next pass will play.
func (uc *SimulationUsecase) Game() *slot.Game {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.game
}

// RunPass plays a pass, hands its books to the book repo and its statistics to the
// calibration repo.
func (uc *SimulationUsecase) RunPass(ctx context.Context, req *PassRequest) (*Pass, error) {
	if req.Rounds <= 0 {
		return nil, ErrInvalidPass.WithCause(fmt.Errorf("rounds = %d, must be positive", req.Rounds))
	}
	if req.Rounds > uc.maxRounds() {
		return nil, ErrInvalidPass.WithCause(fmt.Errorf("rounds = %d, limit is %d", req.Rounds, uc.maxRounds()))
	}
	game, err := uc.calibrate(ctx, req.Mode)
	if err != nil {
		return nil, err
	}
	m, err := game.Mode(req.Mode)
	if err != nil {
		return nil, err
	}

	pass := &Pass{
		ID:      uuid.NewString(),
		Mode:    m.Name,
		Seed:    req.Seed,
		Rounds:  req.Rounds,
		Exact:   uc.c.ExactQuotas,
		Started: time.Now(),
	}
	if pass.Seed == 0 {
		pass.Seed = uc.c.Seed
	}
	if req.Exact != nil {
		pass.Exact = *req.Exact
	}
	uc.log.WithContext(ctx).Infof("pass %s: mode=%s rounds=%d seed=%d exact=%v",
		pass.ID, pass.Mode, pass.Rounds, pass.Seed, pass.Exact)

	books, err := uc.play(ctx, slot.NewSimulator(game, pass.Seed), m, pass)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("pass %s failed: %v", pass.ID, err)
		return nil, err
	}

	c := slot.NewCollector(m)
	for _, b := range books {
		c.Add(b)
	}
	pass.Stats = c.Stats()

	for lo := 0; lo < len(books); lo += uc.batchSize() {
		hi := min(lo+uc.batchSize(), len(books))
		if err := uc.books.SaveBooks(ctx, pass.ID, pass.Mode, books[lo:hi]); err != nil {
			return nil, err
		}
	}
	if err := uc.calib.SaveStats(ctx, pass.ID, pass.Stats); err != nil {
		return nil, err
	}
	pass.Finished = time.Now()

	uc.keep(pass)

	uc.log.WithContext(ctx).Infof("pass %s done in %s: rtp=%.4f wincaps=%d attempts=%d",
		pass.ID, pass.Finished.Sub(pass.Started), pass.Stats.RTP, pass.Stats.Wincaps, pass.Stats.Attempts)
	return pass, nil
}

// Pass returns a finished pass by ID.
func (uc *SimulationUsecase) Pass(id string) (*Pass, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	p, ok := uc.passes[id]
	if !ok {
		return nil, ErrPassNotFound
	}
	return p, nil
}

// keep records pass for lookup, evicting the oldest passes past the retention limit.
func (uc *SimulationUsecase) keep(pass *Pass) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.passes[pass.ID] = pass
	uc.order = append(uc.order, pass.ID)
	for len(uc.order) > uc.keepPasses() {
		delete(uc.passes, uc.order[0])
		uc.order = uc.order[1:]
	}
}

// play fans the pass's indices out over the worker pool. Books land by index, so the
// result does not depend on completion order.
func (uc *SimulationUsecase) play(ctx context.Context, sim *slot.Simulator, m *slot.BetMode, pass *Pass) ([]*slot.Book, error) {
	var assign []string
	if pass.Exact {
		assign = ExactAssignment(m, pass.Rounds, pass.Seed)
	}

	books := make([]*slot.Book, pass.Rounds)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers())
	for i := range pass.Rounds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var (
				b   *slot.Book
				err error
			)
			if assign != nil {
				b, err = sim.RunCriteria(m.Name, assign[i], i)
			} else {
				b, err = sim.Run(m.Name, i)
			}
			if err != nil {
				return err
			}
			books[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return books, nil
}

// calibrate swaps in the optimizer's pending update for mode, if there is one.
func (uc *SimulationUsecase) calibrate(ctx context.Context, mode string) (*slot.Game, error) {
	if !uc.c.Calibrate {
		return uc.Game(), nil
	}
	u, err := uc.calib.TakeUpdate(ctx, mode)
	if err != nil {
		return nil, err
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if u == nil {
		return uc.game, nil
	}
	next, err := uc.game.ApplyCalibration(u)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("rejected calibration update for %s: %v", mode, err)
		return nil, err
	}
	uc.log.WithContext(ctx).Infof("applied calibration update for %s: %d quotas, %d reel weight sets",
		mode, len(u.Quotas), len(u.ReelWeights))
	uc.game = next
	return next, nil
}

func (uc *SimulationUsecase) workers() int {
	if uc.c.Workers > 0 {
		return uc.c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (uc *SimulationUsecase) maxRounds() int {
	if uc.c.MaxRounds > 0 {
		return uc.c.MaxRounds
	}
	return _defaultMaxRounds
}

func (uc *SimulationUsecase) keepPasses() int {
	if uc.c.KeepPasses > 0 {
		return uc.c.KeepPasses
	}
	return _defaultKeepPasses
}

func (uc *SimulationUsecase) batchSize() int {
	if uc.c.BatchSize > 0 {
		return uc.c.BatchSize
	}
	return _defaultBatchSize
}

// ExactAssignment lays out the criteria of n indices so each bucket gets its quota share
// exactly, rounding by largest remainder, then shuffles the layout with a stream derived
// from seed.
func ExactAssignment(m *slot.BetMode, n int, seed uint64) []string {
	type share struct {
		i    int
		frac float64
	}
	counts := make([]int, len(m.Buckets))
	shares := make([]share, len(m.Buckets))
	left := n
	for i, b := range m.Buckets {
		want := b.Quota * float64(n)
		counts[i] = int(math.Floor(want))
		shares[i] = share{i: i, frac: want - float64(counts[i])}
		left -= counts[i]
	}
	slices.SortStableFunc(shares, func(a, b share) int {
		switch {
		case a.frac > b.frac:
			return -1
		case a.frac < b.frac:
			return 1
		}
		return 0
	})
	for k := 0; left > 0; k = (k + 1) % len(shares) {
		counts[shares[k].i]++
		left--
	}

	out := make([]string, 0, n)
	for i, b := range m.Buckets {
		for range counts[i] {
			out = append(out, b.Criteria)
		}
	}
	r := slot.NewRoundRand(seed, -1)
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

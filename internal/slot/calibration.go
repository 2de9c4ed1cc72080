package slot

import (
	"fmt"
	"math"
	"slices"

	"github.com/shopspring/decimal"
)

const _calibrationTolerance = 1e-6

// CalibrationConfig holds the optimizer targets of one bet mode.
type CalibrationConfig struct {
	Conditions map[string]CalibrationTarget `json:"conditions"` // keyed by criteria
	Scaling    []ScalingRule                `json:"scaling"`
	Parameters OptimizerParams              `json:"parameters"`
}

// CalibrationTarget is what the optimizer aims for in one bucket. Zero HR means no
// hit-rate target; nil AvWin means no average-win target.
type CalibrationTarget struct {
	RTP    float64          `json:"rtp"`
	HR     float64          `json:"hr,omitempty"` // 1 in HR rounds
	AvWin  *float64         `json:"av_win,omitempty"`
	Search *SearchCondition `json:"search_conditions,omitempty"`
}

// SearchCondition narrows the books the optimizer may draw a bucket's weight from.
type SearchCondition struct {
	Win    *decimal.Decimal `json:"win,omitempty"`
	Symbol string           `json:"symbol,omitempty"`
}

// ScalingRule biases the optimizer toward books with wins inside WinRange.
type ScalingRule struct {
	Criteria    string     `json:"criteria"`
	ScaleFactor float64    `json:"scale_factor"`
	WinRange    [2]float64 `json:"win_range"`
	Probability float64    `json:"probability"`
}

type OptimizerParams struct {
	NumShow     int       `json:"num_show"`
	NumPerFence int       `json:"num_per_fence"`
	MinM2M      int       `json:"min_m2m"`
	MaxM2M      int       `json:"max_m2m"`
	PmbRTP      float64   `json:"pmb_rtp"`
	SimTrials   int       `json:"sim_trials"`
	TestSpins   []int     `json:"test_spins"`
	TestWeights []float64 `json:"test_weights"`
	ScoreType   string    `json:"score_type"`
}

func (c *CalibrationConfig) validate(m *BetMode) error {
	sum := 0.0
	for criteria, t := range c.Conditions {
		if m.Bucket(criteria) == nil {
			return configErrorf("bet mode %s: optimization names unknown criteria %q", m.Name, criteria)
		}
		if t.RTP < 0 || t.HR < 0 {
			return configErrorf("bet mode %s: optimization target %s is negative", m.Name, criteria)
		}
		if t.AvWin != nil && *t.AvWin < 0 {
			return configErrorf("bet mode %s: optimization av_win of %s is negative", m.Name, criteria)
		}
		sum += t.RTP
	}
	if len(c.Conditions) > 0 && math.Abs(sum-m.RTP) > _calibrationTolerance {
		return configErrorf("bet mode %s: optimization rtp sums to %v, want %v", m.Name, sum, m.RTP)
	}
	for i, s := range c.Scaling {
		if m.Bucket(s.Criteria) == nil {
			return configErrorf("bet mode %s: scaling rule %d names unknown criteria %q", m.Name, i, s.Criteria)
		}
		if s.WinRange[0] < 0 || s.WinRange[0] >= s.WinRange[1] {
			return configErrorf("bet mode %s: scaling rule %d has win_range %v", m.Name, i, s.WinRange)
		}
		if s.ScaleFactor <= 0 {
			return configErrorf("bet mode %s: scaling rule %d scale_factor must be positive", m.Name, i)
		}
		if s.Probability <= 0 || s.Probability > 1 {
			return configErrorf("bet mode %s: scaling rule %d probability outside (0, 1]", m.Name, i)
		}
	}
	p := c.Parameters
	if len(p.TestSpins) != len(p.TestWeights) {
		return configErrorf("bet mode %s: test_spins and test_weights differ in length", m.Name)
	}
	if len(p.TestWeights) > 0 {
		w := 0.0
		for _, v := range p.TestWeights {
			w += v
		}
		if math.Abs(w-1) > _calibrationTolerance {
			return configErrorf("bet mode %s: test_weights sum to %v, want 1", m.Name, w)
		}
	}
	if p.MinM2M > p.MaxM2M {
		return configErrorf("bet mode %s: min_m2m above max_m2m", m.Name)
	}
	return nil
}

// BucketStats summarises the accepted rounds of one bucket.
type BucketStats struct {
	Criteria string          `json:"criteria"`
	Count    int             `json:"count"`
	Hits     int             `json:"hits"`
	TotalWin decimal.Decimal `json:"totalWin"`
	RTP      float64         `json:"rtp"`     // contribution to the mode RTP
	HitRate  float64         `json:"hitRate"` // 1 in HitRate rounds wins; 0 without hits
	AvgWin   float64         `json:"avgWin"`
}

// LookupEntry is one row of the optimizer's lookup table.
type LookupEntry struct {
	ID     int    `json:"id"`
	Weight uint64 `json:"weight"`
	Payout int64  `json:"payout"`
}

// PassStats summarises one simulation pass of a bet mode.
type PassStats struct {
	Mode     string          `json:"mode"`
	Rounds   int             `json:"rounds"`
	TotalWin decimal.Decimal `json:"totalWin"`
	RTP      float64         `json:"rtp"`
	Wincaps  int             `json:"wincaps"`
	Attempts int             `json:"attempts"`
	Buckets  []BucketStats   `json:"buckets"`
	Lookup   []LookupEntry   `json:"lookup"`
}

// Collector accumulates the books of a pass. It is not safe for concurrent use.
type Collector struct {
	mode    *BetMode
	buckets map[string]*BucketStats
	stats   PassStats
}

func NewCollector(m *BetMode) *Collector {
	c := &Collector{
		mode:    m,
		buckets: make(map[string]*BucketStats, len(m.Buckets)),
		stats:   PassStats{Mode: m.Name, TotalWin: decimal.Zero},
	}
	for _, b := range m.Buckets {
		c.buckets[b.Criteria] = &BucketStats{Criteria: b.Criteria, TotalWin: decimal.Zero}
	}
	return c
}

// Add records one accepted book.
func (c *Collector) Add(b *Book) {
	c.stats.Rounds++
	c.stats.Attempts += b.Attempts
	c.stats.TotalWin = c.stats.TotalWin.Add(b.FinalWin)
	if b.WincapHit {
		c.stats.Wincaps++
	}
	c.stats.Lookup = append(c.stats.Lookup, LookupEntry{ID: b.ID, Weight: 1, Payout: b.PayoutMultiplier})
	bs, ok := c.buckets[b.Criteria]
	if !ok {
		bs = &BucketStats{Criteria: b.Criteria, TotalWin: decimal.Zero}
		c.buckets[b.Criteria] = bs
	}
	bs.Count++
	bs.TotalWin = bs.TotalWin.Add(b.FinalWin)
	if b.FinalWin.IsPositive() {
		bs.Hits++
	}
}

// Stats returns the summary of everything added so far.
func (c *Collector) Stats() *PassStats {
	out := c.stats
	out.Lookup = slices.Clone(c.stats.Lookup)
	slices.SortFunc(out.Lookup, func(a, b LookupEntry) int { return a.ID - b.ID })
	if out.Rounds == 0 {
		return &out
	}
	spend := c.mode.Cost.Mul(decimal.NewFromInt(int64(out.Rounds)))
	out.RTP = out.TotalWin.Div(spend).InexactFloat64()
	for _, b := range c.mode.Buckets {
		bs := *c.buckets[b.Criteria]
		bs.RTP = bs.TotalWin.Div(spend).InexactFloat64()
		if bs.Hits > 0 {
			bs.HitRate = float64(bs.Count) / float64(bs.Hits)
		}
		if bs.Count > 0 {
			bs.AvgWin = bs.TotalWin.Div(decimal.NewFromInt(int64(bs.Count))).InexactFloat64()
		}
		out.Buckets = append(out.Buckets, bs)
	}
	return &out
}

// CalibrationUpdate is the optimizer's answer to a pass: new quotas and new reel weights
// for some buckets of one mode.
type CalibrationUpdate struct {
	Mode        string                                 `json:"mode"`
	Quotas      map[string]float64                     `json:"quotas,omitempty"`
	ReelWeights map[string]map[string]map[string]int64 `json:"reel_weights,omitempty"` // criteria, phase, strip
}

// ApplyCalibration returns a new game with u applied. The receiver is left untouched and
// the result is validated like a freshly loaded definition.
func (g *Game) ApplyCalibration(u *CalibrationUpdate) (*Game, error) {
	cfg, err := g.cfg.Clone()
	if err != nil {
		return nil, err
	}
	mi := slices.IndexFunc(cfg.BetModes, func(m BetModeConfig) bool { return m.Name == u.Mode })
	if mi < 0 {
		return nil, ErrUnknownBetMode.WithCause(fmt.Errorf("bet mode %q", u.Mode))
	}
	dists := cfg.BetModes[mi].Distributions
	find := func(criteria string) (*DistributionConfig, error) {
		i := slices.IndexFunc(dists, func(d DistributionConfig) bool { return d.Criteria == criteria })
		if i < 0 {
			return nil, configErrorf("calibration update names unknown criteria %s/%s", u.Mode, criteria)
		}
		return &dists[i], nil
	}
	for criteria, q := range u.Quotas {
		d, err := find(criteria)
		if err != nil {
			return nil, err
		}
		d.Quota = q
	}
	for criteria, phases := range u.ReelWeights {
		d, err := find(criteria)
		if err != nil {
			return nil, err
		}
		if d.Conditions.ReelWeights == nil {
			d.Conditions.ReelWeights = make(map[string]map[string]int64)
		}
		for phase, weights := range phases {
			d.Conditions.ReelWeights[phase] = weights
		}
	}
	return NewGame(cfg)
}

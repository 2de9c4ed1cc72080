package slot

import (
	"fmt"
	"maps"
	"math"
	"slices"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GameConfig is the JSON game definition.
type GameConfig struct {
	GameID             string                             `json:"game_id"`
	NumReels           int                                `json:"num_reels"`
	NumRows            []int                              `json:"num_rows"`
	Wincap             decimal.Decimal                    `json:"wincap"`
	IncludePadding     bool                               `json:"include_padding"`
	SpecialSymbols     SpecialSymbols                     `json:"special_symbols"`
	WildReels          []int                              `json:"wild_reels"`
	ReplacementSymbols []string                           `json:"replacement_symbols"`
	Paytable           map[string]map[int]decimal.Decimal `json:"paytable"`
	Paylines           [][]int                            `json:"paylines"`
	FreespinTriggers   map[string]map[int]int             `json:"freespin_triggers"`
	SpecialOverlay     OverlayConfig                      `json:"special_overlay"`
	Reels              map[string][][]string              `json:"reels"`
	BetModes           []BetModeConfig                    `json:"bet_modes"`
	Limits             Limits                             `json:"limits"`
}

// SpecialSymbols lists the symbol names carrying each flag.
type SpecialSymbols struct {
	Wild       []string `json:"wild"`
	Scatter    []string `json:"scatter"`
	Trigger    []string `json:"trigger"`
	Multiplier []string `json:"multiplier"`
}

// OverlayConfig configures the special overlay mechanic. An empty Symbol disables it.
type OverlayConfig struct {
	Symbol       string              `json:"symbol"`
	Threshold    int                 `json:"threshold"`
	WildFlip     map[int]WeightTable `json:"wild_flip"`     // keyed by wilds already on the board
	MultIncrease WeightTable         `json:"mult_increase"` // drawn once per wild
}

// Limits caps the loops that retry until a condition holds.
type Limits struct {
	MaxRoundAttempts int `json:"max_round_attempts"`
	MaxBoardDraws    int `json:"max_board_draws"`
	MaxOverlayDraws  int `json:"max_overlay_draws"`
}

// BetModeConfig is one purchasable way to start a round.
type BetModeConfig struct {
	Name          string               `json:"name"`
	Cost          decimal.Decimal      `json:"cost"`
	RTP           float64              `json:"rtp"`
	IsFeature     bool                 `json:"is_feature"`
	IsBuyBonus    bool                 `json:"is_buybonus"`
	Distributions []DistributionConfig `json:"distributions"`
	Optimization  *CalibrationConfig   `json:"optimization,omitempty"`
}

// DistributionConfig declares one outcome bucket of a bet mode.
type DistributionConfig struct {
	Criteria    string           `json:"criteria"`
	Quota       float64          `json:"quota"`
	WinCriteria *decimal.Decimal `json:"win_criteria,omitempty"`
	Conditions  ConditionsConfig `json:"conditions"`
}

// ConditionsConfig is the condition set a bucket imposes on its rounds.
type ConditionsConfig struct {
	ReelWeights     map[string]map[string]int64 `json:"reel_weights"`
	ScatterTriggers *WeightTable                `json:"scatter_triggers,omitempty"`
	MultValues      map[string]WeightTable      `json:"mult_values"`
	LandingWilds    *WeightTable                `json:"landing_wilds,omitempty"`
	LandingTrigger  *WeightTable                `json:"landing_trigger,omitempty"`
	ForceWincap     bool                        `json:"force_wincap"`
	ForceFreegame   bool                        `json:"force_freegame"`
}

// ParseGameConfig decodes a JSON game definition without validating it.
func ParseGameConfig(data []byte) (*GameConfig, error) {
	cfg := &GameConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, configErrorf("parse game config: %v", err)
	}
	return cfg, nil
}

// Clone returns a deep copy, used to apply calibration updates without touching the
// running configuration.
func (c *GameConfig) Clone() (*GameConfig, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, configErrorf("clone game config: %v", err)
	}
	return ParseGameConfig(raw)
}

// Game is a validated, compiled game definition. It is read-only and shared by every
// round of every worker.
type Game struct {
	cfg *GameConfig

	numReels int
	numRows  []int
	wincap   decimal.Decimal
	padding  bool

	symbols      map[string]Symbol
	multSymbols  map[string]bool
	wildName     string
	wildReels    map[int]bool
	replacements *Weighted[string]

	pays     map[payKey]decimal.Decimal
	paylines [][]int
	triggers map[string]triggerTable
	overlay  *overlay
	strips   map[string][][]Symbol
	modes    map[string]*BetMode
	limits   Limits
}

type payKey struct {
	kind int
	name string
}

// triggerTable maps a scatter count to awarded spins.
type triggerTable struct {
	counts []int // ascending
	spins  map[int]int
}

func (t triggerTable) min() int { return t.counts[0] }

// award returns the spins for the largest declared count not above n.
func (t triggerTable) award(n int) (int, bool) {
	if len(t.counts) == 0 || n < t.counts[0] {
		return 0, false
	}
	best := t.counts[0]
	for _, c := range t.counts {
		if c <= n {
			best = c
		}
	}
	return t.spins[best], true
}

type overlay struct {
	symbol    string
	threshold int
	flip      map[int]*Weighted[int]
	increase  *Weighted[int]
}

// BetMode is a compiled bet mode.
type BetMode struct {
	Name        string
	Cost        decimal.Decimal
	RTP         float64
	IsBuyBonus  bool
	Buckets     []*Bucket
	Calibration *CalibrationConfig

	selector *Weighted[int]
}

// Bucket is a compiled distribution bucket.
type Bucket struct {
	Criteria    string
	Quota       float64
	WinCriteria *decimal.Decimal

	cond *conditions
}

type conditions struct {
	reels           map[string]*Weighted[string]
	scatterTriggers *Weighted[int]
	mults           map[string]*Weighted[int]
	landingWilds    *Weighted[int]
	landingTrigger  *Weighted[int]
	forceFreegame   bool
}

// Accepts applies the bucket predicate to a final win.
func (b *Bucket) Accepts(win decimal.Decimal) bool {
	switch {
	case b.WinCriteria != nil:
		return win.Equal(*b.WinCriteria)
	case b.Criteria == ZeroCriteria:
		return win.IsZero()
	default:
		return !win.IsZero()
	}
}

// NewGame validates cfg and compiles its tables. Every error wraps ErrInvalidConfig.
func NewGame(cfg *GameConfig) (*Game, error) {
	g := &Game{
		cfg:      cfg,
		numReels: cfg.NumReels,
		numRows:  cfg.NumRows,
		wincap:   cfg.Wincap,
		padding:  cfg.IncludePadding,
		paylines: cfg.Paylines,
		limits:   cfg.Limits,
	}
	steps := []func() error{
		g.loadGeometry,
		g.loadSymbols,
		g.loadStrips,
		g.loadPaytable,
		g.loadTriggers,
		g.loadOverlay,
		g.loadBetModes,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	if g.limits.MaxRoundAttempts <= 0 {
		g.limits.MaxRoundAttempts = _defaultMaxRoundAttempts
	}
	if g.limits.MaxBoardDraws <= 0 {
		g.limits.MaxBoardDraws = _defaultMaxBoardDraws
	}
	if g.limits.MaxOverlayDraws <= 0 {
		g.limits.MaxOverlayDraws = _defaultMaxOverlayDraws
	}
	return g, nil
}

// LoadGame parses and compiles a JSON game definition.
func LoadGame(data []byte) (*Game, error) {
	cfg, err := ParseGameConfig(data)
	if err != nil {
		return nil, err
	}
	return NewGame(cfg)
}

// Config returns the definition the game was compiled from. Callers must not mutate it.
func (g *Game) Config() *GameConfig { return g.cfg }

// Wincap returns the win cap in bet multiples.
func (g *Game) Wincap() decimal.Decimal { return g.wincap }

// Mode looks up a bet mode.
func (g *Game) Mode(name string) (*BetMode, error) {
	m, ok := g.modes[name]
	if !ok {
		return nil, ErrUnknownBetMode.WithCause(fmt.Errorf("bet mode %q", name))
	}
	return m, nil
}

// ModeNames lists the bet modes in declaration order.
func (g *Game) ModeNames() []string {
	names := make([]string, 0, len(g.cfg.BetModes))
	for _, m := range g.cfg.BetModes {
		names = append(names, m.Name)
	}
	return names
}

func (g *Game) loadGeometry() error {
	if g.numReels <= 0 {
		return configErrorf("num_reels must be positive")
	}
	if len(g.numRows) != g.numReels {
		return configErrorf("num_rows has %d entries, want %d", len(g.numRows), g.numReels)
	}
	for i, r := range g.numRows {
		if r <= 0 {
			return configErrorf("num_rows[%d] must be positive", i)
		}
	}
	if !g.wincap.IsPositive() {
		return configErrorf("wincap must be positive")
	}
	if len(g.paylines) == 0 {
		return configErrorf("paylines is empty")
	}
	for i, line := range g.paylines {
		if len(line) != g.numReels {
			return configErrorf("payline %d has %d rows, want %d", i+1, len(line), g.numReels)
		}
		for reel, row := range line {
			if row < 0 || row >= g.numRows[reel] {
				return configErrorf("payline %d row %d out of range on reel %d", i+1, row, reel)
			}
		}
	}
	return nil
}

func (g *Game) loadSymbols() error {
	s := g.cfg.SpecialSymbols
	if len(s.Wild) == 0 {
		return configErrorf("special_symbols.wild is empty")
	}
	g.symbols = make(map[string]Symbol)
	proto := func(name string) Symbol {
		sym, ok := g.symbols[name]
		if !ok {
			sym = Symbol{Name: name}
		}
		return sym
	}
	for _, n := range s.Wild {
		sym := proto(n)
		sym.Wild = true
		g.symbols[n] = sym
	}
	for _, n := range s.Scatter {
		sym := proto(n)
		sym.Scatter = true
		g.symbols[n] = sym
	}
	for _, n := range s.Trigger {
		sym := proto(n)
		sym.Trigger = true
		g.symbols[n] = sym
	}
	for n, sym := range g.symbols {
		if sym.Wild && (sym.Scatter || sym.Trigger) {
			return configErrorf("symbol %q cannot be wild and special", n)
		}
	}
	g.wildName = s.Wild[0]
	g.multSymbols = make(map[string]bool, len(s.Multiplier))
	for _, n := range s.Multiplier {
		if !g.symbols[n].Wild {
			return configErrorf("multiplier symbol %q must be wild", n)
		}
		g.multSymbols[n] = true
	}

	g.wildReels = make(map[int]bool, len(g.cfg.WildReels))
	for _, r := range g.cfg.WildReels {
		if r < 0 || r >= g.numReels {
			return configErrorf("wild_reels entry %d out of range", r)
		}
		g.wildReels[r] = true
	}
	if len(g.cfg.ReplacementSymbols) == 0 {
		return configErrorf("replacement_symbols is empty")
	}
	for _, n := range g.cfg.ReplacementSymbols {
		if !g.symbol(n).plain() {
			return configErrorf("replacement symbol %q must be a paying symbol", n)
		}
	}
	w, err := NewWeighted(g.cfg.ReplacementSymbols, uniformWeights(len(g.cfg.ReplacementSymbols)))
	if err != nil {
		return configErrorf("replacement_symbols: %v", err)
	}
	g.replacements = w
	return nil
}

// symbol returns the prototype for a name; names without flags are plain paying symbols.
func (g *Game) symbol(name string) Symbol {
	if s, ok := g.symbols[name]; ok {
		return s
	}
	return Symbol{Name: name}
}

func (g *Game) loadStrips() error {
	if len(g.cfg.Reels) == 0 {
		return configErrorf("reels is empty")
	}
	g.strips = make(map[string][][]Symbol, len(g.cfg.Reels))
	for name, reels := range g.cfg.Reels {
		if len(reels) != g.numReels {
			return configErrorf("reel strip %s has %d reels, want %d", name, len(reels), g.numReels)
		}
		set := make([][]Symbol, g.numReels)
		for i, reel := range reels {
			if len(reel) < g.numRows[i] {
				return configErrorf("reel strip %s reel %d shorter than the window", name, i)
			}
			set[i] = make([]Symbol, len(reel))
			for j, n := range reel {
				if n == "" {
					return configErrorf("reel strip %s reel %d position %d is blank", name, i, j)
				}
				set[i][j] = g.symbol(n)
			}
		}
		g.strips[name] = set
	}
	return nil
}

func (g *Game) loadPaytable() error {
	g.pays = make(map[payKey]decimal.Decimal)
	for name, byKind := range g.cfg.Paytable {
		for kind, pay := range byKind {
			if pay.IsNegative() {
				return configErrorf("paytable %s x%d is negative", name, kind)
			}
			if kind < 1 || kind > g.numReels {
				// kinds that can never occur on a line are ignored
				continue
			}
			g.pays[payKey{kind: kind, name: name}] = pay
		}
	}

	// every paying symbol that can land must price every run length from its shortest
	// paying run up to a full line
	reachable := make(map[string]bool)
	for _, set := range g.strips {
		for _, reel := range set {
			for _, s := range reel {
				reachable[s.Name] = true
			}
		}
	}
	for _, n := range g.cfg.ReplacementSymbols {
		reachable[n] = true
	}
	for _, name := range slices.Sorted(maps.Keys(reachable)) {
		sym := g.symbol(name)
		if sym.Scatter || sym.Trigger {
			continue
		}
		minKind := 0
		for k := 1; k <= g.numReels; k++ {
			if _, ok := g.pays[payKey{kind: k, name: name}]; ok {
				minKind = k
				break
			}
		}
		if minKind == 0 {
			if sym.Wild {
				continue
			}
			return configErrorf("paytable has no entry for symbol %s", name)
		}
		for k := minKind; k <= g.numReels; k++ {
			if _, ok := g.pays[payKey{kind: k, name: name}]; !ok {
				return configErrorf("paytable missing entry (%d, %s)", k, name)
			}
		}
	}
	return nil
}

func (g *Game) loadTriggers() error {
	g.triggers = make(map[string]triggerTable, len(g.cfg.FreespinTriggers))
	for phase, table := range g.cfg.FreespinTriggers {
		if phase != BaseGame && phase != FreeGame {
			return configErrorf("freespin_triggers has unknown phase %q", phase)
		}
		if len(table) == 0 {
			return configErrorf("freespin_triggers.%s is empty", phase)
		}
		t := triggerTable{counts: slices.Sorted(maps.Keys(table)), spins: table}
		for _, c := range t.counts {
			if c <= 0 || table[c] <= 0 {
				return configErrorf("freespin_triggers.%s entry %d -> %d must be positive", phase, c, table[c])
			}
		}
		g.triggers[phase] = t
	}
	if _, ok := g.triggers[BaseGame]; !ok {
		return configErrorf("freespin_triggers.%s is required", BaseGame)
	}
	return nil
}

// maxWilds is the number of cells wilds may occupy.
func (g *Game) maxWilds() int {
	n := 0
	for r := range g.wildReels {
		n += g.numRows[r]
	}
	return n
}

func (g *Game) loadOverlay() error {
	oc := g.cfg.SpecialOverlay
	if oc.Symbol == "" {
		return nil
	}
	if !g.symbol(oc.Symbol).Trigger {
		return configErrorf("special_overlay.symbol %q must be listed in special_symbols.trigger", oc.Symbol)
	}
	if oc.Threshold < 1 {
		return configErrorf("special_overlay.threshold must be at least 1")
	}
	o := &overlay{symbol: oc.Symbol, threshold: oc.Threshold, flip: make(map[int]*Weighted[int])}
	for n := 0; n <= g.maxWilds(); n++ {
		t, ok := oc.WildFlip[n]
		if !ok {
			return configErrorf("special_overlay.wild_flip has no table for %d wilds", n)
		}
		w, err := t.compile()
		if err != nil {
			return configErrorf("special_overlay.wild_flip[%d]: %v", n, err)
		}
		if !w.All(func(v int) bool { return v >= 0 }) {
			return configErrorf("special_overlay.wild_flip[%d] has negative counts", n)
		}
		o.flip[n] = w
	}
	if !o.flip[0].Any(func(v int) bool { return v > 0 }) {
		return configErrorf("special_overlay.wild_flip[0] can never flip a wild")
	}
	inc, err := oc.MultIncrease.compile()
	if err != nil {
		return configErrorf("special_overlay.mult_increase: %v", err)
	}
	if !inc.All(func(v int) bool { return v >= 0 }) {
		return configErrorf("special_overlay.mult_increase has negative values")
	}
	if !inc.Any(func(v int) bool { return v > 0 }) {
		return configErrorf("special_overlay.mult_increase can never increase a multiplier")
	}
	o.increase = inc
	g.overlay = o
	return nil
}

func (g *Game) loadBetModes() error {
	if len(g.cfg.BetModes) == 0 {
		return configErrorf("bet_modes is empty")
	}
	g.modes = make(map[string]*BetMode, len(g.cfg.BetModes))
	for _, mc := range g.cfg.BetModes {
		if _, dup := g.modes[mc.Name]; dup || mc.Name == "" {
			return configErrorf("bet mode name %q is empty or duplicated", mc.Name)
		}
		m, err := g.compileMode(mc)
		if err != nil {
			return err
		}
		g.modes[mc.Name] = m
	}
	return nil
}

func (g *Game) compileMode(mc BetModeConfig) (*BetMode, error) {
	if !mc.Cost.IsPositive() {
		return nil, configErrorf("bet mode %s: cost must be positive", mc.Name)
	}
	if len(mc.Distributions) == 0 {
		return nil, configErrorf("bet mode %s: no distributions", mc.Name)
	}
	m := &BetMode{
		Name:        mc.Name,
		Cost:        mc.Cost,
		RTP:         mc.RTP,
		IsBuyBonus:  mc.IsBuyBonus,
		Calibration: mc.Optimization,
	}
	sum := 0.0
	idx := make([]int, len(mc.Distributions))
	weights := make([]int64, len(mc.Distributions))
	seen := make(map[string]bool)
	for i, dc := range mc.Distributions {
		if dc.Criteria == "" || seen[dc.Criteria] {
			return nil, configErrorf("bet mode %s: criteria %q is empty or duplicated", mc.Name, dc.Criteria)
		}
		seen[dc.Criteria] = true
		if dc.Quota < 0 {
			return nil, configErrorf("bet mode %s: quota of %s is negative", mc.Name, dc.Criteria)
		}
		sum += dc.Quota
		b, err := g.compileBucket(mc.Name, dc)
		if err != nil {
			return nil, err
		}
		m.Buckets = append(m.Buckets, b)
		idx[i] = i
		weights[i] = int64(math.Round(dc.Quota * 1e12))
	}
	if math.Abs(sum-1) > _quotaTolerance {
		return nil, configErrorf("bet mode %s: quotas sum to %v, want 1", mc.Name, sum)
	}
	sel, err := NewWeighted(idx, weights)
	if err != nil {
		return nil, configErrorf("bet mode %s: quotas: %v", mc.Name, err)
	}
	m.selector = sel
	if m.Calibration != nil {
		if err := m.Calibration.validate(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (g *Game) compileBucket(mode string, dc DistributionConfig) (*Bucket, error) {
	where := mode + "/" + dc.Criteria
	b := &Bucket{Criteria: dc.Criteria, Quota: dc.Quota, WinCriteria: dc.WinCriteria}
	if b.WinCriteria == nil && b.Criteria == ZeroCriteria {
		zero := decimal.Zero
		b.WinCriteria = &zero
	}
	if b.WinCriteria != nil {
		if b.WinCriteria.IsNegative() || b.WinCriteria.GreaterThan(g.wincap) {
			return nil, configErrorf("%s: win_criteria %s outside [0, wincap]", where, b.WinCriteria)
		}
	}

	c := dc.Conditions
	cond := &conditions{
		reels:         make(map[string]*Weighted[string]),
		mults:         make(map[string]*Weighted[int]),
		forceFreegame: c.ForceFreegame,
	}
	if c.ForceWincap && (b.WinCriteria == nil || !b.WinCriteria.Equal(g.wincap)) {
		return nil, configErrorf("%s: force_wincap requires win_criteria equal to wincap", where)
	}

	phases := []string{BaseGame}
	if cond.forceFreegame {
		phases = append(phases, FreeGame)
	}
	for phase, weights := range c.ReelWeights {
		if phase != BaseGame && phase != FreeGame {
			return nil, configErrorf("%s: reel_weights has unknown phase %q", where, phase)
		}
		for name := range weights {
			if _, ok := g.strips[name]; !ok {
				return nil, configErrorf("%s: reel_weights.%s references undeclared reel strip %q", where, phase, name)
			}
		}
		w, err := weightedNames(weights)
		if err != nil {
			return nil, configErrorf("%s: reel_weights.%s: %v", where, phase, err)
		}
		cond.reels[phase] = w
	}
	for phase, t := range c.MultValues {
		w, err := t.compile()
		if err != nil {
			return nil, configErrorf("%s: mult_values.%s: %v", where, phase, err)
		}
		if !w.All(func(v int) bool { return v >= 1 }) {
			return nil, configErrorf("%s: mult_values.%s must be at least 1", where, phase)
		}
		cond.mults[phase] = w
	}
	for _, phase := range phases {
		if cond.reels[phase] == nil {
			return nil, configErrorf("%s: reel_weights.%s is required", where, phase)
		}
		if len(g.multSymbols) > 0 && cond.mults[phase] == nil {
			return nil, configErrorf("%s: mult_values.%s is required", where, phase)
		}
	}

	if cond.forceFreegame {
		if c.ScatterTriggers == nil {
			return nil, configErrorf("%s: scatter_triggers is required with force_freegame", where)
		}
		w, err := c.ScatterTriggers.compile()
		if err != nil {
			return nil, configErrorf("%s: scatter_triggers: %v", where, err)
		}
		base := g.triggers[BaseGame]
		if !w.All(func(n int) bool { return n >= base.min() && n <= g.cellCount() }) {
			return nil, configErrorf("%s: scatter_triggers counts must trigger the feature", where)
		}
		cond.scatterTriggers = w

		if c.LandingWilds == nil {
			return nil, configErrorf("%s: landing_wilds is required with force_freegame", where)
		}
		if cond.landingWilds, err = c.LandingWilds.compile(); err != nil {
			return nil, configErrorf("%s: landing_wilds: %v", where, err)
		}
		if !cond.landingWilds.All(func(n int) bool { return n >= 0 }) {
			return nil, configErrorf("%s: landing_wilds counts must be non-negative", where)
		}
	}
	if !cond.forceFreegame {
		if c.ScatterTriggers != nil {
			return nil, configErrorf("%s: scatter_triggers needs force_freegame", where)
		}
		if c.LandingWilds != nil {
			return nil, configErrorf("%s: landing_wilds needs force_freegame", where)
		}
	}
	if c.LandingTrigger != nil {
		if g.overlay == nil {
			return nil, configErrorf("%s: landing_trigger needs special_overlay", where)
		}
		w, err := c.LandingTrigger.compile()
		if err != nil {
			return nil, configErrorf("%s: landing_trigger: %v", where, err)
		}
		if !w.All(func(n int) bool { return n >= 0 }) {
			return nil, configErrorf("%s: landing_trigger counts must be non-negative", where)
		}
		cond.landingTrigger = w
	}
	b.cond = cond
	return b, nil
}

func (g *Game) cellCount() int {
	n := 0
	for _, r := range g.numRows {
		n += r
	}
	return n
}

func uniformWeights(n int) []int64 {
	w := make([]int64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

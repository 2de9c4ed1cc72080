package slot

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewGameValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *GameConfig)
	}{
		{"quotas do not sum to one", func(c *GameConfig) {
			c.BetModes[0].Distributions[0].Quota = 0.5
		}},
		{"undeclared reel strip", func(c *GameConfig) {
			c.BetModes[0].Distributions[2].Conditions.ReelWeights[BaseGame] = map[string]int64{"NOPE": 1}
		}},
		{"missing paytable entry", func(c *GameConfig) {
			delete(c.Paytable, "B")
		}},
		{"wild flip table missing", func(c *GameConfig) {
			delete(c.SpecialOverlay.WildFlip, 3)
		}},
		{"multiplier below one", func(c *GameConfig) {
			c.BetModes[0].Distributions[2].Conditions.MultValues[BaseGame] = WeightTable{UseKey: []int{0, 2}, Weight: []int64{1, 1}}
		}},
		{"negative weight", func(c *GameConfig) {
			c.BetModes[0].Distributions[1].Conditions.LandingWilds = &WeightTable{UseKey: []int{0, 1}, Weight: []int64{-1, 2}}
		}},
		{"zero total weight", func(c *GameConfig) {
			c.BetModes[0].Distributions[1].Conditions.ScatterTriggers = &WeightTable{UseKey: []int{3}, Weight: []int64{0}}
		}},
		{"forced feature without landing wilds", func(c *GameConfig) {
			c.BetModes[0].Distributions[1].Conditions.LandingWilds = nil
		}},
		{"forced feature without free reels", func(c *GameConfig) {
			delete(c.BetModes[0].Distributions[1].Conditions.ReelWeights, FreeGame)
		}},
		{"scatter target below trigger", func(c *GameConfig) {
			c.BetModes[0].Distributions[1].Conditions.ScatterTriggers = &WeightTable{UseKey: []int{2}, Weight: []int64{1}}
		}},
		{"force wincap without cap target", func(c *GameConfig) {
			ten := decimal.NewFromInt(10)
			c.BetModes[0].Distributions[0].WinCriteria = &ten
		}},
		{"win criteria above cap", func(c *GameConfig) {
			big := decimal.NewFromInt(51)
			c.BetModes[0].Distributions[3].WinCriteria = &big
		}},
		{"duplicate criteria", func(c *GameConfig) {
			c.BetModes[0].Distributions[3].Criteria = "0"
		}},
		{"payline off the window", func(c *GameConfig) {
			c.Paylines[0] = []int{0, 3, 0}
		}},
		{"overlay cannot grow multipliers", func(c *GameConfig) {
			c.SpecialOverlay.MultIncrease = WeightTable{UseKey: []int{0}, Weight: []int64{1}}
		}},
		{"optimization rtp mismatch", func(c *GameConfig) {
			c.BetModes[0].RTP = 0.95
		}},
		{"scaling rule on unknown criteria", func(c *GameConfig) {
			c.BetModes[0].Optimization.Scaling[0].Criteria = "nope"
		}},
		{"scaling range reversed", func(c *GameConfig) {
			c.BetModes[0].Optimization.Scaling[0].WinRange = [2]float64{5, 1}
		}},
		{"no base trigger table", func(c *GameConfig) {
			delete(c.FreespinTriggers, BaseGame)
		}},
		{"replacement is special", func(c *GameConfig) {
			c.ReplacementSymbols = []string{"A", "S"}
		}},
		{"scatter triggers without forced feature", func(c *GameConfig) {
			c.BetModes[0].Distributions[3].Conditions.ScatterTriggers = &WeightTable{UseKey: []int{3}, Weight: []int64{1}}
		}},
		{"landing wilds without forced feature", func(c *GameConfig) {
			c.BetModes[0].Distributions[2].Conditions.LandingWilds = &WeightTable{UseKey: []int{1}, Weight: []int64{1}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := miniConfig(t)
			tt.mutate(cfg)
			_, err := NewGame(cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want invalid config", err)
			}
		})
	}
}

func TestParseGameConfigRejectsGarbage(t *testing.T) {
	if _, err := ParseGameConfig([]byte(`{"num_reels": "five"}`)); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v", err)
	}
}

func TestZeroCriteriaDefaultsToZeroTarget(t *testing.T) {
	cfg := miniConfig(t)
	cfg.BetModes[0].Distributions[2].WinCriteria = nil
	g, err := NewGame(cfg)
	if err != nil {
		t.Fatal(err)
	}
	m, _ := g.Mode("base")
	b := m.Bucket(ZeroCriteria)
	if b.Accepts(decimal.NewFromInt(1)) || !b.Accepts(decimal.Zero) {
		t.Fatal("zero bucket predicate")
	}
	if nb := m.Bucket("basegame"); nb.Accepts(decimal.Zero) || !nb.Accepts(decimal.NewFromFloat(0.1)) {
		t.Fatal("non-zero bucket predicate")
	}
}

func TestGameAccessors(t *testing.T) {
	g := miniGame(t)
	if got := g.ModeNames(); len(got) != 1 || got[0] != "base" {
		t.Fatalf("modes = %v", got)
	}
	if !g.Wincap().Equal(decimal.NewFromInt(50)) {
		t.Fatalf("wincap = %s", g.Wincap())
	}
	if g.Config().GameID != "mini" {
		t.Fatal("config not kept")
	}
	if g.limits.MaxOverlayDraws != 1000 {
		t.Fatalf("limits = %+v", g.limits)
	}

	cfg := miniConfig(t)
	cfg.Limits = Limits{}
	g, err := NewGame(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if g.limits.MaxRoundAttempts != _defaultMaxRoundAttempts || g.limits.MaxBoardDraws != _defaultMaxBoardDraws {
		t.Fatalf("default limits = %+v", g.limits)
	}
}

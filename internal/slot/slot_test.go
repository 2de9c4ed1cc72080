package slot

import (
	"testing"
)

// a 3x3 game small enough to reason about by hand
const _miniGame = `{
  "game_id": "mini",
  "num_reels": 3,
  "num_rows": [3, 3, 3],
  "wincap": 50,
  "include_padding": false,
  "special_symbols": {"wild": ["W"], "scatter": ["S"], "trigger": ["KM"], "multiplier": ["W"]},
  "wild_reels": [1],
  "replacement_symbols": ["A", "B", "C"],
  "paytable": {
    "A": {"3": 1},
    "B": {"3": 2},
    "C": {"3": 0.5},
    "W": {"3": 5}
  },
  "paylines": [[0, 0, 0], [1, 1, 1], [2, 2, 2]],
  "freespin_triggers": {"basegame": {"3": 10}, "freegame": {"3": 10}},
  "special_overlay": {
    "symbol": "KM",
    "threshold": 2,
    "wild_flip": {
      "0": {"use_key": [0, 1], "weight": [1, 1]},
      "1": {"use_key": [0, 1], "weight": [1, 1]},
      "2": {"use_key": [0, 1], "weight": [1, 1]},
      "3": {"use_key": [0], "weight": [1]}
    },
    "mult_increase": {"use_key": [0, 1], "weight": [1, 1]}
  },
  "reels": {
    "BASE": [
      ["A", "B", "C", "S", "B", "A", "C", "A", "B", "C"],
      ["A", "B", "C", "S", "B", "A", "C", "A", "B", "C"],
      ["A", "B", "C", "S", "B", "A", "C", "A", "B", "C"]
    ],
    "FREE": [
      ["A", "KM", "B", "A", "S", "B", "KM", "A", "B", "C"],
      ["A", "KM", "B", "W", "S", "B", "KM", "A", "B", "C"],
      ["A", "KM", "B", "A", "S", "B", "KM", "A", "B", "C"]
    ],
    "CAP": [
      ["A", "A", "A"],
      ["A", "A", "A"],
      ["A", "A", "A"]
    ]
  },
  "bet_modes": [
    {
      "name": "base",
      "cost": 1,
      "rtp": 0.9,
      "distributions": [
        {
          "criteria": "wincap",
          "quota": 0.1,
          "win_criteria": 50,
          "conditions": {
            "reel_weights": {"basegame": {"BASE": 1}, "freegame": {"CAP": 1}},
            "scatter_triggers": {"use_key": [3], "weight": [1]},
            "mult_values": {
              "basegame": {"use_key": [2], "weight": [1]},
              "freegame": {"use_key": [5], "weight": [1]}
            },
            "landing_wilds": {"use_key": [3], "weight": [1]},
            "force_wincap": true,
            "force_freegame": true
          }
        },
        {
          "criteria": "freegame",
          "quota": 0.2,
          "conditions": {
            "reel_weights": {"basegame": {"BASE": 1}, "freegame": {"FREE": 1}},
            "scatter_triggers": {"use_key": [3], "weight": [1]},
            "mult_values": {
              "basegame": {"use_key": [2], "weight": [1]},
              "freegame": {"use_key": [2, 3], "weight": [1, 1]}
            },
            "landing_wilds": {"use_key": [0, 1], "weight": [3, 1]},
            "landing_trigger": {"use_key": [0, 1, 2], "weight": [2, 1, 1]},
            "force_freegame": true
          }
        },
        {
          "criteria": "0",
          "quota": 0.4,
          "win_criteria": 0,
          "conditions": {
            "reel_weights": {"basegame": {"BASE": 1}},
            "mult_values": {"basegame": {"use_key": [2], "weight": [1]}}
          }
        },
        {
          "criteria": "basegame",
          "quota": 0.3,
          "conditions": {
            "reel_weights": {"basegame": {"BASE": 1}},
            "mult_values": {"basegame": {"use_key": [2], "weight": [1]}}
          }
        }
      ],
      "optimization": {
        "conditions": {
          "wincap": {"rtp": 0.1, "av_win": 50, "search_conditions": {"win": 50}},
          "freegame": {"rtp": 0.5, "hr": 10},
          "0": {"rtp": 0, "av_win": 0},
          "basegame": {"rtp": 0.3, "hr": 4}
        },
        "scaling": [
          {"criteria": "freegame", "scale_factor": 2, "win_range": [0, 5], "probability": 0.5}
        ],
        "parameters": {"test_spins": [10, 20], "test_weights": [0.5, 0.5], "min_m2m": 2, "max_m2m": 4, "score_type": "rtp"}
      }
    }
  ],
  "limits": {"max_round_attempts": 20000, "max_board_draws": 100000, "max_overlay_draws": 1000}
}`

func miniConfig(t testing.TB) *GameConfig {
	t.Helper()
	cfg, err := ParseGameConfig([]byte(_miniGame))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return cfg
}

func miniGame(t testing.TB) *Game {
	t.Helper()
	g, err := NewGame(miniConfig(t))
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}

// boardOf builds a board from rows of symbol names, top row first.
func boardOf(g *Game, rows ...[]string) *Board {
	b := &Board{
		Reels:  make([][]Symbol, len(rows[0])),
		Top:    make([]Symbol, len(rows[0])),
		Bottom: make([]Symbol, len(rows[0])),
		Stops:  make([]int, len(rows[0])),
	}
	for reel := range b.Reels {
		b.Reels[reel] = make([]Symbol, len(rows))
		for row := range rows {
			b.Reels[reel][row] = g.symbol(rows[row][reel])
		}
	}
	return b
}

func eventsOf(b *Book, typ string) []Event {
	var out []Event
	for _, e := range b.Events {
		if EventType(e) == typ {
			out = append(out, e)
		}
	}
	return out
}

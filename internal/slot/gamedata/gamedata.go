// Package gamedata embeds the default game definition.
package gamedata

import (
	_ "embed"
	"os"

	"slotsim/internal/slot"
)

//go:embed game.json
var gameJSON []byte

// Load compiles the embedded definition.
func Load() (*slot.Game, error) {
	return slot.LoadGame(gameJSON)
}

// LoadFile compiles the definition at path, or the embedded one when path is empty.
func LoadFile(path string) (*slot.Game, error) {
	if path == "" {
		return Load()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return slot.LoadGame(data)
}

package biz

import (
	"slotsim/internal/conf"
	"slotsim/internal/slot"
	"slotsim/internal/slot/gamedata"

	"github.com/google/wire"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(NewGame, NewSimulationUsecase)

// NewGame loads the game definition named by the simulation config.
func NewGame(c *conf.Simulation) (*slot.Game, error) {
	return gamedata.LoadFile(c.GameConfig)
}

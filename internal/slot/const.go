package slot

// Game phases. The names are also the keys used by the game definition tables.
const (
	BaseGame = "basegame"
	FreeGame = "freegame"
)

// Event types written to a book.
const (
	EventReveal            = "reveal"
	EventWinInfo           = "winInfo"
	EventSetWin            = "setWin"
	EventSetTotalWin       = "setTotalWin"
	EventFreeSpinTrigger   = "freeSpinTrigger"
	EventUpdateFreeSpin    = "updateFreeSpin"
	EventFreeSpinRetrigger = "freeSpinRetrigger"
	EventNewStickySymbols  = "newStickySymbols"
	EventSpecialTrigger    = "specialTrigger"
	EventFlipWilds         = "flipWilds"
	EventIncreaseWildMult  = "increaseWildMultiplier"
	EventFreeSpinEnd       = "freeSpinEnd"
	EventWincap            = "wincap"
	EventFinalWin          = "finalWin"
)

// ZeroCriteria names the bucket whose rounds must pay nothing.
const ZeroCriteria = "0"

// Iteration caps. Each can be overridden per game definition.
const (
	_defaultMaxRoundAttempts = 200000
	_defaultMaxBoardDraws    = 1000000
	_defaultMaxOverlayDraws  = 10000
)

// amounts in events are hundredths of the bet
const _eventAmountScale = 100

// quota sums must hit 1 within this tolerance
const _quotaTolerance = 1e-9

package engine

import "fmt"

// Error codes surfaced to clients. The transport maps these onto HTTP status
// codes; the engine only distinguishes the classes.
const (
	ErrNotYourTurn               = "NotYourTurn"
	ErrGameAlreadyFinished       = "GameAlreadyFinished"
	ErrGameNotStarted            = "GameNotStarted"
	ErrTileCannotBeFound         = "TileCannotBeFound"
	ErrTileCannotBePlacedHere    = "TileCannotBePlacedHere"
	ErrFieldPlaceIsNotAvailable  = "FieldPlaceIsNotAvailable"
	ErrNoTilesLeftInDeck         = "NoTilesLeftInDeck"
	ErrNoItemsLeftInBag          = "NoItemsLeftInBag"
	ErrInventoryFull             = "InventoryFull"
	ErrMissingKey                = "MissingKey"
	ErrCannotMoveAfterBattle     = "CannotMoveAfterBattle"
	ErrCannotPickUntilPlaced     = "CannotPlaceTileUntilPreviousIsPlaced"
	ErrInvalidTurnId             = "InvalidTurnId"
	ErrPositionUnreachable       = "PositionUnreachable"
	ErrActionNotAllowed          = "ActionNotAllowed"
	ErrItemCannotBeFound         = "ItemCannotBeFound"
	ErrBattleCannotBeFound       = "BattleCannotBeFound"
	ErrPlayerCannotBeFound       = "PlayerCannotBeFound"
	ErrInventoryBlocks           = "InventoryBlocks"
	ErrSpellCannotBeUsed         = "SpellCannotBeUsed"
	ErrInvariantViolated         = "InvariantViolated"
)

// GameError is a typed game logic error. Details carry structured context
// (inventory snapshots, chest types) for rule-conflict responses.
type GameError struct {
	Code    string
	Message string
	Details map[string]any
}

func (e *GameError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewGameError creates a GameError without details.
func NewGameError(code, format string, args ...any) *GameError {
	return &GameError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithDetails attaches structured context to the error.
func (e *GameError) WithDetails(details map[string]any) *GameError {
	e.Details = details
	return e
}

// ErrorCode extracts the game error code, or "" for non-game errors.
func ErrorCode(err error) string {
	if gameErr, ok := err.(*GameError); ok {
		return gameErr.Code
	}
	return ""
}

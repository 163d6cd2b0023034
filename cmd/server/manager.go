package main

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/delveworks/dungeon-delve-engine/internal/engine"
	"github.com/delveworks/dungeon-delve-engine/internal/logger"
	"github.com/delveworks/dungeon-delve-engine/internal/turnlog"
	"github.com/delveworks/dungeon-delve-engine/internal/ws"
)

// ErrGameNotFound is the transport-level code for unknown game ids.
const ErrGameNotFound = "GameNotFound"

var defaultPlayerIDs = []string{"player1", "player2"}

// GameManager owns the live games of this process. Games are created on
// first access; a pending test setup seeds the game it names.
type GameManager struct {
	mu       sync.Mutex
	games    map[string]*engine.Game
	pending  map[string]*engine.TestConfig
	testMode bool

	hub   *ws.Hub
	turns *turnlog.Store
	log   *zap.Logger
}

// NewGameManager creates the manager with its websocket hub and turn store.
func NewGameManager(hub *ws.Hub, turns *turnlog.Store) *GameManager {
	return &GameManager{
		games:   make(map[string]*engine.Game),
		pending: make(map[string]*engine.TestConfig),
		hub:     hub,
		turns:   turns,
		log:     logger.Get(),
	}
}

// SetTestMode toggles whether setup configurations are accepted. It affects
// games created afterwards; running games keep their configuration.
func (m *GameManager) SetTestMode(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.testMode = enabled
	if !enabled {
		m.pending = make(map[string]*engine.TestConfig)
	}
	m.log.Info("test mode toggled", zap.Bool("enabled", enabled))
}

// TestMode reports whether setups are currently accepted.
func (m *GameManager) TestMode() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.testMode
}

// SetupGame parks a test configuration for a game that does not exist yet.
func (m *GameManager) SetupGame(gameID string, cfg *engine.TestConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.testMode {
		return engine.NewGameError(engine.ErrActionNotAllowed, "test mode is disabled")
	}
	if _, exists := m.games[gameID]; exists {
		return engine.NewGameError(engine.ErrActionNotAllowed, "game %s already exists", gameID)
	}
	m.pending[gameID] = cfg
	m.log.Info("game setup stored", zap.String("gameId", gameID))
	return nil
}

// Get returns a running game.
func (m *GameManager) Get(gameID string) (*engine.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	game, ok := m.games[gameID]
	if !ok {
		return nil, engine.NewGameError(ErrGameNotFound, "game %s does not exist", gameID)
	}
	return game, nil
}

// GetOrCreate returns the game, creating and starting it on first access.
// A pending setup for the id is consumed into the new game.
func (m *GameManager) GetOrCreate(gameID string) (*engine.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if game, ok := m.games[gameID]; ok {
		return game, nil
	}

	cfg := m.pending[gameID]
	delete(m.pending, gameID)

	// Player configs override the default roster, they do not replace it:
	// configuring player2 alone still yields a two-player game.
	playerIDs := defaultPlayerIDs
	if cfg != nil && len(cfg.PlayerConfigs) > 0 {
		roster := make(map[string]struct{}, len(defaultPlayerIDs)+len(cfg.PlayerConfigs))
		for _, id := range defaultPlayerIDs {
			roster[id] = struct{}{}
		}
		for id := range cfg.PlayerConfigs {
			roster[id] = struct{}{}
		}
		playerIDs = make([]string, 0, len(roster))
		for id := range roster {
			playerIDs = append(playerIDs, id)
		}
		sort.Strings(playerIDs)
	}

	game, err := engine.NewGame(gameID, playerIDs, cfg)
	if err != nil {
		return nil, err
	}
	m.hub.AttachGame(game)
	m.turns.Attach(game)
	if err := game.Start(); err != nil {
		return nil, err
	}

	m.games[gameID] = game
	m.log.Info("game created",
		zap.String("gameId", gameID),
		zap.Strings("players", playerIDs),
		zap.Bool("seeded", cfg != nil))
	return game, nil
}

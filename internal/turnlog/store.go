// Package turnlog persists closed turn records as JSON files, one per game.
package turnlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/delveworks/dungeon-delve-engine/internal/engine"
	"github.com/delveworks/dungeon-delve-engine/internal/events"
	"github.com/delveworks/dungeon-delve-engine/internal/logger"
)

// Record is the persisted shape of one closed turn.
type Record struct {
	TurnID     string                    `json:"turn_id"`
	GameID     string                    `json:"game_id"`
	TurnNumber int                       `json:"turn_number"`
	PlayerID   string                    `json:"player_id"`
	Actions    []engine.TurnActionRecord `json:"actions"`
	StartTime  time.Time                 `json:"start_time"`
	EndTime    *time.Time                `json:"end_time,omitempty"`
}

// FromTurn converts an engine turn into its persisted record.
func FromTurn(turn *engine.Turn) Record {
	return Record{
		TurnID:     turn.TurnID,
		GameID:     turn.GameID,
		TurnNumber: turn.TurnNumber,
		PlayerID:   turn.PlayerID,
		Actions:    turn.Actions,
		StartTime:  turn.StartTime,
		EndTime:    turn.EndTime,
	}
}

// Store appends turn records to per-game JSON files.
type Store struct {
	mu  sync.Mutex
	dir string
	log *zap.Logger
}

// NewStore creates the store, making sure the directory exists.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create turn log directory: %w", err)
	}
	return &Store{dir: dir, log: logger.Get()}, nil
}

func (s *Store) path(gameID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s.json", gameID))
}

// Append persists one closed turn at the end of the game's file.
func (s *Store) Append(gameID string, turn *engine.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readLocked(gameID)
	if err != nil {
		return err
	}
	records = append(records, FromTurn(turn))

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal turn log for %s: %w", gameID, err)
	}
	if err := os.WriteFile(s.path(gameID), data, 0o644); err != nil {
		return fmt.Errorf("write turn log for %s: %w", gameID, err)
	}
	return nil
}

// List returns the game's turn records in append order. An unknown game
// yields an empty list.
func (s *Store) List(gameID string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(gameID)
}

func (s *Store) readLocked(gameID string) ([]Record, error) {
	data, err := os.ReadFile(s.path(gameID))
	if os.IsNotExist(err) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read turn log for %s: %w", gameID, err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode turn log for %s: %w", gameID, err)
	}
	return records, nil
}

// Attach subscribes the store to a game's bus so every closed turn lands on
// disk as part of the command that closed it.
func (s *Store) Attach(g *engine.Game) {
	events.Subscribe(g.Bus(), func(e engine.TurnEnded) {
		if e.Turn == nil {
			return
		}
		if err := s.Append(e.GameID, e.Turn); err != nil {
			s.log.Error("persist turn failed",
				zap.String("gameId", e.GameID),
				zap.String("turnId", e.TurnID),
				zap.Error(err))
		}
	})
}

package main

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/delveworks/dungeon-delve-engine/internal/engine"
	"github.com/delveworks/dungeon-delve-engine/internal/geometry"
	"github.com/delveworks/dungeon-delve-engine/internal/logger"
	"github.com/delveworks/dungeon-delve-engine/internal/protocol"
	"github.com/delveworks/dungeon-delve-engine/internal/turnlog"
	"github.com/delveworks/dungeon-delve-engine/internal/ws"
)

// Server wires the game manager onto the HTTP surface.
type Server struct {
	manager *GameManager
	turns   *turnlog.Store
	hub     *ws.Hub
	router  *gin.Engine
	log     *zap.Logger
}

// NewServer builds the router with every game route registered.
func NewServer(manager *GameManager, turns *turnlog.Store, hub *ws.Hub) *Server {
	s := &Server{
		manager: manager,
		turns:   turns,
		hub:     hub,
		router:  gin.New(),
		log:     logger.Get(),
	}
	s.router.Use(gin.Recovery())

	s.router.POST("/api/test/toggle-mode", s.toggleMode)
	s.router.POST("/api/test/setup-game", s.setupGame)

	s.router.GET("/api/game/:gameId", s.getGame)
	s.router.GET("/api/game/:gameId/turns", s.listTurns)
	s.router.GET("/ws/:gameId", s.watchGame)

	s.router.POST("/api/game/pick-tile", s.pickTile)
	s.router.POST("/api/game/rotate-tile", s.rotateTile)
	s.router.POST("/api/game/place-tile", s.placeTile)
	s.router.POST("/api/game/move-player", s.movePlayer)
	s.router.POST("/api/game/finalize-battle", s.finalizeBattle)
	s.router.POST("/api/game/pick-item", s.pickItem)
	s.router.POST("/api/game/use-spell", s.useSpell)
	s.router.POST("/api/game/inventory-action", s.inventoryAction)
	s.router.POST("/api/game/end-turn", s.endTurn)

	return s
}

// Router exposes the gin engine for the HTTP server and for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// statusFor maps game error codes onto HTTP statuses. Unknown codes are
// treated as rule conflicts rather than server faults.
func statusFor(err error) int {
	switch engine.ErrorCode(err) {
	case "":
		return http.StatusInternalServerError
	case ErrGameNotFound,
		engine.ErrTileCannotBeFound,
		engine.ErrItemCannotBeFound,
		engine.ErrBattleCannotBeFound,
		engine.ErrPlayerCannotBeFound:
		return http.StatusNotFound
	case engine.ErrInvalidTurnId,
		engine.ErrPositionUnreachable,
		engine.ErrFieldPlaceIsNotAvailable,
		engine.ErrTileCannotBePlacedHere:
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	if engine.ErrorCode(err) == "" {
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(statusFor(err), protocol.FromError(err))
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, protocol.ErrorResponse{
		Code:    "InvalidRequest",
		Message: err.Error(),
	})
}

func (s *Server) toggleMode(c *gin.Context) {
	var req protocol.ToggleModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	s.manager.SetTestMode(req.Enabled)
	c.JSON(http.StatusOK, gin.H{"testMode": req.Enabled})
}

func (s *Server) setupGame(c *gin.Context) {
	var req protocol.SetupGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if err := s.manager.SetupGame(req.GameID, req.TestConfig()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"gameId": req.GameID})
}

func (s *Server) getGame(c *gin.Context) {
	game, err := s.manager.GetOrCreate(c.Param("gameId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, protocol.BuildGameResponse(game.Snapshot()))
}

func (s *Server) listTurns(c *gin.Context) {
	records, err := s.turns.List(c.Param("gameId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"turns": records})
}

// watchGame upgrades the connection and streams the game's patch envelopes
// until the client disconnects.
func (s *Server) watchGame(c *gin.Context) {
	gameID := c.Param("gameId")
	if _, err := s.manager.Get(gameID); err != nil {
		s.fail(c, err)
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Warn("websocket accept failed", zap.String("gameId", gameID), zap.Error(err))
		return
	}

	s.hub.Join(gameID, conn)
	defer s.hub.Leave(gameID, conn)

	ctx := c.Request.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) pickTile(c *gin.Context) {
	var req protocol.PickTileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	side, err := geometry.ParseSide(req.RequiredOpenSide)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	game, err := s.manager.Get(req.GameID)
	if err != nil {
		s.fail(c, err)
		return
	}
	tile, err := game.PickTile(req.PlayerID, req.TurnID, side)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tile": protocol.NewTileView(tile)})
}

func (s *Server) rotateTile(c *gin.Context) {
	var req protocol.RotateTileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	topSide, err := geometry.ParseSide(req.TopSide)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	requiredSide, err := geometry.ParseSide(req.RequiredOpenSide)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	game, err := s.manager.Get(req.GameID)
	if err != nil {
		s.fail(c, err)
		return
	}
	tile, err := game.RotateTile(req.PlayerID, req.TurnID, req.TileID, topSide, requiredSide)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tile": protocol.NewTileView(tile)})
}

func (s *Server) placeTile(c *gin.Context) {
	var req protocol.PlaceTileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	place, err := geometry.ParseFieldPlace(req.FieldPlace)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	game, err := s.manager.Get(req.GameID)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := game.PlaceTile(req.PlayerID, req.TurnID, req.TileID, place); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fieldPlace": req.FieldPlace})
}

func (s *Server) movePlayer(c *gin.Context) {
	var req protocol.MovePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	to, err := geometry.ParseFieldPlace(req.ToPosition)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	game, err := s.manager.Get(req.GameID)
	if err != nil {
		s.fail(c, err)
		return
	}
	outcome, err := game.MovePlayer(req.PlayerID, req.TurnID, to, req.IgnoreMonster, req.IsTilePlacementMove)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (s *Server) finalizeBattle(c *gin.Context) {
	var req protocol.FinalizeBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	game, err := s.manager.Get(req.GameID)
	if err != nil {
		s.fail(c, err)
		return
	}
	info, err := game.FinalizeBattle(req.PlayerID, req.TurnID, req.BattleID, req.SelectedConsumableIDs, req.PickupItem)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"battleInfo": info})
}

// pickItem surfaces inventory-full and missing-key conflicts as structured
// 200 responses so the client can offer the follow-up choice.
func (s *Server) pickItem(c *gin.Context) {
	var req protocol.PickItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	position, err := geometry.ParseFieldPlace(req.Position)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	game, err := s.manager.Get(req.GameID)
	if err != nil {
		s.fail(c, err)
		return
	}

	outcome, err := game.PickItem(req.PlayerID, req.TurnID, position, req.ItemIDToReplace)
	if err != nil {
		gameErr, ok := err.(*engine.GameError)
		if !ok {
			s.fail(c, err)
			return
		}
		switch gameErr.Code {
		case engine.ErrInventoryFull:
			body := gin.H{"inventoryFull": true, "itemReplaced": false}
			for key, value := range gameErr.Details {
				body[key] = value
			}
			c.JSON(http.StatusOK, body)
		case engine.ErrMissingKey:
			body := gin.H{"missingKey": true, "inventoryFull": false, "itemReplaced": false}
			for key, value := range gameErr.Details {
				body[key] = value
			}
			c.JSON(http.StatusOK, body)
		default:
			s.fail(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item":          outcome.Item,
		"inventoryFull": false,
		"itemReplaced":  outcome.Replaced,
	})
}

func (s *Server) useSpell(c *gin.Context) {
	var req protocol.UseSpellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	target, err := geometry.ParseFieldPlace(req.Target)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	game, err := s.manager.Get(req.GameID)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := game.UseSpell(req.PlayerID, req.TurnID, req.ItemID, target); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"position": req.Target})
}

func (s *Server) inventoryAction(c *gin.Context) {
	var req protocol.InventoryActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if req.Action != "replace" {
		s.badRequest(c, engine.NewGameError(engine.ErrActionNotAllowed, "unknown inventory action %q", req.Action))
		return
	}
	game, err := s.manager.Get(req.GameID)
	if err != nil {
		s.fail(c, err)
		return
	}
	outcome, err := game.ReplaceInventoryItem(req.PlayerID, req.ItemID, req.ItemIDToReplace)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"item":         outcome.Item,
		"itemReplaced": outcome.Replaced,
	})
}

func (s *Server) endTurn(c *gin.Context) {
	var req protocol.EndTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	game, err := s.manager.Get(req.GameID)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := game.EndTurn(req.PlayerID, req.TurnID); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"currentPlayerId": game.CurrentPlayerID(),
		"currentTurnId":   game.CurrentTurnID(),
	})
}

package engine

import (
	"testing"

	"github.com/delveworks/dungeon-delve-engine/internal/events"
	"github.com/delveworks/dungeon-delve-engine/internal/geometry"
	"github.com/delveworks/dungeon-delve-engine/internal/items"
)

func newFlowGame(t *testing.T, cfg *TestConfig) *Game {
	t.Helper()
	g, err := NewGame("flow-game", []string{"player1", "player2"}, cfg)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if err := g.Start(); err != nil {
		t.Fatalf("start game: %v", err)
	}
	return g
}

func endTurn(t *testing.T, g *Game, playerID string) {
	t.Helper()
	if err := g.EndTurn(playerID, g.CurrentTurnID()); err != nil {
		t.Fatalf("end turn for %s: %v", playerID, err)
	}
}

// conquerRoom picks the next deck tile, places it at target, and walks in.
// side is the opening that must face back toward the player.
func conquerRoom(t *testing.T, g *Game, playerID string, target geometry.FieldPlace, side geometry.Side) *MoveOutcome {
	t.Helper()
	turnID := g.CurrentTurnID()
	tile, err := g.PickTile(playerID, turnID, side)
	if err != nil {
		t.Fatalf("pick tile: %v", err)
	}
	if err := g.PlaceTile(playerID, turnID, tile.ID, target); err != nil {
		t.Fatalf("place tile at %s: %v", target, err)
	}
	outcome, err := g.MovePlayer(playerID, turnID, target, false, true)
	if err != nil {
		t.Fatalf("move to %s: %v", target, err)
	}
	return outcome
}

func fourSideRooms(n int) []TileSpec {
	specs := make([]TileSpec, n)
	for i := range specs {
		specs[i] = TileSpec{Name: "fourSideRoom"}
	}
	return specs
}

func TestScenarioFirstTurnWin(t *testing.T) {
	g := newFlowGame(t, &TestConfig{
		DiceRolls:     []int{6, 6},
		TileSequence:  []TileSpec{{Name: "fourSideRoom"}, {Name: "threeSideRoom"}},
		ItemSequence:  []string{"skeleton_turnkey"},
		PlayerConfigs: map[string]PlayerConfig{"player2": {MaxHP: 2}},
	})
	turnID := g.CurrentTurnID()

	outcome := conquerRoom(t, g, "player1", place(0, -1), geometry.Bottom)
	info := outcome.Battle
	if info == nil {
		t.Fatal("entering the monster room must start a battle")
	}
	if info.Result != BattleResultWin || info.TotalDamage != 12 {
		t.Fatalf("battle = %s/%d, want WIN/12", info.Result, info.TotalDamage)
	}
	if info.Reward == nil || info.Reward.Type != items.TypeKey {
		t.Fatalf("reward = %v, want the turnkey's key", info.Reward)
	}

	if pos, _ := g.PositionOf("player1"); pos != place(0, -1) {
		t.Errorf("winner stays on the monster tile, got %s", pos)
	}

	pick, err := g.PickItem("player1", turnID, place(0, -1), "")
	if err != nil {
		t.Fatalf("pick item: %v", err)
	}
	if pick.Item.Type != items.TypeKey {
		t.Errorf("picked %s, want key", pick.Item.Type)
	}
	state, _ := g.PlayerState("player1")
	if len(state.Inventory.Keys) != 1 {
		t.Errorf("keys in inventory = %d, want 1", len(state.Inventory.Keys))
	}

	endTurn(t, g, "player1")
	if g.CurrentPlayerID() != "player2" {
		t.Errorf("current player = %s, want player2", g.CurrentPlayerID())
	}
}

func TestScenarioTeleportCorridorAndLoss(t *testing.T) {
	g := newFlowGame(t, &TestConfig{
		DiceRolls: []int{1, 1},
		TileSequence: []TileSpec{
			{Name: "fourSideRoom"},
			{Name: "twoSideStraight", Features: []TileFeature{FeatureTeleportationGate}},
			{Name: "threeSideRoom"},
		},
		ItemSequence:  []string{"skeleton_king"},
		PlayerConfigs: map[string]PlayerConfig{"player2": {MaxHP: 2}},
	})

	endTurn(t, g, "player1")
	turnID := g.CurrentTurnID()

	// The gate corridor holds no item: no battle on entry.
	tile, err := g.PickTile("player2", turnID, geometry.Left)
	if err != nil {
		t.Fatalf("pick corridor: %v", err)
	}
	if err := g.PlaceTile("player2", turnID, tile.ID, place(1, 0)); err != nil {
		t.Fatalf("place corridor: %v", err)
	}
	stepped, err := g.MovePlayer("player2", turnID, place(1, 0), false, true)
	if err != nil {
		t.Fatalf("enter corridor: %v", err)
	}
	if stepped.Battle != nil {
		t.Fatal("corridors never start battles")
	}

	outcome := conquerRoom(t, g, "player2", place(2, 0), geometry.Left)
	info := outcome.Battle
	if info == nil || info.Result != BattleResultLose {
		t.Fatalf("battle = %+v, want LOSE", info)
	}
	if info.NeedsConsumableConfirmation {
		t.Error("no consumables can save this loss, it must finalize immediately")
	}
	if !info.Finalized {
		t.Error("loss should be finalized")
	}

	state, _ := g.PlayerState("player2")
	if state.HP != 1 {
		t.Errorf("player2 HP = %d, want 1", state.HP)
	}
	if pos, _ := g.PositionOf("player2"); pos != place(1, 0) {
		t.Errorf("loser steps back, got %s, want (1,0)", pos)
	}

	snap := g.Snapshot()
	monster := snap.Items[place(2, 0)]
	if monster == nil || !monster.Guarded() {
		t.Error("the monster must remain undefeated after a loss")
	}
	if g.CurrentPlayerID() != "player1" {
		t.Errorf("a lost battle ends the turn, current = %s", g.CurrentPlayerID())
	}
}

func TestScenarioDrawWithFireball(t *testing.T) {
	g := newFlowGame(t, &TestConfig{
		DiceRolls:    []int{6, 6, 4, 4},
		TileSequence: fourSideRooms(3),
		ItemSequence: []string{"mummy", "skeleton_turnkey"},
	})

	// Turn one: beat the mummy, take its fireball.
	turnID := g.CurrentTurnID()
	if outcome := conquerRoom(t, g, "player1", place(0, -1), geometry.Bottom); outcome.Battle.Result != BattleResultWin {
		t.Fatalf("mummy fight = %s, want WIN", outcome.Battle.Result)
	}
	pick, err := g.PickItem("player1", turnID, place(0, -1), "")
	if err != nil {
		t.Fatalf("pick fireball: %v", err)
	}
	fireballID := pick.Item.ID
	endTurn(t, g, "player1")
	endTurn(t, g, "player2")

	// Turn two: dice tie the turnkey, the fireball settles it.
	turnID = g.CurrentTurnID()
	outcome := conquerRoom(t, g, "player1", place(0, -2), geometry.Bottom)
	info := outcome.Battle
	if info.Result != BattleResultDraw || !info.NeedsConsumableConfirmation {
		t.Fatalf("battle = %s confirm=%t, want DRAW awaiting confirmation", info.Result, info.NeedsConsumableConfirmation)
	}
	if info.Reward == nil || !info.IsPotentialReward {
		t.Error("a winnable draw should advertise the potential reward")
	}

	final, err := g.FinalizeBattle("player1", turnID, info.BattleID, []string{fireballID}, true)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if final.Result != BattleResultWin {
		t.Fatalf("finalized result = %s, want WIN", final.Result)
	}

	state, _ := g.PlayerState("player1")
	if len(state.Inventory.Keys) != 1 {
		t.Errorf("keys = %d, want the turnkey's key collected", len(state.Inventory.Keys))
	}
	if len(state.Inventory.Spells) != 0 {
		t.Errorf("spells = %d, the fireball must be consumed", len(state.Inventory.Spells))
	}
	for pos, item := range g.Snapshot().Items {
		if item.ID == fireballID {
			t.Errorf("consumed fireball reappeared on the field at %s", pos)
		}
	}
}

func TestScenarioInventoryReplacement(t *testing.T) {
	g := newFlowGame(t, &TestConfig{
		DiceRolls:    []int{6, 6, 6, 6, 6, 6},
		TileSequence: fourSideRooms(4),
		ItemSequence: []string{"giant_rat", "giant_rat", "skeleton_warrior"},
	})

	var daggerIDs []string
	targets := []geometry.FieldPlace{place(0, -1), place(0, -2)}
	for _, target := range targets {
		turnID := g.CurrentTurnID()
		if outcome := conquerRoom(t, g, "player1", target, geometry.Bottom); outcome.Battle.Result != BattleResultWin {
			t.Fatalf("rat fight at %s lost", target)
		}
		pick, err := g.PickItem("player1", turnID, target, "")
		if err != nil {
			t.Fatalf("pick dagger at %s: %v", target, err)
		}
		daggerIDs = append(daggerIDs, pick.Item.ID)
		endTurn(t, g, "player1")
		endTurn(t, g, "player2")
	}

	turnID := g.CurrentTurnID()
	if outcome := conquerRoom(t, g, "player1", place(0, -3), geometry.Bottom); outcome.Battle.Result != BattleResultWin {
		t.Fatal("warrior fight lost")
	}

	_, err := g.PickItem("player1", turnID, place(0, -3), "")
	gameErr, ok := err.(*GameError)
	if !ok || gameErr.Code != ErrInventoryFull {
		t.Fatalf("expected %s, got %v", ErrInventoryFull, err)
	}
	if gameErr.Details["itemCategory"] != items.CategoryWeapons {
		t.Errorf("details itemCategory = %v, want weapons", gameErr.Details["itemCategory"])
	}
	if gameErr.Details["maxItemsInCategory"] != 2 {
		t.Errorf("details maxItemsInCategory = %v, want 2", gameErr.Details["maxItemsInCategory"])
	}

	outcome, err := g.ReplaceInventoryItem("player1", "", daggerIDs[0])
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if !outcome.Replaced || outcome.Evicted == nil || outcome.Evicted.ID != daggerIDs[0] {
		t.Fatalf("replace outcome = %+v, want first dagger evicted", outcome)
	}

	state, _ := g.PlayerState("player1")
	typesHeld := map[items.ItemType]int{}
	for _, weapon := range state.Inventory.Weapons {
		typesHeld[weapon.Type]++
	}
	if typesHeld[items.TypeSword] != 1 || typesHeld[items.TypeDagger] != 1 {
		t.Errorf("weapons after replace = %v, want one sword and one dagger", typesHeld)
	}

	evicted := g.Snapshot().Items[place(0, -3)]
	if evicted == nil || evicted.ID != daggerIDs[0] {
		t.Error("the evicted dagger must land on the player's tile")
	}
}

func TestScenarioStunAndSkip(t *testing.T) {
	g := newFlowGame(t, &TestConfig{
		DiceRolls: []int{1, 1},
		TileSequence: []TileSpec{
			{Name: "fourSideRoom"},
			{Name: "twoSideStraight"},
			{Name: "threeSideRoom"},
		},
		ItemSequence:  []string{"skeleton_king"},
		PlayerConfigs: map[string]PlayerConfig{"player2": {MaxHP: 1}},
	})

	endTurn(t, g, "player1")
	turnID := g.CurrentTurnID()

	tile, err := g.PickTile("player2", turnID, geometry.Left)
	if err != nil {
		t.Fatalf("pick corridor: %v", err)
	}
	if err := g.PlaceTile("player2", turnID, tile.ID, place(1, 0)); err != nil {
		t.Fatalf("place corridor: %v", err)
	}
	if _, err := g.MovePlayer("player2", turnID, place(1, 0), false, true); err != nil {
		t.Fatalf("enter corridor: %v", err)
	}
	outcome := conquerRoom(t, g, "player2", place(2, 0), geometry.Left)
	if outcome.Battle.Result != BattleResultLose {
		t.Fatalf("battle = %s, want LOSE", outcome.Battle.Result)
	}

	state, _ := g.PlayerState("player2")
	if state.HP != 0 || !state.StunnedAtZero {
		t.Fatalf("player2 hp=%d stunned=%t, want 0/true", state.HP, state.StunnedAtZero)
	}
	if g.CurrentPlayerID() != "player1" {
		t.Fatalf("current = %s, want player1 after the knockout", g.CurrentPlayerID())
	}

	// Player2's next turn is spent standing up.
	endTurn(t, g, "player1")
	if g.CurrentPlayerID() != "player1" {
		t.Errorf("stunned turn should be skipped, current = %s", g.CurrentPlayerID())
	}
	state, _ = g.PlayerState("player2")
	if state.HP != state.MaxHP || state.StunnedAtZero {
		t.Errorf("player2 hp=%d stunned=%t, want full HP and no stun", state.HP, state.StunnedAtZero)
	}
}

func TestScenarioDragonVictory(t *testing.T) {
	g := newFlowGame(t, &TestConfig{
		DiceRolls:    []int{6, 6, 6, 6, 6, 6},
		TileSequence: fourSideRooms(4),
		ItemSequence: []string{"skeleton_warrior", "fallen", "dragon"},
	})

	var endedTurns []*Turn
	events.Subscribe(g.Bus(), func(e TurnEnded) { endedTurns = append(endedTurns, e.Turn) })

	for i, target := range []geometry.FieldPlace{place(0, -1), place(0, -2)} {
		turnID := g.CurrentTurnID()
		if outcome := conquerRoom(t, g, "player1", target, geometry.Bottom); outcome.Battle.Result != BattleResultWin {
			t.Fatalf("fight %d lost", i+1)
		}
		if _, err := g.PickItem("player1", turnID, target, ""); err != nil {
			t.Fatalf("pick weapon %d: %v", i+1, err)
		}
		endTurn(t, g, "player1")
		endTurn(t, g, "player2")
	}

	outcome := conquerRoom(t, g, "player1", place(0, -3), geometry.Bottom)
	info := outcome.Battle
	if info.Result != BattleResultWin {
		t.Fatalf("dragon fight = %s/%d, want WIN", info.Result, info.TotalDamage)
	}
	if info.TotalDamage != 17 {
		t.Errorf("total damage = %d, want 12 dice + 5 weapons", info.TotalDamage)
	}

	if g.Status() != StatusFinished {
		t.Fatalf("status = %s, want finished", g.Status())
	}
	if g.Winner() != "player1" {
		t.Errorf("winner = %s, want player1", g.Winner())
	}
	state, _ := g.PlayerState("player1")
	foundRuby := false
	for _, treasure := range state.Inventory.Treasures {
		if treasure.Type == items.TypeRubyChest {
			foundRuby = true
		}
	}
	if !foundRuby {
		t.Error("the ruby chest must be auto-collected")
	}

	if err := g.EndTurn("player1", g.CurrentTurnID()); ErrorCode(err) != ErrGameAlreadyFinished {
		t.Errorf("commands after the win must fail with %s, got %v", ErrGameAlreadyFinished, err)
	}

	// The winning turn closes like any other: it reaches TurnEnded
	// subscribers and the turn history.
	if len(endedTurns) != 5 {
		t.Fatalf("TurnEnded count = %d, want 4 played turns plus the winning one", len(endedTurns))
	}
	winning := endedTurns[len(endedTurns)-1]
	if winning == nil || winning.PlayerID != "player1" || !winning.HasBattle() {
		t.Fatalf("last ended turn = %+v, want player1's dragon turn", winning)
	}
	if !winning.Ended() {
		t.Error("the winning turn must be closed")
	}
	if history := g.Turns(); len(history) != 5 || history[len(history)-1].TurnID != winning.TurnID {
		t.Errorf("history = %d turns, want the winning turn last", len(history))
	}
}

func TestCommandGuards(t *testing.T) {
	g := newFlowGame(t, &TestConfig{
		TileSequence: fourSideRooms(2),
		ItemSequence: []string{"giant_rat"},
	})
	turnID := g.CurrentTurnID()

	if _, err := g.PickTile("player2", turnID, geometry.Bottom); ErrorCode(err) != ErrNotYourTurn {
		t.Errorf("wrong player: expected %s, got %v", ErrNotYourTurn, err)
	}
	if _, err := g.PickTile("player1", "stale-turn", geometry.Bottom); ErrorCode(err) != ErrInvalidTurnId {
		t.Errorf("stale turn: expected %s, got %v", ErrInvalidTurnId, err)
	}
	if _, err := g.MovePlayer("player1", turnID, place(3, 3), false, false); ErrorCode(err) != ErrPositionUnreachable {
		t.Errorf("unreachable: expected %s, got %v", ErrPositionUnreachable, err)
	}
}

func TestFinalizeSettledBattleIsNoOp(t *testing.T) {
	g := newFlowGame(t, &TestConfig{
		DiceRolls:    []int{1, 1},
		TileSequence: fourSideRooms(2),
		ItemSequence: []string{"skeleton_king"},
	})
	turnID := g.CurrentTurnID()

	outcome := conquerRoom(t, g, "player1", place(0, -1), geometry.Bottom)
	info := outcome.Battle
	if info == nil || !info.Finalized || info.Result != BattleResultLose {
		t.Fatalf("battle = %+v, want an immediately settled loss", info)
	}
	if g.CurrentPlayerID() != "player2" {
		t.Fatal("a lost battle must end the turn")
	}

	// A client scripting the confirmation still gets an ack, not an error,
	// even though the loss already changed hands.
	ack, err := g.FinalizeBattle("player1", turnID, info.BattleID, nil, false)
	if err != nil {
		t.Fatalf("confirm settled battle: %v", err)
	}
	if ack.BattleID != info.BattleID || ack.Result != BattleResultLose {
		t.Errorf("ack = %+v, want the settled battle unchanged", ack)
	}
	if _, err := g.FinalizeBattle("player1", turnID, info.BattleID, nil, false); err != nil {
		t.Errorf("repeat confirm: %v", err)
	}

	// Only the fighter gets the ack.
	_, err = g.FinalizeBattle("player2", g.CurrentTurnID(), info.BattleID, nil, false)
	if ErrorCode(err) != ErrBattleCannotBeFound {
		t.Errorf("expected %s for another player, got %v", ErrBattleCannotBeFound, err)
	}
}

func TestMoveLockedAfterBattle(t *testing.T) {
	g := newFlowGame(t, &TestConfig{
		DiceRolls:    []int{6, 6},
		TileSequence: fourSideRooms(2),
		ItemSequence: []string{"giant_rat"},
	})
	turnID := g.CurrentTurnID()

	if outcome := conquerRoom(t, g, "player1", place(0, -1), geometry.Bottom); outcome.Battle.Result != BattleResultWin {
		t.Fatal("rat fight lost")
	}
	if _, err := g.MovePlayer("player1", turnID, place(0, 0), false, false); ErrorCode(err) != ErrCannotMoveAfterBattle {
		t.Errorf("expected %s, got %v", ErrCannotMoveAfterBattle, err)
	}
}

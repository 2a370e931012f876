package game

import (
	"testing"

	"go-gw/gw"
)

func manualConfig() gw.GameConfig {
	cfg := gw.DefaultGameConfig()
	cfg.InitPos = gw.Manual
	cfg.BoardSize = 10
	cfg.MaxPlayers = 4
	cfg.InitActionPoints = 1
	cfg.InitLives = 3
	cfg.InitRange = 2
	return cfg
}

func place(t *testing.T, g *Game, user string, p gw.Pos) {
	t.Helper()
	if _, _, err := g.PlayerAction(user, Action{Kind: Move, Pos: p}); err != nil {
		t.Fatalf("placing %s at %v: %v", user, p, err)
	}
}

func TestTwoPlayerMinimalGame(t *testing.T) {
	g := New("G", "A", manualConfig(), 1)
	if _, err := g.InsertPlayer("A"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.InsertPlayer("B"); err != nil {
		t.Fatal(err)
	}
	place(t, g, "A", gw.Pos{X: 0, Y: 0})
	place(t, g, "B", gw.Pos{X: 1, Y: 0})

	if err := g.StartGame(); err != nil {
		t.Fatal(err)
	}
	if g.Phase != InProg {
		t.Fatalf("expected InProg, got %v", g.Phase)
	}

	// B moves toward A: AP 1 -> 0.
	if _, _, err := g.PlayerAction("B", Action{Kind: Move, Pos: gw.Pos{X: 1, Y: 1}}); err != nil {
		t.Fatal(err)
	}
	if g.Players["B"].ActionPoints != 0 {
		t.Fatalf("expected B.ap == 0, got %d", g.Players["B"].ActionPoints)
	}

	for g.Players["B"].Lives > 0 {
		if _, err := refillAP(g, "A"); err != nil {
			t.Fatal(err)
		}
		if _, _, err := g.PlayerAction("A", Action{Kind: Attack, Target: "B", LivesEffect: 1}); err != nil {
			t.Fatal(err)
		}
	}

	if len(g.Alive) != 1 {
		t.Fatalf("expected exactly one alive player, got %d", len(g.Alive))
	}
	if g.Phase != End {
		t.Fatalf("expected End, got %v", g.Phase)
	}
}

// refillAP is a test helper standing in for the turn scheduler: it
// grants the actor enough action points to attack again.
func refillAP(g *Game, user string) (struct{}, error) {
	p := g.Players[user]
	p.ActionPoints++
	g.Players[user] = p
	return struct{}{}, nil
}

func TestAttackKillTransfersActionPoints(t *testing.T) {
	g := New("G", "A", manualConfig(), 2)
	g.InsertPlayer("A")
	g.InsertPlayer("B")
	place(t, g, "A", gw.Pos{X: 0, Y: 0})
	place(t, g, "B", gw.Pos{X: 0, Y: 1})
	g.StartGame()

	pa := g.Players["A"]
	pa.ActionPoints = 1
	g.Players["A"] = pa
	pb := g.Players["B"]
	pb.Lives = 1
	pb.ActionPoints = 5
	g.Players["B"] = pb

	if _, _, err := g.PlayerAction("A", Action{Kind: Attack, Target: "B", LivesEffect: 1}); err != nil {
		t.Fatal(err)
	}
	if g.Players["A"].ActionPoints != 5 {
		t.Fatalf("expected attacker to inherit victim's AP (5), got %d", g.Players["A"].ActionPoints)
	}
	if g.Players["B"].ActionPoints != 0 {
		t.Fatalf("expected victim AP reset to 0, got %d", g.Players["B"].ActionPoints)
	}
}

func TestGiveConservesActionPoints(t *testing.T) {
	g := New("G", "A", manualConfig(), 3)
	g.InsertPlayer("A")
	g.InsertPlayer("B")
	place(t, g, "A", gw.Pos{X: 0, Y: 0})
	place(t, g, "B", gw.Pos{X: 0, Y: 1})
	g.StartGame()

	pa := g.Players["A"]
	pa.ActionPoints = 2
	g.Players["A"] = pa

	if _, _, err := g.PlayerAction("A", Action{Kind: Give, Target: "B"}); err != nil {
		t.Fatal(err)
	}
	if g.Players["A"].ActionPoints != 1 || g.Players["B"].ActionPoints != 2 {
		t.Fatalf("expected A=1 B=2, got A=%d B=%d", g.Players["A"].ActionPoints, g.Players["B"].ActionPoints)
	}
}

func TestMoveRangeBoundary(t *testing.T) {
	g := New("G", "A", manualConfig(), 4)
	g.InsertPlayer("A")
	g.InsertPlayer("B")
	place(t, g, "A", gw.Pos{X: 0, Y: 0})
	place(t, g, "B", gw.Pos{X: 5, Y: 5})
	g.StartGame()

	pa := g.Players["A"]
	pa.ActionPoints = 2
	pa.Range = 2
	g.Players["A"] = pa

	// Chebyshev distance from (0,0) to (2,2) is exactly 2: within range.
	if _, _, err := g.PlayerAction("A", Action{Kind: Move, Pos: gw.Pos{X: 2, Y: 2}}); err != nil {
		t.Fatalf("expected move at exact range to succeed: %v", err)
	}

	pa = g.Players["A"]
	pa.ActionPoints = 2
	g.Players["A"] = pa
	// Now at (2,2) with range 2; (5,5) is distance 3: out of range.
	if _, _, err := g.PlayerAction("A", Action{Kind: Move, Pos: gw.Pos{X: 5, Y: 4}}); err == nil {
		t.Fatal("expected move beyond range to fail")
	}
}

func TestConfigureBoundaries(t *testing.T) {
	g := New("G", "A", manualConfig(), 5)
	if _, err := g.Configure(ConfigOp{Kind: OpTurnTimeSecs, Value: 9}); err == nil {
		t.Fatal("expected 9 to fail")
	}
	if _, err := g.Configure(ConfigOp{Kind: OpTurnTimeSecs, Value: 10}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Configure(ConfigOp{Kind: OpTurnTimeSecs, Value: 86400}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Configure(ConfigOp{Kind: OpTurnTimeSecs, Value: 86401}); err == nil {
		t.Fatal("expected 86401 to fail")
	}

	g.Config.MaxPlayers = 2
	if _, err := g.Configure(ConfigOp{Kind: OpBoardSize, Value: 1}); err == nil {
		t.Fatal("expected board size 1 (1*1 < 2) to fail")
	}
	if _, err := g.Configure(ConfigOp{Kind: OpBoardSize, Value: 2}); err != nil {
		t.Fatal(err)
	}
}

func TestHostGameIdempotentInsert(t *testing.T) {
	g := New("G", "A", manualConfig(), 6)
	r1, err := g.InsertPlayer("A")
	if err != nil || r1 != Joined {
		t.Fatalf("expected Joined, got %v err=%v", r1, err)
	}
	r2, err := g.InsertPlayer("A")
	if err != nil || r2 != Rejoined {
		t.Fatalf("expected Rejoined with no error, got %v err=%v", r2, err)
	}
}

func TestHeartSpawnOnOccupiedCellHeals(t *testing.T) {
	g := New("G", "A", manualConfig(), 7)
	g.InsertPlayer("A")
	place(t, g, "A", gw.Pos{X: 3, Y: 3})
	pa := g.Players["A"]
	pa.Lives = 2
	g.Players["A"] = pa

	// Force the RNG-independent path by spawning directly via the
	// board helper used in SpawnTileHeart.
	ev := g.SpawnTileHeart()
	if ev.Occupant == "A" {
		if g.Players["A"].Lives != 3 {
			t.Fatalf("expected heal to 3 lives, got %d", g.Players["A"].Lives)
		}
		if g.Board.HeartCount(ev.Pos) != 0 {
			t.Fatal("hearts board must not increment when landing on a player")
		}
	}
}

func TestCurseRoundTrip(t *testing.T) {
	g := New("G", "A", manualConfig(), 8)
	g.InsertPlayer("A")
	g.InsertPlayer("B")
	place(t, g, "A", gw.Pos{X: 0, Y: 0})
	place(t, g, "B", gw.Pos{X: 0, Y: 1})
	g.StartGame()

	// Kill A so it becomes a cursing voter.
	pa := g.Players["A"]
	pa.Lives = 0
	g.Players["A"] = pa
	g.killBookkeeping("A")

	if _, _, err := g.PlayerAction("A", Action{Kind: Curse, Target: "B", HasTarget: true}); err != nil {
		t.Fatal(err)
	}
	if ballot, ok := g.Cursings.GetVoterBallot("A"); !ok || ballot != "B" {
		t.Fatalf("expected ballot for B, got %q ok=%v", ballot, ok)
	}

	if _, _, err := g.PlayerAction("A", Action{Kind: Curse, HasTarget: false}); err != nil {
		t.Fatal(err)
	}
	if _, ok := g.Cursings.GetVoterBallot("A"); ok {
		t.Fatal("expected ballot cleared")
	}
}

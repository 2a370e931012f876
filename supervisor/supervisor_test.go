package supervisor

import (
	"encoding/json"
	"strings"
	"testing"

	"go-gw/game"
	sched "go-gw/sched"
	"go-gw/session"
)

type fakeEndpoint struct {
	id  string
	out []string
}

func (f *fakeEndpoint) Key() string       { return f.id }
func (f *fakeEndpoint) Send(frame string) { f.out = append(f.out, frame) }

func (f *fakeEndpoint) last() string {
	if len(f.out) == 0 {
		return ""
	}
	return f.out[len(f.out)-1]
}

func newTestSupervisor() (*Supervisor, *session.Registry) {
	reg := session.New()
	sc := sched.New()
	s := New(reg, sc)
	s.SetSpawnHearts(false)
	return s, reg
}

func TestHostGameIsIdempotent(t *testing.T) {
	s, _ := newTestSupervisor()
	host := &fakeEndpoint{id: "h"}
	s.handleConnect(ConnectCmd{UserID: "h", Password: "pw", Endpoint: host})

	s.handleHostGame(HostGameCmd{HostUserID: "h", GameID: "G"})
	s.handleHostGame(HostGameCmd{HostUserID: "h", GameID: "G"})

	if len(s.games) != 1 {
		t.Fatalf("expected exactly one game, got %d", len(s.games))
	}
	var sawNew, sawRejoined bool
	for _, frame := range host.out {
		if strings.Contains(frame, "new game created") {
			sawNew = true
		}
		if strings.Contains(frame, "rejoined game") {
			sawRejoined = true
		}
	}
	if !sawNew || !sawRejoined {
		t.Fatalf("expected both alerts, got %v", host.out)
	}
}

func TestHostGameDifferentHostConflicts(t *testing.T) {
	s, _ := newTestSupervisor()
	a := &fakeEndpoint{id: "a"}
	b := &fakeEndpoint{id: "b"}
	s.handleConnect(ConnectCmd{UserID: "a", Password: "pw", Endpoint: a})
	s.handleConnect(ConnectCmd{UserID: "b", Password: "pw", Endpoint: b})

	s.handleHostGame(HostGameCmd{HostUserID: "a", GameID: "G"})
	s.handleHostGame(HostGameCmd{HostUserID: "b", GameID: "G"})

	if !strings.HasPrefix(b.last(), "/error host_game:") {
		t.Fatalf("expected host conflict error, got %q", b.last())
	}
}

func TestJoinGameRejoinIsNoopNotify(t *testing.T) {
	s, _ := newTestSupervisor()
	a := &fakeEndpoint{id: "a"}
	b := &fakeEndpoint{id: "b"}
	s.handleConnect(ConnectCmd{UserID: "a", Password: "pw", Endpoint: a})
	s.handleConnect(ConnectCmd{UserID: "b", Password: "pw", Endpoint: b})
	s.handleHostGame(HostGameCmd{HostUserID: "a", GameID: "G"})

	s.handleJoinGame(JoinGameCmd{UserID: "b", GameID: "G"})
	countBefore := len(a.out)
	s.handleJoinGame(JoinGameCmd{UserID: "b", GameID: "G"})

	for _, frame := range a.out[countBefore:] {
		if strings.Contains(frame, "player_joined") {
			t.Fatalf("expected no second player_joined broadcast, got %v", a.out[countBefore:])
		}
	}
}

func TestFullGameLifecycleEndsAndClearsUserGames(t *testing.T) {
	s, _ := newTestSupervisor()
	a := &fakeEndpoint{id: "a"}
	b := &fakeEndpoint{id: "b"}
	s.handleConnect(ConnectCmd{UserID: "a", Password: "pw", Endpoint: a})
	s.handleConnect(ConnectCmd{UserID: "b", Password: "pw", Endpoint: b})

	s.handleHostGame(HostGameCmd{HostUserID: "a", GameID: "G"})
	s.handleJoinGame(JoinGameCmd{UserID: "b", GameID: "G"})
	s.handleConfigGame(ConfigGameCmd{HostUserID: "a", GameID: "G", Op: game.ConfigOp{Kind: game.OpInitLives, Value: 1}})
	s.handleStartGame(StartGameCmd{HostUserID: "a", GameID: "G"})

	g := s.games["G"]
	if g.Phase != game.InProg {
		t.Fatalf("expected InProg, got %v", g.Phase)
	}

	pa := g.Players["a"]
	pa.ActionPoints = 5
	pa.Range = 20
	g.Players["a"] = pa

	s.handlePlayerAction(PlayerActionCmd{
		UserID: "a", GameID: "G",
		Action: game.Action{Kind: game.Attack, Target: "b", LivesEffect: 1},
	})

	if g.Phase != game.End {
		t.Fatalf("expected End after killing the only other player, got %v", g.Phase)
	}
	if _, ok := s.userGames["a"]; ok {
		t.Fatal("expected a's user->game binding cleared")
	}
	if _, ok := s.userGames["b"]; ok {
		t.Fatal("expected b's user->game binding cleared")
	}
}

func TestConfigGameHostOnly(t *testing.T) {
	s, _ := newTestSupervisor()
	a := &fakeEndpoint{id: "a"}
	b := &fakeEndpoint{id: "b"}
	s.handleConnect(ConnectCmd{UserID: "a", Password: "pw", Endpoint: a})
	s.handleConnect(ConnectCmd{UserID: "b", Password: "pw", Endpoint: b})
	s.handleHostGame(HostGameCmd{HostUserID: "a", GameID: "G"})

	s.handleConfigGame(ConfigGameCmd{HostUserID: "b", GameID: "G", Op: game.ConfigOp{Kind: game.OpInitLives, Value: 5}})
	if !strings.HasPrefix(b.last(), "/error conf_game:") {
		t.Fatalf("expected host-only error, got %q", b.last())
	}
}

func TestConnectHTTPBoundaryUsesReplyChannel(t *testing.T) {
	s, _ := newTestSupervisor()
	reply := make(chan ConnectReply, 1)
	s.handleConnect(ConnectCmd{UserID: "a", Password: "pw", Reply: reply})
	res := <-reply
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if res.Result.Token != "" {
		t.Fatal("expected no token minted when no endpoint is bound")
	}
}

func TestUserStatusReflectsBinding(t *testing.T) {
	s, _ := newTestSupervisor()
	a := &fakeEndpoint{id: "a"}
	s.handleConnect(ConnectCmd{UserID: "a", Password: "pw", Endpoint: a})
	s.handleHostGame(HostGameCmd{HostUserID: "a", GameID: "G"})

	s.handleUserStatus(UserStatusCmd{UserID: "a"})
	var payload userStatusPayload
	line := a.last()
	if err := json.Unmarshal([]byte(strings.SplitN(line, " ", 2)[1]), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.GameID == nil || *payload.GameID != "G" {
		t.Fatalf("expected game_id G, got %+v", payload)
	}
}

package session

import "testing"

type fakeEndpoint struct {
	id  string
	out []string
}

func (f *fakeEndpoint) Key() string        { return f.id }
func (f *fakeEndpoint) Send(frame string)  { f.out = append(f.out, frame) }

func TestConnectCreatesThenReuses(t *testing.T) {
	r := New()
	res, err := r.Connect("u", "pw", nil)
	if err != nil || res.Alert != "user created" {
		t.Fatalf("got %+v err=%v", res, err)
	}
	res2, err := r.Connect("u", "pw", nil)
	if err != nil || res2.Alert != "user exists" {
		t.Fatalf("got %+v err=%v", res2, err)
	}
}

func TestConnectWrongPasswordFails(t *testing.T) {
	r := New()
	r.Connect("u", "pw", nil)
	if _, err := r.Connect("u", "wrong", nil); err == nil {
		t.Fatal("expected auth failure")
	}
}

func TestConnectWithEndpointLogsOutPrevious(t *testing.T) {
	r := New()
	e1 := &fakeEndpoint{id: "e1"}
	e2 := &fakeEndpoint{id: "e2"}

	res1, err := r.Connect("u", "pw", e1)
	if err != nil || res1.Token == "" {
		t.Fatalf("got %+v err=%v", res1, err)
	}

	if _, err := r.Connect("u", "pw", e2); err != nil {
		t.Fatal(err)
	}
	if len(e1.out) != 1 || e1.out[0] != "/logout u" {
		t.Fatalf("expected e1 to receive logout, got %v", e1.out)
	}
}

func TestVerifySessionAcceptsMatchingTokenAndEndpoint(t *testing.T) {
	r := New()
	e1 := &fakeEndpoint{id: "e1"}
	res, _ := r.Connect("u", "pw", e1)

	if out := r.VerifySession("u", e1, res.Token); out != VerifyAccepted {
		t.Fatalf("expected VerifyAccepted, got %v", out)
	}
	if len(e1.out) != 0 {
		t.Fatalf("expected no frames sent on silent accept, got %v", e1.out)
	}
}

func TestVerifySessionRejectsWrongToken(t *testing.T) {
	r := New()
	e1 := &fakeEndpoint{id: "e1"}
	e2 := &fakeEndpoint{id: "e2"}
	r.Connect("u", "pw", e1)

	if out := r.VerifySession("u", e2, "bogus"); out != VerifyRejected {
		t.Fatalf("expected VerifyRejected, got %v", out)
	}
	if len(e2.out) != 1 || e2.out[0] != "/logout u" {
		t.Fatalf("expected e2 to be told to log out, got %v", e2.out)
	}
}

func TestVerifySessionReplacesEndpointSilently(t *testing.T) {
	r := New()
	e1 := &fakeEndpoint{id: "e1"}
	e2 := &fakeEndpoint{id: "e2"}
	res, _ := r.Connect("u", "pw", e1)

	out := r.VerifySession("u", e2, res.Token)
	if out != VerifyAcceptedNewSession {
		t.Fatalf("expected VerifyAcceptedNewSession, got %v", out)
	}
	if len(e2.out) != 1 || e2.out[0] != "/alert new session" {
		t.Fatalf("expected e2 to get an alert, got %v", e2.out)
	}
}

func TestSessionTakeoverScenario(t *testing.T) {
	r := New()
	e1 := &fakeEndpoint{id: "e1"}
	e2 := &fakeEndpoint{id: "e2"}

	res1, _ := r.Connect("u", "pw", e1)
	res2, _ := r.Connect("u", "pw", e2)
	if len(e1.out) != 1 || e1.out[0] != "/logout u" {
		t.Fatalf("expected e1 logged out, got %v", e1.out)
	}

	if out := r.VerifySession("u", e2, res1.Token); out != VerifyRejected {
		t.Fatalf("expected stale token rejected, got %v", out)
	}
	if out := r.VerifySession("u", e2, res2.Token); out != VerifyAccepted {
		t.Fatalf("expected fresh token accepted, got %v", out)
	}
}

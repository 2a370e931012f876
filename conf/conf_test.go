package conf

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestDefaultIsBuildable(t *testing.T) {
	c := Default()
	if c.TCP.Port == 0 || c.Web.Port == 0 {
		t.Fatal("expected nonzero default ports")
	}
	if c.Game.BoardSize == 0 {
		t.Fatal("expected a nonzero default board size")
	}
}

func TestLoadMissingDefaultPathIsNotAnError(t *testing.T) {
	c, err := Load("/nonexistent/path/go-gw.toml", true)
	if err != nil {
		t.Fatal(err)
	}
	if c.TCP.Port != Default().TCP.Port {
		t.Fatal("expected the default configuration back")
	}
}

func TestLoadMissingExplicitPathIsAnError(t *testing.T) {
	if _, err := Load("/nonexistent/path/go-gw.toml", false); err == nil {
		t.Fatal("expected an error for an explicitly named missing file")
	}
}

func TestDumpRoundTripsThroughTOML(t *testing.T) {
	c := Default()
	var sb strings.Builder
	if err := c.Dump(&sb); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), "port") {
		t.Fatalf("expected TOML output to mention port, got %q", sb.String())
	}
}

type recordingManager struct {
	name    string
	started chan struct{}
	stopped chan struct{}
}

func newRecordingManager(name string) *recordingManager {
	return &recordingManager{name: name, started: make(chan struct{}, 1), stopped: make(chan struct{}, 1)}
}

func (m *recordingManager) String() string { return m.name }
func (m *recordingManager) Start()         { m.started <- struct{}{} }
func (m *recordingManager) Shutdown()      { m.stopped <- struct{}{} }

func TestRunStartsAndStopsManagers(t *testing.T) {
	c := Default()
	a := newRecordingManager("a")
	b := newRecordingManager("b")
	c.Register(a)
	c.Register(b)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Run(ctx)
	}()

	select {
	case <-a.started:
	case <-time.After(time.Second):
		t.Fatal("manager a never started")
	}
	select {
	case <-b.started:
	case <-time.After(time.Second):
		t.Fatal("manager b never started")
	}

	cancel()
	wg.Wait()

	select {
	case <-a.stopped:
	default:
		t.Fatal("manager a never stopped")
	}
	select {
	case <-b.stopped:
	default:
		t.Fatal("manager b never stopped")
	}
}

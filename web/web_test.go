package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	"go-gw/conf"
	"go-gw/sched"
	"go-gw/session"
	"go-gw/supervisor"
)

func newTestServer() *Server {
	reg := session.New()
	sc := sched.New()
	sup := supervisor.New(reg, sc)
	sup.Start()
	return New(conf.WebConf{Host: "127.0.0.1", Port: 0}, sup)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	s := newTestServer()
	defer s.sup.Shutdown()

	router := httprouter.New()
	router.POST("/login", s.handleLogin)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"user_id":"alice","password":"pw"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Fatal("expected a session cookie to be set")
	}
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	s := newTestServer()
	defer s.sup.Shutdown()

	router := httprouter.New()
	router.POST("/login", s.handleLogin)

	login := func(password string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"user_id":"bob","password":"`+password+`"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	if rec := login("correct"); rec.Code != http.StatusOK {
		t.Fatalf("first login should create the user, got %d", rec.Code)
	}
	if rec := login("wrong"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a wrong password, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer()
	defer s.sup.Shutdown()

	router := httprouter.New()
	router.GET("/healthz", s.handleHealthz)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

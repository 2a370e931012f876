// The HTTP login / cookie-session boundary and WebSocket mount,
// wired as a conf.Manager the same way the teacher's web/manage.go
// wires its own HTTP server.
//
// Copyright (c) 2021, 2022, 2023  Philip Kaludercic
//
// This file is part of go-kgp.
//
// go-kgp is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License,
// version 3, as published by the Free Software Foundation.
//
// go-kgp is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with go-kgp . If not, see
// <http://www.gnu.org/licenses/>

// Package web implements spec §6's out-of-core HTTP boundary: a
// /login endpoint that checks credentials against the Supervisor
// synchronously and sets a session cookie, a /logout endpoint, and
// (when enabled) the /ws/ WebSocket upgrade mount. None of this
// package mutates game state directly; every request either reads a
// cookie or performs exactly one synchronous round-trip through
// supervisor.ConnectCmd's Reply channel.
package web

import (
	"crypto/rand"
	"encoding/json"
	"net/http"
	"os"

	"github.com/gorilla/sessions"
	"github.com/julienschmidt/httprouter"

	"go-gw/conf"
	"go-gw/internal/glog"
	"go-gw/supervisor"
	"go-gw/transport"
)

const sessionCookieName = "go-gw-session"

// Server is a conf.Manager wrapping the HTTP listener.
type Server struct {
	cfg   conf.WebConf
	sup   *supervisor.Supervisor
	store *sessions.CookieStore
	srv   *http.Server
}

// New builds the HTTP server. The session key follows the original
// relay server's PRIVATE_KEY environment-variable convention: if
// cfg.SessionKey is empty, GW_PRIVATE_KEY is consulted, and failing
// that a random key is generated (sessions then do not survive a
// process restart).
func New(cfg conf.WebConf, sup *supervisor.Supervisor) *Server {
	key := cfg.SessionKey
	if key == "" {
		key = os.Getenv("GW_PRIVATE_KEY")
	}
	if key == "" {
		glog.Log.Print("GW_PRIVATE_KEY not set, generating an ephemeral session key")
		key = randomKey(32)
	}
	store := sessions.NewCookieStore([]byte(key))
	return &Server{cfg: cfg, sup: sup, store: store}
}

func randomKey(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return string(b)
}

func (s *Server) String() string { return "WebServer(" + s.cfg.Addr() + ")" }

// corsPermissive mirrors the original server's actix_cors::permissive
// middleware: this API is meant to be called from arbitrary game
// clients, not just same-origin browser pages.
func corsPermissive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type loginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

type indexResponse struct {
	UserID *string `json:"user_id"`
	Msg    *string `json:"msg"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, _ := s.store.Get(r, sessionCookieName)
	resp := indexResponse{}
	if v, ok := sess.Values["user_id"].(string); ok {
		resp.UserID = &v
	}
	if v, ok := sess.Values["token"].(string); ok {
		resp.Msg = &v
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	reply := make(chan supervisor.ConnectReply, 1)
	s.sup.Submit(supervisor.ConnectCmd{UserID: req.UserID, Password: req.Password, Reply: reply})
	res := <-reply

	if res.Err != nil {
		msg := res.Err.Error()
		writeJSON(w, http.StatusUnauthorized, indexResponse{UserID: &req.UserID, Msg: &msg})
		return
	}

	sess, _ := s.store.Get(r, sessionCookieName)
	sess.Values["user_id"] = req.UserID
	sess.Values["token"] = res.Result.Token
	if err := sess.Save(r, w); err != nil {
		glog.Debug.Printf("session save: %v", err)
	}

	alert := res.Result.Alert
	writeJSON(w, http.StatusOK, indexResponse{UserID: &req.UserID, Msg: &alert})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, _ := s.store.Get(r, sessionCookieName)
	userID, ok := sess.Values["user_id"].(string)
	if !ok {
		w.Write([]byte("could not log out anonymous user"))
		return
	}
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		glog.Debug.Printf("session save: %v", err)
	}
	s.sup.Submit(supervisor.DisconnectCmd{UserID: userID})
	w.Write([]byte("logged out: " + userID))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) Start() {
	router := httprouter.New()
	router.GET("/", s.handleIndex)
	router.POST("/login", s.handleLogin)
	router.POST("/logout", s.handleLogout)
	router.GET("/healthz", s.handleHealthz)
	if s.cfg.Websocket {
		router.GET("/ws/", httpHandlerToRouter(transport.UpgradeHandler(s.sup)))
	}

	s.srv = &http.Server{Addr: s.cfg.Addr(), Handler: corsPermissive(router)}
	glog.Log.Printf("listening via HTTP on %s", s.cfg.Addr())
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		glog.Log.Print(err)
	}
}

func (s *Server) Shutdown() {
	if s.srv != nil {
		_ = s.srv.Close()
	}
}

func httpHandlerToRouter(h http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h(w, r)
	}
}

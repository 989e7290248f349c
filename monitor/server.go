// Copyright 2024-present the taskqueue authors. All rights reserved.
// Use of this source code is governed by a MIT-license.
// See LICENSE.txt for details.

// Package monitor exposes a read-only view of a queue to operators: a
// JSON snapshot endpoint and a websocket feed with periodic state pushes.
package monitor

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mailpipe/taskqueue"
)

const defaultPushInterval = 1 * time.Second

// State is one update pushed to websocket clients.
type State struct {
	Type       string             `json:"type"`
	Snapshot   taskqueue.Snapshot `json:"snapshot"`
	Processing []*taskqueue.Task  `json:"processing,omitempty"`
	Failed     []*taskqueue.Task  `json:"failed,omitempty"`
}

// Server serves the monitoring endpoints for a single queue.
type Server struct {
	q        *taskqueue.Queue
	interval time.Duration
}

// New initializes a new Server for q.
func New(q *taskqueue.Queue, options ...ServerOption) *Server {
	srv := &Server{
		q:        q,
		interval: defaultPushInterval,
	}
	for _, opt := range options {
		opt(srv)
	}
	return srv
}

// ServerOption is the signature of an options provider.
type ServerOption func(*Server)

// SetPushInterval sets how often websocket clients receive a new State.
func SetPushInterval(d time.Duration) ServerOption {
	return func(srv *Server) {
		if d > 0 {
			srv.interval = d
		}
	}
}

// Handler returns the mux with the monitoring routes: /status for a
// one-shot JSON snapshot and /ws for the websocket feed.
func (srv *Server) Handler() http.Handler {
	r := http.NewServeMux()
	r.HandleFunc("/status", srv.serveStatus)
	r.HandleFunc("/ws", srv.serveWS)
	return r
}

// state assembles the full update sent to clients.
func (srv *Server) state() *State {
	return &State{
		Type:       "SET_STATE",
		Snapshot:   srv.q.Status(),
		Processing: srv.q.ListProcessing(),
		Failed:     srv.q.ListFailed(10),
	}
}

func (srv *Server) serveStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(srv.q.Status()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

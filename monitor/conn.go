// Portions of this code are:
// Copyright 2013 The Gorilla WebSocket Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package monitor

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mailpipe/taskqueue"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// connection is a middleman between one websocket peer and the queue.
type connection struct {
	ws   *websocket.Conn
	send chan []byte // outbound messages besides the periodic state push
	srv  *Server
}

// serveWS handles websocket requests from the peer.
func (srv *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("%v", err)
		return
	}
	c := &connection{send: make(chan []byte, 256), ws: ws, srv: srv}
	go c.writePump()
	c.readPump()
}

// readPump reads requests from the websocket connection. The only request
// type is TASK_LOOKUP; the response goes out through the send channel so
// that writePump remains the single writer.
func (c *connection) readPump() {
	defer c.ws.Close()
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error { c.ws.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		var msg struct {
			Type string `json:"type"`
			ID   string `json:"id"`
		}
		err := c.ws.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway) {
				log.Printf("%v", err)
			}
			close(c.send)
			return
		}
		switch msg.Type {
		case "TASK_LOOKUP":
			var rsp struct {
				Type    string          `json:"type"`
				Message string          `json:"message,omitempty"`
				Task    *taskqueue.Task `json:"task,omitempty"`
			}
			rsp.Type = "TASK_LOOKUP"
			if t, ok := c.srv.q.Lookup(msg.ID); ok {
				rsp.Task = t
			} else {
				rsp.Message = "Task cannot be found"
			}
			payload, _ := json.Marshal(rsp)
			c.send <- payload
		}
	}
}

// write writes a message with the given message type and payload.
func (c *connection) write(mt int, payload []byte) error {
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(mt, payload)
}

// writePump pushes queue state to the peer on every tick, forwards
// lookup responses, and keeps the connection alive with pings.
func (c *connection) writePump() {
	stateTicker := time.NewTicker(c.srv.interval)
	pingTicker := time.NewTicker(pingPeriod)
	defer func() {
		stateTicker.Stop()
		pingTicker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(websocket.TextMessage, message); err != nil {
				return
			}
		case <-stateTicker.C:
			v, err := json.Marshal(c.srv.state())
			if err != nil {
				log.Printf("%v", err)
				return
			}
			if err := c.write(websocket.TextMessage, v); err != nil {
				return
			}
		case <-pingTicker.C:
			if err := c.write(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}

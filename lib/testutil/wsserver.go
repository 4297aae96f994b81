// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketPath is the endpoint path served by [WebSocketServer].
const WebSocketPath = "/stream"

// WebSocketServer accepts WebSocket connections on an httptest server.
// Each accepted connection is delivered to the test through Accept.
type WebSocketServer struct {
	server      *httptest.Server
	upgrader    websocket.Upgrader
	connections chan *ServerConn

	mutex    sync.Mutex
	accepted []*ServerConn
	refuse   bool
}

// ServerConn is the server side of one accepted connection. A
// background goroutine reads every frame the client sends into
// Frames; the goroutine exits, and Done closes, when the connection
// ends.
type ServerConn struct {
	conn       *websocket.Conn
	frames     chan []byte
	done       chan struct{}
	writeMutex sync.Mutex
}

// NewWebSocketServer starts a server and registers its shutdown with
// t.Cleanup.
func NewWebSocketServer(t testing.TB) *WebSocketServer {
	t.Helper()
	server := &WebSocketServer{
		connections: make(chan *ServerConn, 16),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc(WebSocketPath, server.handle)
	server.server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// URL returns the ws:// URL of the endpoint.
func (server *WebSocketServer) URL() string {
	return "ws" + strings.TrimPrefix(server.server.URL, "http") + WebSocketPath
}

// Refuse makes the server reject upgrade requests (when refuse is
// true) so that dials fail, or accept them again.
func (server *WebSocketServer) Refuse(refuse bool) {
	server.mutex.Lock()
	server.refuse = refuse
	server.mutex.Unlock()
}

// Accept returns the next connection the server accepted, or fails the
// test after timeout.
func (server *WebSocketServer) Accept(t testing.TB, timeout time.Duration) *ServerConn {
	t.Helper()
	return RequireReceive(t, server.connections, timeout, "waiting for a client connection")
}

// Connections returns the channel accepted connections are delivered
// on. Use it with RequireNoReceive to assert that no connection was
// attempted.
func (server *WebSocketServer) Connections() <-chan *ServerConn {
	return server.connections
}

// Close drops every accepted connection and shuts the server down.
func (server *WebSocketServer) Close() {
	server.mutex.Lock()
	accepted := server.accepted
	server.accepted = nil
	server.mutex.Unlock()
	for _, conn := range accepted {
		conn.Close()
	}
	server.server.Close()
}

func (server *WebSocketServer) handle(writer http.ResponseWriter, request *http.Request) {
	server.mutex.Lock()
	refuse := server.refuse
	server.mutex.Unlock()
	if refuse {
		http.Error(writer, "refusing connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := server.upgrader.Upgrade(writer, request, nil)
	if err != nil {
		return
	}
	serverConn := &ServerConn{
		conn:   conn,
		frames: make(chan []byte, 64),
		done:   make(chan struct{}),
	}
	go serverConn.readLoop()

	server.mutex.Lock()
	server.accepted = append(server.accepted, serverConn)
	server.mutex.Unlock()
	server.connections <- serverConn
}

func (conn *ServerConn) readLoop() {
	defer close(conn.done)
	for {
		_, frame, err := conn.conn.ReadMessage()
		if err != nil {
			return
		}
		conn.frames <- frame
	}
}

// Receive returns the next frame the client sent, or fails the test.
func (conn *ServerConn) Receive(t testing.TB, timeout time.Duration) []byte {
	t.Helper()
	return RequireReceive(t, conn.frames, timeout, "waiting for a client frame")
}

// Frames returns the channel of frames received from the client.
func (conn *ServerConn) Frames() <-chan []byte {
	return conn.frames
}

// Send writes one text frame to the client, or fails the test.
func (conn *ServerConn) Send(t testing.TB, frame []byte) {
	t.Helper()
	conn.writeMutex.Lock()
	defer conn.writeMutex.Unlock()
	if err := conn.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("writing frame to client: %v", err)
	}
}

// Close drops the connection without a close handshake, which the
// client observes as an unexpected disconnect.
func (conn *ServerConn) Close() {
	conn.conn.Close()
}

// Done is closed once the connection has ended.
func (conn *ServerConn) Done() <-chan struct{} {
	return conn.done
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package teleop

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
)

// Reply sent after every applied controller state
const replyDone = "Done"

// Server accepts controller states over WebSocket. Text messages carry
// JSON, binary messages carry CBOR. Every message is answered with "Done"
// or "Error: <reason>".
type Server struct {
	controller *Controller
	upgrader   websocket.Upgrader

	// KillOnDisconnect stops the motors when a client goes away.
	KillOnDisconnect bool
}

// NewServer creates a server for controller
func NewServer(controller *Controller) *Server {
	return &Server{
		controller: controller,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		KillOnDisconnect: true,
	}
}

// ServeHTTP upgrades the request and handles messages until the client
// disconnects
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.Warningf("teleop: upgrade from %s failed: %v", r.RemoteAddr, err)
		return
	}
	defer conn.Close()

	glog.Infof("teleop: client %s connected", r.RemoteAddr)
	defer func() {
		glog.Infof("teleop: client %s disconnected", r.RemoteAddr)
		if s.KillOnDisconnect {
			_ = s.controller.Kill()
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				glog.Warningf("teleop: read from %s: %v", r.RemoteAddr, err)
			}
			return
		}

		reply := s.handle(messageType, data)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
			glog.Warningf("teleop: write to %s: %v", r.RemoteAddr, err)
			return
		}
	}
}

// handle decodes and applies one message and returns the reply text
func (s *Server) handle(messageType int, data []byte) string {
	var (
		state ControllerState
		err   error
	)
	switch messageType {
	case websocket.TextMessage:
		state, err = DecodeJSON(data)
	case websocket.BinaryMessage:
		state, err = DecodeCBOR(data)
	default:
		return "Error: unsupported message type"
	}
	if err != nil {
		return "Error: " + err.Error()
	}

	if err := s.controller.Apply(state); err != nil {
		glog.Warningf("teleop: apply: %v", err)
		return "Error: " + err.Error()
	}
	return replyDone
}

// ListenAndServe serves on addr until ctx is cancelled, then stops the
// motors
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/", s)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		glog.Infof("teleop: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		_ = s.controller.Kill()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if killErr := s.controller.Kill(); killErr != nil {
		err = errors.Join(err, killErr)
	}
	if serveErr := <-errCh; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return err
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/roboclaw/pkg/roboclaw"
)

// newBridgeServer serves a serial bridge backed by a simulator. Answers are
// split into one-byte frames to exercise reassembly.
func newBridgeServer(t *testing.T, sim *Simulator, wantAuth string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantAuth != "" && r.Header.Get("Authorization") != wantAuth {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			messageType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if messageType != websocket.BinaryMessage {
				continue
			}
			sim.Write(data)

			buf := make([]byte, 64)
			sim.SetReadTimeout(0)
			for {
				n, _ := sim.Read(buf)
				if n == 0 {
					break
				}
				for _, b := range buf[:n] {
					if err := conn.WriteMessage(websocket.BinaryMessage, []byte{b}); err != nil {
						return
					}
				}
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocket_Driver(t *testing.T) {
	sim := NewSimulator(0x80)
	srv := newBridgeServer(t, sim, "")

	stream, err := DialWebSocket(context.Background(), wsURL(srv), WebSocketOptions{})
	require.NoError(t, err)
	defer stream.Close()
	require.Contains(t, stream.Name(), "WebSocket: ws://")

	rc, err := roboclaw.New(stream, roboclaw.Config{Timeout: time.Second, Retries: 2})
	require.NoError(t, err)

	version, err := rc.ReadVersion()
	require.NoError(t, err)
	require.Equal(t, "USB Roboclaw 2x15a v4.1.34", version)

	require.NoError(t, rc.DutyM1(1000))
	m1, _, err := rc.ReadPWMs()
	require.NoError(t, err)
	require.Equal(t, int16(1000), m1)
}

func TestWebSocket_Timeout(t *testing.T) {
	sim := NewSimulator(0x80)
	srv := newBridgeServer(t, sim, "")

	stream, err := DialWebSocket(context.Background(), wsURL(srv), WebSocketOptions{})
	require.NoError(t, err)
	defer stream.Close()

	rc, err := roboclaw.New(stream, roboclaw.Config{Address: 0x80, Timeout: 20 * time.Millisecond, Retries: 2})
	require.NoError(t, err)

	sim.DropNext(1)
	v, err := rc.ReadLogicBatteryVoltage()
	require.NoError(t, err)
	require.InDelta(t, 5.0, v, 1e-9)
	require.Equal(t, uint64(1), rc.Dispatcher().Statistics().Timeouts)
}

func TestWebSocket_BasicAuth(t *testing.T) {
	sim := NewSimulator(0x80)
	auth := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:secret"))
	srv := newBridgeServer(t, sim, auth)

	_, err := DialWebSocket(context.Background(), wsURL(srv), WebSocketOptions{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "HTTP 401")

	stream, err := DialWebSocket(context.Background(), wsURL(srv), WebSocketOptions{Username: "admin", Password: "secret"})
	require.NoError(t, err)
	require.NoError(t, stream.Close())
}

func TestWebSocket_BadScheme(t *testing.T) {
	_, err := DialWebSocket(context.Background(), "http://localhost:1", WebSocketOptions{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported URL scheme")
}

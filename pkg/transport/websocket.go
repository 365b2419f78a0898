// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
)

// ErrConnectionClosed is returned when reading from a closed WebSocket connection
var ErrConnectionClosed = fmt.Errorf("websocket connection closed")

// WebSocketOptions configures a serial bridge connection
type WebSocketOptions struct {
	Username      string
	Password      string
	SkipSSLVerify bool
	// HandshakeTimeout defaults to 10 seconds.
	HandshakeTimeout time.Duration
}

// wsPort carries raw packet serial bytes in binary WebSocket messages.
// A reader goroutine pumps messages into a channel so that a read can time
// out without abandoning a ReadMessage call on the connection.
type wsPort struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	frames  chan []byte
	done    chan struct{}
	readErr error

	buf     []byte
	timeout time.Duration
}

func newWSPort(conn *websocket.Conn) *wsPort {
	w := &wsPort{
		conn:   conn,
		frames: make(chan []byte, 64),
		done:   make(chan struct{}),
	}
	go w.readLoop()
	return w
}

func (w *wsPort) readLoop() {
	defer close(w.frames)
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.readErr = err
			if glog.V(2) {
				glog.Infof("websocket reader stopped: %v", err)
			}
			return
		}

		// Only binary messages carry serial data
		if messageType != websocket.BinaryMessage {
			continue
		}

		select {
		case w.frames <- data:
		case <-w.done:
			return
		}
	}
}

func (w *wsPort) Read(p []byte) (int, error) {
	if len(w.buf) == 0 {
		timer := time.NewTimer(w.timeout)
		defer timer.Stop()

		select {
		case data, ok := <-w.frames:
			if !ok {
				if w.readErr != nil {
					return 0, fmt.Errorf("%w: %v", ErrConnectionClosed, w.readErr)
				}
				return 0, ErrConnectionClosed
			}
			w.buf = data
		case <-timer.C:
			return 0, nil
		}
	}

	n := copy(p, w.buf)
	w.buf = w.buf[n:]
	return n, nil
}

func (w *wsPort) Write(p []byte) (int, error) {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsPort) SetReadTimeout(t time.Duration) error {
	w.timeout = t
	return nil
}

// ResetInputBuffer drops buffered and queued frames
func (w *wsPort) ResetInputBuffer() error {
	w.buf = nil
	for {
		select {
		case _, ok := <-w.frames:
			if !ok {
				return nil
			}
		default:
			return nil
		}
	}
}

func (w *wsPort) Close() error {
	close(w.done)
	w.writeMu.Lock()
	_ = w.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	w.writeMu.Unlock()
	return w.conn.Close()
}

// DialWebSocket connects to a serial bridge with optional HTTP Basic auth
func DialWebSocket(ctx context.Context, wsURL string, opts WebSocketOptions) (*Stream, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	handshake := opts.HandshakeTimeout
	if handshake <= 0 {
		handshake = 10 * time.Second
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: handshake,
	}

	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: opts.SkipSSLVerify,
		}
	}

	headers := http.Header{}
	if opts.Username != "" && opts.Password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(opts.Username + ":" + opts.Password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}

	return NewStream(newWSPort(conn), fmt.Sprintf("WebSocket: %s", wsURL)), nil
}

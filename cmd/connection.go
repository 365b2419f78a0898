// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/Thermoquad/roboclaw/pkg/roboclaw"
	"github.com/Thermoquad/roboclaw/pkg/transport"
)

// Serial backends selectable with --backend
const (
	backendBugst = "bugst"
	backendTarm  = "tarm"
)

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	// First check environment variable
	if pw := os.Getenv("CLAWSTAT_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// OpenTransport opens a serial, WebSocket or simulated link based on flags
func OpenTransport() (*transport.Stream, error) {
	if simulate {
		sim := transport.NewSimulator(roboclaw.Address(deviceAddress))
		return transport.NewStream(sim, "Simulator"), nil
	}

	if wsURL != "" {
		password := ""
		if wsUsername != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, err
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return transport.DialWebSocket(ctx, wsURL, transport.WebSocketOptions{
			Username:      wsUsername,
			Password:      password,
			SkipSSLVerify: wsNoSSLVerify,
		})
	}

	if portName != "" {
		opts := transport.PortOptions{BaudRate: baudRate}
		switch serialBackend {
		case backendBugst:
			return transport.OpenSerial(portName, opts)
		case backendTarm:
			return transport.OpenTarm(portName, opts)
		default:
			return nil, fmt.Errorf("unknown serial backend %q (use %s or %s)", serialBackend, backendBugst, backendTarm)
		}
	}

	return nil, fmt.Errorf("one of --port, --url or --simulate must be specified")
}

// OpenDriver opens the link and creates a driver for --address
func OpenDriver() (*roboclaw.Roboclaw, *transport.Stream, error) {
	if addr := roboclaw.Address(deviceAddress); !addr.Valid() {
		return nil, nil, fmt.Errorf("invalid --address 0x%02X: must be 0x%02X-0x%02X",
			deviceAddress, uint8(roboclaw.AddressMin), uint8(roboclaw.AddressMax))
	}

	stream, err := OpenTransport()
	if err != nil {
		return nil, nil, err
	}

	rc, err := roboclaw.New(stream, roboclaw.Config{
		Address: roboclaw.Address(deviceAddress),
		Timeout: readTimeout,
		Retries: retries,
	})
	if err != nil {
		stream.Close()
		return nil, nil, err
	}
	return rc, stream, nil
}

// printStatistics prints the dispatcher counters of rc
func printStatistics(rc *roboclaw.Roboclaw) {
	stats := rc.Dispatcher().Statistics()
	fmt.Print(stats.String())
}

// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/roboclaw/pkg/roboclaw"
	"github.com/Thermoquad/roboclaw/pkg/teleop"
	"github.com/Thermoquad/roboclaw/pkg/transport"
)

var (
	teleopListen           string
	teleopKickPort         string
	teleopKickAddress      uint8
	teleopKillOnDisconnect bool
)

var teleopCmd = &cobra.Command{
	Use:   "teleop",
	Short: "Serve gamepad tank-drive control over WebSocket",
	Long: `Accept gamepad states over WebSocket and drive the motors.

Text messages are JSON objects with right_stick_y, left_stick_y,
right_trigger and left_trigger (and optionally motor_kill). Binary messages
carry the same state as a CBOR map with integer keys 0..4. Every message is
answered with "Done" or "Error: <reason>".

The right stick drives M1 and the inverted left stick drives M2 of the
controller at --address. The trigger difference drives a kicker motor,
either on a second serial port (--kick-port) or at another address on the
same link (--kick-address). All motors stop on shutdown.`,
	RunE: runTeleop,
}

func init() {
	rootCmd.AddCommand(teleopCmd)
	teleopCmd.Flags().StringVarP(&teleopListen, "listen", "l", ":5555", "Listen address")
	teleopCmd.Flags().StringVar(&teleopKickPort, "kick-port", "", "Serial port of the kicker controller")
	teleopCmd.Flags().Uint8Var(&teleopKickAddress, "kick-address", 0, "Kicker controller address (0 disables the kicker)")
	teleopCmd.Flags().BoolVar(&teleopKillOnDisconnect, "kill-on-disconnect", true, "Stop motors when a client disconnects")
}

// openKicker creates the kicker driver, if any
func openKicker(wheels *roboclaw.Roboclaw) (*roboclaw.Roboclaw, func(), error) {
	address := roboclaw.Address(teleopKickAddress)
	if teleopKickPort == "" && address == 0 {
		return nil, func() {}, nil
	}

	if teleopKickPort == "" {
		kicker, err := wheels.At(address)
		return kicker, func() {}, err
	}

	stream, err := transport.OpenSerial(teleopKickPort, transport.PortOptions{BaudRate: baudRate})
	if err != nil {
		return nil, nil, err
	}
	kicker, err := roboclaw.New(stream, roboclaw.Config{
		Address: address,
		Timeout: readTimeout,
		Retries: retries,
	})
	if err != nil {
		stream.Close()
		return nil, nil, err
	}
	return kicker, func() { stream.Close() }, nil
}

func runTeleop(cmd *cobra.Command, args []string) error {
	wheels, stream, err := OpenDriver()
	if err != nil {
		return err
	}
	defer stream.Close()

	kicker, closeKicker, err := openKicker(wheels)
	if err != nil {
		return fmt.Errorf("kicker: %w", err)
	}
	defer closeKicker()

	controller, err := teleop.NewController(wheels, kicker)
	if err != nil {
		return err
	}

	server := teleop.NewServer(controller)
	server.KillOnDisconnect = teleopKillOnDisconnect

	fmt.Printf("Clawstat - Teleop\n")
	fmt.Printf("Connection: %s\n", stream.Name())
	fmt.Printf("Wheels: 0x%02X\n", uint8(wheels.Address()))
	if kicker != nil {
		fmt.Printf("Kicker: 0x%02X\n", uint8(kicker.Address()))
	}
	fmt.Printf("Listening on %s\n", teleopListen)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.ListenAndServe(ctx, teleopListen)
}

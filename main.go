// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Clawstat - RoboClaw packet serial tool
//
// A CLI tool for driving, monitoring and tuning RoboClaw motor controllers
// over serial or a WebSocket serial bridge.

package main

import (
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/Thermoquad/roboclaw/cmd"
)

func main() {
	err := cmd.Execute()
	glog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

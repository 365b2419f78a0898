// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/roboclaw/pkg/roboclaw"
	"github.com/Thermoquad/roboclaw/pkg/transport"
)

var commandsCategory string

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the supported packet serial commands",
	Long: `List every command in the catalog with its code, category, argument
fields and reply shape. Use --category to filter (motion, telemetry or
config).`,
	Args: cobra.NoArgs,
	RunE: runCommands,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports present on this system",
	Args:  cobra.NoArgs,
	RunE:  runPorts,
}

func init() {
	rootCmd.AddCommand(commandsCmd, portsCmd)
	commandsCmd.Flags().StringVar(&commandsCategory, "category", "", "Only list one category")
}

func runCommands(cmd *cobra.Command, args []string) error {
	count := 0
	for _, spec := range roboclaw.Catalog() {
		if commandsCategory != "" && !strings.EqualFold(spec.Category.String(), commandsCategory) {
			continue
		}
		fmt.Println(roboclaw.FormatSpec(spec))
		count++
	}
	if count == 0 {
		return fmt.Errorf("no commands in category %q", commandsCategory)
	}
	return nil
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := transport.ListSerialPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}

// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var eepromCmd = &cobra.Command{
	Use:   "eeprom",
	Short: "Read or write user EEPROM words",
}

var eepromReadCmd = &cobra.Command{
	Use:   "read <address> [count]",
	Short: "Read one or more 16-bit EEPROM words",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runEEPROMRead,
}

var eepromWriteCmd = &cobra.Command{
	Use:   "write <address> <value>",
	Short: "Write a 16-bit EEPROM word",
	Args:  cobra.ExactArgs(2),
	RunE:  runEEPROMWrite,
}

func init() {
	rootCmd.AddCommand(eepromCmd)
	eepromCmd.AddCommand(eepromReadCmd, eepromWriteCmd)
}

func parseEEPROMAddress(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid EEPROM address %q: must be 0..255", s)
	}
	return uint8(v), nil
}

func runEEPROMRead(cmd *cobra.Command, args []string) error {
	start, err := parseEEPROMAddress(args[0])
	if err != nil {
		return err
	}
	count := 1
	if len(args) == 2 {
		count, err = strconv.Atoi(args[1])
		if err != nil || count < 1 || int(start)+count > 256 {
			return fmt.Errorf("invalid count %q", args[1])
		}
	}

	rc, stream, err := OpenDriver()
	if err != nil {
		return err
	}
	defer stream.Close()

	for i := 0; i < count; i++ {
		addr := start + uint8(i)
		value, err := rc.ReadEEPROM(addr)
		if err != nil {
			return err
		}
		fmt.Printf("0x%02X: 0x%04X (%d)\n", addr, value, value)
	}
	return nil
}

func runEEPROMWrite(cmd *cobra.Command, args []string) error {
	addr, err := parseEEPROMAddress(args[0])
	if err != nil {
		return err
	}
	value, err := strconv.ParseUint(args[1], 0, 16)
	if err != nil {
		return fmt.Errorf("invalid value %q: must be 0..65535", args[1])
	}

	rc, stream, err := OpenDriver()
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := rc.WriteEEPROM(addr, uint16(value)); err != nil {
		return err
	}
	fmt.Printf("0x%02X <- 0x%04X\n", addr, value)
	return nil
}

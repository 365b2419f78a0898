// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/roboclaw/pkg/roboclaw"
)

var (
	linkCount         int
	linkQuery         string
	linkDelay         time.Duration
	linkStatsInterval int
	linkUseTUI        bool
)

// linkQueries are the read-only calls a link test can repeat
var linkQueries = map[string]func(*roboclaw.Roboclaw) error{
	"version": func(rc *roboclaw.Roboclaw) error {
		_, err := rc.ReadVersion()
		return err
	},
	"battery": func(rc *roboclaw.Roboclaw) error {
		_, err := rc.ReadMainBatteryVoltage()
		return err
	},
	"encoders": func(rc *roboclaw.Roboclaw) error {
		_, _, err := rc.ReadEncoders()
		return err
	},
	"status": func(rc *roboclaw.Roboclaw) error {
		_, err := rc.ReadStatus()
		return err
	},
	"telemetry": func(rc *roboclaw.Roboclaw) error {
		_, err := rc.ReadTelemetry()
		return err
	},
}

func linkQueryNames() string {
	names := make([]string, 0, len(linkQueries))
	for name := range linkQueries {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

var linkTestCmd = &cobra.Command{
	Use:   "link_test",
	Short: "Measure link quality with repeated queries",
	Long: `Repeat a read-only query and track dispatcher statistics.

Every call goes through the normal retry loop, so the statistics show how
many attempts failed with checksum errors, short reads, timeouts or
transport errors, and how many calls failed outright.

Statistics are displayed at a configurable interval, or live in the
terminal UI.`,
	RunE: runLinkTest,
}

func init() {
	rootCmd.AddCommand(linkTestCmd)
	linkTestCmd.Flags().IntVarP(&linkCount, "count", "n", 0, "Number of calls (0 runs until interrupted)")
	linkTestCmd.Flags().StringVar(&linkQuery, "query", "version", "Query to repeat ("+linkQueryNames()+")")
	linkTestCmd.Flags().DurationVar(&linkDelay, "delay", 10*time.Millisecond, "Pause between calls")
	linkTestCmd.Flags().IntVar(&linkStatsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	linkTestCmd.Flags().BoolVar(&linkUseTUI, "tui", false, "Use terminal UI")
}

func runLinkTest(cmd *cobra.Command, args []string) error {
	query, ok := linkQueries[linkQuery]
	if !ok {
		return fmt.Errorf("unknown query %q (use %s)", linkQuery, linkQueryNames())
	}

	rc, stream, err := OpenDriver()
	if err != nil {
		return err
	}
	defer stream.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if linkUseTUI {
		return runLinkTUI(ctx, rc, stream.Name(), query)
	}
	return runLinkText(ctx, rc, stream.Name(), query)
}

// runLinkCalls issues calls until count is reached or ctx is done
func runLinkCalls(ctx context.Context, rc *roboclaw.Roboclaw, query func(*roboclaw.Roboclaw) error, result func(linkResultMsg)) {
	for i := 0; linkCount == 0 || i < linkCount; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		start := time.Now()
		err := query(rc)
		result(linkResultMsg{command: linkQuery, latency: time.Since(start), err: err})

		if linkDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(linkDelay):
			}
		}
	}
}

func runLinkTUI(ctx context.Context, rc *roboclaw.Roboclaw, connInfo string, query func(*roboclaw.Roboclaw) error) error {
	m := initialLinkModel(rc, connInfo, linkQuery, linkStatsInterval)
	p := tea.NewProgram(m)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go runLinkCalls(ctx, rc, query, func(msg linkResultMsg) { p.Send(msg) })

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	cancel()

	printStatistics(rc)
	return nil
}

func runLinkText(ctx context.Context, rc *roboclaw.Roboclaw, connInfo string, query func(*roboclaw.Roboclaw) error) error {
	fmt.Printf("Clawstat - Link Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Address: 0x%02X, query: %s\n", uint8(rc.Address()), linkQuery)
	fmt.Printf("Statistics interval: %d seconds\n", linkStatsInterval)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	results := make(chan linkResultMsg, 10)
	go func() {
		defer close(results)
		runLinkCalls(ctx, rc, query, func(msg linkResultMsg) { results <- msg })
	}()

	var ticker <-chan time.Time
	if linkStatsInterval > 0 {
		t := time.NewTicker(time.Duration(linkStatsInterval) * time.Second)
		defer t.Stop()
		ticker = t.C
	}

	for {
		select {
		case msg, ok := <-results:
			if !ok {
				fmt.Println()
				printStatistics(rc)
				return nil
			}
			if msg.err != nil {
				timestamp := time.Now().Format("15:04:05.000")
				fmt.Printf("[%s] \033[1;31mCALL FAILED:\033[0m %v\n", timestamp, msg.err)
			}

		case <-ticker:
			fmt.Println()
			printStatistics(rc)
			fmt.Println()
		}
	}
}

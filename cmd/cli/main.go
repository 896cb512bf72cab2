// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/swictation/swictation/internal/ipc"
	"github.com/swictation/swictation/internal/utils"
)

const defaultTimeout = 5 * time.Second

func main() {
	var (
		socketPath string
		jsonOutput bool
		timeoutSec int
	)

	flag.StringVar(&socketPath, "socket", "", "Path to IPC socket (defaults to user runtime path)")
	flag.BoolVar(&jsonOutput, "json", false, "Print responses as JSON")
	flag.IntVar(&timeoutSec, "timeout", 0, "Override timeout in seconds for the command")
	flag.Usage = func() {
		usageWriter := flag.CommandLine.Output()
		fmt.Fprintf(usageWriter, "Usage: %s [flags] <action>\n\n", os.Args[0])
		fmt.Fprintln(usageWriter, "Actions:")
		fmt.Fprintln(usageWriter, "  toggle   Start or stop the current session")
		fmt.Fprintln(usageWriter, "  status   Show the current daemon state and counters")
		fmt.Fprintln(usageWriter, "  quit     Ask the daemon to shut down")
		fmt.Fprintln(usageWriter, "\nFlags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if socketPath == "" {
		socketPath = utils.GetDefaultSocketPath()
	}

	action := strings.ToLower(args[0])
	if action != "toggle" && action != "status" && action != "quit" {
		fmt.Fprintf(os.Stderr, "Unknown action: %s\n", action)
		flag.Usage()
		os.Exit(2)
	}

	timeout := defaultTimeout
	if timeoutSec > 0 {
		timeout = time.Duration(timeoutSec) * time.Second
	}

	resp, err := ipc.SendRequest(socketPath, ipc.Request{Action: action}, timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		if err := json.NewEncoder(os.Stdout).Encode(resp); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode response: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printResponse(action, resp)
}

func printResponse(action string, resp ipc.Response) {
	if !resp.OK {
		fmt.Fprintf(os.Stderr, "Error: %s\n", resp.Error)
		os.Exit(1)
	}

	switch action {
	case "toggle", "status":
		fmt.Println(resp.State)
		for _, key := range []string{"vad_active", "frames_dropped", "queue_depths"} {
			if v, ok := resp.Counters[key]; ok {
				fmt.Printf("  %s: %v\n", key, v)
			}
		}
	case "quit":
		fmt.Println("Shutting down.")
	}
}

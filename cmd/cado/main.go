// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// cado is the terminal client for a cado notebook server. It keeps one
// WebSocket connection to the server open, reconnecting a bounded
// number of times, and shows the notebook listing or the open
// notebook's cells.
//
// Settings come from config.json in the working directory (or the file
// named by --config); a few flags override individual keys. Log
// records at warn and above appear in the status bar; --log-output
// also writes every record as JSON to a file.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/cado/lib/config"
	"github.com/bureau-foundation/cado/lib/connection"
	"github.com/bureau-foundation/cado/lib/notebookui"
	"github.com/bureau-foundation/cado/lib/protocol"
	"github.com/bureau-foundation/cado/lib/session"
	"github.com/bureau-foundation/cado/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// flags holds the command-line overrides.
type flags struct {
	configPath    string
	host          string
	port          int
	frameEncoding string
	logOutput     string
}

func run() error {
	var options flags
	flagSet := pflag.NewFlagSet("cado", pflag.ContinueOnError)
	flagSet.StringVar(&options.configPath, "config", config.DefaultPath, "configuration file (JSON with comments, or YAML)")
	flagSet.StringVar(&options.host, "host", "", "server host, optionally with a port (overrides the config file)")
	flagSet.IntVar(&options.port, "port", 0, "server port (overrides the config file)")
	flagSet.StringVar(&options.frameEncoding, "frame-encoding", "", "inbound frame encoding: auto, single, or double")
	flagSet.StringVar(&options.logOutput, "log-output", "", "write JSON log records to this file (in addition to the status bar)")
	flagSet.Bool("version", false, "print version information and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if showVersion, _ := flagSet.GetBool("version"); showVersion {
		fmt.Println("cado " + version.Full())
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	settings, err := loadSettings(flagSet, options)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("cado needs an interactive terminal on stdout")
	}

	tuiHandler := notebookui.NewLogHandler(slog.LevelWarn)
	var logger *slog.Logger
	if options.logOutput != "" {
		fileHandler, closeFile, err := openFileLogHandler(options.logOutput)
		if err != nil {
			return fmt.Errorf("cannot open log file %s: %w", options.logOutput, err)
		}
		defer closeFile()
		logger = slog.New(fanoutHandler{tuiHandler, fileHandler})
	} else {
		logger = slog.New(tuiHandler)
	}

	manager := connection.New(connection.Options{
		URL:               settings.URL(),
		ReconnectAttempts: managerAttempts(settings.ReconnectAttempts),
		ReconnectInterval: settings.ReconnectDelay(),
		Codec:             protocol.Codec{Encoding: settings.Encoding()},
		Logger:            logger.With("component", "connection"),
	})
	notebookSession, err := session.New(manager, session.Options{
		Bindings: notebookui.TerminalBindings(),
		Logger:   logger.With("component", "session"),
	})
	if err != nil {
		return err
	}

	model := notebookui.New(notebookSession, notebookui.Options{Logger: logger.With("component", "viewer")})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithReportFocus())
	tuiHandler.SetProgram(program)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger.Info("connecting", "url", settings.URL())
	if err := manager.Start(ctx); err != nil {
		return err
	}
	defer manager.Stop()

	_, err = program.Run()
	return err
}

// loadSettings reads the configuration file and applies the flags the
// user set explicitly.
func loadSettings(flagSet *pflag.FlagSet, options flags) (config.Config, error) {
	settings, err := config.Load(options.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if flagSet.Changed("host") {
		settings.Host = options.host
	}
	if flagSet.Changed("port") {
		settings.Port = options.port
	}
	if flagSet.Changed("frame-encoding") {
		settings.FrameEncoding = options.frameEncoding
	}
	if err := settings.Validate(); err != nil {
		return config.Config{}, err
	}
	return settings, nil
}

// managerAttempts converts the configured attempt budget to the
// connection manager's convention, where zero means the default and a
// negative value disables reconnection.
func managerAttempts(configured int) int {
	if configured == 0 {
		return -1
	}
	return configured
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `cado: terminal client for a cado notebook server.

Connects to ws://HOST:PORT/stream (settings from config.json) and shows
the notebook listing, or the open notebook's cells.

Usage:
  cado [flags]

Examples:
  # Connect using ./config.json, or the defaults
  cado

  # Connect to another server and keep a debug log
  cado --host notebooks.internal:9000 --log-output cado.log

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

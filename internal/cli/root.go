// Package cli wires the candedit commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"candedit/internal/cid"
	"candedit/internal/tui"
	"candedit/internal/version"
)

// app carries the state shared by every command.
type app struct {
	verbose int
	logFile string

	log     *slog.Logger
	logSink io.Closer
}

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	a := &app{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	root := &cobra.Command{
		Use:   "candedit [file.cid]",
		Short: "Edit CANDE input decks",
		Long: `candedit - CANDE input deck editor

Opens a .cid deck in a terminal editor when run without a subcommand.
The subcommands apply the same edits in batch:
  - reassign material and step numbers of selected elements
  - create interface elements between beams and the surrounding soil
  - run editing scripts, export mesh images, check deck consistency

Records the editor does not change are written back byte for byte.`,
		Version:       version.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// the editor owns the terminal, so it only logs to a file
			return a.setupLogging(cmd.ErrOrStderr(), cmd.Parent() == nil)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		RunE: a.runEditor,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetVersionTemplate(version.String() + "\n")

	root.PersistentFlags().CountVarP(&a.verbose, "verbose", "v", "log more (-v info, -vv debug)")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "write logs to this file instead of stderr")

	root.AddCommand(
		newInfoCmd(a),
		newInterfacesCmd(a),
		newAssignCmd(a),
		newExportCmd(a),
		newRunCmd(a),
		newValidateCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) setupLogging(stderr io.Writer, editor bool) error {
	level := slog.LevelWarn
	switch {
	case a.verbose >= 2:
		level = slog.LevelDebug
	case a.verbose == 1:
		level = slog.LevelInfo
	}
	var w io.Writer = stderr
	switch {
	case a.logFile != "":
		f, err := os.OpenFile(a.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		w, a.logSink = f, f
	case editor:
		w = io.Discard
	}
	a.log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.log)
	return nil
}

func (a *app) close() error {
	if a.logSink == nil {
		return nil
	}
	err := a.logSink.Close()
	a.logSink = nil
	return err
}

func (a *app) runEditor(cmd *cobra.Command, args []string) error {
	var m tui.Model
	if len(args) == 1 {
		m = tui.NewWithPath(args[0], tui.WithLogger(a.log))
	} else {
		m = tui.New(tui.WithLogger(a.log))
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(cmd.Context()))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func (a *app) load(path string) (*cid.Deck, error) {
	return cid.Load(path, cid.WithLogger(a.log))
}

// save writes d to out, or back to src when out is empty.
func (a *app) save(cmd *cobra.Command, d *cid.Deck, src, out string) error {
	if out == "" {
		out = src
	}
	if err := d.Save(out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
	return nil
}

// Package shell implements the interactive command loop of the GophDeck
// client on top of a session.Controller.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/GophDeck/internal/client/document"
	"github.com/atinyakov/GophDeck/internal/client/session"
)

const (
	lockedHelp = "Available commands: new, key <secret>, retry, logout, help, exit"
	readyHelp  = "Available commands: list, add, edit <n>, delete <n>, show-key, whoami, logout, help, exit"
)

// Shell reads commands from in and writes user-facing output to out.
type Shell struct {
	ctl *session.Controller
	in  *bufio.Scanner
	out io.Writer
}

// New returns a shell driving ctl.
func New(ctl *session.Controller, in io.Reader, out io.Writer) *Shell {
	return &Shell{ctl: ctl, in: bufio.NewScanner(in), out: out}
}

// Run resumes a stored session, if any, and processes commands until exit
// or end of input.
func (s *Shell) Run(ctx context.Context) error {
	status, err := s.ctl.Resume(ctx)
	s.reportStatus(status, err)

	for {
		if s.ctl.Ready() {
			fmt.Fprint(s.out, "gophdeck> ")
		} else {
			fmt.Fprint(s.out, "gophdeck (locked)> ")
		}
		if !s.in.Scan() {
			return s.in.Err()
		}
		cmd, rest := splitWord(strings.TrimSpace(s.in.Text()))
		if cmd == "" {
			continue
		}
		if cmd == "exit" {
			fmt.Fprintln(s.out, "Bye")
			return nil
		}
		s.dispatch(ctx, cmd, rest)
	}
}

func (s *Shell) dispatch(ctx context.Context, cmd, rest string) {
	if cmd == "help" {
		if s.ctl.Ready() {
			fmt.Fprintln(s.out, readyHelp)
		} else {
			fmt.Fprintln(s.out, lockedHelp)
		}
		return
	}

	if !s.ctl.Ready() {
		switch cmd {
		case "new":
			secret, err := s.ctl.CreateIdentity(ctx)
			if errors.Is(err, session.ErrSecretStored) {
				fmt.Fprintln(s.out, "A stored secret has not been verified yet. Use 'retry', or 'logout' to discard it first.")
				return
			}
			if err != nil {
				s.fail(err)
				return
			}
			fmt.Fprintf(s.out, "New identity created. Keep this secret safe:\n%s\n", secret)
		case "key":
			if rest == "" {
				fmt.Fprintln(s.out, "Usage: key <secret>")
				return
			}
			status, err := s.ctl.Enter(ctx, rest)
			s.reportStatus(status, err)
		case "retry":
			status, err := s.ctl.Resume(ctx)
			s.reportStatus(status, err)
		case "logout":
			s.logout()
		default:
			fmt.Fprintln(s.out, "Enter a secret with 'key <secret>' or create one with 'new'.")
		}
		return
	}

	switch cmd {
	case "list":
		s.list(ctx)
	case "add":
		name, payload, ok := s.promptRecord()
		if !ok {
			return
		}
		if _, err := s.ctl.SaveCharacter(ctx, nil, name, payload); err != nil {
			s.fail(err)
			return
		}
		fmt.Fprintln(s.out, "Character added")
	case "edit":
		key, ok := s.keyAt(ctx, rest)
		if !ok {
			return
		}
		name, payload, ok := s.promptRecord()
		if !ok {
			return
		}
		if _, err := s.ctl.SaveCharacter(ctx, &key, name, payload); err != nil {
			s.fail(err)
			return
		}
		fmt.Fprintln(s.out, "Character updated")
	case "delete":
		key, ok := s.keyAt(ctx, rest)
		if !ok {
			return
		}
		if err := s.ctl.DeleteCharacter(ctx, key); err != nil {
			s.fail(err)
			return
		}
		fmt.Fprintln(s.out, "Character deleted")
	case "show-key":
		fmt.Fprintln(s.out, s.ctl.Secret())
	case "whoami":
		fmt.Fprintln(s.out, s.ctl.Identity())
	case "logout":
		s.logout()
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
}

func (s *Shell) list(ctx context.Context) {
	records, err := s.ctl.List(ctx)
	if err != nil {
		s.fail(err)
		return
	}
	if len(records) == 0 {
		fmt.Fprintln(s.out, "No characters yet")
		return
	}
	for i, r := range records {
		fmt.Fprintf(s.out, "%d. %s [%s]\n", i+1, r.Name, strings.Join(r.Items(), ", "))
	}
}

// promptRecord asks for a character's name and items on separate lines.
// It reports false at end of input.
func (s *Shell) promptRecord() (string, string, bool) {
	name, ok := s.prompt("Name: ")
	if !ok {
		return "", "", false
	}
	items, ok := s.prompt("Items (comma-separated): ")
	if !ok {
		return "", "", false
	}
	return name, items, true
}

func (s *Shell) prompt(label string) (string, bool) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		fmt.Fprintln(s.out)
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Shell) logout() {
	if err := s.ctl.Logout(); err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintln(s.out, "Logged out")
}

// keyAt resolves a 1-based position in the current list to its record key.
func (s *Shell) keyAt(ctx context.Context, raw string) (document.RecordKey, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		fmt.Fprintln(s.out, "Expected a character number from 'list'")
		return "", false
	}
	records, err := s.ctl.List(ctx)
	if err != nil {
		s.fail(err)
		return "", false
	}
	if n > len(records) {
		fmt.Fprintln(s.out, "Character not found")
		return "", false
	}
	return records[n-1].Key(), true
}

func (s *Shell) reportStatus(status session.Status, err error) {
	switch {
	case errors.Is(err, document.ErrIdentityMismatch):
		fmt.Fprintln(s.out, "Unknown secret. Enter another one or create a new identity.")
	case err != nil:
		s.fail(err)
		if s.ctl.HasStoredSecret() {
			fmt.Fprintln(s.out, "The stored secret is kept. Use 'retry' to try again or 'logout' to forget it.")
		}
	case status == session.StatusReady:
		fmt.Fprintf(s.out, "Welcome back, %s\n", s.ctl.Identity())
	default:
		fmt.Fprintln(s.out, "No secret stored. "+lockedHelp)
	}
}

func (s *Shell) fail(err error) {
	fmt.Fprintf(s.out, "Error: %v\n", err)
}

func splitWord(line string) (string, string) {
	word, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	return word, strings.TrimSpace(rest)
}

package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/stx/log"
	"github.com/ardnew/stx/module"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand] for the edit-expand-retry loop.
// It writes the session source to a temp file, opens the user's editor, and
// expands the result in place of the session. When expansion fails the user
// is prompted to re-edit; declining exits the program.
type editCommand struct {
	session *Session
	ctxFunc func() context.Context
	logger  log.Logger
	code    string
	changed bool
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. It returns [ErrEditDeclined] if the user
// declines to re-edit after a failed expansion.
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()
	content := c.session.Source()

	f, err := os.CreateTemp(os.TempDir(), "stx-repl-*"+module.DefaultExt)
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Close(); err != nil {
		return err
	}

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		content = string(data)
		if strings.TrimSpace(content) == "" {
			return nil
		}

		code, expandErr := c.session.Replace(ctx, content)
		c.logger.TraceContext(ctx, "editor expand attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", expandErr == nil),
		)

		if expandErr == nil {
			c.code, c.changed = code, true

			return nil
		}

		fmt.Fprintf(c.stderr, "\nExpand error: %s\n", expandErr)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// runEditor launches the user's editor on the file at path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}

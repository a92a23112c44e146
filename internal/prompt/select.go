// Package prompt asks the user to pick one of the listed sessions.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/simon/vigil/internal/clierr"
	"github.com/simon/vigil/internal/session"
)

var (
	accentColor = lipgloss.AdaptiveColor{Light: "#D6249F", Dark: "#FF79C6"}
	greenColor  = lipgloss.AdaptiveColor{Light: "#116620", Dark: "#50FA7B"}
	dimColor    = lipgloss.AdaptiveColor{Light: "#777777", Dark: "#6272A4"}
)

type styles struct {
	title    lipgloss.Style
	index    lipgloss.Style
	attached lipgloss.Style
	detached lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:    r.NewStyle().Bold(true).Foreground(accentColor),
		index:    r.NewStyle().Foreground(accentColor).Bold(true),
		attached: r.NewStyle().Foreground(greenColor),
		detached: r.NewStyle().Foreground(dimColor),
	}
}

// Select prints a numbered list of records to out, reads one line from in
// and returns the chosen record. An empty list fails with ErrNoSessions
// without reading. Anything but a number in 1..len(records) fails with
// ErrInvalidSelection; there is no default choice.
func Select(in io.Reader, out io.Writer, action string, records []session.Record) (session.Record, error) {
	if len(records) == 0 {
		return session.Record{}, &clierr.CLIError{
			Category: clierr.CategoryNotFound,
			Kind:     clierr.ErrNoSessions,
			Message:  "no sessions to " + action,
		}
	}

	render(out, action, records)

	line, err := readLine(in)
	if err != nil {
		return session.Record{}, fmt.Errorf("failed to read selection: %w", err)
	}
	return choose(strings.TrimSpace(line), records)
}

// readLine reads up to and including the first newline, one byte at a time,
// so input after it stays in the reader for the ssh child started next.
func readLine(in io.Reader) (string, error) {
	var line []byte
	var b [1]byte
	for {
		n, err := in.Read(b[:])
		if n == 1 {
			if b[0] == '\n' {
				return string(line), nil
			}
			line = append(line, b[0])
		}
		if errors.Is(err, io.EOF) {
			return string(line), nil
		}
		if err != nil {
			return string(line), err
		}
	}
}

func render(out io.Writer, action string, records []session.Record) {
	st := newStyles(out)

	width := len(strconv.Itoa(len(records)))
	nameWidth := 0
	for _, rec := range records {
		if len(rec.Display) > nameWidth {
			nameWidth = len(rec.Display)
		}
	}

	fmt.Fprintln(out, st.title.Render("Select a session to "+action+":"))
	for i, rec := range records {
		state := st.detached.Render(rec.State())
		if rec.Attached {
			state = st.attached.Render(rec.State())
		}
		num := st.index.Render(fmt.Sprintf("[%*d]", width, i+1))
		fmt.Fprintf(out, "  %s  %-*s  %s\n", num, nameWidth, rec.Display, state)
	}
	fmt.Fprint(out, "Enter number: ")
}

func choose(input string, records []session.Record) (session.Record, error) {
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(records) {
		return session.Record{}, clierr.InvalidSelection(input, len(records))
	}
	return records[n-1], nil
}

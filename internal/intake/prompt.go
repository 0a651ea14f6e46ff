package intake

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

const maxLineBytes = 1 << 20

// Method is how the user chose to enter the roster.
type Method string

const (
	MethodManual Method = "manual"
	MethodJSON   Method = "json"
)

// Prompter runs an interactive intake session over line-oriented input.
// Every question is repeated until it gets a valid answer. End of input at
// any point yields ErrAborted.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter reads answers from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Prompter{in: sc, out: out}
}

// Roster asks for an entry method and collects a roster with it. Canceling
// JSON entry goes back to method selection.
func (p *Prompter) Roster(ctx context.Context) (model.Roster, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		method, err := p.Method()
		if err != nil {
			return nil, err
		}
		switch method {
		case MethodManual:
			return p.Manual(ctx)
		case MethodJSON:
			roster, err := p.JSON(ctx)
			if errors.Is(err, ErrCanceled) {
				continue
			}
			return roster, err
		}
	}
}

// Method asks for manual or json entry.
func (p *Prompter) Method() (Method, error) {
	p.printf("\n--- Roster Entry Method ---\n")
	for {
		line, err := p.ask("How would you like to enter the roster? (manual / json): ")
		if err != nil {
			return "", err
		}
		switch Method(strings.ToLower(line)) {
		case MethodManual:
			return MethodManual, nil
		case MethodJSON:
			return MethodJSON, nil
		}
		p.printf("Invalid option. Please type 'manual' or 'json'.\n")
	}
}

// Manual collects competitors one by one until "done" (or "fim").
func (p *Prompter) Manual(ctx context.Context) (model.Roster, error) {
	p.printf("\n--- Manual Roster Entry ---\n")
	var roster model.Roster
	names := newNameSet()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name, err := p.ask("Competitor name (or 'done' to finish): ")
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(name) {
		case "done", "fim":
			if len(roster) == 0 {
				p.printf("No competitors entered. Please enter at least one.\n")
				continue
			}
			return roster, nil
		}
		if name == "" {
			metrics.RecordIntakeRejection("manual")
			p.printf("Competitor name must not be empty.\n")
			continue
		}
		if names.SeenAndRecord(ctx, name) {
			metrics.RecordIntakeRejection("manual")
			p.printf("%s is already in the roster.\n", name)
			continue
		}

		points, err := p.points(name)
		if err != nil {
			return nil, err
		}
		roster = append(roster, model.Competitor{Name: name, Points: points})
	}
}

func (p *Prompter) points(name string) (int, error) {
	for {
		line, err := p.ask(fmt.Sprintf("Current points for %s: ", name))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		switch {
		case err != nil:
			metrics.RecordIntakeRejection("manual")
			p.printf("Invalid input. Please enter a whole number.\n")
		case n < 0:
			metrics.RecordIntakeRejection("manual")
			p.printf("Points must not be negative. Try again.\n")
		default:
			return n, nil
		}
	}
}

// JSON reads a roster document from a single line. "cancel" (or "cancelar")
// returns ErrCanceled.
func (p *Prompter) JSON(ctx context.Context) (model.Roster, error) {
	p.printf("\n--- JSON Roster Entry ---\n")
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := p.ask("Paste the roster JSON (or type 'cancel' to go back): ")
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(line) {
		case "cancel", "cancelar":
			return nil, ErrCanceled
		case "":
			p.printf("The JSON document must not be empty. Try again.\n")
			continue
		}

		roster, err := ParseJSON([]byte(line))
		if err != nil {
			metrics.RecordIntakeRejection("json")
			p.printf("%v\n", err)
			continue
		}
		return roster, nil
	}
}

// RemainingEvents asks for the number of events left in the season.
func (p *Prompter) RemainingEvents() (int, error) {
	for {
		line, err := p.ask("How many events remain in the season? ")
		if err != nil {
			return 0, err
		}
		n, err := ParseRemainingEvents(line)
		if err != nil {
			metrics.RecordIntakeRejection("events")
			p.printf("%v\n", err)
			continue
		}
		return n, nil
	}
}

// ask prints a prompt and returns the next trimmed line.
func (p *Prompter) ask(prompt string) (string, error) {
	p.printf("%s", prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", ErrAborted, err)
		}
		return "", ErrAborted
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *Prompter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

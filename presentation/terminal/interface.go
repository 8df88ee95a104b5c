package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"seleniumacros/application/macro"
	"seleniumacros/infrastructure/storage"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// TerminalInterface reads macro lines from a terminal and replays them one at a time
type TerminalInterface struct {
	session *macro.Session
	logger  *logrus.Logger
	reader  *bufio.Reader
	out     io.Writer
}

func NewTerminalInterface(session *macro.Session, logger *logrus.Logger, in io.Reader, out io.Writer) *TerminalInterface {
	return &TerminalInterface{
		session: session,
		logger:  logger,
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

// Run - starts the driver and executes lines until quit or end of input
func (t *TerminalInterface) Run(ctx context.Context) error {
	if err := t.session.StartDriver(ctx, false); err != nil {
		return fmt.Errorf("failed to initialize browser: %w", err)
	}
	t.session.RunState().Begin(time.Now())

	fmt.Fprintln(t.out, bold("Macro REPL"))
	fmt.Fprintln(t.out, "==========")
	fmt.Fprintln(t.out, "Type macro commands, 'vars' or 'errors' to inspect, 'quit' to exit")
	fmt.Fprintln(t.out)

	lineNo := 0
	for {
		fmt.Fprint(t.out, "> ")
		input, err := t.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := err != nil

		input = strings.TrimSpace(input)
		if input == "quit" || input == "exit" || input == "q" {
			fmt.Fprintln(t.out, "Bye!")
			return nil
		}
		if input != "" {
			lineNo++
			t.execute(ctx, lineNo, input)
		}

		if eof {
			fmt.Fprintln(t.out)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (t *TerminalInterface) execute(ctx context.Context, lineNo int, line string) {
	switch line {
	case "vars":
		data, err := storage.FormatVariables(t.session.Variables().Builtins())
		if err != nil {
			fmt.Fprintf(t.out, "%s %v\n", red("FAIL"), err)
			return
		}
		fmt.Fprint(t.out, string(data))
		return
	case "errors":
		errs := t.session.Errors()
		if len(errs) == 0 {
			fmt.Fprintln(t.out, green("no errors"))
		}
		for _, e := range errs {
			fmt.Fprintln(t.out, yellow(e.Message))
		}
		return
	}

	if err := t.session.ExecuteLine(ctx, lineNo, line); err != nil {
		fmt.Fprintf(t.out, "%s %v\n", red("FAIL"), err)
		return
	}
	fmt.Fprintln(t.out, green("OK"))
}

// Close - releases the browser
func (t *TerminalInterface) Close() error {
	return t.session.Reset()
}

package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies it.
type execIface interface {
	Write(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Personas(ctx context.Context) error
	Unlocked(ctx context.Context) error
	Buy(ctx context.Context, args []string) error
	Verify(ctx context.Context, args []string) error
	Export(ctx context.Context) error
	Clear(ctx context.Context) error
	Token(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them to a until EOF,
// "exit" or "quit". Command errors are reported by the commands themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("journal %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn("Available commands: (w)rite [persona], (l)ist [count], personas, unlocked, buy <feature>, verify <session>, export, clear, token, exit")

		case "w", "write":
			_ = a.Write(ctx, args)

		case "l", "list":
			_ = a.List(ctx, args)

		case "personas":
			_ = a.Personas(ctx)

		case "unlocked":
			_ = a.Unlocked(ctx)

		case "buy":
			_ = a.Buy(ctx, args)

		case "verify":
			_ = a.Verify(ctx, args)

		case "export":
			_ = a.Export(ctx)

		case "clear":
			_ = a.Clear(ctx)

		case "token":
			_ = a.Token(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

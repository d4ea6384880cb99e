package main

import (
	"fmt"
	"os"
	"strings"

	"echo/objid"
	"echo/objstore"
)

const helpText = `Echo REPL Commands:
  .help           - Show this help message
  .quit           - Exit the REPL
  .clear          - Clear the screen
  .quiet          - Toggle quiet mode (hide timing info)
  .debug          - Toggle debug mode
  .eval           - Enter multi-line evaluation mode (end with a lone '.')
  .create <name>  - Create a player and switch to it
  .switch <name>  - Switch to an existing player
  .players        - List all players
  .stats          - Show runtime statistics

Statements typed at the prompt run immediately once they parse as a
complete program; unterminated brackets or strings continue onto the
next line automatically.`

// handleMeta dispatches a line starting with '.' to the matching REPL
// command, printing its result (or error) to out.
func (r *repl) handleMeta(line string, out *os.File) {
	fields := strings.Fields(line)
	cmd := fields[0]
	var arg string
	if len(fields) > 1 {
		arg = strings.Join(fields[1:], " ")
	}

	switch cmd {
	case ".help":
		fmt.Fprintln(out, helpText)

	case ".quit":
		fmt.Fprintln(out, "Goodbye!")
		r.running = false

	case ".clear":
		fmt.Fprint(out, "\x1B[2J\x1B[1;1H")

	case ".quiet":
		r.quiet = !r.quiet
		fmt.Fprintf(out, "Quiet mode: %s\n", onOff(r.quiet))

	case ".debug":
		r.debug = !r.debug
		fmt.Fprintf(out, "Debug mode: %s\n", onOff(r.debug))

	case ".eval":
		r.inEval = true
		fmt.Fprintln(out, "Entering multi-line mode; end with a line containing only '.'")

	case ".create":
		if arg == "" {
			fmt.Fprintln(out, "usage: .create <name>")
			return
		}
		r.createPlayer(arg, out)

	case ".switch":
		if arg == "" {
			fmt.Fprintln(out, "usage: .switch <name>")
			return
		}
		r.switchPlayer(arg, out)

	case ".players":
		r.listPlayers(out)

	case ".stats":
		r.showStats(out)

	default:
		fmt.Fprintf(out, "unknown command: %s (try .help)\n", cmd)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (r *repl) createPlayer(name string, out *os.File) {
	if _, ok := r.store.FindByName(name); ok {
		fmt.Fprintf(out, "player %q already exists\n", name)
		return
	}
	obj := objstore.NewObject(objid.New(), name)
	obj.Meta.Player = true
	if err := r.store.Store(obj); err != nil {
		fmt.Fprintf(out, "error creating player: %v\n", err)
		return
	}
	r.player = obj.ID
	r.rebuildEvaluator()
	fmt.Fprintf(out, "Created and switched to player %q\n", name)
}

func (r *repl) switchPlayer(name string, out *os.File) {
	id, ok := r.store.FindByName(name)
	if !ok {
		fmt.Fprintf(out, "no such player: %s\n", name)
		return
	}
	obj, err := r.store.Get(id)
	if err != nil || !obj.Meta.Player {
		fmt.Fprintf(out, "no such player: %s\n", name)
		return
	}
	r.player = id
	r.rebuildEvaluator()
	fmt.Fprintf(out, "Switched to player %q\n", name)
}

func (r *repl) listPlayers(out *os.File) {
	ids, err := r.store.ListAll()
	if err != nil {
		fmt.Fprintf(out, "error listing players: %v\n", err)
		return
	}
	var names []string
	for _, id := range ids {
		obj, err := r.store.Get(id)
		if err != nil || !obj.Meta.Player {
			continue
		}
		names = append(names, fmt.Sprintf("  %s (%s)", obj.Name, obj.ID))
	}
	if len(names) == 0 {
		fmt.Fprintln(out, "No players found.")
		return
	}
	fmt.Fprintln(out, "Players:")
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
}

func (r *repl) showStats(out *os.File) {
	count := 0
	if ids, err := r.store.ListAll(); err == nil {
		count = len(ids)
	}
	compiled, fallback := r.jit.Stats()
	fmt.Fprintf(out, "Runtime Statistics:\n")
	fmt.Fprintf(out, "  Objects in storage: %d\n", count)
	fmt.Fprintf(out, "  Active connections: %d\n", len(r.connections.Active()))
	fmt.Fprintf(out, "  JIT compiled/fallback: %d/%d\n", compiled, fallback)
	fmt.Fprintf(out, "  Debug mode: %s\n", onOff(r.debug))
	fmt.Fprintf(out, "  Quiet mode: %s\n", onOff(r.quiet))
}

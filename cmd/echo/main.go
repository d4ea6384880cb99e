// Command echo is the REPL CLI collaborator for the Echo runtime: a
// line-oriented shell wrapping an objstore.Store and an eval.Evaluator
// with player management, multi-line input collection and the .-prefixed
// meta-commands. It mirrors cmd/barn/main.go's flag-driven startup
// shape adapted to an interactive loop instead of a long-running server.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"echo/connections"
	"echo/eval"
	"echo/events"
	"echo/jit"
	"echo/objid"
	"echo/objstore"
	"echo/parser"
	"echo/value"
)

func main() {
	dbPath := flag.String("db", "./echo-db", "Object store directory path")
	debug := flag.Bool("debug", false, "Enable debug mode")
	web := flag.Bool("web", false, "Enable web interface")
	port := flag.Int("port", 8080, "Web server port (with --web)")
	flag.Parse()

	if err := os.MkdirAll(*dbPath, 0755); err != nil {
		log.Fatalf("echo: creating db directory: %v", err)
	}

	store, err := objstore.Open(*dbPath + "/echo.db")
	if err != nil {
		log.Fatalf("echo: opening object store: %v", err)
	}
	defer store.Close()

	r := newRepl(store, *debug)

	fmt.Printf("Echo REPL\n")
	fmt.Printf("Database: %s\n", *dbPath)
	if *debug {
		fmt.Println("Debug mode: enabled")
	}

	if *web {
		fmt.Printf("Web interface requested on port %d, but the web collaborator is not built into this binary; continuing in REPL mode.\n", *port)
	}

	if file := flag.Arg(0); file != "" {
		src, err := os.ReadFile(file)
		if err != nil {
			log.Fatalf("echo: reading %s: %v", file, err)
		}
		out, ms, err := r.executeProgram(string(src))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		} else if !r.quiet {
			fmt.Printf("%s (%dms)\n", out, ms)
		}
	}

	fmt.Println("Type .help for help, .quit to exit")
	fmt.Println()

	r.run(os.Stdin, os.Stdout)
}

// repl owns the live collaborators (store, evaluator, connections,
// events, JIT) plus the small amount of session state (current player,
// quiet/debug toggles) a single terminal session needs.
type repl struct {
	store       *objstore.Store
	evaluator   *eval.Evaluator
	connections *connections.Registry
	events      *events.Registry
	jit         *jit.JIT
	player      objid.ObjectId

	running bool
	quiet   bool
	debug   bool

	collector multiLineCollector
	inEval    bool
}

func newRepl(store *objstore.Store, debug bool) *repl {
	r := &repl{
		store:       store,
		connections: connections.NewRegistry(),
		events:      events.NewRegistry(),
		jit:         jit.New(),
		player:      objid.Root,
		running:     true,
		debug:       debug,
	}
	r.rebuildEvaluator()
	return r
}

func (r *repl) rebuildEvaluator() {
	ev := eval.New(r.store, r.player)
	ev.Connections = r.connections
	ev.Events = r.events
	ev.JIT = r.jit
	r.evaluator = ev
}

func (r *repl) run(in *os.File, out *os.File) {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, r.collector.prompt())
	for scanner.Scan() {
		line := scanner.Text()

		if r.inEval {
			if strings.TrimSpace(line) == "." {
				r.inEval = false
				src := r.collector.buf.String()
				r.collector.reset()
				r.executeAndPrint(src, out)
				fmt.Fprint(out, r.collector.prompt())
				continue
			}
			if r.collector.buf.Len() > 0 {
				r.collector.buf.WriteByte('\n')
			}
			r.collector.buf.WriteString(line)
			fmt.Fprint(out, "   > ")
			continue
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ".") && !r.collector.collecting() {
			r.handleMeta(trimmed, out)
			if !r.running {
				return
			}
			fmt.Fprint(out, r.collector.prompt())
			continue
		}

		src, complete := r.collector.processLine(line, func(s string) bool {
			_, err := parser.ParseProgram(s)
			return err == nil
		})
		if complete {
			r.executeAndPrint(src, out)
		}
		fmt.Fprint(out, r.collector.prompt())
	}
}

func (r *repl) executeAndPrint(src string, out *os.File) {
	result, ms, err := r.executeProgram(src)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	if r.quiet {
		fmt.Fprintln(out, result)
	} else {
		fmt.Fprintf(out, "%s (%dms)\n", result, ms)
	}
}

// executeProgram parses src as a full program and evaluates its
// statements in sequence, mirroring eval_command's flow unwrapping:
// a top-level return yields its value, otherwise the last statement's
// result is reported.
func (r *repl) executeProgram(src string) (string, int64, error) {
	start := time.Now()
	program, err := parser.ParseProgram(src)
	if err != nil {
		return "", 0, err
	}
	var last value.Value
	for _, stmt := range program.Stmts {
		res := r.evaluator.EvalStmt(stmt)
		if res.IsError() {
			return "", 0, fmt.Errorf("%s: %s", res.Err.Code.Name(), res.Err.Message)
		}
		last = res.Val
		if res.IsReturn() {
			break
		}
	}
	ms := time.Since(start).Milliseconds()
	if last == nil {
		return "null", ms, nil
	}
	return last.String(), ms, nil
}

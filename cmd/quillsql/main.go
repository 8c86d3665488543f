// quillsql - interactive postfix driver for the SQLite primitives
//
// Each line is a sequence of tokens evaluated left to right: integer,
// float and "quoted string" literals are pushed onto the operand
// stack, and bare words invoke the primitive of that name (the
// sqlite:: prefix may be omitted). Shell words: .s prints the stack,
// .err prints the error slot, dup/swap/drop rearrange the stack,
// clear empties it, quit exits.
//
// Usage:
//   quillsql                      # REPL on stdin
//   quillsql -f script.qsql       # run a script
//   quillsql -config quill.toml   # connection options
//
// Example session:
//   > ":memory:" open drop            # open, discard OK status
//   > dup "CREATE TABLE t(a INTEGER)" swap exec drop
//   > dup "INSERT INTO t VALUES (7)" swap exec drop
//   > dup changes .s
//   [<handle 1:1> 1]
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/quill-lang/quill-sqlite/sqlite"
	"github.com/quill-lang/quill-sqlite/stack"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	scriptPath := flag.String("f", "", "script file to run instead of reading stdin")
	configPath := flag.String("config", "", "TOML connection options")
	flag.Parse()

	mod := sqlite.New()
	cfg := sqlite.DefaultConfig()
	if *configPath != "" {
		loaded, err := sqlite.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "quillsql: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	mod.SetConfig(cfg)
	defer mod.CloseAll()

	prims := mod.Primitives()
	ctx := stack.NewContext()

	in := os.Stdin
	interactive := true
	if *scriptPath != "" {
		f, err := os.Open(*scriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "quillsql: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
		interactive = false
	}

	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		if !evalLine(ctx, prims, scanner.Text()) {
			break
		}
	}
}

// evalLine evaluates one input line. Returns false on quit.
func evalLine(ctx *stack.Context, prims map[string]stack.Primitive, line string) bool {
	for _, tok := range tokenize(line) {
		switch {
		case tok.isString:
			ctx.Stack.PushString(tok.text)

		case tok.text == "quit" || tok.text == "exit":
			return false

		case tok.text == ".s":
			fmt.Println(ctx.Stack.String())

		case tok.text == ".err":
			fmt.Printf("code=%d msg=%q\n", ctx.ErrorCode(), ctx.ErrorMessage())

		case tok.text == "drop":
			if _, err := ctx.Stack.Pop(); err != nil {
				fmt.Println("drop: stack empty")
			}

		case tok.text == "dup":
			if e, err := ctx.Stack.Pop(); err != nil {
				fmt.Println("dup: stack empty")
			} else {
				ctx.Stack.Push(e)
				ctx.Stack.Push(e)
			}

		case tok.text == "swap":
			a, errA := ctx.Stack.Pop()
			b, errB := ctx.Stack.Pop()
			if errA != nil || errB != nil {
				fmt.Println("swap: stack underflow")
			} else {
				ctx.Stack.Push(a)
				ctx.Stack.Push(b)
			}

		case tok.text == "clear":
			for ctx.Stack.Len() > 0 {
				ctx.Stack.Pop()
			}

		default:
			if n, err := strconv.ParseInt(tok.text, 10, 64); err == nil {
				ctx.Stack.PushInt(n)
				continue
			}
			if f, err := strconv.ParseFloat(tok.text, 64); err == nil {
				ctx.Stack.PushFloat(f)
				continue
			}
			name := tok.text
			if !strings.Contains(name, "::") {
				name = "sqlite::" + name
			}
			prim, ok := prims[name]
			if !ok {
				fmt.Printf("unknown word: %s\n", tok.text)
				continue
			}
			if rc := prim(ctx); rc != 0 {
				fmt.Printf("error %d: %s\n", rc, ctx.ErrorMessage())
			}
		}
	}
	return true
}

type token struct {
	text     string
	isString bool
}

// tokenize splits a line into words and double-quoted strings. Quotes
// support \" and \\ escapes; a # outside quotes starts a comment.
func tokenize(line string) []token {
	var toks []token
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t':
			i++

		case c == '#':
			return toks

		case c == '"':
			var sb strings.Builder
			i++
			for i < len(line) && line[i] != '"' {
				if line[i] == '\\' && i+1 < len(line) {
					i++
				}
				sb.WriteByte(line[i])
				i++
			}
			i++ // closing quote
			toks = append(toks, token{text: sb.String(), isString: true})

		default:
			start := i
			for i < len(line) && line[i] != ' ' && line[i] != '\t' {
				i++
			}
			toks = append(toks, token{text: line[start:i]})
		}
	}
	return toks
}

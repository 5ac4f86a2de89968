/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// matchjit-repl is an interactive shell exercising both cores
// independently, mirroring the separation spec.md draws between the
// parser and the matcher emitter: "query" commands run the
// recursive-descent parser and print its canonical form; "demo" runs
// a small, hardcoded match tree through the JIT and prints the
// records it produced. Nothing here bridges parsed queries into row
// expressions — spec.md's Non-goals exclude "query semantics beyond
// syntactic parsing", so this shell never builds a term-to-row
// planner.
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"unsafe"

	"github.com/chzyer/readline"
	"github.com/dc0d/onexit"
	"github.com/docker/go-units"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/sliceindex/matchjit/matcher"
	"github.com/sliceindex/matchjit/query"
	"github.com/sliceindex/matchjit/regalloc"
)

func pageSize() int { return unix.Getpagesize() }

const (
	newPrompt    = "\033[32m>\033[0m "
	resultPrompt = "\033[31m=\033[0m "
)

// shell holds the REPL's mutable state: the stream registry commands
// build up across lines, and the set of Runners compiled so far so
// releaseAll can tear them down on exit. Mirrors the teacher's IOEnv
// pattern in main.go of threading one mutable value through a closure
// per command rather than a package-level global.
type shell struct {
	streams *query.StreamConfig

	mu      sync.Mutex
	runners []*matcher.Runner
}

func newShell() *shell {
	return &shell{streams: query.NewStreamConfig()}
}

func (s *shell) track(r *matcher.Runner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runners = append(s.runners, r)
}

func (s *shell) releaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.runners {
		if err := r.Release(); err != nil {
			log.Printf("release %s: %v", r.ID(), err)
		}
	}
	s.runners = nil
}

func (s *shell) dispatch(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "stream":
		s.cmdStream(fields[1:])
	case "escape":
		fmt.Println(resultPrompt + query.Escape(strings.TrimPrefix(line, "escape ")))
	case "query":
		s.cmdQuery(strings.TrimPrefix(line, "query "))
	case "demo":
		s.cmdDemo()
	case "help":
		printHelp()
	default:
		// bare text with no command word is treated as a query, the
		// common case when exploring parse output interactively.
		s.cmdQuery(line)
	}
}

func (s *shell) cmdStream(args []string) {
	if len(args) != 2 {
		fmt.Println("usage: stream <name> <id>")
		return
	}
	id, err := strconv.ParseUint(args[1], 10, 8)
	if err != nil {
		fmt.Println("bad stream id:", err)
		return
	}
	s.streams.AddMapping(args[0], uint8(id))
	fmt.Printf("%sregistered stream %q -> %d\n", resultPrompt, args[0], id)
}

func (s *shell) cmdQuery(text string) {
	if strings.TrimSpace(text) == "" {
		fmt.Println("usage: query <text>")
		return
	}
	n, err := query.Parse(text, s.streams)
	if err != nil {
		fmt.Println("parse error:", err)
		return
	}
	fmt.Println(resultPrompt + n.String())
}

// cmdDemo compiles a fixed match tree — row 0 AND row 1 — and runs it
// against a single synthetic slice of 64 documents where row 0 has
// every even bit set and row 1 has every fourth bit set. The
// intersection is exactly the multiples of 4, easy to verify by eye.
func (s *shell) cmdDemo() {
	rows, err := regalloc.New([]int{0, 1})
	if err != nil {
		fmt.Println("regalloc:", err)
		return
	}

	expr := matcher.And{Children: []matcher.RowExpr{
		matcher.RowRef{RowID: 0},
		matcher.RowRef{RowID: 1},
	}}

	runner, err := matcher.Compile(rows, expr)
	if err != nil {
		fmt.Println("compile:", err)
		return
	}
	s.track(runner)
	fmt.Printf("%scompiled runner %s\n", resultPrompt, runner.ID())

	const everyOther = 0x5555555555555555 // bit i set iff i even
	const everyFourth = 0x1111111111111111 // bit i set iff i%4==0

	slice := make([]uint64, 2)
	slice[0] = everyOther
	slice[1] = everyFourth
	offsets := []int64{0, 8}

	sliceBuf := unsafe.Pointer(&slice[0])
	matches, err := runner.Run([]unsafe.Pointer{sliceBuf}, 1, offsets, 0)
	if err != nil {
		fmt.Println("run:", err)
		return
	}

	var docs []string
	for _, m := range matches {
		docs = append(docs, strconv.FormatInt(m.DocIndex, 10))
	}
	fmt.Printf("%s%d matches: [%s]\n", resultPrompt, len(matches), strings.Join(docs, ", "))
}

func printHelp() {
	fmt.Print(`commands:
  query <text>         parse <text> and print its canonical form
  stream <name> <id>   register a stream-name prefix
  escape <text>        print the Escape()-quoted form of <text>
  demo                 compile and run a fixed row0&row1 match tree
  help                 this message
`)
}

func main() {
	fmt.Print(`matchjit-repl: interactive shell for the query parser and match-tree JIT
`)

	uuid.SetRand(rand.Reader)

	profile := flag.String("profile", "", "write a CPU profile to this path on exit")
	flag.Parse()

	s := newShell()

	if *profile != "" {
		f, err := os.Create(*profile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err)
		}
		onexit.Register(func() {
			pprof.StopCPUProfile()
			f.Close()
		})
	}

	onexit.Register(func() {
		s.releaseAll()
	})

	cancelChan := make(chan os.Signal, 1)
	signal.Notify(cancelChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-cancelChan
		onexit.ForceExit(0)
	}()

	l, err := readline.NewEx(&readline.Config{
		Prompt:            newPrompt,
		HistoryFile:       ".matchjit-repl-history.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	fmt.Printf("type 'help' for commands (mmap page size: %s)\n", units.BytesSize(float64(pageSize())))

	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			log.Fatal(err)
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Println("panic:", r)
				}
			}()
			s.dispatch(line)
		}()
	}

	s.releaseAll()
}

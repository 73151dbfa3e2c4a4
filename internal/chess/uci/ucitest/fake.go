// Package ucitest provides a scripted UCI engine for tests. A test binary
// re-executes itself with Command and serves the protocol from Serve.
package ucitest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/park285/playpad-server/internal/chess/uci"
)

const envKey = "PLAYPAD_FAKE_UCI"

// Reply is what the fake engine answers to every go command.
type Reply struct {
	BestMove string
	PV       []string
	ScoreCP  int
	Mate     int
	Depth    int
}

// Command re-runs the current test binary as a fake engine. helperTest is
// the name of the test function that calls ServeIfHelper.
func Command(helperTest string) uci.Command {
	return uci.Command{
		Path: os.Args[0],
		Args: []string{"-test.run=^" + helperTest + "$"},
		Env:  []string{envKey + "=1"},
	}
}

// ServeIfHelper serves the protocol on stdio and exits when the process was
// started by Command. It returns immediately otherwise.
func ServeIfHelper(reply Reply) {
	if os.Getenv(envKey) != "1" {
		return
	}
	_ = Serve(os.Stdin, os.Stdout, reply)
	os.Exit(0)
}

// Serve answers uci, isready and go until quit or EOF.
func Serve(in io.Reader, out io.Writer, reply Reply) error {
	depth := reply.Depth
	if depth <= 0 {
		depth = 1
	}
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "uci":
			fmt.Fprintln(out, "id name playpad-fake")
			fmt.Fprintln(out, "uciok")
		case "isready":
			fmt.Fprintln(out, "readyok")
		case "go":
			score := fmt.Sprintf("cp %d", reply.ScoreCP)
			if reply.Mate != 0 {
				score = fmt.Sprintf("mate %d", reply.Mate)
			}
			if reply.BestMove == "" {
				fmt.Fprintln(out, "bestmove (none)")
				continue
			}
			pv := append([]string{reply.BestMove}, reply.PV...)
			fmt.Fprintf(out, "info depth %d score %s multipv 1 pv %s\n", depth, score, strings.Join(pv, " "))
			fmt.Fprintf(out, "bestmove %s\n", reply.BestMove)
		case "quit":
			return nil
		}
	}
	return sc.Err()
}

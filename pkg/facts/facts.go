// Package facts bridges to an external Datalog engine. The engine binary
// is an opaque collaborator: augur hands it fact relations, the engine
// evaluates a rule program, and augur reads derived relations back. When
// the binary is not installed the capability is simply off and dependent
// detectors are skipped.
package facts

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBinary is the engine looked up on PATH when no explicit path is
// configured.
const DefaultBinary = "arc-facts"

// Relation is a named set of tuples. Tuples are positional; the engine
// defines each relation's arity.
type Relation struct {
	Name   string
	Tuples [][]string
}

// Add appends one tuple.
func (r *Relation) Add(fields ...string) {
	r.Tuples = append(r.Tuples, fields)
}

// Executor runs the external engine as a blocking subprocess. There is
// no timeout or retry; the process either exits or the run hangs with
// it.
type Executor struct {
	bin string
}

// NewExecutor creates an executor for the given binary. An empty path
// selects DefaultBinary.
func NewExecutor(bin string) *Executor {
	if bin == "" {
		bin = DefaultBinary
	}
	return &Executor{bin: bin}
}

// Available reports whether the engine binary resolves on PATH. The
// result is computed once per call and is the capability flag that
// gates fact-backed detectors.
func (e *Executor) Available() bool {
	_, err := exec.LookPath(e.bin)
	return err == nil
}

// Query feeds the input relations to the engine, evaluates the rule
// program, and parses the derived relations from its output.
//
// Wire format, both directions: one tuple per line,
// `relation<TAB>field<TAB>field...`, terminated by EOF. Rule programs
// are passed verbatim as the single positional argument.
func (e *Executor) Query(ctx context.Context, program string, input []Relation) ([]Relation, error) {
	cmd := exec.CommandContext(ctx, e.bin, program)
	cmd.Stdin = strings.NewReader(encode(input))
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("fact engine %s: %w: %s", e.bin, err, strings.TrimSpace(stderr.String()))
	}
	return decode(&out)
}

func encode(rels []Relation) string {
	var sb strings.Builder
	for _, r := range rels {
		for _, t := range r.Tuples {
			sb.WriteString(r.Name)
			for _, f := range t {
				sb.WriteByte('\t')
				sb.WriteString(f)
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func decode(buf *bytes.Buffer) ([]Relation, error) {
	byName := make(map[string]*Relation)
	var order []string
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		r, ok := byName[fields[0]]
		if !ok {
			r = &Relation{Name: fields[0]}
			byName[fields[0]] = r
			order = append(order, fields[0])
		}
		r.Add(fields[1:]...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading fact engine output: %w", err)
	}
	out := make([]Relation, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}

package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ringmodel/wmverify/internal/model"
	"github.com/ringmodel/wmverify/internal/verify"
)

// Line is one rendered event: its resolved rank, value, and — for reads —
// the id of the write it reads from.
type Line struct {
	Event    model.Event
	Rank     int64
	Value    int64
	RfSource *int
}

// Witness evaluates a Sat result's model and reconstructs the ordered
// execution it witnesses: one Line per event, sorted by (rank, id)
// ascending.
func Witness(result *verify.Result) ([]Line, error) {
	if result.Outcome != verify.Sat {
		return nil, fmt.Errorf("render.Witness: result is %s, not sat", result.Outcome)
	}

	enc := result.Enc
	trace := result.Trace
	solver := result.Solver

	lines := make([]Line, 0, len(trace.Events()))
	for _, e := range trace.Events() {
		rankC := solver.Eval(enc.Rank(e))
		if rankC == nil {
			return nil, fmt.Errorf("render.Witness: no rank assignment for event %d", e.ID)
		}

		line := Line{Event: e, Rank: rankC.AsLong()}

		if e.Kind == model.Write {
			line.Value = int64(e.Val)
		} else {
			valC := solver.Eval(enc.ReadValue(e.ID))
			if valC == nil {
				return nil, fmt.Errorf("render.Witness: no value assignment for read %d", e.ID)
			}
			line.Value = valC.AsLong()

			for _, w := range trace.WritesTo(e.Addr) {
				rfVar := enc.RfVar(w, e)
				if rfVar == nil {
					continue
				}
				c := solver.Eval(rfVar)
				if c != nil && c.AsLong() != 0 {
					id := w.ID
					line.RfSource = &id
					break
				}
			}
		}
		lines = append(lines, line)
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Rank != lines[j].Rank {
			return lines[i].Rank < lines[j].Rank
		}
		return lines[i].Event.ID < lines[j].Event.ID
	})

	return lines, nil
}

// Render formats a Sat result as one line of text per event, in witness
// order. Output is informational only: no part of the verifier's
// behavior depends on parsing it back.
func Render(result *verify.Result) (string, error) {
	lines, err := Witness(result)
	if err != nil {
		return "", err
	}

	b := strings.Builder{}
	for _, l := range lines {
		e := l.Event
		fmt.Fprintf(&b, "rank=%-4d id=%-3d thread=%-2d %-5s addr=%-2d val=%-3d mode=%-3s",
			l.Rank, e.ID, e.Thread, e.Kind, e.Addr, l.Value, e.Mode)
		if e.Kind == model.Read {
			if l.RfSource != nil {
				fmt.Fprintf(&b, " rf<-%d", *l.RfSource)
			} else {
				fmt.Fprint(&b, " rf<-?")
			}
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

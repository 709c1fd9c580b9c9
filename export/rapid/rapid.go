// Package rapid renders programs as ABB RAPID modules.
package rapid

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"

	"github.com/pkg/errors"

	"go.viam.com/trajsim/export"
	"go.viam.com/trajsim/motionplan"
)

// DefaultModuleName is used for programs without a name.
const DefaultModuleName = "TrajectorySim"

// RAPID identifiers: a letter followed by up to 31 letters, digits or underscores.
var identifier = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,31}$`)

// Writer writes RAPID modules.
type Writer struct{}

var _ export.ProgramWriter = Writer{}

// WriteProgram writes prog as a RAPID module with one robtarget and one move instruction per
// waypoint. The first waypoint is reached with a fine move from wherever the robot is.
func (Writer) WriteProgram(w io.Writer, prog export.Program) error {
	if len(prog.Instructions) < 2 {
		return errors.Wrapf(motionplan.ErrInsufficientWaypoints, "program %q has %d instructions", prog.Name, len(prog.Instructions))
	}
	name := prog.Name
	if name == "" {
		name = DefaultModuleName
	}
	tool := prog.Tool
	if tool == "" {
		tool = export.DefaultTool
	}
	for _, id := range []string{name, tool} {
		if !identifier.MatchString(id) {
			return errors.Errorf("%q is not a valid RAPID identifier", id)
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "MODULE %s\n", name)
	fmt.Fprintln(bw, "    ! ==========================================")
	fmt.Fprintln(bw, "    ! Generated by trajsim")
	fmt.Fprintln(bw, "    ! ==========================================")
	for _, instr := range prog.Instructions {
		fmt.Fprintf(bw, "    CONST robtarget %s := [[%.1f, %.1f, 0.0], [1, 0, 0, 0], [0, 0, 0, 0], [9E9, 9E9, 9E9, 9E9, 9E9, 9E9]];\n",
			target(instr.Index), instr.Target.X, instr.Target.Y)
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "    PROC main()")
	fmt.Fprintln(bw, "        ! Move to start position")
	start := prog.Instructions[0]
	fmt.Fprintf(bw, "        %s %s, %s, fine, %s;\n", start.Motion, target(0), speedData(start.CommandedSpeed), tool)
	fmt.Fprintln(bw)

	for _, instr := range prog.Instructions[1:] {
		fmt.Fprintf(bw, "        ! Segment %d: speed=%gmm/s, zone=%s, reached=%.1fmm/s\n",
			instr.Index, instr.CommandedSpeed, instr.Zone, instr.AchievableSpeed)
		if !instr.ExactStop && instr.AppliedRadius < instr.Zone.Radius() {
			fmt.Fprintf(bw, "        ! zone %s limited to %.2fmm by the adjacent segments\n", instr.Zone, instr.AppliedRadius)
		}
		fmt.Fprintf(bw, "        %s %s, %s, %s, %s;\n",
			instr.Motion, target(instr.Index), speedData(instr.CommandedSpeed), instr.Zone, tool)
		fmt.Fprintln(bw)
	}
	fmt.Fprintln(bw, "    ENDPROC")
	fmt.Fprintln(bw, "ENDMODULE")
	return bw.Flush()
}

func target(idx int) string {
	if idx == 0 {
		return "pStart"
	}
	return fmt.Sprintf("p%d", idx)
}

// speedData names the speeddata for a TCP speed, rounded down to whole mm/s with a floor of v1.
func speedData(speed float64) string {
	return fmt.Sprintf("v%d", int(math.Max(1, math.Floor(speed))))
}

// Package export defines how resolved plans leave the engine: as controller programs or as
// sampled traces.
package export

import (
	"io"

	"github.com/pkg/errors"

	"go.viam.com/trajsim/motionplan"
)

// DefaultTool is the tool data used when a project does not name one.
const DefaultTool = "tool0"

// Program is the per-waypoint data a controller program is rendered from.
type Program struct {
	Name         string
	Tool         string
	Instructions []motionplan.Instruction
}

// NewProgram builds the program for plan. An empty tool selects DefaultTool.
func NewProgram(name, tool string, plan *motionplan.Plan) (Program, error) {
	if plan == nil {
		return Program{}, errors.New("cannot build a program without a plan")
	}
	if tool == "" {
		tool = DefaultTool
	}
	return Program{Name: name, Tool: tool, Instructions: plan.Instructions()}, nil
}

// A ProgramWriter renders programs in one controller language.
type ProgramWriter interface {
	WriteProgram(w io.Writer, prog Program) error
}

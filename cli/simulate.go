package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"go.viam.com/trajsim/config"
	"go.viam.com/trajsim/export"
	"go.viam.com/trajsim/export/rapid"
	"go.viam.com/trajsim/export/trace"
	"go.viam.com/trajsim/motionplan"
	"go.viam.com/trajsim/vizplot"
)

// run is one simulated project.
type run struct {
	path    string
	project *config.Project
	result  *motionplan.Result
	written []string
}

// outputs selects the files written next to a simulation.
type outputs struct {
	dir     string
	trace   bool
	csv     bool
	rapid   bool
	plotDir string
}

// SimulateAction simulates every project named on the command line and prints a summary of each,
// in the order given.
func (s *appState) SimulateAction(c *cli.Context) error {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return errors.New("no project files given")
	}
	outs := outputs{
		dir:     c.String(flagOutDir),
		trace:   c.Bool(flagTrace),
		csv:     c.Bool(flagCSV),
		rapid:   c.Bool(flagRapid),
		plotDir: c.String(flagPlotDir),
	}
	jobs := c.Int(flagJobs)
	if jobs < 1 {
		jobs = 1
	}

	runs := make([]*run, len(paths))
	g, ctx := errgroup.WithContext(c.Context)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			r, err := s.simulate(ctx, path, outs)
			if err != nil {
				return err
			}
			runs[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range runs {
		printRun(c.App.Writer, r)
	}
	return nil
}

func (s *appState) simulate(ctx context.Context, path string, outs outputs) (*run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	proj, err := config.Read(path, s.logger)
	if err != nil {
		return nil, err
	}
	res, err := s.cache.Get(proj.Request())
	if err != nil {
		return nil, errors.Wrapf(err, "simulating %q", path)
	}
	r := &run{path: path, project: proj, result: res}
	if err := r.writeOutputs(outs); err != nil {
		return nil, err
	}
	s.logger.Infow("simulated project", "project", proj.Name, "cycle_time", res.CycleTime, "samples", len(res.Samples))
	return r, nil
}

// baseName is the project file name without its extension.
func (r *run) baseName() string {
	base := filepath.Base(r.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (r *run) writeOutputs(outs outputs) error {
	base := r.baseName()
	if outs.trace || outs.csv || outs.rapid {
		if err := os.MkdirAll(outs.dir, 0o750); err != nil {
			return err
		}
	}
	if outs.trace {
		if err := r.writeFile(filepath.Join(outs.dir, base+".json"), func(w io.Writer) error {
			return trace.WriteJSON(w, r.result.Samples)
		}); err != nil {
			return err
		}
	}
	if outs.csv {
		if err := r.writeFile(filepath.Join(outs.dir, base+".csv"), func(w io.Writer) error {
			return trace.WriteCSV(w, r.result.Samples)
		}); err != nil {
			return err
		}
	}
	if outs.rapid {
		if err := r.writeFile(filepath.Join(outs.dir, base+".mod"), func(w io.Writer) error {
			return writeRapid(w, r.project, r.result.Plan)
		}); err != nil {
			return err
		}
	}
	if outs.plotDir != "" {
		pngs, err := vizplot.SavePNGs(outs.plotDir, base, r.result.Plan, r.result.Samples)
		if err != nil {
			return errors.Wrapf(err, "plotting %q", r.path)
		}
		r.written = append(r.written, pngs...)
	}
	return nil
}

func (r *run) writeFile(filename string, write func(io.Writer) error) (err error) {
	//nolint:gosec
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	if err := write(f); err != nil {
		return errors.Wrapf(err, "writing %q", filename)
	}
	r.written = append(r.written, filename)
	return nil
}

func writeRapid(w io.Writer, proj *config.Project, plan *motionplan.Plan) error {
	prog, err := export.NewProgram(proj.Name, proj.Tool, plan)
	if err != nil {
		return err
	}
	return rapid.Writer{}.WriteProgram(w, prog)
}

func printRun(w io.Writer, r *run) {
	printf(w, "%s", headerf("%s (%s)", r.project.Name, r.path))
	printf(w, "%s", r.result.Stats.String())
	for _, filename := range r.written {
		printf(w, "wrote %s", filename)
	}
	printf(w, "")
}

// RapidAction prints the RAPID program of a project.
func (s *appState) RapidAction(c *cli.Context) (err error) {
	if c.Args().Len() != 1 {
		return errors.New("expected exactly one project file")
	}
	proj, err := config.Read(c.Args().First(), s.logger)
	if err != nil {
		return err
	}
	plan, err := motionplan.NewPlanner(proj.MotionLimits(), s.logger.Sublogger("motionplan")).Resolve(proj.EngineWaypoints())
	if err != nil {
		return err
	}

	out := c.App.Writer
	if filename := c.String(flagOutput); filename != "" {
		var f *os.File
		//nolint:gosec
		f, err = os.Create(filename)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Combine(err, f.Close())
		}()
		out = f
	}
	return writeRapid(out, proj, plan)
}

// SchemaAction prints the JSON schema of project files.
func SchemaAction(c *cli.Context) error {
	schema, err := config.SchemaJSON()
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", schema)
	return nil
}

// Package cli contains the trajsim command line application.
package cli

import (
	"fmt"
	"io"
	"math"
	"runtime"

	"github.com/docker/go-units"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/trajsim/logging"
	"go.viam.com/trajsim/motionplan"
)

const (
	// Flags.
	flagDebug      = "debug"
	flagLogFile    = "log-file"
	flagLogMaxSize = "log-max-size"
	flagLogBackups = "log-backups"
	flagOutDir     = "out-dir"
	flagTrace      = "trace"
	flagCSV        = "csv"
	flagRapid      = "rapid"
	flagPlotDir    = "plot-dir"
	flagJobs       = "jobs"
	flagOutput     = "output"
	flagDebounce   = "debounce"

	defaultLogMaxSize = "10MB"
	defaultLogBackups = 3
)

// appState is shared by the commands of one App.
type appState struct {
	logger    logging.Logger
	logCloser io.Closer
	cache     *motionplan.Cache
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	state := &appState{}
	app := &cli.App{
		Name:            "trajsim",
		Usage:           "simulate blended linear robot motion programs",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write logs to `FILE`, rotating it as it grows",
			},
			&cli.StringFlag{
				Name:  flagLogMaxSize,
				Value: defaultLogMaxSize,
				Usage: "rotate the log file once it reaches `SIZE` (e.g. 10MB)",
			},
			&cli.IntFlag{
				Name:  flagLogBackups,
				Value: defaultLogBackups,
				Usage: "number of rotated log files to keep",
			},
		},
		Before: state.setup,
		After:  state.teardown,
		Commands: []*cli.Command{
			{
				Name:      "simulate",
				Usage:     "resolve, sample and summarise one or more projects",
				UsageText: "trajsim simulate [options] <project> [<project>...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagOutDir,
						Value: ".",
						Usage: "directory for trace and program files",
					},
					&cli.BoolFlag{
						Name:  flagTrace,
						Usage: "write the sampled trace as <project>.json",
					},
					&cli.BoolFlag{
						Name:  flagCSV,
						Usage: "write the sampled trace as <project>.csv",
					},
					&cli.BoolFlag{
						Name:  flagRapid,
						Usage: "write the RAPID program as <project>.mod",
					},
					&cli.StringFlag{
						Name:  flagPlotDir,
						Usage: "write velocity and path plots into `DIR`",
					},
					&cli.IntFlag{
						Name:  flagJobs,
						Value: runtime.GOMAXPROCS(0),
						Usage: "number of projects simulated at once",
					},
				},
				Action: state.SimulateAction,
			},
			{
				Name:      "rapid",
				Usage:     "print the RAPID program of a project",
				UsageText: "trajsim rapid [options] <project>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagOutput,
						Aliases: []string{"o"},
						Usage:   "write the program to `FILE` instead of stdout",
					},
				},
				Action: state.RapidAction,
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of project files",
				Action: SchemaAction,
			},
			{
				Name:      "watch",
				Usage:     "re-simulate a project every time its file changes",
				UsageText: "trajsim watch [options] <project>",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  flagDebounce,
						Value: defaultDebounce,
						Usage: "wait this long after the last change before simulating",
					},
				},
				Action: state.WatchAction,
			},
		},
	}
	return app
}

func (s *appState) setup(c *cli.Context) error {
	s.logger = logging.NewBlankLogger("trajsim")
	s.logger.SetLevel(logging.INFO)
	if c.Bool(flagDebug) {
		s.logger.SetLevel(logging.DEBUG)
	}
	s.logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))

	if path := c.String(flagLogFile); path != "" {
		maxSizeMB, err := parseLogSize(c.String(flagLogMaxSize))
		if err != nil {
			return err
		}
		appender, closer := logging.NewFileAppender(path, maxSizeMB, c.Int(flagLogBackups))
		s.logger.AddAppender(appender)
		s.logCloser = closer
	}

	s.cache = motionplan.NewCache(s.logger.Sublogger("motionplan"))
	return nil
}

func (s *appState) teardown(c *cli.Context) error {
	if s.cache != nil {
		s.logger.Debugw("simulation cache", "entries", s.cache.Len(), "hits", s.cache.Hits(), "misses", s.cache.Misses())
	}
	if s.logCloser == nil {
		return nil
	}
	return s.logCloser.Close()
}

// parseLogSize converts a human readable size into whole megabytes, the unit of the file rotator.
func parseLogSize(size string) (int, error) {
	n, err := units.FromHumanSize(size)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid --%s", flagLogMaxSize)
	}
	if n <= 0 {
		return 0, fmt.Errorf("--%s must be positive, got %q", flagLogMaxSize, size)
	}
	return int(math.Ceil(float64(n) / units.MiB)), nil
}

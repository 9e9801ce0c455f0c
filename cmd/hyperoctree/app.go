package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/hyperoctree/flatten"
	"go.viam.com/hyperoctree/hyperoctree"
	"go.viam.com/hyperoctree/limiter"
	"go.viam.com/hyperoctree/logging"
	"go.viam.com/hyperoctree/source"
	"go.viam.com/hyperoctree/tessellate"
)

const (
	// Flags.
	flagDebug   = "debug"
	flagLogFile = "log-file"
	flagConfig  = "config"
	flagOutput  = "output"
	flagLevels  = "levels"
	flagArray   = "array"
)

type cliState struct {
	logger logging.Logger
}

func newApp() *cli.App {
	state := &cliState{}
	return &cli.App{
		Name:  "hyperoctree",
		Usage: "build, inspect and convert adaptively refined hyperoctrees",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "log to a rotated `FILE` instead of stdout",
			},
		},
		Before: func(c *cli.Context) error {
			switch {
			case c.String(flagLogFile) != "":
				state.logger = logging.NewFileLogger("cli", c.String(flagLogFile))
			case c.Bool(flagDebug):
				state.logger = logging.NewDebugLogger("cli")
			default:
				state.logger = logging.NewLogger("cli")
			}
			logging.ReplaceGlobal(state.logger)
			return nil
		},
		After: func(c *cli.Context) error {
			if state.logger == nil {
				return nil
			}
			// Syncing stdout fails on some platforms, only report file sync errors.
			if err := state.logger.Sync(); err != nil && c.String(flagLogFile) != "" {
				return err
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "sample",
				Usage:     "build a tree from an implicit function or a fractal",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagConfig,
						Aliases: []string{"c"},
						Usage:   "load the producer configuration from a json5 `FILE`",
					},
					outputFlag(),
				},
				Action: state.sampleAction,
			},
			{
				Name:      "info",
				Usage:     "describe a tree",
				ArgsUsage: "<file>",
				Action:    state.infoAction,
			},
			{
				Name:      "limit",
				Usage:     "cap the number of levels of a tree, averaging deeper leaves",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     flagLevels,
						Required: true,
						Usage:    "maximum number of levels",
					},
					outputFlag(),
				},
				Action: state.limitAction,
			},
			{
				Name:      "tessellate",
				Usage:     "count the welded points and hanging points of a crack-free tessellation",
				ArgsUsage: "<file>",
				Action:    state.tessellateAction,
			},
			{
				Name:      "flatten",
				Usage:     "resample a leaf array on the finest uniform grid and write it as CSV",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagArray,
						Usage: "leaf array to resample, the active scalars when empty",
					},
					outputFlag(),
				},
				Action: state.flattenAction,
			},
		},
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     flagOutput,
		Aliases:  []string{"o"},
		Required: true,
		Usage:    "write the result to `FILE`",
	}
}

func (s *cliState) readArg(c *cli.Context) (*hyperoctree.Tree, error) {
	if c.NArg() != 1 {
		return nil, errors.Errorf("%s expects exactly one tree file", c.Command.Name)
	}
	return hyperoctree.NewFromFile(c.Args().First(), s.logger)
}

func (s *cliState) sampleAction(c *cli.Context) error {
	cfg := source.DefaultConfig()
	if path := c.String(flagConfig); path != "" {
		var err error
		if cfg, err = source.ReadConfig(path); err != nil {
			return err
		}
	}
	tree, err := source.Build(c.Context, cfg, s.logger.Sublogger("source"))
	if err != nil {
		return err
	}
	if err := hyperoctree.WriteToFile(tree, c.String(flagOutput), s.logger); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote %d leaves over %d levels to %s\n",
		tree.NumberOfLeaves(), tree.NumberOfLevels(), c.String(flagOutput))
	return nil
}

func (s *cliState) infoAction(c *cli.Context) error {
	tree, err := s.readArg(c)
	if err != nil {
		return err
	}
	summary := table.NewWriter()
	summary.AppendHeader(table.Row{"Property", "Value"})
	summary.AppendRows([]table.Row{
		{"Dimension", tree.Dimension()},
		{"Cell type", tree.CellType()},
		{"Origin", fmt.Sprintf("%v, %v, %v", tree.Origin().X, tree.Origin().Y, tree.Origin().Z)},
		{"Size", fmt.Sprintf("%v, %v, %v", tree.Size().X, tree.Size().Y, tree.Size().Z)},
		{"Leaves", tree.NumberOfLeaves()},
		{"Nodes", tree.NumberOfNodes()},
		{"Levels", tree.NumberOfLevels()},
		{"Dual cells", tree.DualGrid().NumberOfCells()},
	})
	fmt.Fprintln(c.App.Writer, summary.Render())

	perLevel := tree.LeavesPerLevel()
	levels := table.NewWriter()
	levels.AppendHeader(table.Row{"Level", "Leaves"})
	for level, n := range perLevel {
		levels.AppendRow(table.Row{level, n})
	}
	levels.AppendFooter(table.Row{"Total", lo.Sum(perLevel)})
	fmt.Fprintln(c.App.Writer, levels.Render())

	arrays := table.NewWriter()
	arrays.AppendHeader(table.Row{"Array", "Components", "Scalars"})
	for _, a := range tree.LeafData().Arrays() {
		arrays.AppendRow(table.Row{a.Name(), a.Components(), a.Name() == tree.LeafData().ScalarsName()})
	}
	fmt.Fprintln(c.App.Writer, arrays.Render())
	return nil
}

func (s *cliState) limitAction(c *cli.Context) error {
	tree, err := s.readArg(c)
	if err != nil {
		return err
	}
	limited, err := limiter.Limit(c.Context, tree, c.Int(flagLevels), s.logger.Sublogger("limiter"))
	if err != nil {
		return err
	}
	if err := hyperoctree.WriteToFile(limited, c.String(flagOutput), s.logger); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "limited %d leaves to %d leaves\n", tree.NumberOfLeaves(), limited.NumberOfLeaves())
	return nil
}

func (s *cliState) tessellateAction(c *cli.Context) error {
	tree, err := s.readArg(c)
	if err != nil {
		return err
	}
	result, err := tessellate.Run(c.Context, tree, s.logger.Sublogger("tessellate"))
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Cells", "Points", "Hanging points"})
	t.AppendRow(table.Row{len(result.Cells), len(result.Points), result.HangingPoints})
	fmt.Fprintln(c.App.Writer, t.Render())
	return nil
}

func (s *cliState) flattenAction(c *cli.Context) error {
	tree, err := s.readArg(c)
	if err != nil {
		return err
	}
	name := c.String(flagArray)
	if name == "" {
		name = tree.LeafData().ScalarsName()
	}
	grid, err := flatten.Flatten(c.Context, tree, name, s.logger.Sublogger("flatten"))
	if err != nil {
		return err
	}
	if err := writeGridCSV(c.Context, grid, c.String(flagOutput)); err != nil {
		return err
	}
	low, high := grid.Range()
	fmt.Fprintf(c.App.Writer, "wrote %dx%dx%d cells of %q in [%v, %v] to %s\n",
		grid.Dims[0], grid.Dims[1], grid.Dims[2], name, low, high, c.String(flagOutput))
	return nil
}

func writeGridCSV(ctx context.Context, grid *flatten.Grid, fn string) (err error) {
	//nolint:gosec
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"i", "j", "k", "leaf", "value"}); err != nil {
		return err
	}
	for k := 0; k < grid.Dims[2]; k++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for j := 0; j < grid.Dims[1]; j++ {
			for i := 0; i < grid.Dims[0]; i++ {
				at := grid.Index(i, j, k)
				if err := w.Write([]string{
					strconv.Itoa(i),
					strconv.Itoa(j),
					strconv.Itoa(k),
					strconv.Itoa(grid.LeafIDs[at]),
					strconv.FormatFloat(grid.Values[at], 'g', -1, 64),
				}); err != nil {
					return err
				}
			}
		}
	}
	w.Flush()
	return w.Error()
}

package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/pitmonticone/reach/internal/checkpoint"
	"github.com/pitmonticone/reach/internal/config"
	"github.com/pitmonticone/reach/internal/discretize"
	"github.com/pitmonticone/reach/internal/flowpipe"
	"github.com/pitmonticone/reach/internal/geo"
	"github.com/pitmonticone/reach/internal/kron"
	"github.com/pitmonticone/reach/internal/storage"
	"github.com/pitmonticone/reach/internal/tui"
	"github.com/pitmonticone/reach/internal/viz"
)

var (
	dataDir string
	verbose bool

	delta    float64
	steps    int
	model    string
	order    int
	maxOrder float64
	split    int
	expName  string

	configFile string
	preset     string

	checkpointPath    string
	checkpointSeconds float64

	setOp  string
	target string

	coord int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reach",
		Short: "guaranteed reachability analysis for linear systems",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".reach", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [system]",
		Short: "discretize and propagate a system",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalysis,
	}
	runCmd.Flags().Float64Var(&delta, "delta", config.DefaultDelta, "step size")
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	runCmd.Flags().StringVar(&model, "model", config.DefaultModel, "approximation model (forward, backward, nobloating, correctionhull)")
	runCmd.Flags().IntVar(&order, "order", config.DefaultOrder, "series truncation order")
	runCmd.Flags().Float64Var(&maxOrder, "max-order", config.DefaultMaxOrder, "zonotope order cap")
	runCmd.Flags().IntVar(&split, "split", 0, "bisect the initial set this many times and run in parallel")
	runCmd.Flags().StringVar(&expName, "exp", "pade", "matrix exponential method (pade, taylor, interval-enclosure)")
	runCmd.Flags().StringVar(&setOp, "setop", "lazy", "set-operation mode (lazy, concrete, interval)")
	runCmd.Flags().StringVar(&target, "target", "zonotope", "concretization target (zonotope, box)")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "bolt database for resumable snapshots")
	runCmd.Flags().Float64Var(&checkpointSeconds, "checkpoint-interval", 30, "seconds between snapshots")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run bounds",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&coord, "coord", -1, "coordinate to plot (-1 for all)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run bounds to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [system]",
		Short: "list available presets for a system",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for system: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	liftCmd := &cobra.Command{
		Use:   "lift [order]",
		Short: "print the Carleman-lifted matrix of the configured system",
		Args:  cobra.ExactArgs(1),
		RunE:  liftSystem,
	}
	liftCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liftCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	watchCmd := &cobra.Command{
		Use:   "watch [system]",
		Short: "propagate with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  watchAnalysis,
	}
	watchCmd.Flags().Float64Var(&delta, "delta", config.DefaultDelta, "step size")
	watchCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	watchCmd.Flags().StringVar(&model, "model", config.DefaultModel, "approximation model")
	watchCmd.Flags().IntVar(&order, "order", config.DefaultOrder, "series truncation order")
	watchCmd.Flags().Float64Var(&maxOrder, "max-order", config.DefaultMaxOrder, "zonotope order cap")
	watchCmd.Flags().StringVar(&expName, "exp", "pade", "matrix exponential method")
	watchCmd.Flags().StringVar(&setOp, "setop", "lazy", "set-operation mode (lazy, concrete, interval)")
	watchCmd.Flags().StringVar(&target, "target", "zonotope", "concretization target (zonotope, box)")
	watchCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	watchCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, presetsCmd, liftCmd, watchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig merges preset, config file, and flags: the preset is the
// base, the config file overrides it, and explicitly set flags win.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if len(args) > 0 {
		name := args[0]
		if preset != "" {
			p := config.GetPreset(name, preset)
			if p == nil {
				return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(name))
			}
			cfg = p
		} else if configFile == "" {
			def := config.DefaultPreset(name)
			if def == "" {
				return nil, fmt.Errorf("unknown system: %s", name)
			}
			cfg = config.GetPreset(name, def)
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("delta") {
		cfg.Delta = delta
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = model
	}
	if cmd.Flags().Changed("order") {
		cfg.Order = order
	}
	if cmd.Flags().Changed("max-order") {
		cfg.MaxOrder = maxOrder
	}
	if cmd.Flags().Changed("split") {
		cfg.Split = split
	}
	if cmd.Flags().Changed("exp") {
		cfg.Exp = expName
	}
	if cmd.Flags().Changed("setop") {
		cfg.SetOp = setOp
	}
	if cmd.Flags().Changed("target") {
		cfg.Target = target
	}
	return cfg, nil
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ivp, err := cfg.GetIVP()
	if err != nil {
		return err
	}
	m, err := cfg.GetModel()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	pcfg := flowpipe.Config{Steps: cfg.Steps, MaxOrder: cfg.MaxOrder}

	fmt.Printf("running %s (%s, delta=%g, steps=%d)...\n", cfg.Name, cfg.Model, cfg.Delta, cfg.Steps)
	start := time.Now()

	var result *flowpipe.Result
	if cfg.Split > 0 {
		ens := flowpipe.NewEnsemble(ivp, cfg.Delta, m)
		results, err := ens.Run(context.Background(), cfg.Split, pcfg)
		if err != nil {
			return err
		}
		result = &flowpipe.Result{
			Times:  results[0].Times,
			Bounds: flowpipe.UnionBounds(results),
		}
	} else {
		div, err := discretize.Discretize(ivp, cfg.Delta, m)
		if err != nil {
			return err
		}

		var io *checkpoint.IO
		if checkpointPath != "" {
			db, err := checkpoint.Open(checkpointPath)
			if err != nil {
				return err
			}
			defer db.Close()
			io = checkpoint.NewIO(db, []byte(cfg.Name), checkpointSeconds)
			pcfg.Checkpoint = io
		}

		resumed := false
		if io != nil {
			snap, z, err := io.Load()
			if err != nil {
				return err
			}
			if snap != nil && !snap.Final && snap.Step < cfg.Steps {
				fmt.Printf("resuming from step %d (t=%g)\n", snap.Step, snap.Time)
				result, err = flowpipe.PropagateFrom(context.Background(), div, z, snap.Step, snap.Time, pcfg)
				if err != nil {
					return err
				}
				resumed = true
			}
		}
		if !resumed {
			result, err = flowpipe.Propagate(context.Background(), div, pcfg)
			if err != nil {
				return err
			}
		}

		if io != nil {
			last := len(result.Sets) - 1
			if err := io.Finalize(cfg.Steps, result.Times[last], result.Sets[last]); err != nil {
				logrus.WithError(err).Warn("checkpoint: finalize failed")
			}
		}
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg.Name, cfg.Model, cfg.Delta, cfg.Order, result)
	if err != nil {
		return err
	}

	last := result.Bounds[len(result.Bounds)-1]
	lo, hi := last.Lo(), last.Hi()
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", len(result.Times)-1)
	fmt.Println("\nfinal bounds:")
	for i := range lo {
		fmt.Printf("  x%d: [%.6f, %.6f]\n", i, lo[i], hi[i])
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMODEL\tTIME\tDELTA\tSTEPS\tDIM")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.4fs\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Delta,
			run.Steps,
			run.Dim,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	_, lo, hi, err := st.LoadBounds(runID)
	if err != nil {
		return err
	}
	if len(lo) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(lo))

	if coord >= 0 {
		graph, err := viz.PlotBounds(lo, hi, coord, fmt.Sprintf("x%d bounds", coord))
		if err != nil {
			return err
		}
		fmt.Println(graph)
		return nil
	}

	graphs, err := viz.PlotAll(lo, hi, meta.Name)
	if err != nil {
		return err
	}
	fmt.Print(graphs)

	widths, err := viz.PlotWidth(lo, hi, "total bound width")
	if err != nil {
		return err
	}
	fmt.Println(widths)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	times, lo, hi, err := st.LoadBounds(runID)
	if err != nil {
		return err
	}

	result := &flowpipe.Result{Times: times}
	for i := range lo {
		result.Bounds = append(result.Bounds, geo.FromBounds(lo[i], hi[i]))
	}
	return storage.ExportJSONStdout(meta.Name, meta.Model, meta.Delta, result)
}

func liftSystem(cmd *cobra.Command, args []string) error {
	var liftOrder int
	if _, err := fmt.Sscanf(args[0], "%d", &liftOrder); err != nil || liftOrder < 1 {
		return fmt.Errorf("lift order must be a positive integer, got %q", args[0])
	}

	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}
	ivp, err := cfg.GetIVP()
	if err != nil {
		return err
	}
	if ivp.A == nil {
		return fmt.Errorf("lift requires a point state matrix")
	}

	n := ivp.Dim()
	f2 := mat.NewDense(n, n*n, nil) // linear system, no quadratic part
	lifted, err := kron.Lifted(ivp.A, f2, liftOrder)
	if err != nil {
		return err
	}

	fmt.Printf("lifted dimension: %d\n", kron.LiftedDim(n, liftOrder))
	fmt.Printf("%v\n\n", mat.Formatted(lifted, mat.Squeeze()))

	fmt.Println("monomial basis of the top block:")
	for _, mono := range kron.Basis(n, liftOrder) {
		fmt.Printf("  %s\n", mono)
	}
	return nil
}

func watchAnalysis(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ivp, err := cfg.GetIVP()
	if err != nil {
		return err
	}
	m, err := cfg.GetModel()
	if err != nil {
		return err
	}
	div, err := discretize.Discretize(ivp, cfg.Delta, m)
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(cfg.Name, div, cfg.Steps, cfg.MaxOrder))
	_, err = p.Run()
	return err
}

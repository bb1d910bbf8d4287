package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xtding233/gacha-curve/internal/calculator"
	"github.com/xtding233/gacha-curve/internal/catalog"
	"github.com/xtding233/gacha-curve/internal/config"
)

// flags shared by the curve, plan and verify commands
type requestFlags struct {
	game, banner, preset string
	csvPath              string
	targets              map[string]int
	copies               int
	maxPulls             int
	step                 int
}

func (f *requestFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.game, "game", catalog.BuiltinGame, "game catalog under <data-dir>/games")
	fl.StringVar(&f.banner, "banner", "", "banner layer of the game")
	fl.StringVar(&f.preset, "preset", "", "preset id (targets and item patches)")
	fl.StringVar(&f.csvPath, "csv", "", "read items from a label,probability,count CSV instead of a game")
	fl.StringToIntVar(&f.targets, "target", nil, "target label=count (repeatable)")
	fl.IntVar(&f.copies, "copies", 0, "copies required per target")
	fl.IntVar(&f.maxPulls, "max-pulls", 0, "pulls to simulate")
	fl.IntVar(&f.step, "step", 0, "sample every n pulls")
}

func (f *requestFlags) request() (calculator.Request, error) {
	req := calculator.Request{
		Game:           f.game,
		Banner:         f.banner,
		Preset:         f.preset,
		TargetCounts:   f.targets,
		CopiesRequired: f.copies,
		MaxPulls:       f.maxPulls,
		SampleStep:     f.step,
	}
	if f.csvPath != "" {
		file, err := os.Open(f.csvPath)
		if err != nil {
			return calculator.Request{}, err
		}
		defer file.Close()
		items, err := catalog.ParseCSV(file)
		if err != nil {
			return calculator.Request{}, fmt.Errorf("%s: %w", f.csvPath, err)
		}
		req.Game, req.Banner, req.Preset = "", "", ""
		req.Items = items
	}
	return req, nil
}

type app struct {
	out     io.Writer
	asJSON  bool
	dataDir string
}

func (a *app) service() (*calculator.Service, error) {
	return calculator.New(catalog.NewLoader(viper.GetString("data_dir")), calculator.Options{
		MaxPullsLimit: config.MaxPullsLimit(),
		Timeout:       config.ComputeTimeout(),
		Clock:         clockwork.NewRealClock(),
	})
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	rootCmd := &cobra.Command{
		Use:          "gachacalc",
		Short:        "Exact gacha probability curves",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.SetDefaults(viper.GetViper())
			viper.SetEnvPrefix("GACHA")
			viper.AutomaticEnv()
			viper.BindPFlag("data_dir", cmd.Flags().Lookup("data-dir"))
		},
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "./config", "catalog directory (contains games/)")
	rootCmd.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print JSON instead of tables")

	rootCmd.AddCommand(a.curveCmd(), a.planCmd(), a.verifyCmd(), a.presetsCmd(), a.exportCSVCmd())
	return rootCmd
}

func (a *app) curveCmd() *cobra.Command {
	var rf requestFlags
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Print P(at least k targets) by pull count",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := rf.request()
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			resp, err := svc.Curve(cmd.Context(), req)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(resp)
			}
			_, err = fmt.Fprintln(a.out, renderCurve(resp.Targets, resp.Curve))
			return err
		},
	}
	rf.register(cmd)
	return cmd
}

func (a *app) planCmd() *cobra.Command {
	var (
		rf          requestFlags
		probability float64
		budget      int
		atLeast     int
		firstTime   []string
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Pulls, tokens and purchases needed for a probability, or what a budget buys",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := rf.request()
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			resp, err := svc.Plan(cmd.Context(), calculator.PlanRequest{
				Request:     req,
				AtLeast:     atLeast,
				Probability: probability,
				BudgetCents: budget,
				FirstTime:   firstTime,
			})
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(resp)
			}
			_, err = fmt.Fprintln(a.out, renderPlan(resp))
			return err
		},
	}
	rf.register(cmd)
	cmd.Flags().Float64Var(&probability, "probability", 0, "desired P(at least k targets), in (0,1]")
	cmd.Flags().IntVar(&budget, "budget", 0, "budget in cents, tax included")
	cmd.Flags().IntVar(&atLeast, "at-least", 0, "k; 0 means every target")
	cmd.Flags().StringSliceVar(&firstTime, "first-time", nil, "pack ids whose first-time x2 bonus is unused")
	return cmd
}

func (a *app) verifyCmd() *cobra.Command {
	var (
		rf     requestFlags
		trials int
		seed   uint64
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare the exact curve with a seeded Monte Carlo replay",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := rf.request()
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			resp, err := svc.Verify(cmd.Context(), req, trials, seed)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(resp)
			}
			_, err = fmt.Fprintln(a.out, renderVerify(resp))
			return err
		},
	}
	rf.register(cmd)
	cmd.Flags().IntVar(&trials, "trials", 20000, "replayed pull sequences")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}

func (a *app) presetsCmd() *cobra.Command {
	var game, banner string
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the presets of a game",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			presets, err := svc.Presets(game, banner)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(presets)
			}
			_, err = fmt.Fprintln(a.out, renderPresets(presets))
			return err
		},
	}
	cmd.Flags().StringVar(&game, "game", catalog.BuiltinGame, "game catalog")
	cmd.Flags().StringVar(&banner, "banner", "", "banner layer")
	return cmd
}

func (a *app) exportCSVCmd() *cobra.Command {
	var game, banner, preset string
	cmd := &cobra.Command{
		Use:   "export-csv",
		Short: "Write a game's item table as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			items, err := svc.Items(game, banner, preset)
			if err != nil {
				return err
			}
			return catalog.WriteCSV(a.out, items)
		},
	}
	cmd.Flags().StringVar(&game, "game", catalog.BuiltinGame, "game catalog")
	cmd.Flags().StringVar(&banner, "banner", "", "banner layer")
	cmd.Flags().StringVar(&preset, "preset", "", "apply a preset's item patches")
	return cmd
}

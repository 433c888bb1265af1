package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/rocketmc/internal/analysis"
	"github.com/san-kum/rocketmc/internal/campaign"
	"github.com/san-kum/rocketmc/internal/config"
	"github.com/san-kum/rocketmc/internal/export"
	"github.com/san-kum/rocketmc/internal/storage"
	"github.com/san-kum/rocketmc/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	root       string
	iterations int
	workers    int
	seed       int64
	simulator  string
	timeout    string
	live       bool
	verbose    bool
	logFormat  string
	jsonOut    bool
	bins       int
	svgOut     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rocketmc",
		Short: "monte carlo rocket design campaigns on JSBSim",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".", "directory holding campaign roots")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console|json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a campaign",
		Long: `Run generates a design per iteration, writes it as a JSBSim case into the
worker's directory and runs the simulator there. Worker directories are
rewritten on every iteration; only the result files under <root>/data are kept.

Interrupting (Ctrl+C) stops each worker after its in-flight simulation.`,
		Args: cobra.NoArgs,
		RunE: runCampaign,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().StringVar(&root, "root", "", "campaign root directory")
	runCmd.Flags().IntVarP(&iterations, "iterations", "n", 0, "number of simulations")
	runCmd.Flags().IntVarP(&workers, "workers", "w", 0, "number of parallel workers")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (worker i uses seed+i)")
	runCmd.Flags().StringVar(&simulator, "simulator", "", "simulator executable")
	runCmd.Flags().StringVar(&timeout, "timeout", "", "per-simulation timeout (e.g. 10m)")
	runCmd.Flags().BoolVar(&live, "live", false, "show live progress")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list campaigns",
		Args:  cobra.NoArgs,
		RunE:  listCampaigns,
	}

	reportCmd := &cobra.Command{
		Use:   "report [root]",
		Short: "show a campaign report",
		Args:  cobra.ExactArgs(1),
		RunE:  showReport,
	}
	reportCmd.Flags().BoolVar(&jsonOut, "json", false, "print the manifest as JSON")

	plotCmd := &cobra.Command{
		Use:   "plot [result.csv | index]",
		Short: "plot a simulation result",
		Args:  cobra.ExactArgs(1),
		RunE:  plotResult,
	}
	plotCmd.Flags().StringVar(&root, "root", config.DefaultRoot, "campaign root used to resolve an index")
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "also write the altitude trace as SVG")

	summaryCmd := &cobra.Command{
		Use:   "summary [root]",
		Short: "summarize flight results of a campaign",
		Args:  cobra.ExactArgs(1),
		RunE:  summarize,
	}
	summaryCmd.Flags().IntVar(&bins, "bins", 20, "apogee histogram bins")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a campaign config file",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "start from preset")

	rootCmd.AddCommand(runCmd, listCmd, reportCmd, plotCmd, summaryCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func listCampaigns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no campaigns found")
		return nil
	}
	fmt.Println(viz.RenderManifests(runs))
	return nil
}

func showReport(cmd *cobra.Command, args []string) error {
	m, err := storage.ReadManifest(args[0])
	if err != nil {
		return err
	}
	if jsonOut {
		return storage.ExportJSON(os.Stdout, m)
	}
	if m.Report == nil {
		return fmt.Errorf("manifest in %s has no report", args[0])
	}
	fmt.Println(viz.RenderReport(m.Report))
	return nil
}

func resolveResult(arg string) string {
	if idx, err := strconv.Atoi(arg); err == nil {
		return filepath.Join(root, campaign.ResultsDirName, campaign.ResultName(idx))
	}
	return arg
}

func plotResult(cmd *cobra.Command, args []string) error {
	res, err := storage.LoadResult(resolveResult(args[0]))
	if err != nil {
		return err
	}
	if res.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("result: %s\n", res.Path)
	fmt.Printf("samples: %d\n\n", res.Len())

	for _, col := range []string{analysis.ColAltitude, analysis.ColVDown, analysis.ColThrust} {
		data, ok := res.Column(col)
		if !ok {
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(col),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	flight, err := analysis.Analyze(res)
	if err != nil {
		return err
	}

	if svgOut != "" {
		svg, err := export.ResultSVG(res, analysis.ColTime, analysis.ColAltitude, 800, 400)
		if err != nil {
			return err
		}
		if err := export.WriteFile(svgOut, svg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
	}
	fmt.Printf("apogee: %.1f m at %.1f s\n", flight.Apogee, flight.ApogeeTime)
	fmt.Printf("peak thrust: %.1f N, burn %.1f s\n", flight.PeakThrust, flight.BurnTime)
	return nil
}

func summarize(cmd *cobra.Command, args []string) error {
	survey, err := analysis.SurveyDir(filepath.Join(args[0], campaign.ResultsDirName))
	if err != nil {
		return err
	}
	if len(survey.Flights) == 0 {
		return fmt.Errorf("no results in %s", args[0])
	}

	fmt.Println(viz.RenderSummary(survey.Summary()))
	fmt.Println()

	if hist := analysis.Histogram(survey.Apogees(), bins); len(hist) > 1 {
		fmt.Println(asciigraph.Plot(hist,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("apogee distribution"),
		))
		fmt.Println()
	}

	if best, ok := survey.Best(); ok {
		fmt.Printf("best: %s apogee %.1f m\n", filepath.Base(best.Artifact), best.Apogee)
	}
	for path, err := range survey.Skipped {
		fmt.Printf("skipped %s: %v\n", filepath.Base(path), err)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tGENERATOR\tSIMS\tWORKERS")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", name, cfg.Generator.Kind, cfg.Iterations, cfg.Workers)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

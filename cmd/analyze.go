package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/routegap/core/gap"
	"github.com/kilianp07/routegap/pkg/export"
)

var analyzeFormat string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one analysis of the configured source and print it",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "table", "output format: table, json or csv")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	var write func(io.Writer, gap.Report) error
	switch analyzeFormat {
	case "table":
		write = writeTable
	case "json":
		write = export.WriteJSON
	case "csv":
		write = func(w io.Writer, r gap.Report) error { return export.WriteCSV(w, r.Routes) }
	default:
		return fmt.Errorf("unknown format %q", analyzeFormat)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, closeFn, err := newService(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	rep, err := svc.Analyze(commandContext(cmd))
	if err != nil {
		return err
	}
	return write(cmd.OutOrStdout(), rep)
}

func writeTable(w io.Writer, r gap.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ROUTE\tDEMAND\tVEHICLES\tCAPACITY\tGAP\t")
	for _, rt := range r.Routes {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t\n",
			rt.RouteName, rt.PassengerDemand, rt.VehiclesAssigned, rt.TotalCapacity, rt.Gap)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	for _, rt := range r.Routes {
		fmt.Fprintf(w, "- %s\n", rt.Suggestion.Text)
	}
	s := r.Summary
	fmt.Fprintf(w, "\n%d routes, demand %d, capacity %d, net gap %d, utilization %.1f%%\n",
		s.Routes, s.TotalDemand, s.TotalCapacity, s.NetGap, s.Utilization*100)
	for _, t := range r.Plan.Transfers {
		fmt.Fprintf(w, "move %d from %s to %s\n", t.Vehicles, t.From, t.To)
	}
	if r.Plan.Unmet > 0 {
		fmt.Fprintf(w, "still needed: %d\n", r.Plan.Unmet)
	}
	_, err := fmt.Fprintf(w, "run %s (%s, %d seats per vehicle)\n", r.RunID, r.Source, r.CapacityPerVehicle)
	return err
}

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kilianp07/routegap/core/gap"
	"github.com/kilianp07/routegap/pkg/export"
	"github.com/kilianp07/routegap/pkg/report"
)

const (
	pageFile  = "index.html"
	chartFile = "chart.html"
)

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the HTML report, chart and CSV export to a directory",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "report", "output directory")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, closeFn, err := newService(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := os.MkdirAll(reportOut, 0o755); err != nil {
		return err
	}
	page := report.Page{
		Title:       cfg.Report.Title,
		Description: cfg.Report.Description,
		ChartURL:    chartFile,
		CSVURL:      cfg.Report.CSVFilename,
		CSVName:     cfg.Report.CSVFilename,
	}

	rep, analysisErr := svc.Analyze(commandContext(cmd))
	if analysisErr != nil {
		// The page still documents the failure.
		page.Err = analysisErr
		page.ErrKind = gap.Kind(analysisErr)
		page.ChartURL, page.CSVURL = "", ""
		if err := writeFile(filepath.Join(reportOut, pageFile), func(w io.Writer) error {
			return report.WritePage(w, page)
		}); err != nil {
			return err
		}
		return analysisErr
	}
	page.Report = &rep

	files := map[string]func(io.Writer) error{
		pageFile:  func(w io.Writer) error { return report.WritePage(w, page) },
		chartFile: func(w io.Writer) error { return report.WriteChart(w, cfg.Report.Title, rep.Routes) },
		cfg.Report.CSVFilename: func(w io.Writer) error {
			return export.WriteCSV(w, rep.Routes)
		},
	}
	for name, fn := range files {
		if err := writeFile(filepath.Join(reportOut, name), fn); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "report %s written to %s\n", rep.RunID, reportOut)
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

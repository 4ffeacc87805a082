package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/glucoscope/predictor/internal/diagnosis"
	"github.com/glucoscope/predictor/internal/patient"
)

var (
	predictName   string
	predictFormat string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score a single record given as flags",
	Example: `  predictor predict --glucose 160 --bmi 33.1 --age 45
  predictor predict --name "Jane Doe" --format text`,
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringVar(&predictName, "name", "", "patient name")
	predictCmd.Flags().StringVar(&predictFormat, "format", "json", "output format (json, text)")
	for _, f := range patient.Fields() {
		predictCmd.Flags().Float64(flagName(f.Key), f.Default, fmt.Sprintf("%s [%g-%g]", f.Label, f.Min, f.Max))
	}
}

func runPredict(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	resolvePaths(cfg)

	record, err := recordFromFlags(cmd)
	if err != nil {
		return err
	}

	predictor, err := diagnosis.Load(cfg.DatasetPath, cfg.ModelPath)
	if err != nil {
		return err
	}
	a, err := predictor.Assess(record)
	if err != nil {
		return err
	}

	switch predictFormat {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	case "text":
		writeText(cmd.OutOrStdout(), a)
		return nil
	default:
		return fmt.Errorf("unknown format %q", predictFormat)
	}
}

func recordFromFlags(cmd *cobra.Command) (patient.Record, error) {
	r := patient.Record{Name: predictName}
	for _, f := range patient.Fields() {
		v, err := cmd.Flags().GetFloat64(flagName(f.Key))
		if err != nil {
			return patient.Record{}, err
		}
		r.Set(f.Key, v)
	}
	return r, nil
}

func writeText(w io.Writer, a diagnosis.Assessment) {
	if a.Record.Name != "" {
		fmt.Fprintf(w, "Patient Name: %s\n", a.Record.Name)
	}
	for _, row := range a.Record.Rows() {
		fmt.Fprintf(w, "  %-34s %s\n", row.Label, row.Value)
	}
	fmt.Fprintf(w, "\n%s (score %.3f)\n%s\n", a.Report.Headline, a.Report.Score, a.Report.Intro)
	for _, line := range a.Report.Advice {
		fmt.Fprintf(w, "  - %s\n", line)
	}
	if a.Report.Closing != "" {
		fmt.Fprintln(w, a.Report.Closing)
	}
}

// flagName turns a field key such as bloodPressure into blood-pressure.
func flagName(key string) string {
	var b strings.Builder
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

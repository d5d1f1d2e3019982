package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/company-pipeline/internal/source"
)

var (
	sampleCount int
	sampleSeed  int64
	sampleOut   string
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate sample raw records as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		records := source.GenerateSample(sampleCount, sampleSeed)

		fields := make([]map[string]any, len(records))
		for i, r := range records {
			fields[i] = r.Fields
		}
		data, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return eris.Wrap(err, "sample: marshal records")
		}

		if sampleOut == "" || sampleOut == "-" {
			_, err = os.Stdout.Write(append(data, '\n'))
			return err
		}
		if err := os.WriteFile(sampleOut, data, 0o644); err != nil {
			return eris.Wrapf(err, "sample: write %s", sampleOut)
		}
		return nil
	},
}

func init() {
	sampleCmd.Flags().IntVarP(&sampleCount, "count", "n", 100, "number of records to generate")
	sampleCmd.Flags().Int64Var(&sampleSeed, "seed", 0, "random seed")
	sampleCmd.Flags().StringVarP(&sampleOut, "out", "o", "-", "output file (- for stdout)")
	rootCmd.AddCommand(sampleCmd)
}

package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/company-pipeline/internal/enrich"
	"github.com/sells-group/company-pipeline/internal/govern"
	"github.com/sells-group/company-pipeline/internal/model"
	"github.com/sells-group/company-pipeline/internal/pipeline"
	"github.com/sells-group/company-pipeline/internal/source"
	"github.com/sells-group/company-pipeline/internal/store"
	anthropicpkg "github.com/sells-group/company-pipeline/pkg/anthropic"
)

var (
	runInputs   []string
	runSample   int
	runNoEnrich bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline over input record files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var records []*model.RawRecord
		for _, path := range runInputs {
			recs, err := source.Load(path)
			if err != nil {
				return err
			}
			records = append(records, recs...)
		}
		if runSample > 0 {
			records = append(records, source.GenerateSample(runSample, 0)...)
		}
		if len(records) == 0 {
			return eris.New("run: no input records (use --input or --sample)")
		}

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		var enricher *enrich.Enricher
		if !runNoEnrich {
			if cfg.Anthropic.Key == "" {
				zap.L().Warn("run: no anthropic key configured, skipping enrichment")
			} else {
				client := anthropicpkg.NewClient(cfg.Anthropic.Key)
				governor := govern.New(cfg.Governor)
				enricher = enrich.New(client, governor, cfg)
			}
		}

		p := pipeline.New(cfg, st, enricher)
		stats, err := p.Run(ctx, records)
		if err != nil {
			return err
		}

		fmt.Printf("processed %d records: %d entities (%d rejected, %d merged, %d enriched)\n",
			stats.RecordsIn, stats.Entities, stats.Rejected,
			stats.RecordsIn-stats.Rejected-stats.Entities, stats.Enriched)
		return nil
	},
}

func init() {
	runCmd.Flags().StringSliceVarP(&runInputs, "input", "i", nil, "input record files (json, csv, yaml); repeatable")
	runCmd.Flags().IntVar(&runSample, "sample", 0, "append N generated sample records")
	runCmd.Flags().BoolVar(&runNoEnrich, "no-enrich", false, "skip LLM enrichment")
	rootCmd.AddCommand(runCmd)
}

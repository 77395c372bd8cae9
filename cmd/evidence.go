package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/GuoCheng12/aie/internal/fields"
	"github.com/GuoCheng12/aie/internal/logger"
	"github.com/GuoCheng12/aie/internal/normalize"
	"github.com/GuoCheng12/aie/internal/quality"
	"github.com/GuoCheng12/aie/internal/table"
	"github.com/GuoCheng12/aie/internal/ui"
	"github.com/GuoCheng12/aie/internal/validate"
	"github.com/GuoCheng12/aie/models"
)

var (
	evidencePrivateFlag  string
	evidenceFeaturesFlag string
	evidenceQCFlag       string
	evidenceOutFlag      string
	evidenceManifestFlag string
	evidenceTableFlag    string
)

// evidenceCmd groups the evidence-table stages.
var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Build and validate the canonical evidence table",
}

var evidenceBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Normalize the source tables into the evidence table",
	Long: `Reads the cleaned private observations and the aTB feature/QC tables,
normalizes every cell into one evidence row with a deterministic id,
classifies row quality, and writes the table plus its build manifest.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("evidence build")
		fs := afero.NewOsFs()
		cfg := GetConfig()
		buildTS := time.Now().UTC().Format(time.RFC3339)

		reg, err := fields.Load(fs, cfg.Fields.Registry)
		if err != nil {
			return fmt.Errorf("load field registry: %w", err)
		}

		privatePath := dataPath(evidencePrivateFlag, cfg.Data.PrivateClean)
		featuresPath := dataPath(evidenceFeaturesFlag, cfg.Data.ATBFeatures)
		qcPath := dataPath(evidenceQCFlag, cfg.Data.ATBQC)
		outPath := dataPath(evidenceOutFlag, cfg.Data.EvidenceTable)
		manifestPath := dataPath(evidenceManifestFlag, cfg.Data.EvidenceManifest)

		private, err := table.Read(fs, privatePath)
		if err != nil {
			return fmt.Errorf("read private observations: %w", err)
		}
		features, err := table.Read(fs, featuresPath)
		if err != nil {
			return fmt.Errorf("read atb features: %w", err)
		}
		qc, err := table.Read(fs, qcPath)
		if err != nil {
			return fmt.Errorf("read atb qc: %w", err)
		}

		privateRecords, privateStats, err := normalize.PrivateObservations(private, reg, buildTS)
		if err != nil {
			return fmt.Errorf("normalize private observations: %w", err)
		}
		atbRecords, atbStats, err := normalize.ATBComputations(features, qc, reg, buildTS)
		if err != nil {
			return fmt.Errorf("normalize atb computations: %w", err)
		}

		records := append(privateRecords, atbRecords...)
		if err := quality.Apply(records); err != nil {
			return fmt.Errorf("classify quality: %w", err)
		}

		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, r.Row())
		}
		if err := table.Write(fs, outPath, models.EvidenceColumns, rows); err != nil {
			return fmt.Errorf("write evidence table: %w", err)
		}

		manifest := normalize.BuildManifest(records, privateStats, atbStats, normalize.ManifestInputs{
			NPrivateCleanRecords: private.Len(),
			NATBFeaturesRows:     features.Len(),
			NATBQCRows:           qc.Len(),
		}, buildTS)
		if err := table.WriteJSON(fs, manifestPath, manifest); err != nil {
			return fmt.Errorf("write build manifest: %w", err)
		}

		slog.Info("evidence table built",
			"rows", len(records),
			"private", len(privateRecords),
			"atb", len(atbRecords),
			"out", outPath)

		fmt.Print(ui.KV([][2]string{
			{"evidence rows", fmt.Sprintf("%d", len(records))},
			{"private observations", fmt.Sprintf("%d", len(privateRecords))},
			{"atb computations", fmt.Sprintf("%d", len(atbRecords))},
			{"table", outPath},
			{"manifest", manifestPath},
		}))
		if n := parseFailureTotal(privateStats, atbStats); n > 0 {
			fmt.Println(ui.StylePrefixWarn.Render("! ") +
				fmt.Sprintf("%d values failed numeric parsing, see the manifest invalid block", n))
		}
		return nil
	},
}

// parseFailureTotal sums the per-field parse failures across sources.
func parseFailureTotal(stats ...*normalize.SourceStats) int {
	total := 0
	for _, s := range stats {
		for _, n := range s.ParseFailuresByField {
			total += n
		}
	}
	return total
}

var evidenceValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Gate the evidence table before it is consumed downstream",
	Long: `Checks schema, null contracts, id uniqueness, enum domains, ranges,
timestamps and the per-source alignment rules. Prints a summary, then
every violation class. Exits non-zero if any check fails.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("evidence validate")
		fs := afero.NewOsFs()
		cfg := GetConfig()

		path := dataPath(evidenceTableFlag, cfg.Data.EvidenceTable)
		tbl, err := table.Read(fs, path)
		if err != nil {
			return fmt.Errorf("read evidence table: %w", err)
		}

		printEvidenceSummary(validate.SummarizeEvidence(tbl))

		errs := validate.Evidence(tbl)
		if len(errs) > 0 {
			for _, e := range errs {
				fmt.Println(ui.StylePrefixError.Render("✗ ") + e)
			}
			return validate.ErrValidationFailed
		}
		fmt.Println(ui.StylePrefixDone.Render("✓ ") + "evidence table is valid")
		return nil
	},
}

func printEvidenceSummary(s validate.EvidenceSummary) {
	fmt.Println(ui.StyleSectionTitle.Render("Evidence summary"))
	fmt.Print(ui.KV([][2]string{
		{"rows", fmt.Sprintf("%d", s.Rows)},
		{"subject_inchikey nulls", fmt.Sprintf("%d", s.NSubjectInChIKeyNull)},
		{"value_num non-null", fmt.Sprintf("%d", s.NValueNumNonNull)},
		{"sol rows with unknown solvent", fmt.Sprintf("%d", s.NSolStateRowsSolventUnknown)},
	}))

	t := &ui.Table{Headers: []string{"field", "count"}}
	for _, fc := range s.TopFields {
		t.Rows = append(t.Rows, []string{fc.Field, fmt.Sprintf("%d", fc.Count)})
	}
	fmt.Print(t.Render())
}

func init() {
	evidenceBuildCmd.Flags().StringVar(&evidencePrivateFlag, "private", "", "cleaned private observations CSV")
	evidenceBuildCmd.Flags().StringVar(&evidenceFeaturesFlag, "atb-features", "", "aTB feature table CSV")
	evidenceBuildCmd.Flags().StringVar(&evidenceQCFlag, "atb-qc", "", "aTB QC table CSV")
	evidenceBuildCmd.Flags().StringVar(&evidenceOutFlag, "out", "", "evidence table output path")
	evidenceBuildCmd.Flags().StringVar(&evidenceManifestFlag, "manifest", "", "build manifest output path")

	evidenceValidateCmd.Flags().StringVar(&evidenceTableFlag, "table", "", "evidence table to validate")

	evidenceCmd.AddCommand(evidenceBuildCmd)
	evidenceCmd.AddCommand(evidenceValidateCmd)
	rootCmd.AddCommand(evidenceCmd)
}

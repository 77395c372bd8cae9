package normalize

import (
	"strings"

	"github.com/GuoCheng12/aie/models"
)

// solFields are the fields counted for the "sol-state rows with unknown
// solvent" manifest stat.
var solFields = map[string]bool{
	"emission_sol":       true,
	"qy_sol":             true,
	"tau_sol":            true,
	"absorption_peak_nm": true,
	"absorption":         true,
}

// ManifestInputs records input table sizes.
type ManifestInputs struct {
	NPrivateCleanRecords int `json:"n_private_clean_records"`
	NATBFeaturesRows     int `json:"n_atb_features_rows"`
	NATBQCRows           int `json:"n_atb_qc_rows"`
}

// InvalidSummary aggregates everything that went sideways during the build
// without being fatal.
type InvalidSummary struct {
	NRowsSubjectInChIKeyNull    int             `json:"n_rows_subject_inchikey_null"`
	ParseFailuresByFieldPrivate map[string]int  `json:"parse_failures_by_field_private"`
	ParseFailuresByFieldATB     map[string]int  `json:"parse_failures_by_field_atb"`
	ATBTimestampSourceCounts    map[string]int  `json:"atb_timestamp_source_counts"`
	NSolStateRowsSolventUnknown int             `json:"n_sol_state_rows_solvent_unknown"`
	InvalidSamples              []InvalidSample `json:"invalid_samples"`
}

// Manifest is the evidence-build manifest written next to the evidence table.
type Manifest struct {
	BuildTimestamp            string                    `json:"build_timestamp"`
	Inputs                    ManifestInputs            `json:"inputs"`
	CountsByEvidenceType      map[string]int            `json:"counts_by_evidence_type"`
	CountsByField             map[string]int            `json:"counts_by_field"`
	CountsByEvidenceTypeField map[string]map[string]int `json:"counts_by_evidence_type_field"`
	CountsByQualityFlag       map[string]int            `json:"counts_by_quality_flag"`
	CountsByFieldOutOfRange   map[string]int            `json:"counts_by_field_out_of_range"`
	Invalid                   InvalidSummary            `json:"invalid"`
}

// BuildManifest derives the manifest from the classified evidence rows plus
// the per-source normalization stats.
func BuildManifest(records []models.EvidenceRecord, private, atb *SourceStats, inputs ManifestInputs, buildTS string) Manifest {
	countsByType := map[string]int{}
	countsByField := map[string]int{}
	countsByTypeField := map[string]map[string]int{}
	countsByFlag := map[string]int{}
	outOfRange := map[string]int{}
	atbTSSources := map[string]int{}

	nSubjectNull := 0
	nSolUnknownSolvent := 0

	for _, r := range records {
		countsByType[string(r.EvidenceType)]++
		countsByField[r.Field]++
		if countsByTypeField[string(r.EvidenceType)] == nil {
			countsByTypeField[string(r.EvidenceType)] = map[string]int{}
		}
		countsByTypeField[string(r.EvidenceType)][r.Field]++
		countsByFlag[string(r.QualityFlag)]++

		if r.QualityFlag != models.QualityOK &&
			(strings.HasPrefix(r.Field, "qy_") || strings.HasPrefix(r.Field, "tau_") || r.Field == "absorption_peak_nm") {
			outOfRange[r.Field]++
		}

		if r.SubjectInChIKey == "" {
			nSubjectNull++
		}
		if r.EvidenceType == models.EvidenceATBComputation {
			atbTSSources[r.TimestampSource]++
		}
		if solFields[r.Field] && r.ConditionSolvent == "unknown" {
			nSolUnknownSolvent++
		}
	}

	samples := append([]InvalidSample{}, private.InvalidSamples...)
	samples = append(samples, atb.InvalidSamples...)
	if len(samples) > maxInvalidSamples {
		samples = samples[:maxInvalidSamples]
	}

	return Manifest{
		BuildTimestamp:            buildTS,
		Inputs:                    inputs,
		CountsByEvidenceType:      countsByType,
		CountsByField:             countsByField,
		CountsByEvidenceTypeField: countsByTypeField,
		CountsByQualityFlag:       countsByFlag,
		CountsByFieldOutOfRange:   outOfRange,
		Invalid: InvalidSummary{
			NRowsSubjectInChIKeyNull:    nSubjectNull,
			ParseFailuresByFieldPrivate: private.ParseFailuresByField,
			ParseFailuresByFieldATB:     atb.ParseFailuresByField,
			ATBTimestampSourceCounts:    atbTSSources,
			NSolStateRowsSolventUnknown: nSolUnknownSolvent,
			InvalidSamples:              samples,
		},
	}
}

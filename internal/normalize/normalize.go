// Package normalize converts the heterogeneous source tables (private lab
// records, aTB computed features plus QC status) into one typed evidence
// stream with deterministic identities and inferred conditions.
package normalize

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/GuoCheng12/aie/internal/fields"
	"github.com/GuoCheng12/aie/internal/table"
	"github.com/GuoCheng12/aie/models"
)

// maxInvalidSamples caps the invalid-sample list carried into the manifest.
const maxInvalidSamples = 50

// InvalidSample is one manifest example of a row that failed numeric parsing.
type InvalidSample struct {
	EvidenceType string `json:"evidence_type"`
	SourceID     string `json:"source_id"`
	Field        string `json:"field"`
	Reason       string `json:"reason"`
	Value        string `json:"value"`
}

// SourceStats accumulates per-source counters for the build manifest.
type SourceStats struct {
	CountsByField        map[string]int
	ParseFailuresByField map[string]int
	InvalidSamples       []InvalidSample
}

func newSourceStats() *SourceStats {
	return &SourceStats{
		CountsByField:        map[string]int{},
		ParseFailuresByField: map[string]int{},
	}
}

func (s *SourceStats) addInvalid(sample InvalidSample) {
	if len(s.InvalidSamples) < maxInvalidSamples {
		s.InvalidSamples = append(s.InvalidSamples, sample)
	}
}

// parseFloat mirrors a permissive float coercion: trimmed text, ok=false on
// anything that is not a finite number. Empty input is a null, not a failure.
// ParseFloat accepts "NaN" and "Inf" spellings; those are never valid
// measurement values here and count as parse failures.
func parseFloat(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return &f, true
}

// sourceIDFromRecordID normalizes a private record id into a source id.
// Numeric ids are canonicalized to their integer decimal form; a missing id
// falls back to "unknown_record".
func sourceIDFromRecordID(raw string) string {
	if raw == "" {
		return "unknown_record"
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return strconv.FormatInt(int64(f), 10)
	}
	return raw
}

// PrivateObservations emits one evidence row per non-empty private field per
// record. Parse failures keep the row with a null numeric value, except
// absorption_peak_nm, which is a pre-derived numeric field and is skipped
// outright when unparseable.
func PrivateObservations(tbl *table.Table, reg *fields.Registry, buildTS string) ([]models.EvidenceRecord, *SourceStats, error) {
	if err := tbl.Require("id", "inchikey"); err != nil {
		return nil, nil, err
	}

	stats := newSourceStats()
	var records []models.EvidenceRecord

	for i := 0; i < tbl.Len(); i++ {
		sourceID := sourceIDFromRecordID(tbl.Get(i, "id"))
		inchikey := tbl.Get(i, "inchikey")

		for _, field := range reg.Private() {
			raw := tbl.Get(i, field)
			if raw == "" {
				continue
			}

			state := fields.InferConditionState(field)
			solvent := fields.InferConditionSolvent(tbl.Get(i, "tested_solvent"), state, field)
			unit := reg.PrivateUnit(field)

			var valueNum *float64
			switch {
			case field == "absorption_peak_nm":
				v, ok := parseFloat(raw)
				if v == nil || !ok {
					stats.ParseFailuresByField[field]++
					stats.addInvalid(InvalidSample{
						EvidenceType: string(models.EvidencePrivateObservation),
						SourceID:     sourceID,
						Field:        field,
						Reason:       "absorption_peak_nm_parse_failed",
						Value:        raw,
					})
					continue
				}
				valueNum = v
				raw = models.FormatFloat(*v)
				unit = "nm"
			case !reg.IsStringField(field):
				v, ok := parseFloat(raw)
				if !ok {
					stats.ParseFailuresByField[field]++
					stats.addInvalid(InvalidSample{
						EvidenceType: string(models.EvidencePrivateObservation),
						SourceID:     sourceID,
						Field:        field,
						Reason:       "value_num_parse_failed",
						Value:        raw,
					})
				}
				valueNum = v
			}

			records = append(records, models.EvidenceRecord{
				EvidenceID: models.NewEvidenceID(
					models.EvidencePrivateObservation, models.SourcePrivateDB,
					sourceID, field, state, solvent,
				),
				SubjectInChIKey:  inchikey,
				EvidenceType:     models.EvidencePrivateObservation,
				Field:            field,
				ValueNum:         valueNum,
				Value:            raw,
				Unit:             unit,
				ConditionState:   state,
				ConditionSolvent: solvent,
				SourceType:       models.SourcePrivateDB,
				SourceID:         sourceID,
				Timestamp:        buildTS,
				Confidence:       1.0,
				ExtractionMethod: "private_db",
			})
			stats.CountsByField[field]++
		}
	}

	return records, stats, nil
}

// qcTimestamps indexes QC rows by inchikey. First row in input order wins on
// duplicates.
func qcTimestamps(qc *table.Table) map[string]string {
	out := map[string]string{}
	if qc == nil || !qc.HasColumn("inchikey") {
		return out
	}
	for i := 0; i < qc.Len(); i++ {
		ik := qc.Get(i, "inchikey")
		if ik == "" {
			continue
		}
		if _, seen := out[ik]; seen {
			continue
		}
		out[ik] = qc.Get(i, "timestamp")
	}
	return out
}

// ATBComputations emits one evidence row per non-null feature column per
// molecule. Timestamps come from the QC record when present, otherwise the
// build time with source build_fallback.
func ATBComputations(features, qc *table.Table, reg *fields.Registry, buildTS string) ([]models.EvidenceRecord, *SourceStats, error) {
	if err := features.Require("inchikey"); err != nil {
		return nil, nil, err
	}

	stats := newSourceStats()
	var records []models.EvidenceRecord

	qcTS := qcTimestamps(qc)

	var featureCols []string
	for _, c := range features.Columns {
		if c != "inchikey" {
			featureCols = append(featureCols, c)
		}
	}

	for i := 0; i < features.Len(); i++ {
		inchikey := features.Get(i, "inchikey")
		if inchikey == "" {
			continue
		}

		ts := buildTS
		tsSource := models.TimestampBuildFallback
		if qt := qcTS[inchikey]; qt != "" {
			ts = qt
			tsSource = models.TimestampATBQC
		}

		for _, field := range featureCols {
			raw := features.Get(i, field)
			if raw == "" {
				continue
			}

			valueNum, ok := parseFloat(raw)
			if !ok {
				stats.ParseFailuresByField[field]++
				stats.addInvalid(InvalidSample{
					EvidenceType: string(models.EvidenceATBComputation),
					SourceID:     inchikey,
					Field:        field,
					Reason:       "value_num_parse_failed",
					Value:        raw,
				})
			}

			records = append(records, models.EvidenceRecord{
				EvidenceID: models.NewEvidenceID(
					models.EvidenceATBComputation, models.SourceATBCache,
					inchikey, field, models.StateUnknown, "unknown",
				),
				SubjectInChIKey:  inchikey,
				EvidenceType:     models.EvidenceATBComputation,
				Field:            field,
				ValueNum:         valueNum,
				Value:            raw,
				Unit:             reg.ATBUnit(field),
				ConditionState:   models.StateUnknown,
				ConditionSolvent: "unknown",
				SourceType:       models.SourceATBCache,
				SourceID:         inchikey,
				Timestamp:        ts,
				TimestampSource:  string(tsSource),
				Confidence:       1.0,
				ExtractionMethod: "atb_parser",
			})
			stats.CountsByField[field]++
		}
	}

	slog.Debug("normalized atb computations", "rows", len(records), "features", len(featureCols))
	return records, stats, nil
}

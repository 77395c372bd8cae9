// Package validate gates the evidence and graph tables before publishing.
// Validators only report; they never mutate or repair the tables they check.
package validate

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/GuoCheng12/aie/internal/table"
	"github.com/GuoCheng12/aie/models"
)

// ErrValidationFailed is returned by the validate commands so callers exit
// non-zero without a partially invalid table ever getting through.
var ErrValidationFailed = errors.New("validation failed")

// maxExamples caps the samples shown per violation class.
const maxExamples = 5

var evidenceRequiredCols = []string{
	"evidence_id",
	"subject_inchikey",
	"evidence_type",
	"field",
	"value_num",
	"value",
	"unit",
	"condition_state",
	"condition_solvent",
	"source_type",
	"source_id",
	"timestamp",
	"timestamp_source",
	"confidence",
	"extraction_method",
}

var evidenceNonNullCols = []string{
	"evidence_id",
	"evidence_type",
	"field",
	"condition_state",
	"source_type",
	"source_id",
	"timestamp",
	"confidence",
	"extraction_method",
}

var atbTimestampSources = map[string]bool{
	string(models.TimestampATBQC):         true,
	string(models.TimestampBuildFallback): true,
}

// parseISOTimestamp accepts RFC 3339 and the zone-less spellings the QC
// table produces.
func parseISOTimestamp(s string) error {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if _, err := time.Parse(layout, s); err == nil {
			return nil
		}
	}
	return fmt.Errorf("not ISO-8601: %q", s)
}

// invalidEnumValues collects the distinct out-of-enum values of a column,
// sorted for stable reports.
func invalidEnumValues(tbl *table.Table, col string, parse func(string) error) []string {
	bad := map[string]bool{}
	for i := 0; i < tbl.Len(); i++ {
		v := tbl.Get(i, col)
		if v == "" {
			continue
		}
		if err := parse(v); err != nil {
			bad[v] = true
		}
	}
	out := make([]string, 0, len(bad))
	for v := range bad {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Evidence checks the assembled evidence table and returns every distinct
// violation found. An empty slice means the table may be published.
func Evidence(tbl *table.Table) []string {
	var errs []string

	var missing []string
	for _, c := range evidenceRequiredCols {
		if !tbl.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return []string{fmt.Sprintf("missing required columns: [%s]", strings.Join(missing, " "))}
	}

	for _, col := range evidenceNonNullCols {
		n := 0
		for i := 0; i < tbl.Len(); i++ {
			if tbl.Get(i, col) == "" {
				n++
			}
		}
		if n > 0 {
			errs = append(errs, fmt.Sprintf("column %s has %d nulls (must be non-null)", col, n))
		}
	}

	seen := map[string]bool{}
	nDupes := 0
	for i := 0; i < tbl.Len(); i++ {
		id := tbl.Get(i, "evidence_id")
		if id == "" {
			continue
		}
		if seen[id] {
			nDupes++
		}
		seen[id] = true
	}
	if nDupes > 0 {
		errs = append(errs, fmt.Sprintf("evidence_id has %d duplicates", nDupes))
	}

	if bad := invalidEnumValues(tbl, "evidence_type", func(s string) error {
		_, err := models.ParseEvidenceType(s)
		return err
	}); len(bad) > 0 {
		errs = append(errs, fmt.Sprintf("invalid evidence_type values: %v", bad))
	}
	if bad := invalidEnumValues(tbl, "source_type", func(s string) error {
		_, err := models.ParseSourceType(s)
		return err
	}); len(bad) > 0 {
		errs = append(errs, fmt.Sprintf("invalid source_type values: %v", bad))
	}
	if bad := invalidEnumValues(tbl, "condition_state", func(s string) error {
		_, err := models.ParseConditionState(s)
		return err
	}); len(bad) > 0 {
		errs = append(errs, fmt.Sprintf("invalid condition_state values: %v", bad))
	}
	if tbl.HasColumn("quality_flag") {
		if bad := invalidEnumValues(tbl, "quality_flag", func(s string) error {
			_, err := models.ParseQualityFlag(s)
			return err
		}); len(bad) > 0 {
			errs = append(errs, fmt.Sprintf("invalid quality_flag values: %v", bad))
		}
	}

	nBadConf := 0
	for i := 0; i < tbl.Len(); i++ {
		v := tbl.Get(i, "confidence")
		if v == "" {
			continue
		}
		c, err := strconv.ParseFloat(v, 64)
		if err != nil || c < 0.0 || c > 1.0 {
			nBadConf++
		}
	}
	if nBadConf > 0 {
		errs = append(errs, fmt.Sprintf("confidence out of range [0,1] for %d rows", nBadConf))
	}

	nBothNull := 0
	for i := 0; i < tbl.Len(); i++ {
		if tbl.Get(i, "value_num") == "" && tbl.Get(i, "value") == "" {
			nBothNull++
		}
	}
	if nBothNull > 0 {
		errs = append(errs, fmt.Sprintf("value_num and value both null for %d rows", nBothNull))
	}

	nBadTS := 0
	var tsExamples []string
	for i := 0; i < tbl.Len(); i++ {
		ts := tbl.Get(i, "timestamp")
		if ts == "" {
			continue
		}
		if err := parseISOTimestamp(ts); err != nil {
			nBadTS++
			if len(tsExamples) < maxExamples {
				tsExamples = append(tsExamples, ts)
			}
		}
	}
	if nBadTS > 0 {
		errs = append(errs, fmt.Sprintf("timestamp not ISO-8601 parseable for %d rows (examples=%v)", nBadTS, tsExamples))
	}

	errs = append(errs, crossFieldAlignment(tbl)...)
	return errs
}

// crossFieldAlignment enforces the evidence_type contracts: private rows
// come from private_db with confidence 1.0; atb rows come from atb_cache
// with confidence 1.0 and a known timestamp_source.
func crossFieldAlignment(tbl *table.Table) []string {
	var errs []string

	privateBadSource, privateBadConf := 0, 0
	atbBadSource, atbBadConf, atbNullTSSource := 0, 0, 0
	badTSSources := map[string]bool{}

	for i := 0; i < tbl.Len(); i++ {
		switch tbl.Get(i, "evidence_type") {
		case string(models.EvidencePrivateObservation):
			if tbl.Get(i, "source_type") != string(models.SourcePrivateDB) {
				privateBadSource++
			}
			if tbl.Get(i, "confidence") != "1" && tbl.Get(i, "confidence") != "1.0" {
				privateBadConf++
			}
		case string(models.EvidenceATBComputation):
			if tbl.Get(i, "source_type") != string(models.SourceATBCache) {
				atbBadSource++
			}
			if tbl.Get(i, "confidence") != "1" && tbl.Get(i, "confidence") != "1.0" {
				atbBadConf++
			}
			ts := tbl.Get(i, "timestamp_source")
			if ts == "" {
				atbNullTSSource++
			} else if !atbTimestampSources[ts] {
				badTSSources[ts] = true
			}
		}
	}

	if privateBadSource > 0 {
		errs = append(errs, fmt.Sprintf("private_observation rows must have source_type=private_db (%d rows)", privateBadSource))
	}
	if privateBadConf > 0 {
		errs = append(errs, fmt.Sprintf("private_observation rows must have confidence=1.0 (%d rows)", privateBadConf))
	}
	if atbBadSource > 0 {
		errs = append(errs, fmt.Sprintf("atb_computation rows must have source_type=atb_cache (%d rows)", atbBadSource))
	}
	if atbBadConf > 0 {
		errs = append(errs, fmt.Sprintf("atb_computation rows must have confidence=1.0 (%d rows)", atbBadConf))
	}
	if atbNullTSSource > 0 {
		errs = append(errs, fmt.Sprintf("atb_computation rows must have non-null timestamp_source (%d rows)", atbNullTSSource))
	}
	if len(badTSSources) > 0 {
		vals := make([]string, 0, len(badTSSources))
		for v := range badTSSources {
			vals = append(vals, v)
		}
		sort.Strings(vals)
		errs = append(errs, fmt.Sprintf("invalid atb timestamp_source values: %v", vals))
	}
	return errs
}

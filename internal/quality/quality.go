// Package quality is the pure rule engine that annotates evidence rows with
// a quality flag and score. It only flags values, it never fixes them.
package quality

import (
	"strings"

	"github.com/GuoCheng12/aie/models"
)

const (
	scoreOK           = 1.0
	scoreOutOfRange   = 0.3
	scoreParseWarning = 0.7
)

// Classify assigns the quality flag/score for one evidence row. Rules run in
// a fixed order and a later match overwrites an earlier one; the order is
// part of the contract and must not be rearranged.
func Classify(r models.EvidenceRecord) (models.QualityFlag, float64) {
	flag, score := models.QualityOK, scoreOK

	if strings.HasPrefix(r.Field, "qy_") && r.ValueNum != nil && *r.ValueNum < 0 {
		flag, score = models.QualityNegative, scoreOutOfRange
	}
	if strings.HasPrefix(r.Field, "qy_") && r.ValueNum != nil && *r.ValueNum > 1 {
		flag, score = models.QualityGT1, scoreOutOfRange
	}
	if strings.HasPrefix(r.Field, "tau_") && r.ValueNum != nil && *r.ValueNum > 1e6 {
		flag, score = models.QualityTauExtreme, scoreOutOfRange
	}
	if r.Field == "absorption_peak_nm" && r.ValueNum != nil && *r.ValueNum <= 0 {
		flag, score = models.QualityNonPositive, scoreOutOfRange
	}
	// Fields expected to be numeric where parsing failed. Warn, not error:
	// this is source data quality, not pipeline breakage. absorption and
	// tested_solvent are intentionally non-numeric and excluded.
	if flag == models.QualityOK &&
		(r.EvidenceType == models.EvidencePrivateObservation || r.EvidenceType == models.EvidenceATBComputation) &&
		r.ValueNum == nil && r.Value != "" &&
		r.Field != "absorption" && r.Field != "tested_solvent" {
		flag, score = models.QualityParseWarning, scoreParseWarning
	}

	return flag, score
}

// Apply classifies every row in place and re-checks the closed flag enum.
// An out-of-enum flag here means the rule table itself drifted, which is
// build-fatal.
func Apply(records []models.EvidenceRecord) error {
	for i := range records {
		flag, score := Classify(records[i])
		if _, err := models.ParseQualityFlag(string(flag)); err != nil {
			return err
		}
		records[i].QualityFlag = flag
		records[i].QualityScore = score
	}
	return nil
}

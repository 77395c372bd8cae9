package quality

import (
	"testing"

	"github.com/GuoCheng12/aie/models"
)

func rec(field string, valueNum *float64, value string, et models.EvidenceType) models.EvidenceRecord {
	return models.EvidenceRecord{Field: field, ValueNum: valueNum, Value: value, EvidenceType: et}
}

func f(v float64) *float64 { return &v }

func TestClassify(t *testing.T) {
	cases := []struct {
		name      string
		record    models.EvidenceRecord
		wantFlag  models.QualityFlag
		wantScore float64
	}{
		{"qy in range", rec("qy_sol", f(0.65), "0.65", models.EvidencePrivateObservation), models.QualityOK, 1.0},
		{"qy exactly one", rec("qy_sol", f(1.0), "1.0", models.EvidencePrivateObservation), models.QualityOK, 1.0},
		{"qy exactly zero", rec("qy_crys", f(0), "0", models.EvidencePrivateObservation), models.QualityOK, 1.0},
		{"qy negative", rec("qy_solid", f(-0.1), "-0.1", models.EvidencePrivateObservation), models.QualityNegative, 0.3},
		{"qy above one", rec("qy_sol", f(1.3), "1.3", models.EvidencePrivateObservation), models.QualityGT1, 0.3},
		{"tau extreme", rec("tau_sol", f(2e6), "2e6", models.EvidencePrivateObservation), models.QualityTauExtreme, 0.3},
		{"tau at threshold stays OK", rec("tau_sol", f(1e6), "1e6", models.EvidencePrivateObservation), models.QualityOK, 1.0},
		{"absorption peak nonpositive", rec("absorption_peak_nm", f(0), "0", models.EvidencePrivateObservation), models.QualityNonPositive, 0.3},
		{"absorption peak positive", rec("absorption_peak_nm", f(512), "512", models.EvidencePrivateObservation), models.QualityOK, 1.0},
		{"parse warning on numeric field", rec("emission_sol", nil, "approx 520", models.EvidencePrivateObservation), models.QualityParseWarning, 0.7},
		{"parse warning on atb field", rec("delta_gap", nil, "n/a", models.EvidenceATBComputation), models.QualityParseWarning, 0.7},
		{"absorption text is fine", rec("absorption", nil, "broad band", models.EvidencePrivateObservation), models.QualityOK, 1.0},
		{"tested_solvent text is fine", rec("tested_solvent", nil, "THF", models.EvidencePrivateObservation), models.QualityOK, 1.0},
		{"literature claim never parse-warns", rec("qy_sol", nil, "0.5?", models.EvidenceLiteratureClaim), models.QualityOK, 1.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			flag, score := Classify(tc.record)
			if flag != tc.wantFlag || score != tc.wantScore {
				t.Errorf("Classify() = (%s, %v), want (%s, %v)", flag, score, tc.wantFlag, tc.wantScore)
			}
		})
	}
}

func TestClassify_OutOfRangeBeatsParseWarning(t *testing.T) {
	// Rule 5 only applies to rows still OK; an out-of-range numeric row must
	// keep its range flag.
	flag, score := Classify(rec("qy_sol", f(1.5), "1.5", models.EvidencePrivateObservation))
	if flag != models.QualityGT1 || score != 0.3 {
		t.Errorf("got (%s, %v), want (OUT_OF_RANGE_GT1, 0.3)", flag, score)
	}
}

func TestApply_SetsAllRows(t *testing.T) {
	records := []models.EvidenceRecord{
		rec("qy_sol", f(0.65), "0.65", models.EvidencePrivateObservation),
		rec("qy_sol", f(1.3), "1.3", models.EvidencePrivateObservation),
	}
	if err := Apply(records); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if records[0].QualityFlag != models.QualityOK || records[0].QualityScore != 1.0 {
		t.Errorf("row 0 = (%s, %v)", records[0].QualityFlag, records[0].QualityScore)
	}
	if records[1].QualityFlag != models.QualityGT1 || records[1].QualityScore != 0.3 {
		t.Errorf("row 1 = (%s, %v)", records[1].QualityFlag, records[1].QualityScore)
	}
}

package models

import (
	"strings"
	"testing"
)

func TestNewEvidenceID_Deterministic(t *testing.T) {
	a := NewEvidenceID(EvidencePrivateObservation, SourcePrivateDB, "42", "qy_sol", StateSol, "THF")
	b := NewEvidenceID(EvidencePrivateObservation, SourcePrivateDB, "42", "qy_sol", StateSol, "THF")
	if a != b {
		t.Fatalf("same tuple produced different ids: %s vs %s", a, b)
	}
	if len(a) != 36 || strings.Count(a, "-") != 4 {
		t.Errorf("expected UUID-shaped id, got %q", a)
	}
	// Version 5 (SHA-1, namespaced): deterministic across processes too.
	if a[14] != '5' {
		t.Errorf("expected UUIDv5, got version %c in %q", a[14], a)
	}
}

func TestNewEvidenceID_DistinguishesTupleParts(t *testing.T) {
	base := NewEvidenceID(EvidencePrivateObservation, SourcePrivateDB, "42", "qy_sol", StateSol, "THF")
	variants := []string{
		NewEvidenceID(EvidenceATBComputation, SourcePrivateDB, "42", "qy_sol", StateSol, "THF"),
		NewEvidenceID(EvidencePrivateObservation, SourcePrivateDB, "43", "qy_sol", StateSol, "THF"),
		NewEvidenceID(EvidencePrivateObservation, SourcePrivateDB, "42", "qy_solid", StateSol, "THF"),
		NewEvidenceID(EvidencePrivateObservation, SourcePrivateDB, "42", "qy_sol", StateSolid, "THF"),
		NewEvidenceID(EvidencePrivateObservation, SourcePrivateDB, "42", "qy_sol", StateSol, "water"),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base id", i)
		}
	}
}

func TestParseEvidenceType_RejectsUnknown(t *testing.T) {
	if _, err := ParseEvidenceType("private_observation"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseEvidenceType("crowd_guess"); err == nil {
		t.Error("expected error for unknown evidence_type")
	}
	if _, err := ParseEvidenceType(""); err == nil {
		t.Error("expected error for empty evidence_type")
	}
}

func TestParseQualityFlag_RejectsUnknown(t *testing.T) {
	for _, ok := range []string{"OK", "OUT_OF_RANGE_NEGATIVE", "OUT_OF_RANGE_GT1", "OUTLIER_TAU_EXTREME", "OUT_OF_RANGE_NONPOSITIVE", "PARSE_WARNING"} {
		if _, err := ParseQualityFlag(ok); err != nil {
			t.Errorf("flag %q should parse: %v", ok, err)
		}
	}
	if _, err := ParseQualityFlag("FIXED"); err == nil {
		t.Error("expected error for unknown quality_flag")
	}
}

func TestEvidenceRecordRowRoundTrip(t *testing.T) {
	num := 0.65
	rec := EvidenceRecord{
		EvidenceID:       NewEvidenceID(EvidencePrivateObservation, SourcePrivateDB, "7", "qy_sol", StateSol, "toluene"),
		SubjectInChIKey:  "AAAAAAAAAAAAAA-BBBBBBBBBB-N",
		EvidenceType:     EvidencePrivateObservation,
		Field:            "qy_sol",
		ValueNum:         &num,
		Value:            "0.65",
		Unit:             "fraction",
		ConditionState:   StateSol,
		ConditionSolvent: "toluene",
		SourceType:       SourcePrivateDB,
		SourceID:         "7",
		Timestamp:        "2026-01-02T15:04:05Z",
		Confidence:       1.0,
		ExtractionMethod: "private_db",
		QualityFlag:      QualityOK,
		QualityScore:     1.0,
	}

	row := rec.Row()
	if len(row) != len(EvidenceColumns) {
		t.Fatalf("row has %d cells, want %d", len(row), len(EvidenceColumns))
	}

	m := map[string]string{}
	for i, col := range EvidenceColumns {
		m[col] = row[i]
	}
	back, err := EvidenceRecordFromRow(m)
	if err != nil {
		t.Fatalf("EvidenceRecordFromRow: %v", err)
	}
	if back.EvidenceID != rec.EvidenceID || back.Field != rec.Field || back.QualityFlag != rec.QualityFlag {
		t.Errorf("round trip mismatch: %+v vs %+v", back, rec)
	}
	if back.ValueNum == nil || *back.ValueNum != 0.65 {
		t.Errorf("value_num lost in round trip: %v", back.ValueNum)
	}
}

func TestEvidenceRecordFromRow_BadEnumIsFatal(t *testing.T) {
	m := map[string]string{
		"evidence_type":   "telepathy",
		"source_type":     "private_db",
		"condition_state": "sol",
	}
	if _, err := EvidenceRecordFromRow(m); err == nil {
		t.Fatal("expected error for unknown evidence_type")
	}
}

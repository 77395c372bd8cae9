package models

import "testing"

func TestRelForEvidenceType(t *testing.T) {
	cases := map[EvidenceType]RelType{
		EvidencePrivateObservation: RelHasObservation,
		EvidenceATBComputation:     RelHasComputation,
		EvidenceLiteratureClaim:    RelHasEvidenceClaim,
	}
	for et, want := range cases {
		got, err := RelForEvidenceType(et)
		if err != nil {
			t.Fatalf("RelForEvidenceType(%s): %v", et, err)
		}
		if got != want {
			t.Errorf("RelForEvidenceType(%s) = %s, want %s", et, got, want)
		}
	}
	if _, err := RelForEvidenceType(EvidenceType("vibes")); err == nil {
		t.Error("expected error for unmapped evidence_type")
	}
}

func TestNodeIDs(t *testing.T) {
	if got := MoleculeNodeID("ABC-DEF-N"); got != "mol:ABC-DEF-N" {
		t.Errorf("MoleculeNodeID = %q", got)
	}
	if got := EvidenceNodeID("1234"); got != "ev:1234" {
		t.Errorf("EvidenceNodeID = %q", got)
	}
	if got := ConditionNodeID(StateSol, "water"); got != "cond:sol:water" {
		t.Errorf("ConditionNodeID = %q", got)
	}
}

func TestPropsCanonical_SortedAndStable(t *testing.T) {
	num := 0.92
	p := Props{
		"metric":  "tanimoto_ecfp",
		"rank":    1,
		"weight":  &num,
		"nothing": nil,
	}
	want := `{"metric":"tanimoto_ecfp","nothing":null,"rank":1,"weight":0.92}`
	if got := p.Canonical(); got != want {
		t.Errorf("Canonical() = %s, want %s", got, want)
	}
	if p.Canonical() != p.Canonical() {
		t.Error("Canonical() is not stable across calls")
	}
}

func TestPropsCanonical_ASCIIEscapes(t *testing.T) {
	p := Props{"solvent": "甲苯", "note": "a\tb"}
	want := "{\"note\":\"a\\tb\",\"solvent\":\"\\u7532\\u82ef\"}"
	if got := p.Canonical(); got != want {
		t.Errorf("Canonical() = %s, want %s", got, want)
	}
}

func TestEdgeRow_NullEncoding(t *testing.T) {
	w := 0.5
	sim := Edge{SrcID: "mol:A", RelType: RelSimilarTo, DstID: "mol:B", Weight: &w, PropsJSON: "{}"}
	row := sim.Row()
	if row[3] != "0.5" || row[4] != "" {
		t.Errorf("SIMILAR_TO row = %v; want weight set and evidence_id empty", row)
	}

	ev := Edge{SrcID: "mol:A", RelType: RelHasObservation, DstID: "ev:x", EvidenceID: "x", PropsJSON: "{}"}
	row = ev.Row()
	if row[3] != "" || row[4] != "x" {
		t.Errorf("HAS_OBSERVATION row = %v; want weight empty and evidence_id set", row)
	}
}

package validate

import (
	"sort"

	"github.com/GuoCheng12/aie/internal/table"
	"github.com/GuoCheng12/aie/models"
)

// solFields mirror the evidence-build manifest stat of the same name.
var solFields = map[string]bool{
	"emission_sol":       true,
	"qy_sol":             true,
	"tau_sol":            true,
	"absorption_peak_nm": true,
	"absorption":         true,
}

// FieldCount is one entry of a top-N field histogram.
type FieldCount struct {
	Field string
	Count int
}

// EvidenceSummary is printed before the evidence gate decides.
type EvidenceSummary struct {
	Rows                        int
	CountsByEvidenceType        map[string]int
	TopFields                   []FieldCount
	NSubjectInChIKeyNull        int
	NValueNumNonNull            int
	ATBTimestampSourceCounts    map[string]int
	NSolStateRowsSolventUnknown int
}

// SummarizeEvidence computes the pre-gate stats over the raw table.
func SummarizeEvidence(tbl *table.Table) EvidenceSummary {
	s := EvidenceSummary{
		Rows:                     tbl.Len(),
		CountsByEvidenceType:     map[string]int{},
		ATBTimestampSourceCounts: map[string]int{},
	}

	fieldCounts := map[string]int{}
	for i := 0; i < tbl.Len(); i++ {
		s.CountsByEvidenceType[tbl.Get(i, "evidence_type")]++
		field := tbl.Get(i, "field")
		fieldCounts[field]++

		if tbl.Get(i, "subject_inchikey") == "" {
			s.NSubjectInChIKeyNull++
		}
		if tbl.Get(i, "value_num") != "" {
			s.NValueNumNonNull++
		}
		if tbl.Get(i, "evidence_type") == string(models.EvidenceATBComputation) {
			s.ATBTimestampSourceCounts[tbl.Get(i, "timestamp_source")]++
		}
		if solFields[field] && tbl.Get(i, "condition_solvent") == "unknown" {
			s.NSolStateRowsSolventUnknown++
		}
	}

	for f, c := range fieldCounts {
		s.TopFields = append(s.TopFields, FieldCount{Field: f, Count: c})
	}
	sort.Slice(s.TopFields, func(i, j int) bool {
		if s.TopFields[i].Count != s.TopFields[j].Count {
			return s.TopFields[i].Count > s.TopFields[j].Count
		}
		return s.TopFields[i].Field < s.TopFields[j].Field
	})
	if len(s.TopFields) > 20 {
		s.TopFields = s.TopFields[:20]
	}
	return s
}

// GraphSummary is printed before the graph gate decides.
type GraphSummary struct {
	Nodes               int
	NodeCountsByType    map[string]int
	Edges               int
	EdgeCountsByRelType map[string]int
}

// SummarizeGraph computes the pre-gate stats over the raw node/edge tables.
func SummarizeGraph(nodes, edges *table.Table) GraphSummary {
	s := GraphSummary{
		Nodes:               nodes.Len(),
		NodeCountsByType:    map[string]int{},
		Edges:               edges.Len(),
		EdgeCountsByRelType: map[string]int{},
	}
	for i := 0; i < nodes.Len(); i++ {
		s.NodeCountsByType[nodes.Get(i, "node_type")]++
	}
	for i := 0; i < edges.Len(); i++ {
		s.EdgeCountsByRelType[edges.Get(i, "rel_type")]++
	}
	return s
}

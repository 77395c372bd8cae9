package validate

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/GuoCheng12/aie/internal/table"
	"github.com/GuoCheng12/aie/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableFromRecords(t *testing.T, records []models.EvidenceRecord) *table.Table {
	t.Helper()
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	require.NoError(t, w.Write(models.EvidenceColumns))
	for _, r := range records {
		require.NoError(t, w.Write(r.Row()))
	}
	w.Flush()
	require.NoError(t, w.Error())

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "e.csv", []byte(sb.String()), 0o644))
	tbl, err := table.Read(fs, "e.csv")
	require.NoError(t, err)
	return tbl
}

func validRecord(id, field string) models.EvidenceRecord {
	num := 0.5
	return models.EvidenceRecord{
		EvidenceID:       id,
		SubjectInChIKey:  "KEYA",
		EvidenceType:     models.EvidencePrivateObservation,
		Field:            field,
		ValueNum:         &num,
		Value:            "0.5",
		Unit:             "fraction",
		ConditionState:   models.StateSol,
		ConditionSolvent: "THF",
		SourceType:       models.SourcePrivateDB,
		SourceID:         "1",
		Timestamp:        "2026-08-24T10:00:00Z",
		Confidence:       1.0,
		ExtractionMethod: "private_db",
		QualityFlag:      models.QualityOK,
		QualityScore:     1.0,
	}
}

func TestEvidence_CleanTablePasses(t *testing.T) {
	tbl := tableFromRecords(t, []models.EvidenceRecord{
		validRecord("e1", "qy_sol"),
		validRecord("e2", "emission_sol"),
	})
	assert.Empty(t, Evidence(tbl))
}

func TestEvidence_MissingColumnsShortCircuit(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "e.csv", []byte("evidence_id,field\ne1,qy_sol\n"), 0o644))
	tbl, err := table.Read(fs, "e.csv")
	require.NoError(t, err)

	errs := Evidence(tbl)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "missing required columns")
}

func TestEvidence_DuplicateIDs(t *testing.T) {
	tbl := tableFromRecords(t, []models.EvidenceRecord{
		validRecord("e1", "qy_sol"),
		validRecord("e1", "qy_sol"),
	})
	errs := Evidence(tbl)
	require.NotEmpty(t, errs)
	assert.Contains(t, strings.Join(errs, "\n"), "evidence_id has 1 duplicates")
}

func TestEvidence_EnumAndRangeViolations(t *testing.T) {
	bad := validRecord("e1", "qy_sol")
	bad.Confidence = 1.7

	tbl := tableFromRecords(t, []models.EvidenceRecord{bad})
	joined := strings.Join(Evidence(tbl), "\n")
	assert.Contains(t, joined, "confidence out of range [0,1] for 1 rows")
	// Broken confidence also breaks the private_observation contract.
	assert.Contains(t, joined, "private_observation rows must have confidence=1.0")
}

func TestEvidence_BothValuesNull(t *testing.T) {
	r := validRecord("e1", "qy_sol")
	r.ValueNum = nil
	r.Value = ""
	joined := strings.Join(Evidence(tableFromRecords(t, []models.EvidenceRecord{r})), "\n")
	assert.Contains(t, joined, "value_num and value both null for 1 rows")
}

func TestEvidence_BadTimestamp(t *testing.T) {
	r := validRecord("e1", "qy_sol")
	r.Timestamp = "yesterday-ish"
	joined := strings.Join(Evidence(tableFromRecords(t, []models.EvidenceRecord{r})), "\n")
	assert.Contains(t, joined, "timestamp not ISO-8601 parseable")
}

func TestEvidence_ZonelessTimestampAccepted(t *testing.T) {
	r := validRecord("e1", "qy_sol")
	r.Timestamp = "2026-08-24T10:00:00.123456"
	assert.Empty(t, Evidence(tableFromRecords(t, []models.EvidenceRecord{r})))
}

func TestEvidence_ATBAlignment(t *testing.T) {
	atb := validRecord("e1", "delta_gap")
	atb.EvidenceType = models.EvidenceATBComputation
	atb.SourceType = models.SourcePrivateDB // should be atb_cache
	atb.TimestampSource = ""                // must be set for atb rows

	joined := strings.Join(Evidence(tableFromRecords(t, []models.EvidenceRecord{atb})), "\n")
	assert.Contains(t, joined, "atb_computation rows must have source_type=atb_cache")
	assert.Contains(t, joined, "atb_computation rows must have non-null timestamp_source")
}

func TestEvidence_BadEnumValueReported(t *testing.T) {
	// Write a raw table with a drifted enum; the typed constructors would
	// refuse it, so build the CSV by hand.
	fs := afero.NewMemMapFs()
	header := strings.Join(models.EvidenceColumns, ",")
	row := "e1,KEYA,telepathy,qy_sol,0.5,0.5,fraction,sol,THF,private_db,1,2026-08-24T10:00:00Z,,1,private_db,OK,1"
	require.NoError(t, afero.WriteFile(fs, "e.csv", []byte(header+"\n"+row+"\n"), 0o644))
	tbl, err := table.Read(fs, "e.csv")
	require.NoError(t, err)

	joined := strings.Join(Evidence(tbl), "\n")
	assert.Contains(t, joined, "invalid evidence_type values: [telepathy]")
}

func TestSummarizeEvidence(t *testing.T) {
	atb := validRecord("e2", "delta_gap")
	atb.EvidenceType = models.EvidenceATBComputation
	atb.SourceType = models.SourceATBCache
	atb.SubjectInChIKey = ""
	atb.TimestampSource = string(models.TimestampBuildFallback)
	atb.ConditionState = models.StateUnknown
	atb.ConditionSolvent = "unknown"

	sol := validRecord("e3", "qy_sol")
	sol.ConditionSolvent = "unknown"

	s := SummarizeEvidence(tableFromRecords(t, []models.EvidenceRecord{validRecord("e1", "qy_sol"), atb, sol}))
	assert.Equal(t, 3, s.Rows)
	assert.Equal(t, 2, s.CountsByEvidenceType["private_observation"])
	assert.Equal(t, 1, s.NSubjectInChIKeyNull)
	assert.Equal(t, 3, s.NValueNumNonNull)
	assert.Equal(t, 1, s.ATBTimestampSourceCounts["build_fallback"])
	assert.Equal(t, 1, s.NSolStateRowsSolventUnknown)
	require.NotEmpty(t, s.TopFields)
	assert.Equal(t, "qy_sol", s.TopFields[0].Field)
	assert.Equal(t, 2, s.TopFields[0].Count)
}

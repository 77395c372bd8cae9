package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// EvidenceType classifies where a piece of evidence came from.
type EvidenceType string

const (
	EvidencePrivateObservation EvidenceType = "private_observation"
	EvidenceATBComputation     EvidenceType = "atb_computation"
	EvidenceLiteratureClaim    EvidenceType = "literature_claim"
)

// SourceType identifies the system of record behind an evidence row.
type SourceType string

const (
	SourcePrivateDB SourceType = "private_db"
	SourceATBCache  SourceType = "atb_cache"
	SourcePaperDOI  SourceType = "paper_doi"
)

// ConditionState is the physical state a measurement applies to.
type ConditionState string

const (
	StateSol     ConditionState = "sol"
	StateSolid   ConditionState = "solid"
	StateAggr    ConditionState = "aggr"
	StateCrys    ConditionState = "crys"
	StateUnknown ConditionState = "unknown"
)

// TimestampSource records where an atb_computation timestamp was taken from.
type TimestampSource string

const (
	TimestampATBQC         TimestampSource = "atb_qc"
	TimestampBuildFallback TimestampSource = "build_fallback"
)

// QualityFlag classifies whether a value fell inside its expected range.
type QualityFlag string

const (
	QualityOK           QualityFlag = "OK"
	QualityNegative     QualityFlag = "OUT_OF_RANGE_NEGATIVE"
	QualityGT1          QualityFlag = "OUT_OF_RANGE_GT1"
	QualityTauExtreme   QualityFlag = "OUTLIER_TAU_EXTREME"
	QualityNonPositive  QualityFlag = "OUT_OF_RANGE_NONPOSITIVE"
	QualityParseWarning QualityFlag = "PARSE_WARNING"
)

// ParseEvidenceType rejects any value outside the closed evidence_type enum.
func ParseEvidenceType(s string) (EvidenceType, error) {
	switch EvidenceType(s) {
	case EvidencePrivateObservation, EvidenceATBComputation, EvidenceLiteratureClaim:
		return EvidenceType(s), nil
	}
	return "", fmt.Errorf("invalid evidence_type: %q", s)
}

// ParseSourceType rejects any value outside the closed source_type enum.
func ParseSourceType(s string) (SourceType, error) {
	switch SourceType(s) {
	case SourcePrivateDB, SourceATBCache, SourcePaperDOI:
		return SourceType(s), nil
	}
	return "", fmt.Errorf("invalid source_type: %q", s)
}

// ParseConditionState rejects any value outside the closed condition_state enum.
func ParseConditionState(s string) (ConditionState, error) {
	switch ConditionState(s) {
	case StateSol, StateSolid, StateAggr, StateCrys, StateUnknown:
		return ConditionState(s), nil
	}
	return "", fmt.Errorf("invalid condition_state: %q", s)
}

// ParseQualityFlag rejects any value outside the closed quality_flag enum.
// An unknown flag means the upstream schema drifted and must not be guessed at.
func ParseQualityFlag(s string) (QualityFlag, error) {
	switch QualityFlag(s) {
	case QualityOK, QualityNegative, QualityGT1, QualityTauExtreme, QualityNonPositive, QualityParseWarning:
		return QualityFlag(s), nil
	}
	return "", fmt.Errorf("invalid quality_flag: %q", s)
}

// evidenceNamespace is the fixed UUID namespace for evidence identities.
// Changing it would re-key every evidence row across rebuilds.
var evidenceNamespace = uuid.MustParse("2b1d3f7e-2b8b-4e70-9c7c-4b7a4b00a2b9")

// NewEvidenceID derives the deterministic evidence identity from the logical
// fact it describes. Identical tuples always produce the same id, which is
// what makes rebuilds diffable.
func NewEvidenceID(et EvidenceType, st SourceType, sourceID, field string, cs ConditionState, solvent string) string {
	key := strings.Join([]string{string(et), string(st), sourceID, field, string(cs), solvent}, "|")
	return uuid.NewSHA1(evidenceNamespace, []byte(key)).String()
}

// EvidenceRecord is one atomic, attributed fact about a molecule/field/condition.
type EvidenceRecord struct {
	EvidenceID       string         `json:"evidence_id" validate:"required,uuid"`
	SubjectInChIKey  string         `json:"subject_inchikey,omitempty"`
	EvidenceType     EvidenceType   `json:"evidence_type" validate:"required,oneof=private_observation atb_computation literature_claim"`
	Field            string         `json:"field" validate:"required"`
	ValueNum         *float64       `json:"value_num,omitempty"`
	Value            string         `json:"value,omitempty"`
	Unit             string         `json:"unit,omitempty"`
	ConditionState   ConditionState `json:"condition_state" validate:"required,oneof=sol solid aggr crys unknown"`
	ConditionSolvent string         `json:"condition_solvent" validate:"required"`
	SourceType       SourceType     `json:"source_type" validate:"required,oneof=private_db atb_cache paper_doi"`
	SourceID         string         `json:"source_id" validate:"required"`
	Timestamp        string         `json:"timestamp" validate:"required"`
	TimestampSource  string         `json:"timestamp_source,omitempty" validate:"omitempty,oneof=atb_qc build_fallback"`
	Confidence       float64        `json:"confidence" validate:"min=0,max=1"`
	ExtractionMethod string         `json:"extraction_method" validate:"required"`
	QualityFlag      QualityFlag    `json:"quality_flag" validate:"required,oneof=OK OUT_OF_RANGE_NEGATIVE OUT_OF_RANGE_GT1 OUTLIER_TAU_EXTREME OUT_OF_RANGE_NONPOSITIVE PARSE_WARNING"`
	QualityScore     float64        `json:"quality_score"`
}

// EvidenceColumns is the on-disk column order of the evidence table.
var EvidenceColumns = []string{
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
	"quality_flag",
	"quality_score",
}

// FormatFloat renders floats the same way everywhere (tables and props_json)
// so reruns stay byte-identical.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Row serializes the record into the evidence table column order.
// Empty strings encode nulls.
func (r EvidenceRecord) Row() []string {
	valueNum := ""
	if r.ValueNum != nil {
		valueNum = FormatFloat(*r.ValueNum)
	}
	return []string{
		r.EvidenceID,
		r.SubjectInChIKey,
		string(r.EvidenceType),
		r.Field,
		valueNum,
		r.Value,
		r.Unit,
		string(r.ConditionState),
		r.ConditionSolvent,
		string(r.SourceType),
		r.SourceID,
		r.Timestamp,
		r.TimestampSource,
		FormatFloat(r.Confidence),
		r.ExtractionMethod,
		string(r.QualityFlag),
		FormatFloat(r.QualityScore),
	}
}

// EvidenceRecordFromRow rebuilds a typed record from a raw table row.
// Enum values are validated here so invalid variants cannot flow downstream.
func EvidenceRecordFromRow(row map[string]string) (EvidenceRecord, error) {
	et, err := ParseEvidenceType(row["evidence_type"])
	if err != nil {
		return EvidenceRecord{}, err
	}
	st, err := ParseSourceType(row["source_type"])
	if err != nil {
		return EvidenceRecord{}, err
	}
	cs, err := ParseConditionState(row["condition_state"])
	if err != nil {
		return EvidenceRecord{}, err
	}
	qf := QualityFlag(row["quality_flag"])
	if row["quality_flag"] != "" {
		if qf, err = ParseQualityFlag(row["quality_flag"]); err != nil {
			return EvidenceRecord{}, err
		}
	}

	rec := EvidenceRecord{
		EvidenceID:       row["evidence_id"],
		SubjectInChIKey:  row["subject_inchikey"],
		EvidenceType:     et,
		Field:            row["field"],
		Value:            row["value"],
		Unit:             row["unit"],
		ConditionState:   cs,
		ConditionSolvent: row["condition_solvent"],
		SourceType:       st,
		SourceID:         row["source_id"],
		Timestamp:        row["timestamp"],
		TimestampSource:  row["timestamp_source"],
		ExtractionMethod: row["extraction_method"],
		QualityFlag:      qf,
	}
	if v := row["value_num"]; v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return EvidenceRecord{}, fmt.Errorf("invalid value_num %q: %w", v, err)
		}
		rec.ValueNum = &f
	}
	if v := row["confidence"]; v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return EvidenceRecord{}, fmt.Errorf("invalid confidence %q: %w", v, err)
		}
		rec.Confidence = f
	}
	if v := row["quality_score"]; v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return EvidenceRecord{}, fmt.Errorf("invalid quality_score %q: %w", v, err)
		}
		rec.QualityScore = f
	}
	return rec, nil
}

// global validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var msgs []string
		for _, e := range validationErrors {
			msgs = append(msgs, fmt.Sprintf("validation failed on field '%s': rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

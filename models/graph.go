package models

import (
	"fmt"
	"strconv"
)

// NodeType is the closed set of node kinds in the light graph.
type NodeType string

const (
	NodeMolecule  NodeType = "Molecule"
	NodeEvidence  NodeType = "Evidence"
	NodeCondition NodeType = "Condition"
)

// RelType is the closed set of edge relations in the light graph.
type RelType string

const (
	RelHasObservation   RelType = "HAS_OBSERVATION"
	RelHasComputation   RelType = "HAS_COMPUTATION"
	RelHasEvidenceClaim RelType = "HAS_EVIDENCECLAIM"
	RelUnderCondition   RelType = "UNDER_CONDITION"
	RelSimilarTo        RelType = "SIMILAR_TO"
)

// EvidenceRels are the relations derived from evidence rows; they must carry
// a non-empty evidence_id.
var EvidenceRels = map[RelType]bool{
	RelHasObservation:   true,
	RelHasComputation:   true,
	RelHasEvidenceClaim: true,
	RelUnderCondition:   true,
}

// ParseNodeType rejects any value outside the closed node_type enum.
func ParseNodeType(s string) (NodeType, error) {
	switch NodeType(s) {
	case NodeMolecule, NodeEvidence, NodeCondition:
		return NodeType(s), nil
	}
	return "", fmt.Errorf("invalid node_type: %q", s)
}

// ParseRelType rejects any value outside the closed rel_type enum.
func ParseRelType(s string) (RelType, error) {
	switch RelType(s) {
	case RelHasObservation, RelHasComputation, RelHasEvidenceClaim, RelUnderCondition, RelSimilarTo:
		return RelType(s), nil
	}
	return "", fmt.Errorf("invalid rel_type: %q", s)
}

// RelForEvidenceType maps an evidence type onto its Molecule->Evidence
// relation. An unmapped type is a schema-drift error, never a guess.
func RelForEvidenceType(et EvidenceType) (RelType, error) {
	switch et {
	case EvidencePrivateObservation:
		return RelHasObservation, nil
	case EvidenceATBComputation:
		return RelHasComputation, nil
	case EvidenceLiteratureClaim:
		return RelHasEvidenceClaim, nil
	}
	return "", fmt.Errorf("unexpected evidence_type in evidence table: %q", et)
}

// MoleculeNodeID returns the namespaced node id for an InChIKey.
func MoleculeNodeID(inchikey string) string { return "mol:" + inchikey }

// EvidenceNodeID returns the namespaced node id for an evidence id.
func EvidenceNodeID(evidenceID string) string { return "ev:" + evidenceID }

// ConditionNodeID returns the namespaced node id for a (state, solvent) pair.
func ConditionNodeID(state ConditionState, solvent string) string {
	return "cond:" + string(state) + ":" + solvent
}

// Node is one vertex of the light graph.
type Node struct {
	NodeID    string   `json:"node_id" validate:"required"`
	NodeType  NodeType `json:"node_type" validate:"required,oneof=Molecule Evidence Condition"`
	Key       string   `json:"key" validate:"required"`
	PropsJSON string   `json:"props_json" validate:"required"`
}

// Edge is one directed relation of the light graph. Weight is only set for
// SIMILAR_TO; EvidenceID is empty exactly for SIMILAR_TO.
type Edge struct {
	SrcID      string   `json:"src_id" validate:"required"`
	RelType    RelType  `json:"rel_type" validate:"required,oneof=HAS_OBSERVATION HAS_COMPUTATION HAS_EVIDENCECLAIM UNDER_CONDITION SIMILAR_TO"`
	DstID      string   `json:"dst_id" validate:"required"`
	Weight     *float64 `json:"weight,omitempty"`
	EvidenceID string   `json:"evidence_id,omitempty"`
	PropsJSON  string   `json:"props_json" validate:"required"`
}

// NodeColumns is the on-disk column order of the node table.
var NodeColumns = []string{"node_id", "node_type", "key", "props_json"}

// EdgeColumns is the on-disk column order of the edge table.
var EdgeColumns = []string{"src_id", "rel_type", "dst_id", "weight", "evidence_id", "props_json"}

// Row serializes the node into the node table column order.
func (n Node) Row() []string {
	return []string{n.NodeID, string(n.NodeType), n.Key, n.PropsJSON}
}

// Row serializes the edge into the edge table column order.
// Empty strings encode nulls.
func (e Edge) Row() []string {
	weight := ""
	if e.Weight != nil {
		weight = FormatFloat(*e.Weight)
	}
	return []string{e.SrcID, string(e.RelType), e.DstID, weight, e.EvidenceID, e.PropsJSON}
}

// NodeFromRow rebuilds a typed node from a raw table row.
func NodeFromRow(row map[string]string) (Node, error) {
	nt, err := ParseNodeType(row["node_type"])
	if err != nil {
		return Node{}, err
	}
	return Node{
		NodeID:    row["node_id"],
		NodeType:  nt,
		Key:       row["key"],
		PropsJSON: row["props_json"],
	}, nil
}

// EdgeFromRow rebuilds a typed edge from a raw table row.
func EdgeFromRow(row map[string]string) (Edge, error) {
	rt, err := ParseRelType(row["rel_type"])
	if err != nil {
		return Edge{}, err
	}
	e := Edge{
		SrcID:      row["src_id"],
		RelType:    rt,
		DstID:      row["dst_id"],
		EvidenceID: row["evidence_id"],
		PropsJSON:  row["props_json"],
	}
	if v := row["weight"]; v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Edge{}, fmt.Errorf("invalid weight %q: %w", v, err)
		}
		e.Weight = &f
	}
	return e, nil
}

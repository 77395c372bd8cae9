// Package graph projects the evidence table, plus the externally supplied
// structural-similarity table, into the light property graph.
package graph

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/GuoCheng12/aie/internal/table"
	"github.com/GuoCheng12/aie/models"
)

// neighborColumns are all required in the similarity input; missing columns
// are fatal because the table contract with the fingerprint process broke.
var neighborColumns = []string{"inchikey", "neighbor_inchikey", "rank", "tanimoto_sim"}

// Stats carries the integrity counters for the graph build manifest. Nothing
// dropped is ever silently lost.
type Stats struct {
	CountsByNodeType       map[string]int
	CountsByRelType        map[string]int
	NSubjectNullSkipped    int
	SimTotalRows           int
	SimKept                int
	SimDroppedMissingNodes int
	SimDroppedNullKeys     int
	SimDroppedBadWeight    int
}

// Compile builds the node and edge tables. Node order is stable: Molecule
// nodes sorted by key, Evidence nodes in evidence input order, Condition
// nodes sorted by id. Edges follow evidence input order, then similarity
// input order.
func Compile(evidence []models.EvidenceRecord, neighbors *table.Table) ([]models.Node, []models.Edge, *Stats, error) {
	if err := neighbors.Require(neighborColumns...); err != nil {
		return nil, nil, nil, fmt.Errorf("anchor_neighbors: %w", err)
	}

	stats := &Stats{
		CountsByNodeType: map[string]int{},
		CountsByRelType:  map[string]int{},
		SimTotalRows:     neighbors.Len(),
	}

	nodes, molecules, err := buildNodes(evidence, stats)
	if err != nil {
		return nil, nil, nil, err
	}
	edges, err := buildEdges(evidence, molecules, neighbors, stats)
	if err != nil {
		return nil, nil, nil, err
	}
	return nodes, edges, stats, nil
}

func buildNodes(evidence []models.EvidenceRecord, stats *Stats) ([]models.Node, map[string]bool, error) {
	molecules := map[string]bool{}
	for _, r := range evidence {
		if ik := strings.TrimSpace(r.SubjectInChIKey); ik != "" {
			molecules[ik] = true
		}
	}
	molKeys := make([]string, 0, len(molecules))
	for ik := range molecules {
		molKeys = append(molKeys, ik)
	}
	sort.Strings(molKeys)

	var nodes []models.Node
	for _, ik := range molKeys {
		nodes = append(nodes, models.Node{
			NodeID:    models.MoleculeNodeID(ik),
			NodeType:  models.NodeMolecule,
			Key:       ik,
			PropsJSON: models.Props{"inchikey": ik}.Canonical(),
		})
	}

	condIDs := map[string]bool{}
	for _, r := range evidence {
		if r.EvidenceID == "" {
			// Build correctness issue upstream; the evidence validator is the
			// gate that turns this into a failure.
			continue
		}
		nodes = append(nodes, models.Node{
			NodeID:    models.EvidenceNodeID(r.EvidenceID),
			NodeType:  models.NodeEvidence,
			Key:       r.EvidenceID,
			PropsJSON: evidenceProps(r).Canonical(),
		})
		condIDs[conditionID(r)] = true
	}

	sortedCond := make([]string, 0, len(condIDs))
	for cid := range condIDs {
		sortedCond = append(sortedCond, cid)
	}
	sort.Strings(sortedCond)
	for _, cid := range sortedCond {
		parts := strings.SplitN(cid, ":", 3)
		nodes = append(nodes, models.Node{
			NodeID:   cid,
			NodeType: models.NodeCondition,
			// The id doubles as the natural key to keep the mapping stable.
			Key: cid,
			PropsJSON: models.Props{
				"condition_state":   parts[1],
				"condition_solvent": parts[2],
			}.Canonical(),
		})
	}

	seen := map[string]bool{}
	for _, n := range nodes {
		if seen[n.NodeID] {
			return nil, nil, fmt.Errorf("duplicate node_id detected: %s", n.NodeID)
		}
		seen[n.NodeID] = true
		stats.CountsByNodeType[string(n.NodeType)]++
	}

	return nodes, molecules, nil
}

// evidenceProps snapshots the evidence row into the node attribute bag.
// Optional columns appear only when present; base columns keep explicit
// nulls so downstream consumers see a fixed shape.
func evidenceProps(r models.EvidenceRecord) models.Props {
	props := models.Props{
		"evidence_type":     string(r.EvidenceType),
		"field":             nullable(r.Field),
		"value":             nullable(r.Value),
		"value_num":         r.ValueNum,
		"unit":              nullable(r.Unit),
		"confidence":        r.Confidence,
		"source_type":       string(r.SourceType),
		"source_id":         nullable(r.SourceID),
		"timestamp":         nullable(r.Timestamp),
		"condition_state":   string(r.ConditionState),
		"condition_solvent": solventOrUnknown(r.ConditionSolvent),
	}
	if r.TimestampSource != "" {
		props["timestamp_source"] = r.TimestampSource
	}
	if r.ExtractionMethod != "" {
		props["extraction_method"] = r.ExtractionMethod
	}
	if r.QualityFlag != "" {
		props["quality_flag"] = string(r.QualityFlag)
		props["quality_score"] = r.QualityScore
	}
	return props
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func solventOrUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}

func conditionID(r models.EvidenceRecord) string {
	state := r.ConditionState
	if state == "" {
		state = models.StateUnknown
	}
	return models.ConditionNodeID(state, solventOrUnknown(r.ConditionSolvent))
}

func buildEdges(evidence []models.EvidenceRecord, molecules map[string]bool, neighbors *table.Table, stats *Stats) ([]models.Edge, error) {
	var edges []models.Edge

	for _, r := range evidence {
		if r.EvidenceID == "" {
			continue
		}

		rel, err := models.RelForEvidenceType(r.EvidenceType)
		if err != nil {
			return nil, err
		}

		ik := strings.TrimSpace(r.SubjectInChIKey)
		if ik == "" {
			stats.NSubjectNullSkipped++
		} else {
			edges = append(edges, models.Edge{
				SrcID:      models.MoleculeNodeID(ik),
				RelType:    rel,
				DstID:      models.EvidenceNodeID(r.EvidenceID),
				EvidenceID: r.EvidenceID,
				PropsJSON: models.Props{
					"field":       nullable(r.Field),
					"source_type": string(r.SourceType),
				}.Canonical(),
			})
		}

		edges = append(edges, models.Edge{
			SrcID:      models.EvidenceNodeID(r.EvidenceID),
			RelType:    models.RelUnderCondition,
			DstID:      conditionID(r),
			EvidenceID: r.EvidenceID,
			PropsJSON:  models.Props{}.Canonical(),
		})
	}

	for i := 0; i < neighbors.Len(); i++ {
		src := neighbors.Get(i, "inchikey")
		dst := neighbors.Get(i, "neighbor_inchikey")
		if src == "" || dst == "" {
			stats.SimDroppedNullKeys++
			continue
		}
		if !molecules[src] || !molecules[dst] {
			stats.SimDroppedMissingNodes++
			continue
		}
		w, err := strconv.ParseFloat(neighbors.Get(i, "tanimoto_sim"), 64)
		if err != nil || w < 0.0 || w > 1.0 {
			stats.SimDroppedBadWeight++
			continue
		}

		edges = append(edges, models.Edge{
			SrcID:   models.MoleculeNodeID(src),
			RelType: models.RelSimilarTo,
			DstID:   models.MoleculeNodeID(dst),
			Weight:  &w,
			PropsJSON: models.Props{
				"rank":   parseRank(neighbors.Get(i, "rank")),
				"metric": "tanimoto_ecfp",
			}.Canonical(),
		})
		stats.SimKept++
	}

	for _, e := range edges {
		stats.CountsByRelType[string(e.RelType)]++
	}
	return edges, nil
}

// parseRank keeps the neighbor rank when it reads as an integer (accepting
// the float spelling the upstream table sometimes uses) and nulls it
// otherwise.
func parseRank(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return nil
}

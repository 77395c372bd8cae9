package validate

import (
	"fmt"
	"strconv"

	"github.com/GuoCheng12/aie/internal/table"
	"github.com/GuoCheng12/aie/models"
)

// Graph checks referential integrity and relation-specific constraints of
// the node/edge tables, returning every distinct violation found.
func Graph(nodes, edges *table.Table) []string {
	var errs []string

	if err := nodes.Require(models.NodeColumns...); err != nil {
		errs = append(errs, fmt.Sprintf("node table: %s", err))
	}
	if err := edges.Require(models.EdgeColumns...); err != nil {
		errs = append(errs, fmt.Sprintf("edge table: %s", err))
	}
	if len(errs) > 0 {
		return errs
	}

	// Node checks.
	nNullID := 0
	nodeType := map[string]string{}
	nDupes := 0
	var dupeExamples []string
	for i := 0; i < nodes.Len(); i++ {
		id := nodes.Get(i, "node_id")
		if id == "" {
			nNullID++
			continue
		}
		if _, seen := nodeType[id]; seen {
			nDupes++
			if len(dupeExamples) < maxExamples {
				dupeExamples = append(dupeExamples, id)
			}
			continue
		}
		nodeType[id] = nodes.Get(i, "node_type")
	}
	if nNullID > 0 {
		errs = append(errs, fmt.Sprintf("node_id has nulls: %d", nNullID))
	}
	if nDupes > 0 {
		errs = append(errs, fmt.Sprintf("node_id has %d duplicates (examples=%v)", nDupes, dupeExamples))
	}
	if bad := invalidEnumValues(nodes, "node_type", func(s string) error {
		_, err := models.ParseNodeType(s)
		return err
	}); len(bad) > 0 {
		errs = append(errs, fmt.Sprintf("invalid node_type values: %v", bad))
	}

	// Edge checks.
	if bad := invalidEnumValues(edges, "rel_type", func(s string) error {
		_, err := models.ParseRelType(s)
		return err
	}); len(bad) > 0 {
		errs = append(errs, fmt.Sprintf("invalid rel_type values: %v", bad))
	}

	nSrcMissing, nDstMissing := 0, 0
	var srcExamples, dstExamples []string
	for i := 0; i < edges.Len(); i++ {
		if src := edges.Get(i, "src_id"); nodeType[src] == "" {
			nSrcMissing++
			if len(srcExamples) < maxExamples {
				srcExamples = append(srcExamples, src)
			}
		}
		if dst := edges.Get(i, "dst_id"); nodeType[dst] == "" {
			nDstMissing++
			if len(dstExamples) < maxExamples {
				dstExamples = append(dstExamples, dst)
			}
		}
	}
	if nSrcMissing > 0 {
		errs = append(errs, fmt.Sprintf("edges with missing src_id nodes: %d (examples=%v)", nSrcMissing, srcExamples))
	}
	if nDstMissing > 0 {
		errs = append(errs, fmt.Sprintf("edges with missing dst_id nodes: %d (examples=%v)", nDstMissing, dstExamples))
	}

	errs = append(errs, evidenceEdgeChecks(edges, nodeType)...)
	errs = append(errs, similarityEdgeChecks(edges, nodeType)...)
	return errs
}

// evidenceEdgeChecks covers the four evidence-derived relations: non-empty
// evidence_id, an existing ev: node, and the structural src/dst identities.
func evidenceEdgeChecks(edges *table.Table, nodeType map[string]string) []string {
	var errs []string

	nMissingEID, nMissingEvNode, nBadHasDst, nBadUnderSrc, nBadUnderDstType := 0, 0, 0, 0, 0
	var missingEIDExamples, missingEvNodeExamples, badHasDstExamples, badUnderSrcExamples, badUnderDstExamples []string

	for i := 0; i < edges.Len(); i++ {
		rel := models.RelType(edges.Get(i, "rel_type"))
		if !models.EvidenceRels[rel] {
			continue
		}
		eid := edges.Get(i, "evidence_id")
		if eid == "" {
			nMissingEID++
			if len(missingEIDExamples) < maxExamples {
				missingEIDExamples = append(missingEIDExamples, string(rel))
			}
			continue
		}
		evNode := models.EvidenceNodeID(eid)
		if nodeType[evNode] == "" {
			nMissingEvNode++
			if len(missingEvNodeExamples) < maxExamples {
				missingEvNodeExamples = append(missingEvNodeExamples, evNode)
			}
		}

		switch rel {
		case models.RelUnderCondition:
			if src := edges.Get(i, "src_id"); src != evNode {
				nBadUnderSrc++
				if len(badUnderSrcExamples) < maxExamples {
					badUnderSrcExamples = append(badUnderSrcExamples, src)
				}
			}
			if dst := edges.Get(i, "dst_id"); nodeType[dst] != string(models.NodeCondition) {
				nBadUnderDstType++
				if len(badUnderDstExamples) < maxExamples {
					badUnderDstExamples = append(badUnderDstExamples, dst)
				}
			}
		default:
			if dst := edges.Get(i, "dst_id"); dst != evNode {
				nBadHasDst++
				if len(badHasDstExamples) < maxExamples {
					badHasDstExamples = append(badHasDstExamples, dst)
				}
			}
		}
	}

	if nMissingEID > 0 {
		errs = append(errs, fmt.Sprintf("evidence edges with null/empty evidence_id: %d (examples rel_type=%v)", nMissingEID, missingEIDExamples))
	}
	if nMissingEvNode > 0 {
		errs = append(errs, fmt.Sprintf("evidence edges refer to missing Evidence nodes: %d (examples=%v)", nMissingEvNode, missingEvNodeExamples))
	}
	if nBadHasDst > 0 {
		errs = append(errs, fmt.Sprintf("HAS_* edges with dst_id != ev:evidence_id: %d (examples dst_id=%v)", nBadHasDst, badHasDstExamples))
	}
	if nBadUnderSrc > 0 {
		errs = append(errs, fmt.Sprintf("UNDER_CONDITION edges with src_id != ev:evidence_id: %d (examples src_id=%v)", nBadUnderSrc, badUnderSrcExamples))
	}
	if nBadUnderDstType > 0 {
		errs = append(errs, fmt.Sprintf("UNDER_CONDITION edges with dst not Condition: %d (examples dst_id=%v)", nBadUnderDstType, badUnderDstExamples))
	}
	return errs
}

// similarityEdgeChecks covers SIMILAR_TO: null evidence_id, weight in [0,1],
// Molecule endpoints on both sides.
func similarityEdgeChecks(edges *table.Table, nodeType map[string]string) []string {
	var errs []string

	nBadEID, nBadWeight, nBadEndpoints := 0, 0, 0
	var badEIDExamples, badWeightExamples, badEndpointExamples []string

	for i := 0; i < edges.Len(); i++ {
		if edges.Get(i, "rel_type") != string(models.RelSimilarTo) {
			continue
		}
		if eid := edges.Get(i, "evidence_id"); eid != "" {
			nBadEID++
			if len(badEIDExamples) < maxExamples {
				badEIDExamples = append(badEIDExamples, eid)
			}
		}
		w := edges.Get(i, "weight")
		f, err := strconv.ParseFloat(w, 64)
		if w == "" || err != nil || f < 0.0 || f > 1.0 {
			nBadWeight++
			if len(badWeightExamples) < maxExamples {
				badWeightExamples = append(badWeightExamples,
					fmt.Sprintf("%s->%s weight=%s", edges.Get(i, "src_id"), edges.Get(i, "dst_id"), w))
			}
		}
		srcType := nodeType[edges.Get(i, "src_id")]
		dstType := nodeType[edges.Get(i, "dst_id")]
		if srcType != string(models.NodeMolecule) || dstType != string(models.NodeMolecule) {
			nBadEndpoints++
			if len(badEndpointExamples) < maxExamples {
				badEndpointExamples = append(badEndpointExamples,
					fmt.Sprintf("%s->%s", edges.Get(i, "src_id"), edges.Get(i, "dst_id")))
			}
		}
	}

	if nBadEID > 0 {
		errs = append(errs, fmt.Sprintf("SIMILAR_TO edges with non-null evidence_id: %d (examples=%v)", nBadEID, badEIDExamples))
	}
	if nBadWeight > 0 {
		errs = append(errs, fmt.Sprintf("SIMILAR_TO edges with invalid weight: %d (examples=%v)", nBadWeight, badWeightExamples))
	}
	if nBadEndpoints > 0 {
		errs = append(errs, fmt.Sprintf("SIMILAR_TO edges must connect Molecule nodes: %d (examples=%v)", nBadEndpoints, badEndpointExamples))
	}
	return errs
}

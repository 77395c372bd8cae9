package graph

// Manifest is the graph-build manifest written next to the node/edge tables.
type Manifest struct {
	BuildTimestamp string         `json:"build_timestamp"`
	Inputs         ManifestInputs `json:"inputs"`
	Nodes          NodeCounts     `json:"nodes"`
	Edges          EdgeCounts     `json:"edges"`
	Integrity      Integrity      `json:"integrity"`
}

type ManifestInputs struct {
	EvidenceTablePath   string `json:"evidence_table_path"`
	EvidenceTableRows   int    `json:"evidence_table_rows"`
	AnchorNeighborsPath string `json:"anchor_neighbors_path"`
	AnchorNeighborsRows int    `json:"anchor_neighbors_rows"`
}

type NodeCounts struct {
	CountsByNodeType map[string]int `json:"counts_by_node_type"`
	TotalNodes       int            `json:"total_nodes"`
}

type EdgeCounts struct {
	CountsByRelType map[string]int `json:"counts_by_rel_type"`
	TotalEdges      int            `json:"total_edges"`
}

// Integrity reports every non-fatal drop made while projecting edges.
type Integrity struct {
	CountsByRelType map[string]int `json:"counts_by_rel_type"`
	EvidenceEdges   EvidenceEdges  `json:"evidence_edges"`
	SimilarityEdges SimilarityEdge `json:"similarity_edges"`
}

type EvidenceEdges struct {
	NSubjectInChIKeyNullSkippedMolToEv int `json:"n_subject_inchikey_null_skipped_mol_to_ev"`
}

type SimilarityEdge struct {
	TotalAnchorRows             int `json:"total_anchor_rows"`
	KeptSimilarTo               int `json:"kept_similar_to"`
	DroppedMissingMoleculeNodes int `json:"dropped_missing_molecule_nodes"`
	DroppedNullInChIKey         int `json:"dropped_null_inchikey"`
	DroppedBadWeight            int `json:"dropped_bad_weight"`
}

// BuildManifest assembles the manifest from compile stats and input info.
func BuildManifest(stats *Stats, inputs ManifestInputs, totalNodes, totalEdges int, buildTS string) Manifest {
	return Manifest{
		BuildTimestamp: buildTS,
		Inputs:         inputs,
		Nodes: NodeCounts{
			CountsByNodeType: stats.CountsByNodeType,
			TotalNodes:       totalNodes,
		},
		Edges: EdgeCounts{
			CountsByRelType: stats.CountsByRelType,
			TotalEdges:      totalEdges,
		},
		Integrity: Integrity{
			CountsByRelType: stats.CountsByRelType,
			EvidenceEdges: EvidenceEdges{
				NSubjectInChIKeyNullSkippedMolToEv: stats.NSubjectNullSkipped,
			},
			SimilarityEdges: SimilarityEdge{
				TotalAnchorRows:             stats.SimTotalRows,
				KeptSimilarTo:               stats.SimKept,
				DroppedMissingMoleculeNodes: stats.SimDroppedMissingNodes,
				DroppedNullInChIKey:         stats.SimDroppedNullKeys,
				DroppedBadWeight:            stats.SimDroppedBadWeight,
			},
		},
	}
}

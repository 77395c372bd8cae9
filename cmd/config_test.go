package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GuoCheng12/aie/internal/validate"
	"github.com/GuoCheng12/aie/types"
)

func fullTestConfig() types.AppConfig {
	return types.AppConfig{
		Project: types.ProjectConfig{RootDir: ".aie"},
		Data: types.DataConfig{
			Dir:              "data",
			PrivateClean:     "private_clean.csv",
			ATBFeatures:      "atb_features.csv",
			ATBQC:            "atb_qc.csv",
			EvidenceTable:    "evidence_table.csv",
			EvidenceManifest: "evidence_table_build_manifest.json",
			AnchorNeighbors:  "anchor_neighbors_ecfp.csv",
			GraphNodes:       "graph_nodes.csv",
			GraphEdges:       "graph_edges.csv",
			GraphManifest:    "graph_build_manifest.json",
			GraphDB:          "graph.db",
		},
	}
}

func TestValidateAppConfig(t *testing.T) {
	cfg := fullTestConfig()
	require.NoError(t, validateAppConfig(&cfg))

	cfg.Data.EvidenceTable = ""
	err := validateAppConfig(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EvidenceTable")
}

// The config validator instance and the gate validator package are both
// referenced from this package; this pins down that their names coexist.
func TestConfigValidatorDistinctFromGateSentinel(t *testing.T) {
	assert.NotNil(t, configValidator)
	assert.Error(t, validate.ErrValidationFailed)
}

package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/GuoCheng12/aie/internal/graph"
	"github.com/GuoCheng12/aie/internal/logger"
	"github.com/GuoCheng12/aie/internal/table"
	"github.com/GuoCheng12/aie/internal/ui"
	"github.com/GuoCheng12/aie/internal/validate"
	"github.com/GuoCheng12/aie/models"
	"github.com/GuoCheng12/aie/store"
)

var (
	graphEvidenceFlag  string
	graphNeighborsFlag string
	graphNodesFlag     string
	graphEdgesFlag     string
	graphManifestFlag  string
	graphDBFlag        string
)

// graphCmd groups the light-graph stages.
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Compile, validate and publish the light property graph",
}

var graphBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Project the evidence table into node and edge tables",
	Long: `Reads the validated evidence table and the anchor-neighbor similarity
rows, projects them into Molecule/Evidence/Condition nodes and their
edges, and writes the two tables plus the graph build manifest.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("graph build")
		fs := afero.NewOsFs()
		cfg := GetConfig()
		buildTS := time.Now().UTC().Format(time.RFC3339)

		evidencePath := dataPath(graphEvidenceFlag, cfg.Data.EvidenceTable)
		neighborsPath := dataPath(graphNeighborsFlag, cfg.Data.AnchorNeighbors)
		nodesPath := dataPath(graphNodesFlag, cfg.Data.GraphNodes)
		edgesPath := dataPath(graphEdgesFlag, cfg.Data.GraphEdges)
		manifestPath := dataPath(graphManifestFlag, cfg.Data.GraphManifest)

		records, evidenceRows, err := readEvidenceRecords(fs, evidencePath)
		if err != nil {
			return err
		}
		neighbors, err := table.Read(fs, neighborsPath)
		if err != nil {
			return fmt.Errorf("read anchor neighbors: %w", err)
		}

		nodes, edges, stats, err := graph.Compile(records, neighbors)
		if err != nil {
			return fmt.Errorf("compile graph: %w", err)
		}

		nodeRows := make([][]string, 0, len(nodes))
		for _, n := range nodes {
			nodeRows = append(nodeRows, n.Row())
		}
		if err := table.Write(fs, nodesPath, models.NodeColumns, nodeRows); err != nil {
			return fmt.Errorf("write node table: %w", err)
		}

		edgeRows := make([][]string, 0, len(edges))
		for _, e := range edges {
			edgeRows = append(edgeRows, e.Row())
		}
		if err := table.Write(fs, edgesPath, models.EdgeColumns, edgeRows); err != nil {
			return fmt.Errorf("write edge table: %w", err)
		}

		manifest := graph.BuildManifest(stats, graph.ManifestInputs{
			EvidenceTablePath:   evidencePath,
			EvidenceTableRows:   evidenceRows,
			AnchorNeighborsPath: neighborsPath,
			AnchorNeighborsRows: neighbors.Len(),
		}, len(nodes), len(edges), buildTS)
		if err := table.WriteJSON(fs, manifestPath, manifest); err != nil {
			return fmt.Errorf("write graph manifest: %w", err)
		}

		slog.Info("graph built",
			"nodes", len(nodes),
			"edges", len(edges),
			"similar_to_kept", stats.SimKept)

		fmt.Print(ui.KV([][2]string{
			{"nodes", fmt.Sprintf("%d", len(nodes))},
			{"edges", fmt.Sprintf("%d", len(edges))},
			{"nodes table", nodesPath},
			{"edges table", edgesPath},
			{"manifest", manifestPath},
		}))
		return nil
	},
}

var graphValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Gate the graph tables before they are published",
	Long: `Checks node uniqueness, enum domains, referential integrity and the
relation-specific rules of the node/edge tables. Prints a summary,
then every violation class. Exits non-zero if any check fails.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("graph validate")
		fs := afero.NewOsFs()
		cfg := GetConfig()

		nodesPath := dataPath(graphNodesFlag, cfg.Data.GraphNodes)
		edgesPath := dataPath(graphEdgesFlag, cfg.Data.GraphEdges)

		nodes, err := table.Read(fs, nodesPath)
		if err != nil {
			return fmt.Errorf("read node table: %w", err)
		}
		edges, err := table.Read(fs, edgesPath)
		if err != nil {
			return fmt.Errorf("read edge table: %w", err)
		}

		printGraphSummary(validate.SummarizeGraph(nodes, edges))

		errs := validate.Graph(nodes, edges)
		if len(errs) > 0 {
			for _, e := range errs {
				fmt.Println(ui.StylePrefixError.Render("✗ ") + e)
			}
			return validate.ErrValidationFailed
		}
		fmt.Println(ui.StylePrefixDone.Render("✓ ") + "graph tables are valid")
		return nil
	},
}

var graphPublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Load the validated tables into the graph database",
	Long: `Re-runs the graph validator, then replaces the SQLite graph database
contents with the node, edge and evidence tables in one transaction.
Refuses to publish if validation fails.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetCommand("graph publish")
		fs := afero.NewOsFs()
		cfg := GetConfig()

		nodesPath := dataPath(graphNodesFlag, cfg.Data.GraphNodes)
		edgesPath := dataPath(graphEdgesFlag, cfg.Data.GraphEdges)
		evidencePath := dataPath(graphEvidenceFlag, cfg.Data.EvidenceTable)
		dbPath := dataPath(graphDBFlag, cfg.Data.GraphDB)

		nodeTbl, err := table.Read(fs, nodesPath)
		if err != nil {
			return fmt.Errorf("read node table: %w", err)
		}
		edgeTbl, err := table.Read(fs, edgesPath)
		if err != nil {
			return fmt.Errorf("read edge table: %w", err)
		}

		if errs := validate.Graph(nodeTbl, edgeTbl); len(errs) > 0 {
			for _, e := range errs {
				fmt.Println(ui.StylePrefixError.Render("✗ ") + e)
			}
			return validate.ErrValidationFailed
		}

		nodes := make([]models.Node, 0, nodeTbl.Len())
		for i := 0; i < nodeTbl.Len(); i++ {
			n, err := models.NodeFromRow(nodeTbl.RowMap(i))
			if err != nil {
				return fmt.Errorf("node row %d: %w", i, err)
			}
			nodes = append(nodes, n)
		}
		edges := make([]models.Edge, 0, edgeTbl.Len())
		for i := 0; i < edgeTbl.Len(); i++ {
			e, err := models.EdgeFromRow(edgeTbl.RowMap(i))
			if err != nil {
				return fmt.Errorf("edge row %d: %w", i, err)
			}
			edges = append(edges, e)
		}
		records, _, err := readEvidenceRecords(fs, evidencePath)
		if err != nil {
			return err
		}

		s, err := store.NewGraphStore(dbPath)
		if err != nil {
			return fmt.Errorf("open graph store: %w", err)
		}
		defer func() { _ = s.Close() }()

		counts, err := s.Publish(nodes, edges, records)
		if err != nil {
			return fmt.Errorf("publish graph: %w", err)
		}

		slog.Info("graph published", "db", dbPath,
			"nodes", counts.Nodes, "edges", counts.Edges, "evidence", counts.Evidence)

		fmt.Print(ui.KV([][2]string{
			{"database", dbPath},
			{"nodes", fmt.Sprintf("%d", counts.Nodes)},
			{"edges", fmt.Sprintf("%d", counts.Edges)},
			{"evidence rows", fmt.Sprintf("%d", counts.Evidence)},
		}))
		fmt.Println(ui.StylePrefixDone.Render("✓ ") + "graph published")
		return nil
	},
}

// readEvidenceRecords parses the evidence table into typed records. Any enum
// drift in the file is fatal here; a published table never carries it.
func readEvidenceRecords(fs afero.Fs, path string) ([]models.EvidenceRecord, int, error) {
	tbl, err := table.Read(fs, path)
	if err != nil {
		return nil, 0, fmt.Errorf("read evidence table: %w", err)
	}
	records := make([]models.EvidenceRecord, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		r, err := models.EvidenceRecordFromRow(tbl.RowMap(i))
		if err != nil {
			return nil, 0, fmt.Errorf("evidence row %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, tbl.Len(), nil
}

func printGraphSummary(s validate.GraphSummary) {
	fmt.Println(ui.StyleSectionTitle.Render("Graph summary"))
	fmt.Print(ui.KV([][2]string{
		{"nodes", fmt.Sprintf("%d", s.Nodes)},
		{"edges", fmt.Sprintf("%d", s.Edges)},
	}))

	t := &ui.Table{Headers: []string{"node_type", "count"}}
	for _, nt := range []string{"Molecule", "Evidence", "Condition"} {
		if c, ok := s.NodeCountsByType[nt]; ok {
			t.Rows = append(t.Rows, []string{nt, fmt.Sprintf("%d", c)})
		}
	}
	fmt.Print(t.Render())

	e := &ui.Table{Headers: []string{"rel_type", "count"}}
	for _, rt := range []string{"HAS_OBSERVATION", "HAS_COMPUTATION", "HAS_EVIDENCECLAIM", "UNDER_CONDITION", "SIMILAR_TO"} {
		if c, ok := s.EdgeCountsByRelType[rt]; ok {
			e.Rows = append(e.Rows, []string{rt, fmt.Sprintf("%d", c)})
		}
	}
	fmt.Print(e.Render())
}

func init() {
	graphBuildCmd.Flags().StringVar(&graphEvidenceFlag, "evidence", "", "evidence table CSV")
	graphBuildCmd.Flags().StringVar(&graphNeighborsFlag, "neighbors", "", "anchor neighbor similarity CSV")
	graphBuildCmd.Flags().StringVar(&graphNodesFlag, "nodes", "", "node table output path")
	graphBuildCmd.Flags().StringVar(&graphEdgesFlag, "edges", "", "edge table output path")
	graphBuildCmd.Flags().StringVar(&graphManifestFlag, "manifest", "", "graph manifest output path")

	graphValidateCmd.Flags().StringVar(&graphNodesFlag, "nodes", "", "node table to validate")
	graphValidateCmd.Flags().StringVar(&graphEdgesFlag, "edges", "", "edge table to validate")

	graphPublishCmd.Flags().StringVar(&graphNodesFlag, "nodes", "", "node table CSV")
	graphPublishCmd.Flags().StringVar(&graphEdgesFlag, "edges", "", "edge table CSV")
	graphPublishCmd.Flags().StringVar(&graphEvidenceFlag, "evidence", "", "evidence table CSV")
	graphPublishCmd.Flags().StringVar(&graphDBFlag, "db", "", "graph database output path")

	graphCmd.AddCommand(graphBuildCmd)
	graphCmd.AddCommand(graphValidateCmd)
	graphCmd.AddCommand(graphPublishCmd)
	rootCmd.AddCommand(graphCmd)
}

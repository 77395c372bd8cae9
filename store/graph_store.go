// Package store persists published artifacts for downstream querying.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/GuoCheng12/aie/models"
)

// GraphStore is a SQLite-backed sink for validated graph and evidence
// tables. Publishing replaces the whole contents in one transaction, so
// readers never see a half-written graph.
type GraphStore struct {
	db *sql.DB
}

// GraphCounts reports what a publish wrote.
type GraphCounts struct {
	Nodes    int
	Edges    int
	Evidence int
}

// NewGraphStore opens (or creates) the database at dbPath and ensures the
// schema exists. Pass ":memory:" for an ephemeral store.
func NewGraphStore(dbPath string) (*GraphStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &GraphStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// initSchema creates the tables if they don't exist.
func (s *GraphStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		node_id    TEXT PRIMARY KEY,
		node_type  TEXT NOT NULL,
		key        TEXT NOT NULL,
		props_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS edges (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		src_id      TEXT NOT NULL,
		rel_type    TEXT NOT NULL,
		dst_id      TEXT NOT NULL,
		weight      REAL,
		evidence_id TEXT,
		props_json  TEXT NOT NULL,
		FOREIGN KEY (src_id) REFERENCES nodes(node_id),
		FOREIGN KEY (dst_id) REFERENCES nodes(node_id)
	);

	CREATE TABLE IF NOT EXISTS evidence (
		evidence_id       TEXT PRIMARY KEY,
		subject_inchikey  TEXT,
		evidence_type     TEXT NOT NULL,
		field             TEXT NOT NULL,
		value_num         REAL,
		value             TEXT,
		unit              TEXT,
		condition_state   TEXT NOT NULL,
		condition_solvent TEXT,
		source_type       TEXT NOT NULL,
		source_id         TEXT NOT NULL,
		timestamp         TEXT NOT NULL,
		timestamp_source  TEXT,
		confidence        REAL NOT NULL,
		extraction_method TEXT NOT NULL,
		quality_flag      TEXT,
		quality_score     REAL
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(node_type);
	CREATE INDEX IF NOT EXISTS idx_edges_src ON edges(src_id);
	CREATE INDEX IF NOT EXISTS idx_edges_dst ON edges(dst_id);
	CREATE INDEX IF NOT EXISTS idx_edges_rel ON edges(rel_type);
	CREATE INDEX IF NOT EXISTS idx_evidence_subject ON evidence(subject_inchikey);
	CREATE INDEX IF NOT EXISTS idx_evidence_field ON evidence(field);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Publish replaces the stored graph with the given tables. The delete and
// all inserts run in one transaction; on any error the previous contents
// survive untouched.
func (s *GraphStore) Publish(nodes []models.Node, edges []models.Edge, evidence []models.EvidenceRecord) (GraphCounts, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return GraphCounts{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Edges first because of the foreign keys.
	for _, t := range []string{"edges", "evidence", "nodes"} {
		if _, err := tx.Exec("DELETE FROM " + t); err != nil {
			return GraphCounts{}, fmt.Errorf("clear %s: %w", t, err)
		}
	}

	nodeStmt, err := tx.Prepare("INSERT INTO nodes (node_id, node_type, key, props_json) VALUES (?, ?, ?, ?)")
	if err != nil {
		return GraphCounts{}, fmt.Errorf("prepare node insert: %w", err)
	}
	defer func() { _ = nodeStmt.Close() }()
	for _, n := range nodes {
		if _, err := nodeStmt.Exec(n.NodeID, string(n.NodeType), n.Key, n.PropsJSON); err != nil {
			return GraphCounts{}, fmt.Errorf("insert node %s: %w", n.NodeID, err)
		}
	}

	edgeStmt, err := tx.Prepare("INSERT INTO edges (src_id, rel_type, dst_id, weight, evidence_id, props_json) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return GraphCounts{}, fmt.Errorf("prepare edge insert: %w", err)
	}
	defer func() { _ = edgeStmt.Close() }()
	for _, e := range edges {
		if _, err := edgeStmt.Exec(e.SrcID, string(e.RelType), e.DstID,
			nullFloat(e.Weight), nullString(e.EvidenceID), e.PropsJSON); err != nil {
			return GraphCounts{}, fmt.Errorf("insert edge %s-%s->%s: %w", e.SrcID, e.RelType, e.DstID, err)
		}
	}

	evStmt, err := tx.Prepare(`INSERT INTO evidence (
		evidence_id, subject_inchikey, evidence_type, field, value_num, value,
		unit, condition_state, condition_solvent, source_type, source_id,
		timestamp, timestamp_source, confidence, extraction_method,
		quality_flag, quality_score
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return GraphCounts{}, fmt.Errorf("prepare evidence insert: %w", err)
	}
	defer func() { _ = evStmt.Close() }()
	for _, r := range evidence {
		if _, err := evStmt.Exec(
			r.EvidenceID, nullString(r.SubjectInChIKey), string(r.EvidenceType), r.Field,
			nullFloat(r.ValueNum), nullString(r.Value), nullString(r.Unit),
			string(r.ConditionState), nullString(r.ConditionSolvent),
			string(r.SourceType), r.SourceID, r.Timestamp, nullString(r.TimestampSource),
			r.Confidence, r.ExtractionMethod, nullString(string(r.QualityFlag)), r.QualityScore,
		); err != nil {
			return GraphCounts{}, fmt.Errorf("insert evidence %s: %w", r.EvidenceID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return GraphCounts{}, fmt.Errorf("commit publish: %w", err)
	}
	return GraphCounts{Nodes: len(nodes), Edges: len(edges), Evidence: len(evidence)}, nil
}

// Counts queries the stored row counts.
func (s *GraphStore) Counts() (GraphCounts, error) {
	var c GraphCounts
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"nodes", &c.Nodes},
		{"edges", &c.Edges},
		{"evidence", &c.Evidence},
	} {
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + q.table).Scan(q.dst); err != nil {
			return GraphCounts{}, fmt.Errorf("count %s: %w", q.table, err)
		}
	}
	return c, nil
}

// Close releases the database connection.
func (s *GraphStore) Close() error {
	return s.db.Close()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

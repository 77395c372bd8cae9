package types

// AppConfig represents the complete application configuration
type AppConfig struct {
	Verbose bool          `mapstructure:"verbose"`
	Config  string        `mapstructure:"config"`
	Project ProjectConfig `mapstructure:"project" validate:"required"`
	Data    DataConfig    `mapstructure:"data" validate:"required"`
	Fields  FieldsConfig  `mapstructure:"fields" validate:"omitempty"`
}

// ProjectConfig holds project-related settings
type ProjectConfig struct {
	RootDir string `mapstructure:"rootDir" validate:"required"`
}

// DataConfig names the pipeline inputs and outputs inside Dir. Every stage
// reads and writes these defaults unless a flag overrides them.
type DataConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`

	// Evidence stage
	PrivateClean     string `mapstructure:"privateClean" validate:"required"`
	ATBFeatures      string `mapstructure:"atbFeatures" validate:"required"`
	ATBQC            string `mapstructure:"atbQc" validate:"required"`
	EvidenceTable    string `mapstructure:"evidenceTable" validate:"required"`
	EvidenceManifest string `mapstructure:"evidenceManifest" validate:"required"`

	// Graph stage
	AnchorNeighbors string `mapstructure:"anchorNeighbors" validate:"required"`
	GraphNodes      string `mapstructure:"graphNodes" validate:"required"`
	GraphEdges      string `mapstructure:"graphEdges" validate:"required"`
	GraphManifest   string `mapstructure:"graphManifest" validate:"required"`
	GraphDB         string `mapstructure:"graphDb" validate:"required"`
}

// FieldsConfig points at an optional field-registry override file.
type FieldsConfig struct {
	Registry string `mapstructure:"registry" validate:"omitempty"`
}

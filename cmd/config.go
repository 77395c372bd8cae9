package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GuoCheng12/aie/internal/logger"
	"github.com/GuoCheng12/aie/types"
)

const (
	configName = ".aie"
	envPrefix  = "AIE"
)

// GlobalAppConfig holds the global application configuration instance.
var GlobalAppConfig types.AppConfig

// configValidator is a single instance, it caches struct info
var configValidator *validator.Validate

func init() {
	configValidator = validator.New()
}

// validateAppConfig performs validation on the AppConfig struct.
func validateAppConfig(config *types.AppConfig) error {
	return configValidator.Struct(config)
}

// InitConfig reads in config file and ENV variables if set.
func InitConfig() {
	// Load .env file first if present
	if err := godotenv.Load(); err != nil {
		// It's okay if .env file doesn't exist.
		_ = err
	}

	// Environment variable handling must be set up BEFORE reading the config
	// file, so env vars can influence config loading.
	viper.SetEnvPrefix(envPrefix) // e.g., AIE_VERBOSE
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfgFileFlag := viper.GetString("config") // Value from --config flag

	// project.rootDir is needed before the full unmarshal to locate the
	// config file itself.
	potentialProjectConfigDir := viper.GetString("project.rootDir")
	if potentialProjectConfigDir == "" {
		potentialProjectConfigDir = ".aie"
	}

	if cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		if _, err := os.Stat(potentialProjectConfigDir); !os.IsNotExist(err) {
			// Project-specific config directory exists. Prioritize it.
			viper.AddConfigPath(potentialProjectConfigDir) // ./.aie/.aie.yaml
			viper.SetConfigName(configName)
		} else {
			home, err := os.UserHomeDir()
			cobra.CheckErr(err)
			viper.AddConfigPath(home) // $HOME/.aie.yaml
			viper.AddConfigPath(".")  // ./.aie.yaml
			viper.SetConfigName(configName)
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFileFlag != "" {
				fmt.Fprintln(os.Stderr, "Error: Specified config file not found:", cfgFileFlag)
			} else if viper.GetBool("verbose") {
				fmt.Fprintln(os.Stderr, "No config file found. Using defaults and environment variables.")
			}
		} else {
			fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
		}
	}

	// Set default values
	viper.SetDefault("project.rootDir", ".aie")

	viper.SetDefault("data.dir", "data")
	viper.SetDefault("data.privateClean", "private_clean.csv")
	viper.SetDefault("data.atbFeatures", "atb_features.csv")
	viper.SetDefault("data.atbQc", "atb_qc.csv")
	viper.SetDefault("data.evidenceTable", "evidence_table.csv")
	viper.SetDefault("data.evidenceManifest", "evidence_table_build_manifest.json")
	viper.SetDefault("data.anchorNeighbors", "anchor_neighbors_ecfp.csv")
	viper.SetDefault("data.graphNodes", "graph_nodes.csv")
	viper.SetDefault("data.graphEdges", "graph_edges.csv")
	viper.SetDefault("data.graphManifest", "graph_build_manifest.json")
	viper.SetDefault("data.graphDb", "graph.db")

	viper.SetDefault("fields.registry", "")

	// After all sources are configured, unmarshal into GlobalAppConfig
	if err := viper.Unmarshal(&GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling config: %s\n", err)
		os.Exit(1)
	}

	if GlobalAppConfig.Project.RootDir == "" {
		GlobalAppConfig.Project.RootDir = viper.GetString("project.rootDir")
	}
	if GlobalAppConfig.Data.Dir == "" {
		GlobalAppConfig.Data.Dir = viper.GetString("data.dir")
	}

	// Validate the populated configuration
	if err := validateAppConfig(&GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration validation error: %s\n", err)
		os.Exit(1)
	}

	logger.Setup(GlobalAppConfig.Verbose)
	logger.SetBasePath(GlobalAppConfig.Project.RootDir)
}

// GetConfig returns a pointer to the global types.AppConfig instance.
func GetConfig() *types.AppConfig {
	return &GlobalAppConfig
}

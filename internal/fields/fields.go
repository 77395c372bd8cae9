// Package fields carries the registry of evidence fields: which private
// columns are harvested, their units, which are intentionally non-numeric,
// and how a field name maps to a measurement condition.
package fields

import (
	"fmt"
	"strings"

	"github.com/GuoCheng12/aie/models"
	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v3"
)

// privateFields is the fixed list of private-record columns harvested into
// evidence, in original column order.
var privateFields = []string{
	"absorption",
	"absorption_peak_nm",
	"emission_sol",
	"emission_solid",
	"emission_aggr",
	"emission_crys",
	"qy_sol",
	"qy_solid",
	"qy_aggr",
	"qy_crys",
	"tau_sol",
	"tau_solid",
	"tau_aggr",
	"tau_crys",
	"tested_solvent",
}

var privateUnits = map[string]string{
	"absorption_peak_nm": "nm",
	"emission_sol":       "nm",
	"emission_solid":     "nm",
	"emission_aggr":      "nm",
	"emission_crys":      "nm",
	"qy_sol":             "fraction",
	"qy_solid":           "fraction",
	"qy_aggr":            "fraction",
	"qy_crys":            "fraction",
	"tau_sol":            "ns",
	"tau_solid":          "ns",
	"tau_aggr":           "ns",
	"tau_crys":           "ns",
}

// atbUnits covers the known aTB feature columns. Dipole units are
// tool-dependent and stay unset unless standardized later.
var atbUnits = map[string]string{
	"delta_volume":      "A^3",
	"s0_volume":         "A^3",
	"s1_volume":         "A^3",
	"delta_gap":         "eV",
	"s0_homo_lumo_gap":  "eV",
	"s1_homo_lumo_gap":  "eV",
	"excitation_energy": "eV",
	"delta_dihedral":    "deg",
	"s0_dihedral_avg":   "deg",
	"s1_dihedral_avg":   "deg",
}

// stringFields are private fields that are intentionally non-numeric; they
// never get PARSE_WARNING. This allowlist is coupled to the private field
// list and must change in lockstep with it.
var stringFields = map[string]bool{
	"absorption":     true,
	"tested_solvent": true,
}

// Registry resolves field metadata for one build run.
type Registry struct {
	private      []string
	privateUnits map[string]string
	atbUnits     map[string]string
	strings      map[string]bool
}

// Default returns the built-in registry.
func Default() *Registry {
	return &Registry{
		private:      privateFields,
		privateUnits: privateUnits,
		atbUnits:     atbUnits,
		strings:      stringFields,
	}
}

// overrides is the on-disk shape of an optional fields.yaml. Entries extend
// or replace the built-in maps; the built-in private field order is kept and
// extra fields are appended in file order.
type overrides struct {
	PrivateFields []string          `yaml:"privateFields"`
	PrivateUnits  map[string]string `yaml:"privateUnits"`
	ATBUnits      map[string]string `yaml:"atbUnits"`
	StringFields  []string          `yaml:"stringFields"`
}

// Load reads an optional YAML override file on top of the defaults.
func Load(fs afero.Fs, path string) (*Registry, error) {
	reg := Default()
	if path == "" {
		return reg, nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read fields file %s: %w", path, err)
	}
	var ov overrides
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return nil, fmt.Errorf("parse fields file %s: %w", path, err)
	}

	private := append([]string{}, reg.private...)
	seen := map[string]bool{}
	for _, f := range private {
		seen[f] = true
	}
	for _, f := range ov.PrivateFields {
		if !seen[f] {
			private = append(private, f)
			seen[f] = true
		}
	}
	privateUnits := map[string]string{}
	for k, v := range reg.privateUnits {
		privateUnits[k] = v
	}
	for k, v := range ov.PrivateUnits {
		privateUnits[k] = v
	}
	atbUnits := map[string]string{}
	for k, v := range reg.atbUnits {
		atbUnits[k] = v
	}
	for k, v := range ov.ATBUnits {
		atbUnits[k] = v
	}
	strs := map[string]bool{}
	for k := range reg.strings {
		strs[k] = true
	}
	for _, f := range ov.StringFields {
		strs[f] = true
	}

	return &Registry{private: private, privateUnits: privateUnits, atbUnits: atbUnits, strings: strs}, nil
}

// Private returns the private-record fields harvested into evidence.
func (r *Registry) Private() []string { return r.private }

// PrivateUnit returns the unit for a private field ("" when none).
func (r *Registry) PrivateUnit(field string) string { return r.privateUnits[field] }

// ATBUnit returns the unit for an aTB feature column ("" when none).
func (r *Registry) ATBUnit(field string) string { return r.atbUnits[field] }

// IsStringField reports whether a field is intentionally non-numeric.
func (r *Registry) IsStringField(field string) bool { return r.strings[field] }

// InferConditionState maps a field name onto the condition it was measured
// under. Absorption is solution-phase by convention; emission/qy/tau carry
// the state in their suffix; everything else is unknown.
func InferConditionState(field string) models.ConditionState {
	if field == "absorption" || field == "absorption_peak_nm" {
		return models.StateSol
	}
	for _, prefix := range []string{"emission_", "qy_", "tau_"} {
		if strings.HasPrefix(field, prefix) {
			switch suffix := field[len(prefix):]; suffix {
			case "sol":
				return models.StateSol
			case "solid":
				return models.StateSolid
			case "aggr":
				return models.StateAggr
			case "crys":
				return models.StateCrys
			}
		}
	}
	return models.StateUnknown
}

// InferConditionSolvent picks the solvent for a row. The tested solvent only
// applies to solution-phase measurements and to the tested_solvent field
// itself; all other states get "unknown".
func InferConditionSolvent(testedSolvent string, state models.ConditionState, field string) string {
	solvent := strings.TrimSpace(testedSolvent)
	if field == "tested_solvent" || state == models.StateSol {
		if solvent != "" {
			return solvent
		}
	}
	return "unknown"
}

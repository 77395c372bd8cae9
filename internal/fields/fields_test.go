package fields

import (
	"testing"

	"github.com/GuoCheng12/aie/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferConditionState(t *testing.T) {
	cases := map[string]models.ConditionState{
		"absorption":         models.StateSol,
		"absorption_peak_nm": models.StateSol,
		"emission_sol":       models.StateSol,
		"emission_solid":     models.StateSolid,
		"qy_aggr":            models.StateAggr,
		"tau_crys":           models.StateCrys,
		"tested_solvent":     models.StateUnknown,
		"delta_gap":          models.StateUnknown,
		"emission_gas":       models.StateUnknown,
	}
	for field, want := range cases {
		assert.Equal(t, want, InferConditionState(field), "field %s", field)
	}
}

func TestInferConditionSolvent(t *testing.T) {
	// Solution-phase rows inherit the tested solvent.
	assert.Equal(t, "THF", InferConditionSolvent("THF", models.StateSol, "qy_sol"))
	// tested_solvent itself keeps its value regardless of state.
	assert.Equal(t, "THF", InferConditionSolvent("THF", models.StateUnknown, "tested_solvent"))
	// Non-solution states never get a solvent.
	assert.Equal(t, "unknown", InferConditionSolvent("THF", models.StateSolid, "qy_solid"))
	// Missing solvent falls back to unknown.
	assert.Equal(t, "unknown", InferConditionSolvent("  ", models.StateSol, "qy_sol"))
}

func TestDefaultRegistry(t *testing.T) {
	reg := Default()
	require.Len(t, reg.Private(), 15)
	assert.Equal(t, "absorption", reg.Private()[0])
	assert.Equal(t, "tested_solvent", reg.Private()[14])
	assert.Equal(t, "fraction", reg.PrivateUnit("qy_sol"))
	assert.Equal(t, "", reg.PrivateUnit("absorption"))
	assert.Equal(t, "eV", reg.ATBUnit("delta_gap"))
	assert.Equal(t, "", reg.ATBUnit("s0_charge_dipole"))
	assert.True(t, reg.IsStringField("absorption"))
	assert.True(t, reg.IsStringField("tested_solvent"))
	assert.False(t, reg.IsStringField("qy_sol"))
}

func TestLoadOverrides(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := []byte(`
privateFields:
  - color_in_powder
privateUnits:
  tau_sol: ps
stringFields:
  - color_in_powder
`)
	require.NoError(t, afero.WriteFile(fs, "fields.yaml", content, 0o644))

	reg, err := Load(fs, "fields.yaml")
	require.NoError(t, err)

	assert.Len(t, reg.Private(), 16)
	assert.Equal(t, "color_in_powder", reg.Private()[15])
	assert.Equal(t, "ps", reg.PrivateUnit("tau_sol"))
	assert.True(t, reg.IsStringField("color_in_powder"))

	// Built-ins untouched.
	assert.Equal(t, "nm", reg.PrivateUnit("emission_sol"))
}

func TestLoadMissingFileIsError(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := Load(fs, "nope.yaml")
	require.Error(t, err)

	// Empty path means "no overrides", not an error.
	reg, err := Load(fs, "")
	require.NoError(t, err)
	assert.Len(t, reg.Private(), 15)
}

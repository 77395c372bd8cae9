package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GuoCheng12/aie/internal/normalize"
)

func TestParseFailureTotal(t *testing.T) {
	private := &normalize.SourceStats{
		ParseFailuresByField: map[string]int{"qy_sol": 2, "tau_sol": 1},
	}
	atb := &normalize.SourceStats{
		ParseFailuresByField: map[string]int{"delta_gap": 1},
	}

	assert.Equal(t, 4, parseFailureTotal(private, atb))
	assert.Equal(t, 0, parseFailureTotal(&normalize.SourceStats{}))
}

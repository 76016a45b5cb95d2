package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/valuation"
)

const profileFixture = `
profiles:
  default:
    description: watchlist default
    mode: tolerant
    weights:
      ev: 40
      dcf: 30
      graham: 10
      pe: 20
  earnings-heavy:
    mode: strict
    weights:
      ev: 20
      dcf: 40
      graham: 10
      pe: 30
`

func TestParse(t *testing.T) {
	file, err := Parse([]byte(profileFixture))
	require.NoError(t, err)
	require.Len(t, file.Profiles, 2)

	p, err := file.Get("default")
	require.NoError(t, err)
	assert.Equal(t, contracts.DefaultWeights(), p.WeightSet())

	mode, err := p.ParsedMode()
	require.NoError(t, err)
	assert.Equal(t, valuation.ModeTolerant, mode)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(`
profiles:
  broken:
    mode: tolerant
    wieghts:
      ev: 100
`))
	require.Error(t, err, "typo'd field must fail the load")
}

func TestParse_StrictMustSumTo100(t *testing.T) {
	_, err := Parse([]byte(`
profiles:
  off-by-one:
    mode: strict
    weights:
      ev: 40
      dcf: 30
      graham: 10
      pe: 19
`))
	require.Error(t, err)

	var confErr *contracts.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Contains(t, confErr.Reason, "99")
}

func TestParse_TolerantNeedNotSumTo100(t *testing.T) {
	file, err := Parse([]byte(`
profiles:
  partial:
    mode: tolerant
    weights:
      ev: 50
      dcf: 30
`))
	require.NoError(t, err)

	p, err := file.Get("partial")
	require.NoError(t, err)
	assert.Equal(t, 80, p.WeightSet().Total())
}

func TestParse_BadMode(t *testing.T) {
	_, err := Parse([]byte(`
profiles:
  bad:
    mode: lenient
    weights:
      ev: 100
`))
	require.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse([]byte("profiles: {}\n"))
	require.Error(t, err)
}

func TestGet_Missing(t *testing.T) {
	file, err := Parse([]byte(profileFixture))
	require.NoError(t, err)

	_, err = file.Get("nope")
	require.Error(t, err)
}

func TestDefault(t *testing.T) {
	p := Default()
	assert.Equal(t, contracts.DefaultWeights(), p.WeightSet())

	mode, err := p.ParsedMode()
	require.NoError(t, err)
	assert.Equal(t, valuation.ModeTolerant, mode)
}

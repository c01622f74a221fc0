package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimal(t *testing.T) {
	d, err := parseDecimal("quantity", "12.50")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("12.5")))

	_, err = parseDecimal("quantity", "twelve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--quantity")
}

func TestParseOptionalDecimal_EmptyIsNil(t *testing.T) {
	d, err := parseOptionalDecimal("cost", "")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = parseOptionalDecimal("cost", "3")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "3", d.String())
}

func TestParseOptionalDate(t *testing.T) {
	d, err := parseOptionalDate("at", "2024-04-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), *d)

	d, err = parseOptionalDate("at", "2024-04-02T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 2, 8, 30, 0, 0, time.UTC), *d)

	d, err = parseOptionalDate("at", "")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = parseOptionalDate("at", "02/04/2024")
	assert.Error(t, err)
}

func TestMaskPassword(t *testing.T) {
	assert.Equal(t, "postgres://wh:xxxxx@db:5432/warehouse?sslmode=disable",
		maskPassword("postgres://wh:secret@db:5432/warehouse?sslmode=disable"))
	assert.Equal(t, "postgres://db:5432/warehouse", maskPassword("postgres://db:5432/warehouse"))
	assert.Equal(t, "postgres://wh@db/warehouse", maskPassword("postgres://wh@db/warehouse"))
}

func TestPrintJSON_Indents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "-", optionalDecimal(nil))
	assert.Equal(t, "-", optionalTime(nil))
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01", optionalTime(&at))
	assert.Equal(t, "yes", yesNo(true))
	assert.Equal(t, "(not set)", orNotSet(""))
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	root := NewRootCommand()
	for _, name := range []string{"config", "material", "movement", "stock", "reservation", "delivery", "health"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseFormat(t *testing.T) {
	f, ok := ParseFormat("")
	assert.True(t, ok)
	assert.Equal(t, FormatCSV, f)

	f, ok = ParseFormat("XLSX")
	assert.True(t, ok)
	assert.Equal(t, FormatXLSX, f)
	assert.Contains(t, f.ContentType(), "spreadsheetml")

	_, ok = ParseFormat("pdf")
	assert.False(t, ok)
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(FormatCSV, &buf, "")
	require.NoError(t, err)

	require.NoError(t, w.WriteHeader([]string{"id", "details"}))
	require.NoError(t, w.WriteRow([]string{"1", `{"count":2,"types":{"activity":2}}`}))
	require.NoError(t, w.Close())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, `{"count":2,"types":{"activity":2}}`, records[1][1])
}

func TestXLSXWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(FormatXLSX, &buf, "Audit Logs")
	require.NoError(t, err)

	require.NoError(t, w.WriteHeader([]string{"id", "action"}))
	require.NoError(t, w.WriteRow([]string{"1", "publish"}))
	require.NoError(t, w.WriteRow([]string{"2", "bulk_reject"}))
	require.NoError(t, w.Close())

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Audit Logs")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "action"}, {"1", "publish"}, {"2", "bulk_reject"}}, rows)
}

func TestWriter_AbortDiscardsOutput(t *testing.T) {
	for _, format := range []Format{FormatCSV, FormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := NewWriter(format, &buf, "Audit Logs")
			require.NoError(t, err)

			require.NoError(t, w.WriteHeader([]string{"id"}))
			w.Abort()
			assert.NoError(t, w.Close(), "close after abort is a no-op")
			assert.Zero(t, buf.Len())
		})
	}
}

func TestWriter_CloseTwice(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(FormatXLSX, &buf, "")
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader([]string{"id"}))
	require.NoError(t, w.Close())
	size := buf.Len()

	require.NoError(t, w.Close())
	w.Abort()
	assert.Equal(t, size, buf.Len())
}

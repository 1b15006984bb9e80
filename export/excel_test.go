package export

import (
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tenderwatch/crawler/tender"
)

func TestFilename(t *testing.T) {
	now := time.Date(2026, 1, 15, 9, 30, 45, 0, time.UTC)
	assert.Equal(t, "tenders_20260115_093045.xlsx", Filename(now))
}

func TestWorkbookLayout(t *testing.T) {
	records := []tender.Record{
		{Title: "First", URL: "http://site.test/tenders/1", New: true, Department: "Health"},
		{Title: "Second", URL: "http://site.test/tenders/2"},
	}

	f, err := Workbook(records)
	require.NoError(t, err)

	rows, err := f.GetRows("Tenders")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, tender.Columns, rows[0])
	assert.Equal(t, "First", rows[1][0])
	assert.Equal(t, "true", rows[1][2])
	assert.Equal(t, "Health", rows[1][5])
	assert.Equal(t, "Second", rows[2][0])
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenders.xlsx")

	require.NoError(t, WriteFile([]tender.Record{{Title: "Only"}}, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)

	defer f.Close()

	cell, err := f.GetCellValue("Tenders", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Only", cell)
}

func TestEncodeRoundTrip(t *testing.T) {
	encoded, err := Encode([]tender.Record{{Title: "Enc"}})
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	// xlsx files are zip archives.
	assert.Equal(t, []byte{'P', 'K'}, raw[:2])
}

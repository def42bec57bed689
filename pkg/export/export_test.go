package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSheet() Sheet {
	return Sheet{
		Title:    "Broadsheet",
		Captions: []string{"Computer Science 2019 set"},
		Data: Dataset{
			Headers: []string{"matric", "gpa"},
			Rows: []map[string]string{
				{"matric": "CSC/19/001", "gpa": "5.00"},
				{"matric": "CSC/19/002"},
			},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleSheet())
	require.NoError(t, err)
	assert.Equal(t, "Computer Science 2019 set\nmatric,gpa\nCSC/19/001,5.00\nCSC/19/002,\n", string(out))
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleSheet())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Sheet{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Sheet{})
	assert.Error(t, err)
}

package api

import (
	"context"
	"testing"

	"terrepro/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFilename(t *testing.T) {
	tests := []struct {
		name        string
		disposition string
		fileType    models.FileType
		want        string
	}{
		{"quoted", `attachment; filename="ops.csv"`, models.FileCSV, "ops.csv"},
		{"unquoted", `attachment; filename=rapport.pdf`, models.FilePDF, "rapport.pdf"},
		{"lenient match", `attachment; filename="bilan 2024.xlsx"; size=12`, models.FileExcel, "bilan 2024.xlsx"},
		{"missing excel", "", models.FileExcel, "export.xlsx"},
		{"missing csv", "", models.FileCSV, "export.csv"},
		{"missing pdf", "", models.FilePDF, "export.pdf"},
		{"no filename param", "attachment", models.FileExcel, "export.xlsx"},
		{"directory stripped", `attachment; filename="../../etc/passwd"`, models.FileCSV, "passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExportFilename(tt.disposition, tt.fileType))
		})
	}
}

func TestExportReturnsExactBytes(t *testing.T) {
	fake, client := newFakeAPI(t)

	file, err := client.Export(context.Background(), "token", "3", models.FileCSV)
	require.NoError(t, err)
	assert.Equal(t, "ops.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, []byte("date;cout\n2024-05-01;17.50\n"), file.Data)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/api/cultures/3/exports", calls[0].Path)
	assert.JSONEq(t, `{"type_fichier":"csv"}`, calls[0].Body)
	assert.Equal(t, "Bearer token", calls[0].Authorization)
}

func TestExportOverSizeLimitFails(t *testing.T) {
	_, client := newFakeAPI(t)
	payload := []byte("date;cout\n2024-05-01;17.50\n")

	client.maxBody = int64(len(payload))
	file, err := client.Export(context.Background(), "token", "3", models.FileCSV)
	require.NoError(t, err)
	assert.Equal(t, payload, file.Data)

	client.maxBody = int64(len(payload)) - 1
	file, err = client.Export(context.Background(), "token", "3", models.FileCSV)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
	assert.Nil(t, file)
}

func TestExportWithoutToken(t *testing.T) {
	fake, client := newFakeAPI(t)

	_, err := client.Export(context.Background(), "", "3", models.FilePDF)
	assert.ErrorIs(t, err, ErrNoToken)
	assert.Empty(t, fake.Calls())
}

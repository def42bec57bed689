package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhizterkeyz/resultify-api/internal/models"
	appErrors "github.com/mhizterkeyz/resultify-api/pkg/errors"
)

func broadsheetFixture() *engine {
	store := newMemStore()
	store.addStudent("s1")
	store.addStudent("s2")
	store.addCourse("c1", "CSC101", 3, 100, 1, models.CourseTypeCore)
	store.addCourse("c2", "GST101", 2, 100, 1, models.CourseTypeElective)
	store.register("s1", "c1", 2019, true)
	store.register("s1", "c2", 2019, true)
	store.addResult("s1", "c1", 2019, 10, 10, 6, 50, models.ResultFinal)
	return newEngine(store, nil)
}

func TestBroadsheetCSV(t *testing.T) {
	e := broadsheetFixture()
	svc := NewExportService(e.reports, memGroups{e.store})

	sheet, err := svc.Broadsheet(context.Background(), cohortQuery(models.ReportViewOfficer), "")
	require.NoError(t, err)

	assert.Equal(t, "text/csv", sheet.ContentType)
	assert.Equal(t, "broadsheet-2019-2019-s1.csv", sheet.Filename)
	reader := csv.NewReader(bytes.NewReader(sheet.Body))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Faculty of Science, Computer Science: 2019 set, 2019 session, semester 1, 100 level"}, records[0])
	assert.Equal(t, []string{"matric", "name", "CSC101", "GST101", "carryovers", "tcr", "tce", "tgp", "gpa", "prev_gpa", "cgpa", "remarks"}, records[1])
	assert.Equal(t, []string{"S1", "Student s1", "76A", models.RemarkPending, "", "5", "3", "15.00", "5.00", "0.00", "5.00", ""}, records[2])
	assert.Equal(t, "CSC101", records[3][len(records[3])-1])
}

func TestBroadsheetPDF(t *testing.T) {
	e := broadsheetFixture()
	svc := NewExportService(e.reports, memGroups{e.store})

	sheet, err := svc.Broadsheet(context.Background(), cohortQuery(models.ReportViewOfficer), BroadsheetPDF)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", sheet.ContentType)
	assert.True(t, bytes.HasPrefix(sheet.Body, []byte("%PDF")))
}

func TestBroadsheetRejectsUnknownFormat(t *testing.T) {
	e := broadsheetFixture()
	svc := NewExportService(e.reports, memGroups{e.store})

	_, err := svc.Broadsheet(context.Background(), cohortQuery(models.ReportViewOfficer), "xlsx")

	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newExportServiceForTest(repo *householdRepoStub, horizon int) *ExportService {
	schedules := newScheduleServiceForTest(repo, nil)
	return NewExportService(schedules, repo, zap.NewNop(), ExportServiceConfig{ICSHorizonDays: horizon})
}

func TestExportPlannerCSV(t *testing.T) {
	repo := newHouseholdRepoStub("Europe/Paris")
	svc := newExportServiceForTest(repo, 7)

	payload, filename, err := svc.PlannerCSV(context.Background(), "hh-1", "2024-06-10", 7, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "planning-2024-06-10.csv", filename)

	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 8)
	assert.Equal(t, []string{"Date", "Jour", "Statut", "Debut", "Fin", "Note"}, records[0])

	// Monday June 10: signup template working day.
	assert.Equal(t, "2024-06-10", records[1][0])
	assert.Equal(t, "Lun", records[1][1])
	assert.Equal(t, "Travail", records[1][2])
	assert.Equal(t, "09:00", records[1][3])

	// Saturday June 15: disabled in the template.
	assert.Equal(t, "Sam", records[6][1])
	assert.Equal(t, "Repos", records[6][2])
	assert.Equal(t, "", records[6][3])
}

func TestExportPlannerPDF(t *testing.T) {
	repo := newHouseholdRepoStub("Europe/Paris")
	svc := newExportServiceForTest(repo, 7)

	payload, filename, err := svc.PlannerPDF(context.Background(), "hh-1", "2024-06-10", 7, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "planning-2024-06-10.pdf", filename)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestExportICSFeed(t *testing.T) {
	repo := newHouseholdRepoStub("Europe/Paris")
	svc := newExportServiceForTest(repo, 3)

	// Monday June 10, 08:00Z: the 3-day horizon covers Mon-Wed.
	now := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	feed, err := svc.ICSFeed(context.Background(), "hh-1", now)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(feed, "BEGIN:VCALENDAR"))
	assert.Contains(t, feed, "SUMMARY:Travail")
	// 09:00 Paris on June 10 is 07:00Z.
	assert.Contains(t, feed, "DTSTART:20240610T070000Z")
	assert.Contains(t, feed, "DTEND:20240610T160000Z")
	assert.Equal(t, 3, strings.Count(feed, "BEGIN:VEVENT"))
}

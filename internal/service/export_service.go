package service

import (
	"context"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/foyerhq/foyer-api/internal/schedule"
	"github.com/foyerhq/foyer-api/internal/timezone"
	appErrors "github.com/foyerhq/foyer-api/pkg/errors"
	"github.com/foyerhq/foyer-api/pkg/export"
)

// ExportServiceConfig tunes the export surfaces.
type ExportServiceConfig struct {
	ICSHorizonDays int
	CompanyName    string
}

// ExportService renders the resolved planner as downloadable documents: CSV
// and PDF for printing, ICS for calendar subscriptions.
type ExportService struct {
	schedules  *ScheduleService
	households scheduleHouseholdRepository
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
	config     ExportServiceConfig
}

// NewExportService constructs the service.
func NewExportService(schedules *ScheduleService, households scheduleHouseholdRepository, logger *zap.Logger, config ExportServiceConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ICSHorizonDays <= 0 {
		config.ICSHorizonDays = 60
	}
	if config.CompanyName == "" {
		config.CompanyName = "Foyer"
	}
	return &ExportService{
		schedules:  schedules,
		households: households,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
		config:     config,
	}
}

var plannerHeaders = []string{"Date", "Jour", "Statut", "Debut", "Fin", "Note"}

// PlannerCSV renders the planner projection as CSV.
func (s *ExportService) PlannerCSV(ctx context.Context, householdID, startYmd string, days int, now time.Time) ([]byte, string, error) {
	dataset, start, err := s.plannerDataset(ctx, householdID, startYmd, days, now)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return payload, fmt.Sprintf("planning-%s.csv", start), nil
}

// PlannerPDF renders the planner projection as a printable PDF.
func (s *ExportService) PlannerPDF(ctx context.Context, householdID, startYmd string, days int, now time.Time) ([]byte, string, error) {
	dataset, start, err := s.plannerDataset(ctx, householdID, startYmd, days, now)
	if err != nil {
		return nil, "", err
	}
	title := fmt.Sprintf("%s - planning du %s", s.config.CompanyName, start)
	payload, err := s.pdf.Render(*dataset, title)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return payload, fmt.Sprintf("planning-%s.pdf", start), nil
}

// ICSFeed serializes the upcoming work segments as a VCALENDAR so household
// members can subscribe from their own calendar app. Event instants are UTC
// conversions of the local segment times, so subscribers in other zones see
// the true moments.
func (s *ExportService) ICSFeed(ctx context.Context, householdID string, now time.Time) (string, error) {
	household, err := s.households.GetByID(ctx, householdID)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrNotFound, "household not found")
	}
	loc := timezone.LoadLocation(household.Timezone)
	startYmd := timezone.YMDIn(now, loc)

	weekly := schedule.ParseWeekly(household.WorkScheduleWeekly)
	exceptions := schedule.ParseExceptions(household.WorkScheduleExceptions)

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//foyer//planning//FR")

	ymd := startYmd
	for i := 0; i < s.config.ICSHorizonDays; i++ {
		res := schedule.ResolveDay(ymd, weekly, exceptions)
		for _, seg := range res.Segments {
			event := cal.AddEvent(fmt.Sprintf("%s@%s", seg.ID, householdID))
			event.SetDtStampTime(now.UTC())
			event.SetStartAt(segmentInstant(loc, ymd, seg.Start))
			event.SetEndAt(segmentInstant(loc, ymd, seg.End))
			summary := "Travail"
			if seg.Kind == schedule.SegmentAdd {
				summary = "Travail (extra)"
			}
			event.SetSummary(summary)
			if seg.Note != "" {
				event.SetDescription(seg.Note)
			}
		}
		ymd = timezone.AddDays(ymd, 1)
	}

	return cal.Serialize(), nil
}

func (s *ExportService) plannerDataset(ctx context.Context, householdID, startYmd string, days int, now time.Time) (*export.Dataset, string, error) {
	planner, err := s.schedules.Planner(ctx, householdID, startYmd, days, now)
	if err != nil {
		return nil, "", err
	}

	rows := make([]map[string]string, 0, len(planner.Days))
	for _, day := range planner.Days {
		row := map[string]string{
			"Date": day.Date,
			"Jour": day.Label,
			"Note": day.Note,
		}
		if day.Off {
			row["Statut"] = "Repos"
		} else {
			row["Statut"] = "Travail"
			row["Debut"] = day.Start
			row["Fin"] = day.End
		}
		rows = append(rows, row)
	}

	return &export.Dataset{Headers: plannerHeaders, Rows: rows}, planner.Start, nil
}

func segmentInstant(loc *time.Location, ymd, hhmm string) time.Time {
	hour := int(hhmm[0]-'0')*10 + int(hhmm[1]-'0')
	minute := int(hhmm[3]-'0')*10 + int(hhmm[4]-'0')
	return timezone.LocalToUTC(loc, ymd, hour, minute, 0)
}

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/foyerhq/foyer-api/internal/dto"
	"github.com/foyerhq/foyer-api/internal/models"
	"github.com/foyerhq/foyer-api/internal/schedule"
	appErrors "github.com/foyerhq/foyer-api/pkg/errors"
)

type householdRepoStub struct {
	household  *models.Household
	getCalls   int
	weekly     json.RawMessage
	exceptions json.RawMessage
}

func newHouseholdRepoStub(tz string) *householdRepoStub {
	return &householdRepoStub{
		household: &models.Household{
			ID:                     "hh-1",
			Name:                   "Dupont",
			Timezone:               tz,
			WorkScheduleWeekly:     models.SignupWeeklySchedule(),
			WorkScheduleExceptions: json.RawMessage(`[]`),
		},
	}
}

func (r *householdRepoStub) GetByID(_ context.Context, id string) (*models.Household, error) {
	r.getCalls++
	return r.household, nil
}

func (r *householdRepoStub) UpdateWeekly(_ context.Context, _ string, weekly json.RawMessage) error {
	r.weekly = weekly
	r.household.WorkScheduleWeekly = weekly
	return nil
}

func (r *householdRepoStub) UpdateExceptions(_ context.Context, _ string, exceptions json.RawMessage) error {
	r.exceptions = exceptions
	r.household.WorkScheduleExceptions = exceptions
	return nil
}

type cacheRepoStub struct {
	store   map[string][]byte
	deletes []string
}

func (s *cacheRepoStub) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *cacheRepoStub) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *cacheRepoStub) DeleteByPattern(_ context.Context, pattern string) error {
	s.deletes = append(s.deletes, pattern)
	s.store = nil
	return nil
}

func newScheduleServiceForTest(repo *householdRepoStub, cacheRepo *cacheRepoStub) *ScheduleService {
	var cache *CacheService
	if cacheRepo != nil {
		cache = NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	}
	return NewScheduleService(repo, cache, nil, nil, zap.NewNop(), ScheduleServiceConfig{PlannerDays: 7})
}

func TestScheduleServiceGetNormalizes(t *testing.T) {
	repo := newHouseholdRepoStub("Europe/Paris")
	repo.household.WorkScheduleWeekly = json.RawMessage(`"not an array"`)
	svc := newScheduleServiceForTest(repo, nil)

	out, err := svc.Get(context.Background(), "hh-1")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", out.Timezone)
	require.Len(t, out.Weekly, 7)
	assert.True(t, out.Weekly[0].Enabled)
	assert.Equal(t, "14:30", out.Weekly[0].Start)
	assert.Empty(t, out.Exceptions)
}

func TestScheduleServiceUpdateWeeklyPersistsNormalizedForm(t *testing.T) {
	repo := newHouseholdRepoStub("Europe/Paris")
	svc := newScheduleServiceForTest(repo, nil)

	raw := json.RawMessage(`[{"weekday":0,"enabled":true,"start":"08:00","end":"12:00"}]`)
	out, err := svc.UpdateWeekly(context.Background(), "hh-1", raw)
	require.NoError(t, err)
	require.Len(t, out, 7)
	assert.Equal(t, "08:00", out[0].Start)

	var persisted []schedule.WeeklySlot
	require.NoError(t, json.Unmarshal(repo.weekly, &persisted))
	require.Len(t, persisted, 7)
	assert.False(t, persisted[5].Enabled)
}

func TestScheduleServiceUpdateWeeklyRejectsInvertedHours(t *testing.T) {
	repo := newHouseholdRepoStub("Europe/Paris")
	svc := newScheduleServiceForTest(repo, nil)

	raw := json.RawMessage(`[{"weekday":2,"enabled":true,"start":"18:00","end":"09:00"}]`)
	_, err := svc.UpdateWeekly(context.Background(), "hh-1", raw)
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestScheduleServiceAddExceptionAppendsAndAssignsID(t *testing.T) {
	repo := newHouseholdRepoStub("Europe/Paris")
	svc := newScheduleServiceForTest(repo, nil)

	created, err := svc.AddException(context.Background(), "hh-1", dto.ExceptionRequest{
		DateYMD: "2024-06-10",
		Kind:    "REPLACE",
		Start:   "10:00",
		End:     "12:00",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, schedule.KindReplace, created.Kind)

	stored := schedule.ParseExceptions(repo.exceptions)
	require.Len(t, stored, 1)
	assert.Equal(t, created.ID, stored[0].ID)
}

func TestScheduleServiceAddExceptionInfersKind(t *testing.T) {
	repo := newHouseholdRepoStub("Europe/Paris")
	svc := newScheduleServiceForTest(repo, nil)

	// No kind, no times: an off day.
	created, err := svc.AddException(context.Background(), "hh-1", dto.ExceptionRequest{DateYMD: "2024-06-10"})
	require.NoError(t, err)
	assert.Equal(t, schedule.KindOff, created.Kind)
	assert.True(t, created.Off)

	// No kind, both times: a replacement.
	created, err = svc.AddException(context.Background(), "hh-1", dto.ExceptionRequest{
		DateYMD: "2024-06-11",
		Start:   "09:00",
		End:     "11:00",
	})
	require.NoError(t, err)
	assert.Equal(t, schedule.KindReplace, created.Kind)
}

func TestScheduleServiceAddExceptionValidation(t *testing.T) {
	repo := newHouseholdRepoStub("Europe/Paris")
	svc := newScheduleServiceForTest(repo, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.ExceptionRequest
		code string
	}{
		{"bad date", dto.ExceptionRequest{DateYMD: "10/06/2024", Kind: "OFF"}, appErrors.ErrInvalidDate.Code},
		{"bad time", dto.ExceptionRequest{DateYMD: "2024-06-10", Kind: "ADD", Start: "26:00", End: "27:00"}, appErrors.ErrInvalidTime.Code},
		{"inverted", dto.ExceptionRequest{DateYMD: "2024-06-10", Kind: "REPLACE", Start: "12:00", End: "10:00"}, appErrors.ErrValidation.Code},
		{"unknown kind", dto.ExceptionRequest{DateYMD: "2024-06-10", Kind: "MAYBE"}, appErrors.ErrValidation.Code},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddException(ctx, "hh-1", tc.req)
			require.Error(t, err)
			appErr, ok := err.(*appErrors.Error)
			require.True(t, ok)
			assert.Equal(t, tc.code, appErr.Code)
		})
	}
}

func TestScheduleServiceUpdateExceptionNotFound(t *testing.T) {
	repo := newHouseholdRepoStub("Europe/Paris")
	svc := newScheduleServiceForTest(repo, nil)

	_, err := svc.UpdateException(context.Background(), "hh-1", "nope", dto.ExceptionRequest{
		DateYMD: "2024-06-10",
		Kind:    "OFF",
	})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestScheduleServiceDeleteException(t *testing.T) {
	repo := newHouseholdRepoStub("Europe/Paris")
	svc := newScheduleServiceForTest(repo, nil)
	ctx := context.Background()

	created, err := svc.AddException(ctx, "hh-1", dto.ExceptionRequest{DateYMD: "2024-06-10", Kind: "OFF"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteException(ctx, "hh-1", created.ID))
	assert.Empty(t, schedule.ParseExceptions(repo.exceptions))

	err = svc.DeleteException(ctx, "hh-1", created.ID)
	require.Error(t, err)
}

func TestScheduleServiceResolveDayUsesCache(t *testing.T) {
	repo := newHouseholdRepoStub("Europe/Paris")
	cacheRepo := &cacheRepoStub{}
	svc := newScheduleServiceForTest(repo, cacheRepo)
	ctx := context.Background()

	// 2024-06-10 is a Monday, covered by the signup template.
	first, err := svc.ResolveDay(ctx, "hh-1", "2024-06-10")
	require.NoError(t, err)
	require.Len(t, first.Segments, 1)
	assert.Equal(t, "09:00", first.Segments[0].Start)

	callsAfterFirst := repo.getCalls
	second, err := svc.ResolveDay(ctx, "hh-1", "2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, repo.getCalls, "second resolution should come from cache")
}

func TestScheduleServiceWritesInvalidateCache(t *testing.T) {
	repo := newHouseholdRepoStub("Europe/Paris")
	cacheRepo := &cacheRepoStub{}
	svc := newScheduleServiceForTest(repo, cacheRepo)
	ctx := context.Background()

	_, err := svc.ResolveDay(ctx, "hh-1", "2024-06-10")
	require.NoError(t, err)

	created, err := svc.AddException(ctx, "hh-1", dto.ExceptionRequest{DateYMD: "2024-06-10", Kind: "OFF"})
	require.NoError(t, err)
	require.Contains(t, cacheRepo.deletes, "schedule:hh-1:*")

	day, err := svc.ResolveDay(ctx, "hh-1", "2024-06-10")
	require.NoError(t, err)
	assert.True(t, day.Off)
	assert.Empty(t, day.Segments)
	_ = created
}

func TestScheduleServiceResolveDayRejectsBadDate(t *testing.T) {
	svc := newScheduleServiceForTest(newHouseholdRepoStub("Europe/Paris"), nil)
	_, err := svc.ResolveDay(context.Background(), "hh-1", "2024-6-1")
	require.Error(t, err)
}

func TestScheduleServicePlannerDefaultsStartToLocalToday(t *testing.T) {
	repo := newHouseholdRepoStub("Pacific/Auckland")
	svc := newScheduleServiceForTest(repo, nil)

	// 13:00Z on 2024-06-10 is already 2024-06-11 in Auckland.
	now := time.Date(2024, 6, 10, 13, 0, 0, 0, time.UTC)
	out, err := svc.Planner(context.Background(), "hh-1", "", 0, now)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-11", out.Start)
	require.Len(t, out.Days, 7)
	assert.Equal(t, "Mar", out.Days[0].Label)
}

func TestScheduleServicePlannerClampsDayCount(t *testing.T) {
	svc := newScheduleServiceForTest(newHouseholdRepoStub("Europe/Paris"), nil)

	out, err := svc.Planner(context.Background(), "hh-1", "2024-06-10", 5000, time.Now())
	require.NoError(t, err)
	assert.Len(t, out.Days, 7)
}

package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/foyerhq/foyer-api/internal/models"
)

func newImportServiceForTest(maxRows int) (*ImportService, *taskRepoStub) {
	tasks := newTaskRepoStub()
	svc := NewImportService(tasks, newHouseholdRepoStub("Europe/Paris"), zap.NewNop(), ImportServiceConfig{MaxRows: maxRows})
	return svc, tasks
}

func TestImportTasksAliasedHeaders(t *testing.T) {
	svc, tasks := newImportServiceForTest(0)

	csvText := strings.Join([]string{
		"Titre,Jour,Heure,Etat,Desc",
		"Devoirs,2024-06-10,17:30,fait,Maths",
		"Courses,2024-06-11,,,",
	}, "\n")

	result, err := svc.ImportTasks(context.Background(), "hh-1", strings.NewReader(csvText))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Skipped)

	require.Len(t, tasks.batches, 1)
	batch := tasks.batches[0]
	require.Len(t, batch, 2)

	assert.Equal(t, "Devoirs", batch[0].Title)
	assert.Equal(t, models.TaskDone, batch[0].Status)
	require.NotNil(t, batch[0].Description)
	assert.Equal(t, "Maths", *batch[0].Description)
	// 17:30 Paris in June is 15:30Z.
	assert.Equal(t, time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC), batch[0].DueAt.UTC())

	// No time column value: falls back to 09:00 local.
	assert.Equal(t, time.Date(2024, 6, 11, 7, 0, 0, 0, time.UTC), batch[1].DueAt.UTC())
	assert.Equal(t, models.TaskTodo, batch[1].Status)
}

func TestImportTasksBucketDefaults(t *testing.T) {
	svc, tasks := newImportServiceForTest(0)

	csvText := strings.Join([]string{
		"title,date,moment",
		"A,2024-06-10,matin",
		"B,2024-06-10,aprem",
		"C,2024-06-10,soir",
	}, "\n")

	_, err := svc.ImportTasks(context.Background(), "hh-1", strings.NewReader(csvText))
	require.NoError(t, err)

	batch := tasks.batches[0]
	require.Len(t, batch, 3)
	assert.Equal(t, 7, batch[0].DueAt.UTC().Hour())
	assert.Equal(t, 12, batch[1].DueAt.UTC().Hour())
	assert.Equal(t, 17, batch[2].DueAt.UTC().Hour())
}

func TestImportTasksRowErrors(t *testing.T) {
	svc, tasks := newImportServiceForTest(0)

	csvText := strings.Join([]string{
		"title,date",
		",2024-06-10",
		"Valide,2024-06-10",
		"Mauvaise date,10/06/2024",
	}, "\n")

	result, err := svc.ImportTasks(context.Background(), "hh-1", strings.NewReader(csvText))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, "missing_title", result.Errors[0].Error)
	assert.Equal(t, 4, result.Errors[1].Row)
	assert.Equal(t, "invalid_date", result.Errors[1].Error)

	require.Len(t, tasks.batches, 1)
	assert.Equal(t, "Valide", tasks.batches[0][0].Title)
}

func TestImportTasksMissingTitleColumn(t *testing.T) {
	svc, _ := newImportServiceForTest(0)

	_, err := svc.ImportTasks(context.Background(), "hh-1", strings.NewReader("date,heure\n2024-06-10,10:00\n"))
	require.Error(t, err)
}

func TestImportTasksNoValidRows(t *testing.T) {
	svc, _ := newImportServiceForTest(0)

	_, err := svc.ImportTasks(context.Background(), "hh-1", strings.NewReader("title\n\n"))
	require.Error(t, err)
}

func TestImportTasksRowCap(t *testing.T) {
	svc, tasks := newImportServiceForTest(3)

	lines := []string{"title"}
	for i := 0; i < 10; i++ {
		lines = append(lines, "tache")
	}
	result, err := svc.ImportTasks(context.Background(), "hh-1", strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Created)
	assert.Len(t, tasks.batches[0], 3)
}

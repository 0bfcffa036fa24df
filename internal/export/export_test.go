package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yukikurage/kanban-board-api/internal/models"
)

func sampleSnapshot() Snapshot {
	stage := models.StageDone
	progress := 100
	comment := "Cambio de filtro terminado, ver foto adjunta del área"
	contentType := "image/png"
	due := models.Date("2025-01-12")

	return Snapshot{
		GeneratedAt: time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC),
		Users: []models.User{
			{Username: "admin", PasswordHash: "secret-hash", Role: models.RoleAdmin},
			{Username: "Erik Armenta", Role: models.RoleCollaborator, MustChangePassword: true},
		},
		Tasks: []models.Task{{
			ID: 1, Title: "Replace intake filter", CreatedDate: "2025-01-08", DueDate: &due,
			Priority: models.PriorityHigh, Shift: models.Shift2, Stage: models.StageDone, Progress: 100,
		}},
		Collaborators: []models.TaskCollaborator{{TaskID: 1, Username: "Erik Armenta"}},
		Interactions: []models.TaskInteraction{{
			ID: 1, TaskID: 1, Username: "Erik Armenta", ActionKind: models.ActionStatusChangeToDone,
			Timestamp: time.Date(2025, 1, 10, 7, 30, 0, 0, time.UTC), Comment: &comment,
			Evidence: []byte{0x89, 'P', 'N', 'G'}, EvidenceContentType: &contentType,
			ResultingStage: &stage, ResultingProgress: &progress,
		}},
	}
}

func TestParseFormat(t *testing.T) {
	for raw, want := range map[string]Format{"": FormatXLSX, "xlsx": FormatXLSX, "PDF": FormatPDF, " pdf ": FormatPDF} {
		got, err := ParseFormat(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseFormat("csv")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleSnapshot()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{RelationUsers, RelationTasks, RelationCollaborators, RelationInteractions}, f.GetSheetList())

	users, err := f.GetRows(RelationUsers)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"username", "role", "must_change_password", "created_at"}, users[0])
	assert.Equal(t, "admin", users[1][0])

	tasks, err := f.GetRows(RelationTasks)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "1", tasks[1][0])
	assert.Equal(t, "Replace intake filter", tasks[1][1])
	assert.Equal(t, "2025-01-12", tasks[1][4])
	assert.Equal(t, "Done", tasks[1][7])
	assert.Equal(t, "100", tasks[1][9])

	interactions, err := f.GetRows(RelationInteractions)
	require.NoError(t, err)
	require.Len(t, interactions, 2)
	assert.Equal(t, "Cambio de filtro terminado, ver foto adjunta del área", interactions[1][5], "comments are not truncated")

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		require.NoError(t, err)
		for _, row := range rows {
			assert.NotContains(t, row, "secret-hash")
		}
	}
}

func TestWriteXLSX_EmptySnapshot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Snapshot{GeneratedAt: time.Now()}))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(RelationCollaborators)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"task_id", "username"}}, rows)
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatPDF, sampleSnapshot()))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.NotContains(t, string(out), "secret-hash")
}

func TestWritePDF_EmptySnapshot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, Snapshot{GeneratedAt: time.Now()}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

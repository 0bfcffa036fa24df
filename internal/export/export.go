// Package export renders a snapshot of the board database, one table per
// relation, as an XLSX workbook or a PDF report.
package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/yukikurage/kanban-board-api/internal/models"
)

// Snapshot holds every relation of the store. Password hashes are never part
// of it.
type Snapshot struct {
	GeneratedAt   time.Time
	Users         []models.User
	Tasks         []models.Task
	Collaborators []models.TaskCollaborator
	Interactions  []models.TaskInteraction
}

// Format selects the output encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts "xlsx" or "pdf" in any case. An empty string means XLSX.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Filename is the suggested download name for a dump taken on day.
func (f Format) Filename(day models.Date) string {
	return fmt.Sprintf("kanban-export-%s.%s", day, f)
}

// Write encodes snap to w.
func Write(w io.Writer, format Format, snap Snapshot) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, snap)
	case FormatPDF:
		return WritePDF(w, snap)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Relation names in output order. They double as worksheet names.
const (
	RelationUsers         = "Users"
	RelationTasks         = "Tasks"
	RelationCollaborators = "Task collaborators"
	RelationInteractions  = "Task interactions"
)

type column struct {
	title string
	// width is the PDF cell width in mm
	width float64
}

type relation struct {
	name    string
	columns []column
	rows    [][]any
}

func relations(snap Snapshot) []relation {
	return []relation{
		{
			name:    RelationUsers,
			columns: []column{{"username", 90}, {"role", 50}, {"must_change_password", 50}, {"created_at", 87}},
			rows:    userRows(snap.Users),
		},
		{
			name:    RelationTasks,
			columns: []column{{"id", 12}, {"title", 70}, {"created_date", 22}, {"start_date", 22}, {"due_date", 22}, {"priority", 20}, {"shift", 18}, {"stage", 25}, {"completion_date", 22}, {"progress", 18}, {"created_by", 26}},
			rows:    taskRows(snap.Tasks),
		},
		{
			name:    RelationCollaborators,
			columns: []column{{"task_id", 30}, {"username", 120}},
			rows:    collaboratorRows(snap.Collaborators),
		},
		{
			name:    RelationInteractions,
			columns: []column{{"id", 12}, {"task_id", 15}, {"username", 40}, {"action_kind", 45}, {"timestamp", 42}, {"comment", 64}, {"evidence", 22}, {"resulting_stage", 22}, {"resulting_progress", 15}},
			rows:    interactionRows(snap.Interactions),
		},
	}
}

func userRows(users []models.User) [][]any {
	rows := make([][]any, 0, len(users))
	for _, u := range users {
		rows = append(rows, []any{
			u.Username,
			string(u.Role),
			u.MustChangePassword,
			timestamp(u.CreatedAt),
		})
	}
	return rows
}

func taskRows(tasks []models.Task) [][]any {
	rows := make([][]any, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []any{
			t.ID,
			t.Title,
			t.CreatedDate.String(),
			date(t.StartDate),
			date(t.DueDate),
			string(t.Priority),
			string(t.Shift),
			string(t.Stage),
			date(t.CompletionDate),
			t.Progress,
			t.CreatedBy,
		})
	}
	return rows
}

func collaboratorRows(collaborators []models.TaskCollaborator) [][]any {
	rows := make([][]any, 0, len(collaborators))
	for _, c := range collaborators {
		rows = append(rows, []any{c.TaskID, c.Username})
	}
	return rows
}

func interactionRows(entries []models.TaskInteraction) [][]any {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		evidence := ""
		if e.EvidenceContentType != nil {
			evidence = fmt.Sprintf("%s %dB", *e.EvidenceContentType, len(e.Evidence))
		}
		var stage any = ""
		if e.ResultingStage != nil {
			stage = string(*e.ResultingStage)
		}
		var progress any = ""
		if e.ResultingProgress != nil {
			progress = *e.ResultingProgress
		}
		comment := ""
		if e.Comment != nil {
			comment = *e.Comment
		}
		rows = append(rows, []any{
			e.ID,
			e.TaskID,
			e.Username,
			string(e.ActionKind),
			timestamp(e.Timestamp),
			comment,
			evidence,
			stage,
			progress,
		})
	}
	return rows
}

// text renders a cell value for the PDF report.
func text(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case uint64:
		return strconv.FormatUint(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func date(d *models.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

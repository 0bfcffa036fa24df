package services

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/kanban-board-api/internal/board"
	"github.com/yukikurage/kanban-board-api/internal/constants"
	"github.com/yukikurage/kanban-board-api/internal/models"
	"github.com/yukikurage/kanban-board-api/internal/repository"
	"github.com/yukikurage/kanban-board-api/internal/testutil"
	"github.com/yukikurage/kanban-board-api/internal/utils"
)

const defaultPassword = "colab_nueva_tarea"

// 1x1 PNG
var pngPixel, _ = base64.StdEncoding.DecodeString("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

type fakeDrafter struct {
	drafts []TaskDraft
	err    error
}

func (f *fakeDrafter) GenerateTaskDrafts(_ context.Context, _ string, _ models.Date) ([]TaskDraft, error) {
	return f.drafts, f.err
}

// lostRaceUserRepo behaves as if another writer inserted the username between
// validation and insert.
type lostRaceUserRepo struct {
	repository.UserRepository
}

func (r lostRaceUserRepo) CreateIfAbsent(ctx context.Context, user *models.User) (*models.User, bool, error) {
	stored, err := r.FindByUsername(ctx, user.Username)
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

type ServicesTestSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	auth     *AuthService
	tasks    *TaskService
	ledger   *LedgerService
	boards   *BoardService
	exports  *ExportService
	drafter  *fakeDrafter
	admin    models.Actor
	ana      models.Actor
	luis     models.Actor
	eva      models.Actor
	userRepo repository.UserRepository
}

func (suite *ServicesTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.now = time.Date(2025, 1, 9, 14, 30, 15, 500, time.UTC)
	clock := func() time.Time { return suite.now }

	db := testutil.NewDB(suite.T())
	suite.userRepo = repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)

	suite.drafter = &fakeDrafter{}
	suite.auth = NewAuthService(suite.userRepo, utils.NewTestPasswordHasher(), defaultPassword)
	suite.tasks = NewTaskService(taskRepo, suite.auth, suite.drafter).WithClock(clock)
	suite.ledger = NewLedgerService(taskRepo, interactionRepo, 1<<10).WithClock(clock)
	suite.boards = NewBoardService(taskRepo, board.DefaultThresholds()).WithClock(clock)
	suite.exports = NewExportService(repository.NewStore(db))

	suite.admin = models.Actor{Username: "admin", Role: models.RoleAdmin}
	suite.ana = models.Actor{Username: "ana", Role: models.RoleCollaborator}
	suite.luis = models.Actor{Username: "luis", Role: models.RoleCollaborator}
	suite.eva = models.Actor{Username: "eva", Role: models.RoleCollaborator}

	_, err := suite.auth.CreateUser(suite.ctx, CreateUserInput{Username: "admin", Password: "admin_password", Role: models.RoleAdmin})
	suite.Require().NoError(err)
	_, err = suite.auth.Signup(suite.ctx, "ana", "ana_password")
	suite.Require().NoError(err)
}

func (suite *ServicesTestSuite) createTask(due string, assignees ...string) *models.Task {
	task, err := suite.tasks.CreateTask(suite.ctx, suite.admin, CreateTaskInput{
		Title:     "Calibrate line 2",
		DueDate:   due,
		Priority:  models.PriorityHigh,
		Shift:     models.Shift2,
		Assignees: assignees,
	})
	suite.Require().NoError(err)
	return task
}

func (suite *ServicesTestSuite) TestTaskLifecycleScenario() {
	task := suite.createTask("2025-01-09", "ana", "luis")
	suite.Equal(models.StageTodo, task.Stage)
	suite.Equal(0, task.Progress)
	suite.Equal(models.Date("2025-01-09"), task.CreatedDate)
	suite.ElementsMatch([]string{"ana", "luis"}, task.Assignees())

	luis, err := suite.auth.Authenticate(suite.ctx, "luis", defaultPassword)
	suite.Require().NoError(err)
	suite.Equal(models.RoleCollaborator, luis.Role)
	suite.True(luis.MustChangePassword)

	task, err = suite.tasks.SetProgress(suite.ctx, suite.ana, task.ID, 40)
	suite.Require().NoError(err)
	suite.Equal(40, task.Progress)
	suite.Equal(models.StageTodo, task.Stage)

	task, err = suite.tasks.AdvanceToDone(suite.ctx, suite.ana, task.ID, "2025-01-10")
	suite.Require().NoError(err)
	suite.Equal(models.StageDone, task.Stage)
	suite.Equal(100, task.Progress)
	suite.Require().NotNil(task.CompletionDate)
	suite.Equal(models.Date("2025-01-10"), *task.CompletionDate)

	entries, err := suite.ledger.ListByTask(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 2)
	suite.Equal(models.ActionProgressUpdate, entries[0].ActionKind)
	suite.Equal(40, *entries[0].ResultingProgress)
	suite.Equal(models.ActionStatusChangeToDone, entries[1].ActionKind)
	suite.Equal(models.StageDone, *entries[1].ResultingStage)
	suite.Equal("ana", entries[1].Username)

	suite.Equal(board.BucketOverdue, suite.boards.DueBucket(models.Task{DueDate: models.DatePtr("2025-01-09")}))
	suite.Equal(board.CardCompleted, suite.boards.CardColor(*task))
}

func (suite *ServicesTestSuite) TestCreateTask_Validation() {
	base := CreateTaskInput{Title: "Inspect valves", Assignees: []string{"ana"}}

	tests := []struct {
		name   string
		mutate func(in *CreateTaskInput)
		err    error
	}{
		{"blank title", func(in *CreateTaskInput) { in.Title = "   " }, ErrTitleRequired},
		{"no assignees", func(in *CreateTaskInput) { in.Assignees = []string{" ", ""} }, ErrNoAssignees},
		{"bad due date", func(in *CreateTaskInput) { in.DueDate = "09/01/2025" }, ErrInvalidDate},
		{"bad priority", func(in *CreateTaskInput) { in.Priority = "Urgent" }, ErrInvalidPriority},
		{"bad shift", func(in *CreateTaskInput) { in.Shift = "Shift9" }, ErrInvalidShift},
		{"starts done", func(in *CreateTaskInput) { in.InitialStage = models.StageDone }, ErrInvalidInitial},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			in := base
			tt.mutate(&in)
			_, err := suite.tasks.CreateTask(suite.ctx, suite.admin, in)
			suite.ErrorIs(err, tt.err)
			suite.True(IsValidation(err))
		})
	}

	tasks, err := suite.tasks.ListTasks(suite.ctx, repository.TaskFilter{})
	suite.Require().NoError(err)
	suite.Empty(tasks)
}

func (suite *ServicesTestSuite) TestCreateTask_RequiresElevatedRole() {
	_, err := suite.tasks.CreateTask(suite.ctx, suite.ana, CreateTaskInput{Title: "x", Assignees: []string{"ana"}})
	suite.ErrorIs(err, ErrElevatedRoleRequired)
}

func (suite *ServicesTestSuite) TestCreateTask_DeduplicatesAssignees() {
	task := suite.createTask("", "ana", " ana ", "luis")
	suite.ElementsMatch([]string{"ana", "luis"}, task.Assignees())
}

func (suite *ServicesTestSuite) TestBaselineCannotMutateOthersTasks() {
	task := suite.createTask("", "ana")

	_, err := suite.tasks.SetProgress(suite.ctx, suite.eva, task.ID, 10)
	suite.ErrorIs(err, ErrTaskPermissionDenied)

	_, err = suite.tasks.AdvanceToDone(suite.ctx, suite.eva, task.ID, "")
	suite.ErrorIs(err, ErrTaskPermissionDenied)

	_, err = suite.ledger.Record(suite.ctx, suite.eva, task.ID, RecordInput{})
	suite.ErrorIs(err, ErrTaskPermissionDenied)

	entries, err := suite.ledger.ListByTask(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Empty(entries)

	supervisor := models.Actor{Username: "sue", Role: models.RoleSupervisor}
	_, err = suite.tasks.SetProgress(suite.ctx, supervisor, task.ID, 10)
	suite.NoError(err)
}

func (suite *ServicesTestSuite) TestSetProgress_Validation() {
	task := suite.createTask("", "ana")

	for _, p := range []int{-1, 101} {
		_, err := suite.tasks.SetProgress(suite.ctx, suite.ana, task.ID, p)
		suite.ErrorIs(err, ErrInvalidProgress)
	}

	_, err := suite.tasks.SetProgress(suite.ctx, suite.ana, 9999, 10)
	suite.ErrorIs(err, ErrTaskNotFound)

	_, err = suite.tasks.AdvanceToDone(suite.ctx, suite.ana, task.ID, "")
	suite.Require().NoError(err)
	_, err = suite.tasks.SetProgress(suite.ctx, suite.ana, task.ID, 50)
	suite.ErrorIs(err, ErrTaskCompleted)
}

func (suite *ServicesTestSuite) TestSetProgress_HundredKeepsStage() {
	todo := suite.createTask("", "ana")
	updated, err := suite.tasks.SetProgress(suite.ctx, suite.ana, todo.ID, 100)
	suite.Require().NoError(err)
	suite.Equal(models.StageTodo, updated.Stage)
	suite.Equal(100, updated.Progress)
	suite.Nil(updated.CompletionDate)

	started := suite.createTask("", "ana")
	_, err = suite.tasks.SetStage(suite.ctx, suite.ana, started.ID, SetStageInput{Stage: models.StageInProgress})
	suite.Require().NoError(err)
	updated, err = suite.tasks.SetProgress(suite.ctx, suite.ana, started.ID, 100)
	suite.Require().NoError(err)
	suite.Equal(models.StageInProgress, updated.Stage)
	suite.Nil(updated.CompletionDate)
}

func (suite *ServicesTestSuite) TestAdvanceToDone_IsIdempotent() {
	task := suite.createTask("", "ana")

	first, err := suite.tasks.AdvanceToDone(suite.ctx, suite.ana, task.ID, "2025-01-10")
	suite.Require().NoError(err)
	second, err := suite.tasks.AdvanceToDone(suite.ctx, suite.ana, task.ID, "2025-01-10")
	suite.Require().NoError(err)

	suite.Equal(first.Stage, second.Stage)
	suite.Equal(first.Progress, second.Progress)
	suite.Equal(*first.CompletionDate, *second.CompletionDate)
}

func (suite *ServicesTestSuite) TestAdvanceToDone_DefaultsToToday() {
	task := suite.createTask("", "ana")

	task, err := suite.tasks.AdvanceToDone(suite.ctx, suite.ana, task.ID, "")
	suite.Require().NoError(err)
	suite.Equal(models.Date("2025-01-09"), *task.CompletionDate)

	_, err = suite.tasks.AdvanceToDone(suite.ctx, suite.ana, task.ID, "tomorrow")
	suite.ErrorIs(err, ErrInvalidDate)
}

func (suite *ServicesTestSuite) TestSetStage() {
	task := suite.createTask("", "ana")
	progress := 30

	task, err := suite.tasks.SetStage(suite.ctx, suite.ana, task.ID, SetStageInput{Stage: models.StageInProgress, Progress: &progress})
	suite.Require().NoError(err)
	suite.Equal(models.StageInProgress, task.Stage)
	suite.Equal(30, task.Progress)
	suite.Nil(task.CompletionDate)

	_, err = suite.tasks.SetStage(suite.ctx, suite.ana, task.ID, SetStageInput{Stage: models.StageTodo, CompletionDate: "2025-01-09"})
	suite.ErrorIs(err, ErrCompletionDate)

	_, err = suite.tasks.SetStage(suite.ctx, suite.ana, task.ID, SetStageInput{Stage: "Blocked"})
	suite.ErrorIs(err, ErrInvalidStage)

	_, err = suite.tasks.SetStage(suite.ctx, suite.ana, task.ID, SetStageInput{Stage: models.StageDone})
	suite.Require().NoError(err)

	_, err = suite.tasks.SetStage(suite.ctx, suite.ana, task.ID, SetStageInput{Stage: models.StageInProgress})
	suite.ErrorIs(err, ErrInvalidTransition)

	entries, err := suite.ledger.ListByTask(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 2)
	suite.Equal(models.ActionStatusChange, entries[0].ActionKind)
}

func (suite *ServicesTestSuite) TestRecord_RoundTrip() {
	task := suite.createTask("", "ana")
	comment := "  filtro cambiado  "

	entry, err := suite.ledger.Record(suite.ctx, suite.ana, task.ID, RecordInput{Comment: &comment, Evidence: pngPixel})
	suite.Require().NoError(err)
	suite.Equal(models.ActionCommentAndEvidence, entry.ActionKind)
	suite.Equal(suite.now.Truncate(time.Second), entry.Timestamp)

	latest, err := suite.ledger.Latest(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(latest)
	suite.Equal(comment, *latest.Comment)
	suite.Equal(pngPixel, latest.Evidence)
	suite.Equal("image/png", *latest.EvidenceContentType)
	suite.Nil(latest.ResultingStage)

	unchanged, err := suite.tasks.GetTask(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Equal(models.StageTodo, unchanged.Stage)
}

func (suite *ServicesTestSuite) TestRecord_Evidence() {
	task := suite.createTask("", "ana")

	_, err := suite.ledger.Record(suite.ctx, suite.ana, task.ID, RecordInput{Evidence: []byte("plain text, not an image")})
	suite.ErrorIs(err, ErrEvidenceType)

	big := append(append([]byte{}, pngPixel...), make([]byte, 2<<10)...)
	_, err = suite.ledger.Record(suite.ctx, suite.ana, task.ID, RecordInput{Evidence: big})
	suite.ErrorIs(err, ErrEvidenceTooLarge)

	_, err = suite.ledger.Record(suite.ctx, suite.ana, 9999, RecordInput{})
	suite.ErrorIs(err, ErrTaskNotFound)

	latest, err := suite.ledger.Latest(suite.ctx, task.ID)
	suite.NoError(err)
	suite.Nil(latest)
}

func (suite *ServicesTestSuite) TestRecord_AfterDoneIsAllowed() {
	task := suite.createTask("", "ana")
	_, err := suite.tasks.AdvanceToDone(suite.ctx, suite.ana, task.ID, "")
	suite.Require().NoError(err)

	note := "follow-up photo"
	_, err = suite.ledger.Record(suite.ctx, suite.ana, task.ID, RecordInput{Comment: &note})
	suite.NoError(err)
}

func (suite *ServicesTestSuite) TestAutoProvision_IsIdempotent() {
	first, err := suite.auth.AutoProvision(suite.ctx, "marta")
	suite.Require().NoError(err)
	second, err := suite.auth.AutoProvision(suite.ctx, "marta")
	suite.Require().NoError(err)

	suite.Equal(first.PasswordHash, second.PasswordHash)
	suite.Equal(models.BaselineRole, second.Role)

	users, err := suite.userRepo.ListAll(suite.ctx)
	suite.Require().NoError(err)
	count := 0
	for _, u := range users {
		if u.Username == "marta" {
			count++
		}
	}
	suite.Equal(1, count)

	existing, err := suite.auth.AutoProvision(suite.ctx, "admin")
	suite.Require().NoError(err)
	suite.Equal(models.RoleAdmin, existing.Role)
}

func (suite *ServicesTestSuite) TestAuth() {
	_, err := suite.auth.Signup(suite.ctx, "ana", "another_password")
	suite.ErrorIs(err, ErrUsernameTaken)

	_, err = suite.auth.Signup(suite.ctx, "bob", "123")
	suite.ErrorIs(err, ErrPasswordTooShort)

	_, err = suite.auth.CreateUser(suite.ctx, CreateUserInput{Username: "bob", Password: "bob_password", Role: "Owner"})
	suite.ErrorIs(err, ErrInvalidRole)

	_, err = suite.auth.Authenticate(suite.ctx, "ana", "wrong")
	suite.ErrorIs(err, ErrInvalidCredentials)
	_, err = suite.auth.Authenticate(suite.ctx, "nobody", "wrong")
	suite.ErrorIs(err, ErrInvalidCredentials)

	suite.Require().NoError(suite.auth.ResetPassword(suite.ctx, "ana", "fresh_password"))
	_, err = suite.auth.Authenticate(suite.ctx, "ana", "fresh_password")
	suite.NoError(err)
	ana, err := suite.auth.GetUser(suite.ctx, "ana")
	suite.Require().NoError(err)
	suite.True(ana.MustChangePassword, "admin reset is temporary")

	suite.ErrorIs(suite.auth.ChangePassword(suite.ctx, "ana", "wrong", "own_password"), ErrInvalidCredentials)
	suite.Require().NoError(suite.auth.ChangePassword(suite.ctx, "ana", "fresh_password", "own_password"))
	ana, err = suite.auth.GetUser(suite.ctx, "ana")
	suite.Require().NoError(err)
	suite.False(ana.MustChangePassword)

	suite.ErrorIs(suite.auth.ResetPassword(suite.ctx, "nobody", "fresh_password"), ErrUserNotFound)

	created, err := suite.auth.EnsureBootstrapAdmin(suite.ctx, "admin", "admin_password")
	suite.NoError(err)
	suite.False(created)
}

func (suite *ServicesTestSuite) TestPasswordLengthLimit() {
	long := strings.Repeat("p", constants.MaxPasswordLength+1)

	_, err := suite.auth.Signup(suite.ctx, "bob", long)
	suite.ErrorIs(err, ErrPasswordTooLong)
	suite.True(IsValidation(err))

	suite.ErrorIs(suite.auth.ResetPassword(suite.ctx, "ana", long), ErrPasswordTooLong)
	suite.ErrorIs(suite.auth.ChangePassword(suite.ctx, "ana", "ana_password", long), ErrPasswordTooLong)

	_, err = suite.auth.Authenticate(suite.ctx, "ana", "ana_password")
	suite.NoError(err, "rejected changes leave the password untouched")

	_, err = suite.auth.Signup(suite.ctx, "bob", strings.Repeat("p", constants.MaxPasswordLength))
	suite.NoError(err)
}

func (suite *ServicesTestSuite) TestAuthenticate_UnknownUserStillHashes() {
	suite.True(strings.HasPrefix(suite.auth.dummyHash, "$2"))

	_, err := suite.auth.Authenticate(suite.ctx, "nobody", "whatever")
	suite.ErrorIs(err, ErrInvalidCredentials)
}

func (suite *ServicesTestSuite) TestCreateUser_LosingInsertIsTaken() {
	auth := NewAuthService(lostRaceUserRepo{suite.userRepo}, utils.NewTestPasswordHasher(), defaultPassword)

	_, err := auth.Signup(suite.ctx, "ana", "another_password")
	suite.ErrorIs(err, ErrUsernameTaken)
}

func (suite *ServicesTestSuite) TestBoardAndStats() {
	suite.createTask("2025-01-08", "ana")
	suite.createTask("2025-01-12", "luis")
	done := suite.createTask("", "ana", "luis")
	_, err := suite.tasks.AdvanceToDone(suite.ctx, suite.admin, done.ID, "")
	suite.Require().NoError(err)

	view, err := suite.boards.Board(suite.ctx, suite.ana, "")
	suite.Require().NoError(err)
	suite.Equal("ana", view.Filter)
	suite.Len(view.Todo, 1)
	suite.Len(view.Done, 1)
	suite.Equal([]string{"ana", "luis"}, view.Assignees)

	stats, err := suite.boards.Stats(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(3, stats.Total)
	suite.Equal(1, stats.PendingDue[board.BucketOverdue])
	suite.Equal(1, stats.PendingDue[board.BucketDueSoon])
	suite.Equal(1, stats.CompletedByAssignee["luis"])
}

func (suite *ServicesTestSuite) TestPurge() {
	suite.createTask("", "ana")

	suite.ErrorIs(suite.tasks.Purge(suite.ctx, models.Actor{Username: "sue", Role: models.RoleSupervisor}), ErrAdminRequired)
	suite.Require().NoError(suite.tasks.Purge(suite.ctx, suite.admin))

	tasks, err := suite.tasks.ListTasks(suite.ctx, repository.TaskFilter{})
	suite.Require().NoError(err)
	suite.Empty(tasks)

	_, err = suite.auth.GetUser(suite.ctx, "ana")
	suite.NoError(err)
}

func (suite *ServicesTestSuite) TestSnapshotHidesPasswordHashes() {
	suite.createTask("", "ana")

	snap, err := suite.exports.Snapshot(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(snap.Tasks, 1)
	suite.Len(snap.Collaborators, 1)
	suite.NotEmpty(snap.Users)
	for _, u := range snap.Users {
		suite.Empty(u.PasswordHash)
	}
}

func (suite *ServicesTestSuite) TestGenerateTasks() {
	_, err := suite.tasks.GenerateTasks(suite.ctx, suite.ana, "text")
	suite.ErrorIs(err, ErrElevatedRoleRequired)

	past := models.Date("2024-12-01")
	future := models.Date("2025-02-01")
	suite.drafter.drafts = []TaskDraft{
		{Title: " Clean sensors ", DueDate: &future, Priority: models.PriorityLow},
		{Title: "Old item", DueDate: &past, Priority: "Critical"},
		{Title: "  "},
	}

	drafts, err := suite.tasks.GenerateTasks(suite.ctx, suite.admin, "text")
	suite.Require().NoError(err)
	suite.Require().Len(drafts, 2)
	suite.Equal("Clean sensors", drafts[0].Title)
	suite.Equal(future, *drafts[0].DueDate)
	suite.Nil(drafts[1].DueDate)
	suite.Equal(models.PriorityMedium, drafts[1].Priority)

	suite.drafter.drafts = nil
	_, err = suite.tasks.GenerateTasks(suite.ctx, suite.admin, "text")
	suite.ErrorIs(err, ErrAINoTasksGenerated)
}

func TestServicesTestSuite(t *testing.T) {
	suite.Run(t, new(ServicesTestSuite))
}

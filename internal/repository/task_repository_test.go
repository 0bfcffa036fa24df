package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/kanban-board-api/internal/models"
	"github.com/yukikurage/kanban-board-api/internal/testutil"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type TaskRepositoryTestSuite struct {
	suite.Suite
	ctx          context.Context
	db           *gorm.DB
	tasks        TaskRepository
	interactions InteractionRepository
	users        UserRepository
}

func (suite *TaskRepositoryTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.db = testutil.NewDB(suite.T())
	suite.tasks = NewTaskRepository(suite.db)
	suite.interactions = NewInteractionRepository(suite.db)
	suite.users = NewUserRepository(suite.db)
}

func (suite *TaskRepositoryTestSuite) template() models.User {
	return models.User{
		PasswordHash:       "default-hash",
		Role:               models.BaselineRole,
		MustChangePassword: true,
	}
}

func (suite *TaskRepositoryTestSuite) createTask(title string, assignees ...string) *models.Task {
	task := &models.Task{
		Title:       title,
		CreatedDate: "2025-01-01",
		Priority:    models.PriorityMedium,
		Shift:       models.Shift1,
		Stage:       models.StageTodo,
	}
	suite.Require().NoError(suite.tasks.CreateWithCollaborators(suite.ctx, task, assignees, suite.template()))
	return task
}

func (suite *TaskRepositoryTestSuite) TestCreateWithCollaborators_ProvisionsUnknownUsers() {
	require.NoError(suite.T(), suite.users.Create(suite.ctx, &models.User{
		Username:     "ana",
		PasswordHash: "ana-hash",
		Role:         models.RoleSupervisor,
	}))

	task := suite.createTask("Replace sensor", "ana", "luis")

	assert.NotZero(suite.T(), task.ID)
	assert.ElementsMatch(suite.T(), []string{"ana", "luis"}, task.Assignees())

	ana, err := suite.users.FindByUsername(suite.ctx, "ana")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RoleSupervisor, ana.Role, "existing users are left untouched")
	assert.Equal(suite.T(), "ana-hash", ana.PasswordHash)

	luis, err := suite.users.FindByUsername(suite.ctx, "luis")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.BaselineRole, luis.Role)
	assert.True(suite.T(), luis.MustChangePassword)

	stored, err := suite.tasks.FindByID(suite.ctx, task.ID)
	require.NoError(suite.T(), err)
	assert.ElementsMatch(suite.T(), []string{"ana", "luis"}, stored.Assignees())
}

func (suite *TaskRepositoryTestSuite) TestCreateWithCollaborators_RollsBackOnDuplicateAssignee() {
	task := &models.Task{
		Title:       "Broken",
		CreatedDate: "2025-01-01",
		Priority:    models.PriorityLow,
		Shift:       models.Shift2,
		Stage:       models.StageTodo,
	}

	err := suite.tasks.CreateWithCollaborators(suite.ctx, task, []string{"eva", "eva"}, suite.template())
	require.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, ErrCreateCollaborators)

	var count int64
	suite.db.Model(&models.Task{}).Count(&count)
	assert.Zero(suite.T(), count, "task row must not survive a failed assignment")
	suite.db.Model(&models.User{}).Count(&count)
	assert.Zero(suite.T(), count, "provisioned users are rolled back too")
}

func (suite *TaskRepositoryTestSuite) TestList_FilterByAssigneeAndStage() {
	first := suite.createTask("First", "ana")
	suite.createTask("Second", "luis")
	third := suite.createTask("Third", "ana", "luis")

	ana := "ana"
	tasks, err := suite.tasks.List(suite.ctx, TaskFilter{Assignee: &ana})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), tasks, 2)
	assert.Equal(suite.T(), first.ID, tasks[0].ID)
	assert.Equal(suite.T(), third.ID, tasks[1].ID)
	assert.Len(suite.T(), tasks[1].Collaborators, 2, "collaborators are preloaded in full")

	done := models.StageDone
	tasks, err = suite.tasks.List(suite.ctx, TaskFilter{Stage: &done})
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), tasks)

	tasks, err = suite.tasks.List(suite.ctx, TaskFilter{})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), tasks, 3)
}

func (suite *TaskRepositoryTestSuite) TestMutate_WritesTaskAndLedgerEntry() {
	task := suite.createTask("Calibrate", "ana")
	completed := models.Date("2025-01-10")

	updated, err := suite.tasks.Mutate(suite.ctx, task.ID, func(t *models.Task) (*models.TaskInteraction, error) {
		t.Stage = models.StageDone
		t.Progress = 100
		t.CompletionDate = &completed
		stage := t.Stage
		return &models.TaskInteraction{
			Username:       "ana",
			ActionKind:     models.ActionStatusChangeToDone,
			Timestamp:      time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC),
			ResultingStage: &stage,
		}, nil
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StageDone, updated.Stage)
	assert.Equal(suite.T(), 100, updated.Progress)
	require.NotNil(suite.T(), updated.CompletionDate)
	assert.Equal(suite.T(), completed, *updated.CompletionDate)
	assert.Len(suite.T(), updated.Collaborators, 1)

	entries, err := suite.interactions.ListByTask(suite.ctx, task.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), entries, 1)
	assert.Equal(suite.T(), models.ActionStatusChangeToDone, entries[0].ActionKind)
}

func (suite *TaskRepositoryTestSuite) TestMutate_ErrorLeavesTaskUntouched() {
	task := suite.createTask("Inspect", "ana")
	boom := errors.New("rejected")

	_, err := suite.tasks.Mutate(suite.ctx, task.ID, func(t *models.Task) (*models.TaskInteraction, error) {
		t.Progress = 90
		return nil, boom
	})
	assert.ErrorIs(suite.T(), err, boom)

	stored, err := suite.tasks.FindByID(suite.ctx, task.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, stored.Progress)
}

func (suite *TaskRepositoryTestSuite) TestMutate_NotFound() {
	_, err := suite.tasks.Mutate(suite.ctx, 999, func(t *models.Task) (*models.TaskInteraction, error) {
		return nil, nil
	})
	assert.ErrorIs(suite.T(), err, gorm.ErrRecordNotFound)
}

func (suite *TaskRepositoryTestSuite) TestPurge_KeepsUsers() {
	task := suite.createTask("Old", "ana", "luis")
	require.NoError(suite.T(), suite.interactions.Create(suite.ctx, &models.TaskInteraction{
		TaskID:     task.ID,
		Username:   "ana",
		ActionKind: models.ActionCommentAndEvidence,
		Timestamp:  time.Now().UTC(),
	}))

	require.NoError(suite.T(), suite.tasks.Purge(suite.ctx))

	var count int64
	suite.db.Model(&models.Task{}).Count(&count)
	assert.Zero(suite.T(), count)
	suite.db.Model(&models.TaskCollaborator{}).Count(&count)
	assert.Zero(suite.T(), count)
	suite.db.Model(&models.TaskInteraction{}).Count(&count)
	assert.Zero(suite.T(), count)

	users, err := suite.users.ListAll(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), users, 2)
}

func TestTaskRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TaskRepositoryTestSuite))
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestPurge_DeletesInDependencyOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `task_collaborators`")).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `task_interactions`")).WillReturnResult(sqlmock.NewResult(0, 9))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `tasks`")).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.Purge(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPurge_RollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)
	storageErr := errors.New("lock wait timeout")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `task_collaborators`")).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `task_interactions`")).WillReturnError(storageErr)
	mock.ExpectRollback()

	err := repo.Purge(context.Background())
	assert.ErrorIs(t, err, storageErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithCollaborators_RollsBackWhenAssignmentFails(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)
	storageErr := errors.New("foreign key violation")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `tasks`")).WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `users`")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `task_collaborators`")).WillReturnError(storageErr)
	mock.ExpectRollback()

	task := &models.Task{
		Title:       "Atomic",
		CreatedDate: "2025-01-01",
		Priority:    models.PriorityHigh,
		Shift:       models.Shift3,
		Stage:       models.StageTodo,
	}
	err := repo.CreateWithCollaborators(context.Background(), task, []string{"ana"}, models.User{Role: models.BaselineRole})

	assert.ErrorIs(t, err, ErrCreateCollaborators)
	assert.ErrorIs(t, err, storageErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"notes/internal/database"
	"notes/internal/handler"
	"notes/internal/model"
	"notes/internal/report"
	"notes/internal/repository"
	"notes/internal/service"
)

// Мок сервиса задач
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) List(ctx context.Context) ([]model.Task, error) {
	args := m.Called(ctx)
	tasks := args.Get(0)
	if tasks == nil {
		return nil, args.Error(1)
	}
	return tasks.([]model.Task), args.Error(1)
}

func (m *MockTaskService) Get(ctx context.Context, id string) (*model.Task, error) {
	args := m.Called(ctx, id)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskService) Create(ctx context.Context, draft model.Draft) (*model.Task, error) {
	args := m.Called(ctx, draft)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, id string, patch model.Patch) (*model.Task, error) {
	args := m.Called(ctx, id, patch)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskService) Report(ctx context.Context) (report.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(report.Stats), args.Error(1)
}

func setupTest() (*gin.Engine, *MockTaskService) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mockService := new(MockTaskService)
	taskHandler := handler.NewTaskHandler(mockService, slog.New(slog.NewTextHandler(io.Discard, nil)))

	taskHandler.Register(r.Group("/api"))
	return r, mockService
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		jsonBody, _ := json.Marshal(b)
		reader = bytes.NewBuffer(jsonBody)
	}
	req, _ := http.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func newTask() *model.Task {
	due, _ := model.ParseDate("2024-05-01")
	return &model.Task{
		ID:          uuid.New(),
		Title:       "Buy milk",
		Description: "2 liters",
		Importance:  model.ImportanceNormal,
		Status:      model.StatusPending,
		DueDate:     due,
		CreatedAt:   time.Date(2024, 4, 30, 8, 0, 0, 0, time.UTC),
	}
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

func TestList_Success(t *testing.T) {
	// Arrange
	router, mockService := setupTest()
	task := newTask()
	mockService.On("List", mock.Anything).Return([]model.Task{*task}, nil)

	// Act
	resp := doRequest(router, http.MethodGet, "/api/tasks", nil)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, task.ID.String(), body[0]["id"])
	assert.Equal(t, "2024-05-01", body[0]["dueDate"])
	assert.Equal(t, "2024-04-30T08:00:00Z", body[0]["createdAt"])

	mockService.AssertExpectations(t)
}

func TestList_EmptyIsArray(t *testing.T) {
	router, mockService := setupTest()
	mockService.On("List", mock.Anything).Return([]model.Task{}, nil)

	resp := doRequest(router, http.MethodGet, "/api/tasks", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[]`, resp.Body.String())
}

func TestList_StoreError(t *testing.T) {
	router, mockService := setupTest()
	mockService.On("List", mock.Anything).
		Return(nil, &repository.StoreError{Op: "list tasks", Err: assert.AnError})

	resp := doRequest(router, http.MethodGet, "/api/tasks", nil)

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	body := decodeError(t, resp)
	assert.Equal(t, "Server Error", body.Message)
	// internal details stay in the log
	assert.Empty(t, body.Error)
}

func TestCreate_Success(t *testing.T) {
	// Arrange
	router, mockService := setupTest()
	task := newTask()
	mockService.On("Create", mock.Anything, mock.MatchedBy(func(d model.Draft) bool {
		return d.Title == "Buy milk" && d.DueDate.String() == "2024-05-01" && d.Importance == nil && d.Status == nil
	})).Return(task, nil)

	// Act
	resp := doRequest(router, http.MethodPost, "/api/tasks",
		`{"title":"Buy milk","description":"2 liters","dueDate":"2024-05-01"}`)

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)

	var created model.Task
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Equal(t, task.ID, created.ID)
	assert.Equal(t, model.StatusPending, created.Status)

	mockService.AssertExpectations(t)
}

func TestCreate_MalformedBody(t *testing.T) {
	router, mockService := setupTest()

	for _, body := range []string{`{"title":`, `{"dueDate":"next week"}`, `{"dueDate":7}`} {
		resp := doRequest(router, http.MethodPost, "/api/tasks", body)

		assert.Equal(t, http.StatusBadRequest, resp.Code, body)
		assert.Equal(t, "Invalid data", decodeError(t, resp).Message)
	}
	mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreate_ValidationError(t *testing.T) {
	router, mockService := setupTest()
	verr := &model.ValidationError{Fields: []model.FieldError{{Field: "title", Message: "title is required"}}}
	mockService.On("Create", mock.Anything, mock.Anything).Return(nil, verr)

	resp := doRequest(router, http.MethodPost, "/api/tasks",
		`{"title":"","description":"d","dueDate":"2024-05-01"}`)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	body := decodeError(t, resp)
	assert.Equal(t, "Invalid data", body.Message)
	assert.Equal(t, "validation failed: title is required", body.Error)
	assert.Equal(t, verr.Fields, body.Fields)
}

// setupStoreTest wires the handler to a real service and an in-memory store.
func setupStoreTest(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.RunMigrations(db))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewTaskService(repository.NewTaskRepository(db), nil, log)
	handler.NewTaskHandler(svc, log).Register(r.Group("/api"))
	return r
}

func TestCreate_ExplicitEmptyEnum(t *testing.T) {
	router := setupStoreTest(t)

	for _, body := range []string{
		`{"title":"t","description":"d","dueDate":"2024-05-01","importance":""}`,
		`{"title":"t","description":"d","dueDate":"2024-05-01","status":""}`,
	} {
		resp := doRequest(router, http.MethodPost, "/api/tasks", body)

		assert.Equal(t, http.StatusBadRequest, resp.Code, body)
		errBody := decodeError(t, resp)
		assert.Equal(t, "Invalid data", errBody.Message)
		assert.Contains(t, errBody.Error, `got ""`)
	}

	// omitted fields still take their defaults
	resp := doRequest(router, http.MethodPost, "/api/tasks", `{"title":"t","description":"d","dueDate":"2024-05-01"}`)
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Contains(t, resp.Body.String(), `"importance":"Normal"`)
	assert.Contains(t, resp.Body.String(), `"status":"Pending"`)

	resp = doRequest(router, http.MethodGet, "/api/tasks", nil)
	var tasks []model.Task
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tasks))
	assert.Len(t, tasks, 1)
}

func TestGetByID(t *testing.T) {
	router, mockService := setupTest()
	task := newTask()
	mockService.On("Get", mock.Anything, task.ID.String()).Return(task, nil)
	mockService.On("Get", mock.Anything, "missing").Return(nil, repository.ErrTaskNotFound)

	resp := doRequest(router, http.MethodGet, "/api/tasks/"+task.ID.String(), nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = doRequest(router, http.MethodGet, "/api/tasks/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Task not found", decodeError(t, resp).Message)
}

func TestUpdate_Success(t *testing.T) {
	router, mockService := setupTest()
	task := newTask()
	task.Status = model.StatusCompleted
	id := task.ID.String()

	mockService.On("Update", mock.Anything, id, mock.MatchedBy(func(p model.Patch) bool {
		return p.Status != nil && *p.Status == model.StatusCompleted &&
			p.Title == nil && p.Description == nil && p.Importance == nil && p.DueDate == nil
	})).Return(task, nil)

	resp := doRequest(router, http.MethodPut, "/api/tasks/"+id, `{"status":"Completed"}`)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"Completed"`)
	mockService.AssertExpectations(t)
}

func TestUpdate_NotFound(t *testing.T) {
	router, mockService := setupTest()
	mockService.On("Update", mock.Anything, "nope", mock.Anything).Return(nil, repository.ErrTaskNotFound)

	resp := doRequest(router, http.MethodPut, "/api/tasks/nope", `{"title":"x"}`)

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Task not found", decodeError(t, resp).Message)
}

func TestDelete(t *testing.T) {
	router, mockService := setupTest()
	id := uuid.NewString()
	mockService.On("Delete", mock.Anything, id).Return(nil)
	mockService.On("Delete", mock.Anything, "gone").Return(repository.ErrTaskNotFound)

	resp := doRequest(router, http.MethodDelete, "/api/tasks/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"message":"Task deleted successfully"}`, resp.Body.String())

	resp = doRequest(router, http.MethodDelete, "/api/tasks/gone", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestReport(t *testing.T) {
	router, mockService := setupTest()
	mockService.On("Report", mock.Anything).
		Return(report.Stats{Total: 3, Pending: 2, Completed: 1, Important: 1, Overdue: 1}, nil)

	resp := doRequest(router, http.MethodGet, "/api/tasks/report", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"total":3,"pending":2,"completed":1,"important":1,"overdue":1}`, resp.Body.String())
	mockService.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

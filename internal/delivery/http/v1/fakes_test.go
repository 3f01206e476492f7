package v1

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/taskman-dev/taskman/internal/models"
	"github.com/taskman-dev/taskman/internal/services"
)

type fakeUserService struct {
	users  map[string]models.User
	nextID int64
}

func newFakeUserService() *fakeUserService {
	return &fakeUserService{
		users:  make(map[string]models.User),
		nextID: 1,
	}
}

func (f *fakeUserService) Register(_ context.Context, username, password string) (int64, error) {
	if username == "" || password == "" {
		return 0, services.ErrEmptyCredentials
	}
	if _, exists := f.users[username]; exists {
		return 0, services.ErrUserAlreadyExists
	}

	user := models.User{
		ID:        f.nextID,
		Username:  username,
		Password:  password,
		CreatedAt: time.Now(),
	}
	f.nextID++
	f.users[username] = user
	return user.ID, nil
}

func (f *fakeUserService) Verify(_ context.Context, username, password string) (int64, error) {
	user, exists := f.users[username]
	if !exists {
		return 0, services.ErrUserNotFound
	}
	if user.Password != password {
		return 0, services.ErrUserPasswordMismatch
	}
	return user.ID, nil
}

func (f *fakeUserService) ListUsers(_ context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})
	return users, nil
}

func (f *fakeUserService) usernameByID(id int64) string {
	for _, user := range f.users {
		if user.ID == id {
			return user.Username
		}
	}
	return ""
}

type fakeSessionService struct {
	users   *fakeUserService
	byToken map[string]*models.Session
	nextID  int64
	ttl     time.Duration
	deleted []string
}

func newFakeSessionService(users *fakeUserService) *fakeSessionService {
	return &fakeSessionService{
		users:   users,
		byToken: make(map[string]*models.Session),
		nextID:  1,
		ttl:     time.Hour,
	}
}

func (f *fakeSessionService) Create(_ context.Context, userID int64, fingerprint string) (*models.Session, string, error) {
	now := time.Now()
	session := &models.Session{
		ID:          fmt.Sprintf("session-%d", f.nextID),
		UserID:      userID,
		Username:    f.users.usernameByID(userID),
		Fingerprint: fingerprint,
		ExpiresAt:   now.Add(f.ttl),
		CreatedAt:   now,
	}
	f.nextID++

	token := "token-" + session.ID
	f.byToken[token] = session
	return session, token, nil
}

func (f *fakeSessionService) GetByToken(_ context.Context, token, fingerprint string) (*models.Session, error) {
	session, exists := f.byToken[token]
	if !exists {
		return nil, services.ErrSessionNotFound
	}
	if session.ExpiresAt.Before(time.Now()) {
		return nil, services.ErrSessionExpired
	}
	if session.Fingerprint != fingerprint {
		return nil, services.ErrSessionNotFound
	}
	return session, nil
}

func (f *fakeSessionService) Delete(_ context.Context, sessionID string) error {
	for token, session := range f.byToken {
		if session.ID == sessionID {
			delete(f.byToken, token)
		}
	}
	f.deleted = append(f.deleted, sessionID)
	return nil
}

type fakeTaskService struct {
	users  *fakeUserService
	tasks  []models.Task
	nextID int64
}

func newFakeTaskService(users *fakeUserService) *fakeTaskService {
	return &fakeTaskService{
		users:  users,
		nextID: 1,
	}
}

func (f *fakeTaskService) Create(_ context.Context, params services.CreateTaskParams) (int64, error) {
	if params.Title == "" {
		return 0, services.ErrEmptyTitle
	}
	if !models.IsValidStatus(params.Status) {
		return 0, services.ErrInvalidTaskStatus
	}

	task := models.Task{
		ID:          f.nextID,
		Title:       params.Title,
		Description: params.Description,
		Status:      params.Status,
		CreatedBy:   params.CreatedBy,
		AssignedTo:  params.AssignedTo,
		CreatedAt:   time.Now(),
	}
	f.nextID++
	f.tasks = append(f.tasks, task)
	return task.ID, nil
}

func (f *fakeTaskService) Update(_ context.Context, params services.UpdateTaskParams) error {
	if !models.IsValidStatus(params.Status) {
		return services.ErrInvalidTaskStatus
	}
	for i := range f.tasks {
		if f.tasks[i].ID == params.ID {
			f.tasks[i].Status = params.Status
			f.tasks[i].AssignedTo = params.AssignedTo
			return nil
		}
	}
	return services.ErrTaskNotFound
}

func (f *fakeTaskService) Delete(_ context.Context, taskID int64) error {
	for i := range f.tasks {
		if f.tasks[i].ID == taskID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return services.ErrTaskNotFound
}

func (f *fakeTaskService) List(_ context.Context, filter services.TaskFilter) ([]models.TaskView, error) {
	// Newest first, like the repository's ORDER BY created_at DESC.
	var views []models.TaskView
	for i := len(f.tasks) - 1; i >= 0; i-- {
		task := f.tasks[i]
		assignee := f.users.usernameByID(task.AssignedTo)
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.AssigneeUsername != "" && assignee != filter.AssigneeUsername {
			continue
		}
		views = append(views, models.TaskView{
			ID:          task.ID,
			Title:       task.Title,
			Description: task.Description,
			Status:      task.Status,
			CreatedBy:   f.users.usernameByID(task.CreatedBy),
			AssignedTo:  assignee,
			CreatedAt:   task.CreatedAt,
		})
	}
	return views, nil
}

type testEnv struct {
	router   *gin.Engine
	users    *fakeUserService
	sessions *fakeSessionService
	tasks    *fakeTaskService
}

// newTestEnv wires the handler to in-memory services behind the same
// route table the application registers.
func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)

	users := newFakeUserService()
	sessions := newFakeSessionService(users)
	tasks := newFakeTaskService(users)

	handler := New(zerolog.Nop(), users, sessions, tasks)

	router := gin.New()
	router.GET("/", handler.HandleIndex)
	router.GET("/login", handler.HandleLoginPage)
	router.POST("/login", handler.HandleLogin)
	router.GET("/register", handler.HandleRegisterPage)
	router.POST("/register", handler.HandleRegister)
	router.GET("/logout", handler.HandleLogout)
	router.GET("/dashboard", handler.HandleSessionMiddleware, handler.HandleDashboard)

	taskRouter := router.Group("/task")
	taskRouter.Use(handler.HandleSessionMiddleware)
	taskRouter.POST("/create", handler.HandleCreateTask)
	taskRouter.POST("/:id/update", handler.HandleUpdateTask)
	taskRouter.POST("/:id/delete", handler.HandleDeleteTask)

	return &testEnv{
		router:   router,
		users:    users,
		sessions: sessions,
		tasks:    tasks,
	}
}

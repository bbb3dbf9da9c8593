package repository

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/biosecret/tasktracker/common"
	"github.com/biosecret/tasktracker/models"
)

// MemoryUsers lưu người dùng trong bộ nhớ (STORAGE=memory và test)
type MemoryUsers struct {
	mu      sync.RWMutex
	nextID  int64
	byEmail map[string]models.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{byEmail: map[string]models.User{}}
}

func (m *MemoryUsers) Create(_ context.Context, email, passwordHash string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[email]; ok {
		return models.User{}, common.ErrEmailTaken
	}
	m.nextID++
	u := models.User{ID: m.nextID, Email: email, PasswordHash: passwordHash}
	m.byEmail[email] = u
	return u, nil
}

func (m *MemoryUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byEmail[email]
	if !ok {
		return models.User{}, common.ErrNotFound
	}
	return u, nil
}

func (m *MemoryUsers) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byEmail)
}

// MemoryTasks lưu task trong bộ nhớ. Mọi thay đổi đều nằm trong một lock
// nên AddLoggedTime là atomic như bản SQL.
type MemoryTasks struct {
	mu     sync.RWMutex
	nextID int64
	tasks  map[int64]models.Task
}

func NewMemoryTasks() *MemoryTasks {
	return &MemoryTasks{tasks: map[int64]models.Task{}}
}

// cloneTask copy sâu các trường con trỏ
func cloneTask(t models.Task) models.Task {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	if t.CompletedAt != nil {
		c := *t.CompletedAt
		t.CompletedAt = &c
	}
	return t
}

func (m *MemoryTasks) Create(_ context.Context, t models.Task) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	t = cloneTask(t)
	t.ID = m.nextID
	m.tasks[t.ID] = t
	return cloneTask(t), nil
}

func (m *MemoryTasks) ListByUser(_ context.Context, userID int64) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Task{}
	for _, t := range m.tasks {
		if t.UserID == userID {
			out = append(out, cloneTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// lookup phải được gọi khi đang giữ lock
func (m *MemoryTasks) lookup(userID, taskID int64) (models.Task, bool) {
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != userID {
		return models.Task{}, false
	}
	return t, true
}

func (m *MemoryTasks) GetForUser(_ context.Context, userID, taskID int64) (models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.lookup(userID, taskID)
	if !ok {
		return models.Task{}, common.ErrNotFound
	}
	return cloneTask(t), nil
}

func (m *MemoryTasks) Update(_ context.Context, userID, taskID int64, patch models.TaskPatch) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.lookup(userID, taskID)
	if !ok {
		return models.Task{}, common.ErrNotFound
	}
	t = patch.Apply(t)
	m.tasks[taskID] = t
	return cloneTask(t), nil
}

func (m *MemoryTasks) AddLoggedTime(_ context.Context, userID, taskID int64, delta float64) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.lookup(userID, taskID)
	if !ok {
		return models.Task{}, common.ErrNotFound
	}
	sum := t.LoggedTime + delta
	if math.IsInf(sum, 0) || math.IsNaN(sum) {
		return models.Task{}, errLoggedTimeOverflow()
	}
	t.LoggedTime = sum
	m.tasks[taskID] = t
	return cloneTask(t), nil
}

func (m *MemoryTasks) Delete(_ context.Context, userID, taskID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lookup(userID, taskID); !ok {
		return common.ErrNotFound
	}
	delete(m.tasks, taskID)
	return nil
}

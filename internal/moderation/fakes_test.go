package moderation_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryRecipes mimics the conditional-update semantics of the Postgres store.
type memoryRecipes struct {
	mu           sync.Mutex
	nextID       uint
	recipes      map[uint]*models.Recipe
	dependents   map[uint]int
	createErr    error
	transitionCt int
	// beforeTransition runs ahead of the conditional update, standing in for a concurrent writer.
	beforeTransition func(m *memoryRecipes, id uint)
}

func newMemoryRecipes() *memoryRecipes {
	return &memoryRecipes{recipes: make(map[uint]*models.Recipe), dependents: make(map[uint]int)}
}

func (m *memoryRecipes) Create(_ context.Context, recipe *models.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	recipe.ID = m.nextID
	recipe.CreatedAt = time.Now()
	recipe.UpdatedAt = recipe.CreatedAt
	cp := *recipe
	m.recipes[recipe.ID] = &cp
	m.dependents[recipe.ID] = len(recipe.Ingredients) + len(recipe.Instructions)
	return nil
}

func (m *memoryRecipes) GetByID(_ context.Context, id uint) (*models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recipes[id]
	if !ok {
		return nil, fmt.Errorf("recipe %d: %w", id, domain.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (m *memoryRecipes) UpdateContent(_ context.Context, id uint, content models.RecipeContent) (*models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recipes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if content.Title != nil {
		r.Title = *content.Title
	}
	if content.Description != nil {
		r.Description = *content.Description
	}
	r.Status = models.RecipeStatusPending
	r.ReviewedBy, r.ReviewedAt, r.ReviewComment = nil, nil, nil
	cp := *r
	return &cp, nil
}

func (m *memoryRecipes) Transition(_ context.Context, id uint, from []models.RecipeStatus, to models.RecipeStatus, review *models.Review) (*models.Recipe, error) {
	if m.beforeTransition != nil {
		m.beforeTransition(m, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitionCt++
	r, ok := m.recipes[id]
	if !ok || !slices.Contains(from, r.Status) {
		return nil, domain.ErrNotFound
	}
	r.Status = to
	if review != nil {
		by, at := review.ReviewerID, review.At
		r.ReviewedBy, r.ReviewedAt = &by, &at
		r.ReviewComment = nil
		if review.Comment != "" {
			c := review.Comment
			r.ReviewComment = &c
		}
	}
	cp := *r
	return &cp, nil
}

// set overwrites the stored status of id, or removes it when status is empty.
func (m *memoryRecipes) set(id uint, status models.RecipeStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if status == "" {
		delete(m.recipes, id)
		return
	}
	m.recipes[id].Status = status
}

func (m *memoryRecipes) DeleteCascade(_ context.Context, id uint, from models.RecipeStatus) (*models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recipes[id]
	if !ok || r.Status != from {
		return nil, domain.ErrNotFound
	}
	delete(m.recipes, id)
	delete(m.dependents, id)
	return r, nil
}

func (m *memoryRecipes) ListByStatus(_ context.Context, status models.RecipeStatus, authorIDs []string, _, _ int) ([]models.Recipe, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Recipe
	for _, r := range m.recipes {
		if r.Status == status && slices.Contains(authorIDs, r.UserID) {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

type memoryNotifications struct {
	mu   sync.Mutex
	rows []models.Notification
	err  error
}

func (m *memoryNotifications) CreateBatch(_ context.Context, rows []models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, rows...)
	return nil
}

func (m *memoryNotifications) For(recipient string) []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.rows {
		if n.RecipientID == recipient {
			out = append(out, n)
		}
	}
	return out
}

func (m *memoryNotifications) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type mailerMock struct {
	SendFunc func(to, subject, body string) error
	sent     []string
}

func (m *mailerMock) Send(to, subject, body string) error {
	m.sent = append(m.sent, to)
	if m.SendFunc != nil {
		return m.SendFunc(to, subject, body)
	}
	return nil
}

// Package quests provides the in-memory QuestRepository used by tests and
// by dev mode. It mirrors the postgres repository's semantics, including
// returning copies so callers never alias stored state.
package quests

import (
	"context"
	"sort"
	"sync"

	"github.com/questline/questline/core"
	"github.com/questline/questline/ports"
)

// Memory is an in-memory QuestRepository.
type Memory struct {
	mu      sync.RWMutex
	byOwner map[string]map[string]*core.Quest
}

// NewMemory creates an empty in-memory quest repository.
func NewMemory() *Memory {
	return &Memory{byOwner: make(map[string]map[string]*core.Quest)}
}

// Create inserts a new quest document.
func (m *Memory) Create(ctx context.Context, quest *core.Quest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	owned := m.byOwner[quest.Owner]
	if owned == nil {
		owned = make(map[string]*core.Quest)
		m.byOwner[quest.Owner] = owned
	}
	if _, exists := owned[quest.ID]; exists {
		return core.ErrQuestExists
	}
	owned[quest.ID] = clone(quest)
	return nil
}

// Get returns a copy of the quest, or core.ErrQuestNotFound.
func (m *Memory) Get(ctx context.Context, owner, id string) (*core.Quest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	quest, ok := m.byOwner[owner][id]
	if !ok {
		return nil, core.ErrQuestNotFound
	}
	return clone(quest), nil
}

// List returns copies of all of owner's quests, newest first.
func (m *Memory) List(ctx context.Context, owner string) ([]*core.Quest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var quests []*core.Quest
	for _, quest := range m.byOwner[owner] {
		quests = append(quests, clone(quest))
	}
	sort.Slice(quests, func(i, j int) bool {
		if quests[i].CreatedAt.Equal(quests[j].CreatedAt) {
			return quests[i].ID > quests[j].ID
		}
		return quests[i].CreatedAt.After(quests[j].CreatedAt)
	})
	return quests, nil
}

// Update replaces the stored document for (quest.Owner, quest.ID).
func (m *Memory) Update(ctx context.Context, quest *core.Quest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	owned := m.byOwner[quest.Owner]
	if _, ok := owned[quest.ID]; !ok {
		return core.ErrQuestNotFound
	}
	owned[quest.ID] = clone(quest)
	return nil
}

// Delete removes the quest owned by owner.
func (m *Memory) Delete(ctx context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	owned := m.byOwner[owner]
	if _, ok := owned[id]; !ok {
		return core.ErrQuestNotFound
	}
	delete(owned, id)
	return nil
}

func clone(quest *core.Quest) *core.Quest {
	out := *quest
	out.Objectives = make([]core.Objective, len(quest.Objectives))
	copy(out.Objectives, quest.Objectives)
	return &out
}

var _ ports.QuestRepository = (*Memory)(nil)

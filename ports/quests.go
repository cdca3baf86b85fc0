package ports

import (
	"context"

	"github.com/questline/questline/core"
)

// QuestRepository persists quest documents. Every operation is scoped to an
// owner; a quest belonging to another user behaves exactly like one that does
// not exist.
type QuestRepository interface {
	Create(ctx context.Context, quest *core.Quest) error
	Get(ctx context.Context, owner, id string) (*core.Quest, error)
	List(ctx context.Context, owner string) ([]*core.Quest, error)

	// Update replaces the stored document for (quest.Owner, quest.ID).
	// Returns core.ErrQuestNotFound if no such quest exists.
	Update(ctx context.Context, quest *core.Quest) error

	// Delete removes the quest. Returns core.ErrQuestNotFound if absent.
	Delete(ctx context.Context, owner, id string) error
}

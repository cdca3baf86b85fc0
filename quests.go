package questline

import (
	"context"
	"net/http"

	"github.com/questline/questline/core"
)

// NewQuest describes a quest to create. Objectives are optional initial
// objective titles.
type NewQuest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Objectives  []string `json:"objectives,omitempty"`
}

// QuestPatch is a partial quest update. Nil fields stay untouched.
type QuestPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// CreateQuest creates a quest owned by the logged-in user.
func (c *Client) CreateQuest(ctx context.Context, quest NewQuest) (*core.Quest, error) {
	var created core.Quest
	if err := c.do(ctx, http.MethodPost, "/api/quests", quest, &created, true); err != nil {
		return nil, mapQuestError(err)
	}
	return &created, nil
}

// ListQuests returns the user's quests, newest first.
func (c *Client) ListQuests(ctx context.Context) ([]*core.Quest, error) {
	var listing struct {
		Quests []*core.Quest `json:"quests"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/quests", nil, &listing, true); err != nil {
		return nil, mapQuestError(err)
	}
	return listing.Quests, nil
}

// GetQuest returns one quest by id.
func (c *Client) GetQuest(ctx context.Context, questID string) (*core.Quest, error) {
	var quest core.Quest
	if err := c.do(ctx, http.MethodGet, "/api/quests/"+questID, nil, &quest, true); err != nil {
		return nil, mapQuestError(err)
	}
	return &quest, nil
}

// UpdateQuest applies a partial update and returns the new state.
func (c *Client) UpdateQuest(ctx context.Context, questID string, patch QuestPatch) (*core.Quest, error) {
	var quest core.Quest
	if err := c.do(ctx, http.MethodPatch, "/api/quests/"+questID, patch, &quest, true); err != nil {
		return nil, mapQuestError(err)
	}
	return &quest, nil
}

// DeleteQuest removes a quest.
func (c *Client) DeleteQuest(ctx context.Context, questID string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/quests/"+questID, nil, nil, true); err != nil {
		return mapQuestError(err)
	}
	return nil
}

// AddObjective appends an objective and returns the updated quest.
func (c *Client) AddObjective(ctx context.Context, questID, title string) (*core.Quest, error) {
	var quest core.Quest
	err := c.do(ctx, http.MethodPost, "/api/quests/"+questID+"/objectives",
		map[string]string{"title": title}, &quest, true)
	if err != nil {
		return nil, mapQuestError(err)
	}
	return &quest, nil
}

// CompleteObjective marks an objective done and returns the updated quest.
// Completing the last open objective completes the quest.
func (c *Client) CompleteObjective(ctx context.Context, questID, objectiveID string) (*core.Quest, error) {
	var quest core.Quest
	err := c.do(ctx, http.MethodPost,
		"/api/quests/"+questID+"/objectives/"+objectiveID+"/complete", nil, &quest, true)
	if err != nil {
		return nil, mapQuestError(err)
	}
	return &quest, nil
}

// RemoveObjective deletes an objective and returns the updated quest.
func (c *Client) RemoveObjective(ctx context.Context, questID, objectiveID string) (*core.Quest, error) {
	var quest core.Quest
	err := c.do(ctx, http.MethodDelete,
		"/api/quests/"+questID+"/objectives/"+objectiveID, nil, &quest, true)
	if err != nil {
		return nil, mapQuestError(err)
	}
	return &quest, nil
}

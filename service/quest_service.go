package service

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/questline/questline/core"
	"github.com/questline/questline/internal/logutil"
	"github.com/questline/questline/ports"
)

// QuestService implements the tenant-scoped quest operations. Every call is
// bound to the owner the transport layer authenticated; ids from other
// owners behave exactly like unknown ids.
type QuestService struct {
	repo     ports.QuestRepository
	eventPub ports.EventPublisher

	now func() time.Time
}

// NewQuestService creates a new quest service.
func NewQuestService(repo ports.QuestRepository, eventPub ports.EventPublisher) *QuestService {
	return &QuestService{
		repo:     repo,
		eventPub: eventPub,
		now:      time.Now,
	}
}

// QuestUpdate carries the modifiable quest fields. Nil fields are left
// untouched.
type QuestUpdate struct {
	Title       *string
	Description *string
	Status      *core.QuestStatus
}

// CreateQuest stores a new active quest for owner, with one open objective
// per given title.
func (s *QuestService) CreateQuest(ctx context.Context, owner, title, description string, objectiveTitles []string) (*core.Quest, error) {
	now := s.now().UTC()
	quest := &core.Quest{
		ID:          ulid.Make().String(),
		Owner:       owner,
		Title:       title,
		Description: description,
		Status:      core.QuestStatusActive,
		Objectives:  make([]core.Objective, 0, len(objectiveTitles)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, objTitle := range objectiveTitles {
		quest.Objectives = append(quest.Objectives, core.Objective{
			ID:    ulid.Make().String(),
			Title: objTitle,
		})
	}

	if err := s.repo.Create(ctx, quest); err != nil {
		return nil, err
	}

	if err := s.eventPub.PublishQuestCreated(ctx, quest); err != nil {
		logutil.GetOrDefault(ctx).Warn().Err(err).Msg("failed to publish quest event")
	}
	return quest, nil
}

// GetQuest returns owner's quest with the given id.
func (s *QuestService) GetQuest(ctx context.Context, owner, id string) (*core.Quest, error) {
	return s.repo.Get(ctx, owner, id)
}

// ListQuests returns all of owner's quests, newest first.
func (s *QuestService) ListQuests(ctx context.Context, owner string) ([]*core.Quest, error) {
	return s.repo.List(ctx, owner)
}

// UpdateQuest applies the non-nil fields of update to owner's quest.
func (s *QuestService) UpdateQuest(ctx context.Context, owner, id string, update QuestUpdate) (*core.Quest, error) {
	quest, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		quest.Title = *update.Title
	}
	if update.Description != nil {
		quest.Description = *update.Description
	}
	if update.Status != nil {
		if !update.Status.Valid() {
			return nil, core.ErrInvalidStatus
		}
		quest.Status = *update.Status
	}
	quest.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, quest); err != nil {
		return nil, err
	}

	if err := s.eventPub.PublishQuestUpdated(ctx, quest); err != nil {
		logutil.GetOrDefault(ctx).Warn().Err(err).Msg("failed to publish quest event")
	}
	return quest, nil
}

// DeleteQuest removes owner's quest with the given id.
func (s *QuestService) DeleteQuest(ctx context.Context, owner, id string) error {
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return err
	}

	if err := s.eventPub.PublishQuestDeleted(ctx, owner, id); err != nil {
		logutil.GetOrDefault(ctx).Warn().Err(err).Msg("failed to publish quest event")
	}
	return nil
}

// AddObjective appends a new open objective to owner's quest. A completed
// quest drops back to active, since it now has an open objective again.
func (s *QuestService) AddObjective(ctx context.Context, owner, questID, title string) (*core.Quest, error) {
	quest, err := s.repo.Get(ctx, owner, questID)
	if err != nil {
		return nil, err
	}

	quest.Objectives = append(quest.Objectives, core.Objective{
		ID:    ulid.Make().String(),
		Title: title,
	})
	s.reconcileStatus(quest)
	quest.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, quest); err != nil {
		return nil, err
	}

	if err := s.eventPub.PublishQuestUpdated(ctx, quest); err != nil {
		logutil.GetOrDefault(ctx).Warn().Err(err).Msg("failed to publish quest event")
	}
	return quest, nil
}

// CompleteObjective marks one objective done. Completing the last open
// objective moves the quest to completed. Re-completing a done objective
// changes nothing.
func (s *QuestService) CompleteObjective(ctx context.Context, owner, questID, objectiveID string) (*core.Quest, error) {
	quest, err := s.repo.Get(ctx, owner, questID)
	if err != nil {
		return nil, err
	}

	objective := quest.FindObjective(objectiveID)
	if objective == nil {
		return nil, core.ErrObjectiveNotFound
	}
	if objective.Done {
		return quest, nil
	}

	now := s.now().UTC()
	objective.Done = true
	objective.CompletedAt = &now
	s.reconcileStatus(quest)
	quest.UpdatedAt = now

	if err := s.repo.Update(ctx, quest); err != nil {
		return nil, err
	}

	if err := s.eventPub.PublishObjectiveCompleted(ctx, quest, objectiveID); err != nil {
		logutil.GetOrDefault(ctx).Warn().Err(err).Msg("failed to publish quest event")
	}
	return quest, nil
}

// RemoveObjective deletes one objective from owner's quest. Removing the
// last open objective can complete the quest.
func (s *QuestService) RemoveObjective(ctx context.Context, owner, questID, objectiveID string) (*core.Quest, error) {
	quest, err := s.repo.Get(ctx, owner, questID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range quest.Objectives {
		if quest.Objectives[i].ID == objectiveID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, core.ErrObjectiveNotFound
	}

	quest.Objectives = append(quest.Objectives[:idx], quest.Objectives[idx+1:]...)
	s.reconcileStatus(quest)
	quest.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, quest); err != nil {
		return nil, err
	}

	if err := s.eventPub.PublishQuestUpdated(ctx, quest); err != nil {
		logutil.GetOrDefault(ctx).Warn().Err(err).Msg("failed to publish quest event")
	}
	return quest, nil
}

// reconcileStatus keeps the lifecycle status in step with the objectives
// after a mutation. Archived quests stay archived.
func (s *QuestService) reconcileStatus(quest *core.Quest) {
	if quest.Status == core.QuestStatusArchived {
		return
	}
	if quest.AllObjectivesDone() {
		quest.Status = core.QuestStatusCompleted
	} else {
		quest.Status = core.QuestStatusActive
	}
}

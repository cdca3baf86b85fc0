package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline/questline/core"
)

// fakeQuestRepo keeps quests in a slice, scoping every operation by owner
// the way the postgres repository does.
type fakeQuestRepo struct {
	mu     sync.Mutex
	quests []*core.Quest
}

func (r *fakeQuestRepo) Create(ctx context.Context, quest *core.Quest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.quests {
		if q.ID == quest.ID {
			return core.ErrQuestExists
		}
	}
	r.quests = append(r.quests, quest)
	return nil
}

func (r *fakeQuestRepo) Get(ctx context.Context, owner, id string) (*core.Quest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.quests {
		if q.Owner == owner && q.ID == id {
			return q, nil
		}
	}
	return nil, core.ErrQuestNotFound
}

func (r *fakeQuestRepo) List(ctx context.Context, owner string) ([]*core.Quest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*core.Quest
	for _, q := range r.quests {
		if q.Owner == owner {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeQuestRepo) Update(ctx context.Context, quest *core.Quest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, q := range r.quests {
		if q.Owner == quest.Owner && q.ID == quest.ID {
			r.quests[i] = quest
			return nil
		}
	}
	return core.ErrQuestNotFound
}

func (r *fakeQuestRepo) Delete(ctx context.Context, owner, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, q := range r.quests {
		if q.Owner == owner && q.ID == id {
			r.quests = append(r.quests[:i], r.quests[i+1:]...)
			return nil
		}
	}
	return core.ErrQuestNotFound
}

type questEnv struct {
	repo   *fakeQuestRepo
	events *fakePublisher
	svc    *QuestService
	clock  time.Time
}

func newQuestEnv(t *testing.T) *questEnv {
	t.Helper()
	env := &questEnv{
		repo:   &fakeQuestRepo{},
		events: &fakePublisher{},
		clock:  time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
	env.svc = NewQuestService(env.repo, env.events)
	env.svc.now = func() time.Time { return env.clock }
	return env
}

func TestCreateQuest(t *testing.T) {
	ctx := context.Background()
	env := newQuestEnv(t)

	quest, err := env.svc.CreateQuest(ctx, "mara", "Chart the sunken archive", "Before the tide returns.",
		[]string{"Find the entrance", "Recover the plates"})
	require.NoError(t, err)

	assert.Len(t, quest.ID, 26, "quest ids are ULIDs")
	assert.Equal(t, "mara", quest.Owner)
	assert.Equal(t, core.QuestStatusActive, quest.Status)
	require.Len(t, quest.Objectives, 2)
	for _, obj := range quest.Objectives {
		assert.Len(t, obj.ID, 26)
		assert.False(t, obj.Done)
		assert.Nil(t, obj.CompletedAt)
	}

	stored, err := env.repo.Get(ctx, "mara", quest.ID)
	require.NoError(t, err)
	assert.Equal(t, quest, stored)
	assert.Equal(t, []string{quest.ID}, env.events.created)
}

func TestCreateQuestWithoutObjectives(t *testing.T) {
	env := newQuestEnv(t)

	quest, err := env.svc.CreateQuest(context.Background(), "mara", "Solo errand", "", nil)
	require.NoError(t, err)
	assert.Empty(t, quest.Objectives)
	assert.Equal(t, core.QuestStatusActive, quest.Status, "a quest with no objectives never auto-completes")
}

func TestGetQuestTenancy(t *testing.T) {
	ctx := context.Background()
	env := newQuestEnv(t)

	quest, err := env.svc.CreateQuest(ctx, "mara", "Private quest", "", nil)
	require.NoError(t, err)

	_, err = env.svc.GetQuest(ctx, "rival", quest.ID)
	assert.ErrorIs(t, err, core.ErrQuestNotFound, "a foreign quest looks exactly like a missing one")

	got, err := env.svc.GetQuest(ctx, "mara", quest.ID)
	require.NoError(t, err)
	assert.Equal(t, quest.ID, got.ID)
}

func TestListQuestsNewestFirst(t *testing.T) {
	ctx := context.Background()
	env := newQuestEnv(t)

	first, err := env.svc.CreateQuest(ctx, "mara", "First", "", nil)
	require.NoError(t, err)
	env.clock = env.clock.Add(time.Hour)
	second, err := env.svc.CreateQuest(ctx, "mara", "Second", "", nil)
	require.NoError(t, err)
	_, err = env.svc.CreateQuest(ctx, "rival", "Unrelated", "", nil)
	require.NoError(t, err)

	quests, err := env.svc.ListQuests(ctx, "mara")
	require.NoError(t, err)
	require.Len(t, quests, 2)
	assert.Equal(t, second.ID, quests[0].ID)
	assert.Equal(t, first.ID, quests[1].ID)
}

func TestUpdateQuestPartial(t *testing.T) {
	ctx := context.Background()
	env := newQuestEnv(t)

	quest, err := env.svc.CreateQuest(ctx, "mara", "Old title", "Keep me.", nil)
	require.NoError(t, err)

	env.clock = env.clock.Add(time.Minute)
	newTitle := "New title"
	updated, err := env.svc.UpdateQuest(ctx, "mara", quest.ID, QuestUpdate{Title: &newTitle})
	require.NoError(t, err)

	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, "Keep me.", updated.Description, "nil fields stay untouched")
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
	assert.Equal(t, []string{quest.ID}, env.events.updated)
}

func TestUpdateQuestInvalidStatus(t *testing.T) {
	ctx := context.Background()
	env := newQuestEnv(t)

	quest, err := env.svc.CreateQuest(ctx, "mara", "Quest", "", nil)
	require.NoError(t, err)

	bogus := core.QuestStatus("paused")
	_, err = env.svc.UpdateQuest(ctx, "mara", quest.ID, QuestUpdate{Status: &bogus})
	assert.ErrorIs(t, err, core.ErrInvalidStatus)
}

func TestUpdateQuestMissing(t *testing.T) {
	env := newQuestEnv(t)

	title := "New title"
	_, err := env.svc.UpdateQuest(context.Background(), "mara", "no-such-id", QuestUpdate{Title: &title})
	assert.ErrorIs(t, err, core.ErrQuestNotFound)
}

func TestDeleteQuest(t *testing.T) {
	ctx := context.Background()
	env := newQuestEnv(t)

	quest, err := env.svc.CreateQuest(ctx, "mara", "Doomed", "", nil)
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteQuest(ctx, "mara", quest.ID))
	assert.Equal(t, []string{quest.ID}, env.events.deleted)

	_, err = env.svc.GetQuest(ctx, "mara", quest.ID)
	assert.ErrorIs(t, err, core.ErrQuestNotFound)

	err = env.svc.DeleteQuest(ctx, "mara", quest.ID)
	assert.ErrorIs(t, err, core.ErrQuestNotFound)
}

func TestCompleteObjectiveProgression(t *testing.T) {
	ctx := context.Background()
	env := newQuestEnv(t)

	quest, err := env.svc.CreateQuest(ctx, "mara", "Two-parter", "",
		[]string{"Part one", "Part two"})
	require.NoError(t, err)

	env.clock = env.clock.Add(time.Minute)
	quest, err = env.svc.CompleteObjective(ctx, "mara", quest.ID, quest.Objectives[0].ID)
	require.NoError(t, err)
	assert.Equal(t, core.QuestStatusActive, quest.Status, "one objective still open")
	assert.True(t, quest.Objectives[0].Done)
	require.NotNil(t, quest.Objectives[0].CompletedAt)
	assert.Equal(t, env.clock, *quest.Objectives[0].CompletedAt)

	quest, err = env.svc.CompleteObjective(ctx, "mara", quest.ID, quest.Objectives[1].ID)
	require.NoError(t, err)
	assert.Equal(t, core.QuestStatusCompleted, quest.Status, "finishing the last objective completes the quest")

	assert.Equal(t, []string{quest.Objectives[0].ID, quest.Objectives[1].ID}, env.events.completed)
}

func TestCompleteObjectiveIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newQuestEnv(t)

	quest, err := env.svc.CreateQuest(ctx, "mara", "Quest", "", []string{"Only step"})
	require.NoError(t, err)
	objectiveID := quest.Objectives[0].ID

	_, err = env.svc.CompleteObjective(ctx, "mara", quest.ID, objectiveID)
	require.NoError(t, err)
	first := env.events.completed

	again, err := env.svc.CompleteObjective(ctx, "mara", quest.ID, objectiveID)
	require.NoError(t, err)
	assert.True(t, again.Objectives[0].Done)
	assert.Equal(t, first, env.events.completed, "re-completing publishes nothing")
}

func TestCompleteObjectiveUnknown(t *testing.T) {
	ctx := context.Background()
	env := newQuestEnv(t)

	quest, err := env.svc.CreateQuest(ctx, "mara", "Quest", "", []string{"Step"})
	require.NoError(t, err)

	_, err = env.svc.CompleteObjective(ctx, "mara", quest.ID, "no-such-objective")
	assert.ErrorIs(t, err, core.ErrObjectiveNotFound)
}

func TestAddObjectiveReopensCompletedQuest(t *testing.T) {
	ctx := context.Background()
	env := newQuestEnv(t)

	quest, err := env.svc.CreateQuest(ctx, "mara", "Quest", "", []string{"Step"})
	require.NoError(t, err)

	quest, err = env.svc.CompleteObjective(ctx, "mara", quest.ID, quest.Objectives[0].ID)
	require.NoError(t, err)
	require.Equal(t, core.QuestStatusCompleted, quest.Status)

	quest, err = env.svc.AddObjective(ctx, "mara", quest.ID, "One more thing")
	require.NoError(t, err)
	assert.Equal(t, core.QuestStatusActive, quest.Status, "an open objective reopens the quest")
	require.Len(t, quest.Objectives, 2)
	assert.False(t, quest.Objectives[1].Done)
}

func TestRemoveObjectiveCompletesQuest(t *testing.T) {
	ctx := context.Background()
	env := newQuestEnv(t)

	quest, err := env.svc.CreateQuest(ctx, "mara", "Quest", "", []string{"Done step", "Abandoned step"})
	require.NoError(t, err)

	quest, err = env.svc.CompleteObjective(ctx, "mara", quest.ID, quest.Objectives[0].ID)
	require.NoError(t, err)
	require.Equal(t, core.QuestStatusActive, quest.Status)

	quest, err = env.svc.RemoveObjective(ctx, "mara", quest.ID, quest.Objectives[1].ID)
	require.NoError(t, err)
	assert.Equal(t, core.QuestStatusCompleted, quest.Status, "dropping the last open objective completes the quest")
	require.Len(t, quest.Objectives, 1)
}

func TestRemoveObjectiveUnknown(t *testing.T) {
	ctx := context.Background()
	env := newQuestEnv(t)

	quest, err := env.svc.CreateQuest(ctx, "mara", "Quest", "", []string{"Step"})
	require.NoError(t, err)

	_, err = env.svc.RemoveObjective(ctx, "mara", quest.ID, "no-such-objective")
	assert.ErrorIs(t, err, core.ErrObjectiveNotFound)
}

func TestArchivedQuestStaysArchived(t *testing.T) {
	ctx := context.Background()
	env := newQuestEnv(t)

	quest, err := env.svc.CreateQuest(ctx, "mara", "Quest", "", []string{"Step"})
	require.NoError(t, err)

	archived := core.QuestStatusArchived
	quest, err = env.svc.UpdateQuest(ctx, "mara", quest.ID, QuestUpdate{Status: &archived})
	require.NoError(t, err)

	quest, err = env.svc.CompleteObjective(ctx, "mara", quest.ID, quest.Objectives[0].ID)
	require.NoError(t, err)
	assert.Equal(t, core.QuestStatusArchived, quest.Status, "objective changes never resurrect an archived quest")
}

func TestQuestMutationsSurvivePublishFailure(t *testing.T) {
	ctx := context.Background()
	env := newQuestEnv(t)
	env.events.err = errors.New("broker down")

	quest, err := env.svc.CreateQuest(ctx, "mara", "Quest", "", nil)
	require.NoError(t, err, "the committed write wins; fan-out is best effort")

	stored, err := env.repo.Get(ctx, "mara", quest.ID)
	require.NoError(t, err)
	assert.Equal(t, quest.ID, stored.ID)
}

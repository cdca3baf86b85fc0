// Package events implements the EventPublisher port on a Watermill message
// publisher. In production the publisher is backed by Redis Streams; tests
// use Watermill's in-process gochannel transport.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/questline/questline/core"
	"github.com/questline/questline/ports"
)

// Topics carried on the event stream, one per event kind.
const (
	TopicLogout             = "questline.auth.logout"
	TopicQuestCreated       = "questline.quest.created"
	TopicQuestUpdated       = "questline.quest.updated"
	TopicQuestDeleted       = "questline.quest.deleted"
	TopicObjectiveCompleted = "questline.objective.completed"
)

// LogoutEvent announces an invalidated session token. The token travels as a
// SHA-256 fingerprint so consumers can correlate without holding the
// credential.
type LogoutEvent struct {
	Username         string `json:"username"`
	TokenFingerprint string `json:"token_fingerprint"`
}

// QuestEvent carries the full quest document after a create or update.
type QuestEvent struct {
	Quest *core.Quest `json:"quest"`
}

// QuestDeletedEvent carries only identifiers; the document is gone.
type QuestDeletedEvent struct {
	Owner   string `json:"owner"`
	QuestID string `json:"quest_id"`
}

// ObjectiveCompletedEvent announces a single objective ticking over.
// QuestDone is set when it was the last open objective.
type ObjectiveCompletedEvent struct {
	Owner       string `json:"owner"`
	QuestID     string `json:"quest_id"`
	ObjectiveID string `json:"objective_id"`
	QuestDone   bool   `json:"quest_done"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogout publishes a logout event.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, username, tokenFingerprint string) error {
	return p.publish(ctx, TopicLogout, LogoutEvent{
		Username:         username,
		TokenFingerprint: tokenFingerprint,
	})
}

// PublishQuestCreated publishes the freshly created quest document.
func (p *WatermillPublisher) PublishQuestCreated(ctx context.Context, quest *core.Quest) error {
	return p.publish(ctx, TopicQuestCreated, QuestEvent{Quest: quest})
}

// PublishQuestUpdated publishes the quest document after an update.
func (p *WatermillPublisher) PublishQuestUpdated(ctx context.Context, quest *core.Quest) error {
	return p.publish(ctx, TopicQuestUpdated, QuestEvent{Quest: quest})
}

// PublishQuestDeleted publishes a quest deletion.
func (p *WatermillPublisher) PublishQuestDeleted(ctx context.Context, owner, questID string) error {
	return p.publish(ctx, TopicQuestDeleted, QuestDeletedEvent{
		Owner:   owner,
		QuestID: questID,
	})
}

// PublishObjectiveCompleted publishes an objective completion.
func (p *WatermillPublisher) PublishObjectiveCompleted(ctx context.Context, quest *core.Quest, objectiveID string) error {
	return p.publish(ctx, TopicObjectiveCompleted, ObjectiveCompletedEvent{
		Owner:       quest.Owner,
		QuestID:     quest.ID,
		ObjectiveID: objectiveID,
		QuestDone:   quest.AllObjectivesDone(),
	})
}

func (p *WatermillPublisher) publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

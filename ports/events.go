package ports

import (
	"context"

	"github.com/questline/questline/core"
)

// EventPublisher fans out state changes to other instances and interested
// consumers. Publishing is best-effort from the caller's perspective: the
// store mutation that triggered the event has already committed.
type EventPublisher interface {
	// PublishLogout announces that a session token was invalidated. The token
	// travels as a fingerprint, never as the credential itself.
	PublishLogout(ctx context.Context, username, tokenFingerprint string) error

	PublishQuestCreated(ctx context.Context, quest *core.Quest) error
	PublishQuestUpdated(ctx context.Context, quest *core.Quest) error
	PublishQuestDeleted(ctx context.Context, owner, questID string) error
	PublishObjectiveCompleted(ctx context.Context, quest *core.Quest, objectiveID string) error
}

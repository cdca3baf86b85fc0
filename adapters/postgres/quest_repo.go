package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/questline/questline/core"
	"github.com/questline/questline/ports"
)

// QuestRepository is the PostgreSQL implementation of the quest document
// store. Objectives are kept inside the quest row as a JSONB document, so a
// quest is always read and written as one unit.
type QuestRepository struct {
	pool pool
}

// NewQuestRepository creates a new quest repository over the given pool.
func NewQuestRepository(p pool) *QuestRepository {
	return &QuestRepository{pool: p}
}

// Create inserts a new quest document.
func (r *QuestRepository) Create(ctx context.Context, quest *core.Quest) error {
	objectives, err := json.Marshal(quest.Objectives)
	if err != nil {
		return fmt.Errorf("failed to marshal objectives: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO quests (id, owner, title, description, status, objectives, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		quest.ID, quest.Owner, quest.Title, quest.Description,
		string(quest.Status), objectives, quest.CreatedAt, quest.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return core.ErrQuestExists
		}
		return fmt.Errorf("failed to insert quest: %w", err)
	}
	return nil
}

// Get returns the quest with the given id owned by owner, or
// core.ErrQuestNotFound.
func (r *QuestRepository) Get(ctx context.Context, owner, id string) (*core.Quest, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, owner, title, description, status, objectives, created_at, updated_at
		 FROM quests WHERE owner = $1 AND id = $2`,
		owner, id)

	quest, err := scanQuest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrQuestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quest: %w", err)
	}
	return quest, nil
}

// List returns all quests owned by owner, newest first.
func (r *QuestRepository) List(ctx context.Context, owner string) ([]*core.Quest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner, title, description, status, objectives, created_at, updated_at
		 FROM quests WHERE owner = $1 ORDER BY created_at DESC`,
		owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	defer rows.Close()

	var quests []*core.Quest
	for rows.Next() {
		quest, err := scanQuest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quest row: %w", err)
		}
		quests = append(quests, quest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quests: %w", err)
	}
	return quests, nil
}

// Update replaces the stored document for (quest.Owner, quest.ID).
func (r *QuestRepository) Update(ctx context.Context, quest *core.Quest) error {
	objectives, err := json.Marshal(quest.Objectives)
	if err != nil {
		return fmt.Errorf("failed to marshal objectives: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE quests SET title = $3, description = $4, status = $5, objectives = $6, updated_at = $7
		 WHERE owner = $1 AND id = $2`,
		quest.Owner, quest.ID, quest.Title, quest.Description,
		string(quest.Status), objectives, quest.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update quest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrQuestNotFound
	}
	return nil
}

// Delete removes the quest owned by owner.
func (r *QuestRepository) Delete(ctx context.Context, owner, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM quests WHERE owner = $1 AND id = $2`,
		owner, id)
	if err != nil {
		return fmt.Errorf("failed to delete quest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrQuestNotFound
	}
	return nil
}

// scanQuest scans one quest row. Callers handle pgx.ErrNoRows.
func scanQuest(row pgx.Row) (*core.Quest, error) {
	var (
		quest      core.Quest
		status     string
		objectives []byte
	)
	err := row.Scan(&quest.ID, &quest.Owner, &quest.Title, &quest.Description,
		&status, &objectives, &quest.CreatedAt, &quest.UpdatedAt)
	if err != nil {
		return nil, err
	}

	quest.Status = core.QuestStatus(status)
	if err := json.Unmarshal(objectives, &quest.Objectives); err != nil {
		return nil, fmt.Errorf("failed to unmarshal objectives: %w", err)
	}
	return &quest, nil
}

var _ ports.QuestRepository = (*QuestRepository)(nil)

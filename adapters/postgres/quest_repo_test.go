package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline/questline/core"
)

func testQuest(t *testing.T) (*core.Quest, []byte) {
	t.Helper()
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	quest := &core.Quest{
		ID:          "01HX5ZYKBABCDEFGHJKMNPQRST",
		Owner:       "mara",
		Title:       "Chart the sunken archive",
		Description: "Recover the index plates before the tide returns.",
		Status:      core.QuestStatusActive,
		Objectives: []core.Objective{
			{ID: "obj-1", Title: "Find the entrance", Done: false},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	objectives, err := json.Marshal(quest.Objectives)
	require.NoError(t, err)
	return quest, objectives
}

func TestQuestRepository_Create(t *testing.T) {
	quest, objectives := testQuest(t)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		errMsg    string
	}{
		{
			name: "successful insert",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO quests`).
					WithArgs(quest.ID, quest.Owner, quest.Title, quest.Description,
						"active", objectives, quest.CreatedAt, quest.UpdatedAt).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "duplicate id",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO quests`).
					WithArgs(quest.ID, quest.Owner, quest.Title, quest.Description,
						"active", objectives, quest.CreatedAt, quest.UpdatedAt).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: core.ErrQuestExists,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO quests`).
					WithArgs(quest.ID, quest.Owner, quest.Title, quest.Description,
						"active", objectives, quest.CreatedAt, quest.UpdatedAt).
					WillReturnError(errors.New("connection refused"))
			},
			errMsg: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewQuestRepository(mock)
			err = repo.Create(context.Background(), quest)

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			default:
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestQuestRepository_Get(t *testing.T) {
	quest, objectives := testQuest(t)
	questCols := []string{"id", "owner", "title", "description", "status", "objectives", "created_at", "updated_at"}

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      *core.Quest
		wantErr   error
	}{
		{
			name: "existing quest",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(questCols).
					AddRow(quest.ID, quest.Owner, quest.Title, quest.Description,
						"active", objectives, quest.CreatedAt, quest.UpdatedAt)
				mock.ExpectQuery(`SELECT (.+) FROM quests WHERE owner = \$1 AND id = \$2`).
					WithArgs("mara", quest.ID).
					WillReturnRows(rows)
			},
			want: quest,
		},
		{
			name: "missing quest",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT (.+) FROM quests WHERE owner = \$1 AND id = \$2`).
					WithArgs("mara", quest.ID).
					WillReturnRows(pgxmock.NewRows(questCols))
			},
			wantErr: core.ErrQuestNotFound,
		},
		{
			name: "quest owned by someone else",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				// The WHERE clause filters by owner, so a foreign quest scans
				// as an empty result.
				mock.ExpectQuery(`SELECT (.+) FROM quests WHERE owner = \$1 AND id = \$2`).
					WithArgs("mara", quest.ID).
					WillReturnRows(pgxmock.NewRows(questCols))
			},
			wantErr: core.ErrQuestNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewQuestRepository(mock)
			got, err := repo.Get(context.Background(), "mara", quest.ID)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestQuestRepository_List(t *testing.T) {
	quest, objectives := testQuest(t)
	questCols := []string{"id", "owner", "title", "description", "status", "objectives", "created_at", "updated_at"}

	t.Run("orders newest first", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		later := quest.CreatedAt.Add(time.Hour)
		rows := pgxmock.NewRows(questCols).
			AddRow("01HX60000000000000000000002", "mara", "Later quest", "",
				"active", []byte(`[]`), later, later).
			AddRow(quest.ID, quest.Owner, quest.Title, quest.Description,
				"active", objectives, quest.CreatedAt, quest.UpdatedAt)
		mock.ExpectQuery(`SELECT (.+) FROM quests WHERE owner = \$1 ORDER BY created_at DESC`).
			WithArgs("mara").
			WillReturnRows(rows)

		repo := NewQuestRepository(mock)
		got, err := repo.List(context.Background(), "mara")

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Later quest", got[0].Title)
		assert.Equal(t, quest.Title, got[1].Title)
		assert.Empty(t, got[0].Objectives)
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("no quests", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectQuery(`SELECT (.+) FROM quests WHERE owner = \$1 ORDER BY created_at DESC`).
			WithArgs("mara").
			WillReturnRows(pgxmock.NewRows(questCols))

		repo := NewQuestRepository(mock)
		got, err := repo.List(context.Background(), "mara")

		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("row iteration error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		rows := pgxmock.NewRows(questCols).
			AddRow(quest.ID, quest.Owner, quest.Title, quest.Description,
				"active", objectives, quest.CreatedAt, quest.UpdatedAt).
			RowError(0, errors.New("row iteration error"))
		mock.ExpectQuery(`SELECT (.+) FROM quests WHERE owner = \$1 ORDER BY created_at DESC`).
			WithArgs("mara").
			WillReturnRows(rows)

		repo := NewQuestRepository(mock)
		_, err = repo.List(context.Background(), "mara")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "row iteration error")
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("malformed objectives document", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		rows := pgxmock.NewRows(questCols).
			AddRow(quest.ID, quest.Owner, quest.Title, quest.Description,
				"active", []byte(`{not json`), quest.CreatedAt, quest.UpdatedAt)
		mock.ExpectQuery(`SELECT (.+) FROM quests WHERE owner = \$1 ORDER BY created_at DESC`).
			WithArgs("mara").
			WillReturnRows(rows)

		repo := NewQuestRepository(mock)
		_, err = repo.List(context.Background(), "mara")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unmarshal objectives")
	})
}

func TestQuestRepository_Update(t *testing.T) {
	quest, objectives := testQuest(t)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "successful update",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE quests SET`).
					WithArgs(quest.Owner, quest.ID, quest.Title, quest.Description,
						"active", objectives, quest.UpdatedAt).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "missing quest",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE quests SET`).
					WithArgs(quest.Owner, quest.ID, quest.Title, quest.Description,
						"active", objectives, quest.UpdatedAt).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			wantErr: core.ErrQuestNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewQuestRepository(mock)
			err = repo.Update(context.Background(), quest)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestQuestRepository_Delete(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "successful delete",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM quests WHERE owner = \$1 AND id = \$2`).
					WithArgs("mara", "quest-1").
					WillReturnResult(pgxmock.NewResult("DELETE", 1))
			},
		},
		{
			name: "missing quest",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM quests WHERE owner = \$1 AND id = \$2`).
					WithArgs("mara", "quest-1").
					WillReturnResult(pgxmock.NewResult("DELETE", 0))
			},
			wantErr: core.ErrQuestNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewQuestRepository(mock)
			err = repo.Delete(context.Background(), "mara", "quest-1")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

package store

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func unrevealedSession(id string, startedAt time.Time) *Session {
	return &Session{
		ID:           id,
		BoxCount:     100,
		GridColumns:  10,
		PayoffPerBox: decimal.NewFromInt(10),
		Outcome:      "unrevealed",
		Source:       SourceLive,
		StartedAt:    startedAt,
	}
}

func TestSaveAndGetSession(t *testing.T) {
	db := newTestDB(t)

	started := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, db.SaveSession(unrevealedSession("s1", started)))

	got, err := db.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, 100, got.BoxCount)
	assert.True(t, got.PayoffPerBox.Equal(decimal.NewFromInt(10)))
	assert.False(t, got.Revealed)
	assert.Nil(t, got.BombIndex)
	assert.Nil(t, got.Payoff)
	assert.Nil(t, got.RevealedAt)

	_, err = db.GetSession("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSessionAtReveal(t *testing.T) {
	db := newTestDB(t)

	started := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	sess := unrevealedSession("s1", started)
	require.NoError(t, db.SaveSession(sess))

	bomb := 42
	payoff := decimal.NewFromInt(300)
	revealedAt := started.Add(90 * time.Second)
	sess.OpenedCount = 30
	sess.Revealed = true
	sess.BombIndex = &bomb
	sess.Outcome = "safe"
	sess.Payoff = &payoff
	sess.RevealedAt = &revealedAt
	require.NoError(t, db.UpdateSession(sess))

	got, err := db.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, 30, got.OpenedCount)
	assert.True(t, got.Revealed)
	require.NotNil(t, got.BombIndex)
	assert.Equal(t, 42, *got.BombIndex)
	assert.Equal(t, "safe", got.Outcome)
	require.NotNil(t, got.Payoff)
	assert.True(t, got.Payoff.Equal(payoff))
	require.NotNil(t, got.RevealedAt)
	assert.True(t, got.RevealedAt.Equal(revealedAt))

	assert.ErrorIs(t, db.UpdateSession(unrevealedSession("missing", started)), ErrNotFound)
}

func TestListSessionsPagingAndFilter(t *testing.T) {
	db := newTestDB(t)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	outcomes := []string{"safe", "bombed", "safe", "unrevealed", "safe"}
	for i, outcome := range outcomes {
		sess := unrevealedSession(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		sess.Outcome = outcome
		require.NoError(t, db.SaveSession(sess))
	}

	list, err := db.ListSessions(SessionsQuery{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, list.TotalCount)
	assert.Equal(t, 3, list.TotalPages)
	require.Len(t, list.Sessions, 2)
	// Newest first.
	assert.Equal(t, "e", list.Sessions[0].ID)
	assert.Equal(t, "d", list.Sessions[1].ID)

	list, err = db.ListSessions(SessionsQuery{Outcome: "safe", Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, list.TotalCount)
	for _, sess := range list.Sessions {
		assert.Equal(t, "safe", sess.Outcome)
	}
}

func TestExportCSV(t *testing.T) {
	db := newTestDB(t)

	started := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, db.SaveSession(unrevealedSession("pending", started)))

	bomb := 7
	payoff := decimal.Zero
	revealedAt := started.Add(time.Minute)
	done := unrevealedSession("done", started.Add(30*time.Second))
	done.OpenedCount = 9
	done.Revealed = true
	done.BombIndex = &bomb
	done.Outcome = "bombed"
	done.Payoff = &payoff
	done.RevealedAt = &revealedAt
	require.NoError(t, db.SaveSession(done))

	var buf bytes.Buffer
	require.NoError(t, db.ExportCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "session_id,box_count"))
	// Oldest first: the pending row precedes the revealed one.
	assert.True(t, strings.HasPrefix(lines[1], "pending,"))
	assert.Contains(t, lines[2], "bombed")
	assert.Contains(t, lines[2], ",7,")
	// The pending row must not contain a bomb index.
	assert.NotContains(t, lines[1], ",7,")
}

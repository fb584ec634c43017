package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	want := Cursor{
		At: time.Date(2024, 6, 3, 4, 5, 6, 789, time.UTC),
		ID: uuid.MustParse("6f1c9a8e-3d1b-4c55-9a3e-0d6a3c2f1b7e"),
	}
	got, err := ParseCursor(EncodeCursor(want))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, want.At.Equal(got.At))
	assert.Equal(t, want.ID, got.ID)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"!!!", "bm8tc2VwYXJhdG9y", "eHx5"} {
		_, err := ParseCursor(raw)
		assert.Error(t, err, raw)
	}

	c, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestParseParams(t *testing.T) {
	p, err := ParseParams("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Nil(t, p.Cursor)

	p, err = ParseParams("500", "")
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, p.Limit)

	_, err = ParseParams("0", "")
	assert.Error(t, err)
	_, err = ParseParams("ten", "")
	assert.Error(t, err)
}

func TestPaginate(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]Cursor, 4)
	for i := range rows {
		rows[i] = Cursor{At: base.Add(-time.Duration(i) * time.Hour), ID: uuid.New()}
	}
	key := func(c Cursor) Cursor { return c }

	page := Paginate(rows, 3, key)
	require.Len(t, page.Items, 3)
	next, err := ParseCursor(page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, rows[2].ID, next.ID)

	last := Paginate(rows[:2], 3, key)
	assert.Len(t, last.Items, 2)
	assert.Empty(t, last.NextCursor)

	empty := Paginate[Cursor](nil, 3, key)
	assert.NotNil(t, empty.Items)
}

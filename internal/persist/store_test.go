package persist

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hayeah/goo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayeah/aicontent/internal/pathindex"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSelectionFile(t *testing.T) {
	assert := assert.New(t)

	a, err := SelectionFile("/state", "/some/root")
	require.NoError(t, err)
	b, err := SelectionFile("/state", "/some/root/")
	require.NoError(t, err)
	c, err := SelectionFile("/state", "/other/root")
	require.NoError(t, err)

	assert.Equal(a, b)
	assert.NotEqual(a, c)
	assert.True(strings.HasPrefix(filepath.Base(a), ".ai_content."))
	assert.True(strings.HasSuffix(a, ".json"))
	// sha256 hex
	assert.Len(strings.TrimSuffix(strings.TrimPrefix(filepath.Base(a), ".ai_content."), ".json"), 64)
}

func TestJSONStore_RoundTrip(t *testing.T) {
	assert := assert.New(t)
	s, err := NewJSONStore(t.TempDir(), "/project", discardLogger())
	require.NoError(t, err)

	paths, err := s.Load()
	assert.NoError(err)
	assert.Nil(paths, "missing file is an empty selection")

	want := []pathindex.Path{"a/x.txt", "b.txt"}
	require.NoError(t, s.Save(want))
	got, err := s.Load()
	assert.NoError(err)
	assert.Equal(want, got)

	data, err := os.ReadFile(s.Path)
	require.NoError(t, err)
	assert.JSONEq(`["a/x.txt","b.txt"]`, string(data))

	require.NoError(t, s.Save(nil))
	got, err = s.Load()
	assert.NoError(err)
	assert.Empty(got)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
	_, err = os.Stat(s.Path)
	assert.True(os.IsNotExist(err))
}

func TestJSONStore_TolerantRead(t *testing.T) {
	s, err := NewJSONStore(t.TempDir(), "/project", discardLogger())
	require.NoError(t, err)

	hand := "[\n  // kept for the review\n  \"a/x.txt\",\n  \"z/missing.txt\",\n]\n"
	require.NoError(t, os.WriteFile(s.Path, []byte(hand), 0644))

	got, err := s.Load()
	assert.NoError(t, err)
	assert.Equal(t, []pathindex.Path{"a/x.txt", "z/missing.txt"}, got)
}

func TestJSONStore_CorruptIsEmpty(t *testing.T) {
	s, err := NewJSONStore(t.TempDir(), "/project", discardLogger())
	require.NoError(t, err)

	for _, content := range []string{"{not json", `{"a": 1}`, `[1, 2]`} {
		require.NoError(t, os.WriteFile(s.Path, []byte(content), 0644))
		got, err := s.Load()
		assert.NoError(t, err, content)
		assert.Nil(t, got, content)
	}
}

func TestSQLStore_RoundTrip(t *testing.T) {
	assert := assert.New(t)
	db, err := OpenDB(t.TempDir())
	require.NoError(t, err)
	defer db.Close()
	migrator := goo.ProvideDBMigrator(db, discardLogger())
	if err := Migrate(migrator); err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	// applied migrations are recorded and not run again
	require.NoError(t, Migrate(migrator))
	var applied []string
	require.NoError(t, db.Select(&applied, "SELECT name FROM migrations"))
	assert.Equal([]string{"create_selections_table"}, applied)

	one, err := NewSQLStore(db, "/project/one", discardLogger())
	require.NoError(t, err)
	two, err := NewSQLStore(db, "/project/two", discardLogger())
	require.NoError(t, err)

	got, err := one.Load()
	assert.NoError(err)
	assert.Empty(got)

	require.NoError(t, one.Save([]pathindex.Path{"b.txt", "a/x.txt"}))
	require.NoError(t, two.Save([]pathindex.Path{"other.go"}))

	got, err = one.Load()
	assert.NoError(err)
	assert.Equal([]pathindex.Path{"b.txt", "a/x.txt"}, got)

	require.NoError(t, one.Save([]pathindex.Path{"c.txt"}))
	got, _ = one.Load()
	assert.Equal([]pathindex.Path{"c.txt"}, got)

	require.NoError(t, one.Clear())
	got, _ = one.Load()
	assert.Empty(got)

	got, _ = two.Load()
	assert.Equal([]pathindex.Path{"other.go"}, got)
}

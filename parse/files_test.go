package parse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoader_ThreeFileScenario(t *testing.T) {
	dir := t.TempDir()

	var first strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&first, "{\"id\": %d}\n", i)
	}
	var third strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&third, "{\"id\": %d, \"batch\": 2}\n", i)
	}

	paths := []string{
		writeFile(t, dir, "good.jsonl", first.String()),
		writeFile(t, dir, "garbage.txt", "this is not json\nnor is this\n"),
		writeFile(t, dir, "more.jsonl", third.String()),
	}

	loader := NewLoader()
	result, err := loader.LoadFiles(context.Background(), paths)
	require.NoError(t, err)

	assert.Len(t, result.Records, 150)
	require.Len(t, result.Files, 3)

	assert.Equal(t, 100, result.Files[0].RecordCount)
	assert.Equal(t, 0, result.Files[0].SkippedCount)

	assert.Equal(t, 0, result.Files[1].RecordCount)
	assert.Positive(t, result.Files[1].SkippedCount, "unparseable file must report skips")

	assert.Equal(t, 50, result.Files[2].RecordCount)
	assert.Equal(t, 0, result.Files[2].SkippedCount)
}

func TestLoader_RecordsInSourceOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.jsonl", "{\"seq\": 1}\n{\"seq\": 2}\n"),
		writeFile(t, dir, "b.jsonl", "{\"seq\": 3}\n"),
	}

	loader := NewLoader()
	result, err := loader.LoadFiles(context.Background(), paths)
	require.NoError(t, err)

	require.Len(t, result.Records, 3)
	for i, record := range result.Records {
		assert.Equal(t, float64(i+1), record["seq"])
	}
}

func TestLoader_ArrayFile(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "array.json", `[{"a": 1}, {"b": 2}, 99]`),
	}

	loader := NewLoader()
	result, err := loader.LoadFiles(context.Background(), paths)
	require.NoError(t, err)

	assert.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.Files[0].SkippedCount)
}

func TestLoader_ConcatenatedMultilineObjects(t *testing.T) {
	dir := t.TempDir()
	content := `{
  "title": "first"
}
{
  "title": "second"
}`
	paths := []string{writeFile(t, dir, "pretty.json", content)}

	loader := NewLoader()
	result, err := loader.LoadFiles(context.Background(), paths)
	require.NoError(t, err)

	assert.Len(t, result.Records, 2)
	assert.Equal(t, 0, result.Files[0].SkippedCount)
}

func TestLoader_DuplicateReporting(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.jsonl", "{\"id\": 1}\n{\"id\": 2}\n"),
		writeFile(t, dir, "b.jsonl", "{\"id\": 2}\n{\"id\": 3}\n"),
	}

	loader := NewLoader()
	result, err := loader.LoadFiles(context.Background(), paths)
	require.NoError(t, err)

	// Duplicates are reported per file but still imported.
	assert.Len(t, result.Records, 4)
	assert.Equal(t, 0, result.Files[0].DuplicateCount)
	assert.Equal(t, 1, result.Files[1].DuplicateCount)
}

func TestLoader_StreamsLargeFiles(t *testing.T) {
	dir := t.TempDir()

	var content strings.Builder
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(&content, "{\"id\": %d, \"body\": \"%s\"}\n", i, strings.Repeat("x", 100))
	}
	paths := []string{writeFile(t, dir, "big.jsonl", content.String())}

	var progressCalls int
	loader := NewLoader(
		WithEagerLimit(1024), // force the streaming path
		WithLoaderWindowSize(4096),
		WithLoaderProgress(func(read, total int64) { progressCalls++ }),
	)
	result, err := loader.LoadFiles(context.Background(), paths)
	require.NoError(t, err)

	assert.Len(t, result.Records, 2000)
	assert.Greater(t, progressCalls, 1)
}

func TestLoader_NoFiles(t *testing.T) {
	loader := NewLoader()
	_, err := loader.LoadFiles(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestLoader_MissingFile(t *testing.T) {
	loader := NewLoader()
	_, err := loader.LoadFiles(context.Background(), []string{"/does/not/exist.json"})
	assert.Error(t, err)
}

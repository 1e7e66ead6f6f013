package jsonstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestReadMissingKeyIsNotAnError(t *testing.T) {
	s := New(t.TempDir())

	var out record
	found, err := s.Read("nope", &out)
	require.NoError(t, err)
	require.False(t, found)
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := New(t.TempDir())

	in := record{Name: "pro", Count: 3}
	require.NoError(t, s.Write("rec", in))

	var out record
	found, err := s.Read("rec", &out)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, in, out)
}

func TestWriteCreatesDirAndRestrictsPerms(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s := New(dir)
	require.NoError(t, s.Write("rec", record{Name: "x"}))

	info, err := os.Stat(filepath.Join(dir, "rec.json"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteOverwrites(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Write("rec", record{Count: 1}))
	require.NoError(t, s.Write("rec", record{Count: 2}))

	var out record
	_, err := s.Read("rec", &out)
	require.NoError(t, err)
	require.Equal(t, 2, out.Count)
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Delete("nope"))
}

func TestReadCorruptRecordFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o600))

	s := New(dir)
	var out record
	_, err := s.Read("bad", &out)
	require.Error(t, err)
}

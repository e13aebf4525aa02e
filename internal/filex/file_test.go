package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsurePrivateDir_CreatesRelativeToCWD(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)

	got, err := EnsurePrivateDir("vault")
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	want := filepath.Join(cwd, "vault")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), fi.Mode().Perm()&0o700)
	}
}

func TestEnsurePrivateDir_NestedAndIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	p1, err := EnsurePrivateDir(dir)
	require.NoError(t, err)
	p2, err := EnsurePrivateDir(dir)
	require.NoError(t, err)
	require.Equal(t, p1, p2)
}

func TestEnsurePrivateDir_FileInTheWay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := EnsurePrivateDir(path)
	require.Error(t, err)
}

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_ValidRepo(t *testing.T) {
	dir := initTestRepo(t)

	repo, err := Open(dir)
	require.NoError(t, err)
	assert.NotNil(t, repo)
}

func TestOpen_Subdirectory(t *testing.T) {
	dir := initTestRepo(t)
	sub := filepath.Join(dir, "internal", "pkg")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	_, err := Open(sub)
	assert.NoError(t, err)
}

func TestOpen_NotARepo(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(dir)
	assert.ErrorIs(t, err, ErrNoGit)
}

func TestHead_Clean(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := Open(dir)
	require.NoError(t, err)

	rev, err := repo.Head()
	require.NoError(t, err)
	assert.Len(t, rev.Hash, 40)
	assert.Equal(t, "master", rev.Branch)
	assert.False(t, rev.Dirty)
	assert.Equal(t, rev.Hash[:12], rev.Stamp())
}

func TestHead_Dirty(t *testing.T) {
	dir := initTestRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() { /* modified */ }\n"), 0o644))

	stamp, err := Stamp(dir)
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{12}-dirty$`, stamp)
}

func TestHead_FollowsNewCommit(t *testing.T) {
	dir := initTestRepo(t)
	before, err := Stamp(dir)
	require.NoError(t, err)

	addFileAndCommit(t, dir, "util.go", "package main\n", "add util")

	after, err := Stamp(dir)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestHead_NoCommits(t *testing.T) {
	dir := t.TempDir()
	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	_, err = Stamp(dir)
	assert.ErrorIs(t, err, ErrNoCommits)
}

func TestRevision_Short(t *testing.T) {
	assert.Equal(t, "abc", Revision{Hash: "abc"}.Short())
	assert.Equal(t, "abc-dirty", Revision{Hash: "abc", Dirty: true}.Stamp())
}

// initTestRepo creates a temp dir with a git repo, an initial commit, and
// returns the directory path.
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	addFileAndCommit(t, dir, "main.go", "package main\n\nfunc main() {}\n", "initial commit")
	return dir
}

// addFileAndCommit adds a file and creates a commit with the given message.
func addFileAndCommit(t *testing.T, dir, name, content, msg string) {
	t.Helper()

	r, err := gogit.PlainOpen(dir)
	require.NoError(t, err)

	wt, err := r.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))

	_, err = wt.Add(name)
	require.NoError(t, err)

	_, err = wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@test.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
}

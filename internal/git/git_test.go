package git

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRepo wraps an in-memory repository with helpers for building histories.
type testRepo struct {
	t    *testing.T
	repo *gogit.Repository
	wt   *gogit.Worktree
	when time.Time
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()

	repo, err := gogit.Init(memory.NewStorage(), memfs.New())
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	return &testRepo{
		t:    t,
		repo: repo,
		wt:   wt,
		when: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *testRepo) signature() *object.Signature {
	r.when = r.when.Add(time.Hour)
	return &object.Signature{Name: "tester", Email: "tester@example.com", When: r.when}
}

// commit creates an empty commit. With no explicit parents the current HEAD
// is the parent, so successive calls build a linear chain.
func (r *testRepo) commit(msg string, parents ...plumbing.Hash) plumbing.Hash {
	r.t.Helper()

	hash, err := r.wt.Commit(msg, &gogit.CommitOptions{
		Author:            r.signature(),
		AllowEmptyCommits: true,
		Parents:           parents,
	})
	require.NoError(r.t, err)
	return hash
}

func (r *testRepo) tag(name string, target plumbing.Hash) {
	r.t.Helper()

	_, err := r.repo.CreateTag(name, target, nil)
	require.NoError(r.t, err)
}

func (r *testRepo) annotatedTag(name string, target plumbing.Hash) {
	r.t.Helper()

	_, err := r.repo.CreateTag(name, target, &gogit.CreateTagOptions{
		Tagger:  r.signature(),
		Message: "release " + name,
	})
	require.NoError(r.t, err)
}

func TestFindPreviousTag_LinearHistory(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	a := r.commit("a")
	r.commit("b")
	c := r.commit("c")
	r.tag("v1.0.0", a)
	r.tag("v2.0.0", c)

	previous, err := FindPreviousTag(r.repo, "v2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", previous)
}

func TestFindPreviousTag_NoPreviousTag(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.commit("a")
	b := r.commit("b")
	r.tag("v1.0.0", b)

	previous, err := FindPreviousTag(r.repo, "v1.0.0")
	require.NoError(t, err)
	assert.Empty(t, previous, "exhausted chain is a valid no-previous outcome")
}

func TestFindPreviousTag_TagNotFound(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	a := r.commit("a")
	r.tag("v1.0.0", a)

	_, err := FindPreviousTag(r.repo, "v9.9.9")

	var notFound *TagNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "v9.9.9", notFound.Tag)
}

func TestFindPreviousTag_FirstParentOnly(t *testing.T) {
	t.Parallel()

	// main:    a --- b --------- m (v2.0.0)
	//           \               /
	// feature:   `--- f (v1.5.0)
	//
	// v1.5.0 is reachable only through the merge's second parent, so the
	// first-parent walk must skip it and land on a's tag.
	r := newTestRepo(t)
	a := r.commit("a")
	b := r.commit("b", a)
	f := r.commit("f", a)
	m := r.commit("m", b, f)
	r.tag("v1.0.0", a)
	r.tag("v1.5.0", f)
	r.tag("v2.0.0", m)

	previous, err := FindPreviousTag(r.repo, "v2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", previous)
}

func TestFindPreviousTag_SiblingTagOnSameCommit(t *testing.T) {
	t.Parallel()

	// A second tag on the release commit itself is not a previous release.
	r := newTestRepo(t)
	a := r.commit("a")
	b := r.commit("b", a)
	r.tag("v1.0.0", a)
	r.tag("v2.0.0", b)
	r.tag("v2.0.0-hotfix", b)

	previous, err := FindPreviousTag(r.repo, "v2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", previous)
}

func TestFindPreviousTag_SharedCommitTieBreak(t *testing.T) {
	t.Parallel()

	// Two tags on the same ancestor: the lexicographically greatest wins,
	// regardless of creation order.
	r := newTestRepo(t)
	a := r.commit("a")
	b := r.commit("b", a)
	r.tag("v1.0.1", a)
	r.tag("v1.0.0", a)
	r.tag("v2.0.0", b)

	previous, err := FindPreviousTag(r.repo, "v2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "v1.0.1", previous)
}

func TestFindPreviousTag_AnnotatedTagsPeel(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	a := r.commit("a")
	b := r.commit("b", a)
	r.annotatedTag("v1.0.0", a)
	r.annotatedTag("v2.0.0", b)

	previous, err := FindPreviousTag(r.repo, "v2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", previous)
}

func TestCommitForTag(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	a := r.commit("a")
	b := r.commit("b", a)
	r.tag("light", a)
	r.annotatedTag("heavy", b)

	t.Run("lightweight tag", func(t *testing.T) {
		commit, err := CommitForTag(r.repo, "light")
		require.NoError(t, err)
		assert.Equal(t, a, commit.Hash)
	})

	t.Run("annotated tag peels to commit", func(t *testing.T) {
		commit, err := CommitForTag(r.repo, "heavy")
		require.NoError(t, err)
		assert.Equal(t, b, commit.Hash)
	})

	t.Run("missing tag", func(t *testing.T) {
		_, err := CommitForTag(r.repo, "absent")

		var notFound *TagNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "absent", notFound.Tag)
	})
}

func TestTagsForCommit(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	a := r.commit("a")
	b := r.commit("b", a)
	r.tag("v1.0.0", b)
	r.annotatedTag("latest", b)
	r.tag("elsewhere", a)

	tags, err := TagsForCommit(r.repo, headCommit(t, r.repo))
	require.NoError(t, err)
	assert.Equal(t, []string{"latest", "v1.0.0"}, tags)
}

func headCommit(t *testing.T, repo *gogit.Repository) *object.Commit {
	t.Helper()

	commit, err := Head(repo)
	require.NoError(t, err)
	return commit
}

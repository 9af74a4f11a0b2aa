// Package git resolves tags against a repository's history using the go-git
// library. Its main job is finding the closest tagged ancestor of a release
// tag, which hed uses to build "compare previous...current" links without the
// caller naming the previous release explicitly.
package git

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// TagNotFoundError is returned when a named tag does not exist in the
// repository.
type TagNotFoundError struct {
	Tag string
}

func (e *TagNotFoundError) Error() string {
	return fmt.Sprintf("tag %q not found", e.Tag)
}

// OpenRepo opens the git repository containing path, traversing up the
// directory tree to find the repository root.
func OpenRepo(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return repo, nil
}

// Head returns the commit HEAD points at.
func Head(repo *git.Repository) (*object.Commit, error) {
	ref, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("loading HEAD commit: %w", err)
	}
	return commit, nil
}

// CommitForTag returns the commit a tag ultimately points at, peeling
// annotated tags. Returns *TagNotFoundError when no such tag exists.
func CommitForTag(repo *git.Repository, name string) (*object.Commit, error) {
	ref, err := repo.Reference(plumbing.NewTagReferenceName(name), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, &TagNotFoundError{Tag: name}
		}
		return nil, fmt.Errorf("resolving tag %q: %w", name, err)
	}
	return peelToCommit(repo, ref.Hash())
}

// TagsForCommit returns the sorted names of every tag pointing at commit.
// Used to auto-detect the release tag from HEAD.
func TagsForCommit(repo *git.Repository, commit *object.Commit) ([]string, error) {
	targets, err := tagTargets(repo)
	if err != nil {
		return nil, err
	}

	var tags []string
	for name, hash := range targets {
		if hash == commit.Hash {
			tags = append(tags, name)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// FindPreviousTag returns the name of the closest tagged ancestor of tag,
// walking first-parent ancestry only. Tags reachable solely through a merge's
// second parent are never considered. An exhausted chain returns "" with a
// nil error; an unknown tag returns *TagNotFoundError.
//
// When several tags point at the same ancestor the lexicographically greatest
// name wins, independent of reference iteration order.
func FindPreviousTag(repo *git.Repository, tag string) (string, error) {
	start, err := CommitForTag(repo, tag)
	if err != nil {
		return "", err
	}

	targets, err := tagTargets(repo)
	if err != nil {
		return "", err
	}

	byCommit := make(map[plumbing.Hash]string, len(targets))
	for name, hash := range targets {
		if name == tag {
			continue
		}
		if prev, ok := byCommit[hash]; !ok || name > prev {
			byCommit[hash] = name
		}
	}

	// The start commit itself is excluded: a sibling tag on the same commit
	// is not a previous release.
	for commit := start; commit.NumParents() > 0; {
		parent, err := commit.Parent(0)
		if err != nil {
			return "", fmt.Errorf("walking ancestry of %q: %w", tag, err)
		}
		if name, ok := byCommit[parent.Hash]; ok {
			return name, nil
		}
		commit = parent
	}

	return "", nil
}

// tagTargets maps every tag name to the commit hash it peels to.
func tagTargets(repo *git.Repository) (map[string]plumbing.Hash, error) {
	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer iter.Close()

	targets := make(map[string]plumbing.Hash)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		commit, err := peelToCommit(repo, ref.Hash())
		if err != nil {
			return fmt.Errorf("peeling tag %q: %w", ref.Name().Short(), err)
		}
		targets[ref.Name().Short()] = commit.Hash
		return nil
	})
	if err != nil {
		return nil, err
	}
	return targets, nil
}

// peelToCommit follows annotated tag objects (including tag-to-tag chains)
// down to the commit they point at.
func peelToCommit(repo *git.Repository, hash plumbing.Hash) (*object.Commit, error) {
	for {
		tagObj, err := repo.TagObject(hash)
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("loading tag object %s: %w", hash, err)
		}
		hash = tagObj.Target
	}

	commit, err := repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("loading commit %s: %w", hash, err)
	}
	return commit, nil
}

// Package git reads diffs and history from a local repository through the
// git command line.
package git

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Commit represents a single git commit.
type Commit struct {
	Hash        string `json:"hash"`
	ShortHash   string `json:"shortHash"`
	Message     string `json:"message"`
	Author      string `json:"author"`
	AuthorEmail string `json:"authorEmail"`
	Date        string `json:"date"`
}

// Repo represents a git repository at a specific directory.
type Repo struct {
	Dir string
	// ContextLines is passed to git as --unified. Negative means git's default.
	ContextLines int

	logger *zap.Logger
}

// NewRepo creates a Repo pointing at the given directory.
func NewRepo(dir string, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{Dir: dir, ContextLines: -1, logger: logger}
}

// run executes git in the repo directory and returns raw stdout.
func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w\n%s", strings.Join(args, " "), err, stderr.String())
	}
	return string(out), nil
}

// git runs a git command and returns trimmed stdout.
func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	out, err := r.run(ctx, args...)
	return strings.TrimSpace(out), err
}

// MainBranch returns "main" or "master", whichever exists as a local branch.
func (r *Repo) MainBranch(ctx context.Context) (string, error) {
	for _, name := range []string{"main", "master"} {
		if _, err := r.git(ctx, "rev-parse", "--verify", "refs/heads/"+name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("neither 'main' nor 'master' branch found")
}

// MergeBase returns the merge-base commit hash between two refs.
func (r *Repo) MergeBase(ctx context.Context, ref1, ref2 string) (string, error) {
	if err := validateRefs(ref1, ref2); err != nil {
		return "", err
	}
	return r.git(ctx, "merge-base", ref1, ref2)
}

// validateRefs keeps user-supplied refs from being read as git options.
func validateRefs(refs ...string) error {
	for _, ref := range refs {
		if strings.HasPrefix(ref, "-") {
			return fmt.Errorf("invalid ref %q: must not start with '-'", ref)
		}
	}
	return nil
}

func (r *Repo) diffArgs(extra ...string) []string {
	args := []string{"diff", "--no-ext-diff", "--no-color"}
	if r.ContextLines >= 0 {
		args = append(args, "--unified="+strconv.Itoa(r.ContextLines))
	}
	return append(args, extra...)
}

// Diff returns unified diff text between two refs. If target is empty the
// base is compared against the working tree (staged and unstaged).
// The output is returned untrimmed since trailing context lines may be
// whitespace.
func (r *Repo) Diff(ctx context.Context, base, target string) (string, error) {
	if err := validateRefs(base, target); err != nil {
		return "", err
	}
	args := r.diffArgs(base)
	if target != "" {
		args = append(args, target)
	}
	out, err := r.run(ctx, args...)
	if err != nil {
		return "", err
	}
	r.logger.Debug("diff loaded",
		zap.String("base", base),
		zap.String("target", target),
		zap.Int("bytes", len(out)))
	return out, nil
}

// WorktreeDiff returns all uncommitted changes. In a repository without a
// HEAD commit it falls back to the staged changes, and to an empty diff
// when nothing is staged either.
func (r *Repo) WorktreeDiff(ctx context.Context) (string, error) {
	out, err := r.run(ctx, r.diffArgs("HEAD")...)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	r.logger.Debug("HEAD diff failed, trying staged changes", zap.String("dir", r.Dir), zap.Error(err))

	out, err = r.run(ctx, r.diffArgs("--cached")...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		r.logger.Warn("no diff available", zap.String("dir", r.Dir), zap.Error(err))
		return "", nil
	}
	return out, nil
}

// Commits returns the most recent n commits for the current branch.
func (r *Repo) Commits(ctx context.Context, n int) ([]Commit, error) {
	// Use a separator unlikely to appear in commit messages
	sep := "---COMMIT_SEP---"
	format := strings.Join([]string{"%H", "%h", "%s", "%an", "%ae", "%aI"}, sep)
	out, err := r.git(ctx, "log", "--format="+format, "-n", strconv.Itoa(n))
	if err != nil {
		return nil, err
	}
	return parseCommits(out, sep), nil
}

func parseCommits(out, sep string) []Commit {
	if out == "" {
		return nil
	}

	var commits []Commit
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, sep, 6)
		if len(parts) != 6 {
			continue
		}
		commits = append(commits, Commit{
			Hash:        parts[0],
			ShortHash:   parts[1],
			Message:     parts[2],
			Author:      parts[3],
			AuthorEmail: parts[4],
			Date:        parts[5],
		})
	}
	return commits
}

// Package publish commits the data directory and pushes it to the remote the
// static site is served from.
package publish

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"myxpicks/internal/config"
	apierrors "myxpicks/internal/errors"
)

// ErrNothingToCommit is returned when the data directory has no changes.
var ErrNothingToCommit = errors.New("nothing to commit")

// CommandRunner runs name with args in dir and returns the combined output.
type CommandRunner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// GitPublisher stages, commits and pushes the data directory.
type GitPublisher struct {
	repoDir string
	dataDir string
	remote  string
	branch  string
	run     CommandRunner
	logger  *slog.Logger
}

// Option configures a GitPublisher
type Option func(*GitPublisher)

// WithRunner replaces the command runner.
func WithRunner(run CommandRunner) Option {
	return func(p *GitPublisher) { p.run = run }
}

// NewGitPublisher creates a publisher for the repository at cfg.RepoDir, or
// at the paths' base directory when RepoDir is empty.
func NewGitPublisher(cfg config.PublishConfig, paths *config.Paths, logger *slog.Logger, opts ...Option) *GitPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	repo := cfg.RepoDir
	if repo == "" {
		repo = paths.BaseDir
	} else if !filepath.IsAbs(repo) {
		repo = filepath.Join(paths.BaseDir, repo)
	}

	dataDir := paths.DataDir
	if rel, err := filepath.Rel(repo, paths.DataDir); err == nil {
		dataDir = filepath.ToSlash(rel) + "/"
	}

	p := &GitPublisher{
		repoDir: repo,
		dataDir: dataDir,
		remote:  cfg.Remote,
		branch:  cfg.Branch,
		run:     ExecRunner,
		logger:  logger.With(slog.String("component", "publisher")),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CommitMessage is the commit message used for date.
func CommitMessage(date time.Time) string {
	return "update AI picks " + date.Format("2006-01-02")
}

// Publish runs git add, git commit and git push. It returns
// ErrNothingToCommit without pushing when the data directory is unchanged.
func (p *GitPublisher) Publish(ctx context.Context, date time.Time) error {
	steps := [][]string{
		{"add", p.dataDir},
		{"commit", "-m", CommitMessage(date)},
		{"push", p.remote, p.branch},
	}

	for _, args := range steps {
		output, err := p.run(ctx, p.repoDir, "git", args...)
		if err != nil {
			if args[0] == "commit" && strings.Contains(string(output), "nothing to commit") {
				p.logger.Info("No data changes to publish")
				return ErrNothingToCommit
			}
			p.logger.Error("Git command failed",
				slog.String("command", "git "+args[0]),
				slog.String("error", err.Error()),
				slog.String("output", strings.TrimSpace(string(output))))
			return apierrors.NewPublishError("git "+args[0]+" failed", err).
				WithContext("output", strings.TrimSpace(string(output)))
		}
		p.logger.Debug("Git command completed",
			slog.String("command", "git "+args[0]),
			slog.String("output", strings.TrimSpace(string(output))))
	}

	p.logger.Info("Data published",
		slog.String("remote", p.remote),
		slog.String("branch", p.branch))
	return nil
}

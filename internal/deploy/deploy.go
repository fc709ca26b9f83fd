// Package deploy publishes the generated output directory to a git remote.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/retry"
	"git.home.luguber.info/inful/sitegen/internal/xerrors"
)

// Deployer commits the output directory into a local repository rooted
// there and force-pushes it to the configured branch. The output dir gets
// its own history, detached from the site sources, the way Hexo-style
// deploys work.
type Deployer struct {
	OutputDir string
	Config    config.DeployConfig
	Logger    *slog.Logger

	// Retry governs push retries on transient remote failures. The zero
	// value means the default policy.
	Retry retry.Policy
}

// Deploy runs one deploy. Credentials come from the ambient git setup
// (ssh-agent, credential helpers); nothing is read from site config.
func (d *Deployer) Deploy(ctx context.Context) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if d.Config.Repo == "" {
		return xerrors.New(xerrors.CategoryConfig, xerrors.SeverityFatal, "deploy.repo is not configured")
	}
	if d.Config.Type != "" && d.Config.Type != "git" {
		return xerrors.New(xerrors.CategoryConfig, xerrors.SeverityFatal,
			fmt.Sprintf("unsupported deploy type %q", d.Config.Type))
	}

	repo, err := git.PlainOpen(d.OutputDir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(d.OutputDir, false)
	}
	if err != nil {
		return xerrors.Wrap(err, xerrors.CategoryDeploy, xerrors.SeverityFatal,
			"open deploy repository").WithContext("path", d.OutputDir)
	}

	if err := ensureRemote(repo, d.Config.Repo); err != nil {
		return err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return xerrors.Wrap(err, xerrors.CategoryDeploy, xerrors.SeverityFatal, "open worktree")
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return xerrors.Wrap(err, xerrors.CategoryDeploy, xerrors.SeverityFatal, "stage output")
	}

	message := fmt.Sprintf("%s: %s", d.Config.Message, time.Now().Format(time.RFC3339))
	commit, err := wt.Commit(message, &git.CommitOptions{
		AllowEmptyCommits: false,
		Author: &object.Signature{
			Name: "sitegen",
			When: time.Now(),
		},
	})
	if err != nil {
		if errors.Is(err, git.ErrEmptyCommit) {
			logger.Info("Nothing to deploy, output unchanged")
			return nil
		}
		return xerrors.Wrap(err, xerrors.CategoryDeploy, xerrors.SeverityFatal, "commit output")
	}
	logger.Info("Deploy commit created", slog.String("commit", commit.String()))

	head, err := repo.Head()
	if err != nil {
		return xerrors.Wrap(err, xerrors.CategoryDeploy, xerrors.SeverityFatal, "resolve HEAD")
	}

	refspec := gitconfig.RefSpec(fmt.Sprintf("+%s:refs/heads/%s", head.Name(), d.Config.Branch))
	if err := d.push(ctx, repo, refspec, logger); err != nil {
		return err
	}

	logger.Info("Deployed", slog.String("branch", d.Config.Branch), logfields.Path(d.OutputDir))
	return nil
}

// push force-pushes the deploy ref, retrying transient remote failures
// under the configured backoff policy.
func (d *Deployer) push(ctx context.Context, repo *git.Repository, refspec gitconfig.RefSpec, logger *slog.Logger) error {
	policy := d.Retry
	if policy.Validate() != nil {
		policy = retry.DefaultPolicy()
	}

	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := policy.Delay(attempt)
			logger.Warn("Push failed, retrying",
				slog.Int("attempt", attempt), slog.Duration("delay", delay), logfields.Error(lastErr))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := repo.PushContext(ctx, &git.PushOptions{
			RemoteName: "origin",
			RefSpecs:   []gitconfig.RefSpec{refspec},
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			logger.Info("Remote already up to date")
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		lastErr = err
	}

	return xerrors.WrapRetryable(lastErr, xerrors.CategoryDeploy, xerrors.SeverityError,
		"push to remote").WithContext("branch", d.Config.Branch)
}

// ensureRemote points origin at the configured URL, replacing a stale one.
func ensureRemote(repo *git.Repository, url string) error {
	remote, err := repo.Remote("origin")
	if err == nil {
		urls := remote.Config().URLs
		if len(urls) > 0 && urls[0] == url {
			return nil
		}
		if err := repo.DeleteRemote("origin"); err != nil {
			return xerrors.Wrap(err, xerrors.CategoryDeploy, xerrors.SeverityFatal, "replace origin remote")
		}
	} else if !errors.Is(err, git.ErrRemoteNotFound) {
		return xerrors.Wrap(err, xerrors.CategoryDeploy, xerrors.SeverityFatal, "inspect origin remote")
	}

	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{url}})
	if err != nil {
		return xerrors.Wrap(err, xerrors.CategoryDeploy, xerrors.SeverityFatal, "create origin remote")
	}
	return nil
}

package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/codelenshq/codelens/internal/models"
	"github.com/codelenshq/codelens/pkg/logger"
)

const (
	// maxBlobSize caps individual file downloads; larger files carry
	// little prompt value and blow the token budget anyway
	maxBlobSize = 512 * 1024

	// fetchConcurrency bounds parallel blob downloads per repository
	fetchConcurrency = 8
)

var githubURLPattern = regexp.MustCompile(`^https?://github\.com/([\w.-]+)/([\w.-]+?)(?:\.git)?/?$`)

// GitHubService fetches the file tree of a repository branch through the
// GitHub API.
type GitHubService struct{}

// NewGitHubService creates a new GitHub service
func NewGitHubService() *GitHubService {
	return &GitHubService{}
}

// ParseRepoURL extracts owner and repository name from a GitHub URL
func ParseRepoURL(url string) (owner, repo string, err error) {
	matches := githubURLPattern.FindStringSubmatch(strings.TrimSpace(url))
	if matches == nil {
		return "", "", models.NewValidationError("github_url", "Invalid GitHub repository URL")
	}
	return matches[1], matches[2], nil
}

// FetchRepository downloads all text files of a branch. An unreachable
// repository or branch surfaces as a ValidationError before any
// pipeline stage starts.
func (s *GitHubService) FetchRepository(ctx context.Context, url, branch, accessToken string) ([]models.ProjectFile, error) {
	owner, repo, err := ParseRepoURL(url)
	if err != nil {
		return nil, err
	}

	client := s.newClient(ctx, accessToken)

	ref, _, err := client.Git.GetRef(ctx, owner, repo, "heads/"+branch)
	if err != nil {
		logger.WithError(err).Warnf("GitHub ref lookup failed for %s/%s@%s", owner, repo, branch)
		return nil, models.NewValidationError("github_url", "Repository or branch not reachable")
	}

	tree, _, err := client.Git.GetTree(ctx, owner, repo, ref.GetObject().GetSHA(), true)
	if err != nil {
		return nil, models.NewValidationError("github_url", "Could not read repository tree")
	}

	var (
		mu    sync.Mutex
		files []models.ProjectFile
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(fetchConcurrency)

	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" || entry.GetSize() > maxBlobSize {
			continue
		}
		entry := entry
		group.Go(func() error {
			raw, _, err := client.Git.GetBlobRaw(groupCtx, owner, repo, entry.GetSHA())
			if err != nil {
				return fmt.Errorf("fetch blob %s: %w", entry.GetPath(), err)
			}
			mu.Lock()
			files = append(files, models.ProjectFile{
				Path:    entry.GetPath(),
				Content: string(raw),
			})
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, &models.StorageError{Op: "github fetch", Err: err}
	}

	logger.Infof("Fetched %d files from %s/%s@%s", len(files), owner, repo, branch)
	return files, nil
}

func (s *GitHubService) newClient(ctx context.Context, accessToken string) *github.Client {
	if accessToken == "" {
		return github.NewClient(nil)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	return github.NewClient(oauth2.NewClient(ctx, ts))
}

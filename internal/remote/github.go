package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/google/go-github/v66/github"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"tracker/internal/logger"
)

// GitHubConfig locates the data directory inside a repository.
type GitHubConfig struct {
	Token  string
	Owner  string
	Repo   string
	Branch string // empty means the repository default branch
	Dir    string // data directory, e.g. "data"

	// CommitName and CommitEmail set the committer; empty uses the token owner.
	CommitName  string
	CommitEmail string

	// BaseURL overrides the API endpoint (GitHub Enterprise, tests).
	BaseURL string
}

// GitHubStore stores documents as files of a GitHub repository through the
// contents API. The version token of a document is its git blob SHA.
type GitHubStore struct {
	client *github.Client
	cfg    GitHubConfig
	log    zerolog.Logger
}

// NewGitHubStore creates a store authenticated with a static token.
func NewGitHubStore(ctx context.Context, cfg GitHubConfig) (*GitHubStore, error) {
	const op = "NewGitHubStore"

	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("%s: owner and repo are required", op)
	}

	var httpClient *http.Client
	if cfg.Token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	}
	client := github.NewClient(httpClient)

	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid base URL: %w", op, err)
		}
		client.BaseURL = u
	}

	log := logger.WithComponent("remote-github")
	log.Debug().
		Str("owner", cfg.Owner).
		Str("repo", cfg.Repo).
		Str("branch", cfg.Branch).
		Str("dir", cfg.Dir).
		Msg("GitHub document store configured")

	return &GitHubStore{client: client, cfg: cfg, log: log}, nil
}

func (s *GitHubStore) repoPath(p string) string {
	if s.cfg.Dir == "" {
		return p
	}
	return path.Join(s.cfg.Dir, p)
}

// Fetch implements DocumentStore.
func (s *GitHubStore) Fetch(ctx context.Context, p string) ([]byte, Version, error) {
	const op = "Fetch"
	full := s.repoPath(p)

	opts := &github.RepositoryContentGetOptions{Ref: s.cfg.Branch}
	file, _, resp, err := s.client.Repositories.GetContents(ctx, s.cfg.Owner, s.cfg.Repo, full, opts)
	if err != nil {
		return nil, "", s.classify(op, p, resp, err)
	}
	if file == nil {
		return nil, "", NewDocumentError(op, p, ErrNotFound, "path is a directory")
	}

	var content []byte
	if file.GetEncoding() == "none" || (file.Content == nil && file.GetSize() > 0) {
		// Files above the inline limit come without content; read the blob.
		raw, resp, err := s.client.Git.GetBlobRaw(ctx, s.cfg.Owner, s.cfg.Repo, file.GetSHA())
		if err != nil {
			return nil, "", s.classify(op, p, resp, err)
		}
		content = raw
	} else {
		decoded, err := file.GetContent()
		if err != nil {
			return nil, "", NewDocumentError(op, p, fmt.Errorf("%w: %v", ErrTransport, err), "failed to decode content")
		}
		content = []byte(decoded)
	}

	v := Version(file.GetSHA())
	s.log.Debug().Str("path", full).Str("version", shortVersion(v)).Int("bytes", len(content)).Msg("Fetched document")
	return content, v, nil
}

// Replace implements DocumentStore.
func (s *GitHubStore) Replace(ctx context.Context, p string, content []byte, version Version) (Version, error) {
	const op = "Replace"
	full := s.repoPath(p)

	opts := &github.RepositoryContentFileOptions{
		Message: github.String("Update " + full),
		Content: content,
	}
	if s.cfg.Branch != "" {
		opts.Branch = github.String(s.cfg.Branch)
	}
	if s.cfg.CommitName != "" && s.cfg.CommitEmail != "" {
		opts.Committer = &github.CommitAuthor{
			Name:  github.String(s.cfg.CommitName),
			Email: github.String(s.cfg.CommitEmail),
		}
	}

	var (
		res  *github.RepositoryContentResponse
		resp *github.Response
		err  error
	)
	if version == "" {
		opts.Message = github.String("Create " + full)
		res, resp, err = s.client.Repositories.CreateFile(ctx, s.cfg.Owner, s.cfg.Repo, full, opts)
	} else {
		opts.SHA = github.String(string(version))
		res, resp, err = s.client.Repositories.UpdateFile(ctx, s.cfg.Owner, s.cfg.Repo, full, opts)
	}
	if err != nil {
		classified := s.classify(op, p, resp, err)
		if IsConflict(classified) {
			var docErr *DocumentError
			if errors.As(classified, &docErr) {
				docErr.ExpectedVersion = version
			}
			s.log.Warn().Str("path", full).Str("expected", shortVersion(version)).Msg("Rejected stale replace")
		}
		return "", classified
	}
	if res == nil || res.Content == nil {
		return "", NewDocumentError(op, p, ErrTransport, "response carried no content")
	}

	next := Version(res.Content.GetSHA())
	s.log.Info().Str("path", full).Str("version", shortVersion(next)).Int("bytes", len(content)).Msg("Committed document")
	return next, nil
}

// List implements DocumentStore.
func (s *GitHubStore) List(ctx context.Context) ([]FileInfo, error) {
	const op = "List"

	dir := s.cfg.Dir
	if dir == "" {
		dir = "."
	}
	opts := &github.RepositoryContentGetOptions{Ref: s.cfg.Branch}
	_, entries, resp, err := s.client.Repositories.GetContents(ctx, s.cfg.Owner, s.cfg.Repo, s.cfg.Dir, opts)
	if err != nil {
		err = s.classify(op, dir, resp, err)
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []FileInfo
	for _, e := range entries {
		if e.GetType() != "file" || !isDataFile(e.GetName()) {
			continue
		}
		files = append(files, FileInfo{
			Name:    e.GetName(),
			Path:    e.GetName(),
			Size:    int64(e.GetSize()),
			Version: Version(e.GetSHA()),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// classify maps GitHub API failures onto the store error taxonomy.
func (s *GitHubStore) classify(op, p string, resp *github.Response, err error) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return NewDocumentError(op, p, fmt.Errorf("%w: %v", ErrTransport, err), "rate limited")
	}

	if resp != nil {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return NewDocumentError(op, p, ErrNotFound, "")
		case http.StatusConflict, http.StatusPreconditionFailed:
			return conflictError(op, p, "", "")
		case http.StatusUnprocessableEntity:
			var ghErr *github.ErrorResponse
			if errors.As(err, &ghErr) && strings.Contains(strings.ToLower(ghErr.Message), "sha") {
				return conflictError(op, p, "", "")
			}
		case http.StatusUnauthorized, http.StatusForbidden:
			return NewDocumentError(op, p, fmt.Errorf("%w: %v", ErrTransport, err), "authentication failed")
		}
	}
	return NewDocumentError(op, p, fmt.Errorf("%w: %v", ErrTransport, err), "")
}

// Package hosting talks to the GitHub REST API for repository bootstrap.
package hosting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/drivestow/drivestow/internal/logging"
	"github.com/drivestow/drivestow/internal/utils"
)

const defaultBaseURL = "https://api.github.com"

// Repository is the subset of the GitHub repository resource we consume.
type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
	HTMLURL  string `json:"html_url"`
	CloneURL string `json:"clone_url"`
	SSHURL   string `json:"ssh_url"`
}

// CreateRepositoryRequest shapes the create call.
type CreateRepositoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Private     bool   `json:"private"`
	AutoInit    bool   `json:"auto_init"`
}

// GitHubClient is a minimal authenticated GitHub API client.
type GitHubClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     logging.Logger
}

// NewGitHubClient creates a client authenticated with a personal access
// token.
func NewGitHubClient(token string, logger logging.Logger) *GitHubClient {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &GitHubClient{
		baseURL:    defaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// WithBaseURL points the client at a different API endpoint. Used for
// GitHub Enterprise and tests.
func (c *GitHubClient) WithBaseURL(baseURL string) *GitHubClient {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// CreateRepository creates a repository under the authenticated user.
func (c *GitHubClient) CreateRepository(ctx context.Context, req CreateRepositoryRequest) (*Repository, error) {
	if req.Name == "" {
		return nil, utils.NewCLIError(utils.ErrCodeInvalidArgument, "repository name is required")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/user/repos", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)

	c.logger.Info("creating repository", logging.F("name", req.Name), logging.F("private", req.Private))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, utils.NewCLIError(utils.ErrCodeNetworkError, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, c.apiError(resp)
	}

	var repo Repository
	if err := json.NewDecoder(resp.Body).Decode(&repo); err != nil {
		return nil, fmt.Errorf("failed to parse repository response: %w", err)
	}
	return &repo, nil
}

// GetAuthenticatedUser returns the login of the token's owner. Used to
// validate a token during configuration.
func (c *GitHubClient) GetAuthenticatedUser(ctx context.Context) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return "", err
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", utils.NewCLIError(utils.ErrCodeNetworkError, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.apiError(resp)
	}

	var user struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("failed to parse user response: %w", err)
	}
	return user.Login, nil
}

func (c *GitHubClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
}

func (c *GitHubClient) apiError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(data, &payload)
	message := payload.Message
	if message == "" {
		message = resp.Status
	}

	var code string
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		code = utils.ErrCodeAuthRequired
	case http.StatusForbidden:
		code = utils.ErrCodePermissionDenied
	case http.StatusNotFound:
		code = utils.ErrCodeFileNotFound
	case http.StatusUnprocessableEntity:
		code = utils.ErrCodeInvalidArgument
	default:
		code = utils.ErrCodeHostingError
	}
	return utils.NewCLIError(code, message).WithHTTPStatus(resp.StatusCode)
}

// AuthenticatedRemoteURL embeds token credentials into an HTTPS clone URL
// so pushes work without a credential helper.
func AuthenticatedRemoteURL(cloneURL, username, token string) (string, error) {
	u, err := url.Parse(cloneURL)
	if err != nil {
		return "", fmt.Errorf("invalid clone URL: %w", err)
	}
	if u.Scheme != "https" {
		return "", fmt.Errorf("expected https clone URL, got %s", u.Scheme)
	}
	u.User = url.UserPassword(username, token)
	return u.String(), nil
}

package github

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidURL is returned for repository URLs that do not name an
// owner and repository on github.com.
var ErrInvalidURL = errors.New("github: invalid repository url")

const (
	noDescription       = "No description provided"
	fallbackDescription = "Click to view project details"
	unknownLanguage     = "Unknown"
	unknownStars        = "—"
)

// Repo is the display record for one repository.
type Repo struct {
	Name        string   `json:"name"`
	FullName    string   `json:"fullName"`
	Description string   `json:"description"`
	Stars       string   `json:"stars"`
	Language    string   `json:"language"`
	Topics      []string `json:"topics"`
	URL         string   `json:"url"`
	Homepage    string   `json:"homepage,omitempty"`
	Fallback    bool     `json:"fallback,omitempty"`
}

type apiRepo struct {
	Name        string   `json:"name"`
	FullName    string   `json:"full_name"`
	Description *string  `json:"description"`
	Stars       int      `json:"stargazers_count"`
	Language    *string  `json:"language"`
	Topics      []string `json:"topics"`
	HTMLURL     string   `json:"html_url"`
	Homepage    *string  `json:"homepage"`
}

var reRepoURL = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)`)

// ParseRepoURL extracts owner and repository name from a github.com URL.
func ParseRepoURL(u string) (owner, name string, err error) {
	m := reRepoURL.FindStringSubmatch(u)
	if m == nil {
		return "", "", fmt.Errorf("%q: %w", u, ErrInvalidURL)
	}
	name = strings.TrimSuffix(m[2], ".git")
	if name == "" {
		return "", "", fmt.Errorf("%q: %w", u, ErrInvalidURL)
	}
	return m[1], name, nil
}

// FormatStars renders a star count, abbreviating thousands as "1.2k".
func FormatStars(n int) string {
	if n >= 1000 {
		return strconv.FormatFloat(float64(n)/1000, 'f', 1, 64) + "k"
	}
	return strconv.Itoa(n)
}

// Repo looks up one repository. A non-2xx response yields a fallback
// record built from the URL; an invalid URL or a transport failure is
// returned as an error.
func (c *Client) Repo(ctx context.Context, repoURL string) (*Repo, error) {
	owner, name, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	var data apiRepo
	err = c.getJSON(ctx, "/repos/"+owner+"/"+name, &data)
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		c.logger.Warnf("github: lookup %s/%s: %v", owner, name, err)
		return fallbackRepo(owner, name, repoURL), nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s/%s: %w", owner, name, err)
	}

	r := &Repo{
		Name:        data.Name,
		FullName:    data.FullName,
		Description: noDescription,
		Stars:       FormatStars(data.Stars),
		Language:    unknownLanguage,
		Topics:      data.Topics,
		URL:         data.HTMLURL,
	}
	if data.Description != nil && *data.Description != "" {
		r.Description = *data.Description
	}
	if data.Language != nil && *data.Language != "" {
		r.Language = *data.Language
	}
	if data.Homepage != nil {
		r.Homepage = *data.Homepage
	}
	if r.Topics == nil {
		r.Topics = []string{}
	}
	return r, nil
}

func fallbackRepo(owner, name, url string) *Repo {
	return &Repo{
		Name:        name,
		FullName:    owner + "/" + name,
		Description: fallbackDescription,
		Stars:       unknownStars,
		Language:    unknownLanguage,
		Topics:      []string{},
		URL:         url,
		Fallback:    true,
	}
}

// DefaultRepos is shown when no repository could be resolved.
func DefaultRepos() []Repo {
	return []Repo{{
		Name:        "example-repo",
		FullName:    "example/example-repo",
		Description: "Add repository links to the repos catalog to list your projects here.",
		Stars:       "0",
		Language:    "Go",
		Topics:      []string{},
		URL:         "https://github.com",
	}}
}

// Repos looks up every URL concurrently. Lookups that fail are dropped,
// fallback records are kept, and the input order is preserved.
func (c *Client) Repos(ctx context.Context, urls []string) []Repo {
	slots := make([]*Repo, len(urls))
	var g errgroup.Group
	g.SetLimit(6)
	for i, u := range urls {
		g.Go(func() error {
			r, err := c.Repo(ctx, u)
			if err != nil {
				c.logger.Warnf("github: skip %s: %v", u, err)
				return nil
			}
			slots[i] = r
			return nil
		})
	}
	_ = g.Wait()

	repos := make([]Repo, 0, len(urls))
	for _, r := range slots {
		if r != nil {
			repos = append(repos, *r)
		}
	}
	if len(repos) == 0 {
		return DefaultRepos()
	}
	return repos
}

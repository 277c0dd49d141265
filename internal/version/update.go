package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// UpdateInfo describes the newest published version.
type UpdateInfo struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
}

// release is the subset of the GitHub release and tag payloads we read.
type release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"` // tags carry their name here
}

func (r release) version() string {
	if r.TagName != "" {
		return strings.TrimPrefix(r.TagName, "v")
	}
	return strings.TrimPrefix(r.Name, "v")
}

var errNotFound = errors.New("not found")

// CheckForUpdate asks the GitHub API at baseURL for the latest release,
// falling back to the newest tag when the repository has no releases.
func CheckForUpdate(ctx context.Context, client *http.Client, baseURL string) (UpdateInfo, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = GitHubAPI
	}
	repo := strings.TrimRight(baseURL, "/") + "/repos/" + Repository
	info := UpdateInfo{CurrentVersion: Version}

	var latest release
	err := getJSON(ctx, client, repo+"/releases/latest", &latest)
	if errors.Is(err, errNotFound) {
		var tags []release
		if err := getJSON(ctx, client, repo+"/tags", &tags); err != nil {
			return info, fmt.Errorf("failed to check for updates: %w", err)
		}
		if len(tags) == 0 {
			info.LatestVersion = Version
			return info, nil
		}
		// Tags are returned newest first.
		latest = tags[0]
	} else if err != nil {
		return info, fmt.Errorf("failed to check for updates: %w", err)
	}

	info.LatestVersion = latest.version()
	info.UpdateAvailable = IsNewer(info.LatestVersion, Version)
	return info, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return errNotFound
	default:
		return fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// IsNewer reports whether dotted version latest is newer than current.
// Non-numeric parts compare as zero; a longer version wins a tie.
func IsNewer(latest, current string) bool {
	lp := strings.Split(strings.TrimPrefix(latest, "v"), ".")
	cp := strings.Split(strings.TrimPrefix(current, "v"), ".")

	for i := 0; i < len(lp) && i < len(cp); i++ {
		l, c := leadingInt(lp[i]), leadingInt(cp[i])
		if l != c {
			return l > c
		}
	}
	return len(lp) > len(cp)
}

// leadingInt parses the leading digits of s ("3-rc1" is 3).
func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}

// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.1.0"

// Repository is the GitHub owner/name used for update checks.
const Repository = "litescript/torrent-cli"

// GitHubAPI is the default API base for update checks.
const GitHubAPI = "https://api.github.com"

// InstallCommand returns the command to update the application.
func InstallCommand() string {
	return "go install github.com/" + Repository + "/cmd/torrent-cli@latest"
}

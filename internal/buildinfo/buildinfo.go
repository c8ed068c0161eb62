// Package buildinfo carries version metadata injected at link time.
package buildinfo

import "strings"

// Set with -ldflags "-X github.com/semtext/semtext/internal/buildinfo.Version=...".
var (
	Version = ""
	Commit  = ""
	Date    = ""
)

// Summary renders the version line printed by `semtext version`.
func Summary() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	var extra []string
	if Commit != "" {
		extra = append(extra, Commit)
	}
	if Date != "" {
		extra = append(extra, Date)
	}
	if len(extra) == 0 {
		return "semtext " + v
	}
	return "semtext " + v + " (" + strings.Join(extra, ", ") + ")"
}

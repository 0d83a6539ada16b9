// Package build provides domain entities for build information.
package build

// Info holds build-time information injected via ldflags.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
}

// UserAgentSuffix is appended to the engine user agent, e.g. "deskview/1.2.0".
func (i Info) UserAgentSuffix() string {
	v := i.Version
	if v == "" {
		v = "dev"
	}
	return "deskview/" + v
}

// RepoURL returns the GitHub repository URL.
func RepoURL() string {
	return "https://github.com/bnema/deskview"
}

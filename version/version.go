package version

// Build metadata, overridable at link time, e.g.
// -ldflags "-X toloka2web/version.Version=1.2.0 -X toloka2web/version.CommitHash=abc1234"
var (
	Version    = "1.0.0"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

// GetBuildInfo renders the build metadata for --version output.
func GetBuildInfo() string {
	return "Version: " + Version + "\nCommit: " + CommitHash + "\nBuild Time: " + BuildTime
}

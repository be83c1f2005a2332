// Package misc holds build information.
package misc

// Set with -ldflags "-X stylecascade/misc.version=... -X stylecascade/misc.gitHash=...".
var (
	appName = "cascade"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}

package helpers

import (
	"os"

	"github.com/compozy/plistyaml/pkg/config"
	"github.com/mattn/go-isatty"
)

// isRunningInCI checks if we're running in a CI/CD environment
func isRunningInCI() bool {
	if os.Getenv("CI") != "" {
		return true
	}
	ciVars := []string{
		"JENKINS_HOME",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"CIRCLECI",
		"TRAVIS",
		"BUILDKITE",
		"DRONE",
		"TF_BUILD",           // Azure DevOps
		"BITBUCKET_COMMIT",   // Bitbucket Pipelines
		"CODEBUILD_BUILD_ID", // AWS CodeBuild
		"TEAMCITY_VERSION",
		"CONTINUOUS_INTEGRATION",
	}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// DetectMode returns the report rendering mode from configuration
func DetectMode(cfg *config.Config) Mode {
	if cfg != nil && cfg.CLI.Output == string(ModeJSON) {
		return ModeJSON
	}
	return ModeText
}

// ShouldUseColor determines if colored output should be used on f
func ShouldUseColor(cfg *config.Config, f *os.File) bool {
	if cfg != nil && cfg.CLI.NoColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if f == nil || (!isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())) {
		return false
	}
	if isRunningInCI() {
		return false
	}
	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}

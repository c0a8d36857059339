package dotseed

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Seed a home directory with shell config and package sandbox files"
	MsgVersionShort    = "Print version information"
	MsgConfigShort     = "Print the effective configuration"
	MsgConfigLong      = "Print the configuration dotseed would run with, after merging defaults, the config file, environment variables and flags."
	MsgCompletionShort = "Generate shell completion script"

	MsgRootExample = `  SANDBOX=devbox dotseed
  dotseed --sandbox devbox --compression zstd --output provides.tar.zst
  dotseed --dry-run -v`

	// Error messages
	MsgErrLoadConfig = "failed to load configuration: %w"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun      = "Preview changes without executing them"
	MsgFlagFormat      = "Output format: auto, term, text or json"
	MsgFlagConfig      = "Config file (default $XDG_CONFIG_HOME/dotseed/config.toml)"
	MsgFlagHome        = "Home directory to seed (default $HOME)"
	MsgFlagSandbox     = "Sandbox directory under home holding the manifest (overrides SANDBOX)"
	MsgFlagManifest    = "Manifest path, relative to the sandbox directory"
	MsgFlagOutput      = "Archive path, relative to home"
	MsgFlagProfile     = "Profile source file"
	MsgFlagShellRc     = "Shell run-control source file"
	MsgFlagCompression = "Archive compression: none, gzip or zstd"
	MsgFlagDefaults    = "Print the built-in defaults instead"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)
)

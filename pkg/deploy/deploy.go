// Package deploy seeds a home directory with shell configuration and packages
// the files a sandbox provides.
//
// A run is four steps, always in this order and stopping at the first
// failure:
//
//  1. deploy-profile:   copy the profile source to ~/.profile
//  2. link-alt-profile: point ~/.zprofile at ~/.profile
//  3. deploy-shell-rc:  copy the run-control source to ~/.zshrc
//  4. build-archive:    tar every path listed in the manifest into ~/provides.tar
//
// Every step replaces its destination outright, so running twice yields the
// same home directory as running once. Concurrent runs against one home are
// not supported.
package deploy

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/dotseed/pkg/archive"
	"github.com/arthur-debert/dotseed/pkg/errors"
	"github.com/arthur-debert/dotseed/pkg/filesystem"
	"github.com/arthur-debert/dotseed/pkg/logging"
	"github.com/arthur-debert/dotseed/pkg/manifest"
	"github.com/arthur-debert/dotseed/pkg/paths"
	"github.com/rs/zerolog"
)

// Step names, as reported in results and errors.
const (
	StepDeployProfile  = "deploy-profile"
	StepLinkAltProfile = "link-alt-profile"
	StepDeployShellRc  = "deploy-shell-rc"
	StepBuildArchive   = "build-archive"
)

// Steps returns the step names in execution order.
func Steps() []string {
	return []string{StepDeployProfile, StepLinkAltProfile, StepDeployShellRc, StepBuildArchive}
}

// Options holds every input of a run. Nothing is read from the process
// environment.
type Options struct {
	// Home is the directory being seeded.
	Home string

	ProfileSource string
	ShellRcSource string

	// Destination names, relative to Home unless absolute. Empty values use
	// .profile, .zprofile and .zshrc.
	ProfileTarget    string
	AltProfileTarget string
	ShellRcTarget    string

	ManifestPath string
	ArchivePath  string
	Compression  archive.Compression

	// DryRun reports what would happen without touching the filesystem.
	DryRun bool
}

// StepResult describes one completed step.
type StepResult struct {
	Step   string `json:"step"`
	Source string `json:"source,omitempty"`
	Target string `json:"target"`
	DryRun bool   `json:"dry_run,omitempty"`
}

// Result is the outcome of a full run.
type Result struct {
	Home    string          `json:"home"`
	DryRun  bool            `json:"dry_run"`
	Steps   []StepResult    `json:"steps"`
	Archive *archive.Result `json:"archive,omitempty"`
}

// StepError names the step a run failed in.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("%s: %v", e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

// Deployer runs the deploy steps for one set of Options.
type Deployer struct {
	opts   Options
	layout paths.Layout
	logger zerolog.Logger
}

// New validates opts and fills in default destination names.
func New(opts Options) (*Deployer, error) {
	if opts.Home == "" {
		return nil, errors.New(errors.ErrInvalidInput, "home directory is required")
	}
	if !filepath.IsAbs(opts.Home) {
		return nil, errors.Newf(errors.ErrInvalidInput, "home directory %q must be absolute", opts.Home)
	}
	if opts.ProfileTarget == "" {
		opts.ProfileTarget = paths.DefaultProfileName
	}
	if opts.AltProfileTarget == "" {
		opts.AltProfileTarget = paths.DefaultAltProfileName
	}
	if opts.ShellRcTarget == "" {
		opts.ShellRcTarget = paths.DefaultShellRcName
	}
	if opts.ArchivePath == "" {
		opts.ArchivePath = paths.DefaultArchiveName
	}
	if opts.Compression == "" {
		opts.Compression = archive.CompressionNone
	}
	return &Deployer{
		opts:   opts,
		layout: paths.Layout{Home: opts.Home},
		logger: logging.GetLogger("deploy"),
	}, nil
}

// Options returns the effective options, defaults included.
func (d *Deployer) Options() Options { return d.opts }

// DeployProfile copies the profile source over ~/.profile.
func (d *Deployer) DeployProfile(ctx context.Context) (StepResult, error) {
	return d.copyStep(ctx, StepDeployProfile, d.opts.ProfileSource, d.layout.InHome(d.opts.ProfileTarget))
}

// DeployShellRc copies the run-control source over ~/.zshrc.
func (d *Deployer) DeployShellRc(ctx context.Context) (StepResult, error) {
	return d.copyStep(ctx, StepDeployShellRc, d.opts.ShellRcSource, d.layout.InHome(d.opts.ShellRcTarget))
}

func (d *Deployer) copyStep(ctx context.Context, step, src, dst string) (StepResult, error) {
	res := StepResult{Step: step, Source: src, Target: dst, DryRun: d.opts.DryRun}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if src == "" {
		return res, errors.Newf(errors.ErrIO, "no source configured for %s", dst)
	}
	done := logging.LogOperationStart(d.logger, step)
	defer done()

	if d.opts.DryRun {
		d.logger.Info().Str("src", src).Str("dst", dst).Msg("Would copy file")
		return res, nil
	}
	if err := filesystem.CopyFile(src, dst); err != nil {
		return res, err
	}
	d.logger.Info().Str("src", src).Str("dst", dst).Msg("Copied file")
	return res, nil
}

// LinkAltProfile makes ~/.zprofile a symlink to ~/.profile. The link target
// is relative to the link's directory, so it survives the home directory
// being mounted elsewhere.
func (d *Deployer) LinkAltProfile(ctx context.Context) (StepResult, error) {
	link := d.layout.InHome(d.opts.AltProfileTarget)
	profile := d.layout.InHome(d.opts.ProfileTarget)
	res := StepResult{Step: StepLinkAltProfile, Source: profile, Target: link, DryRun: d.opts.DryRun}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	target, err := filepath.Rel(filepath.Dir(link), profile)
	if err != nil {
		target = profile
	}
	done := logging.LogOperationStart(d.logger, StepLinkAltProfile)
	defer done()

	if d.opts.DryRun {
		d.logger.Info().Str("link", link).Str("target", target).Msg("Would create symlink")
		return res, nil
	}
	if err := filesystem.ForceSymlink(target, link); err != nil {
		return res, err
	}
	d.logger.Info().Str("link", link).Str("target", target).Msg("Created symlink")
	return res, nil
}

// BuildArchive archives every manifest entry, resolved against the home
// directory, into archivePath. The archive is all or nothing: on failure no
// file is left at archivePath.
func (d *Deployer) BuildArchive(ctx context.Context, manifestPath, archivePath string) (StepResult, *archive.Result, error) {
	archivePath = d.layout.InHome(archivePath)
	res := StepResult{Step: StepBuildArchive, Source: manifestPath, Target: archivePath, DryRun: d.opts.DryRun}
	if err := ctx.Err(); err != nil {
		return res, nil, err
	}
	if manifestPath == "" {
		return res, nil, errors.New(errors.ErrIO, "no manifest configured")
	}
	done := logging.LogOperationStart(d.logger, StepBuildArchive)
	defer done()

	m, err := manifest.Load(manifestPath)
	if err != nil {
		if !d.opts.DryRun {
			// A stale archive must not outlive a failed build.
			if rmErr := filesystem.RemoveIfExists(archivePath); rmErr != nil {
				d.logger.Warn().Err(rmErr).Msg("cannot remove stale archive")
			}
		}
		return res, nil, err
	}
	d.logger.Debug().Str("manifest", manifestPath).Int("entries", m.Len()).Msg("Manifest loaded")

	b := archive.NewBuilder(d.opts.Home, archive.WithCompression(d.opts.Compression))
	if d.opts.DryRun {
		members, err := b.Plan(ctx, m.Entries(), archivePath)
		if err != nil {
			return res, nil, err
		}
		ar := &archive.Result{Path: archivePath, Compression: d.opts.Compression, Members: members}
		for _, mem := range members {
			ar.Bytes += mem.Size
		}
		d.logger.Info().Str("path", archivePath).Int("members", len(members)).Msg("Would write archive")
		return res, ar, nil
	}

	ar, err := b.Build(ctx, m.Entries(), archivePath)
	if err != nil {
		return res, nil, err
	}
	return res, ar, nil
}

// Run executes the four steps in order and stops at the first failure. The
// returned Result holds the steps that completed; the error is a *StepError.
func (d *Deployer) Run(ctx context.Context) (*Result, error) {
	result := &Result{Home: d.opts.Home, DryRun: d.opts.DryRun}
	d.logger.Info().Str("home", d.opts.Home).Bool("dryRun", d.opts.DryRun).Msg("Starting deploy")

	steps := []struct {
		name string
		run  func(context.Context) (StepResult, error)
	}{
		{StepDeployProfile, d.DeployProfile},
		{StepLinkAltProfile, d.LinkAltProfile},
		{StepDeployShellRc, d.DeployShellRc},
		{StepBuildArchive, func(ctx context.Context) (StepResult, error) {
			res, ar, err := d.BuildArchive(ctx, d.opts.ManifestPath, d.opts.ArchivePath)
			result.Archive = ar
			return res, err
		}},
	}

	for _, step := range steps {
		res, err := step.run(ctx)
		if err != nil {
			d.logger.Error().Err(err).Str("step", step.name).Msg("Step failed")
			return result, &StepError{Step: step.name, Err: err}
		}
		result.Steps = append(result.Steps, res)
	}

	d.logger.Info().Int("steps", len(result.Steps)).Msg("Deploy completed")
	return result, nil
}

package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/3leaps/assetrank/internal/cli"
	gh "github.com/3leaps/assetrank/internal/host/github"
	"github.com/3leaps/assetrank/internal/hostenv"
	"github.com/3leaps/assetrank/internal/logging"
	"github.com/3leaps/assetrank/internal/sidefile"
	"github.com/3leaps/assetrank/internal/source"
	"github.com/3leaps/assetrank/pkg/resolve"
)

var version = "dev"

// stdin feeds --manifest -.
var stdin io.Reader = os.Stdin

// hostQuery is the native host query; tests replace it.
var hostQuery = hostenv.Host

//go:embed docs/quickstart.txt
var quickstartDoc string

type options struct {
	repo         string
	tag          string
	latest       bool
	prerelease   bool
	manifest     string
	os           string
	arch         string
	format       string
	best         bool
	hideRejected bool
	showExcluded bool
	configPath   string
	verbose      bool
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("assetrank", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var opts options
	flags.StringVar(&opts.repo, "repo", "", "GitHub repo owner/repo")
	flags.StringVar(&opts.tag, "tag", "", "release tag (mutually exclusive with --latest)")
	flags.BoolVar(&opts.latest, "latest", false, "use the latest release (mutually exclusive with --tag)")
	flags.BoolVar(&opts.prerelease, "prerelease", false, "include prereleases when choosing the latest release")
	flags.StringVar(&opts.manifest, "manifest", "", "artifact manifest JSON file (- for stdin)")
	flags.StringVar(&opts.os, "os", "", "rank for this OS instead of the host (e.g. linux, darwin, windows)")
	flags.StringVar(&opts.arch, "arch", "", "rank for this arch instead of the host (e.g. amd64, arm64)")
	flags.StringVar(&opts.format, "format", "", "output format: table, json, yaml")
	flags.BoolVar(&opts.best, "best", false, "print only the recommended artifact's download URL (exit 2 if none)")
	flags.BoolVar(&opts.hideRejected, "hide-rejected", false, "omit artifacts built for another platform or arch")
	flags.BoolVar(&opts.showExcluded, "show-excluded", false, "list checksum, signature and SBOM files that were excluded")
	flags.StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/assetrank/config.yaml)")
	flags.BoolVar(&opts.verbose, "verbose", false, "debug logging to stderr")
	extendedHelp := flags.Bool("helpextended", false, "print quickstart & examples")
	versionFlag := flags.Bool("version", false, "print version")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cli.ExitOK
		}
		return cli.ExitError
	}

	if *versionFlag {
		fmt.Fprintln(stdout, "assetrank", version)
		return cli.ExitOK
	}
	if *extendedHelp {
		fmt.Fprintln(stdout, strings.TrimSpace(quickstartDoc))
		return cli.ExitOK
	}

	if err := validateOptions(&opts, flags); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		flags.Usage()
		return cli.ExitError
	}

	cfg, err := loadConfig(opts.configPath, flags)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return cli.ExitError
	}

	logger := logging.New(stderr, opts.verbose)
	defer func() { _ = logger.Sync() }()

	return resolveAndReport(context.Background(), &opts, cfg, logger, stdout, stderr)
}

func validateOptions(opts *options, flags *flag.FlagSet) error {
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(flags.Args(), " "))
	}
	if (opts.repo == "") == (opts.manifest == "") {
		return errors.New("exactly one of --repo or --manifest is required")
	}
	if opts.tag != "" && opts.latest {
		return errors.New("--tag and --latest are mutually exclusive")
	}
	if opts.manifest != "" && (opts.tag != "" || opts.latest || opts.prerelease) {
		return errors.New("--tag, --latest and --prerelease apply only to --repo")
	}
	if opts.tag != "" && opts.prerelease {
		return errors.New("--prerelease has no effect with --tag")
	}
	return nil
}

func resolveAndReport(ctx context.Context, opts *options, cfg *Config, logger *zap.Logger, stdout, stderr io.Writer) int {
	// The host query runs while the release is fetched.
	provider := hostenv.NewProvider(hostenv.Override(hostQuery(), cfg.Platform, cfg.Arch), logger)
	hostCtx, cancelHost := context.WithTimeout(ctx, cfg.HostTimeout)
	defer cancelHost()
	pending := provider.Start(hostCtx)

	fetchCtx, cancelFetch := context.WithTimeout(ctx, cfg.Timeout)
	defer cancelFetch()
	listing, err := newSupplier(opts, cfg).Fetch(fetchCtx)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return cli.ExitError
	}

	rc := <-pending
	logger.Debug("runtime context", zap.Stringer("runtime", rc),
		zap.String("platform", string(rc.Platform)), zap.String("arch", string(rc.Arch)))

	policy := resolve.KeepRejected
	if opts.hideRejected {
		policy = resolve.DropRejected
	}
	ranked := resolve.Rank(listing.Artifacts, rc, resolve.Options{Rejected: policy})
	logBreakdown(logger, ranked, rc)
	best := resolve.Best(ranked)

	if opts.best {
		if best == nil {
			if rc.IsUnknown() {
				fmt.Fprintf(stderr, "no recommended artifact: runtime unknown%s\n", compiledHint(ctx))
			} else {
				fmt.Fprintf(stderr, "no recommended artifact for %s\n", rc)
			}
			return cli.ExitNoRecommendation
		}
		if best.DownloadURL != "" {
			fmt.Fprintln(stdout, best.DownloadURL)
		} else {
			fmt.Fprintln(stdout, best.Name)
		}
		return cli.ExitOK
	}

	rep := &report{
		Source:      listing.Source,
		Release:     listing.Release,
		Title:       listing.Title,
		Runtime:     rc,
		Candidates:  ranked,
		Recommended: best,
	}
	if opts.showExcluded {
		_, excluded := resolve.PartitionInstallable(listing.Artifacts)
		rep.Excluded = sidefile.DescribeAll(excluded)
	}
	if err := render(stdout, cfg.Format, rep); err != nil {
		fmt.Fprintf(stderr, "error: writing output: %v\n", err)
		return cli.ExitError
	}
	return cli.ExitOK
}

// compiledHint suggests the overrides matching the target this binary was
// built for.
func compiledHint(ctx context.Context) string {
	r, err := hostenv.Compiled().Query(ctx)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(" (pass --os and --arch, e.g. --os %s --arch %s)", r.OS, r.Arch)
}

func newSupplier(opts *options, cfg *Config) source.Supplier {
	if opts.manifest != "" {
		return &source.Manifest{Path: opts.manifest, Stdin: stdin}
	}
	return &source.GitHub{
		API:        gh.NewClient(cfg.APIBase, gh.UserAgent(version), cfg.Timeout),
		Repo:       opts.repo,
		Tag:        opts.tag,
		Prerelease: cfg.Prerelease && opts.tag == "",
	}
}

func logBreakdown(logger *zap.Logger, ranked []resolve.Candidate, rc resolve.RuntimeContext) {
	if !logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	for _, c := range ranked {
		s := resolve.ScoreArtifact(c.Artifact.Name, rc)
		logger.Debug("candidate",
			zap.String("name", c.Artifact.Name),
			zap.Int("score", s.Value),
			zap.String("platform", string(s.Platform.Outcome)),
			zap.Int("platformPoints", s.Platform.Points),
			zap.String("arch", string(s.Arch.Outcome)),
			zap.Int("archPoints", s.Arch.Points),
			zap.Int("formatPoints", s.Format),
			zap.Bool("fallback", s.Fallback),
		)
	}
}

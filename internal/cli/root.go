// Package cli implements the hed command line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raveheart1/hed/internal/config"
	"github.com/raveheart1/hed/internal/extract"
	"github.com/raveheart1/hed/internal/git"
	"github.com/raveheart1/hed/internal/markdown"
	"github.com/raveheart1/hed/internal/output"
)

var rootCmd = &cobra.Command{
	Use:   "hed",
	Short: "Extract release notes from a markdown changelog",
	Long: `Extract release notes from a markdown changelog.

hed is designed for changelogs that follow the Keep a Changelog
(https://keepachangelog.com) or Common Changelog (https://common-changelog.org)
format. It captures the section belonging to one release, normalizes the
heading levels, and writes the result to stdout.

Examples:
  # Extract the section for v1.2.0 from CHANGELOG.md
  hed --tag v1.2.0

  # Extract the tag attached to HEAD, reading the changelog from stdin
  git show HEAD:CHANGELOG.md | hed -c -

  # GitHub release notes: one-line title, no soft breaks, compare link
  hed -t v1.2.0 --title "Release {tag}" --softbreak=false \
      --diff-url "https://github.com/me/repo/compare/{prev}...{tag}"`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringP("changelog", "c", config.DefaultChangelog, "path to the changelog file, or - for stdin")
	flags.StringP("tag", "t", "", "version to extract (default: the tag attached to HEAD)")
	flags.String("capture-start", config.DefaultCaptureStart, "start capturing at the first line matching this regex; {tag} is replaced with the quoted tag")
	flags.String("capture-end", config.DefaultCaptureEnd, "stop capturing at a line matching this regex, or at end of file")
	flags.String("title", "", "override the main heading; accepts the {tag} placeholder")
	flags.String("diff-url", "", "compare-URL template with {prev} and {tag} placeholders; adds a trailing comparison link")
	flags.String("previous-tag", "", "closest reachable tag before --tag (default: resolved from git history)")
	flags.Bool("softbreak", true, "keep soft line breaks; disable for GitHub release notes")
	flags.StringP("directory", "C", "", "change to this directory before running")
	flags.String("config", "", "path to a config file (default: .hed.yml)")
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			// Flag-parse and usage errors; everything else prints its own
			// diagnostic before returning an ExitError.
			output.PrintError(os.Stderr, err.Error(), nil)
		}
	}
	return ExitCode(err)
}

func runRoot(cmd *cobra.Command, _ []string) error {
	stderr := cmd.ErrOrStderr()

	if dir, _ := cmd.Flags().GetString("directory"); dir != "" {
		if err := os.Chdir(dir); err != nil {
			output.PrintError(stderr, "cannot change directory", err)
			return NewExitError(ExitInvalidArguments)
		}
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		output.PrintError(stderr, "cannot load configuration", err)
		return NewExitError(ExitFailure)
	}
	applyFlagOverrides(cmd, cfg)

	tag, _ := cmd.Flags().GetString("tag")
	if tag == "" {
		tag, err = tagFromHead()
		if err != nil {
			output.PrintError(stderr, "no tag was provided and none could be detected", err)
			return NewExitError(ExitInvalidArguments)
		}
	}

	previousTag, _ := cmd.Flags().GetString("previous-tag")
	if cfg.DiffURL != "" && previousTag == "" {
		previousTag = resolvePreviousTag(stderr, tag)
	}

	text, err := extractRelease(cmd, cfg, tag)
	if err != nil {
		var notFound *extract.PatternNotFoundError
		if errors.As(err, &notFound) {
			output.PrintError(stderr, fmt.Sprintf("no match for tag %q", tag), err)
		} else {
			output.PrintError(stderr, "cannot extract release notes", err)
		}
		return NewExitError(ExitFailure)
	}
	text = strings.TrimSpace(text)

	if cfg.DiffURL != "" && previousTag != "" {
		line, err := markdown.FormatDiffLine(cfg.DiffURL, tag, previousTag)
		if err != nil {
			output.PrintError(stderr, "cannot build comparison link", err)
			return NewExitError(ExitInvalidArguments)
		}
		text += "\n\n" + line
	}

	source := []byte(text)
	doc := markdown.Parse(source)
	markdown.NormalizeHeadings(doc)

	if cfg.Title != "" {
		title, err := markdown.ExpandTemplate(cfg.Title, map[string]string{"tag": tag})
		if err == nil {
			err = markdown.ReplaceTitle(doc, title)
		}
		if err != nil {
			output.PrintError(stderr, "cannot change title", err)
			return NewExitError(ExitFailure)
		}
	}

	if !cfg.Softbreak {
		markdown.CollapseSoftBreaks(doc)
	}

	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(markdown.Render(doc, source)))
	return nil
}

// applyFlagOverrides lets explicit flags win over config file values.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Configuration) {
	flags := cmd.Flags()
	if flags.Changed("changelog") {
		cfg.Changelog, _ = flags.GetString("changelog")
	}
	if flags.Changed("capture-start") {
		cfg.CaptureStart, _ = flags.GetString("capture-start")
	}
	if flags.Changed("capture-end") {
		cfg.CaptureEnd, _ = flags.GetString("capture-end")
	}
	if flags.Changed("title") {
		cfg.Title, _ = flags.GetString("title")
	}
	if flags.Changed("diff-url") {
		cfg.DiffURL, _ = flags.GetString("diff-url")
	}
	if flags.Changed("softbreak") {
		cfg.Softbreak, _ = flags.GetBool("softbreak")
	}
}

// tagFromHead resolves the release tag from the commit HEAD points at.
// It fails when HEAD carries no tag or more than one.
func tagFromHead() (string, error) {
	repo, err := git.OpenRepo(".")
	if err != nil {
		return "", err
	}
	head, err := git.Head(repo)
	if err != nil {
		return "", err
	}
	tags, err := git.TagsForCommit(repo, head)
	if err != nil {
		return "", err
	}

	switch len(tags) {
	case 0:
		return "", errors.New("no tag is attached to HEAD")
	case 1:
		return tags[0], nil
	default:
		return "", fmt.Errorf("HEAD has more than one tag: %s", strings.Join(tags, ", "))
	}
}

// resolvePreviousTag looks up the closest tagged ancestor of tag. Failures
// degrade to warnings: the comparison link is omitted, the extraction
// continues.
func resolvePreviousTag(stderr io.Writer, tag string) string {
	repo, err := git.OpenRepo(".")
	if err != nil {
		output.PrintWarning(stderr, fmt.Sprintf("failed to find previous tag of %q", tag), err)
		return ""
	}

	previous, err := git.FindPreviousTag(repo, tag)
	if err != nil {
		output.PrintWarning(stderr, fmt.Sprintf("failed to find previous tag of %q", tag), err)
		return ""
	}
	if previous == "" {
		output.PrintWarning(stderr, fmt.Sprintf("no previous tag for %q", tag), nil)
	}
	return previous
}

// extractRelease compiles the capture patterns and scans the changelog.
// The stream is closed before returning, success or not.
func extractRelease(cmd *cobra.Command, cfg *config.Configuration, tag string) (string, error) {
	startExpr := strings.ReplaceAll(cfg.CaptureStart, "{tag}", regexp.QuoteMeta(tag))
	startPattern, err := compilePattern(startExpr)
	if err != nil {
		return "", fmt.Errorf("compiling capture-start pattern: %w", err)
	}
	endPattern, err := compilePattern(cfg.CaptureEnd)
	if err != nil {
		return "", fmt.Errorf("compiling capture-end pattern: %w", err)
	}

	var r io.Reader
	if cfg.Changelog == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(cfg.Changelog)
		if err != nil {
			return "", fmt.Errorf("opening changelog: %w", err)
		}
		defer f.Close()
		r = f
	}

	return extract.Extract(r, startPattern, endPattern)
}

// compilePattern compiles expr with match-at-start-of-line semantics: the
// pattern must match at the beginning of a line but not the whole line.
func compilePattern(expr string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + expr + ")")
}

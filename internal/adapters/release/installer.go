package release

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bnema/packybar/internal/domain"
	"github.com/bnema/packybar/internal/ports"
)

const (
	checksumSuffix = ".sha256"

	extractDirMode = 0o755
	scriptFileMode = 0o755

	// The swap script polls for process exit this many times, half a second
	// apart, and aborts without touching the installed bundle when the
	// process is still alive afterwards.
	exitPollAttempts = 60
)

// commandRunner abstracts codesign and shell invocations so the verification
// logic stays testable off macOS.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Installer drives the manual update flow: check the feed, download and
// verify an archive, then hand the bundle swap to a generated shell script
// that runs after the process exits.
type Installer struct {
	feed           ports.ReleaseFeed
	runner         commandRunner
	currentVersion domain.Version
	bundlePath     string
	bundleID       string
	signer         string

	// Confirm is consulted before the destructive swap, and again when
	// signature verification is inconclusive. A nil Confirm declines.
	Confirm func(prompt string) bool
}

type InstallerOption func(*Installer)

func WithRunner(runner commandRunner) InstallerOption {
	return func(i *Installer) {
		i.runner = runner
	}
}

func NewInstaller(feed ports.ReleaseFeed, currentVersion domain.Version, bundlePath, bundleID, signer string, opts ...InstallerOption) *Installer {
	installer := &Installer{
		feed:           feed,
		runner:         execRunner{},
		currentVersion: currentVersion,
		bundlePath:     bundlePath,
		bundleID:       bundleID,
		signer:         signer,
	}

	for _, opt := range opts {
		opt(installer)
	}

	return installer
}

// Check returns the latest release when its tag is strictly newer than the
// running version, and domain.ErrNoUpdate otherwise.
func (i *Installer) Check(ctx context.Context) (domain.Release, error) {
	latest, err := i.feed.Latest(ctx)
	if err != nil {
		return domain.Release{}, err
	}

	if !latest.Version().NewerThan(i.currentVersion) {
		return domain.Release{}, domain.ErrNoUpdate
	}

	return latest, nil
}

// Stage downloads, verifies, and unpacks the release, then writes the swap
// script and returns its path. Launch runs the script; the caller is
// expected to exit promptly afterwards so the script can replace the bundle.
func (i *Installer) Stage(ctx context.Context, release domain.Release) (string, error) {
	archiveAsset, checksumAsset := pickAssets(release.Assets)
	if archiveAsset.DownloadURL == "" {
		return "", fmt.Errorf("release %s has no downloadable archive asset", release.Tag)
	}

	workDir, err := os.MkdirTemp("", "packybar-update-*")
	if err != nil {
		return "", fmt.Errorf("create update workspace: %w", err)
	}

	archivePath, err := i.feed.Download(ctx, archiveAsset.DownloadURL, workDir)
	if err != nil {
		return "", err
	}

	if checksumAsset.DownloadURL != "" {
		if err := i.verifyChecksum(ctx, archivePath, checksumAsset, workDir); err != nil {
			return "", err
		}
	}

	extractDir := filepath.Join(workDir, "extracted")
	if err := extractZip(archivePath, extractDir); err != nil {
		return "", err
	}

	newBundle, err := locateAppBundle(extractDir)
	if err != nil {
		return "", err
	}

	newBundleID, err := bundleIdentifier(newBundle)
	if err != nil {
		return "", err
	}
	if newBundleID != i.bundleID {
		return "", fmt.Errorf("downloaded bundle is %q, running bundle is %q: %w", newBundleID, i.bundleID, domain.ErrBundleIDMismatch)
	}

	if err := i.verifySignature(ctx, newBundle); err != nil {
		return "", err
	}

	if i.Confirm == nil || !i.Confirm(fmt.Sprintf("Replace %s with %s?", i.bundlePath, release.Tag)) {
		return "", fmt.Errorf("update to %s declined", release.Tag)
	}

	scriptPath := filepath.Join(workDir, "install.sh")
	script := swapScript(os.Getpid(), i.bundlePath, newBundle)
	if err := os.WriteFile(scriptPath, []byte(script), scriptFileMode); err != nil {
		return "", fmt.Errorf("write installer script: %w", err)
	}

	return scriptPath, nil
}

// Launch starts the staged swap script detached from this process.
func (i *Installer) Launch(scriptPath string) error {
	cmd := exec.Command("/bin/sh", scriptPath)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch installer script: %w", err)
	}

	// Detach so the script outlives this process.
	return cmd.Process.Release()
}

func (i *Installer) verifyChecksum(ctx context.Context, archivePath string, checksumAsset domain.ReleaseAsset, workDir string) error {
	checksumPath, err := i.feed.Download(ctx, checksumAsset.DownloadURL, workDir)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(checksumPath)
	if err != nil {
		return fmt.Errorf("read checksum file: %w", err)
	}

	expected := parseChecksum(string(raw))
	if expected == "" {
		return fmt.Errorf("checksum file %s holds no digest: %w", checksumAsset.Name, domain.ErrChecksumMismatch)
	}

	actual, err := fileSHA256(archivePath)
	if err != nil {
		return err
	}

	if !strings.EqualFold(expected, actual) {
		return fmt.Errorf("archive digest %s, expected %s: %w", actual, expected, domain.ErrChecksumMismatch)
	}

	return nil
}

// verifySignature runs codesign verification on the staged bundle. A
// configured signer identity must appear in the signing chain. Without a
// configured signer, a failed verification downgrades to a confirmation
// prompt instead of a hard stop.
func (i *Installer) verifySignature(ctx context.Context, bundlePath string) error {
	_, verifyErr := i.runner.Run(ctx, "codesign", "--verify", "--deep", "--strict", bundlePath)

	if i.signer != "" {
		if verifyErr != nil {
			return fmt.Errorf("codesign rejected %s: %w", bundlePath, domain.ErrSignatureInvalid)
		}

		details, err := i.runner.Run(ctx, "codesign", "--display", "--verbose=2", bundlePath)
		if err != nil {
			return fmt.Errorf("read signing identity of %s: %w", bundlePath, domain.ErrSignatureInvalid)
		}

		if !signedBy(string(details), i.signer) {
			return fmt.Errorf("bundle is not signed by %q: %w", i.signer, domain.ErrSignatureInvalid)
		}

		return nil
	}

	if verifyErr != nil {
		if i.Confirm != nil && i.Confirm("Code signature could not be verified. Install anyway?") {
			return nil
		}
		return fmt.Errorf("codesign rejected %s: %w", bundlePath, domain.ErrSignatureInvalid)
	}

	return nil
}

func signedBy(codesignOutput, signer string) bool {
	for _, line := range strings.Split(codesignOutput, "\n") {
		line = strings.TrimSpace(line)
		if value, ok := strings.CutPrefix(line, "Authority="); ok && strings.Contains(value, signer) {
			return true
		}
	}

	return false
}

// pickAssets selects the archive to install, preferring names that hint at
// a macOS build, plus its detached checksum asset when one is published.
func pickAssets(assets []domain.ReleaseAsset) (archive, checksum domain.ReleaseAsset) {
	bestScore := -1
	for _, asset := range assets {
		name := strings.ToLower(asset.Name)
		if strings.HasSuffix(name, checksumSuffix) {
			continue
		}
		if !strings.HasSuffix(name, ".zip") {
			continue
		}

		score := 0
		for _, hint := range []string{"darwin", "macos", "mac"} {
			if strings.Contains(name, hint) {
				score = 1
				break
			}
		}

		if score > bestScore {
			bestScore = score
			archive = asset
		}
	}

	if archive.Name != "" {
		want := strings.ToLower(archive.Name) + checksumSuffix
		for _, asset := range assets {
			if strings.ToLower(asset.Name) == want {
				checksum = asset
				break
			}
		}
	}

	return archive, checksum
}

// parseChecksum extracts the first hex digest from a detached checksum file,
// tolerating the "digest  filename" layout of shasum output.
func parseChecksum(contents string) string {
	for _, field := range strings.Fields(contents) {
		if len(field) == sha256.Size*2 && isHex(field) {
			return strings.ToLower(field)
		}
	}

	return ""
}

func isHex(s string) bool {
	_, err := hex.DecodeString(s)
	return err == nil
}

func fileSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = file.Close() }()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash archive: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func extractZip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = reader.Close() }()

	for _, entry := range reader.File {
		target := filepath.Join(destDir, filepath.Clean(entry.Name))
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes extraction directory", entry.Name)
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, extractDirMode); err != nil {
				return fmt.Errorf("create archive directory: %w", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), extractDirMode); err != nil {
			return fmt.Errorf("create archive directory: %w", err)
		}

		src, err := entry.Open()
		if err != nil {
			return fmt.Errorf("open archive entry %q: %w", entry.Name, err)
		}

		dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, entry.Mode())
		if err != nil {
			_ = src.Close()
			return fmt.Errorf("create extracted file %q: %w", entry.Name, err)
		}

		if _, err := io.Copy(dst, src); err != nil {
			_ = src.Close()
			_ = dst.Close()
			return fmt.Errorf("extract archive entry %q: %w", entry.Name, err)
		}

		_ = src.Close()
		if err := dst.Close(); err != nil {
			return fmt.Errorf("close extracted file %q: %w", entry.Name, err)
		}
	}

	return nil
}

// locateAppBundle finds the .app directory inside the extracted archive,
// preferring a top-level match.
func locateAppBundle(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("list extracted files: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() && strings.HasSuffix(entry.Name(), ".app") {
			return filepath.Join(root, entry.Name()), nil
		}
	}

	var found string
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() && strings.HasSuffix(entry.Name(), ".app") {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan extracted files: %w", err)
	}

	if found == "" {
		return "", fmt.Errorf("no application bundle in extracted archive")
	}

	return found, nil
}

var bundleIDPattern = regexp.MustCompile(`(?s)<key>\s*CFBundleIdentifier\s*</key>\s*<string>([^<]+)</string>`)

// bundleIdentifier reads CFBundleIdentifier from the bundle's Info.plist.
// The plist is the XML flavor, so a targeted scan beats pulling in a full
// plist decoder.
func bundleIdentifier(bundlePath string) (string, error) {
	plistPath := filepath.Join(bundlePath, "Contents", "Info.plist")

	raw, err := os.ReadFile(plistPath)
	if err != nil {
		return "", fmt.Errorf("read bundle manifest: %w", err)
	}

	match := bundleIDPattern.FindSubmatch(raw)
	if match == nil {
		return "", fmt.Errorf("bundle manifest %s has no identifier", plistPath)
	}

	return strings.TrimSpace(string(match[1])), nil
}

// swapScript waits for the current process to exit, then swaps the bundle,
// clears the quarantine attribute, and relaunches. It aborts without
// touching the installed bundle when the process outlives the wait.
func swapScript(pid int, oldBundle, newBundle string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "#!/bin/sh\nset -e\n\n")
	fmt.Fprintf(&b, "attempts=0\n")
	fmt.Fprintf(&b, "while kill -0 %d 2>/dev/null; do\n", pid)
	fmt.Fprintf(&b, "  attempts=$((attempts + 1))\n")
	fmt.Fprintf(&b, "  if [ \"$attempts\" -ge %d ]; then\n", exitPollAttempts)
	fmt.Fprintf(&b, "    echo \"process %d still running, aborting update\" >&2\n", pid)
	fmt.Fprintf(&b, "    exit 1\n")
	fmt.Fprintf(&b, "  fi\n")
	fmt.Fprintf(&b, "  sleep 0.5\n")
	fmt.Fprintf(&b, "done\n\n")
	fmt.Fprintf(&b, "rm -rf %q\n", oldBundle)
	fmt.Fprintf(&b, "cp -R %q %q\n", newBundle, oldBundle)
	fmt.Fprintf(&b, "xattr -dr com.apple.quarantine %q 2>/dev/null || true\n", oldBundle)
	fmt.Fprintf(&b, "open %q\n", oldBundle)

	return b.String()
}

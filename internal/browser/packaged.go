package browser

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod/lib/launcher"

	"resume-renderer/internal/shared/telemetry"
)

// PackagedConfig configures the Chromium build used in constrained
// runtimes such as Lambda.
type PackagedConfig struct {
	// BundledPath is a Chromium binary shipped with the deployment.
	BundledPath string
	// CacheDir holds downloaded builds. It must be writable (/tmp on Lambda).
	CacheDir string
	// Revision pins the Chromium snapshot to download; 0 uses the
	// launcher's default revision.
	Revision int
	// DownloadHost is a mirror with the chromium-browser-snapshots layout.
	// Empty uses the launcher's default hosts.
	DownloadHost   string
	StartupTimeout time.Duration
}

// PackagedProvider resolves a packaged Chromium executable at first use:
// bundled path, then a cached pinned revision, then a download of it.
type PackagedProvider struct {
	cfg PackagedConfig

	mu       sync.Mutex
	resolved string
	fetch    func(ctx context.Context) (string, error)
}

func NewPackagedProvider(cfg PackagedConfig) *PackagedProvider {
	p := &PackagedProvider{cfg: cfg}
	p.fetch = p.download
	return p
}

func (p *PackagedProvider) Acquire(ctx context.Context) (*Handle, error) {
	path, err := p.ExecutablePath(ctx)
	if err != nil {
		return nil, err
	}
	return launch(ctx, launchConfig{
		execPath:       path,
		serverless:     true,
		startupTimeout: p.cfg.StartupTimeout,
	})
}

// ExecutablePath returns the Chromium binary, downloading the pinned build
// when neither a bundled nor a cached copy exists.
func (p *PackagedProvider) ExecutablePath(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.resolved != "" && isFile(p.resolved) {
		return p.resolved, nil
	}
	if p.cfg.BundledPath != "" && isFile(p.cfg.BundledPath) {
		p.resolved = p.cfg.BundledPath
		return p.resolved, nil
	}

	start := time.Now()
	path, err := p.fetch(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: resolve packaged chromium: %w", ErrEngineUnavailable, err)
	}
	telemetry.Info("browser.resolved", map[string]any{
		"exec_path":   path,
		"revision":    p.cfg.Revision,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	p.resolved = path
	return path, nil
}

// download returns the cached build under CacheDir or fetches it.
func (p *PackagedProvider) download(ctx context.Context) (string, error) {
	b := launcher.NewBrowser()
	b.Context = ctx
	b.Logger = rodLogger{}
	if p.cfg.CacheDir != "" {
		b.RootDir = p.cfg.CacheDir
	}
	if p.cfg.Revision > 0 {
		b.Revision = p.cfg.Revision
	}
	if host := strings.TrimRight(p.cfg.DownloadHost, "/"); host != "" {
		b.Hosts = []launcher.Host{snapshotHost(host)}
	}
	return b.Get()
}

// snapshotHost builds download URLs for a mirror of the Chromium snapshot
// bucket: <host>/<platform>/<revision>/<archive>.
func snapshotHost(host string) launcher.Host {
	platform, archive := snapshotPlatform(runtime.GOOS, runtime.GOARCH)
	return func(revision int) string {
		return fmt.Sprintf("%s/%s/%d/%s", host, platform, revision, archive)
	}
}

func snapshotPlatform(goos, goarch string) (string, string) {
	switch goos {
	case "darwin":
		if goarch == "arm64" {
			return "Mac_Arm", "chrome-mac.zip"
		}
		return "Mac", "chrome-mac.zip"
	case "windows":
		return "Win_x64", "chrome-win.zip"
	default:
		if goarch == "arm64" {
			return "Linux_Arm", "chrome-linux.zip"
		}
		return "Linux_x64", "chrome-linux.zip"
	}
}

type rodLogger struct{}

func (rodLogger) Println(v ...any) {
	telemetry.Info("browser.download", map[string]any{"detail": strings.TrimSpace(fmt.Sprintln(v...))})
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

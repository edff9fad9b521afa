package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod/lib/launcher"
)

// LocalConfig configures a browser installed on the developer machine.
type LocalConfig struct {
	// ChromePath overrides the PATH lookup.
	ChromePath     string
	NoSandbox      bool
	StartupTimeout time.Duration
}

// LocalProvider launches the locally installed Chrome or Chromium.
type LocalProvider struct {
	cfg      LocalConfig
	lookPath func() (string, bool)
}

func NewLocalProvider(cfg LocalConfig) *LocalProvider {
	return &LocalProvider{cfg: cfg, lookPath: launcher.LookPath}
}

func (p *LocalProvider) Acquire(ctx context.Context) (*Handle, error) {
	path, err := p.executable()
	if err != nil {
		return nil, err
	}
	return launch(ctx, launchConfig{
		execPath:       path,
		noSandbox:      p.cfg.NoSandbox,
		startupTimeout: p.cfg.StartupTimeout,
	})
}

func (p *LocalProvider) executable() (string, error) {
	if p.cfg.ChromePath != "" {
		return p.cfg.ChromePath, nil
	}
	if path, ok := p.lookPath(); ok {
		return path, nil
	}
	return "", fmt.Errorf("%w: no local chrome found, set CHROME_PATH", ErrEngineUnavailable)
}

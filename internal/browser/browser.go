package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/shirou/gopsutil/v4/process"
)

// ErrProcessAlive is returned by Close when the browser process survived
// the kill.
var ErrProcessAlive = errors.New("browser process still running after close")

type Config struct {
	Headless bool
	ProxyURL string
	Bin      string // browser executable; empty lets rod find or download one
}

// Browser wraps a rod.Browser together with the launcher that owns the
// browser process.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	pid      int
}

// New launches a browser process and connects to it. On error nothing is
// left running.
func New(ctx context.Context, cfg Config) (*Browser, error) {
	l := launcher.New().Context(ctx).Headless(cfg.Headless).Leakless(true)
	if cfg.ProxyURL != "" {
		l = l.Proxy(cfg.ProxyURL)
	}
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}

	url, err := l.Launch()
	if err != nil {
		if l.PID() > 0 {
			l.Kill()
		}
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := &Browser{launcher: l, pid: l.PID()}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	b.browser = browser

	return b, nil
}

// PID returns the browser process id.
func (b *Browser) PID() int {
	return b.pid
}

// NewPage creates a blank page bound to ctx.
func (b *Browser) NewPage(ctx context.Context) (*rod.Page, error) {
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Close closes the browser, kills the launcher's process and checks that
// the process is really gone.
func (b *Browser) Close() error {
	var errs []error
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if b.launcher != nil && b.pid > 0 {
		b.launcher.Kill()
	}
	if b.pid > 0 {
		if err := WaitExit(b.pid, 5*time.Second); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WaitExit polls until pid no longer exists or timeout elapses.
func WaitExit(pid int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		alive, err := Alive(pid)
		if err != nil {
			return err
		}
		if !alive {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w (pid %d)", ErrProcessAlive, pid)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// Alive reports whether pid refers to a running, non-zombie process.
func Alive(pid int) (bool, error) {
	exists, err := process.PidExists(int32(pid))
	if err != nil || !exists {
		return false, err
	}
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return false, nil
	}
	status, err := p.Status()
	if err != nil {
		return false, nil
	}
	for _, s := range status {
		if s == process.Zombie {
			return false, nil
		}
	}
	return true, nil
}

package desktop

import (
	"fmt"
	"os/exec"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/school-dashboard/internal/model"
)

// Permission mirrors the three-state desktop notification permission
// model: undetermined, granted, or denied.
type Permission int

const (
	PermissionDefault Permission = iota
	PermissionGranted
	PermissionDenied
)

// sendFunc delivers one notification to the OS. Swapped out in tests.
type sendFunc func(title, body string) error

// Bridge mirrors store insertions into native OS notifications. The
// permission is resolved once at startup when in the default state and
// never re-prompted.
type Bridge struct {
	mu         sync.Mutex
	permission Permission
	send       sendFunc
	logger     *zap.SugaredLogger
}

// NewBridge creates a Bridge with permission still undetermined.
func NewBridge(logger *zap.SugaredLogger) *Bridge {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Bridge{logger: logger}
}

// RequestPermission resolves the permission if it is still in the
// default state by probing for a usable OS notifier. Calling it again
// after resolution is a no-op.
func (b *Bridge) RequestPermission() Permission {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.permission != PermissionDefault {
		return b.permission
	}

	send, err := resolveSender()
	if err != nil {
		b.logger.Infow("desktop notifications unavailable", "error", err)
		b.permission = PermissionDenied
		return b.permission
	}

	b.send = send
	b.permission = PermissionGranted
	return b.permission
}

// Permission returns the current permission state.
func (b *Bridge) Permission() Permission {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.permission
}

// Notify mirrors a notification to the OS when permission is granted;
// otherwise it is a silent no-op.
func (b *Bridge) Notify(n model.Notification) {
	b.mu.Lock()
	perm := b.permission
	send := b.send
	b.mu.Unlock()

	if perm != PermissionGranted || send == nil {
		return
	}

	if err := send(n.Title, n.Message); err != nil {
		b.logger.Warnw("delivering desktop notification", "id", n.ID, "error", err)
	}
}

// resolveSender finds a working notification command for this platform.
func resolveSender() (sendFunc, error) {
	switch runtime.GOOS {
	case "darwin":
		if _, err := exec.LookPath("osascript"); err != nil {
			return nil, fmt.Errorf("osascript not found: %w", err)
		}
		return func(title, body string) error {
			script := fmt.Sprintf(
				"display notification %q with title %q", body, title,
			)
			return exec.Command("osascript", "-e", script).Run()
		}, nil
	default:
		if _, err := exec.LookPath("notify-send"); err != nil {
			return nil, fmt.Errorf("notify-send not found: %w", err)
		}
		return func(title, body string) error {
			return exec.Command("notify-send", title, body).Run()
		}, nil
	}
}

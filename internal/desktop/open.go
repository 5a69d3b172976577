package desktop

import (
	"context"
	"os/exec"
	"runtime"

	apperr "github.com/light4/christina/internal/errors"
)

var startCommand = func(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Start()
}

// openCommand returns the platform's "open with default handler" command.
func openCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// OpenURL opens url in the default browser without waiting for it.
func OpenURL(url string) error {
	name, args := openCommand(runtime.GOOS, url)
	if err := startCommand(context.Background(), name, args...); err != nil {
		return apperr.Wrapf(err, apperr.Unavailable, "open %s", url)
	}
	return nil
}

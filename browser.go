package toolbox

import (
	"fmt"

	"github.com/go-rod/rod/lib/launcher"
)

// resolveBrowser downloads a compatible Chromium build unless one is
// already cached and returns the path to the executable. Builds are cached
// under ~/.cache/rod/browser (Unix) or %APPDATA%\rod\browser (Windows).
func resolveBrowser() (string, error) {
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", fmt.Errorf("toolbox: downloading browser: %w", err)
	}
	return path, nil
}

package sdlview

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultFontPath looks for a font in ./fonts first, then at the usual
// system locations. It returns "" when nothing is found.
func DefaultFontPath() string {
	if entries, err := os.ReadDir("fonts"); err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(entry.Name())) {
			case ".ttf", ".ttc", ".otf":
				return filepath.Join("fonts", entry.Name())
			}
		}
	}

	var paths []string
	switch runtime.GOOS {
	case "windows":
		paths = []string{`C:\Windows\Fonts\arial.ttf`, `C:\Windows\Fonts\segoeui.ttf`}
	case "darwin":
		paths = []string{"/System/Library/Fonts/Helvetica.ttc", "/Library/Fonts/Arial.ttf"}
	default:
		paths = []string{
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/TTF/DejaVuSans.ttf",
		}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

package sdlview

import (
	"strings"

	"github.com/joctavio287/Dichotic/engine"
)

// KeyName maps an SDL key name ("Space", "A", "Escape") to the lower case
// names used by engine keyboards.
func KeyName(sdlName string) string {
	switch name := strings.ToLower(sdlName); name {
	case "space":
		return engine.KeySpace
	case "escape":
		return engine.KeyEscape
	case "return", "keypad enter":
		return "return"
	default:
		return strings.ReplaceAll(name, " ", "_")
	}
}

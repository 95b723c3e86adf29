package dichotic

import (
	"fmt"
	"strings"
)

// Ear is the side the participant is asked to attend to.
type Ear int

const (
	Left Ear = iota
	Right
)

// ParseEar accepts L, Left, R and Right in any case.
func ParseEar(s string) (Ear, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "left":
		return Left, nil
	case "r", "right":
		return Right, nil
	}
	return 0, fmt.Errorf("invalid target %q: want Left or Right", s)
}

func (e Ear) String() string {
	if e == Left {
		return "Left"
	}
	return "Right"
}

// Code is the one letter form used in the story_L / story_R columns.
func (e Ear) Code() string {
	if e == Left {
		return "L"
	}
	return "R"
}

func (e Ear) Arrow() string {
	if e == Left {
		return "<<<"
	}
	return ">>>"
}

// Side is the word shown in the prompt.
func (e Ear) Side() string {
	if e == Left {
		return "IZQUIERDO"
	}
	return "DERECHO"
}

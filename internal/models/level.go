package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Level is the proficiency stage of a note
type Level int

const (
	LevelBeginner Level = iota
	LevelFamiliar
	LevelProficient
	LevelMastered
)

var levelNames = [...]string{"beginner", "familiar", "proficient", "mastered"}

// ClampLevel maps any integer into [LevelBeginner, LevelMastered].
func ClampLevel(l int) Level {
	if l < int(LevelBeginner) {
		return LevelBeginner
	}
	if l > int(LevelMastered) {
		return LevelMastered
	}
	return Level(l)
}

func (l Level) String() string {
	return levelNames[ClampLevel(int(l))]
}

// ParseLevel accepts a level name or a number. Numbers are clamped.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		return ClampLevel(n), nil
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return LevelBeginner, fmt.Errorf("unknown level %q", s)
}

package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // всё копится в кольце, печатается только после сбоя
	LevelPhase        // driver + passes
	LevelDetail       // units and interpreter steps
)

var levelNames = [...]string{"off", "error", "phase", "detail"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the names printed by String; "" means off.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(s)
	if s == "" {
		return LevelOff, nil
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// Admits reports whether a sink at level l writes events of scope.
// LevelError sinks write nothing on their own.
func (l Level) Admits(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopePass
	case LevelDetail:
		return true
	}
	return false
}

// Scope is the granularity of an event; lower is coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // compile / run
	ScopePass                    // lex, parse, sema, gen
	ScopeUnit                    // per compilation unit
	ScopeStep                    // one interpreter step
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeUnit:
		return "unit"
	case ScopeStep:
		return "step"
	}
	return "unknown"
}

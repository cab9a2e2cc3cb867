package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizers are pure functions converting heterogeneous raw provider
// strings into canonical enums. A lookup miss fails loudly with a
// NormalizationError identifying (source, field, raw_value); nothing raw is
// ever persisted in a typed column.

var positionTable = map[string]Position{
	// Point guard
	"pg": PointGuard, "point guard": PointGuard, "point": PointGuard, "1": PointGuard,
	// Shooting guard
	"sg": ShootingGuard, "shooting guard": ShootingGuard, "off guard": ShootingGuard, "2": ShootingGuard,
	// Small forward
	"sf": SmallForward, "small forward": SmallForward, "3": SmallForward,
	// Power forward
	"pf": PowerForward, "power forward": PowerForward, "4": PowerForward,
	// Center
	"c": Center, "center": Center, "centre": Center, "5": Center,
	// Generic guard / forward
	"g": Guard, "guard": Guard,
	"f": Forward, "forward": Forward,
	// Combo labels some providers emit verbatim
	"g/f": Forward, "f/g": Guard, "f/c": Forward, "c/f": Center,
}

// NormalizePosition maps a raw positional string to one or more canonical
// Positions. Combo tokens like "PG/SG" are split on '/', ',', and '-'.
func NormalizePosition(raw, source string) ([]Position, error) {
	folded := foldName(raw)
	if folded == "" {
		return nil, NewNormalizationError(source, "position", raw)
	}
	if p, ok := positionTable[folded]; ok {
		return []Position{p}, nil
	}

	parts := splitAny(raw, "/,-")
	if len(parts) > 1 {
		out := make([]Position, 0, len(parts))
		for _, part := range parts {
			p, ok := positionTable[foldName(part)]
			if !ok {
				return nil, NewNormalizationError(source, "position", raw)
			}
			out = append(out, p)
		}
		return out, nil
	}
	return nil, NewNormalizationError(source, "position", raw)
}

var gameStatusTable = map[string]GameStatus{
	"scheduled": GameScheduled, "pre": GameScheduled, "not started": GameScheduled,
	"upcoming": GameScheduled, "pending": GameScheduled,
	"live": GameLive, "inprogress": GameLive, "in progress": GameLive,
	"in_progress": GameLive, "1h": GameLive, "2h": GameLive, "halftime": GameLive,
	"ot": GameLive, "overtime": GameLive, "q1": GameLive, "q2": GameLive, "q3": GameLive, "q4": GameLive,
	"final": GameFinal, "final/ot": GameFinal, "f": GameFinal, "f/ot": GameFinal,
	"completed": GameFinal, "closed": GameFinal, "ended": GameFinal,
	"postponed": GamePostponed, "delayed": GamePostponed, "suspended": GamePostponed,
	"cancelled": GameCancelled, "canceled": GameCancelled, "abandoned": GameCancelled,
	"forfeit": GameCancelled, "walkover": GameCancelled,
}

// NormalizeGameStatus maps a raw provider status string to a canonical
// GameStatus.
func NormalizeGameStatus(raw, source string) (GameStatus, error) {
	folded := foldName(raw)
	if s, ok := gameStatusTable[folded]; ok {
		return s, nil
	}
	return "", NewNormalizationError(source, "status", raw)
}

var eventTypeTable = map[string]EventType{
	"shot": EventShot, "2pt": EventShot, "3pt": EventShot, "fieldgoal": EventShot,
	"jumpshot": EventShot, "layup": EventShot, "dunk": EventShot, "hook shot": EventShot,
	"rebound": EventRebound, "offensiverebound": EventRebound, "defensiverebound": EventRebound,
	"assist": EventAssist,
	"block": EventBlock, "blockedshot": EventBlock,
	"steal": EventSteal,
	"turnover": EventTurnover, "tov": EventTurnover, "badpass": EventTurnover, "travel": EventTurnover,
	"foul": EventFoul, "personalfoul": EventFoul, "shootingfoul": EventFoul, "offensivefoul": EventFoul,
	"technicalfoul": EventFoul, "flagrantfoul": EventFoul,
	"freethrow": EventFreeThrow, "ft": EventFreeThrow,
	"substitution": EventSubstitution, "sub": EventSubstitution, "subin": EventSubstitution, "subout": EventSubstitution,
	"timeout": EventTimeout,
	"jumpball": EventJumpBall, "tipoff": EventJumpBall,
	"startperiod": EventPeriodStart, "startofperiod": EventPeriodStart, "startgame": EventPeriodStart,
	"endperiod": EventPeriodEnd, "endofperiod": EventPeriodEnd, "endgame": EventPeriodEnd,
	"violation": EventViolation, "goaltending": EventViolation, "defense3sec": EventViolation,
	"ejection": EventEjection,
}

// NormalizeEventType maps a raw PBP event label to a canonical EventType.
func NormalizeEventType(raw, source string) (EventType, error) {
	folded := strings.ReplaceAll(foldName(raw), " ", "")
	if t, ok := eventTypeTable[folded]; ok {
		return t, nil
	}
	// Retry with spaces kept, for table entries that embed them.
	if t, ok := eventTypeTable[foldName(raw)]; ok {
		return t, nil
	}
	return "", NewNormalizationError(source, "event_type", raw)
}

var nameFoldTransform = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldName lowercases, NFKD-folds to ASCII, and collapses whitespace — the
// shared building block for both enum normalization and name matching.
func foldName(s string) string {
	folded, _, err := transform.String(nameFoldTransform, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	return collapseSpaces(folded)
}

func collapseSpaces(s string) string {
	var b strings.Builder
	prevSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !prevSpace {
				b.WriteRune(' ')
			}
			prevSpace = true
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

func splitAny(s, seps string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})
}

// NormalizedName produces the matching key used throughout the resolver:
// lowercase, accent-folded, whitespace-collapsed. It additionally parses
// both "First Last" and "LAST, FIRST" input forms into a stable "first last"
// order before folding.
func NormalizedName(raw string) string {
	raw = strings.TrimSpace(raw)
	if idx := strings.Index(raw, ","); idx >= 0 {
		last := strings.TrimSpace(raw[:idx])
		first := strings.TrimSpace(raw[idx+1:])
		raw = first + " " + last
	}
	return foldName(raw)
}

// ParseMinutesSeconds parses "MM:SS" (MM may exceed 60) into total seconds.
func ParseMinutesSeconds(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("minutes: malformed clock %q", raw)
	}
	mm, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("minutes: malformed minutes in %q: %w", raw, err)
	}
	ss, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("minutes: malformed seconds in %q: %w", raw, err)
	}
	return mm*60 + ss, nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// ParseDate parses a raw provider date/time string against the layouts
// every source in the pack is known to emit, in order. Source and field are
// carried into the error for orchestrator skip reporting.
func ParseDate(raw, source, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, NewNormalizationError(source, field, raw)
}

// FormatMinutesSeconds is the inverse of ParseMinutesSeconds, for display.
func FormatMinutesSeconds(total int) string {
	mm := total / 60
	ss := total % 60
	return fmt.Sprintf("%d:%02d", mm, ss)
}

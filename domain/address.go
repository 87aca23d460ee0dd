// Package domain contains core concepts of the game chat.
// This file holds the direct-address heuristic: deciding whether a GM
// prompt targets one named character or the whole party. It is a pure
// function over (prompt, roster) so the patterns can be tested alone.
package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// addressPatterns builds the regular expressions that indicate a direct
// address of the given (already lower-cased, escaped) name:
//
//	"Thorin, what do you do?"
//	"Hey Luna, cast a spell"
//	"Thorin: roll for initiative"
//
// The verb list is a small fixed policy, not an exhaustive grammar;
// misses degrade to broadcast.
func addressPatterns(name string) []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(fmt.Sprintf(`^%s[,:]`, name)),
		regexp.MustCompile(fmt.Sprintf(`\b%s[,:]\s`, name)),
		regexp.MustCompile(fmt.Sprintf(`^(hey|hi)\s+%s\b`, name)),
		regexp.MustCompile(fmt.Sprintf(`\b%s\s*,\s*(what|can|do|roll|cast|use)`, name)),
	}
}

// ResolveAddressee returns the single character a prompt speaks to, or
// nil when the prompt addresses the whole party. Matching is
// case-insensitive; the first character in roster order wins, ties are
// never broken by pattern order.
func ResolveAddressee(prompt string, characters []*Participant) *Participant {
	lower := strings.ToLower(prompt)

	for _, character := range characters {
		name := regexp.QuoteMeta(strings.ToLower(character.Name))
		for _, pattern := range addressPatterns(name) {
			if pattern.MatchString(lower) {
				return character
			}
		}
	}
	return nil
}

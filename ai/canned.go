// Package ai provides Responder implementations: the live Gemini client,
// a deterministic canned generator, and the rate-limit aware wrapper that
// arbitrates between them.
package ai

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"

	goahocorasick "github.com/anknown/ahocorasick"
)

// promptCategory classifies what kind of scene a prompt describes so the
// canned responder can answer in kind.
type promptCategory string

const (
	categoryIntroduction promptCategory = "introduction"
	categoryCombat       promptCategory = "combat"
	categoryExploration  promptCategory = "exploration"
	categorySocial       promptCategory = "social"
	categoryMagic        promptCategory = "magic"
	categoryStealth      promptCategory = "stealth"
	categoryDefault      promptCategory = "default"
)

// classifier keywords. Magic and stealth are additionally gated on the
// character class found in the prompt.
var categoryKeywords = map[promptCategory][]string{
	categoryIntroduction: {"introduction", "introduce"},
	categoryCombat:       {"combat", "fight", "battle", "attack"},
	categoryExploration:  {"explore", "search", "investigate", "examine"},
	categorySocial:       {"talk", "negotiate", "persuade", "diplomacy"},
	categoryMagic:        {"spell", "magic"},
	categoryStealth:      {"sneak", "hide", "lock"},
}

var (
	namePattern  = regexp.MustCompile(`You are (\w+),`)
	classPattern = regexp.MustCompile(`Class: (\w+)`)
)

const partyActionsMarker = "PARTY MEMBERS' RECENT ACTIONS:"

// Canned generates in-character responses without any network access.
// Prompt text is classified with an Aho-Corasick automaton over the
// category keywords; the response within a category is picked by a
// seeded source so runs are reproducible.
type Canned struct {
	matcher  *goahocorasick.Machine
	keywords map[string]promptCategory

	mu  sync.Mutex
	rng *rand.Rand
}

// NewCanned builds the keyword automaton. The seed drives every response
// choice; equal seeds produce equal transcripts.
func NewCanned(seed int64) (*Canned, error) {
	keywords := make(map[string]promptCategory)
	var patterns [][]rune
	for category, words := range categoryKeywords {
		for _, word := range words {
			keywords[word] = category
			patterns = append(patterns, []rune(word))
		}
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, fmt.Errorf("build keyword automaton: %w", err)
	}

	return &Canned{
		matcher:  m,
		keywords: keywords,
		rng:      rand.New(rand.NewSource(seed)),
	}, nil
}

func (c *Canned) Generate(_ context.Context, prompt string) (string, error) {
	name, class := characterDetails(prompt)
	coordinated := strings.Contains(prompt, partyActionsMarker)
	category := c.classify(prompt, class)

	responses := cannedResponses(category, coordinated, name, class)

	c.mu.Lock()
	defer c.mu.Unlock()
	return responses[c.rng.Intn(len(responses))], nil
}

// classify picks the first matching category in priority order. Magic
// and stealth only apply to classes that plausibly use them; anything
// unmatched falls back to the default action set.
func (c *Canned) classify(prompt, class string) promptCategory {
	lower := strings.ToLower(prompt)
	matched := make(map[promptCategory]bool)
	for _, term := range c.matcher.MultiPatternSearch([]rune(lower), false) {
		if category, ok := c.keywords[string(term.Word)]; ok {
			matched[category] = true
		}
	}

	lowerClass := strings.ToLower(class)
	caster := strings.Contains(lowerClass, "wizard") || strings.Contains(lowerClass, "sorcerer") || strings.Contains(lowerClass, "cleric")
	sneaky := strings.Contains(lowerClass, "rogue") || strings.Contains(lowerClass, "thief")

	switch {
	case matched[categoryIntroduction]:
		return categoryIntroduction
	case matched[categoryCombat]:
		return categoryCombat
	case matched[categoryExploration]:
		return categoryExploration
	case matched[categorySocial]:
		return categorySocial
	case caster && matched[categoryMagic]:
		return categoryMagic
	case sneaky && matched[categoryStealth]:
		return categoryStealth
	default:
		return categoryDefault
	}
}

// characterDetails recovers the speaker identity embedded in the prompt
// framing, falling back to generic labels when absent.
func characterDetails(prompt string) (name, class string) {
	name, class = "Character", "Adventurer"
	if m := namePattern.FindStringSubmatch(prompt); m != nil {
		name = m[1]
	}
	if m := classPattern.FindStringSubmatch(prompt); m != nil {
		class = m[1]
	}
	return name, class
}

// cannedResponses returns the candidate lines for a category. Party-aware
// variants are used when the prompt carried teammates' actions, so canned
// runs still exhibit the build-on-your-allies behaviour.
func cannedResponses(category promptCategory, coordinated bool, name, class string) []string {
	lowerClass := strings.ToLower(class)

	switch category {
	case categoryIntroduction:
		return []string{
			fmt.Sprintf(`I stride forward confidently and introduce myself: "Greetings! I am %s, a %s. I'm ready for adventure!"`, name, class),
			fmt.Sprintf(`I step up to the group and extend my hand: "Well met! %s at your service. My %s skills are yours to command."`, name, lowerClass),
			fmt.Sprintf(`I approach with a friendly smile: "Hello there! I'm %s. Let's see what adventures await us together!"`, name),
		}
	case categoryCombat:
		if coordinated {
			return []string{
				"I coordinate with my allies, moving to support their attack while striking at the enemy's weak points!",
				"I cast a spell to enhance my party members' abilities, then ready my weapon for battle!",
				"I position myself to protect my allies while they execute their plans, keeping watch for threats!",
				"I follow up on my ally's attack, combining our efforts to overwhelm the enemy!",
				"I cover my party members' flanks while they engage, ensuring no enemy escapes!",
			}
		}
		return []string{
			"I draw my weapon and charge toward the nearest enemy, shouting a battle cry!",
			fmt.Sprintf("I cast a spell at the approaching foe, channeling my %s power!", lowerClass),
			"I move to protect my allies and ready my defenses against the incoming attack!",
			fmt.Sprintf("I attempt to flank the enemy, using my %s training to find their weak spot!", lowerClass),
			"I leap into action, striking with precision and determination!",
		}
	case categoryExploration:
		if coordinated {
			return []string{
				"I work with my allies to thoroughly search the area, covering ground they haven't checked yet.",
				"I support my party member's investigation by watching for danger while they examine the details.",
				"I coordinate with my allies to map out the area efficiently, each taking a different section.",
				"I follow up on what my ally discovered, building on their findings with my own expertise.",
				"I position myself to guard my party while they investigate, ready to alert them of any threats.",
			}
		}
		return []string{
			"I carefully examine the area, searching for traps, hidden passages, or valuable clues.",
			"I move ahead to scout the path, keeping my senses alert for any dangers.",
			"I investigate the strange markings on the wall, trying to decipher their meaning.",
			"I test the floor ahead with my weapon before proceeding cautiously forward.",
			"I check for secret doors by running my hands along the stone walls.",
		}
	case categorySocial:
		if coordinated {
			return []string{
				"I support my ally's approach by standing ready to back up their words with action.",
				"I build on what my party member said, adding my own perspective to strengthen our position.",
				"I watch my ally's back while they negotiate, ready to step in if things go badly.",
				"I complement my party member's strategy by taking a different diplomatic angle.",
				"I follow my ally's lead, supporting their negotiation with my own skills.",
			}
		}
		return []string{
			"I step forward and attempt to negotiate peacefully with them.",
			"I try to charm them with my words, hoping to avoid conflict.",
			"I offer them a deal that could benefit us both.",
			"I listen carefully to their demands and consider our options.",
			"I attempt to intimidate them into backing down.",
		}
	case categoryMagic:
		return []string{
			"I cast a spell to help our situation, focusing my magical energy!",
			"I prepare an enchantment that might give us an advantage.",
			"I channel my arcane power to create a magical effect.",
			"I weave a spell with careful precision, hoping it will work.",
		}
	case categoryStealth:
		return []string{
			"I attempt to sneak around behind them, moving as quietly as possible.",
			"I try to pick the lock on the door while staying hidden.",
			"I move through the shadows, avoiding detection.",
			"I carefully disable the trap I've discovered.",
		}
	default:
		return []string{
			fmt.Sprintf("I take action immediately, using my %s skills to help the party.", lowerClass),
			"I step forward and do what needs to be done in this situation.",
			"I act quickly, drawing on my training and experience.",
			"I take the initiative and make a bold move to advance our goals.",
			"I spring into action, ready to face whatever challenge this presents.",
		}
	}
}

// Package presets ships ready-made parties and opening scenarios so a
// GM can start a game without writing character sheets by hand. The
// catalog is read-only; games copy what they need at creation time.
package presets

import (
	"fmt"
	"math/rand"

	"github.com/samber/lo"

	"github.com/thisisjofrank/LLM-GM-Practice/domain"
)

// Character extends the game spec with display-only flavor.
type Character struct {
	domain.CharacterSpec
	Emoji     string `json:"emoji,omitempty"`
	Backstory string `json:"backstory,omitempty"`
}

// Spec folds the backstory into the personality text, the shape the
// game core consumes.
func (c Character) Spec() domain.CharacterSpec {
	spec := c.CharacterSpec
	if c.Backstory != "" {
		spec.Personality = fmt.Sprintf("%s Background: %s", spec.Personality, c.Backstory)
	}
	return spec
}

// Parties is the preset roster catalog, keyed by theme.
var Parties = map[string][]Character{
	"default": {
		{CharacterSpec: domain.CharacterSpec{Name: "Tharin", Class: "Fighter", Personality: "Brave and loyal team leader, always ready to protect allies. Takes charge in dangerous situations but listens to his party's input."}, Emoji: "⚔️", Backstory: "A former city guard who left his post to seek adventure and justice in the wider world."},
		{CharacterSpec: domain.CharacterSpec{Name: "Lyra", Class: "Wizard", Personality: "Curious and analytical team strategist, loves solving puzzles. Uses magic creatively to support the party and overcome obstacles."}, Emoji: "🔮", Backstory: "A scholar of ancient magic who seeks to unlock the mysteries of forgotten spells."},
		{CharacterSpec: domain.CharacterSpec{Name: "Finn", Class: "Rogue", Personality: "Witty and sneaky team scout, prefers clever solutions. Acts quickly and thinks on their feet."}, Emoji: "🗡️", Backstory: "A former street thief who now uses their skills for the greater good... usually."},
	},
	"teamwork": {
		{CharacterSpec: domain.CharacterSpec{Name: "Commander Aria", Class: "Paladin", Personality: "Natural leader who coordinates party tactics. Protects allies and calls out strategic opportunities."}, Emoji: "🛡️", Backstory: "A former military officer who believes that victory comes through unity and coordination."},
		{CharacterSpec: domain.CharacterSpec{Name: "Echo", Class: "Wizard", Personality: "Supportive spellcaster who specializes in enhancing allies. Watches party dynamics closely and adapts magic to complement their actions."}, Emoji: "🧙", Backstory: "A mage who learned that magic is most powerful when used to amplify others' strengths."},
		{CharacterSpec: domain.CharacterSpec{Name: "Shadow", Class: "Rogue", Personality: "Team player who sets up opportunities for allies. Scouts ahead and creates advantages for the party rather than seeking personal glory."}, Emoji: "🥷", Backstory: "A former guild operative who discovered that the best heists require perfect teamwork."},
		{CharacterSpec: domain.CharacterSpec{Name: "Harmony", Class: "Bard", Personality: "Party coordinator who boosts morale and facilitates cooperation. Reads social situations and helps allies work together effectively."}, Emoji: "🎶", Backstory: "A performer who learned that the best songs are those sung in harmony with others."},
	},
	"funny": {
		{CharacterSpec: domain.CharacterSpec{Name: "Bob", Class: "Fighter", Personality: "Enthusiastic but not very bright, loves hitting things"}, Emoji: "💪", Backstory: "Bob like adventure! Bob hit bad things with big stick!"},
		{CharacterSpec: domain.CharacterSpec{Name: "Professor Whiskers", Class: "Wizard", Personality: "A former house cat polymorphed into human form, still thinks like a cat"}, Emoji: "🐈", Backstory: "Once a familiar, now seeking the wizard who transformed them permanently."},
		{CharacterSpec: domain.CharacterSpec{Name: "Kevin the Accountant", Class: "Rogue", Personality: "Treats adventuring like a business, very concerned about profit margins"}, Emoji: "🧔", Backstory: "A former bookkeeper who discovered that dungeon delving has better returns than tax preparation."},
	},
}

// Scenarios is the opening prompt catalog, keyed by tone.
var Scenarios = map[string][]string{
	"classic": {
		"You find yourselves in the Prancing Pony tavern when a hooded stranger approaches your table with a mysterious map. What do you do?",
		"A dragon has been terrorizing the village of Greenhold. The mayor offers 1000 gold pieces for its defeat. How do you prepare?",
		"You discover an ancient dungeon entrance hidden behind a waterfall. Strange lights flicker from within. Do you enter?",
		"Your party awakens in a dark forest with no memory of how you got there. In the distance, you hear wolves howling. What's your first action?",
	},
	"combat": {
		"Orcs ambush your party on the mountain pass! They're charging with weapons drawn. What do you do?",
		"A massive troll blocks the bridge ahead, demanding a toll of 100 gold pieces or a fight to the death. How do you respond?",
		"The necromancer's skeleton army rises from the graveyard as you approach the cursed cathedral. What's your battle plan?",
	},
	"mystery": {
		"The innkeeper has been murdered, and all the guests are suspects. You must find the killer before dawn.",
		"Children have been disappearing from the village. The only clue is strange music heard at midnight.",
		"A merchant's caravan has vanished on the road. You find only strange tracks that seem to float in mid-air.",
	},
	"humorous": {
		"You encounter a group of very polite zombies who insist on having tea before any combat begins.",
		"A wizard's spell has gone wrong, turning all the furniture in the castle into tiny aggressive dogs.",
		"A mimic has taken the form of the entire tavern. Everyone inside is very confused about why the walls keep giggling.",
	},
	"epic": {
		"The ancient seal containing the Demon Lord has begun to crack. You have 7 days to prevent the apocalypse.",
		"The gods have gone silent. Divine magic fails worldwide, and chaos spreads across the realms.",
	},
}

// Party returns the specs for a named preset roster.
func Party(theme string) ([]domain.CharacterSpec, bool) {
	characters, ok := Parties[theme]
	if !ok {
		return nil, false
	}
	return lo.Map(characters, func(c Character, _ int) domain.CharacterSpec {
		return c.Spec()
	}), true
}

// RandomScenario draws an opening prompt of the given tone using the
// supplied source, so callers control reproducibility.
func RandomScenario(rng *rand.Rand, tone string) (string, bool) {
	list, ok := Scenarios[tone]
	if !ok || len(list) == 0 {
		return "", false
	}
	return list[rng.Intn(len(list))], true
}

// ScenarioTones lists the available scenario keys.
func ScenarioTones() []string {
	return lo.Keys(Scenarios)
}

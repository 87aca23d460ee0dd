package ai

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func framedPrompt(name, class, body string) string {
	return fmt.Sprintf("You are %s, a %s in a D&D adventure.\nClass: %s\n\n%s", name, class, class, body)
}

func TestCanned_Same_Seed_Same_Transcript(t *testing.T) {
	req := require.New(t)

	first, err := NewCanned(42)
	req.NoError(err)
	second, err := NewCanned(42)
	req.NoError(err)

	prompt := framedPrompt("Tharin", "Fighter", "Orcs attack the caravan!")
	for i := 0; i < 5; i++ {
		a, err := first.Generate(context.Background(), prompt)
		req.NoError(err)
		b, err := second.Generate(context.Background(), prompt)
		req.NoError(err)
		req.Equal(a, b)
	}
}

func TestCanned_Classifies_Combat(t *testing.T) {
	req := require.New(t)
	canned, err := NewCanned(1)
	req.NoError(err)

	response, err := canned.Generate(context.Background(), framedPrompt("Tharin", "Fighter", "Orcs attack the caravan!"))

	req.NoError(err)
	req.Contains(cannedResponses(categoryCombat, false, "Tharin", "Fighter"), response)
}

func TestCanned_Party_Actions_Select_Coordinated_Variants(t *testing.T) {
	req := require.New(t)
	canned, err := NewCanned(1)
	req.NoError(err)

	prompt := framedPrompt("Lyra", "Wizard", "Orcs attack!\n\nPARTY MEMBERS' RECENT ACTIONS:\nTharin: I charge!\n")
	response, err := canned.Generate(context.Background(), prompt)

	req.NoError(err)
	req.Contains(cannedResponses(categoryCombat, true, "Lyra", "Wizard"), response)
}

func TestCanned_Introduction_Uses_Character_Identity(t *testing.T) {
	req := require.New(t)
	canned, err := NewCanned(1)
	req.NoError(err)

	response, err := canned.Generate(context.Background(), framedPrompt("Finn", "Rogue", "Generate a brief introduction for your character."))

	req.NoError(err)
	req.Contains(response, "Finn")
}

func TestCanned_Magic_Gated_On_Caster_Class(t *testing.T) {
	req := require.New(t)
	canned, err := NewCanned(1)
	req.NoError(err)

	// A wizard asked about magic casts
	wizard, err := canned.Generate(context.Background(), framedPrompt("Lyra", "Wizard", "A magic barrier blocks the path."))
	req.NoError(err)
	req.Contains(cannedResponses(categoryMagic, false, "Lyra", "Wizard"), wizard)

	// A barbarian asked the same thing takes a generic action
	barbarian, err := canned.Generate(context.Background(), framedPrompt("Grom", "Barbarian", "A magic barrier blocks the path."))
	req.NoError(err)
	req.Contains(cannedResponses(categoryDefault, false, "Grom", "Barbarian"), barbarian)
}

func TestCanned_Unclassified_Prompt_Falls_Back_To_Default(t *testing.T) {
	req := require.New(t)
	canned, err := NewCanned(1)
	req.NoError(err)

	response, err := canned.Generate(context.Background(), framedPrompt("Finn", "Rogue", "The weather is pleasant today."))

	req.NoError(err)
	req.Contains(cannedResponses(categoryDefault, false, "Finn", "Rogue"), response)
}

func TestCanned_Missing_Frame_Uses_Generic_Identity(t *testing.T) {
	req := require.New(t)

	name, class := characterDetails("no framing at all")

	req.Equal("Character", name)
	req.Equal("Adventurer", class)
}

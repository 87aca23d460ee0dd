package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func roster(names ...string) []*Participant {
	participants := make([]*Participant, 0, len(names))
	for _, name := range names {
		participants = append(participants, NewParticipant(name, "Fighter", "stoic", nil))
	}
	return participants
}

func TestResolveAddressee_Name_With_Comma(t *testing.T) {
	req := require.New(t)
	party := roster("Tharin", "Lyra")

	// When the GM opens the prompt with a name and a comma
	target := ResolveAddressee("Tharin, what do you do?", party)

	// Then only that character is addressed
	req.NotNil(target)
	req.Equal("Tharin", target.Name)
}

func TestResolveAddressee_Hey_Greeting(t *testing.T) {
	req := require.New(t)
	party := roster("Tharin", "Lyra")

	target := ResolveAddressee("Hey Lyra, cast a spell", party)

	req.NotNil(target)
	req.Equal("Lyra", target.Name)
}

func TestResolveAddressee_Colon_Form(t *testing.T) {
	req := require.New(t)
	party := roster("Tharin", "Lyra")

	target := ResolveAddressee("Tharin: roll for initiative", party)

	req.NotNil(target)
	req.Equal("Tharin", target.Name)
}

func TestResolveAddressee_Case_Insensitive(t *testing.T) {
	req := require.New(t)
	party := roster("Tharin")

	target := ResolveAddressee("THARIN, can you help?", party)

	req.NotNil(target)
	req.Equal("Tharin", target.Name)
}

func TestResolveAddressee_No_Match_Means_Broadcast(t *testing.T) {
	req := require.New(t)
	party := roster("Tharin", "Lyra")

	// "Everyone" is nobody's name: the whole party responds
	req.Nil(ResolveAddressee("Everyone, charge!", party))

	// A name mentioned without address punctuation is not a direct address
	req.Nil(ResolveAddressee("I wonder what Tharin thinks about this", party))
}

func TestResolveAddressee_First_In_Roster_Order_Wins(t *testing.T) {
	req := require.New(t)
	party := roster("Tharin", "Lyra")

	// When both names could match, roster order breaks the tie
	target := ResolveAddressee("Tharin, ask Lyra, what she sees", party)

	req.NotNil(target)
	req.Equal("Tharin", target.Name)
}

func TestResolveAddressee_Name_Needing_Regex_Escape(t *testing.T) {
	req := require.New(t)
	party := roster("Mr. Whiskers")

	// Dots in names must match literally, not as regex wildcards
	target := ResolveAddressee("Mr. Whiskers, what do you smell?", party)

	req.NotNil(target)
	req.Equal("Mr. Whiskers", target.Name)
}

func TestResolveAddressee_Empty_Roster(t *testing.T) {
	req := require.New(t)

	req.Nil(ResolveAddressee("Tharin, go!", nil))
}

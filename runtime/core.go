package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/thisisjofrank/LLM-GM-Practice/domain"
	"github.com/thisisjofrank/LLM-GM-Practice/errors"
)

// contextWindow is how many trailing log messages each character sees as
// shared context when responding.
const contextWindow = 10

// Core is the authoritative turn-resolution state machine. All game
// mutation funnels through it; transports only ever see snapshots.
type Core struct {
	log       *slog.Logger
	registry  *Registry
	responder domain.Responder
}

func NewCore(log *slog.Logger, registry *Registry, responder domain.Responder) *Core {
	return &Core{
		log:       log,
		registry:  registry,
		responder: responder,
	}
}

// StartGame validates the roster, creates the game, appends the opening
// GM message, and collects one introduction per character. The
// introductions run strictly sequentially in roster order: each is
// appended before the next begins, so the log order is deterministic and
// no introduction sees a sibling's.
func (c *Core) StartGame(ctx context.Context, gmPrompt string, specs []domain.CharacterSpec) (string, error) {
	if strings.TrimSpace(gmPrompt) == "" {
		return "", errors.ErrEmptyPrompt
	}
	if err := domain.ValidateSpecs(specs); err != nil {
		return "", err
	}

	characters := lo.Map(specs, func(spec domain.CharacterSpec, _ int) *domain.Participant {
		return domain.NewParticipant(spec.Name, spec.Class, spec.Personality, c.responder)
	})

	game := domain.NewGame(uuid.NewString(), characters)
	handle := c.registry.add(game)

	handle.mu.Lock()
	defer handle.mu.Unlock()

	game.Append(domain.NewMessage(domain.GMSpeaker, gmPrompt, domain.KindGM))

	for _, character := range game.Characters {
		introduction, err := character.GenerateIntroduction(ctx, gmPrompt)
		if err != nil {
			c.log.Error("Introduction failed", "game", game.ID, "character", character.Name, "err", err)
			introduction = speechless(character.Name)
		}
		game.Append(domain.NewMessage(character.Name, introduction, domain.KindCharacter))
	}

	c.log.Info("Game started", "game", game.ID, "characters", len(characters))
	return game.ID, nil
}

// ProcessPrompt resolves one GM turn. It returns the character messages
// the turn produced, in log order, so a delivery layer can stream them;
// the error result only concerns the turn itself, never an individual
// character: a failed generation becomes a fallback line and the turn
// keeps going. The game's turn counter advances exactly once per call
// that reaches resolution, failures included.
func (c *Core) ProcessPrompt(ctx context.Context, gameID, prompt string) ([]domain.Message, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.ErrEmptyPrompt
	}

	handle, ok := c.registry.get(gameID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrGameNotFound, gameID)
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()

	game := handle.game
	if !game.Active {
		return nil, fmt.Errorf("%w: %s", errors.ErrGameEnded, gameID)
	}

	c.log.Info("Processing GM prompt", "game", gameID, "turn", game.CurrentTurn+1)
	game.Append(domain.NewMessage(domain.GMSpeaker, prompt, domain.KindGM))

	var produced []domain.Message
	if target := domain.ResolveAddressee(prompt, game.Characters); target != nil {
		produced = c.directTurn(ctx, game, target, prompt)
	} else {
		produced = c.broadcastTurn(ctx, game, prompt)
	}

	game.CurrentTurn++
	c.log.Info("Turn completed", "game", gameID, "turn", game.CurrentTurn, "messages", len(game.Messages))
	return produced, nil
}

// directTurn lets only the addressed character answer, with no
// same-turn party actions to react to.
func (c *Core) directTurn(ctx context.Context, game *domain.Game, target *domain.Participant, prompt string) []domain.Message {
	c.log.Debug("GM addresses one character", "game", game.ID, "character", target.Name)

	response, err := target.GenerateResponse(ctx, prompt, game.RecentContext(contextWindow), nil)
	if err != nil {
		c.log.Error("Generation failed", "game", game.ID, "character", target.Name, "err", err)
		response = speechless(target.Name)
	}

	msg := domain.NewMessage(target.Name, response, domain.KindCharacter)
	game.Append(msg)
	return []domain.Message{msg}
}

// broadcastTurn walks the roster strictly in order. Each character sees
// the responses already produced this turn, so later ones can build on
// earlier ones; a failure turns into a fallback line that still joins
// both the log and the running party-action list, so a broken character
// neither blocks the others nor vanishes from the transcript.
func (c *Core) broadcastTurn(ctx context.Context, game *domain.Game, prompt string) []domain.Message {
	c.log.Debug("GM addresses the whole party", "game", game.ID)

	produced := make([]domain.Message, 0, len(game.Characters))
	partyActions := make([]string, 0, len(game.Characters))

	for _, character := range game.Characters {
		// Context includes this turn's earlier responses: they are
		// already in the log by the time we get here.
		response, err := character.GenerateResponse(ctx, prompt, game.RecentContext(contextWindow), partyActions)
		if err != nil {
			c.log.Error("Generation failed", "game", game.ID, "character", character.Name, "err", err)
			response = speechless(character.Name)
		}

		partyActions = append(partyActions, fmt.Sprintf("%s: %s", character.Name, response))

		msg := domain.NewMessage(character.Name, response, domain.KindCharacter)
		game.Append(msg)
		produced = append(produced, msg)
	}
	return produced
}

// GameStatus returns an immutable snapshot of the full game state.
func (c *Core) GameStatus(gameID string) (domain.Snapshot, error) {
	handle, ok := c.registry.get(gameID)
	if !ok {
		return domain.Snapshot{}, fmt.Errorf("%w: %s", errors.ErrGameNotFound, gameID)
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()
	return handle.game.Snapshot(), nil
}

// EndGame marks a game inactive. Idempotent, and a no-op for unknown
// ids: ending something twice, or ending nothing, is not an error.
func (c *Core) EndGame(gameID string) {
	handle, ok := c.registry.get(gameID)
	if !ok {
		return
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()

	if handle.game.Active {
		handle.game.Active = false
		c.log.Info("Game ended", "game", gameID)
	}
}

// speechless is the deterministic stand-in for a character whose
// generation failed. The transcript never shows a silent gap.
func speechless(name string) string {
	return fmt.Sprintf("*%s seems speechless*", name)
}

package services

import (
	"context"

	"github.com/thisisjofrank/LLM-GM-Practice/domain"
	"github.com/thisisjofrank/LLM-GM-Practice/runtime"
)

type IGameService interface {
	StartGame(ctx context.Context, gmPrompt string, specs []domain.CharacterSpec) (string, error)
	SubmitPrompt(ctx context.Context, gameID, prompt string) error
	GameStatus(gameID string) (domain.Snapshot, error)
	EndGame(gameID string)
	Watch(gameID string) (<-chan domain.Message, func())
}

// GameService is the single entry point transports use. It delegates
// turn resolution to the core and publishes each resolved turn to the
// notifier; callers read resulting state back through GameStatus.
type GameService struct {
	core     *runtime.Core
	notifier *runtime.Notifier
}

func NewGameService(core *runtime.Core, notifier *runtime.Notifier) *GameService {
	return &GameService{core: core, notifier: notifier}
}

func (s *GameService) StartGame(ctx context.Context, gmPrompt string, specs []domain.CharacterSpec) (string, error) {
	return s.core.StartGame(ctx, gmPrompt, specs)
}

func (s *GameService) SubmitPrompt(ctx context.Context, gameID, prompt string) error {
	produced, err := s.core.ProcessPrompt(ctx, gameID, prompt)
	if err != nil {
		return err
	}
	s.notifier.Publish(gameID, produced)
	return nil
}

func (s *GameService) GameStatus(gameID string) (domain.Snapshot, error) {
	return s.core.GameStatus(gameID)
}

func (s *GameService) EndGame(gameID string) {
	s.core.EndGame(gameID)
}

func (s *GameService) Watch(gameID string) (<-chan domain.Message, func()) {
	return s.notifier.Subscribe(gameID)
}

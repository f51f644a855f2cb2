package testutil

import (
	"context"
	"sync"

	"github.com/ez2torta/SConE/internal/button"
	"github.com/ez2torta/SConE/internal/player"
)

// ScriptedStepper answers Await from a fixed script and records what it
// was shown. Once the script runs out it keeps advancing.
type ScriptedStepper struct {
	mu      sync.Mutex
	script  []player.Command
	Seen    []button.Set
	Ticks   []int
	OnAwait func(tick int) // optional, runs before the answer is picked
}

// NewScriptedStepper returns a stepper that replies with cmds in order.
func NewScriptedStepper(cmds ...player.Command) *ScriptedStepper {
	return &ScriptedStepper{script: cmds}
}

// Await implements player.Stepper.
func (s *ScriptedStepper) Await(ctx context.Context, tick int, set button.Set) (player.Command, error) {
	if s.OnAwait != nil {
		s.OnAwait(tick)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Seen = append(s.Seen, set)
	s.Ticks = append(s.Ticks, tick)
	if err := ctx.Err(); err != nil {
		return player.Quit, err
	}
	if len(s.script) == 0 {
		return player.Advance, nil
	}
	cmd := s.script[0]
	s.script = s.script[1:]
	return cmd, nil
}

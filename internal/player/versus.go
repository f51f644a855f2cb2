package player

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ez2torta/SConE/internal/sequence"
)

// Job pairs a player with the sequence it should play.
type Job struct {
	Player   *Player
	Sequence sequence.Sequence
}

// Versus plays every job concurrently, each on its own player and sink.
// Sinks must not be shared between jobs. The first failure is returned and
// cancels jobs that have not begun; jobs already playing finish and release.
func Versus(ctx context.Context, jobs ...Job) ([]Report, error) {
	reports := make([]Report, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		g.Go(func() error {
			r, err := job.Player.Play(gctx, job.Sequence)
			reports[i] = r
			if err != nil {
				return fmt.Errorf("job %d (%s): %w", i, job.Sequence.Name(), err)
			}
			return nil
		})
	}
	return reports, g.Wait()
}

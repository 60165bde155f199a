package meetctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/okian/meetglobe/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Run creates cfg.Meetings generated meetings, fetches every visualization
// and checks that each has one arc per pair of points.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stats := &Stats{StartTime: time.Now()}
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting meetglobe load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("meetings", cfg.Meetings),
		logger.Int("size", cfg.Size),
		logger.Int("workers", cfg.Workers))

	if err := client.Health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	rosters := generateRosters(cfg.Seed, cfg.Meetings, cfg.Size)
	var (
		mu  sync.Mutex
		ids []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, r := range rosters {
		g.Go(func() error {
			res, err := client.CreateMeeting(gctx, r.Title, r.Participants)
			mu.Lock()
			defer mu.Unlock()
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				stats.MeetingsFailed++
				if cfg.Verbose {
					log.Warn(gctx, "meeting rejected", logger.String("title", r.Title), logger.Error(err))
				}
				return nil
			}
			if err != nil {
				return err
			}
			stats.MeetingsCreated++
			stats.Warnings += len(res.Warnings)
			ids = append(ids, res.Meeting.ID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, fmt.Errorf("create meetings: %w", err)
	}
	log.Info(ctx, "meetings created",
		logger.Int("created", stats.MeetingsCreated),
		logger.Int("failed", stats.MeetingsFailed),
		logger.Int("warnings", stats.Warnings))

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, id := range ids {
		g.Go(func() error {
			v, err := client.Visualization(gctx, id)
			if err != nil {
				return fmt.Errorf("visualization %s: %w", id, err)
			}
			n := len(v.Points)
			if len(v.Arcs) != n*(n-1)/2 {
				return fmt.Errorf("%w: %s has %d points and %d arcs", ErrVerification, id, n, len(v.Arcs))
			}
			mu.Lock()
			stats.Visualizations++
			stats.Points += n
			stats.Arcs += len(v.Arcs)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	if cfg.Cleanup {
		for _, id := range ids {
			if err := client.DeleteMeeting(ctx, id); err != nil {
				return stats, fmt.Errorf("delete %s: %w", id, err)
			}
			stats.MeetingsDeleted++
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "load run completed", logger.Duration("duration", stats.Duration))
	return stats, nil
}

// WriteStats prints a run summary.
func WriteStats(w io.Writer, s *Stats) {
	_, _ = fmt.Fprintf(w, `meetings created:  %d
meetings failed:   %d
warnings:          %d
visualizations:    %d
points:            %d
arcs:              %d
meetings deleted:  %d
duration:          %s
`, s.MeetingsCreated, s.MeetingsFailed, s.Warnings, s.Visualizations,
		s.Points, s.Arcs, s.MeetingsDeleted, s.Duration.Round(time.Millisecond))
}

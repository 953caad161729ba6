package rankings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"athletrack-backend/lib/timezone"

	"github.com/mazen160/go-random"
	"github.com/robfig/cron/v3"
)

type SchedulerConfig struct {
	// "HH:MM" bounds of the window a daily run time is picked from
	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`
	Year        int    `json:"year"`
	Category    string `json:"category"`
}

// Scheduler triggers the pipeline once a day at a fixed time picked at
// random inside the configured window, so the site never sees us at the
// same minute twice across deployments. Events run strictly one after
// another with a small random pause in between; scraping events in
// parallel would produce exactly the kind of burst we want to avoid.
type Scheduler struct {
	service Service
	cfg     SchedulerConfig
	cron    *cron.Cron
}

func NewScheduler(service Service, cfg SchedulerConfig) (*Scheduler, error) {
	startMinute, err := parseClock(cfg.WindowStart)
	if err != nil {
		return nil, fmt.Errorf("window_start: %w", err)
	}
	endMinute, err := parseClock(cfg.WindowEnd)
	if err != nil {
		return nil, fmt.Errorf("window_end: %w", err)
	}

	hour, minute, err := PickRunTime(startMinute, endMinute)
	if err != nil {
		return nil, err
	}
	slog.Info("scheduled daily scrape", "at", fmt.Sprintf("%02d:%02d", hour, minute))

	s := &Scheduler{
		service: service,
		cfg:     cfg,
		cron:    cron.New(cron.WithLocation(timezone.Location)),
	}
	_, err = s.cron.AddFunc(fmt.Sprintf("%d %d * * *", minute, hour), s.runAll)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunAll scrapes every active event sequentially, both genders.
func (s *Scheduler) RunAll(ctx context.Context) {
	events, err := s.service.events.ListActiveEvents(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list active events", "err", err)
		return
	}

	for i, event := range events {
		for _, gender := range []string{"M", "F"} {
			outcome := s.service.Run(ctx, RunRequest{
				EventCode: event.Code,
				Gender:    gender,
				Year:      s.cfg.Year,
				Category:  s.cfg.Category,
			})
			slog.InfoContext(ctx, "scheduled run finished",
				"event", event.Name, "gender", gender,
				"success", outcome.Success, "rows", outcome.RowCount, "alerts", outcome.AlertCount)

			if i < len(events)-1 || gender == "M" {
				time.Sleep(betweenEventsPause())
			}
		}
	}
}

func (s *Scheduler) runAll() {
	s.RunAll(context.Background())
}

// PickRunTime picks a uniformly random minute of day inside
// [startMinute, endMinute] and returns it as a wall clock time.
func PickRunTime(startMinute, endMinute int) (hour, minute int, err error) {
	if endMinute < startMinute {
		return 0, 0, fmt.Errorf("scheduler window ends (%d) before it starts (%d)", endMinute, startMinute)
	}
	picked, err := random.IntRange(startMinute, endMinute+1)
	if err != nil {
		return 0, 0, err
	}
	return picked / 60, picked % 60, nil
}

func parseClock(clock string) (minuteOfDay int, err error) {
	var hour, minute int
	_, err = fmt.Sscanf(clock, "%d:%d", &hour, &minute)
	if err != nil {
		return 0, fmt.Errorf("malformed clock value %q: %w", clock, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock value %q out of range", clock)
	}
	return hour*60 + minute, nil
}

func betweenEventsPause() time.Duration {
	seconds, err := random.IntRange(2, 6)
	if err != nil {
		return time.Second * 3
	}
	return time.Duration(seconds) * time.Second
}

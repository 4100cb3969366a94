package notification

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/slotdesk/slotdesk/internal/utils"
	"github.com/slotdesk/slotdesk/pkg/calendar"
)

// UpcomingEventsProvider returns the calendar events overlapping [from, to].
type UpcomingEventsProvider func(ctx context.Context, from, to time.Time) ([]calendar.Event, error)

// ReminderScheduler periodically scans the calendar and raises a reminder
// notification for each scheduled event starting within the lookahead
// window. Each event gets at most one reminder.
type ReminderScheduler struct {
	notifications *Service
	events        UpcomingEventsProvider
	clock         utils.Clock
	lookahead     time.Duration
	cronSpec      string
	cron          *cron.Cron
}

func NewReminderScheduler(
	notifications *Service,
	events UpcomingEventsProvider,
	clock utils.Clock,
	cronSpec string,
	lookahead time.Duration,
) *ReminderScheduler {
	return &ReminderScheduler{
		notifications: notifications,
		events:        events,
		clock:         clock,
		lookahead:     lookahead,
		cronSpec:      cronSpec,
		cron:          cron.New(),
	}
}

// Start registers the cron entry and launches the scheduler.
func (r *ReminderScheduler) Start() error {
	_, err := r.cron.AddFunc(r.cronSpec, func() {
		if err := r.Run(context.Background()); err != nil {
			log.Errorf("reminder run failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	log.Infof("reminder scheduler started (spec %q, lookahead %s)", r.cronSpec, r.lookahead)
	return nil
}

// Stop halts the scheduler, waiting for a running scan to finish.
func (r *ReminderScheduler) Stop() {
	<-r.cron.Stop().Done()
}

// Run performs a single scan.
func (r *ReminderScheduler) Run(ctx context.Context) error {
	now := r.clock.Now()
	events, err := r.events(ctx, now, now.Add(r.lookahead))
	if err != nil {
		return err
	}

	for _, event := range events {
		if event.Status != calendar.StatusScheduled {
			continue
		}
		if event.Start.Before(now) {
			continue
		}
		created, err := r.notifications.CreateOnce(ctx, TypeReminder, event.ID)
		if err != nil {
			log.Errorf("could not create reminder for event %s: %v", event.ID, err)
			continue
		}
		if created != nil {
			log.Debugf("reminder created for event %s starting at %s", event.ID, event.Start)
		}
	}
	return nil
}

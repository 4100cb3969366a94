package app

import (
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/slotdesk/slotdesk/internal/auth"
	"github.com/slotdesk/slotdesk/internal/config"
	"github.com/slotdesk/slotdesk/internal/redislock"
	"github.com/slotdesk/slotdesk/internal/utils"
	"github.com/slotdesk/slotdesk/pkg/booking"
	"github.com/slotdesk/slotdesk/pkg/calendar"
	"github.com/slotdesk/slotdesk/pkg/notification"
	"github.com/slotdesk/slotdesk/pkg/prospect"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	AuthTokenValidator auth.TokenValidator

	CalendarRepository *calendar.RepositoryImpl
	CalendarService    *calendar.Service
	CalendarHandler    *calendar.Handler

	ProspectRepository *prospect.RepositoryImpl
	ProspectService    *prospect.Service
	ProspectHandler    *prospect.Handler

	NotificationRepository *notification.RepositoryImpl
	NotificationService    *notification.Service
	NotificationHandler    *notification.Handler
	ReminderScheduler      *notification.ReminderScheduler

	SlotLocker     redislock.Locker
	BookingRepo    *booking.RepositoryImpl
	BookingService *booking.Service
	BookingHandler *booking.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, rdb *redis.Client, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.AuthTokenValidator = auth.TokenValidator{Token: cfg.Admin.Token}
	deps.Clock = utils.SystemClock{}

	deps.CalendarRepository = calendar.NewRepository(db)
	deps.CalendarService = calendar.NewService(deps.CalendarRepository)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService)

	deps.ProspectRepository = prospect.NewRepository(db)
	deps.ProspectService = prospect.NewService(deps.ProspectRepository)
	deps.ProspectHandler = prospect.NewHandler(deps.ProspectService)

	deps.NotificationRepository = notification.NewRepository(db)
	deps.NotificationService = notification.NewService(deps.NotificationRepository)
	deps.NotificationHandler = notification.NewHandler(deps.NotificationService)
	deps.ReminderScheduler = notification.NewReminderScheduler(
		deps.NotificationService,
		deps.CalendarService.EventsInRange,
		deps.Clock,
		cfg.Reminders.CronSpec,
		time.Duration(cfg.Reminders.LookaheadMinutes)*time.Minute,
	)

	deps.SlotLocker = redislock.NewSlotLocker(rdb, time.Duration(cfg.Booking.SlotLockTTLSeconds)*time.Second)
	deps.BookingRepo = booking.NewRepository(db)
	deps.BookingService = booking.NewService(
		deps.BookingRepo,
		deps.CalendarService,
		deps.SlotLocker,
		deps.ProspectService,
		deps.NotificationService,
	)
	deps.BookingHandler = booking.NewHandler(deps.BookingService)

	return deps
}

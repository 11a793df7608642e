package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/booking"
	"github.com/codr1/courtbook/internal/config"
	"github.com/codr1/courtbook/internal/notify"
)

const (
	reminderJobName    = "reservation_reminders"
	reminderJobTimeout = 2 * time.Minute
)

// RegisterReminderJobs schedules the reservation reminder job. Each run
// covers reservations starting between HoursBefore hours from now and
// HoursBefore hours from the next run, so consecutive runs tile without
// gaps or repeats.
func RegisterReminderJobs(svc *Service, manager *booking.Manager, notifier notify.Notifier, cfg config.SchedulerConfig, loc *time.Location) error {
	if manager == nil {
		return fmt.Errorf("reminder jobs require a booking manager")
	}
	if notifier == nil {
		return fmt.Errorf("reminder jobs require a notifier")
	}
	schedule, err := cron.ParseStandard(cfg.ReminderCron)
	if err != nil {
		return fmt.Errorf("parse reminder cron: %w", err)
	}
	hoursBefore := time.Duration(cfg.ReminderHoursBefore) * time.Hour

	jobLogger := log.With().
		Str("component", "reservation_reminders_job").
		Str("job_name", reminderJobName).
		Str("cron", cfg.ReminderCron).
		Logger()

	_, err = svc.AddJob(reminderJobName, cfg.ReminderCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reminderJobTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		now := time.Now().Truncate(time.Minute)
		window := schedule.Next(now).Sub(now)
		sent, err := SendReminders(ctx, manager, notifier, now.Add(hoursBefore), window, loc)
		if err != nil {
			jobLogger.Error().Err(err).Msg("Failed to send reservation reminders")
			return
		}
		if sent > 0 {
			jobLogger.Info().Int("sent", sent).Msg("Reservation reminders sent")
		}
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add reservation reminder job: %w", err)
	}

	jobLogger.Info().Msg("Reservation reminder job registered")
	return nil
}

// SendReminders notifies every active reservation starting in
// [from, from+window). A failed notification is logged and skipped; the
// count covers successful sends only.
func SendReminders(ctx context.Context, manager *booking.Manager, notifier notify.Notifier, from time.Time, window time.Duration, loc *time.Location) (int, error) {
	reservations, err := manager.StartingBetween(ctx, from, from.Add(window), loc)
	if err != nil {
		return 0, fmt.Errorf("load reservations for reminders: %w", err)
	}

	sent := 0
	for i := range reservations {
		res := reservations[i]
		err := notifier.Notify(ctx, notify.Event{
			Kind:        notify.BookingReminder,
			OccurredAt:  time.Now().UTC(),
			Reservation: &res,
		})
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("reservation_id", res.ID).Msg("Failed to send reminder")
			continue
		}
		sent++
	}
	return sent, nil
}

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/hrandria/hospital-api/internal/store"
)

// ReminderWorker periodically scans approved appointments whose schedule
// falls inside the upcoming window and emails a reminder to both parties.
// The reminderSent flag is set before the emails go out, so an appointment
// gets at most one reminder even when runs overlap or emails fail.
type ReminderWorker struct {
	store    store.Store
	notifier *Notifier
	interval time.Duration
	window   time.Duration
	logger   zerolog.Logger
}

func NewReminderWorker(st store.Store, notifier *Notifier, interval, window time.Duration, logger zerolog.Logger) *ReminderWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &ReminderWorker{
		store:    st,
		notifier: notifier,
		interval: interval,
		window:   window,
		logger:   logger.With().Str("component", "reminders").Logger(),
	}
}

// Run loops until the context is cancelled.
func (w *ReminderWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().Dur("interval", w.interval).Dur("window", w.window).Msg("reminder worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("reminder worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx, time.Now().UTC())
		}
	}
}

// RunOnce processes one scan. Each appointment is handled independently so a
// failure on one never blocks the rest of the batch. Returns the number of
// appointments for which a reminder was issued.
func (w *ReminderWorker) RunOnce(ctx context.Context, now time.Time) int {
	due, err := w.store.ListDueReminders(ctx, now, now.Add(w.window))
	if err != nil {
		w.logger.Error().Err(err).Msg("reminder scan failed")
		return 0
	}

	sent := 0
	for i := range due {
		appt := due[i]
		// Mark first: guarantees at most one reminder per appointment even
		// if this run overlaps another or the emails below fail.
		if err := w.store.MarkReminderSent(ctx, appt.ID); err != nil {
			w.logger.Warn().Err(err).Str("appointment", appt.ID.Hex()).Msg("could not mark reminder, skipping")
			continue
		}

		patient, perr := w.store.GetUser(ctx, appt.PatientID)
		if perr != nil && !errors.Is(perr, store.ErrNotFound) {
			w.logger.Warn().Err(perr).Str("appointment", appt.ID.Hex()).Msg("patient lookup failed")
		}
		doctor, derr := w.store.GetDoctorByUser(ctx, appt.DoctorID)
		if derr != nil && !errors.Is(derr, store.ErrNotFound) {
			w.logger.Warn().Err(derr).Str("appointment", appt.ID.Hex()).Msg("doctor lookup failed")
		}

		w.notifier.AppointmentReminder(ctx, &appt, patient, doctor)
		sent++
	}

	if sent > 0 {
		w.logger.Info().Int("count", sent).Msg("reminders processed")
	}
	return sent
}

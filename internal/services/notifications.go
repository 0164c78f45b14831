package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hrandria/hospital-api/internal/models"
)

// Notifier sends the transactional emails of the application. Every method
// logs and swallows delivery failures: a booking or an approval is never
// rolled back because an email could not be sent.
type Notifier struct {
	sender EmailSender
	logger zerolog.Logger
}

func NewNotifier(sender EmailSender, logger zerolog.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		logger: logger.With().Str("component", "notifier").Logger(),
	}
}

// DoctorStatusChanged informs a doctor that an admin decided on their
// registration. Callers invoke it only when the status actually changed.
func (n *Notifier) DoctorStatusChanged(ctx context.Context, doctor *models.Doctor) {
	if doctor == nil || doctor.Email == "" {
		return
	}
	n.send(ctx, Email{
		To:      doctor.Email,
		Subject: fmt.Sprintf("Votre inscription médecin: %s", doctor.Status),
		Body: fmt.Sprintf("Bonjour %s,\n\nVotre inscription a été mise à jour: %s.\n\nCordialement,\nL'équipe",
			doctor.Name, doctor.Status),
	})
}

// AppointmentApproved confirms an approved appointment to both parties.
func (n *Notifier) AppointmentApproved(ctx context.Context, appt *models.Appointment, patient *models.User, doctor *models.Doctor) {
	when := formatWhen(appt)
	if patient != nil && patient.Email != "" {
		n.send(ctx, Email{
			To:      patient.Email,
			Subject: "Confirmation de rendez-vous",
			Body:    fmt.Sprintf("Votre rendez-vous du %s a été confirmé.", when),
		})
	}
	if doctor != nil && doctor.Email != "" {
		n.send(ctx, Email{
			To:      doctor.Email,
			Subject: "Nouveau rendez-vous confirmé — Confirmation de rendez-vous",
			Body:    fmt.Sprintf("Un rendez-vous a été confirmé pour %s", when),
		})
	}
}

// AppointmentReminder warns both parties about an imminent appointment.
func (n *Notifier) AppointmentReminder(ctx context.Context, appt *models.Appointment, patient *models.User, doctor *models.Doctor) {
	when := formatWhen(appt)
	body := fmt.Sprintf("Rappel: votre rendez-vous prévu le %s.\n\nCordialement,\nL'équipe", when)
	if patient != nil && patient.Email != "" {
		n.send(ctx, Email{
			To:      patient.Email,
			Subject: "Rappel: rendez-vous imminent",
			Body:    body,
		})
	}
	if doctor != nil && doctor.Email != "" {
		n.send(ctx, Email{
			To:      doctor.Email,
			Subject: fmt.Sprintf("Rappel pour rendez-vous — %s", when),
			Body:    body,
		})
	}
}

func (n *Notifier) send(ctx context.Context, msg Email) {
	if n == nil || n.sender == nil {
		return
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Error().Err(err).Str("to", msg.To).Str("subject", msg.Subject).Msg("email send failed")
		return
	}
	n.logger.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email sent")
}

func formatWhen(appt *models.Appointment) string {
	if appt.ScheduledAt == nil {
		// Legacy records booked with an unparsable instant keep the raw input.
		return fmt.Sprintf("%s %s", appt.Date, appt.Time)
	}
	return appt.ScheduledAt.Format("02/01/2006 à 15:04")
}

package notification

import (
	"fmt"

	"vecino/models"
)

// templateFunc builds the title and body for one notification type from the
// source entity's data map.
type templateFunc func(data map[string]string) (title, body string)

// templateCatalog maps every notification type to its content template.
// Content generation is decoupled from delivery so each entry is
// independently testable.
var templateCatalog = map[models.NotificationType]templateFunc{
	models.TypeReservationConfirmation: func(d map[string]string) (string, string) {
		return "Reservation confirmed",
			fmt.Sprintf("Your reservation of %s on %s is confirmed.", field(d, "areaName", "the common area"), field(d, "date", "the requested date"))
	},
	models.TypeReservationUpdate: func(d map[string]string) (string, string) {
		return "Reservation updated",
			fmt.Sprintf("Your reservation of %s was updated.", field(d, "areaName", "the common area"))
	},
	models.TypeReservationCancellation: func(d map[string]string) (string, string) {
		return "Reservation cancelled",
			fmt.Sprintf("Your reservation of %s on %s was cancelled.", field(d, "areaName", "the common area"), field(d, "date", "the scheduled date"))
	},
	models.TypeReservationReminder: func(d map[string]string) (string, string) {
		return "Reservation reminder",
			fmt.Sprintf("Reminder: you reserved %s for %s.", field(d, "areaName", "the common area"), field(d, "time", "today"))
	},
	models.TypeMeetingScheduled: func(d map[string]string) (string, string) {
		return "Meeting scheduled",
			fmt.Sprintf("A meeting has been scheduled for %s: %s.", field(d, "date", "an upcoming date"), field(d, "subject", "community matters"))
	},
	models.TypeMeetingUpdated: func(d map[string]string) (string, string) {
		return "Meeting updated",
			fmt.Sprintf("The meeting on %s was updated.", field(d, "date", "the scheduled date"))
	},
	models.TypeMeetingCancelled: func(d map[string]string) (string, string) {
		return "Meeting cancelled",
			fmt.Sprintf("The meeting on %s was cancelled.", field(d, "date", "the scheduled date"))
	},
	models.TypeMeetingRescheduled: func(d map[string]string) (string, string) {
		return "Meeting rescheduled",
			fmt.Sprintf("The meeting was moved to %s.", field(d, "date", "a new date"))
	},
	models.TypeMeetingNotesPublished: func(d map[string]string) (string, string) {
		return "Meeting notes published",
			fmt.Sprintf("Notes for the meeting on %s are now available.", field(d, "date", "the last meeting"))
	},
	models.TypeVoteCreated: func(d map[string]string) (string, string) {
		return "New vote open",
			fmt.Sprintf("A new vote is open: %s.", field(d, "subject", "community decision"))
	},
	models.TypeVoteClosed: func(d map[string]string) (string, string) {
		return "Vote closed",
			fmt.Sprintf("Voting has closed: %s.", field(d, "subject", "community decision"))
	},
	models.TypeAgreementActivated: func(d map[string]string) (string, string) {
		return "Agreement in effect",
			fmt.Sprintf("The agreement %q is now active.", field(d, "agreementTitle", "community agreement"))
	},
	models.TypePaymentDue: func(d map[string]string) (string, string) {
		return "Payment due",
			fmt.Sprintf("Your payment of %s is due on %s.", field(d, "amount", "the monthly fee"), field(d, "dueDate", "the due date"))
	},
	models.TypePaymentOverdue: func(d map[string]string) (string, string) {
		return "Payment overdue",
			fmt.Sprintf("Your payment of %s is overdue since %s.", field(d, "amount", "the monthly fee"), field(d, "dueDate", "its due date"))
	},
	models.TypePaymentConfirmed: func(d map[string]string) (string, string) {
		return "Payment received",
			fmt.Sprintf("We received your payment of %s. Thank you.", field(d, "amount", "the monthly fee"))
	},
	models.TypeSystemAnnouncement: func(d map[string]string) (string, string) {
		return field(d, "title", "Announcement"), field(d, "message", "There is a new announcement from your administration.")
	},
}

// RenderTemplate builds the default title and body for a notification type.
// Returns ok=false for types without a template (never the case for the
// closed enum, kept as a guard for forward compatibility).
func RenderTemplate(t models.NotificationType, data map[string]string) (title, body string, ok bool) {
	tpl, found := templateCatalog[t]
	if !found {
		return "", "", false
	}
	title, body = tpl(data)
	return title, body, true
}

func field(d map[string]string, key, fallback string) string {
	if d != nil {
		if v, ok := d[key]; ok && v != "" {
			return v
		}
	}
	return fallback
}

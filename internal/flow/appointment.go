package flow

import (
	"context"
	"log/slog"

	"github.com/chanjohealth/chanjobot/internal/models"
)

// appointmentStep handles one message within the appointment creation flow.
func (e *Engine) appointmentStep(ctx context.Context, st *models.ConversationState, input, lower string) stepResult {
	d := st.Appointment
	slog.Debug("Appointment flow step", "sender", st.Sender, "state", st.State)

	switch st.State {
	case models.StateApptBabyID:
		id, ok := ParseNumericID(input)
		if !ok {
			return stepResult{reply: InvalidBabyIDText}
		}
		d.BabyID = id
		st.State = models.StateApptDate
		return stepResult{reply: ApptDatePrompt}

	case models.StateApptDate:
		date, ok := ParseDate(input)
		if !ok {
			return stepResult{reply: InvalidDateText}
		}
		d.Date = date
		st.State = models.StateApptNotes
		return stepResult{reply: ApptNotesPrompt}

	case models.StateApptNotes:
		if input == "" {
			return stepResult{reply: ApptNotesPrompt}
		}
		d.Notes = input
		st.State = models.StateApptConfirm
		return stepResult{reply: apptSummary(d, st.Sender)}

	case models.StateApptConfirm:
		switch lower {
		case "y", "yes":
			return e.submitAppointment(ctx, st)
		case "n", "no":
			st.State = models.StateApptBabyID
			st.Appointment = &models.AppointmentDraft{}
			return stepResult{reply: ApptBabyIDPrompt}
		default:
			return stepResult{reply: ConfirmRepromptText}
		}

	default:
		slog.Error("Appointment flow in unknown state", "sender", st.Sender, "state", st.State)
		return stepResult{reply: withMenu(GenericErrorText), done: true}
	}
}

// submitAppointment builds the creation payload from the draft and submits
// it. The sender is recorded as the creating CHW.
func (e *Engine) submitAppointment(ctx context.Context, st *models.ConversationState) stepResult {
	d := st.Appointment
	a := models.Appointment{
		BabyID:    d.BabyID,
		Date:      d.Date,
		Notes:     d.Notes,
		CreatedBy: st.Sender,
	}

	if err := e.backend.CreateAppointment(ctx, a); err != nil {
		slog.Error("Appointment creation failed", "error", err, "sender", st.Sender)
		return submissionError(err)
	}

	slog.Info("Appointment created", "sender", st.Sender, "baby_id", d.BabyID)
	return stepResult{reply: withMenu(ApptSuccessText), done: true}
}

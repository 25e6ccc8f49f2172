package flow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/chanjohealth/chanjobot/internal/models"
)

// modifyStep handles one message within the appointment modify/cancel flow.
// The first step looks up all appointments for the baby; with none found the
// flow terminates immediately.
func (e *Engine) modifyStep(ctx context.Context, st *models.ConversationState, input, lower string) stepResult {
	d := st.Modify
	slog.Debug("Modify flow step", "sender", st.Sender, "state", st.State)

	switch st.State {
	case models.StateModifyBabyID:
		id, ok := ParseNumericID(input)
		if !ok {
			return stepResult{reply: InvalidBabyIDText}
		}
		appts, err := e.backend.ListAppointments(ctx, id)
		if err != nil {
			slog.Error("Appointment lookup failed", "error", err, "sender", st.Sender, "baby_id", id)
			return submissionError(err)
		}
		if len(appts) == 0 {
			slog.Info("No appointments found for baby", "sender", st.Sender, "baby_id", id)
			return stepResult{reply: withMenu(NoAppointmentsText), done: true}
		}
		d.BabyID = id
		d.Appointments = appts
		st.State = models.StateModifySelect
		return stepResult{reply: appointmentList(appts)}

	case models.StateModifySelect:
		idx, ok := ParseListIndex(input, len(d.Appointments))
		if !ok {
			return stepResult{reply: InvalidSelectionText + "\n\n" + appointmentList(d.Appointments)}
		}
		d.Selected = idx
		st.State = models.StateModifyAction
		return stepResult{reply: ModifyActionPrompt}

	case models.StateModifyAction:
		switch input {
		case "1":
			st.State = models.StateModifyNewDetails
			return stepResult{reply: ModifyDetailsPrompt}
		case "2":
			st.State = models.StateModifyConfirmCancel
			return stepResult{reply: ModifyConfirmCancelPrompt}
		default:
			return stepResult{reply: InvalidActionText}
		}

	case models.StateModifyNewDetails:
		update, ok := parseModifyDetails(input)
		if !ok {
			return stepResult{reply: InvalidDateText + "\n\n" + ModifyDetailsPrompt}
		}
		appt := d.Appointments[d.Selected]
		if err := e.backend.UpdateAppointment(ctx, appt.ID, update); err != nil {
			slog.Error("Appointment update failed", "error", err, "sender", st.Sender, "appointment_id", appt.ID)
			return submissionError(err)
		}
		slog.Info("Appointment updated", "sender", st.Sender, "appointment_id", appt.ID)
		return stepResult{reply: withMenu(ModifySuccessText), done: true}

	case models.StateModifyConfirmCancel:
		if lower != "yes" {
			// Anything but an explicit yes returns to the action choice.
			st.State = models.StateModifyAction
			return stepResult{reply: ModifyActionPrompt}
		}
		appt := d.Appointments[d.Selected]
		if err := e.backend.DeleteAppointment(ctx, appt.ID); err != nil {
			slog.Error("Appointment cancellation failed", "error", err, "sender", st.Sender, "appointment_id", appt.ID)
			return submissionError(err)
		}
		slog.Info("Appointment cancelled", "sender", st.Sender, "appointment_id", appt.ID)
		return stepResult{reply: withMenu(CancelApptSuccessText), done: true}

	default:
		slog.Error("Modify flow in unknown state", "sender", st.Sender, "state", st.State)
		return stepResult{reply: withMenu(GenericErrorText), done: true}
	}
}

// parseModifyDetails parses a "date, note" line. The note is optional and
// defaults; the date must be YYYY-MM-DD.
func parseModifyDetails(input string) (models.AppointmentUpdate, bool) {
	datePart := input
	note := DefaultModifyNote
	if idx := strings.Index(input, ","); idx >= 0 {
		datePart = strings.TrimSpace(input[:idx])
		if n := strings.TrimSpace(input[idx+1:]); n != "" {
			note = n
		}
	} else {
		datePart = strings.TrimSpace(input)
	}

	date, ok := ParseDate(datePart)
	if !ok {
		return models.AppointmentUpdate{}, false
	}
	return models.AppointmentUpdate{Date: date, Notes: note}, true
}

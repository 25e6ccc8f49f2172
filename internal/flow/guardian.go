package flow

import (
	"context"
	"log/slog"

	"github.com/chanjohealth/chanjobot/internal/models"
)

// guardianStep handles one message within the guardian registration flow.
func (e *Engine) guardianStep(ctx context.Context, st *models.ConversationState, input, lower string) stepResult {
	d := st.Guardian
	slog.Debug("Guardian flow step", "sender", st.Sender, "state", st.State)

	switch st.State {
	case models.StateGuardianName:
		if input == "" {
			return stepResult{reply: GuardianNamePrompt}
		}
		d.Name = input
		st.State = models.StateGuardianNationalID
		return stepResult{reply: GuardianNationalIDPrompt}

	case models.StateGuardianNationalID:
		if !ValidNationalID(input) {
			return stepResult{reply: InvalidNationalIDText}
		}
		d.NationalID = input
		st.State = models.StateGuardianGender
		return stepResult{reply: GuardianGenderPrompt}

	case models.StateGuardianGender:
		gender, ok := ParseGender(lower)
		if !ok {
			return stepResult{reply: InvalidGenderText}
		}
		d.Gender = gender
		st.State = models.StateGuardianPhone
		return stepResult{reply: GuardianPhonePrompt}

	case models.StateGuardianPhone:
		phone, ok := NormalizeKenyanPhone(input)
		if !ok {
			return stepResult{reply: InvalidPhoneText}
		}
		d.Phone = phone
		st.State = models.StateGuardianClinic
		return stepResult{reply: GuardianClinicPrompt}

	case models.StateGuardianClinic:
		if input == "" {
			return stepResult{reply: GuardianClinicPrompt}
		}
		d.Clinic = input
		st.State = models.StateGuardianResidence
		return stepResult{reply: GuardianResidencePrompt}

	case models.StateGuardianResidence:
		if input == "" {
			return stepResult{reply: GuardianResidencePrompt}
		}
		d.Residence = input
		st.State = models.StateGuardianConfirm
		return stepResult{reply: guardianSummary(d)}

	case models.StateGuardianConfirm:
		switch lower {
		case "y", "yes":
			return e.submitGuardian(ctx, st)
		case "n", "no":
			st.State = models.StateGuardianName
			st.Guardian = &models.GuardianDraft{}
			return stepResult{reply: GuardianNamePrompt}
		default:
			return stepResult{reply: ConfirmRepromptText}
		}

	default:
		slog.Error("Guardian flow in unknown state", "sender", st.Sender, "state", st.State)
		return stepResult{reply: withMenu(GenericErrorText), done: true}
	}
}

// submitGuardian builds the registration payload from the draft and submits it.
func (e *Engine) submitGuardian(ctx context.Context, st *models.ConversationState) stepResult {
	d := st.Guardian
	g := models.Guardian{
		Name:       d.Name,
		NationalID: d.NationalID,
		Gender:     d.Gender,
		Phone:      d.Phone,
		Clinic:     d.Clinic,
		Residence:  d.Residence,
	}

	if err := e.backend.RegisterGuardian(ctx, g); err != nil {
		slog.Error("Guardian registration failed", "error", err, "sender", st.Sender)
		return submissionError(err)
	}

	slog.Info("Guardian registered", "sender", st.Sender, "national_id", d.NationalID)
	return stepResult{reply: withMenu(GuardianSuccessText), done: true}
}

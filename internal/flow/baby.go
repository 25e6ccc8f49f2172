package flow

import (
	"context"
	"log/slog"

	"github.com/chanjohealth/chanjobot/internal/models"
)

// babyStep handles one message within the baby registration flow. The first
// step resolves the parent's national ID to a guardian; an unresolvable ID
// terminates the flow, since the guardian must be registered first.
func (e *Engine) babyStep(ctx context.Context, st *models.ConversationState, input, lower string) stepResult {
	d := st.Baby
	slog.Debug("Baby flow step", "sender", st.Sender, "state", st.State)

	switch st.State {
	case models.StateBabyParentID:
		if !ValidNationalID(input) {
			return stepResult{reply: InvalidNationalIDText}
		}
		guardian, err := e.backend.FindGuardianByNationalID(ctx, input)
		if err != nil {
			slog.Error("Guardian lookup failed", "error", err, "sender", st.Sender)
			return submissionError(err)
		}
		if guardian == nil {
			slog.Info("Guardian not found for baby registration", "sender", st.Sender, "national_id", input)
			return stepResult{reply: withMenu(GuardianNotFoundText), done: true}
		}
		d.GuardianID = guardian.ID
		d.ParentNationalID = input
		st.State = models.StateBabyFirstName
		return stepResult{reply: BabyFirstNamePrompt}

	case models.StateBabyFirstName:
		if input == "" {
			return stepResult{reply: BabyFirstNamePrompt}
		}
		d.FirstName = input
		st.State = models.StateBabyLastName
		return stepResult{reply: BabyLastNamePrompt}

	case models.StateBabyLastName:
		if input == "" {
			return stepResult{reply: BabyLastNamePrompt}
		}
		d.LastName = input
		st.State = models.StateBabyGender
		return stepResult{reply: BabyGenderPrompt}

	case models.StateBabyGender:
		gender, ok := ParseGender(lower)
		if !ok {
			return stepResult{reply: InvalidGenderText}
		}
		d.Gender = gender
		st.State = models.StateBabyDateOfBirth
		return stepResult{reply: BabyDateOfBirthPrompt}

	case models.StateBabyDateOfBirth:
		dob, ok := ParseDate(input)
		if !ok {
			return stepResult{reply: InvalidDateText}
		}
		d.DateOfBirth = dob
		st.State = models.StateBabyNationality
		return stepResult{reply: BabyNationalityPrompt}

	case models.StateBabyNationality:
		if input == "" {
			return stepResult{reply: BabyNationalityPrompt}
		}
		d.Nationality = input
		st.State = models.StateBabyConfirm
		return stepResult{reply: babySummary(d)}

	case models.StateBabyConfirm:
		switch lower {
		case "y", "yes":
			return e.submitBaby(ctx, st)
		case "n", "no":
			st.State = models.StateBabyParentID
			st.Baby = &models.BabyDraft{}
			return stepResult{reply: BabyParentIDPrompt}
		default:
			return stepResult{reply: ConfirmRepromptText}
		}

	default:
		slog.Error("Baby flow in unknown state", "sender", st.Sender, "state", st.State)
		return stepResult{reply: withMenu(GenericErrorText), done: true}
	}
}

// submitBaby builds the registration payload from the draft and submits it.
// The status fields start at their pending sentinels; the backend populates
// the immunization schedule afterwards.
func (e *Engine) submitBaby(ctx context.Context, st *models.ConversationState) stepResult {
	d := st.Baby
	b := models.Baby{
		GuardianID:         d.GuardianID,
		FirstName:          d.FirstName,
		LastName:           d.LastName,
		Gender:             d.Gender,
		DateOfBirth:        d.DateOfBirth,
		Nationality:        d.Nationality,
		ImmunizationStatus: models.ImmunizationStatusPending,
		LastVaccine:        models.LastVaccineNone,
		NextAppointment:    nil,
	}

	if err := e.backend.RegisterBaby(ctx, b); err != nil {
		slog.Error("Baby registration failed", "error", err, "sender", st.Sender)
		return submissionError(err)
	}

	slog.Info("Baby registered", "sender", st.Sender, "guardian_id", d.GuardianID)
	return stepResult{reply: withMenu(BabySuccessText), done: true}
}

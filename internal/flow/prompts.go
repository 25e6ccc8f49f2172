package flow

import (
	"fmt"
	"strings"

	"github.com/chanjohealth/chanjobot/internal/models"
)

// User-facing text. Every reply the engine sends is assembled from these so
// tests can assert on exact wording.
const (
	MenuText = "Main menu:\n" +
		"1. Register a guardian\n" +
		"2. Register a baby\n" +
		"3. Create an appointment\n" +
		"4. Modify or cancel an appointment\n\n" +
		"Reply with 1-4. You can reply 'cancel' at any point to return here."

	IntroText = "Karibu! I am ChanjoBot, the immunization assistant for community health workers."

	AccessDeniedText = "Access denied. This service is only available to registered community health workers."

	CancelledText = "Okay, I have cancelled that."

	GenericErrorText = "Something went wrong on our side. Please try again."

	ConfirmRepromptText = "Please reply Y to submit or N to start over."
)

// Guardian registration prompts.
const (
	GuardianNamePrompt       = "Let's register a guardian. What is the guardian's full name?"
	GuardianNationalIDPrompt = "What is the guardian's national ID number?"
	GuardianGenderPrompt     = "What is the guardian's gender? Reply M or F."
	GuardianPhonePrompt      = "What is the guardian's WhatsApp number? (e.g. 0712345678 or +254712345678)"
	GuardianClinicPrompt     = "Which clinic is nearest to the guardian?"
	GuardianResidencePrompt  = "Where does the guardian live?"

	InvalidNationalIDText = "That doesn't look like a national ID. Please enter digits only, at least 5 of them."
	InvalidGenderText     = "Please reply with M or F."
	InvalidPhoneText      = "That doesn't look like a Kenyan mobile number. Please try again (e.g. 0712345678 or +254712345678)."

	GuardianSuccessText = "✅ Guardian registered successfully."
)

// Baby registration prompts.
const (
	BabyParentIDPrompt    = "Let's register a baby. What is the parent or guardian's national ID number?"
	BabyFirstNamePrompt   = "What is the baby's first name?"
	BabyLastNamePrompt    = "What is the baby's last name?"
	BabyGenderPrompt      = "What is the baby's gender? Reply M or F."
	BabyDateOfBirthPrompt = "What is the baby's date of birth? Use YYYY-MM-DD (e.g. 2025-03-14)."
	BabyNationalityPrompt = "What is the baby's nationality?"

	GuardianNotFoundText = "I could not find a guardian with that national ID. Please register the guardian first (option 1 from the menu)."
	InvalidDateText      = "That date doesn't look right. Please use YYYY-MM-DD (e.g. 2025-03-14)."

	BabySuccessText = "✅ Baby registered successfully. The clinic will generate the immunization schedule."
)

// Appointment creation prompts.
const (
	ApptBabyIDPrompt = "Let's create an appointment. What is the baby's ID number?"
	ApptDatePrompt   = "What date is the appointment? Use YYYY-MM-DD."
	ApptNotesPrompt  = "What is the purpose of the appointment?"

	InvalidBabyIDText = "Please enter the baby's numeric ID."

	ApptSuccessText = "✅ Appointment created successfully."
)

// Appointment modify/cancel prompts.
const (
	ModifyBabyIDPrompt = "Let's find an appointment. What is the baby's ID number?"
	ModifyActionPrompt = "Reply 1 to change the appointment, or 2 to cancel it."
	ModifyDetailsPrompt = "Send the new date and an optional note, separated by a comma.\n" +
		"For example: 2026-09-15, moved to afternoon clinic"
	ModifyConfirmCancelPrompt = "Reply 'yes' to confirm cancelling this appointment."

	NoAppointmentsText    = "There are no appointments for that baby."
	InvalidSelectionText  = "Please pick one of the listed numbers."
	InvalidActionText     = "Please reply 1 to change the appointment or 2 to cancel it."
	DefaultModifyNote     = "Rescheduled"
	ModifySuccessText     = "✅ Appointment updated successfully."
	CancelApptSuccessText = "✅ Appointment cancelled successfully."
)

// submissionFailedText wraps a backend error excerpt for the user. The flow
// state has already been cleared when this is sent, so the user must restart.
func submissionFailedText(detail string) string {
	return fmt.Sprintf("⚠️ That could not be saved: %s\n\nPlease start again.\n\n%s", detail, MenuText)
}

func withMenu(text string) string {
	return text + "\n\n" + MenuText
}

// guardianSummary renders the confirmation recap for a guardian registration.
func guardianSummary(d *models.GuardianDraft) string {
	var b strings.Builder
	b.WriteString("Please confirm the guardian's details:\n")
	fmt.Fprintf(&b, "Name: %s\n", d.Name)
	fmt.Fprintf(&b, "National ID: %s\n", d.NationalID)
	fmt.Fprintf(&b, "Gender: %s\n", d.Gender)
	fmt.Fprintf(&b, "WhatsApp: %s\n", d.Phone)
	fmt.Fprintf(&b, "Nearest clinic: %s\n", d.Clinic)
	fmt.Fprintf(&b, "Residence: %s\n\n", d.Residence)
	b.WriteString("Reply Y to submit or N to start over.")
	return b.String()
}

// babySummary renders the confirmation recap for a baby registration.
func babySummary(d *models.BabyDraft) string {
	var b strings.Builder
	b.WriteString("Please confirm the baby's details:\n")
	fmt.Fprintf(&b, "Name: %s %s\n", d.FirstName, d.LastName)
	fmt.Fprintf(&b, "Gender: %s\n", d.Gender)
	fmt.Fprintf(&b, "Date of birth: %s\n", d.DateOfBirth.Format("2006-01-02"))
	fmt.Fprintf(&b, "Nationality: %s\n", d.Nationality)
	fmt.Fprintf(&b, "Guardian ID: %d\n\n", d.GuardianID)
	b.WriteString("Reply Y to submit or N to start over.")
	return b.String()
}

// apptSummary renders the confirmation recap for an appointment creation.
// The sender is included as the audit field recorded against the appointment.
func apptSummary(d *models.AppointmentDraft, sender string) string {
	var b strings.Builder
	b.WriteString("Please confirm the appointment:\n")
	fmt.Fprintf(&b, "Baby ID: %d\n", d.BabyID)
	fmt.Fprintf(&b, "Date: %s\n", d.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Purpose: %s\n", d.Notes)
	fmt.Fprintf(&b, "Created by: %s\n\n", sender)
	b.WriteString("Reply Y to submit or N to start over.")
	return b.String()
}

// appointmentList renders a 1-based numbered list of appointments for selection.
func appointmentList(appts []models.Appointment) string {
	var b strings.Builder
	b.WriteString("Here are the appointments I found:\n")
	for i, a := range appts {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, a.Date.Format("2006-01-02"), a.Notes)
	}
	b.WriteString("\nReply with the number of the appointment.")
	return b.String()
}

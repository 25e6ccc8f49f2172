package flow

import (
	"strings"
	"testing"
	"time"

	"github.com/chanjohealth/chanjobot/internal/models"
)

func TestAppointmentFlowConfirmNoResetsEverything(t *testing.T) {
	e, st, msg, bc := newTestEngine()

	drive(e, "3", "7", "2026-09-15", "6 week checkup", "n")

	state, _ := st.GetConversationState(testSender)
	if state == nil {
		t.Fatal("expected state present after restart")
	}
	if state.State != models.StateApptBabyID {
		t.Errorf("expected restart at baby ID step, got %s", state.State)
	}
	if *state.Appointment != (models.AppointmentDraft{}) {
		t.Errorf("expected all collected fields cleared, got %+v", state.Appointment)
	}
	if msg.last().Body != ApptBabyIDPrompt {
		t.Errorf("expected baby ID re-prompt, got %q", msg.last().Body)
	}
	if len(bc.createdAppointments) != 0 {
		t.Errorf("expected no appointment created, got %d", len(bc.createdAppointments))
	}
}

func TestAppointmentFlowFullHappyPath(t *testing.T) {
	e, st, msg, bc := newTestEngine()

	drive(e, "3", "7", "2026-09-15", "6 week checkup")

	// Confirmation recap carries the CHW's sender id as the audit field.
	if !strings.Contains(msg.last().Body, testSender) {
		t.Errorf("expected creator id in confirmation, got %q", msg.last().Body)
	}

	drive(e, "y")

	if len(bc.createdAppointments) != 1 {
		t.Fatalf("expected exactly one appointment, got %d", len(bc.createdAppointments))
	}
	a := bc.createdAppointments[0]
	if a.BabyID != 7 || a.Notes != "6 week checkup" || a.CreatedBy != testSender {
		t.Errorf("unexpected payload: %+v", a)
	}
	wantDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	if !a.Date.Equal(wantDate) {
		t.Errorf("expected date %v, got %v", wantDate, a.Date)
	}

	state, _ := st.GetConversationState(testSender)
	if state != nil {
		t.Errorf("expected state deleted on success, got %+v", state)
	}
	if !strings.Contains(msg.last().Body, ApptSuccessText) {
		t.Errorf("expected success message, got %q", msg.last().Body)
	}
}

func TestAppointmentFlowInvalidBabyID(t *testing.T) {
	e, st, msg, _ := newTestEngine()

	drive(e, "3", "not-a-number")

	state, _ := st.GetConversationState(testSender)
	if state.State != models.StateApptBabyID {
		t.Errorf("expected step unchanged, got %s", state.State)
	}
	if msg.last().Body != InvalidBabyIDText {
		t.Errorf("expected baby ID re-prompt, got %q", msg.last().Body)
	}
}

func TestAppointmentFlowInvalidDate(t *testing.T) {
	e, st, msg, _ := newTestEngine()

	drive(e, "3", "7", "next tuesday")

	state, _ := st.GetConversationState(testSender)
	if state.State != models.StateApptDate {
		t.Errorf("expected date step unchanged, got %s", state.State)
	}
	if msg.last().Body != InvalidDateText {
		t.Errorf("expected date re-prompt, got %q", msg.last().Body)
	}
}

package flow

import (
	"strings"
	"testing"
	"time"

	"github.com/chanjohealth/chanjobot/internal/models"
)

func twoAppointments() []models.Appointment {
	return []models.Appointment{
		{ID: 11, BabyID: 7, Date: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), Notes: "6 week visit"},
		{ID: 12, BabyID: 7, Date: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), Notes: "10 week visit"},
	}
}

func TestModifyFlowNoAppointmentsTerminates(t *testing.T) {
	e, st, msg, _ := newTestEngine()

	drive(e, "4", "7")

	state, _ := st.GetConversationState(testSender)
	if state != nil {
		t.Errorf("expected state deleted, got %+v", state)
	}
	if !strings.Contains(msg.last().Body, NoAppointmentsText) {
		t.Errorf("expected no-appointments message, got %q", msg.last().Body)
	}
}

func TestModifyFlowListsAppointments(t *testing.T) {
	e, st, msg, bc := newTestEngine()
	bc.appointments[7] = twoAppointments()

	drive(e, "4", "7")

	state, _ := st.GetConversationState(testSender)
	if state == nil || state.State != models.StateModifySelect {
		t.Fatalf("expected selection step, got %+v", state)
	}
	if len(state.Modify.Appointments) != 2 {
		t.Errorf("expected 2 appointments stored, got %d", len(state.Modify.Appointments))
	}
	body := msg.last().Body
	if !strings.Contains(body, "1. 2026-09-01: 6 week visit") || !strings.Contains(body, "2. 2026-10-01: 10 week visit") {
		t.Errorf("expected numbered list, got %q", body)
	}
}

func TestModifyFlowOutOfRangeSelectionRepromptsUnchanged(t *testing.T) {
	e, st, msg, bc := newTestEngine()
	bc.appointments[7] = twoAppointments()

	drive(e, "4", "7", "5")

	state, _ := st.GetConversationState(testSender)
	if state.State != models.StateModifySelect {
		t.Errorf("expected selection step unchanged, got %s", state.State)
	}
	if len(state.Modify.Appointments) != 2 {
		t.Errorf("appointments mutated by invalid selection: %+v", state.Modify.Appointments)
	}
	if !strings.Contains(msg.last().Body, InvalidSelectionText) {
		t.Errorf("expected selection re-prompt, got %q", msg.last().Body)
	}
}

func TestModifyFlowUpdateAppointment(t *testing.T) {
	e, st, msg, bc := newTestEngine()
	bc.appointments[7] = twoAppointments()

	drive(e, "4", "7", "2", "1", "2026-11-05, moved to afternoon clinic")

	u, ok := bc.updatedAppointments[12]
	if !ok {
		t.Fatalf("expected appointment 12 updated, got %+v", bc.updatedAppointments)
	}
	wantDate := time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC)
	if !u.Date.Equal(wantDate) || u.Notes != "moved to afternoon clinic" {
		t.Errorf("unexpected update: %+v", u)
	}

	state, _ := st.GetConversationState(testSender)
	if state != nil {
		t.Errorf("expected state deleted on success, got %+v", state)
	}
	if !strings.Contains(msg.last().Body, ModifySuccessText) {
		t.Errorf("expected success message, got %q", msg.last().Body)
	}
}

func TestModifyFlowUpdateDefaultsNote(t *testing.T) {
	e, _, _, bc := newTestEngine()
	bc.appointments[7] = twoAppointments()

	drive(e, "4", "7", "1", "1", "2026-11-05")

	u, ok := bc.updatedAppointments[11]
	if !ok {
		t.Fatalf("expected appointment 11 updated, got %+v", bc.updatedAppointments)
	}
	if u.Notes != DefaultModifyNote {
		t.Errorf("expected default note %q, got %q", DefaultModifyNote, u.Notes)
	}
}

func TestModifyFlowUpdateInvalidDateReprompts(t *testing.T) {
	e, st, msg, bc := newTestEngine()
	bc.appointments[7] = twoAppointments()

	drive(e, "4", "7", "1", "1", "sometime soon, note")

	state, _ := st.GetConversationState(testSender)
	if state.State != models.StateModifyNewDetails {
		t.Errorf("expected details step unchanged, got %s", state.State)
	}
	if !strings.Contains(msg.last().Body, InvalidDateText) {
		t.Errorf("expected date re-prompt, got %q", msg.last().Body)
	}
}

func TestModifyFlowCancelAppointment(t *testing.T) {
	e, st, msg, bc := newTestEngine()
	bc.appointments[7] = twoAppointments()

	drive(e, "4", "7", "1", "2", "yes")

	if len(bc.deletedAppointments) != 1 || bc.deletedAppointments[0] != 11 {
		t.Errorf("expected appointment 11 deleted, got %+v", bc.deletedAppointments)
	}
	state, _ := st.GetConversationState(testSender)
	if state != nil {
		t.Errorf("expected state deleted on success, got %+v", state)
	}
	if !strings.Contains(msg.last().Body, CancelApptSuccessText) {
		t.Errorf("expected cancellation message, got %q", msg.last().Body)
	}
}

func TestModifyFlowCancelNotConfirmedReturnsToAction(t *testing.T) {
	e, st, msg, bc := newTestEngine()
	bc.appointments[7] = twoAppointments()

	drive(e, "4", "7", "1", "2", "no thanks")

	state, _ := st.GetConversationState(testSender)
	if state == nil {
		t.Fatal("expected state present")
	}
	if state.State != models.StateModifyAction {
		t.Errorf("expected return to action step, got %s", state.State)
	}
	if msg.last().Body != ModifyActionPrompt {
		t.Errorf("expected action prompt, got %q", msg.last().Body)
	}
	if len(bc.deletedAppointments) != 0 {
		t.Errorf("expected no deletion, got %+v", bc.deletedAppointments)
	}
}

func TestModifyFlowInvalidActionReprompts(t *testing.T) {
	e, st, msg, bc := newTestEngine()
	bc.appointments[7] = twoAppointments()

	drive(e, "4", "7", "1", "maybe")

	state, _ := st.GetConversationState(testSender)
	if state.State != models.StateModifyAction {
		t.Errorf("expected action step unchanged, got %s", state.State)
	}
	if msg.last().Body != InvalidActionText {
		t.Errorf("expected action re-prompt, got %q", msg.last().Body)
	}
}

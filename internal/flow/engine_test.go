package flow

import (
	"context"
	"strings"
	"testing"

	"github.com/chanjohealth/chanjobot/internal/models"
)

func TestUnauthorizedSenderRejected(t *testing.T) {
	e, st, msg, _ := newTestEngine()

	if err := e.HandleMessage(context.Background(), "254799999999", "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(msg.sent) != 1 || msg.sent[0].Body != AccessDeniedText {
		t.Errorf("expected exactly the access-denied reply, got %+v", msg.sent)
	}
	state, _ := st.GetConversationState("254799999999")
	if state != nil {
		t.Errorf("expected no state created for unauthorized sender, got %+v", state)
	}
}

func TestMenuStartsGuardianFlow(t *testing.T) {
	e, st, msg, _ := newTestEngine()

	drive(e, "1")

	state, _ := st.GetConversationState(testSender)
	if state == nil {
		t.Fatal("expected state created")
	}
	if state.Flow != models.FlowTypeRegisterGuardian || state.State != models.StateGuardianName {
		t.Errorf("expected fresh guardian flow, got flow=%s state=%s", state.Flow, state.State)
	}
	if state.Guardian == nil || *state.Guardian != (models.GuardianDraft{}) {
		t.Errorf("expected empty guardian draft, got %+v", state.Guardian)
	}
	if msg.last().Body != GuardianNamePrompt {
		t.Errorf("expected name prompt, got %q", msg.last().Body)
	}
}

func TestMenuStartsEachFlow(t *testing.T) {
	cases := []struct {
		input string
		flow  models.FlowType
		state models.StateType
	}{
		{"1", models.FlowTypeRegisterGuardian, models.StateGuardianName},
		{"2", models.FlowTypeRegisterBaby, models.StateBabyParentID},
		{"3", models.FlowTypeCreateAppointment, models.StateApptBabyID},
		{"4", models.FlowTypeModifyAppointment, models.StateModifyBabyID},
	}
	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			e, st, _, _ := newTestEngine()
			drive(e, c.input)
			state, _ := st.GetConversationState(testSender)
			if state == nil {
				t.Fatal("expected state created")
			}
			if state.Flow != c.flow || state.State != c.state {
				t.Errorf("expected %s/%s, got %s/%s", c.flow, c.state, state.Flow, state.State)
			}
		})
	}
}

func TestMenuUnknownInputSendsIntroAndMenu(t *testing.T) {
	e, st, msg, _ := newTestEngine()

	drive(e, "hello there")

	body := msg.last().Body
	if !strings.Contains(body, IntroText) || !strings.Contains(body, MenuText) {
		t.Errorf("expected intro followed by menu, got %q", body)
	}
	state, _ := st.GetConversationState(testSender)
	if state != nil {
		t.Errorf("expected no state created, got %+v", state)
	}
}

func TestCancelAtMenuRestatesMenu(t *testing.T) {
	e, _, msg, _ := newTestEngine()

	drive(e, "CANCEL")

	if msg.last().Body != MenuText {
		t.Errorf("expected menu restated, got %q", msg.last().Body)
	}
}

func TestCancelAtAnyStepDeletesStateAndShowsMenu(t *testing.T) {
	// Walk each flow a few steps in, then cancel.
	cases := []struct {
		name string
		msgs []string
	}{
		{"guardian at name", []string{"1"}},
		{"guardian mid-flow", []string{"1", "Jane Wanjiru", "12345678"}},
		{"baby at parent id", []string{"2"}},
		{"appointment at date", []string{"3", "3"}},
		{"modify at baby id", []string{"4"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e, st, msg, bc := newTestEngine()
			bc.guardians["12345678"] = models.Guardian{ID: 42, NationalID: "12345678"}

			drive(e, c.msgs...)
			drive(e, "cancel")

			state, _ := st.GetConversationState(testSender)
			if state != nil {
				t.Errorf("expected state deleted after cancel, got %+v", state)
			}
			body := msg.last().Body
			if !strings.Contains(body, CancelledText) || !strings.Contains(body, MenuText) {
				t.Errorf("expected cancellation with menu, got %q", body)
			}
		})
	}
}

func TestConcurrentMessagesForSameSenderSerialized(t *testing.T) {
	e, st, _, _ := newTestEngine()

	// Fire the menu selection and the first answer concurrently. Per-sender
	// locking means the state must end up internally consistent: either both
	// applied in some order or the second was treated as a menu input.
	done := make(chan struct{}, 2)
	go func() {
		e.HandleMessage(context.Background(), testSender, "1")
		done <- struct{}{}
	}()
	go func() {
		e.HandleMessage(context.Background(), testSender, "1")
		done <- struct{}{}
	}()
	<-done
	<-done

	state, err := st.GetConversationState(testSender)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state == nil {
		t.Fatal("expected state present")
	}
	if state.Flow != models.FlowTypeRegisterGuardian {
		t.Errorf("expected guardian flow, got %s", state.Flow)
	}
}

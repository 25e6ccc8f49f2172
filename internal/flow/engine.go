// Package flow implements the per-sender conversation state machine that
// drives ChanjoBot's intake flows.
//
// Each flow is a finite sequence of named states. A step handler validates
// one inbound message, either re-prompts without advancing or records the
// value in the flow's draft and moves to the next state, and at the
// confirmation state submits the accumulated record to the clinic backend.
package flow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chanjohealth/chanjobot/internal/backend"
	"github.com/chanjohealth/chanjobot/internal/models"
	"github.com/chanjohealth/chanjobot/internal/store"
)

// BackendClient is the subset of the clinic backend API the flows submit to.
type BackendClient interface {
	RegisterGuardian(ctx context.Context, g models.Guardian) error
	FindGuardianByNationalID(ctx context.Context, nationalID string) (*models.Guardian, error)
	RegisterBaby(ctx context.Context, b models.Baby) error
	CreateAppointment(ctx context.Context, a models.Appointment) error
	ListAppointments(ctx context.Context, babyID int64) ([]models.Appointment, error)
	UpdateAppointment(ctx context.Context, id int64, u models.AppointmentUpdate) error
	DeleteAppointment(ctx context.Context, id int64) error
}

// MessagingService sends replies back to the CHW.
type MessagingService interface {
	SendMessage(ctx context.Context, to string, body string) error
}

// stepResult is what a step handler produces for one inbound message: the
// reply to send and whether the flow has terminated (state to be deleted).
type stepResult struct {
	reply string
	done  bool
}

// Engine routes inbound messages to the active flow for each sender.
type Engine struct {
	store   store.Store
	backend BackendClient
	msg     MessagingService
	allowed map[string]struct{}

	// Processing is serialized per sender: concurrent webhook deliveries for
	// the same sender would otherwise interleave store reads and writes.
	mu          sync.Mutex
	senderLocks map[string]*sync.Mutex
}

// NewEngine creates a flow engine. allowedSenders is the allow-list of CHW
// phone numbers (digits-only, country-code-prefixed).
func NewEngine(st store.Store, bc BackendClient, msg MessagingService, allowedSenders []string) *Engine {
	allowed := make(map[string]struct{}, len(allowedSenders))
	for _, s := range allowedSenders {
		s = strings.TrimSpace(s)
		if s != "" {
			allowed[s] = struct{}{}
		}
	}
	slog.Debug("Engine created", "allowed_senders", len(allowed))
	return &Engine{
		store:       st,
		backend:     bc,
		msg:         msg,
		allowed:     allowed,
		senderLocks: make(map[string]*sync.Mutex),
	}
}

func (e *Engine) lockFor(sender string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.senderLocks[sender]
	if !ok {
		l = &sync.Mutex{}
		e.senderLocks[sender] = l
	}
	return l
}

// send delivers a reply. Delivery failures are logged and absorbed: the
// provider acknowledged the inbound message long ago, so there is nobody
// left to propagate the error to.
func (e *Engine) send(ctx context.Context, to, body string) {
	if err := e.msg.SendMessage(ctx, to, body); err != nil {
		slog.Error("Engine failed to send reply", "error", err, "to", to)
	}
}

// HandleMessage processes one inbound text message from a sender. It never
// returns an error for user mistakes; only infrastructure failures (store
// unavailable) surface, and those have already been reported to the user.
func (e *Engine) HandleMessage(ctx context.Context, sender, text string) error {
	if _, ok := e.allowed[sender]; !ok {
		slog.Info("Engine rejected unauthorized sender", "sender", sender)
		e.send(ctx, sender, AccessDeniedText)
		return nil
	}

	lock := e.lockFor(sender)
	lock.Lock()
	defer lock.Unlock()

	input := strings.TrimSpace(text)
	lower := strings.ToLower(input)

	st, err := e.store.GetConversationState(sender)
	if err != nil {
		slog.Error("Engine failed to load conversation state", "error", err, "sender", sender)
		e.send(ctx, sender, GenericErrorText)
		return err
	}

	// Universal cancel, checked before any flow-specific step logic.
	if lower == "cancel" {
		if st != nil && st.Flow != models.FlowTypeMenu {
			if err := e.store.DeleteConversationState(sender); err != nil {
				slog.Error("Engine failed to delete state on cancel", "error", err, "sender", sender)
				e.send(ctx, sender, GenericErrorText)
				return err
			}
			slog.Info("Engine flow cancelled", "sender", sender, "flow", st.Flow, "state", st.State)
			e.send(ctx, sender, withMenu(CancelledText))
			return nil
		}
		e.send(ctx, sender, MenuText)
		return nil
	}

	if st == nil || st.Flow == models.FlowTypeMenu {
		return e.handleMenu(ctx, sender, input)
	}

	var res stepResult
	switch st.Flow {
	case models.FlowTypeRegisterGuardian:
		res = e.guardianStep(ctx, st, input, lower)
	case models.FlowTypeRegisterBaby:
		res = e.babyStep(ctx, st, input, lower)
	case models.FlowTypeCreateAppointment:
		res = e.appointmentStep(ctx, st, input, lower)
	case models.FlowTypeModifyAppointment:
		res = e.modifyStep(ctx, st, input, lower)
	default:
		slog.Error("Engine found state with unknown flow, resetting", "sender", sender, "flow", st.Flow)
		res = stepResult{reply: withMenu(GenericErrorText), done: true}
	}

	if res.done {
		if err := e.store.DeleteConversationState(sender); err != nil {
			slog.Error("Engine failed to delete conversation state", "error", err, "sender", sender)
			e.send(ctx, sender, GenericErrorText)
			return err
		}
	} else {
		st.UpdatedAt = time.Now().UTC()
		if err := e.store.SaveConversationState(*st); err != nil {
			slog.Error("Engine failed to save conversation state", "error", err, "sender", sender)
			e.send(ctx, sender, GenericErrorText)
			return err
		}
	}

	e.send(ctx, sender, res.reply)
	return nil
}

// handleMenu interprets input from a sender with no active flow.
func (e *Engine) handleMenu(ctx context.Context, sender, input string) error {
	var flowType models.FlowType
	switch input {
	case "1":
		flowType = models.FlowTypeRegisterGuardian
	case "2":
		flowType = models.FlowTypeRegisterBaby
	case "3":
		flowType = models.FlowTypeCreateAppointment
	case "4":
		flowType = models.FlowTypeModifyAppointment
	default:
		e.send(ctx, sender, IntroText+"\n\n"+MenuText)
		return nil
	}

	now := time.Now().UTC()
	st := models.ConversationState{
		Sender:    sender,
		Flow:      flowType,
		State:     flowType.FirstState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch flowType {
	case models.FlowTypeRegisterGuardian:
		st.Guardian = &models.GuardianDraft{}
	case models.FlowTypeRegisterBaby:
		st.Baby = &models.BabyDraft{}
	case models.FlowTypeCreateAppointment:
		st.Appointment = &models.AppointmentDraft{}
	case models.FlowTypeModifyAppointment:
		st.Modify = &models.ModifyDraft{}
	}

	if err := e.store.SaveConversationState(st); err != nil {
		slog.Error("Engine failed to create conversation state", "error", err, "sender", sender, "flow", flowType)
		e.send(ctx, sender, GenericErrorText)
		return err
	}
	slog.Info("Engine flow started", "sender", sender, "flow", flowType)

	e.send(ctx, sender, firstPrompt(flowType))
	return nil
}

func firstPrompt(f models.FlowType) string {
	switch f {
	case models.FlowTypeRegisterGuardian:
		return GuardianNamePrompt
	case models.FlowTypeRegisterBaby:
		return BabyParentIDPrompt
	case models.FlowTypeCreateAppointment:
		return ApptBabyIDPrompt
	default:
		return ModifyBabyIDPrompt
	}
}

// submissionError converts a backend failure into the user-visible reply.
// The backend's error body is surfaced truncated; transport errors get a
// generic line. Either way the flow terminates and the user must restart.
func submissionError(err error) stepResult {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return stepResult{reply: submissionFailedText(apiErr.Body), done: true}
	}
	return stepResult{reply: submissionFailedText("the clinic system could not be reached"), done: true}
}

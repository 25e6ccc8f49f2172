package flow

import (
	"context"

	"github.com/chanjohealth/chanjobot/internal/models"
	"github.com/chanjohealth/chanjobot/internal/store"
)

// fakeMessenger records every reply the engine sends.
type fakeMessenger struct {
	sent []sentMessage
}

type sentMessage struct {
	To   string
	Body string
}

func (f *fakeMessenger) SendMessage(ctx context.Context, to string, body string) error {
	f.sent = append(f.sent, sentMessage{To: to, Body: body})
	return nil
}

func (f *fakeMessenger) last() sentMessage {
	if len(f.sent) == 0 {
		return sentMessage{}
	}
	return f.sent[len(f.sent)-1]
}

// fakeBackend is an in-memory stand-in for the clinic backend. Guardians are
// looked up by national ID; appointments by baby ID. Every mutating call is
// recorded. Setting err makes all calls fail with it.
type fakeBackend struct {
	guardians    map[string]models.Guardian
	appointments map[int64][]models.Appointment
	err          error

	registeredGuardians []models.Guardian
	registeredBabies    []models.Baby
	createdAppointments []models.Appointment
	updatedAppointments map[int64]models.AppointmentUpdate
	deletedAppointments []int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		guardians:           make(map[string]models.Guardian),
		appointments:        make(map[int64][]models.Appointment),
		updatedAppointments: make(map[int64]models.AppointmentUpdate),
	}
}

func (b *fakeBackend) RegisterGuardian(ctx context.Context, g models.Guardian) error {
	if b.err != nil {
		return b.err
	}
	b.registeredGuardians = append(b.registeredGuardians, g)
	return nil
}

func (b *fakeBackend) FindGuardianByNationalID(ctx context.Context, nationalID string) (*models.Guardian, error) {
	if b.err != nil {
		return nil, b.err
	}
	g, ok := b.guardians[nationalID]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (b *fakeBackend) RegisterBaby(ctx context.Context, baby models.Baby) error {
	if b.err != nil {
		return b.err
	}
	b.registeredBabies = append(b.registeredBabies, baby)
	return nil
}

func (b *fakeBackend) CreateAppointment(ctx context.Context, a models.Appointment) error {
	if b.err != nil {
		return b.err
	}
	b.createdAppointments = append(b.createdAppointments, a)
	return nil
}

func (b *fakeBackend) ListAppointments(ctx context.Context, babyID int64) ([]models.Appointment, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.appointments[babyID], nil
}

func (b *fakeBackend) UpdateAppointment(ctx context.Context, id int64, u models.AppointmentUpdate) error {
	if b.err != nil {
		return b.err
	}
	b.updatedAppointments[id] = u
	return nil
}

func (b *fakeBackend) DeleteAppointment(ctx context.Context, id int64) error {
	if b.err != nil {
		return b.err
	}
	b.deletedAppointments = append(b.deletedAppointments, id)
	return nil
}

// testSender is the authorized CHW used throughout the flow tests.
const testSender = "254700000001"

// newTestEngine wires an engine with an in-memory store, a recording
// messenger and a fake backend.
func newTestEngine() (*Engine, *store.InMemoryStore, *fakeMessenger, *fakeBackend) {
	st := store.NewInMemoryStore()
	msg := &fakeMessenger{}
	bc := newFakeBackend()
	e := NewEngine(st, bc, msg, []string{testSender})
	return e, st, msg, bc
}

// drive feeds a sequence of messages from the test sender through the engine.
func drive(e *Engine, msgs ...string) {
	ctx := context.Background()
	for _, m := range msgs {
		e.HandleMessage(ctx, testSender, m)
	}
}

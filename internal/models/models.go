// Package models defines core data structures for ChanjoBot.
//
// It covers the per-sender conversation state, the per-flow draft records
// accumulated step by step, and the domain records exchanged with the clinic
// backend API.
package models

import "time"

// ConversationState represents the current position of one sender in one flow.
// At most one flow is active per sender at any time. Exactly one of the draft
// pointers is non-nil while a flow is active, matching Flow.
type ConversationState struct {
	Sender      string            `json:"sender"`
	Flow        FlowType          `json:"flow"`
	State       StateType         `json:"state"`
	Guardian    *GuardianDraft    `json:"guardian,omitempty"`
	Baby        *BabyDraft        `json:"baby,omitempty"`
	Appointment *AppointmentDraft `json:"appointment,omitempty"`
	Modify      *ModifyDraft      `json:"modify,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// GuardianDraft accumulates the fields of a guardian registration.
type GuardianDraft struct {
	Name       string `json:"name,omitempty"`
	NationalID string `json:"national_id,omitempty"`
	Gender     string `json:"gender,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Clinic     string `json:"clinic,omitempty"`
	Residence  string `json:"residence,omitempty"`
}

// BabyDraft accumulates the fields of a baby registration. GuardianID is
// resolved from the parent's national ID before any other field is collected.
type BabyDraft struct {
	GuardianID       int64     `json:"guardian_id,omitempty"`
	ParentNationalID string    `json:"parent_national_id,omitempty"`
	FirstName        string    `json:"first_name,omitempty"`
	LastName         string    `json:"last_name,omitempty"`
	Gender           string    `json:"gender,omitempty"`
	DateOfBirth      time.Time `json:"date_of_birth,omitempty"`
	Nationality      string    `json:"nationality,omitempty"`
}

// AppointmentDraft accumulates the fields of an appointment creation.
type AppointmentDraft struct {
	BabyID int64     `json:"baby_id,omitempty"`
	Date   time.Time `json:"date,omitempty"`
	Notes  string    `json:"notes,omitempty"`
}

// ModifyDraft carries the lookup results and selection of the appointment
// modify/cancel flow.
type ModifyDraft struct {
	BabyID       int64         `json:"baby_id,omitempty"`
	Appointments []Appointment `json:"appointments,omitempty"`
	Selected     int           `json:"selected,omitempty"` // index into Appointments
}

// Sentinel status values assigned at baby registration. The backend owns
// these fields afterwards and populates the immunization schedule.
const (
	ImmunizationStatusPending = "pending schedule"
	LastVaccineNone           = "none"
)

// Guardian is a guardian record as exchanged with the clinic backend.
type Guardian struct {
	ID         int64  `json:"id,omitempty"`
	Name       string `json:"name"`
	NationalID string `json:"national_id"`
	Gender     string `json:"gender"`
	Phone      string `json:"phone"`
	Clinic     string `json:"nearest_clinic"`
	Residence  string `json:"residence"`
}

// Baby is a baby record as exchanged with the clinic backend.
type Baby struct {
	ID                 int64      `json:"id,omitempty"`
	GuardianID         int64      `json:"guardian_id"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	Gender             string     `json:"gender"`
	DateOfBirth        time.Time  `json:"date_of_birth"`
	Nationality        string     `json:"nationality"`
	ImmunizationStatus string     `json:"immunization_status"`
	LastVaccine        string     `json:"last_vaccine"`
	NextAppointment    *time.Time `json:"next_appointment"`
}

// Appointment is an appointment record as exchanged with the clinic backend.
type Appointment struct {
	ID        int64     `json:"id,omitempty"`
	BabyID    int64     `json:"baby_id"`
	Date      time.Time `json:"date"`
	Notes     string    `json:"notes"`
	CreatedBy string    `json:"created_by"`
}

// AppointmentUpdate carries the mutable fields of an appointment modification.
type AppointmentUpdate struct {
	Date  time.Time `json:"date"`
	Notes string    `json:"notes"`
}

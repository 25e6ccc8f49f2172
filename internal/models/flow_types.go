// Package models defines flow type definitions to avoid circular imports.
package models

// FlowType represents a specific intake flow a sender can be in.
type FlowType string

// StateType represents a named step within a flow.
type StateType string

// Flow type constants. FlowTypeMenu means no flow is active.
const (
	FlowTypeMenu              FlowType = "menu"
	FlowTypeRegisterGuardian  FlowType = "register_guardian"
	FlowTypeRegisterBaby      FlowType = "register_baby"
	FlowTypeCreateAppointment FlowType = "create_appointment"
	FlowTypeModifyAppointment FlowType = "modify_appointment"
)

// State constants for the guardian registration flow.
const (
	StateGuardianName       StateType = "GUARDIAN_NAME"
	StateGuardianNationalID StateType = "GUARDIAN_NATIONAL_ID"
	StateGuardianGender     StateType = "GUARDIAN_GENDER"
	StateGuardianPhone      StateType = "GUARDIAN_PHONE"
	StateGuardianClinic     StateType = "GUARDIAN_CLINIC"
	StateGuardianResidence  StateType = "GUARDIAN_RESIDENCE"
	StateGuardianConfirm    StateType = "GUARDIAN_CONFIRM"
)

// State constants for the baby registration flow.
const (
	StateBabyParentID    StateType = "BABY_PARENT_ID"
	StateBabyFirstName   StateType = "BABY_FIRST_NAME"
	StateBabyLastName    StateType = "BABY_LAST_NAME"
	StateBabyGender      StateType = "BABY_GENDER"
	StateBabyDateOfBirth StateType = "BABY_DATE_OF_BIRTH"
	StateBabyNationality StateType = "BABY_NATIONALITY"
	StateBabyConfirm     StateType = "BABY_CONFIRM"
)

// State constants for the appointment creation flow.
const (
	StateApptBabyID  StateType = "APPT_BABY_ID"
	StateApptDate    StateType = "APPT_DATE"
	StateApptNotes   StateType = "APPT_NOTES"
	StateApptConfirm StateType = "APPT_CONFIRM"
)

// State constants for the appointment modify/cancel flow.
const (
	StateModifyBabyID        StateType = "MODIFY_BABY_ID"
	StateModifySelect        StateType = "MODIFY_SELECT"
	StateModifyAction        StateType = "MODIFY_ACTION"
	StateModifyNewDetails    StateType = "MODIFY_NEW_DETAILS"
	StateModifyConfirmCancel StateType = "MODIFY_CONFIRM_CANCEL"
)

// FirstState returns the initial state for a flow, or empty for the menu.
func (f FlowType) FirstState() StateType {
	switch f {
	case FlowTypeRegisterGuardian:
		return StateGuardianName
	case FlowTypeRegisterBaby:
		return StateBabyParentID
	case FlowTypeCreateAppointment:
		return StateApptBabyID
	case FlowTypeModifyAppointment:
		return StateModifyBabyID
	default:
		return ""
	}
}

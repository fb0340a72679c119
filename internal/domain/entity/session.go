package entity

import "github.com/google/uuid"

// Session is the authenticated caller, passed explicitly to every
// operation that depends on identity.
type Session struct {
	UserID  uuid.UUID
	Email   string
	RoleID  int
	TokenID string
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.RoleID == RoleIDAdmin
}

func (s *Session) IsPsychiatrist() bool {
	return s != nil && s.RoleID == RoleIDPsychiatrist
}

func (s *Session) IsPatient() bool {
	return s != nil && s.RoleID == RoleIDPatient
}

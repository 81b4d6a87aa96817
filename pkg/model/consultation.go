package model

import "fmt"

// ConsultationType classifies how the appointment takes place.
type ConsultationType string

const (
	ConsultationInPerson ConsultationType = "in_person"
	ConsultationVirtual  ConsultationType = "virtual"
	ConsultationPhone    ConsultationType = "phone"
)

func (t ConsultationType) IsValid() bool {
	switch t {
	case ConsultationInPerson, ConsultationVirtual, ConsultationPhone:
		return true
	}
	return false
}

func (t ConsultationType) String() string {
	return string(t)
}

// ParseConsultationType converts a string to a ConsultationType, returning an error if invalid.
func ParseConsultationType(s string) (ConsultationType, error) {
	t := ConsultationType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid consultation type: %s", s)
	}
	return t, nil
}

package model

import "time"

// Interviewer is read-only reference data owned by the directory.
type Interviewer struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Company         string    `json:"company"`
	Position        string    `json:"position"`
	Expertise       []Subject `json:"expertise"`
	Availability    bool      `json:"availability"`
	Rating          float64   `json:"rating"`
	TotalInterviews int       `json:"total_interviews"`
	CreatedAt       time.Time `json:"created_at"`
}

// HasExpertise reports whether the interviewer covers the subject.
func (i *Interviewer) HasExpertise(subject Subject) bool {
	for _, e := range i.Expertise {
		if e == subject {
			return true
		}
	}
	return false
}

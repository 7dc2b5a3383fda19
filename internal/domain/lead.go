package domain

import "time"

// Lead is a quote request submitted from the marketing site.
type Lead struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email"`
	Phone       string    `db:"phone" json:"phone"`
	Company     string    `db:"company" json:"company,omitempty"`
	ProjectType string    `db:"project_type" json:"project_type"`
	Address     string    `db:"address" json:"address,omitempty"`
	PostalCode  string    `db:"postal_code" json:"postal_code,omitempty"`
	City        string    `db:"city" json:"city,omitempty"`
	Budget      string    `db:"budget" json:"budget,omitempty"`
	Timeline    string    `db:"timeline" json:"timeline,omitempty"`
	Message     string    `db:"message" json:"message,omitempty"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQuoted    = "quoted"
	LeadStatusWon       = "won"
	LeadStatusLost      = "lost"
)

var leadStatuses = []string{LeadStatusNew, LeadStatusContacted, LeadStatusQuoted, LeadStatusWon, LeadStatusLost}

func LeadStatuses() []string {
	return append([]string(nil), leadStatuses...)
}

func ValidLeadStatus(s string) bool {
	return contains(leadStatuses, s)
}

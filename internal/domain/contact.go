package domain

import "time"

// ContactSubmission is a message sent through the contact form.
type ContactSubmission struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	Subject   string    `db:"subject" json:"subject"`
	Message   string    `db:"message" json:"message"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

const (
	ContactStatusNew      = "new"
	ContactStatusRead     = "read"
	ContactStatusReplied  = "replied"
	ContactStatusArchived = "archived"
)

var contactStatuses = []string{ContactStatusNew, ContactStatusRead, ContactStatusReplied, ContactStatusArchived}

func ContactStatuses() []string {
	return append([]string(nil), contactStatuses...)
}

func ValidContactStatus(s string) bool {
	return contains(contactStatuses, s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

package contacts

// SubmitRequest is the contact form body.
type SubmitRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,mail"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

type SubmitResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

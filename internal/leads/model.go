package leads

// SubmitRequest is the quote request form body.
type SubmitRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Email       string `json:"email" validate:"required,mail"`
	Phone       string `json:"phone" validate:"required,phone"`
	Company     string `json:"company" validate:"max=200"`
	ProjectType string `json:"project_type" validate:"required,max=100"`
	Address     string `json:"address" validate:"max=300"`
	PostalCode  string `json:"postal_code" validate:"omitempty,postcode"`
	City        string `json:"city" validate:"max=100"`
	Budget      string `json:"budget" validate:"max=100"`
	Timeline    string `json:"timeline" validate:"max=100"`
	Message     string `json:"message" validate:"max=5000"`
}

type SubmitResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

package cancel_booking

// CancelRequest HTTP request model
type CancelRequest struct {
	Reason string `json:"reason"`
}

// CancelResponse HTTP response model
type CancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

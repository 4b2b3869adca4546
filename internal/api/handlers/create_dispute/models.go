package create_dispute

// CreateDisputeRequest HTTP request model
type CreateDisputeRequest struct {
	Reason string `json:"reason"`
}

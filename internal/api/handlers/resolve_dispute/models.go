package resolve_dispute

// ResolveDisputeRequest HTTP request model
type ResolveDisputeRequest struct {
	Resolution string  `json:"resolution"`
	Notes      *string `json:"notes,omitempty"`
}

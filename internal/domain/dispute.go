package domain

// DisputeStatus represents the lifecycle of a dispute flagged on a booking
type DisputeStatus string

const (
	DisputeOpen                DisputeStatus = "open"
	DisputeResolvedForCustomer DisputeStatus = "resolved_for_customer"
	DisputeResolvedForProvider DisputeStatus = "resolved_for_provider"
	DisputeClosedNoResolution  DisputeStatus = "closed_no_resolution"
)

// ValidDisputeStatuses все допустимые значения статуса спора
var ValidDisputeStatuses = []DisputeStatus{
	DisputeOpen,
	DisputeResolvedForCustomer,
	DisputeResolvedForProvider,
	DisputeClosedNoResolution,
}

// ParseDisputeStatus конвертирует строку в DisputeStatus с валидацией
func ParseDisputeStatus(s string) (DisputeStatus, bool) {
	status := DisputeStatus(s)
	for _, valid := range ValidDisputeStatuses {
		if status == valid {
			return status, true
		}
	}
	return "", false
}

// IsResolution returns true for the two resolutions that close the dispute
// in favour of one of the parties
func (s DisputeStatus) IsResolution() bool {
	return s == DisputeResolvedForCustomer || s == DisputeResolvedForProvider
}

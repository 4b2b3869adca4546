package domain

// Penalty rates for late cancellations (fraction of booking total price)
const (
	ProviderPenaltyRate = 0.15
	CustomerPenaltyRate = 0.10
)

// Default lifecycle tunables. Overridable through the [lifecycle] config
// section; the code never reads these directly outside config defaults.
const (
	DefaultPenaltyWindowHours       = 24
	DefaultAutoCompleteGraceHours   = 72
	DefaultReviewWindowDays         = 14
	DefaultRapidChangeWindowMinutes = 5
	DefaultRapidChangeCount         = 3
	DefaultNoShowClaimThreshold     = 3
	DefaultNoShowClaimWindowDays    = 30
	DefaultCancellationWindowDays   = 30
	DefaultCancellationLimit        = 3
	DefaultReviewAnomalyWindowDays  = 30
)

// Business validation constants
const (
	MinRating                   = 1
	MaxRating                   = 5
	MaxCommentLength            = 1000
	MaxCancellationReasonLength = 500
	MaxDisputeReasonLength      = 1000
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

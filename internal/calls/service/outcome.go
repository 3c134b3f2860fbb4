package service

// Call outcome categories derived from call duration.
const (
	OutcomeNoAnswer  = "No Answer / Voicemail"
	OutcomeBrief     = "Brief Contact"
	OutcomeConnected = "Connected"

	// Communication-log outcomes for provider message events.
	OutcomeMessageReceived  = "Message Received"
	OutcomeMessageDelivered = "Message Delivered"
)

// ClassifyOutcome maps a call duration in seconds to an outcome category.
// Total over all integers; negative input is treated as 0.
func ClassifyOutcome(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	switch {
	case seconds < 10:
		return OutcomeNoAnswer
	case seconds < 30:
		return OutcomeBrief
	default:
		return OutcomeConnected
	}
}

// DurationMinutes converts a duration in seconds to whole minutes,
// rounding half up. A 45-second call is logged as 1 minute.
func DurationMinutes(seconds int) int {
	if seconds < 0 {
		seconds = 0
	}
	return (seconds + 30) / 60
}

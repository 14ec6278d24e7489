package models

// uniform error responses
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error lets validation code hand an ErrorResponse back as an error.
func (e *ErrorResponse) Error() string {
	return e.Code + ": " + e.Message
}

// GenerateFeedbackResponse reports the outcome of a feedback generation
// request back to the caller.
type GenerateFeedbackResponse struct {
	Success    bool   `json:"success"`
	FeedbackID string `json:"feedbackId,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CompletedInterviewsResponse partitions a user's finalized interviews by
// feedback existence.
type CompletedInterviewsResponse struct {
	InterviewsWithFeedback    []Interview `json:"interviewsWithFeedback"`
	InterviewsWithoutFeedback []Interview `json:"interviewsWithoutFeedback"`
}

// CodingInterviewsResponse lists a user's recent coding interviews.
type CodingInterviewsResponse struct {
	Interviews []CodingInterview `json:"interviews"`
}

// ExtractInterviewResponse reports the interview created from a setup
// conversation.
type ExtractInterviewResponse struct {
	Success     bool       `json:"success"`
	InterviewID string     `json:"interviewId,omitempty"`
	Interview   *Interview `json:"interview,omitempty"`
	Error       string     `json:"error,omitempty"`
}

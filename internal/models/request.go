package models

import "strings"

// GenerateFeedbackRequest triggers behavioral feedback generation for a
// finished interview.
type GenerateFeedbackRequest struct {
	UserID     string `json:"userId"`
	Transcript []Turn `json:"transcript"`
}

// implements the Validator interface
func (r *GenerateFeedbackRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return &ErrorResponse{
			Code:    "missing_user_id",
			Message: "userId field is required",
		}
	}
	return nil
}

// CreateCodingInterviewRequest starts a new coding interview session.
type CreateCodingInterviewRequest struct {
	Company  string   `json:"company"`
	UserID   string   `json:"userId"`
	Question Question `json:"question"`
}

func (r *CreateCodingInterviewRequest) Validate() error {
	if strings.TrimSpace(r.Company) == "" {
		return &ErrorResponse{
			Code:    "missing_company",
			Message: "company field is required",
		}
	}
	if strings.TrimSpace(r.UserID) == "" {
		return &ErrorResponse{
			Code:    "missing_user_id",
			Message: "userId field is required",
		}
	}
	if strings.TrimSpace(r.Question.Title) == "" {
		return &ErrorResponse{
			Code:    "missing_question",
			Message: "question with a title is required",
		}
	}
	return nil
}

// SaveCodeRequest updates the code of a running coding interview.
type SaveCodeRequest struct {
	Code string `json:"code"`
}

// Empty code is allowed, the candidate may clear the editor.
func (r *SaveCodeRequest) Validate() error { return nil }

// CompleteCodingInterviewRequest freezes a coding session: stores the
// transcript and the final code, then kicks off feedback generation.
type CompleteCodingInterviewRequest struct {
	UserID     string `json:"userId"`
	Transcript []Turn `json:"transcript"`
	Code       string `json:"code"`
}

func (r *CompleteCodingInterviewRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return &ErrorResponse{
			Code:    "missing_user_id",
			Message: "userId field is required",
		}
	}
	if len(r.Transcript) == 0 {
		return &ErrorResponse{
			Code:    "missing_transcript",
			Message: "transcript field is required",
		}
	}
	return nil
}

// ExtractInterviewRequest turns a setup conversation into a stored interview.
type ExtractInterviewRequest struct {
	Conversation string `json:"conversation"`
	UserID       string `json:"userId"`
}

func (r *ExtractInterviewRequest) Validate() error {
	if strings.TrimSpace(r.Conversation) == "" {
		return &ErrorResponse{
			Code:    "missing_conversation",
			Message: "conversation field is required",
		}
	}
	if strings.TrimSpace(r.UserID) == "" {
		return &ErrorResponse{
			Code:    "missing_user_id",
			Message: "userId field is required",
		}
	}
	return nil
}

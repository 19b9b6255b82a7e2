package model

// SubmissionRequest is the body posted to the shortening endpoint.
type SubmissionRequest struct {
	URL string `json:"url"`
}

// SubmissionResponse is returned by the shortening endpoint on success.
// ShortCode and Message are filled by the service and are optional for clients.
type SubmissionResponse struct {
	OriginalURL string `json:"original_url"`
	ShortURL    string `json:"short_url"`
	ShortCode   string `json:"short_code,omitempty"`
	Message     string `json:"message,omitempty"`
}

// ErrorResponse is the failure envelope used by every JSON endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

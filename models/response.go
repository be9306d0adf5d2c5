package models

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ScreenResponse is returned by every profile screen endpoint.
type ScreenResponse struct {
	Success       bool           `json:"success"`
	Message       string         `json:"message"`
	Error         string         `json:"error,omitempty"`
	Notifications []Notification `json:"notifications"`
	Data          *ViewState     `json:"data,omitempty"`
}

type BeginEditRequest struct {
	Field Field  `json:"field" binding:"required"`
	Value string `json:"value"`
}

type UpdateDraftRequest struct {
	Value string `json:"value"`
}

type CommitRequest struct {
	Field Field `json:"field" binding:"required"`
}

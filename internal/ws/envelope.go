package ws

import (
	"encoding/json"

	"github.com/nhle/school-dashboard/internal/model"
)

// Inbound frame types the server is known to send.
const (
	FrameConnected       = "connected"
	FrameAuthSuccess     = "auth_success"
	FrameError           = "error"
	FrameTestStarted     = "test_started"
	FrameAnswerSubmitted = "answer_submitted"
	FrameNewNotification = "new_notification"
)

// Outbound frame types the client sends.
const (
	FrameAuth       = "auth"
	FrameStartTest  = "start_test"
	FrameSubmitTest = "submit_test"
)

// AuthEnvelope authenticates the session right after the socket opens.
type AuthEnvelope struct {
	Type     string `json:"type"`
	UserType string `json:"userType"`
	Token    string `json:"token"`
}

// StartTestEnvelope asks the server to begin a test session.
type StartTestEnvelope struct {
	Type   string `json:"type"`
	TestID string `json:"testId"`
	Token  string `json:"token"`
}

// SubmitTestEnvelope submits the answers for a running test session.
type SubmitTestEnvelope struct {
	Type       string          `json:"type"`
	TestID     string          `json:"testId"`
	AnswerData json.RawMessage `json:"answerData"`
	Token      string          `json:"token"`
}

// Envelope is the decoded form of an inbound server frame. Fields beyond
// Type are populated only for the frame types that carry them.
type Envelope struct {
	Type         string              `json:"type"`
	Message      string              `json:"message,omitempty"`
	TestID       string              `json:"testId,omitempty"`
	IsSubmitted  bool                `json:"isSubmitted,omitempty"`
	Notification *model.Notification `json:"notification,omitempty"`
}

// knownInbound reports whether the frame type is one the router
// interprets. Anything else is still observable via the last-message
// channel but is otherwise dropped.
func knownInbound(frameType string) bool {
	switch frameType {
	case FrameConnected, FrameAuthSuccess, FrameError,
		FrameTestStarted, FrameAnswerSubmitted, FrameNewNotification:
		return true
	}
	return false
}

package models

import "fmt"

type EditSession struct {
	Field Field  `json:"field"`
	Draft string `json:"draft"`
}

type ViewState struct {
	Record    *UserRecord    `json:"record"`
	Loading   bool           `json:"loading"`
	Uploading bool           `json:"uploading"`
	Editing   *EditSession   `json:"editing"`
	Fields    []DisplayField `json:"fields"`
}

// PickedImage is what the image picker hands back. Cancelled is set when the
// user dismissed the picker or no asset came back.
type PickedImage struct {
	Cancelled bool
	FileName  string
	Data      []byte
}

// PhotoAsset lives for a single upload call.
type PhotoAsset struct {
	Name     string
	MimeType string
	Data     []byte
}

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
	NotificationInfo    NotificationKind = "info"
)

type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
}

// CommitPolicy decides when a mutation is merged into the view.
type CommitPolicy string

const (
	// CommitOptimistic merges before the remote call and keeps the value on failure.
	CommitOptimistic CommitPolicy = "optimistic"
	// CommitConfirmed merges only after the remote call succeeds.
	CommitConfirmed CommitPolicy = "confirmed"
)

func ParseCommitPolicy(s string) (CommitPolicy, error) {
	switch CommitPolicy(s) {
	case "", CommitOptimistic:
		return CommitOptimistic, nil
	case CommitConfirmed:
		return CommitConfirmed, nil
	}
	return "", fmt.Errorf("unknown commit policy %q", s)
}

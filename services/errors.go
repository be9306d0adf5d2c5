package services

import (
	"errors"
	"fmt"
)

var (
	ErrFieldNotEditable    = errors.New("field is not editable")
	ErrNoEditSession       = errors.New("no field is being edited")
	ErrEditSessionMismatch = errors.New("another field is being edited")
	ErrNotHydrated         = errors.New("profile record not loaded")
	ErrPipelineBusy        = errors.New("a photo operation is already in progress")
	ErrScreenNotMounted    = errors.New("profile screen not mounted")
)

type ErrorKind string

const (
	UserCancelled       ErrorKind = "user_cancelled"
	RemoteWriteFailure  ErrorKind = "remote_write_failure"
	RemoteUploadFailure ErrorKind = "remote_upload_failure"
	HydrationFailure    ErrorKind = "hydration_failure"
)

// RemoteError wraps a failed call to the record client or asset store.
type RemoteError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func remoteErr(kind ErrorKind, op string, err error) *RemoteError {
	return &RemoteError{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of a RemoteError anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return "", false
}

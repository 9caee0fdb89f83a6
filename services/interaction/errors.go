package interaction

import "fmt"

// Kind buckets an engine error for transport mapping and retry semantics.
type Kind int

const (
	// KindValidation: caller-correctable input problems, never retried.
	KindValidation Kind = iota
	// KindAuthorization: the actor may not perform this action.
	KindAuthorization
	// KindNotFound: the named request or subject does not exist.
	KindNotFound
	// KindConflict: a business rule rejected the action; the rule name is
	// surfaced verbatim so clients can explain it.
	KindConflict
	// KindUpstream: the venue subsystem failed; safely retryable since no
	// partial state was committed.
	KindUpstream
	// KindInternal: an invariant violation or unexpected failure; logged at
	// high severity and surfaced generically.
	KindInternal
)

// Business rule and validation codes surfaced to callers.
const (
	CodeUserNotFound        = "UserNotFound"
	CodePostNotFound        = "PostNotFound"
	CodeRecipientNotFound   = "RecipientNotFound"
	CodeSelfRequest         = "SelfRequest"
	CodeInvalidInstant      = "InvalidInstant"
	CodeInvalidDuration     = "InvalidDuration"
	CodeInvalidAction       = "InvalidAction"
	CodeNotToday            = "NotToday"
	CodeOutsideAvailability = "OutsideAvailability"
	CodeCooldownActive      = "CooldownActive"
	CodeDuplicateOpen       = "DuplicateOpenRequest"
	CodeRequestClosed       = "RequestClosed"
	CodeRequestNotFound     = "NotFound"
	CodeForbidden           = "Forbidden"
	CodeNotYourTurn         = "NotYourTurn"
	CodeNoLiveProposal      = "NoLiveProposal"
	CodeUpstream            = "UpstreamUnavailable"
	CodeNoCandidates        = "NoCandidatesFound"
	CodeInternal            = "Internal"
)

// Error is a coded engine error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newValidationError(code, msg string) error {
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

func newAuthorizationError(code, msg string) error {
	return &Error{Kind: KindAuthorization, Code: code, Message: msg}
}

func newNotFoundError(code, msg string) error {
	return &Error{Kind: KindNotFound, Code: code, Message: msg}
}

func newConflictError(code, msg string) error {
	return &Error{Kind: KindConflict, Code: code, Message: msg}
}

func newUpstreamError(code, msg string, cause error) error {
	return &Error{Kind: KindUpstream, Code: code, Message: msg, Err: cause}
}

func newInternalError(code, msg string, cause error) error {
	return &Error{Kind: KindInternal, Code: code, Message: msg, Err: cause}
}

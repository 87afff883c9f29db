package model

import "errors"

// Validation errors: surfaced to the caller, non-retryable.
var (
	ErrInvalidChangeSpec    = errors.New("invalid change spec")
	ErrInvalidSelector      = errors.New("invalid selector")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrInvalidMission       = errors.New("invalid mission")
)

// Not-found errors: surfaced as HTTP 404.
var (
	ErrMissionNotFound    = errors.New("mission not found")
	ErrCheckpointNotFound = errors.New("checkpoint not found")
	ErrBatchNotFound      = errors.New("batch not found")
	ErrBudgetNotFound     = errors.New("budget not found")
)

// Security errors abort the current operation.
var (
	ErrPolicyViolation = errors.New("policy violation")
	ErrSecurityBlock   = errors.New("security block")
)

// Execution errors are aggregated into a result's errors[] channel.
var (
	ErrParseError            = errors.New("parse error")
	ErrIOError               = errors.New("io error")
	ErrExternalToolUnavailable = errors.New("external tool unavailable")
	ErrTimeout               = errors.New("timeout")
)

// Resource errors.
var (
	ErrBudgetExceeded = errors.New("budget exceeded")
	ErrNoViableModel  = errors.New("no viable model")
)

// Internal errors: logged, reported as a failed result, never crash the server.
var ErrUnknownInvariantType = errors.New("unknown invariant type")

// Package errors defines the typed error taxonomy shared by every stage of
// the analysis/template/preview pipeline. Callers can match on the concrete
// types with errors.As, or use the predicate helpers for the common cases.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// InvalidInputError indicates an unsupported or corrupt input, such as an
// image in an unrecognized format. It is never retried.
type InvalidInputError struct {
	Reason string
	Err    error
}

// NewInvalidInputError constructs an InvalidInputError.
func NewInvalidInputError(reason string, err error) error {
	return &InvalidInputError{Reason: reason, Err: err}
}

func (e *InvalidInputError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid input: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AnalysisTimeoutError indicates an analysis request exceeded its deadline.
// Partial results computed before the deadline are discarded.
type AnalysisTimeoutError struct {
	Timeout time.Duration
}

// NewAnalysisTimeoutError constructs an AnalysisTimeoutError.
func NewAnalysisTimeoutError(timeout time.Duration) error {
	return &AnalysisTimeoutError{Timeout: timeout}
}

func (e *AnalysisTimeoutError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("analysis timed out after %s", e.Timeout)
}

// AnalysisNotFoundError indicates an analysis id that has expired or never
// existed. Analysis ids are ephemeral; callers must re-analyze.
type AnalysisNotFoundError struct {
	AnalysisID string
}

// NewAnalysisNotFoundError constructs an AnalysisNotFoundError.
func NewAnalysisNotFoundError(analysisID string) error {
	return &AnalysisNotFoundError{AnalysisID: analysisID}
}

func (e *AnalysisNotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("analysis %s not found", e.AnalysisID)
}

// TemplateNotFoundError indicates an unknown template id.
type TemplateNotFoundError struct {
	TemplateID string
}

// NewTemplateNotFoundError constructs a TemplateNotFoundError.
func NewTemplateNotFoundError(templateID string) error {
	return &TemplateNotFoundError{TemplateID: templateID}
}

func (e *TemplateNotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("template %s not found", e.TemplateID)
}

// ArtifactNotFoundError indicates an unknown artifact id.
type ArtifactNotFoundError struct {
	ArtifactID string
}

// NewArtifactNotFoundError constructs an ArtifactNotFoundError.
func NewArtifactNotFoundError(artifactID string) error {
	return &ArtifactNotFoundError{ArtifactID: artifactID}
}

func (e *ArtifactNotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("artifact %s not found", e.ArtifactID)
}

// StaleElementReferenceError indicates a mutation referenced element ids that
// do not exist in the current template version. The mutation is rejected as a
// whole; no overrides are applied.
type StaleElementReferenceError struct {
	TemplateID string
	ElementIDs []string
}

// NewStaleElementReferenceError constructs a StaleElementReferenceError.
func NewStaleElementReferenceError(templateID string, elementIDs []string) error {
	return &StaleElementReferenceError{TemplateID: templateID, ElementIDs: elementIDs}
}

func (e *StaleElementReferenceError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("template %s has no element(s) %s",
		e.TemplateID, strings.Join(e.ElementIDs, ", "))
}

// RenderFailureError indicates rasterization of a preview failed.
type RenderFailureError struct {
	TemplateID string
	Err        error
}

// NewRenderFailureError constructs a RenderFailureError.
func NewRenderFailureError(templateID string, err error) error {
	return &RenderFailureError{TemplateID: templateID, Err: err}
}

func (e *RenderFailureError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("render failed for template %s: %v", e.TemplateID, e.Err)
}

func (e *RenderFailureError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ResourceExhaustedError indicates the worker pool rejected a request because
// its queue depth exceeded the configured threshold. The condition is
// transient and the request may be retried by the caller.
type ResourceExhaustedError struct {
	QueueDepth int
}

// NewResourceExhaustedError constructs a ResourceExhaustedError.
func NewResourceExhaustedError(queueDepth int) error {
	return &ResourceExhaustedError{QueueDepth: queueDepth}
}

func (e *ResourceExhaustedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("resource exhausted: render queue depth %d exceeded", e.QueueDepth)
}

// Retryable reports that the error describes a transient condition.
func (e *ResourceExhaustedError) Retryable() bool { return true }

// IsNotFound reports whether err is any of the not-found error types.
func IsNotFound(err error) bool {
	var a *AnalysisNotFoundError
	var t *TemplateNotFoundError
	var f *ArtifactNotFoundError
	return errors.As(err, &a) || errors.As(err, &t) || errors.As(err, &f)
}

// IsRetryable reports whether err describes a transient condition that may
// succeed on retry.
func IsRetryable(err error) bool {
	var r *ResourceExhaustedError
	return errors.As(err, &r)
}

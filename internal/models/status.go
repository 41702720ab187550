package models

import (
	"errors"
	"fmt"
)

// TemplateStatus is the creator/admin workflow state of an HTML template.
type TemplateStatus string

const (
	StatusDraft    TemplateStatus = "draft"
	StatusPending  TemplateStatus = "pending"
	StatusApproved TemplateStatus = "approved"
	StatusRejected TemplateStatus = "rejected"
)

// WorkflowAction moves a template between statuses.
type WorkflowAction string

const (
	ActionEdit    WorkflowAction = "edit"
	ActionPublish WorkflowAction = "publish"
	ActionApprove WorkflowAction = "approve"
	ActionReject  WorkflowAction = "reject"
)

// ErrInvalidTransition is returned when an action is not allowed from the
// template's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// Valid reports whether s is a known status.
func (s TemplateStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Next returns the status reached by applying action to s. Editing is
// allowed from any status and always returns the template to draft.
func (s TemplateStatus) Next(action WorkflowAction) (TemplateStatus, error) {
	switch {
	case action == ActionEdit:
		return StatusDraft, nil
	case action == ActionPublish && s == StatusDraft:
		return StatusPending, nil
	case action == ActionApprove && s == StatusPending:
		return StatusApproved, nil
	case action == ActionReject && s == StatusPending:
		return StatusRejected, nil
	}
	return s, fmt.Errorf("%w: cannot %s a %s template", ErrInvalidTransition, action, s)
}

// Visible is the customer-facing visibility implied by a status. The
// is_active column is written from this on every transition and is the
// only flag listings read.
func (s TemplateStatus) Visible() bool {
	return s == StatusApproved
}

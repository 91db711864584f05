package azure

import (
	"errors"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

// Error codes returned by the ARM control planes that need distinct
// classification. Everything else is decided by HTTP status.
const (
	codeRoleAssignmentExists  = "RoleAlreadyExists"
	codeConflict              = "Conflict"
	codeResourceNotFound      = "ResourceNotFound"
	codeResourceGroupNotFound = "ResourceGroupNotFound"
	codeParentResourceMissing = "ParentResourceNotFound"
	codeAuthorizationFailed   = "AuthorizationFailed"
)

// Classify maps a control-plane error to a typed Outcome.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeCreated
	}

	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return OutcomeFailed
	}

	switch respErr.ErrorCode {
	case codeRoleAssignmentExists, codeConflict:
		return OutcomeAlreadyExists
	case codeResourceNotFound, codeResourceGroupNotFound, codeParentResourceMissing:
		return OutcomeNotFound
	case codeAuthorizationFailed:
		return OutcomePermissionDenied
	}

	switch {
	case respErr.StatusCode == http.StatusConflict:
		return OutcomeAlreadyExists
	case respErr.StatusCode == http.StatusNotFound:
		return OutcomeNotFound
	case respErr.StatusCode == http.StatusForbidden:
		return OutcomePermissionDenied
	case respErr.StatusCode == http.StatusTooManyRequests,
		respErr.StatusCode >= http.StatusInternalServerError:
		return OutcomeTransient
	}

	return OutcomeFailed
}

// IsNotFound checks if an error indicates the target resource is absent.
func IsNotFound(err error) bool {
	return Classify(err) == OutcomeNotFound
}

// IsNonRetryable reports whether a control-plane error can never heal
// with time: denied permissions and rejected requests. Plain errors
// (propagation gaps between a write and its read-back), NotFound, and
// transients stay retryable.
func IsNonRetryable(err error) bool {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return false
	}
	switch Classify(err) {
	case OutcomePermissionDenied, OutcomeFailed:
		return true
	}
	return false
}

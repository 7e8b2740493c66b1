package rest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"emperror.dev/errors"
)

// ErrorCode is a Discord JSON error code.
type ErrorCode int

// JSON error codes returned by Discord.
const (
	ErrUnknownAccount                     ErrorCode = 10001
	ErrUnknownChannel                     ErrorCode = 10003
	ErrUnknownGuild                       ErrorCode = 10004
	ErrUnknownMember                      ErrorCode = 10007
	ErrUnknownMessage                     ErrorCode = 10008
	ErrUnknownRole                        ErrorCode = 10011
	ErrUnknownUser                        ErrorCode = 10013
	ErrUnknownEmoji                       ErrorCode = 10014
	ErrUnknownWebhook                     ErrorCode = 10015
	ErrUnknownInteraction                 ErrorCode = 10062
	ErrUnknownCommand                     ErrorCode = 10063
	ErrMaxPins                            ErrorCode = 30003
	ErrMaxEmojis                          ErrorCode = 30008
	ErrMaxReactions                       ErrorCode = 30010
	ErrUnauthorized                       ErrorCode = 40001
	ErrInteractionAlreadyAcknowledged     ErrorCode = 40060
	ErrMissingAccess                      ErrorCode = 50001
	ErrCannotSendEmptyMessage             ErrorCode = 50006
	ErrCannotSendMessagesToUser           ErrorCode = 50007
	ErrMissingPermissions                 ErrorCode = 50013
	ErrInvalidToken                       ErrorCode = 50014
	ErrInvalidBulkDeleteCount             ErrorCode = 50016
	ErrCannotExecuteActionOnSystemMessage ErrorCode = 50021
	ErrMessageTooOldToBulkDelete          ErrorCode = 50034
	ErrInvalidFormBody                    ErrorCode = 50035
	ErrReactionBlocked                    ErrorCode = 90001
)

// APIError is a non-2xx response from Discord.
type APIError struct {
	// Status is the HTTP status code.
	Status int
	// Code is the JSON error code. It's 0 if the body wasn't a Discord error.
	Code    ErrorCode
	Message string

	// Errors holds the per-field errors of an invalid form body, flattened into dotted paths.
	Errors []FieldError
}

// FieldError is a single error in a request field, such as "embeds.0.description".
type FieldError struct {
	Path    string
	Code    string
	Message string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "discord: HTTP %d", e.Status)
	if e.Code != 0 {
		fmt.Fprintf(&b, ": %s (%d)", e.Message, e.Code)
	} else if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}

	for _, fe := range e.Errors {
		fmt.Fprintf(&b, "; %s: %s", fe.Path, fe.Message)
	}
	return b.String()
}

// IsNotFound returns true if err is a 404 response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}

// HasCode returns true if err is a Discord error with one of the given codes.
func HasCode(err error, codes ...ErrorCode) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	for _, c := range codes {
		if apiErr.Code == c {
			return true
		}
	}
	return false
}

// IsRateLimited returns true if err is a 429 response that wasn't resolved by retrying.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 429
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var wire struct {
		Code    ErrorCode       `json:"code"`
		Message string          `json:"message"`
		Errors  json.RawMessage `json:"errors"`
	}
	if json.Unmarshal(body, &wire) != nil || (wire.Code == 0 && wire.Message == "") {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	apiErr.Code = wire.Code
	apiErr.Message = wire.Message
	if len(wire.Errors) > 0 {
		var tree map[string]json.RawMessage
		if json.Unmarshal(wire.Errors, &tree) == nil {
			apiErr.Errors = flattenErrors(nil, tree)
		}
	}
	return apiErr
}

// flattenErrors walks Discord's nested error object.
// Leaves are "_errors" arrays, everything else is a field name or array index.
func flattenErrors(path []string, tree map[string]json.RawMessage) (out []FieldError) {
	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if k == "_errors" {
			var leaves []struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			if json.Unmarshal(tree[k], &leaves) != nil {
				continue
			}
			for _, l := range leaves {
				out = append(out, FieldError{Path: strings.Join(path, "."), Code: l.Code, Message: l.Message})
			}
			continue
		}

		var sub map[string]json.RawMessage
		if json.Unmarshal(tree[k], &sub) != nil {
			continue
		}
		out = append(out, flattenErrors(append(path[:len(path):len(path)], k), sub)...)
	}
	return out
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FailureKind classifies why a model invocation failed.
type FailureKind string

const (
	FailureCredential FailureKind = "credential"
	FailureNetwork    FailureKind = "network"
	FailureQuota      FailureKind = "quota"
	FailureMalformed  FailureKind = "malformed-response"
	FailureUnknown    FailureKind = "unknown"
)

// Sentinels matched by InvocationError.Is, one per kind.
var (
	ErrCredential        = errors.New("llm: missing or invalid credential")
	ErrNetwork           = errors.New("llm: network failure")
	ErrQuota             = errors.New("llm: quota exceeded")
	ErrMalformedResponse = errors.New("llm: malformed response")
	ErrUnknown           = errors.New("llm: invocation failed")
)

// InvocationError wraps a failed remote call with its classification.
type InvocationError struct {
	Kind FailureKind
	Err  error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("model invocation failed (%s): %v", e.Kind, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// Is matches the kind sentinel so callers can use errors.Is(err, llm.ErrQuota).
func (e *InvocationError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (k FailureKind) sentinel() error {
	switch k {
	case FailureCredential:
		return ErrCredential
	case FailureNetwork:
		return ErrNetwork
	case FailureQuota:
		return ErrQuota
	case FailureMalformed:
		return ErrMalformedResponse
	default:
		return ErrUnknown
	}
}

// NewInvocationError classifies err. An err that already is an InvocationError is returned as is.
func NewInvocationError(err error) *InvocationError {
	var ie *InvocationError
	if errors.As(err, &ie) {
		return ie
	}
	return &InvocationError{Kind: Classify(err), Err: err}
}

// Classify maps a transport, API or SDK error onto a FailureKind.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}

	var ie *InvocationError
	if errors.As(err, &ie) {
		return ie.Kind
	}

	for _, k := range []FailureKind{FailureCredential, FailureNetwork, FailureQuota, FailureMalformed} {
		if errors.Is(err, k.sentinel()) {
			return k
		}
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyAPIError(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyAPIError(*apiErrPtr)
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		return classifyCode(st.Code())
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return FailureNetwork
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return FailureNetwork
	}

	return FailureUnknown
}

func classifyAPIError(e genai.APIError) FailureKind {
	// Gemini answers a bad key with 400 INVALID_ARGUMENT.
	if strings.Contains(strings.ToLower(e.Message), "api key") {
		return FailureCredential
	}

	if e.Status != "" {
		var c codes.Code
		if err := c.UnmarshalJSON([]byte(`"` + e.Status + `"`)); err == nil {
			if kind := classifyCode(c); kind != FailureUnknown {
				return kind
			}
		}
	}

	switch {
	case e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden:
		return FailureCredential
	case e.Code == http.StatusTooManyRequests:
		return FailureQuota
	case e.Code >= http.StatusInternalServerError:
		return FailureNetwork
	}
	return FailureUnknown
}

func classifyCode(c codes.Code) FailureKind {
	switch c {
	case codes.Unauthenticated, codes.PermissionDenied:
		return FailureCredential
	case codes.ResourceExhausted:
		return FailureQuota
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled, codes.Aborted:
		return FailureNetwork
	case codes.DataLoss, codes.Internal:
		return FailureMalformed
	default:
		return FailureUnknown
	}
}

// FallbackText is the assistant answer used when an invocation fails. It names the
// three usual causes and embeds the raw error for diagnostics.
func FallbackText(err error) string {
	detail := "unknown error"
	if err != nil {
		var ie *InvocationError
		if errors.As(err, &ie) && ie.Err != nil {
			detail = ie.Err.Error()
		} else {
			detail = err.Error()
		}
	}

	return "**Error Processing Request**\n\n" +
		"I couldn't complete your request. This could be due to:\n" +
		"- API key not configured properly\n" +
		"- Network connectivity issues\n" +
		"- API rate limits\n\n" +
		"**Please ensure:**\n" +
		"1. Your Gemini API key is correctly set (GEMINI_API_KEY)\n" +
		"2. You have an active internet connection\n" +
		"3. Your API key has sufficient quota\n\n" +
		"Error details: " + detail
}

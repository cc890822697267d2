package analyzer

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorKind is the only classification a caller ever sees.
type ErrorKind string

const (
	ExtractionExhausted ErrorKind = "extraction_exhausted"
	ProviderExhausted   ErrorKind = "provider_exhausted"
	ParseExhausted      ErrorKind = "parse_exhausted"
	Canceled            ErrorKind = "canceled"
	InvalidInput        ErrorKind = "invalid_input"
)

// AnalysisError is returned by Analyze whenever no FinalAssessment could be produced.
type AnalysisError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *AnalysisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("analysis %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("analysis %s: %s", e.Kind, e.Message)
}

func (e *AnalysisError) Unwrap() error { return e.Cause }

// GRPCStatus lets status.FromError surface the error unchanged through a gRPC transport.
func (e *AnalysisError) GRPCStatus() *status.Status {
	return status.New(e.code(), e.Error())
}

func (e *AnalysisError) code() codes.Code {
	switch e.Kind {
	case InvalidInput:
		return codes.InvalidArgument
	case ExtractionExhausted:
		return codes.FailedPrecondition
	case ProviderExhausted:
		return codes.Unavailable
	case ParseExhausted:
		return codes.Internal
	case Canceled:
		return codes.Canceled
	default:
		return codes.Unknown
	}
}

func newAnalysisError(kind ErrorKind, cause error, format string, args ...any) *AnalysisError {
	return &AnalysisError{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

package analysis

import "fmt"

// Kind identifies the stage of the analysis pipeline that failed.
type Kind int

const (
	KindImageDecode Kind = iota + 1
	KindLabelDetection
	KindModelCall
	KindNoJSONFound
	KindMalformedJSON
)

func (k Kind) String() string {
	switch k {
	case KindImageDecode:
		return "image_decode"
	case KindLabelDetection:
		return "label_detection"
	case KindModelCall:
		return "model_call"
	case KindNoJSONFound:
		return "no_json_found"
	case KindMalformedJSON:
		return "malformed_json"
	default:
		return "unknown"
	}
}

// Error is returned for every failure between receiving the image bytes and
// holding a parsed Result. Its message is safe to show to API clients.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindImageDecode:
		return "Invalid image format"
	case KindLabelDetection:
		return fmt.Sprintf("Error detecting label type: %s", e.cause())
	case KindModelCall:
		return fmt.Sprintf("Error during analysis: %s", e.cause())
	case KindNoJSONFound:
		return "No valid JSON found in response"
	case KindMalformedJSON:
		return fmt.Sprintf("Error parsing JSON response: %s", e.cause())
	default:
		return e.cause()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) cause() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

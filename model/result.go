package model

// ResultKind classifies the outcome of a provider request. Failure kinds
// map to user-facing messages chosen by the provider layer; the UI only
// inspects the kind to decide styling and retry behavior.
type ResultKind int

const (
	KindOK ResultKind = iota
	KindImage
	KindNotConfigured
	KindAuthFailure
	KindRateLimited
	KindQuotaExceeded
	KindConnectionFailure
	KindTimeout
	KindNotFound
	KindDecodeFailure
	KindHTTPError
)

var kindNames = map[ResultKind]string{
	KindOK:                "ok",
	KindImage:             "image",
	KindNotConfigured:     "not_configured",
	KindAuthFailure:       "auth_failure",
	KindRateLimited:       "rate_limited",
	KindQuotaExceeded:     "quota_exceeded",
	KindConnectionFailure: "connection_failure",
	KindTimeout:           "timeout",
	KindNotFound:          "not_found",
	KindDecodeFailure:     "decode_failure",
	KindHTTPError:         "http_error",
}

func (k ResultKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Result is the outcome of a provider request. Text carries the reply on
// success and the user-facing message on failure; Image carries raw image
// bytes for KindImage results.
type Result struct {
	Kind  ResultKind
	Text  string
	Image []byte
}

// IsError reports whether the result represents a failed request.
func (r Result) IsError() bool {
	return r.Kind != KindOK && r.Kind != KindImage
}

// OKResult wraps successful text output.
func OKResult(text string) Result {
	return Result{Kind: KindOK, Text: text}
}

// ImageResult wraps generated image bytes with an optional caption.
func ImageResult(data []byte, caption string) Result {
	return Result{Kind: KindImage, Text: caption, Image: data}
}

// ErrorResult builds a failed result carrying a user-facing message.
func ErrorResult(kind ResultKind, message string) Result {
	return Result{Kind: kind, Text: message}
}

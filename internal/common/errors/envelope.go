package errors

const (
	// Retry-After bounds in seconds. Values outside are clamped so a
	// misbehaving upstream cannot tell clients to wait for an hour.
	retryAfterMin = 1
	retryAfterMax = 120
)

// Payload is the JSON error body carried across the wire.
type Payload struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    []string  `json:"details,omitempty"`
	RetryAfter int       `json:"retryAfter,omitempty"`
}

// Envelope pairs the HTTP status with the error body. Status and Payload.Code
// are mutually consistent with the taxonomy unless the caller forced an
// explicit status, in which case the explicit status wins.
type Envelope struct {
	Status  int
	Payload Payload
}

// EncodeInput is the raw material for an Envelope. Zero values mean "not
// supplied".
type EncodeInput struct {
	Message    string
	Code       string
	Status     int
	Details    []string
	RetryAfter int
}

// Encode builds a wire envelope, normalizing the code against the taxonomy
// and resolving status, message and retry timing.
func Encode(in EncodeInput) Envelope {
	code, ok := Normalize(in.Code)
	if !ok {
		code = inferFromStatus(in.Status)
	}

	status := StatusFor(code)
	if in.Status > 0 {
		// Explicit status wins over inference; server intent takes
		// priority. Never silently downgrade an explicit status.
		status = in.Status
	}

	message := in.Message
	if message == "" {
		message = MessageFor(code)
	}

	payload := Payload{
		Code:    code,
		Message: message,
	}
	if len(in.Details) > 0 {
		payload.Details = in.Details
	}
	if in.RetryAfter > 0 {
		payload.RetryAfter = clampRetryAfter(in.RetryAfter)
	}

	return Envelope{Status: status, Payload: payload}
}

// EncodeError builds an envelope from any error, treating classified
// QueryError values as authoritative and everything else as INTERNAL_ERROR.
func EncodeError(err error) Envelope {
	if qe, ok := AsQueryError(err); ok {
		return Encode(EncodeInput{
			Message:    qe.Message,
			Code:       string(qe.Code),
			Status:     qe.Status,
			Details:    qe.Details,
			RetryAfter: qe.RetryAfter,
		})
	}
	return Encode(EncodeInput{Message: MessageFor(ErrCodeInternal)})
}

// inferFromStatus picks a taxonomy code when the caller did not supply a
// recognizable one.
func inferFromStatus(status int) ErrorCode {
	switch {
	case status == 429:
		return ErrCodeRateLimit
	case status == 401:
		return ErrCodeUnauthenticated
	case status == 403:
		return ErrCodeConversationForbidden
	case status == 404:
		return ErrCodeConversationNotFound
	case status >= 500:
		return ErrCodeInternal
	case status == 400:
		return ErrCodeValidation
	default:
		return ErrCodeInternal
	}
}

func clampRetryAfter(seconds int) int {
	if seconds < retryAfterMin {
		return retryAfterMin
	}
	if seconds > retryAfterMax {
		return retryAfterMax
	}
	return seconds
}

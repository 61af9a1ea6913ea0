package transport

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Envelope is the wire shape shared by every API response. Success
// responses carry Data; error responses carry Code plus a detail under
// Error. Meta is free-form and optional (used for things like the health
// endpoint's dependency snapshot).
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: statusSuccess,
		Data:   data,
		Meta:   meta,
	}
}

func NewError(code string, detail interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: statusError,
		Code:   code,
		Error:  detail,
		Meta:   meta,
	}
}

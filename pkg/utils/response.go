package utils

// ResponseData is the envelope for every REST response.
type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics with the given error so the recovery middleware can
// translate it into a structured HTTP response.
func PanicIfNeeded(err any) {
	if err != nil {
		panic(err)
	}
}

package error

// GenericError is implemented by every typed error in this package so the
// HTTP layer can map failures to a status code and a stable error code.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}

package application

import (
	"errors"
	"fmt"
)

// RemoteError traz de volta, pelo broker, a falha de um manipulador remoto.
type RemoteError struct {
	Name    string
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: %s", e.Name, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Name, e.Code, e.Message)
}

func (e *RemoteError) ErrorCode() string {
	return e.Code
}

// ErrorCodeOf extrai de err um código transportável, ou "" quando não há.
func ErrorCodeOf(err error) string {
	var coded interface{ ErrorCode() string }
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return ""
}

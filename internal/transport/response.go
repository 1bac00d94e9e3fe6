package transport

import (
	"io"
	"net/http"
	"strings"

	"github.com/osmhh/treesync/pkg/errors"
)

// maxErrorBody limits how much of an error response is kept.
const maxErrorBody = 4096

// ResponseError reads and closes the body of a failed response and returns
// it as an APIError.
func ResponseError(service string, resp *http.Response) *errors.APIError {
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	endpoint := ""
	if resp.Request != nil && resp.Request.URL != nil {
		endpoint = resp.Request.URL.String()
	}
	return &errors.APIError{
		Service:    service,
		StatusCode: resp.StatusCode,
		Message:    msg,
		Endpoint:   endpoint,
	}
}

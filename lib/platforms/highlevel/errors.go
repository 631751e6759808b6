package highlevel

import (
	"fmt"

	"github.com/go-resty/resty/v2"
)

// APIError is returned whenever the CRM responds with a non-2xx status.
// The body is kept verbatim, the CRM's error payloads are inconsistent
// enough that parsing them buys nothing.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("highlevel api: status %d: %s", e.Status, e.Body)
}

func checkStatus(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, err
	}
	if res.IsError() {
		return res, &APIError{
			Status: res.StatusCode(),
			Body:   res.String(),
		}
	}
	return res, nil
}

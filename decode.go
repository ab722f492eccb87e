package brave

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// decodeResponse maps an HTTP status and body to either a typed response or
// one of ApiError and DecodeError. A non-200 body is never decoded as T.
func decodeResponse[T any](ep Endpoint, status int, body []byte) (*T, error) {
	if status != http.StatusOK {
		apiErr := &ApiError{
			Endpoint: ep.Name,
			Status:   status,
			Raw:      body,
		}
		var data map[string]any
		if err := json.Unmarshal(body, &data); err == nil {
			apiErr.Data = data
		}
		return nil, apiErr
	}

	if !gjson.ValidBytes(body) {
		return nil, &DecodeError{Endpoint: ep.Name, Body: body, Err: errors.New("invalid json")}
	}

	disc := gjson.GetBytes(body, "type")
	if !disc.Exists() {
		return nil, &DecodeError{Endpoint: ep.Name, Body: body, Err: ErrMissingDiscriminant}
	}
	if disc.Type != gjson.String {
		return nil, &DecodeError{
			Endpoint: ep.Name,
			Body:     body,
			Err:      fmt.Errorf("discriminant 'type' must be a string, got %s", disc.Type),
		}
	}
	if ep.ResponseType != "" && disc.Str != ep.ResponseType {
		return nil, &DecodeError{
			Endpoint: ep.Name,
			Body:     body,
			Err:      fmt.Errorf("unexpected response type '%s', expected '%s'", disc.Str, ep.ResponseType),
		}
	}

	var resp T
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &DecodeError{Endpoint: ep.Name, Body: body, Err: err}
	}
	return &resp, nil
}

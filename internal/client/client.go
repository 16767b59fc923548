package client

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ecochain/token-catalog/internal/apperr"

	"github.com/go-resty/resty/v2"
)

// TxHashHeader carries the settlement hash of a token creation response
const TxHashHeader = "X-Transaction-Hash"

// envelope mirrors utils.Envelope with a raw data payload
type envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Data       json.RawMessage   `json:"data"`
	Errors     map[string]string `json:"errors"`
	Count      int               `json:"count"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
}

// decode classifies a resty outcome and unmarshals the envelope data into out
func decode(resp *resty.Response, err error, out interface{}) (*envelope, error) {
	if err != nil {
		return nil, apperr.Transport("service unavailable, please try again", err)
	}

	var env envelope
	if body := resp.Body(); len(body) > 0 {
		if jsonErr := json.Unmarshal(body, &env); jsonErr != nil && !resp.IsError() {
			return nil, apperr.Transport("unexpected response from server", jsonErr)
		}
	}

	if resp.IsError() {
		return nil, statusError(resp.StatusCode(), env)
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, apperr.Transport("unexpected response from server", err)
		}
	}
	return &env, nil
}

func statusError(status int, env envelope) error {
	msg := env.Message
	switch {
	case status == http.StatusNotFound:
		if msg == "" {
			msg = "Not found"
		}
		return &apperr.Error{Kind: apperr.KindNotFound, Message: msg}
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		if len(env.Errors) > 0 {
			return apperr.Validation(env.Errors)
		}
		if msg == "" {
			msg = "Invalid request"
		}
		return apperr.Validationf("%s", msg)
	case status == http.StatusConflict:
		return apperr.Conflict(msg)
	default:
		return apperr.Transport("service unavailable, please try again",
			fmt.Errorf("server returned status %d: %s", status, msg))
	}
}

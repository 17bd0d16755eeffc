package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
	"github.com/recipebox/recipebox-server/internal/http/response"
	"github.com/recipebox/recipebox-server/internal/store"
)

// EnvelopeTransformer wraps every huma response body in the response
// envelope. Errors become {"success":false,"error",...}; everything else
// becomes {"success":true,"data":...}.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case response.Envelope, *response.Envelope:
		return v, nil
	case *APIError:
		return response.Failure(body.Code, body.Message, body.Details), nil
	case *domainerrors.Error:
		return response.Failure(string(body.Code), body.Message, body.Details), nil
	case *store.Error:
		return response.Failure(string(response.StatusCode(body.Code)), body.Message, nil), nil
	case *huma.ErrorModel:
		return response.Failure(string(response.StatusCode(body.Status)), body.Detail, body.Errors), nil
	}

	if code, err := strconv.Atoi(status); err == nil && code >= 400 {
		if e, ok := v.(error); ok {
			return response.Failure(string(response.StatusCode(code)), e.Error(), nil), nil
		}
	}

	return response.Envelope{
		Version: response.Version,
		Success: true,
		Data:    v,
	}, nil
}

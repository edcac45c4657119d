package response

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kart-io/teamsync/pkg/utils/errors"
)

func TestSuccess(t *testing.T) {
	resp := Success(map[string]string{"id": "123"})

	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, http.StatusOK, resp.HTTPStatus())
	assert.Equal(t, "success", resp.Message)
	assert.NotNil(t, resp.Data)
}

func TestSuccessWithMessage(t *testing.T) {
	resp := SuccessWithMessage("indexing scheduled", nil)

	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "indexing scheduled", resp.Message)
}

func TestErr(t *testing.T) {
	resp := Err(errors.ErrChatNotFound)

	assert.Equal(t, errors.ErrChatNotFound.Code, resp.Code)
	assert.Equal(t, http.StatusNotFound, resp.HTTPStatus())
	assert.Equal(t, errors.ErrChatNotFound.MessageEN, resp.Message)
	assert.Nil(t, resp.Data)
}

func TestErrNil(t *testing.T) {
	resp := Err(nil)

	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, http.StatusOK, resp.HTTPStatus())
}

func TestHTTPStatusFallbackByCategory(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int
	}{
		{"unregistered request error", errors.MakeCode(55, errors.CategoryRequest, 9), http.StatusBadRequest},
		{"unregistered resource error", errors.MakeCode(55, errors.CategoryResource, 9), http.StatusNotFound},
		{"unregistered timeout error", errors.MakeCode(55, errors.CategoryTimeout, 9), http.StatusGatewayTimeout},
		{"unregistered internal error", errors.MakeCode(55, errors.CategoryInternal, 9), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &Response{Code: tt.code, Message: "x"}
			assert.Equal(t, tt.want, resp.HTTPStatus())
		})
	}
}

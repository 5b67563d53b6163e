package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseError(t *testing.T) {
	testCases := []struct {
		name       string
		err        *ResponseError
		temporary  bool
		wantString string
	}{
		{
			name:       "given not found should not be temporary",
			err:        &ResponseError{StatusCode: http.StatusNotFound, Method: http.MethodGet, URL: "/api/cart/s1", Message: "Cart not found"},
			temporary:  false,
			wantString: "GET /api/cart/s1 returned status code=404 with message=Cart not found",
		},
		{
			name:       "given bad gateway should be temporary",
			err:        &ResponseError{StatusCode: http.StatusBadGateway, Method: http.MethodPost, URL: "/api/orders"},
			temporary:  true,
			wantString: "POST /api/orders returned status code=502",
		},
		{
			name:       "given internal server error should be temporary",
			err:        &ResponseError{StatusCode: http.StatusInternalServerError, Method: http.MethodGet, URL: "/api/cart/s1"},
			temporary:  true,
			wantString: "GET /api/cart/s1 returned status code=500",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.temporary, tc.err.Temporary())
			assert.Equal(t, tc.wantString, tc.err.Error())
		})
	}
}

package request

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type payload struct {
	Email string `json:"email" validate:"required,email"`
	Slot  *int   `json:"slot"  validate:"required,min=0,max=9"`
}

func TestDecode(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"email":"a@b.co","slot":0}`, false},
		{"empty body", ``, true},
		{"malformed", `{"email":`, true},
		{"bad email", `{"email":"nope","slot":1}`, true},
		{"missing slot", `{"email":"a@b.co"}`, true},
		{"slot out of range", `{"email":"a@b.co","slot":10}`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", strings.NewReader(tc.body))
			var p payload
			err := Decode(httptest.NewRecorder(), r, &p)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

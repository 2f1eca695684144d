// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

package http

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteError(t *testing.T) {
	var table = []struct {
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{ClientError("hello world"), 400, `{"error":"hello world"}`},
		{ClientError("what's up"), 400, `{"error":"what's up"}`},
		{errors.New("disk on fire"), 500, `{"error":"internal server error"}`},
	}

	for _, tt := range table {
		r := httptest.NewRecorder()
		err := WriteError(r, tt.err)
		assert.Nil(t, err)
		assert.Equal(t, tt.expectedStatus, r.Code)
		assert.JSONEq(t, tt.expectedBody, r.Body.String())
		assert.Equal(t, "application/json", r.Header().Get("Content-Type"))
	}
}

func TestWriteQuantileResponse(t *testing.T) {
	r := httptest.NewRecorder()
	assert.Nil(t, WriteQuantileResponse(r, QuantileResponse{Q: 0.5}))
	assert.JSONEq(t, `{"q":0.5,"value":null}`, r.Body.String())
}

// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

package http

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/chihaya/incstats/format"
	"github.com/chihaya/incstats/pkg/log"
	"github.com/chihaya/incstats/stats"
)

// ClientError represents an error that should be exposed to the client over
// the HTTP API with a 400 status.
type ClientError string

// Error implements the error interface for ClientError.
func (c ClientError) Error() string { return string(c) }

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type errorResponse struct {
	Error string `json:"error"`
}

// IngestResponse is the body answering a sample upload.
type IngestResponse struct {
	Added int64 `json:"added"`
	Count int64 `json:"count"`
}

// QuantileResponse is the body answering a quantile query. Value is null
// while no sample was added.
type QuantileResponse struct {
	Q     float64  `json:"q"`
	Value *float64 `json:"value"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteError communicates an error to a client over HTTP.
func WriteError(w http.ResponseWriter, err error) error {
	status := http.StatusInternalServerError
	message := "internal server error"
	if _, clientErr := err.(ClientError); clientErr {
		status = http.StatusBadRequest
		message = err.Error()
	} else {
		log.Error("http: internal error", log.Err(err))
	}

	return writeJSON(w, status, errorResponse{Error: message})
}

// WriteReport communicates a report to a client over HTTP.
func WriteReport(w http.ResponseWriter, r stats.Report) error {
	w.Header().Set("Content-Type", "application/json")
	return format.WriteJSON(w, r)
}

// WriteIngestResponse communicates the result of a sample upload.
func WriteIngestResponse(w http.ResponseWriter, resp IngestResponse) error {
	return writeJSON(w, http.StatusOK, resp)
}

// WriteQuantileResponse communicates the result of a quantile query.
func WriteQuantileResponse(w http.ResponseWriter, resp QuantileResponse) error {
	return writeJSON(w, http.StatusOK, resp)
}

// Package iojson reads command input and writes command output as JSON.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteWith writes v to w as indented JSON. When v cannot be encoded a JSON
// error object is written to ew instead.
func WriteWith(w, ew io.Writer, v any) error {
	bits, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		_, werr := fmt.Fprintln(ew, encodeFailure(err))
		return werr
	}
	bits = append(bits, '\n')
	_, err = w.Write(bits)
	return err
}

// WriteLine writes v as one line of JSON, for streaming lists.
func WriteLine(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

type failure struct {
	Message string `json:"message"`
	Cause   string `json:"json_error"`
}

func encodeFailure(err error) string {
	bits, _ := json.Marshal(failure{Message: "output could not be encoded", Cause: err.Error()})
	return string(bits)
}

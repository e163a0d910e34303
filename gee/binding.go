package gee

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

var (
	ErrEmptyBody      = errors.New("empty body")
	ErrTrailingValues = errors.New("body must contain only one JSON value")
)

// ShouldBindJSON decodes exactly one JSON value into dst. Unknown fields are
// rejected.
func (c *Context) ShouldBindJSON(dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Req.Body, MaxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return ErrTrailingValues
	}
	return nil
}

// BindJSON is ShouldBindJSON that answers 400 on failure.
func (c *Context) BindJSON(dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithError(http.StatusBadRequest, "invalid_input")
		return err
	}
	return nil
}

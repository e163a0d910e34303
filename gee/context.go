package gee

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
)

type H map[string]any

// abortIndex must exceed any real handler index without overflowing when
// nested Next() loops keep incrementing after Abort().
const abortIndex = math.MaxInt32

type Context struct {
	Writer *ResponseWriter
	Req    *http.Request

	Path         string
	Method       string
	Params       map[string]string
	RoutePattern string

	handlers []HandlerFunc
	index    int
	engine   *Engine
}

func newContext(w http.ResponseWriter, req *http.Request) *Context {
	return &Context{
		Writer: NewResponseWriter(w),
		Req:    req,
		Path:   req.URL.Path,
		Method: req.Method,
		index:  -1,
	}
}

func (c *Context) Param(key string) string {
	return c.Params[key]
}

func (c *Context) Query(key string) string {
	return c.Req.URL.Query().Get(key)
}

// Next runs the remaining handlers. Middlewares call it to wrap the rest of
// the chain; it stops as soon as a handler aborts.
func (c *Context) Next() {
	c.index++
	for ; c.index < len(c.handlers) && !c.IsAborted(); c.index++ {
		c.handlers[c.index](c)
	}
}

func (c *Context) Status(code int) {
	c.Writer.WriteHeader(code)
}

func (c *Context) SetHeader(key string, value string) {
	c.Writer.SetHeader(key, value)
}

func (c *Context) String(code int, format string, values ...any) {
	c.SetHeader("Content-Type", "text/plain; charset=utf-8")
	c.Status(code)
	fmt.Fprintf(c.Writer, format, values...)
}

func (c *Context) JSON(code int, obj any) {
	c.SetHeader("Content-Type", "application/json")
	c.Status(code)
	if err := json.NewEncoder(c.Writer).Encode(obj); err != nil {
		http.Error(c.Writer, err.Error(), http.StatusInternalServerError)
	}
}

func (c *Context) Data(code int, data []byte) {
	c.Status(code)
	c.Writer.Write(data)
}

// Redirect answers with a Location header and the given 3xx status.
func (c *Context) Redirect(code int, location string) {
	c.SetHeader("Location", location)
	c.Status(code)
}

func (c *Context) Abort() {
	c.index = abortIndex
}

func (c *Context) IsAborted() bool {
	return c.index >= abortIndex
}

func (c *Context) AbortWithStatus(code int) {
	c.Status(code)
	c.Abort()
}

func (c *Context) AbortWithStatusJSON(code int, obj any) {
	c.Abort()
	if c.Writer.Written() {
		return
	}

	body, err := json.Marshal(obj)
	if err != nil {
		code = http.StatusInternalServerError
		body = []byte(`{"code":500,"detail":"internal"}`)
	}
	c.SetHeader("Content-Type", "application/json")
	c.Status(code)
	c.Writer.Write(body)
}

// AbortWithError stops the chain and writes the standard error body.
// detail is a short machine-readable reason such as "not_found".
func (c *Context) AbortWithError(code int, detail string) {
	c.AbortWithStatusJSON(code, NewErrorResponse(c, code, detail))
}

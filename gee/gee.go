// Package gee is a small HTTP framework: a trie router with path params,
// route groups with middleware chains and a request Context.
package gee

import (
	"log/slog"
	"net/http"
	"strings"
)

type HandlerFunc func(*Context)

type Engine struct {
	*RouterGroup
	router   *router
	groups   []*RouterGroup
	noMethod []HandlerFunc
	noRoute  []HandlerFunc
}

type RouterGroup struct {
	prefix      string
	middlewares []HandlerFunc
	engine      *Engine
}

func New() *Engine {
	engine := &Engine{router: newRouter()}
	engine.noRoute = []HandlerFunc{func(ctx *Context) {
		ctx.AbortWithError(http.StatusNotFound, "not_found")
	}}
	engine.noMethod = []HandlerFunc{func(ctx *Context) {
		ctx.AbortWithError(http.StatusMethodNotAllowed, "method_not_allowed")
	}}
	engine.RouterGroup = &RouterGroup{engine: engine}
	engine.groups = []*RouterGroup{engine.RouterGroup}
	return engine
}

// NoRoute replaces the handlers run when no pattern matches the path.
func (e *Engine) NoRoute(handlers ...HandlerFunc) {
	e.noRoute = handlers
}

// NoMethod replaces the handlers run when the path matches under another method.
func (e *Engine) NoMethod(handlers ...HandlerFunc) {
	e.noMethod = handlers
}

func (group *RouterGroup) Group(prefix string) *RouterGroup {
	engine := group.engine
	newGroup := &RouterGroup{
		prefix: group.prefix + prefix,
		engine: engine,
	}
	engine.groups = append(engine.groups, newGroup)
	return newGroup
}

// Use appends middlewares that run for every request under the group prefix,
// including requests that end in 404/405.
func (group *RouterGroup) Use(middlewares ...HandlerFunc) {
	group.middlewares = append(group.middlewares, middlewares...)
}

func (group *RouterGroup) Handle(method string, comp string, handlers ...HandlerFunc) {
	pattern := group.prefix + comp
	if pattern == "" {
		pattern = "/"
	}
	slog.Debug("route registered", "method", method, "pattern", pattern)
	group.engine.router.addRoute(method, pattern, handlers...)
}

func (group *RouterGroup) GET(pattern string, handlers ...HandlerFunc) {
	group.Handle(http.MethodGet, pattern, handlers...)
}

func (group *RouterGroup) POST(pattern string, handlers ...HandlerFunc) {
	group.Handle(http.MethodPost, pattern, handlers...)
}

func (group *RouterGroup) PUT(pattern string, handlers ...HandlerFunc) {
	group.Handle(http.MethodPut, pattern, handlers...)
}

func (group *RouterGroup) DELETE(pattern string, handlers ...HandlerFunc) {
	group.Handle(http.MethodDelete, pattern, handlers...)
}

func (e *Engine) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var middlewares []HandlerFunc
	for _, group := range e.groups {
		if strings.HasPrefix(req.URL.Path, group.prefix) {
			middlewares = append(middlewares, group.middlewares...)
		}
	}
	ctx := newContext(w, req)
	ctx.handlers = middlewares
	ctx.engine = e
	e.router.handle(ctx)
}

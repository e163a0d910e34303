package gee

import (
	"sort"
	"strings"
)

type router struct {
	roots    map[string]*node         // method -> trie
	handlers map[string][]HandlerFunc // "METHOD-pattern" -> chain
}

func newRouter() *router {
	return &router{
		roots:    make(map[string]*node),
		handlers: make(map[string][]HandlerFunc),
	}
}

func parsePattern(pattern string) []string {
	parts := make([]string, 0)
	for _, item := range strings.Split(pattern, "/") {
		if item == "" {
			continue
		}
		parts = append(parts, item)
		if item[0] == '*' {
			break
		}
	}
	return parts
}

func routeKey(method, pattern string) string {
	return method + "-" + pattern
}

func (r *router) addRoute(method string, pattern string, handlers ...HandlerFunc) {
	if len(handlers) == 0 {
		panic("gee: route " + method + " " + pattern + " has no handler")
	}
	root, ok := r.roots[method]
	if !ok {
		root = &node{}
		r.roots[method] = root
	}
	root.insert(pattern, parsePattern(pattern), 0)
	r.handlers[routeKey(method, pattern)] = append([]HandlerFunc(nil), handlers...)
}

func (r *router) getRoute(method string, path string) (*node, map[string]string) {
	root, ok := r.roots[method]
	if !ok {
		return nil, nil
	}
	searchParts := parsePattern(path)
	n := root.search(searchParts, 0)
	if n == nil {
		return nil, nil
	}

	params := make(map[string]string)
	for i, part := range parsePattern(n.pattern) {
		switch part[0] {
		case ':':
			params[part[1:]] = searchParts[i]
		case '*':
			if len(part) > 1 {
				params[part[1:]] = strings.Join(searchParts[i:], "/")
			}
			return n, params
		}
	}
	return n, params
}

func (r *router) handle(c *Context) {
	n, params := r.getRoute(c.Method, c.Path)
	if n != nil {
		c.Params = params
		c.RoutePattern = n.pattern
		c.handlers = append(c.handlers, r.handlers[routeKey(c.Method, n.pattern)]...)
		c.Next()
		return
	}

	if allow := r.allowedMethods(c.Path); len(allow) > 0 {
		c.SetHeader("Allow", strings.Join(allow, ","))
		c.handlers = append(c.handlers, c.engine.noMethod...)
	} else {
		c.handlers = append(c.handlers, c.engine.noRoute...)
	}
	c.Next()
}

func (r *router) allowedMethods(path string) []string {
	var allow []string
	for method := range r.roots {
		if n, _ := r.getRoute(method, path); n != nil {
			allow = append(allow, method)
		}
	}
	sort.Strings(allow)
	return allow
}

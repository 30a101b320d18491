// Package httputil holds the JSON response and request helpers shared by the
// API handlers: one error envelope, 500s that never echo the cause, and
// request decoding with struct-tag validation.
package httputil

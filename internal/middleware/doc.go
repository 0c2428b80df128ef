// Package middleware provides HTTP middleware for the pipeline server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by mux route template
//   - gzip compression of JSON and text responses
//
// Every response writer wrapper implements Unwrap so that
// http.ResponseController reaches the connection for write deadlines.
package middleware

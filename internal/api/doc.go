// Package api handles incoming HTTP requests, request validation and response
// formatting for the task endpoints. It translates HTTP concerns into
// TaskService calls and maps service errors back to status codes without
// leaking internal details.
package api

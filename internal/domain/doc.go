// Package domain contains the core business entities of the task tracker:
// the Task record, its status values, and the validation rules that every
// persisted task must satisfy. It has no knowledge of storage or transport.
package domain

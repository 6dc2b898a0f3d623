// Package mocks provides centralized mock implementations for testing.
//
// Each mock has a function field per interface method. When a field is nil
// the mock falls back to a default: MockViewCounter keeps real counts in
// memory, MockTaskService returns its configured default values.
//
//	counter := mocks.NewMockViewCounter()
//	counter.DeleteFn = func(ctx context.Context, id int64) error {
//	    return store.ErrUnavailable
//	}
package mocks

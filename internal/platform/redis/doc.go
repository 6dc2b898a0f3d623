// Package redis provides the Redis implementation of store.ViewCounter.
// Each task's view count lives under its own key as a decimal integer string,
// and every mutation is a single atomic Redis command.
package redis

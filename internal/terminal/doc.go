// Package terminal holds the small amount of terminal plumbing the aquarium
// streams need: control sequences, viewport sizing and the shared dimension
// state transports update and schedulers poll.
package terminal

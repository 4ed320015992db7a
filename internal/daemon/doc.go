// Package daemon orchestrates swaydisplayd: the Manager runs the
// apply/verify request flow against the state store, and the
// ChangeWatcher keeps the store current by polling the compositor.
package daemon

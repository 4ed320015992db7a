// Package display holds the domain model for monitor configuration:
// physical monitors with their mode lists, active logical monitor
// placements, the transform codec, and the validation rules applied to
// client-submitted layout requests.
package display

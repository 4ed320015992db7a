// Package kanshi persists accepted monitor layouts as kanshi profile
// files and pokes the external kanshi instance to pick them up. One
// profile file exists per distinct combination of enabled displays.
package kanshi

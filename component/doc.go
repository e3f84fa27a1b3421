// Package component defines the lifecycle contract (Start, Stop, Health)
// for long-lived resources such as HTTP clients, and a Registry that starts
// them in order and stops them in reverse.
package component

// Package ports defines the interfaces between the application core and its
// adapters: event bus, run-state storage, metrics and story execution.
package ports

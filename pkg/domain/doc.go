// Package domain holds the core types shared across plandag: story
// descriptors, computed plans, run execution state and events.
package domain

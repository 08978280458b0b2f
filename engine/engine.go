// Package engine provides implementations of the host translation and
// language-identification capabilities.
package engine

import "github.com/pageglot/pageglot"

// Aliases to the main package types for convenience.
type (
	Factory         = pageglot.EngineFactory
	Engine          = pageglot.Engine
	DetectorFactory = pageglot.DetectorFactory
	Detector        = pageglot.Detector
	Candidate       = pageglot.Candidate
	Availability    = pageglot.Availability
	ProgressFunc    = pageglot.ProgressFunc
)

const (
	Unavailable  = pageglot.Unavailable
	Available    = pageglot.Available
	Downloadable = pageglot.Downloadable
	Downloading  = pageglot.Downloading
)

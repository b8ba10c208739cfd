package constants

// LineOutcome is the parser's decision for one raw line of report text.
type LineOutcome string

// Stable values (written to the run log).
const (
	LineExtracted     LineOutcome = "EXTRACTED"      // produced one incident
	LineNoise         LineOutcome = "NOISE"          // header, banner or blank line
	LineNonConforming LineOutcome = "NON_CONFORMING" // did not fit the five-field shape
)

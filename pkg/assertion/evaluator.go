package assertion

// Evaluator is a function that applies one matcher to an actual
// value. It returns whether the matcher passed and a
// human-readable explanation.
type Evaluator func(def Definition, actual any) (bool, string)

package blocks

// RunResult is what a run hands back to the presentation layer
type RunResult struct {
	Commands []Command `json:"commands"`
}

// RunProgram interprets the given block records
func RunProgram(records []BlockRecord) (RunResult, error) {
	program, err := FromSerializable(records)
	if err != nil {
		return RunResult{}, err
	}
	return RunResult{Commands: Interpret(program.Snapshot())}, nil
}

// CheckChallenge interprets the records and compares the result with expected.
// The only error is a MalformedProgramError for bad records.
func CheckChallenge(records []BlockRecord, expected []Command) (bool, error) {
	result, err := RunProgram(records)
	if err != nil {
		return false, err
	}
	return Matches(result.Commands, expected), nil
}

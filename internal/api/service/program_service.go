package service

import (
	"codekids"
	"codekids/internal/blocks"

	"github.com/rs/zerolog"
)

// CheckResult is the outcome of grading a program
type CheckResult struct {
	Passed   bool
	Commands []blocks.Command
}

// ProgramService interprets and grades programs submitted as JSON
type ProgramService struct {
	interpreter blocks.Interpreter
	logger      zerolog.Logger
}

func NewProgramService() *ProgramService {
	return NewProgramServiceWith(blocks.NewTableInterpreter(blocks.DefaultTable()), codekids.Logger)
}

func NewProgramServiceWith(interpreter blocks.Interpreter, logger zerolog.Logger) *ProgramService {
	return &ProgramService{interpreter: interpreter, logger: logger}
}

// Parse decodes a JSON program. Failures are *blocks.MalformedProgramError.
func (slf *ProgramService) Parse(raw []byte) (*blocks.Program, error) {
	program, err := blocks.ParseProgram(raw)
	if err != nil {
		slf.logger.Debug().Err(err).Msg("Rejected malformed program")
		return nil, err
	}
	return program, nil
}

// Run interprets a JSON program
func (slf *ProgramService) Run(raw []byte) (blocks.RunResult, error) {
	program, err := slf.Parse(raw)
	if err != nil {
		return blocks.RunResult{}, err
	}
	return slf.RunProgram(program), nil
}

// RunProgram interprets an already loaded program
func (slf *ProgramService) RunProgram(program *blocks.Program) blocks.RunResult {
	return blocks.RunResult{Commands: slf.interpreter.Interpret(program.Snapshot())}
}

// Check interprets a JSON program and compares it with expected
func (slf *ProgramService) Check(raw []byte, expected []blocks.Command) (CheckResult, error) {
	program, err := slf.Parse(raw)
	if err != nil {
		return CheckResult{}, err
	}
	return slf.CheckProgram(program, expected), nil
}

// CheckProgram grades an already loaded program
func (slf *ProgramService) CheckProgram(program *blocks.Program, expected []blocks.Command) CheckResult {
	commands := slf.RunProgram(program).Commands
	return CheckResult{
		Passed:   blocks.Matches(commands, expected),
		Commands: commands,
	}
}

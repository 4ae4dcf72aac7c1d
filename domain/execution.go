package domain

// ExecutionRequest asks the external runner to execute one source file.
type ExecutionRequest struct {
	Language string `json:"language" validate:"required,max=32"`
	Version  string `json:"version" validate:"max=32"`
	Source   string `json:"source" validate:"required,max=65536"`
}

type ExecutionResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	Output   string `json:"output"`
	ExitCode int    `json:"exitCode"`
}

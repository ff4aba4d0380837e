// Package api holds the request and response types shared between the HTTP
// layer, the CLI, and the invocation pipeline.
package api

// Attachment is a single file supplied alongside an instruction. Content is
// base64-encoded on the wire and decoded before being written into the
// invocation's working directory. Name is used verbatim as a relative file
// name inside that directory.
type Attachment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// InvocationRequest is one request to run the external tool.
type InvocationRequest struct {
	Instruction string       `json:"instruction"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// InvocationResult is the captured outcome of one tool run. A non-zero exit
// is still a result: Error carries the failure description and ExitCode the
// observed status. Only a failure to start the tool at all is reported as an
// error instead of a result.
type InvocationResult struct {
	Output   string `json:"output"`
	ExitCode int    `json:"exitCode"`
	Stderr   string `json:"stderr,omitempty"`
	Error    string `json:"error,omitempty"`
}

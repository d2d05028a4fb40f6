package events

const (
	// KindToolCallStarted identifies the start of a tool execution.
	KindToolCallStarted Kind = "tool_call.started"
	// KindToolCallCompleted identifies a successful tool execution.
	KindToolCallCompleted Kind = "tool_call.completed"
	// KindToolCallFailed identifies a failed tool execution.
	KindToolCallFailed Kind = "tool_call.failed"
)

// ToolCallStarted marks the start of a tool execution.
type ToolCallStarted struct {
	Base
	ToolUseID string
	ToolName  string
}

// NewToolCallStarted creates a tool call started event.
func NewToolCallStarted(toolUseID, toolName string) ToolCallStarted {
	return ToolCallStarted{Base: NewBase(KindToolCallStarted), ToolUseID: toolUseID, ToolName: toolName}
}

// ToolCallCompleted marks a successful tool execution with its result.
type ToolCallCompleted struct {
	Base
	ToolUseID string
	ToolName  string
	Result    string
}

// NewToolCallCompleted creates a tool call completed event.
func NewToolCallCompleted(toolUseID, toolName, result string) ToolCallCompleted {
	return ToolCallCompleted{Base: NewBase(KindToolCallCompleted), ToolUseID: toolUseID, ToolName: toolName, Result: result}
}

// ToolCallFailed marks a failed tool execution.
type ToolCallFailed struct {
	Base
	ToolUseID string
	ToolName  string
	Err       error
}

// NewToolCallFailed creates a tool call failed event.
func NewToolCallFailed(toolUseID, toolName string, err error) ToolCallFailed {
	return ToolCallFailed{Base: NewBase(KindToolCallFailed), ToolUseID: toolUseID, ToolName: toolName, Err: err}
}

// Package events defines the typed conversation event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - session.*
//   - transcript.*
//   - assistant_audio.*
//   - tool_call.*
//
// Semantics used across the package:
//
//   - Frame: binary audio frame/chunk payload.
//   - Line: a rendered transcript line, already filtered by the display
//     rules (speculative/final deduplication, role gating).
//   - Started/Ended: lifecycle boundaries of the conversation.
//
// session events
//
//   - SessionStarted (session.started): the protocol opening sequence
//     completed and the session accepts audio.
//   - SessionEnded (session.ended): the closing sequence completed; no
//     further events follow.
//
// transcript events
//
//   - TranscriptLine (transcript.line): one rendered transcript line with
//     the role it belongs to.
//
// assistant_audio events
//
//   - AssistantAudioFrame (assistant_audio.frame): decoded PCM chunk of
//     model speech, emitted in arrival order.
//
// tool_call events
//
//   - ToolCallStarted (tool_call.started): tool execution started.
//   - ToolCallCompleted (tool_call.completed): tool execution completed.
//   - ToolCallFailed (tool_call.failed): tool execution failed.
package events

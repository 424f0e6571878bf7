/*
Copyright 2026 Mohit Aggarwal
SPDX-License-Identifier: Apache-2.0
*/

// Package toolcall provides the declaration and handler plumbing shared by
// the agent's function-calling tools.
package toolcall

import (
	"context"
	"fmt"
	"maps"

	"google.golang.org/genai"
)

// Metadata describes one tool available to the agent: its declaration as
// presented to the model, and the handler invoked when the model calls it.
type Metadata struct {
	Definition *genai.FunctionDeclaration
	Handler    func(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse
}

// Param extracts a required parameter from a function call with type safety.
// On failure it returns a FunctionResponse error that can be sent straight
// back to the model.
func Param[T any](call *genai.FunctionCall, name string) (T, *genai.FunctionResponse) {
	var zero T
	value, exists := call.Args[name]
	if !exists {
		return zero, Error(call, "%s parameter is required", name)
	}
	return coerce[T](call, name, value)
}

// OptionalParam extracts an optional parameter, returning the default when
// the parameter is absent.
func OptionalParam[T any](call *genai.FunctionCall, name string, defaultValue T) (T, *genai.FunctionResponse) {
	value, exists := call.Args[name]
	if !exists {
		return defaultValue, nil
	}
	return coerce[T](call, name, value)
}

// coerce asserts the JSON value to T, converting float64 to the integer
// types the JSON decoder never produces directly.
func coerce[T any](call *genai.FunctionCall, name string, value any) (T, *genai.FunctionResponse) {
	if v, ok := value.(T); ok {
		return v, nil
	}
	var zero T
	if f, ok := value.(float64); ok {
		switch any(zero).(type) {
		case int:
			return any(int(f)).(T), nil
		case int32:
			return any(int32(f)).(T), nil
		case int64:
			return any(int64(f)).(T), nil
		}
	}
	return zero, Error(call, "%s parameter must be of type %T, got %T", name, zero, value)
}

// Error creates a FunctionResponse carrying an error message.
func Error(call *genai.FunctionCall, format string, args ...any) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:   call.ID,
		Name: call.Name,
		Response: map[string]any{
			"error": fmt.Sprintf(format, args...),
		},
	}
}

// ErrorWithContext creates an error FunctionResponse with extra fields.
func ErrorWithContext(call *genai.FunctionCall, err error, context map[string]any) *genai.FunctionResponse {
	response := map[string]any{
		"error": err.Error(),
	}
	maps.Copy(response, context)
	return &genai.FunctionResponse{
		ID:       call.ID,
		Name:     call.Name,
		Response: response,
	}
}

// Result creates a successful FunctionResponse with the given payload.
func Result(call *genai.FunctionCall, payload map[string]any) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:       call.ID,
		Name:     call.Name,
		Response: payload,
	}
}

// Text creates a successful FunctionResponse whose payload is a single
// result string, the shape used by tools that return shaped text.
func Text(call *genai.FunctionCall, text string) *genai.FunctionResponse {
	return Result(call, map[string]any{"result": text})
}

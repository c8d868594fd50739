package logging

import (
	"context"
)

const (
	RunIDKey   = "run_id"
	SideKey    = "side"
	InputKey   = "input"
	CommandKey = "command"
)

func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

func WithSide(ctx context.Context, side string) context.Context {
	return context.WithValue(ctx, SideKey, side)
}

func WithInput(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, InputKey, path)
}

func WithCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, CommandKey, command)
}

func GetRunID(ctx context.Context) string {
	return getString(ctx, RunIDKey)
}

func GetSide(ctx context.Context) string {
	return getString(ctx, SideKey)
}

func GetInput(ctx context.Context) string {
	return getString(ctx, InputKey)
}

func GetCommand(ctx context.Context) string {
	return getString(ctx, CommandKey)
}

func getString(ctx context.Context, key string) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 8)

	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, RunIDKey, runID)
	}

	if command := GetCommand(ctx); command != "" {
		fields = append(fields, CommandKey, command)
	}

	if side := GetSide(ctx); side != "" {
		fields = append(fields, SideKey, side)
	}

	if input := GetInput(ctx); input != "" {
		fields = append(fields, InputKey, input)
	}

	return fields
}

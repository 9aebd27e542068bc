package handlers

import "coding-agent/internal/tools"

// Default returns the built-in tool handlers.
func Default() []tools.Handler {
	return []tools.Handler{
		ListFilesHandler{},
		FileReadHandler{},
	}
}

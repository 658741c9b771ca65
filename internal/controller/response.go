// Package controller sits between the UI and the Jira adapter. Every
// operation returns a uniform Response envelope so views never branch
// on error types, and raw API payloads are normalized into the model
// package's display types.
package controller

// Response is the uniform envelope returned by every controller
// operation. Result holds the operation-specific payload when Success
// is true; Error carries a user-facing message. Aggregating operations
// may set both: a partial result plus the message of the page that
// failed.
type Response struct {
	Success bool
	Result  interface{}
	Error   string
}

func ok(result interface{}) Response {
	return Response{Success: true, Result: result}
}

func fail(message string) Response {
	return Response{Success: false, Error: message}
}

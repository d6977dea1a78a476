package dto

import "storefront-client/internal/model"

// Result is the normalized outcome every user-triggered operation resolves
// to. Failures of any class (validation, auth, transport, server) are folded
// into it; no error escapes to callers as a panic or unhandled exception.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func OK(message string) Result {
	return Result{Success: true, Message: message}
}

func Fail(message string) Result {
	return Result{Success: false, Message: message}
}

// LoginResult carries the resolved user when the profile could be fetched.
// A nil User with Success true is valid: authentication is token-presence
// driven, not user-object driven.
type LoginResult struct {
	Result
	User *model.User `json:"user,omitempty"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type ProfileUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

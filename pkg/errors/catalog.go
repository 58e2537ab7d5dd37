package errors

import "net/http"

// Authentication and access.
var (
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "No autorizado")
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
)

// Request and resource state.
var (
	ErrValidation       = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrNotFound         = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict         = New("CONFLICT", http.StatusConflict, "conflict")
	ErrAlreadySubmitted = New("ALREADY_SUBMITTED", http.StatusConflict, "already submitted")
)

// Grading rules.
var (
	ErrInvalidPoints   = New("INVALID_POINTS", http.StatusUnprocessableEntity, "total points must be greater than zero")
	ErrGradeOutOfRange = New("GRADE_OUT_OF_RANGE", http.StatusBadRequest, "grade outside the allowed range")
)

// Infrastructure.
var (
	ErrInternal  = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrUpstream  = New("UPSTREAM_ERROR", http.StatusBadGateway, "upstream service failed")
	ErrCacheMiss = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

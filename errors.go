package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrReferenceNotFound = errors.New("referenced record not found")
	ErrInvalidJSON       = errors.New("invalid JSON body")
	ErrNotifier          = errors.New("notifier failed")
)

// ValidationError collects messages per request field. It is reported as 422.
type ValidationError struct {
	Fields map[string][]string
	// reference is set when at least one failure is a dangling foreign key.
	reference bool
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrReferenceNotFound && e.reference
}

// FieldErrors is the builder used while validating a request.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

func (f FieldErrors) Merge(other FieldErrors) {
	for k, msgs := range other {
		f[k] = append(f[k], msgs...)
	}
}

func (f FieldErrors) Empty() bool { return len(f) == 0 }

// Err returns nil when nothing was collected.
func (f FieldErrors) Err() error {
	if f.Empty() {
		return nil
	}
	return &ValidationError{Fields: f}
}

// referenceError marks a dangling foreign key on field.
func referenceError(field string) *ValidationError {
	return &ValidationError{
		Fields:    map[string][]string{field: {fmt.Sprintf("The selected %s is invalid.", field)}},
		reference: true,
	}
}

// joinValidation merges field errors with reference errors into one ValidationError.
func joinValidation(fields FieldErrors, refs []*ValidationError) error {
	if fields.Empty() && len(refs) == 0 {
		return nil
	}
	all := FieldErrors{}
	all.Merge(fields)
	for _, r := range refs {
		all.Merge(r.Fields)
	}
	return &ValidationError{Fields: all, reference: len(refs) > 0}
}

// respondError maps the error taxonomy onto HTTP responses.
func respondError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid.",
			"errors":  verr.Fields,
		})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage(err)})
	case errors.Is(err, ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, ErrInvalidJSON):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
	case errors.Is(err, ErrNotifier):
		log.Printf("❌ %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Mail could not be sent"})
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
	}
	c.Abort()
}

// notFoundError names the missing entity, e.g. "Shop not found".
type notFoundError struct{ entity string }

func (e notFoundError) Error() string { return e.entity + " not found" }
func (e notFoundError) Unwrap() error { return ErrNotFound }

func notFound(entity string) error { return notFoundError{entity: entity} }

func notFoundMessage(err error) string {
	var nf notFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	return "Not found"
}

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

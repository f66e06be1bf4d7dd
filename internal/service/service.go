// Package service contains the Partner Directory Service: the business rules
// between the HTTP handlers and the repositories.
//
//	Handler (HTTP) → Service (validation, query building) → Repository (store)
//
// Services accept plain values, never *http.Request, and return apperror
// kinds that the handler layer maps to status codes. Each operation is one
// independent store call; nothing is cached or shared between requests.
package service

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tamy417/study-partner-server/internal/apperror"
)

// parseID converts a hex string into an ObjectID, reporting a malformed id as
// apperror.ErrInvalidIdentifier before any store access.
func parseID(resource, id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return bson.NilObjectID, apperror.InvalidIdentifier(resource, id)
	}
	return oid, nil
}

// requireParam trims a required query parameter and rejects a blank one.
func requireParam(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperror.MissingParameter(name)
	}
	return value, nil
}

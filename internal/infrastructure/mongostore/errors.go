package mongostore

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/go-registration-flow/internal/domain/repository"
)

// mapWriteError turns a duplicate key error into a *repository.ConflictError
// naming the violated field. Other errors pass through.
func mapWriteError(err error) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return &repository.ConflictError{Field: duplicateField(err.Error())}
}

// duplicateField extracts the field from "... index: <field>_1 dup key: ...".
func duplicateField(msg string) string {
	i := strings.Index(msg, "index: ")
	if i < 0 {
		return ""
	}
	rest := msg[i+len("index: "):]
	if j := strings.IndexAny(rest, " _"); j >= 0 {
		rest = rest[:j]
	}
	switch rest {
	case repository.FieldEmail, repository.FieldUsername, repository.FieldPhone:
		return rest
	}
	return ""
}

func mapReadError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}

package users

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gogotex/gogotex/backend/user-sync/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserSchemaName is the registry key of the user record schema.
const UserSchemaName = "User"

// Field describes one persisted attribute of a record.
type Field struct {
	Name     string
	Required bool
	Unique   bool
	Default  string
}

// Schema is the passive contract the stores apply at write time.
type Schema struct {
	Name   string
	Fields []Field

	indexMu sync.Mutex
	indexed map[string]bool
}

var (
	registryMu sync.Mutex
	registry   = map[string]*Schema{}
)

// RegisterSchema returns the schema registered under name, building it on the
// first call. Repeated calls reuse the existing registration.
func RegisterSchema(name string) *Schema {
	registryMu.Lock()
	defer registryMu.Unlock()
	if s, ok := registry[name]; ok {
		return s
	}
	s := &Schema{Name: name, Fields: userFields(), indexed: map[string]bool{}}
	registry[name] = s
	return s
}

// UserSchema is shorthand for RegisterSchema(UserSchemaName).
func UserSchema() *Schema { return RegisterSchema(UserSchemaName) }

func userFields() []Field {
	return []Field{
		{Name: "externalId", Required: true, Unique: true},
		{Name: "email", Required: true, Unique: true},
		{Name: "username", Required: true, Unique: true},
		{Name: "firstName", Required: true, Default: "Unknown"},
		{Name: "lastName", Required: true, Default: "User"},
		// photoUrl is required to be present; an empty value is accepted.
		{Name: "photoUrl", Required: true},
	}
}

// UniqueKeys lists the fields carrying a unique constraint.
func (s *Schema) UniqueKeys() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Unique {
			out = append(out, f.Name)
		}
	}
	return out
}

// Apply fills defaults for empty fields that declare one.
func (s *Schema) Apply(u *models.User) {
	for _, f := range s.Fields {
		if f.Default == "" {
			continue
		}
		if p := fieldRef(u, f.Name); p != nil && *p == "" {
			*p = f.Default
		}
	}
}

// Validate reports required fields left empty. photoUrl is exempt from the
// emptiness check since the provider may not send an image.
func (s *Schema) Validate(u *models.User) error {
	var missing []string
	for _, f := range s.Fields {
		if !f.Required || f.Name == "photoUrl" {
			continue
		}
		if p := fieldRef(u, f.Name); p != nil && strings.TrimSpace(*p) == "" {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// EnsureIndexes creates one unique index per unique key. It runs once per
// collection namespace for the lifetime of the process.
func (s *Schema) EnsureIndexes(ctx context.Context, col *mongo.Collection) error {
	ns := col.Database().Name() + "." + col.Name()
	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	if s.indexed[ns] {
		return nil
	}
	idx := make([]mongo.IndexModel, 0, len(s.Fields))
	for _, key := range s.UniqueKeys() {
		idx = append(idx, mongo.IndexModel{
			Keys:    bson.D{{Key: key, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(key + "_unique"),
		})
	}
	if _, err := col.Indexes().CreateMany(ctx, idx); err != nil {
		return fmt.Errorf("ensure %s indexes: %w", s.Name, err)
	}
	s.indexed[ns] = true
	return nil
}

func fieldRef(u *models.User, name string) *string {
	switch name {
	case "externalId":
		return &u.ExternalID
	case "email":
		return &u.Email
	case "username":
		return &u.Username
	case "firstName":
		return &u.FirstName
	case "lastName":
		return &u.LastName
	case "photoUrl":
		return &u.PhotoURL
	}
	return nil
}

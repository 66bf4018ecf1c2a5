// Package docstore mirrors ledger records into a per-user document table on
// Supabase. Each row holds one JSON document addressed by user, collection
// and id; single documents such as settings use a "collection/id" path.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/supabase-community/supabase-go"
)

const table = "documents"

// ErrNotFound is returned when updating a document that does not exist.
var ErrNotFound = errors.New("document not found")

type row struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Collection string          `json:"collection"`
	Data       json.RawMessage `json:"data"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type dataRow struct {
	Data json.RawMessage `json:"data"`
}

// SupabaseStore is the remote document store.
type SupabaseStore struct {
	client *supabase.Client
	log    *logrus.Logger
	now    func() time.Time
}

// NewSupabaseStore connects to the Supabase project at url.
func NewSupabaseStore(url, key string, log *logrus.Logger) (*SupabaseStore, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &SupabaseStore{client: client, log: log, now: time.Now}, nil
}

// Add stores doc in collection and returns its id. A doc that carries an
// "id" field keeps it so local and remote records share ids.
func (s *SupabaseStore) Add(ctx context.Context, userID, collection string, doc any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, id, err := withID(doc)
	if err != nil {
		return "", err
	}
	if err := s.upsert(userID, collection, id, data); err != nil {
		return "", fmt.Errorf("failed to add document to %s: %w", collection, err)
	}
	return id, nil
}

// List returns every document of collection.
func (s *SupabaseStore) List(ctx context.Context, userID, collection string) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, _, err := s.client.From(table).
		Select("data", "", false).
		Eq("user_id", userID).
		Eq("collection", collection).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	return decodeRows(data)
}

// Update merges patch into the document's top-level fields.
func (s *SupabaseStore) Update(ctx context.Context, userID, collection, id string, patch any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	current, ok, err := s.get(userID, collection, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, ErrNotFound)
	}
	merged, err := mergePatch(current, patch)
	if err != nil {
		return err
	}
	_, _, err = s.client.From(table).
		Update(map[string]any{"data": merged, "updated_at": s.now().UTC()}, "", "").
		Eq("user_id", userID).
		Eq("collection", collection).
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes one document.
func (s *SupabaseStore) Delete(ctx context.Context, userID, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := s.client.From(table).
		Delete("", "").
		Eq("user_id", userID).
		Eq("collection", collection).
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// SetMerge merges patch into the document at docPath, creating it if needed.
func (s *SupabaseStore) SetMerge(ctx context.Context, userID, docPath string, patch any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	collection, id, err := splitPath(docPath)
	if err != nil {
		return err
	}
	current, _, err := s.get(userID, collection, id)
	if err != nil {
		return err
	}
	merged, err := mergePatch(current, patch)
	if err != nil {
		return err
	}
	if err := s.upsert(userID, collection, id, merged); err != nil {
		return fmt.Errorf("failed to merge %s: %w", docPath, err)
	}
	return nil
}

// Get returns the document at docPath; false when it does not exist.
func (s *SupabaseStore) Get(ctx context.Context, userID, docPath string) (json.RawMessage, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	collection, id, err := splitPath(docPath)
	if err != nil {
		return nil, false, err
	}
	return s.get(userID, collection, id)
}

func (s *SupabaseStore) get(userID, collection, id string) (json.RawMessage, bool, error) {
	data, _, err := s.client.From(table).
		Select("data", "", false).
		Eq("user_id", userID).
		Eq("collection", collection).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s/%s: %w", collection, id, err)
	}
	docs, err := decodeRows(data)
	if err != nil {
		return nil, false, err
	}
	if len(docs) == 0 {
		return nil, false, nil
	}
	return docs[0], true, nil
}

func (s *SupabaseStore) upsert(userID, collection, id string, data json.RawMessage) error {
	r := row{
		ID:         id,
		UserID:     userID,
		Collection: collection,
		Data:       data,
		UpdatedAt:  s.now().UTC(),
	}
	_, count, err := s.client.From(table).
		Insert(r, true, "user_id,collection,id", "minimal", "").
		Execute()
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"collection": collection, "id": id, "count": count}).Debug("Document stored")
	return nil
}

func decodeRows(data []byte) ([]json.RawMessage, error) {
	var rows []dataRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse documents: %w", err)
	}
	out := make([]json.RawMessage, 0, len(rows))
	for _, r := range rows {
		if len(r.Data) > 0 && string(r.Data) != "null" {
			out = append(out, r.Data)
		}
	}
	return out, nil
}

// splitPath turns "settings/preferences" into its collection and id.
func splitPath(docPath string) (string, string, error) {
	collection, id, ok := strings.Cut(docPath, "/")
	if !ok || collection == "" || id == "" || strings.Contains(id, "/") {
		return "", "", fmt.Errorf("invalid document path %q", docPath)
	}
	return collection, id, nil
}

// withID encodes doc and makes sure it carries a string id.
func withID(doc any) (json.RawMessage, string, error) {
	fields, err := toFields(doc)
	if err != nil {
		return nil, "", err
	}
	id, _ := fields["id"].(string)
	if id == "" {
		id = uuid.New().String()
		fields["id"] = id
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode document: %w", err)
	}
	return data, id, nil
}

// mergePatch overlays the top-level fields of patch on base.
func mergePatch(base json.RawMessage, patch any) (json.RawMessage, error) {
	merged := map[string]any{}
	if len(base) > 0 {
		if err := json.Unmarshal(base, &merged); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		if merged == nil {
			merged = map[string]any{}
		}
	}
	fields, err := toFields(patch)
	if err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	data, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

func toFields(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("document is not an object: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

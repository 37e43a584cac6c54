// Package search maintains a best-effort user directory index used by the
// admin search endpoint. Database rows stay authoritative; index writes are
// fire-and-forget.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/fitnease/fitnease-auth/internal/models"
	"github.com/fitnease/fitnease-auth/pkg/logging"
)

type UserIndex struct {
	ES    *elasticsearch.Client
	IndexName string
}

func NewUserIndex(es *elasticsearch.Client, index string) *UserIndex {
	return &UserIndex{ES: es, IndexName: index}
}

type userDoc struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsActive  bool   `json:"is_active"`
}

// Index upserts the user's directory document. Failures are logged only.
func (u *UserIndex) Index(ctx context.Context, user *models.User) {
	if u == nil || u.ES == nil {
		return
	}
	l := logging.FromContext(ctx).With("component", "search", "user_id", user.ID)

	doc := userDoc{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsActive:  user.IsActive,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		l.Error("index_marshal_failed", "error", err)
		return
	}

	res, err := u.ES.Index(
		u.IndexName,
		bytes.NewReader(data),
		u.ES.Index.WithDocumentID(strconv.FormatUint(uint64(user.ID), 10)),
		u.ES.Index.WithContext(ctx),
	)
	if err != nil {
		l.Error("index_failed", "error", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		l.Error("index_failed", "status", res.Status())
	}
}

func (u *UserIndex) Delete(ctx context.Context, userID uint) {
	if u == nil || u.ES == nil {
		return
	}
	l := logging.FromContext(ctx).With("component", "search", "user_id", userID)

	res, err := u.ES.Delete(
		u.IndexName,
		strconv.FormatUint(uint64(userID), 10),
		u.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		l.Error("deindex_failed", "error", err)
		return
	}
	res.Body.Close()
}

// Search queries the directory index and returns matching user ids.
func (u *UserIndex) Search(ctx context.Context, query string, from, size int) (int64, []uint, error) {
	if u == nil || u.ES == nil {
		return 0, nil, fmt.Errorf("search index not configured")
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"username^2", "email^2", "first_name", "last_name"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := u.ES.Search(
		u.ES.Search.WithContext(ctx),
		u.ES.Search.WithIndex(u.IndexName),
		u.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search error: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source userDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	ids := make([]uint, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		ids[i] = hit.Source.UserID
	}
	return r.Hits.Total.Value, ids, nil
}

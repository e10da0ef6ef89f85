package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-registration-flow/internal/domain/entity"
)

// indexUser writes the public fields of u to the users index. Failures are
// logged and never block activation.
func (s *Service) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"username":   u.Username,
		"phone":      u.Phone,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}

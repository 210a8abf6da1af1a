package resolvers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"

	gqlmodels "retail.GO/graphql/models"
	inventoryEntity "retail.GO/model/entity/inventory"
)

var (
	searchServiceInstance *SearchService
	searchServiceOnce     sync.Once
)

// GetSearchService returns singleton SearchService.
func GetSearchService() *SearchService {
	searchServiceOnce.Do(func() {
		searchServiceInstance = NewSearchService()
	})
	return searchServiceInstance
}

type SearchService struct {
	client *elasticsearch.Client
	prefix string
}

func NewSearchService() *SearchService {
	host := os.Getenv("ELASTICSEARCH_HOST")
	if host == "" {
		host = "http://localhost:9200"
	}
	prefix := os.Getenv("ELASTICSEARCH_INDEX_PREFIX")
	if prefix == "" {
		prefix = "retail"
	}

	cfg := elasticsearch.Config{
		Addresses: []string{host},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return &SearchService{prefix: prefix}
	}

	return &SearchService{
		client: client,
		prefix: prefix,
	}
}

// IndexName is the transfers index ({prefix}_inventory_transfers).
func (s *SearchService) IndexName() string {
	return fmt.Sprintf("%s_inventory_transfers", s.prefix)
}

// Configured reports whether an ES client was built.
func (s *SearchService) Configured() bool {
	return s.client != nil
}

// TransferSearch (resolver) delegates to SearchService then hydrates full
// aggregates from the store.
func (r *QueryResolver) TransferSearch(ctx context.Context, args struct {
	Query       string
	PageSize    *int32
	CurrentPage *int32
}) (*gqlmodels.TransferList, error) {
	ps, cp := pageDefaults(args.PageSize, args.CurrentPage)

	ids, total, err := GetSearchService().Search(ctx, args.Query, ps, cp)
	if err != nil {
		return nil, err
	}

	repo := r.transferRepo()
	ts := make([]inventoryEntity.TransferRequest, 0, len(ids))
	for _, id := range ids {
		t, err := repo.FindByID(id)
		if err != nil {
			continue
		}
		ts = append(ts, *t)
	}
	return buildList(ts, int64(total), ps, cp)
}

// Search queries the transfers index by number, notes and participant names.
func (s *SearchService) Search(ctx context.Context, query string, pageSize, currentPage int) ([]uint, int, error) {
	if s.client == nil {
		return nil, 0, fmt.Errorf("elasticsearch not configured")
	}

	from := (currentPage - 1) * pageSize

	body := map[string]interface{}{
		"from": from,
		"size": pageSize,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"transfer_number^3", "notes", "requested_by", "cancel_reason"},
			},
		},
	}

	bodyBytes, _ := json.Marshal(body)

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.IndexName()),
		s.client.Search.WithBody(bytes.NewReader(bodyBytes)),
	)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var esResp struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, 0, err
	}

	var ids []uint
	for _, hit := range esResp.Hits.Hits {
		if transferID, ok := hit.Source["transfer_id"].(float64); ok {
			ids = append(ids, uint(transferID))
		}
	}
	return ids, esResp.Hits.Total.Value, nil
}

// IndexTransfer upserts one transfer document. Used by the cron index job.
func (s *SearchService) IndexTransfer(ctx context.Context, t *inventoryEntity.TransferRequest) error {
	if s.client == nil {
		return fmt.Errorf("elasticsearch not configured")
	}
	doc := map[string]interface{}{
		"transfer_id":     t.TransferID,
		"transfer_number": t.TransferNumber,
		"status":          string(t.Status),
		"notes":           t.Notes,
		"requested_by":    t.RequestedBy,
		"cancel_reason":   t.CancelReason,
	}
	blob, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := s.client.Index(
		s.IndexName(),
		bytes.NewReader(blob),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(fmt.Sprint(t.TransferID)),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}
	return nil
}

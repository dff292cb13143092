package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/unimart/internal/models"
)

// Indexer keeps the products index in sync and answers catalog searches.
type Indexer struct {
	client *elasticsearch.Client
	index  string
}

func NewIndexer(client *elasticsearch.Client, index string) *Indexer {
	return &Indexer{client: client, index: index}
}

type productDoc struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	OwnerID     uint   `json:"owner_id"`
	IsActive    bool   `json:"is_active"`
}

func (i *Indexer) IndexProduct(ctx context.Context, p models.Product) error {
	body, err := json.Marshal(productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.String(),
		OwnerID:     p.OwnerID,
		IsActive:    p.IsActive,
	})
	if err != nil {
		return fmt.Errorf("es: marshal product: %w", err)
	}

	res, err := i.client.Index(i.index, bytes.NewReader(body),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithDocumentID(docID(p.ID)),
		i.client.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("es: index product %d: %w", p.ID, err)
	}
	defer res.Body.Close()
	return responseError(res, "index product")
}

// DeleteProduct treats a missing document as already deleted.
func (i *Indexer) DeleteProduct(ctx context.Context, id uint) error {
	res, err := i.client.Delete(i.index, docID(id), i.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: delete product %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseError(res, "delete product")
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchProducts returns matching active product ids in relevance order.
func (i *Indexer) SearchProducts(ctx context.Context, q string, from, size int) ([]uint, int64, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     q,
						"fields":    []string{"name^2", "description"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"is_active": true},
				},
			},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, 0, fmt.Errorf("es: marshal query: %w", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.index),
		i.client.Search.WithBody(bytes.NewReader(body)),
		i.client.Search.WithFrom(from),
		i.client.Search.WithSize(size),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if err := responseError(res, "search"); err != nil {
		return nil, 0, err
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("es: decode search: %w", err)
	}
	ids := make([]uint, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id, err := strconv.ParseUint(h.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, parsed.Hits.Total.Value, nil
}

func responseError(res *esapi.Response, op string) error {
	if !res.IsError() {
		return nil
	}
	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("es: %s: %s: %s", op, res.Status(), body)
}

func docID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

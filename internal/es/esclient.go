package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/food_delivery/internal/config"
	"github.com/Skotchmaster/food_delivery/internal/events"
)

// NewClient connects and checks the cluster with an Info call.
func NewClient(ctx context.Context, cfg config.Elastic) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: new client: %w", err)
	}

	infoCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := client.Info(client.Info.WithContext(infoCtx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch: info: %s: %s", res.Status(), body)
	}
	return client, nil
}

// AuditIndexer stores session events as documents, one per event id.
type AuditIndexer struct {
	Client *elasticsearch.Client
	Index  string
}

func (a *AuditIndexer) Publish(ctx context.Context, evt events.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("elasticsearch: marshal event: %w", err)
	}

	res, err := a.Client.Index(
		a.Index,
		bytes.NewReader(body),
		a.Client.Index.WithContext(ctx),
		a.Client.Index.WithDocumentID(evt.ID),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch: index %s: %w", a.Index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("elasticsearch: index %s: %s: %s", a.Index, res.Status(), msg)
	}
	return nil
}

package search

import (
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"
)

func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch error: %s: %s", res.Status(), body)
	}
	return client, nil
}

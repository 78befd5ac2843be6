package main

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/keshon/invisible-bot/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type HistoryCmd struct {
	Guild string `help:"Server id." required:""`
	Path  string `help:"Datastore file; defaults to STORAGE_PATH."`
}

func (c *HistoryCmd) Run(g *Globals) error {
	path := c.Path
	if path == "" {
		cfg, err := g.config()
		if err != nil {
			return err
		}
		path = cfg.StoragePath
	}

	st, err := storage.New(context.Background(), path)
	if err != nil {
		return err
	}
	defer st.Close()

	history, err := st.CommandHistory(c.Guild)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if history == nil {
		history = []storage.CommandRecord{}
	}

	enc := json.NewEncoder(g.out)
	enc.SetIndent("", "  ")
	return enc.Encode(history)
}

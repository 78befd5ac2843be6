// Package storage keeps a per-guild journal of executed commands on disk.
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/keshon/datastore"
)

const commandHistoryLimit = 50

type Storage struct {
	ds     *datastore.DataStore
	cancel context.CancelFunc
	mu     sync.Mutex // serializes read-modify-write of guild records
}

// CommandRecord is one journal entry.
type CommandRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Options   string    `json:"options,omitempty"`
	Outcome   string    `json:"outcome"`
	Datetime  time.Time `json:"datetime"`
}

// Record is everything stored for a guild.
type Record struct {
	CommandsHistory []CommandRecord `json:"cmd_history"`
}

// New opens the datastore at filePath. Its background saver stops when ctx is
// cancelled or Close is called.
func New(ctx context.Context, filePath string) (*Storage, error) {
	ctx, cancel := context.WithCancel(ctx)
	ds, err := datastore.New(ctx, filePath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open datastore %s: %w", filePath, err)
	}
	return &Storage{ds: ds, cancel: cancel}, nil
}

// Close stops the background saver and flushes the journal to disk.
func (s *Storage) Close() error {
	s.cancel()
	return s.ds.Close()
}

func (s *Storage) guildRecord(guildID string) (*Record, error) {
	var record Record
	if _, err := s.ds.Get(guildID, &record); err != nil {
		return nil, fmt.Errorf("error reading guild record: %w", err)
	}
	if record.CommandsHistory == nil {
		record.CommandsHistory = []CommandRecord{}
	}
	return &record, nil
}

// AppendCommand adds an entry to the guild's journal, keeping the most recent ones.
func (s *Storage) AppendCommand(guildID string, rec CommandRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.guildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandsHistory = append(record.CommandsHistory, rec)
	if n := len(record.CommandsHistory); n > commandHistoryLimit {
		record.CommandsHistory = record.CommandsHistory[n-commandHistoryLimit:]
	}
	if err := s.ds.Set(guildID, record); err != nil {
		return fmt.Errorf("error saving guild record: %w", err)
	}
	return nil
}

// CommandHistory returns the guild's journal, oldest first.
func (s *Storage) CommandHistory(guildID string) ([]CommandRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.guildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistory, nil
}

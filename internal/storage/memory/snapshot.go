package memory

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"time"

	"github.com/nikmy/dynmodel/internal/model"
	"github.com/nikmy/dynmodel/pkg/errors"
	"github.com/nikmy/dynmodel/pkg/logger"
)

// NewSnapshotter persists c to fileName every interval. JSON numbers are
// read back as float64.
func NewSnapshotter(c *Command, fileName string, interval time.Duration, log logger.Logger) *Snapshotter {
	return &Snapshotter{
		c:        c,
		fileName: fileName,
		interval: interval,
		log:      log.With("memory_snapshot"),
	}
}

type Snapshotter struct {
	c        *Command
	fileName string
	interval time.Duration
	log      logger.Logger
}

// Run restores the last snapshot, then saves on every tick and once more
// when ctx is done.
func (s *Snapshotter) Run(ctx context.Context) error {
	err := s.Load()
	if err != nil {
		return err
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.log.Warn(s.Save())
		case <-ctx.Done():
			return s.Save()
		}
	}
}

func (s *Snapshotter) Save() error {
	s.log.Debugf("saving data to %s", s.fileName)

	bytes, err := s.dump()
	if err != nil {
		return errors.WrapFail(err, "marshal snapshot")
	}

	err = os.WriteFile(s.fileName, bytes, fs.ModePerm)
	return errors.WrapFailf(err, "write %s", s.fileName)
}

// Load adds the snapshot rows whose ids are not stored yet. A missing
// file is not an error.
func (s *Snapshotter) Load() error {
	s.log.Debugf("reading data from %s", s.fileName)

	bytes, err := os.ReadFile(s.fileName)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.WrapFailf(err, "read %s", s.fileName)
	}

	var data map[string][]model.Attributes
	err = json.Unmarshal(bytes, &data)
	if err != nil {
		return errors.WrapFailf(err, "parse %s", s.fileName)
	}

	s.restore(data)
	return nil
}

// dump holds the read lock until the rows are marshaled.
func (s *Snapshotter) dump() ([]byte, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	data := make(map[string][]model.Attributes, len(s.c.tables))
	for resource, t := range s.c.tables {
		rows := make([]model.Attributes, 0, len(t.order))
		for _, k := range t.order {
			rows = append(rows, t.rows[k])
		}
		data[resource] = rows
	}
	return json.Marshal(data)
}

func (s *Snapshotter) restore(data map[string][]model.Attributes) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	for resource, rows := range data {
		for _, row := range rows {
			id, ok := row[model.KeyID]
			if !ok {
				s.log.Warnf("skipping %s row without id", resource)
				continue
			}
			if _, exists := s.c.lookup(resource, id); exists {
				continue
			}
			s.c.insert(resource, row)
		}
	}
}

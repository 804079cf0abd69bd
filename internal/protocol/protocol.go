// Package protocol implements the experiment protocol database: monotonic
// experiment identifiers, record creation with computed lifecycle fields,
// incremental aggregate summaries and read-only projections over the
// backing record store.
//
// The protocol follows a single-writer, load-mutate-dump model. Writes from
// one process apply in call order; concurrent external writers are picked
// up by periodic reloads, and the last save wins. Callers needing fresh
// externally-written data must Reload before reading.
package protocol

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mle-tools/mle-monitor/internal/logger"
	"github.com/mle-tools/mle-monitor/internal/models"
	"github.com/mle-tools/mle-monitor/internal/store"
)

// Remote mirrors the serialized protocol file to remote object storage.
// Both operations report success as a boolean: sync failures are best
// effort and must never block the local workflow.
type Remote interface {
	Pull(ctx context.Context) bool
	Push(ctx context.Context) bool
}

// Protocol is the experiment tracking database.
type Protocol struct {
	path   string
	remote Remote
	log    *log.Logger

	db      *store.Store
	summary *models.Summary
	ids     []string
	lastID  int
}

// New opens the protocol database at path. When a remote is supplied the
// remote copy is pulled once before the first local load; afterwards the
// caller decides when to Reload or Push.
func New(ctx context.Context, path string, remote Remote) (*Protocol, error) {
	p := &Protocol{
		path:   path,
		remote: remote,
		log:    logger.New("protocol"),
	}
	if p.remote != nil {
		p.remote.Pull(ctx)
	}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload re-reads the backing file, rebuilding the ID set and the cached
// summary. A corrupt file is recovered as an empty database with a warning.
func (p *Protocol) Reload() error {
	db, err := store.Load(p.path)
	if err != nil {
		if !errors.Is(err, store.ErrCorruptState) {
			return err
		}
		p.log.Warn("protocol file unreadable, starting from empty state",
			"path", p.path, "err", err)
	}
	p.db = db
	p.ids = experimentIDs(db.Keys())
	p.lastID = lastExperimentID(p.ids)

	p.summary = nil
	if rec, ok := db.Get(models.SummaryKey); ok {
		sum, err := models.SummaryFromFields(rec)
		if err != nil {
			return fmt.Errorf("failed to load summary record: %w", err)
		}
		p.summary = sum
	}
	return nil
}

// Save dumps the database to its backing file.
func (p *Protocol) Save() error {
	return p.db.Save(p.path)
}

// Pull fetches the remote protocol copy and reloads local state from it.
func (p *Protocol) Pull(ctx context.Context) (bool, error) {
	if p.remote == nil {
		return true, nil
	}
	ok := p.remote.Pull(ctx)
	if !ok {
		return false, nil
	}
	return true, p.Reload()
}

// Push mirrors the local protocol file to remote storage. Failure is
// reported, not raised: local state remains the source of truth.
func (p *Protocol) Push(ctx context.Context) bool {
	if p.remote == nil {
		return true
	}
	return p.remote.Push(ctx)
}

// Len returns the number of recorded experiments.
func (p *Protocol) Len() int {
	return len(p.ids)
}

// IDs returns all experiment IDs in ascending numeric order.
func (p *Protocol) IDs() []string {
	ids := make([]string, len(p.ids))
	copy(ids, p.ids)
	return ids
}

// LastID returns the highest experiment ID currently present, 0 if none.
func (p *Protocol) LastID() int {
	return p.lastID
}

// Add records a new experiment and returns its ID. The summary update and
// the record insert form one logical transaction: on error the caller
// retries the whole operation. Pass save=false to defer persistence during
// batch mutations.
func (p *Protocol) Add(spec ExperimentSpec, extra map[string]any, save bool) (string, error) {
	spec.applyDefaults()
	if err := spec.validate(); err != nil {
		return "", err
	}

	now := time.Now()
	exp, err := buildExperiment(spec, now)
	if err != nil {
		return "", err
	}

	p.summary = recordCreation(p.summary, spec.ExperimentType, now)
	if err := writeSummary(p.db, p.summary); err != nil {
		return "", err
	}

	newID := strconv.Itoa(p.lastID + 1)
	if err := p.db.Create(newID); err != nil {
		return "", err
	}
	fields, err := exp.Fields()
	if err != nil {
		return "", err
	}
	for k, v := range fields {
		if err := p.db.SetField(newID, k, v); err != nil {
			return "", err
		}
	}
	for k, v := range extra {
		if err := p.db.SetField(newID, k, v); err != nil {
			return "", err
		}
	}

	p.ids = append(p.ids, newID)
	p.lastID++

	if save {
		if err := p.Save(); err != nil {
			return "", err
		}
	}
	return newID, nil
}

// Get returns the experiment record for id, defaulting to the last created
// experiment when id is empty.
func (p *Protocol) Get(id string) (*models.Experiment, error) {
	id = p.resolveID(id)
	rec, ok := p.db.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: experiment %q", store.ErrKeyNotFound, id)
	}
	return models.ExperimentFromFields(rec)
}

// GetField returns one field of an experiment record.
func (p *Protocol) GetField(id, field string) (any, error) {
	return p.db.GetField(p.resolveID(id), field)
}

// Update upserts fields of an experiment record. This generic path does not
// guard status transitions; use Abort or Complete for lifecycle changes.
func (p *Protocol) Update(id string, fields map[string]any, save bool) error {
	id = p.resolveID(id)
	for k, v := range fields {
		if err := p.db.SetField(id, k, v); err != nil {
			return err
		}
	}
	if save {
		return p.Save()
	}
	return nil
}

// Status returns the lifecycle status of an experiment.
func (p *Protocol) Status(id string) (models.Status, error) {
	val, err := p.db.GetField(p.resolveID(id), "job_status")
	if err != nil {
		return "", err
	}
	status, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("unexpected job_status value %v", val)
	}
	return models.Status(status), nil
}

// Abort marks a running experiment as aborted.
func (p *Protocol) Abort(id string, save bool) error {
	return p.transition(id, models.StatusAborted, save)
}

// Complete marks a running experiment as completed, recording the actual
// stop time and wall-clock duration.
func (p *Protocol) Complete(id string, save bool) error {
	return p.transition(id, models.StatusCompleted, save)
}

func (p *Protocol) transition(id string, target models.Status, save bool) error {
	id = p.resolveID(id)
	current, err := p.Status(id)
	if err != nil {
		return err
	}
	if current.Terminal() {
		return fmt.Errorf("%w: experiment %s is already %s", ErrInvalidTransition, id, current)
	}
	if err := p.db.SetField(id, "job_status", string(target)); err != nil {
		return err
	}
	if target == models.StatusCompleted {
		now := time.Now()
		if err := p.db.SetField(id, "stop_time", now.Format(models.TimeLayout)); err != nil {
			return err
		}
		if val, err := p.db.GetField(id, "start_time"); err == nil {
			if startStr, ok := val.(string); ok {
				if start, perr := time.Parse(models.TimeLayout, startStr); perr == nil {
					if err := p.db.SetField(id, "duration", wallClockDuration(start, now)); err != nil {
						return err
					}
				}
			}
		}
	}
	if save {
		return p.Save()
	}
	return nil
}

// Delete removes an experiment record regardless of its status. The last
// issued ID is recomputed from the remaining set, so the highest ID can be
// reused after its record is deleted.
func (p *Protocol) Delete(id string, save bool) error {
	id = p.resolveID(id)
	if err := p.db.Remove(id); err != nil {
		return err
	}
	p.ids = experimentIDs(p.db.Keys())
	p.lastID = lastExperimentID(p.ids)
	if save {
		return p.Save()
	}
	return nil
}

func (p *Protocol) resolveID(id string) string {
	if id == "" {
		return strconv.Itoa(p.lastID)
	}
	return id
}

// wallClockDuration formats an elapsed interval in the protocol's
// days:hours:minutes layout.
func wallClockDuration(start, stop time.Time) string {
	elapsed := stop.Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	days := int(elapsed.Hours()) / 24
	hours := int(elapsed.Hours()) % 24
	minutes := int(elapsed.Minutes()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", days, hours, minutes)
}

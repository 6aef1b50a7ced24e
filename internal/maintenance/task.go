package maintenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-signage/internal/displays"
	"github.com/goliatone/go-signage/internal/logging"
	"github.com/goliatone/go-signage/internal/media"
	"github.com/goliatone/go-signage/pkg/interfaces"
	"github.com/google/uuid"
)

// DefaultResizeThreshold bounds the long edge of processed images when no
// threshold is configured.
const DefaultResizeThreshold = 1920

// Stage names the step an item failed in.
type Stage string

const (
	StageDimensions Stage = "dimensions"
	StageResize     Stage = "resize"
	StageHash       Stage = "hash"
	StageSize       Stage = "size"
	StageRelease    Stage = "release"
	StageCascade    Stage = "cascade"
	StageNotify     Stage = "notify"
)

var (
	ErrMediaRepositoryRequired = errors.New("maintenance: media repository required")
	ErrFileStoreRequired       = errors.New("maintenance: file store required")
	ErrImageTypesRequired      = errors.New("maintenance: image type source required")
)

// MediaRepository is the subset of media storage the task needs.
type MediaRepository interface {
	ListUnreleased(ctx context.Context, types []string) ([]*media.Media, error)
	Release(ctx context.Context, id uuid.UUID, hash string, size int64) error
}

// ImageTypeSource lists module types whose media must be resized.
type ImageTypeSource interface {
	ImageProcessingTypes() []string
}

// ItemFailure describes one skipped item. Notification failures carry the
// display identifier and no media details.
type ItemFailure struct {
	MediaID   uuid.UUID
	StoredAs  string
	DisplayID uuid.UUID
	Stage     Stage
	Err       error
}

func (f ItemFailure) Error() string {
	if f.DisplayID != uuid.Nil {
		return fmt.Sprintf("display %s: %s: %v", f.DisplayID, f.Stage, f.Err)
	}
	return fmt.Sprintf("media %s (%s): %s: %v", f.MediaID, f.StoredAs, f.Stage, f.Err)
}

func (f ItemFailure) Unwrap() error {
	return f.Err
}

// Summary reports the outcome of a run.
type Summary struct {
	Released int
	Notified int
	Failures []ItemFailure
}

// ImageProcessingTask resizes unreleased images, releases them, and notifies
// every display scheduled to show them.
type ImageProcessingTask struct {
	media     MediaRepository
	types     ImageTypeSource
	files     interfaces.LibraryFileStore
	displays  displays.Repository
	logger    interfaces.Logger
	metrics   *Metrics
	threshold int
}

// Option configures the task.
type Option func(*ImageProcessingTask)

// WithLogger sets the task logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(t *ImageProcessingTask) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithResizeThreshold bounds the long edge of processed images.
func WithResizeThreshold(threshold int) Option {
	return func(t *ImageProcessingTask) {
		if threshold > 0 {
			t.threshold = threshold
		}
	}
}

// WithMetrics records run counters.
func WithMetrics(metrics *Metrics) Option {
	return func(t *ImageProcessingTask) {
		t.metrics = metrics
	}
}

// WithDisplayRepository enables the notification cascade.
func WithDisplayRepository(repo displays.Repository) Option {
	return func(t *ImageProcessingTask) {
		t.displays = repo
	}
}

// NewImageProcessingTask wires a task. Without a display repository released
// media do not trigger notifications.
func NewImageProcessingTask(mediaRepo MediaRepository, types ImageTypeSource, files interfaces.LibraryFileStore, opts ...Option) *ImageProcessingTask {
	task := &ImageProcessingTask{
		media:     mediaRepo,
		types:     types,
		files:     files,
		logger:    logging.NoOp(),
		threshold: DefaultResizeThreshold,
	}
	for _, opt := range opts {
		opt(task)
	}
	return task
}

// cascade collects notification targets across a run.
type cascade struct {
	schedules map[uuid.UUID]struct{}
	groups    map[uuid.UUID]struct{}
	seen      map[uuid.UUID]struct{}
	displays  []uuid.UUID
}

func newCascade() *cascade {
	return &cascade{
		schedules: map[uuid.UUID]struct{}{},
		groups:    map[uuid.UUID]struct{}{},
		seen:      map[uuid.UUID]struct{}{},
	}
}

func (c *cascade) addDisplay(id uuid.UUID) {
	if _, ok := c.seen[id]; ok {
		return
	}
	c.seen[id] = struct{}{}
	c.displays = append(c.displays, id)
}

// Run processes every unreleased image once. Per item failures are recorded
// in the summary and do not stop the run. Cancellation is checked between
// items and between notifications; the partial summary is returned with the
// context error.
func (t *ImageProcessingTask) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	if t.media == nil {
		return summary, ErrMediaRepositoryRequired
	}
	if t.files == nil {
		return summary, ErrFileStoreRequired
	}
	if t.types == nil {
		return summary, ErrImageTypesRequired
	}

	types := t.types.ImageProcessingTypes()
	items, err := t.media.ListUnreleased(ctx, types)
	if err != nil {
		return summary, fmt.Errorf("maintenance: list unreleased media: %w", err)
	}
	t.logger.Info("maintenance.images.started", "items", len(items), "types", types, "threshold", t.threshold)

	targets := newCascade()
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if item == nil {
			continue
		}
		if failure, ok := t.process(ctx, item); !ok {
			t.recordFailure(&summary, failure)
			continue
		}
		summary.Released++
		t.metrics.incReleased()

		if failure, ok := t.collect(ctx, item, targets); !ok {
			t.recordFailure(&summary, failure)
		}
	}

	for _, displayID := range targets.displays {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := t.displays.Notify(ctx, displayID); err != nil {
			t.recordFailure(&summary, ItemFailure{DisplayID: displayID, Stage: StageNotify, Err: err})
			continue
		}
		summary.Notified++
		t.metrics.incNotified()
	}

	t.logger.Info("maintenance.images.completed",
		"released", summary.Released,
		"notified", summary.Notified,
		"failures", len(summary.Failures),
	)
	return summary, nil
}

func (t *ImageProcessingTask) process(ctx context.Context, item *media.Media) (ItemFailure, bool) {
	fail := func(stage Stage, err error) (ItemFailure, bool) {
		return ItemFailure{MediaID: item.ID, StoredAs: item.StoredAs, Stage: stage, Err: err}, false
	}

	width, height, err := t.files.Dimensions(item.StoredAs)
	if err != nil {
		return fail(StageDimensions, err)
	}

	if width > height {
		err = t.files.Resize(item.StoredAs, t.threshold, 0)
	} else {
		err = t.files.Resize(item.StoredAs, 0, t.threshold)
	}
	if err != nil {
		return fail(StageResize, err)
	}
	t.files.Invalidate(item.StoredAs)

	hash, err := t.files.Hash(item.StoredAs)
	if err != nil {
		return fail(StageHash, err)
	}
	size, err := t.files.Size(item.StoredAs)
	if err != nil {
		return fail(StageSize, err)
	}
	if err := t.media.Release(ctx, item.ID, hash, size); err != nil {
		return fail(StageRelease, err)
	}

	t.logger.Debug("maintenance.image.released", "media_id", item.ID.String(), "width", width, "height", height, "size", size)
	return ItemFailure{}, true
}

func (t *ImageProcessingTask) collect(ctx context.Context, item *media.Media, targets *cascade) (ItemFailure, bool) {
	if t.displays == nil {
		return ItemFailure{}, true
	}
	fail := func(err error) (ItemFailure, bool) {
		return ItemFailure{MediaID: item.ID, StoredAs: item.StoredAs, Stage: StageCascade, Err: err}, false
	}

	schedules, err := t.displays.SchedulesReferencing(ctx, item.ID.String())
	if err != nil {
		return fail(err)
	}
	for _, schedule := range schedules {
		if _, ok := targets.schedules[schedule.ID]; ok {
			continue
		}
		targets.schedules[schedule.ID] = struct{}{}

		groups, err := t.displays.DisplayGroupsOf(ctx, schedule.ID)
		if err != nil {
			return fail(err)
		}
		for _, group := range groups {
			if _, ok := targets.groups[group.ID]; ok {
				continue
			}
			targets.groups[group.ID] = struct{}{}

			members, err := t.displays.DisplaysOf(ctx, group.ID)
			if err != nil {
				return fail(err)
			}
			for _, display := range members {
				targets.addDisplay(display.ID)
			}
		}
	}
	return ItemFailure{}, true
}

func (t *ImageProcessingTask) recordFailure(summary *Summary, failure ItemFailure) {
	summary.Failures = append(summary.Failures, failure)
	t.metrics.incFailure(failure.Stage)

	logger := logging.WithMediaContext(t.logger, mediaKey(failure.MediaID), failure.StoredAs, string(failure.Stage))
	if failure.DisplayID != uuid.Nil {
		logger = logging.WithFields(logger, map[string]any{"display_id": failure.DisplayID.String()})
	}
	logger.Warn("maintenance.image.skipped", "error", failure.Err)
}

func mediaKey(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

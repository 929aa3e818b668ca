package appearance

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/opencode-ai/appearances/internal/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Install sources, recorded in logs and install records.
const (
	SourceRequested = "requested"
	SourceUpdated   = "updated"
)

const defaultUpdateBuffer = 64

// Bridge is the native layer that supplies appearance text.
type Bridge interface {
	// Initialize makes the bridge operational. Only the first call does work.
	Initialize() bool

	// FetchSnapshotText returns the appearance text for name.
	FetchSnapshotText(ctx context.Context, name string) (string, bool)

	// FetchEffectiveAppearanceName returns the application's effective appearance.
	FetchEffectiveAppearanceName(ctx context.Context) (string, bool)

	// RegisterUpdateCallback installs the handler for pushed appearance text.
	RegisterUpdateCallback(callback func(text string))
}

// InstallRecord describes a completed install.
type InstallRecord struct {
	Snapshot    *Snapshot
	Replaced    *Snapshot
	Source      string
	InstalledAt time.Time
}

// Registry holds the current snapshot for every appearance name seen so far
// and notifies listeners when a snapshot is installed.
type Registry struct {
	bridge   Bridge
	executor Executor
	logger   zerolog.Logger

	mu        sync.Mutex
	byName    map[string]*Snapshot
	listeners []Listener

	hooks        []func(InstallRecord)
	updateBuffer int
	fetches      singleflight.Group

	runMu   sync.Mutex
	running bool
	updates chan string
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger overrides the component logger.
func WithLogger(logger zerolog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithInstallHook registers a function called after every install.
// Hooks run on the installing goroutine, outside the registry lock.
func WithInstallHook(hook func(InstallRecord)) RegistryOption {
	return func(r *Registry) {
		if hook != nil {
			r.hooks = append(r.hooks, hook)
		}
	}
}

// WithUpdateBuffer sets the capacity of the pushed-update queue.
func WithUpdateBuffer(n int) RegistryOption {
	return func(r *Registry) {
		if n >= 0 {
			r.updateBuffer = n
		}
	}
}

// NewRegistry creates a registry reading from bridge and delivering change
// events through executor.
func NewRegistry(bridge Bridge, executor Executor, opts ...RegistryOption) *Registry {
	r := &Registry{
		bridge:       bridge,
		executor:     executor,
		logger:       logging.Component("registry"),
		byName:       make(map[string]*Snapshot),
		updateBuffer: defaultUpdateBuffer,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start registers for pushed updates and starts the goroutine that installs
// them in arrival order. If the bridge cannot be initialized the registry
// still serves requests, which then fail with ErrBridgeUnavailable.
func (r *Registry) Start(ctx context.Context) error {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	if r.running {
		return ErrRegistryRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	updates := make(chan string, r.updateBuffer)
	r.updates = updates
	r.cancel = cancel
	r.running = true

	if r.bridge.Initialize() {
		r.bridge.RegisterUpdateCallback(func(text string) {
			select {
			case updates <- text:
			case <-ctx.Done():
				r.logger.Debug().Msg("registry stopped, dropping pushed update")
			}
		})
	} else {
		r.logger.Warn().Msg("native bridge unavailable, pushed updates disabled")
	}

	r.wg.Add(1)
	go r.consume(ctx, updates)

	r.logger.Debug().Int("buffer", r.updateBuffer).Msg("registry started")
	return nil
}

// Stop halts the update consumer. Pending pushed updates are discarded.
func (r *Registry) Stop() {
	r.runMu.Lock()
	if !r.running {
		r.runMu.Unlock()
		return
	}
	r.running = false
	cancel := r.cancel
	r.runMu.Unlock()

	cancel()
	r.wg.Wait()
}

func (r *Registry) consume(ctx context.Context, updates <-chan string) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-updates:
			r.Update(text)
		}
	}
}

// Get returns the current snapshot for name, fetching it from the bridge on
// first use. Concurrent first requests for one name share a single fetch.
// The returned snapshot is usually the one just fetched, but a concurrent
// update may already have replaced it.
//
// The shared fetch is not bound to any one caller: a caller whose ctx ends
// gets ctx.Err() while the fetch continues for the others.
func (r *Registry) Get(ctx context.Context, name string) (*Snapshot, error) {
	if s := r.Current(name); s != nil {
		return s, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := r.fetches.DoChan(name, func() (any, error) {
		if s := r.Current(name); s != nil {
			return s, nil
		}

		if !r.bridge.Initialize() {
			return nil, ErrBridgeUnavailable
		}

		text, ok := r.bridge.FetchSnapshotText(fetchCtx, name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrAppearanceUnavailable, name)
		}

		s, err := Parse(text)
		if err != nil {
			return nil, err
		}
		if s.Name() != name {
			return nil, fmt.Errorf("%w: requested %s, received %s", ErrParse, name, s.Name())
		}

		r.install(s, SourceRequested)
		return r.Current(name), nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

// Effective returns the snapshot for the application's effective appearance.
func (r *Registry) Effective(ctx context.Context) (*Snapshot, error) {
	if !r.bridge.Initialize() {
		return nil, ErrBridgeUnavailable
	}
	name, ok := r.bridge.FetchEffectiveAppearanceName(ctx)
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: application effective appearance", ErrAppearanceUnavailable)
	}
	return r.Get(ctx, name)
}

// Current returns the installed snapshot for name without consulting the bridge.
func (r *Registry) Current(name string) *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byName[name]
}

// Names returns the installed appearance names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	r.mu.Unlock()

	sort.Strings(names)
	return names
}

// AddListener registers a change listener. Adding a registered listener is a
// no-op, and listeners whose type is not comparable are rejected.
func (r *Registry) AddListener(l Listener) {
	if l == nil {
		return
	}
	if !isComparable(l) {
		r.logger.Warn().Str("type", fmt.Sprintf("%T", l)).Msg("listener type is not comparable, ignoring it")
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOfLocked(l) >= 0 {
		return
	}
	r.listeners = append(r.listeners, l)
}

// RemoveListener unregisters a change listener. Unknown listeners are ignored.
func (r *Registry) RemoveListener(l Listener) {
	if l == nil || !isComparable(l) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOfLocked(l); i >= 0 {
		r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
	}
}

// OnChange registers fn as a listener and returns a function removing it.
func (r *Registry) OnChange(fn func(ChangeEvent)) (remove func()) {
	l := &callbackListener{fn: fn}
	r.AddListener(l)
	return func() {
		r.RemoveListener(l)
	}
}

func isComparable(l Listener) bool {
	return reflect.TypeOf(l).Comparable()
}

func (r *Registry) indexOfLocked(l Listener) int {
	for i, existing := range r.listeners {
		if existing == l {
			return i
		}
	}
	return -1
}

// Update installs pushed appearance text. Unparseable text and text identical
// to the installed snapshot are discarded. It reports whether an install
// happened.
func (r *Registry) Update(text string) bool {
	s, err := Parse(text)
	if err != nil {
		r.logger.Warn().Err(err).Msg("invalid appearance data received")
		return false
	}

	r.mu.Lock()
	if old := r.byName[s.Name()]; old != nil && old.RawText() == text {
		r.mu.Unlock()
		r.logger.Debug().Str("name", s.Name()).Msg("redundant appearance data received")
		return false
	}
	old := r.installLocked(s)
	r.mu.Unlock()

	r.afterInstall(s, old, SourceUpdated)
	return true
}

func (r *Registry) install(s *Snapshot, source string) {
	r.mu.Lock()
	old := r.installLocked(s)
	r.mu.Unlock()

	r.afterInstall(s, old, source)
}

// installLocked makes s current, links the previous snapshot to it and
// queues notification of the listeners registered at this moment.
// Caller must hold r.mu.
func (r *Registry) installLocked(s *Snapshot) *Snapshot {
	old := r.byName[s.Name()]
	r.byName[s.Name()] = s

	listeners := make([]Listener, len(r.listeners))
	copy(listeners, r.listeners)

	if old != nil && !old.setReplacement(s) {
		r.logger.Warn().Str("name", s.Name()).Msg("snapshot already replaced")
	}

	// Posting under the lock keeps notifications in install order; Post
	// never runs the task itself.
	if len(listeners) > 0 && r.executor != nil {
		r.executor.Post(func() {
			notify(listeners, s)
		})
	}
	return old
}

func (r *Registry) afterInstall(s, old *Snapshot, source string) {
	r.logger.Info().
		Str("source", source).
		Str("name", s.Name()).
		Bool("dark", s.IsDark()).
		Bool("high_contrast", s.IsHighContrast()).
		Int("colors", s.Len()).
		Msg("appearance installed")

	if len(r.hooks) == 0 {
		return
	}
	record := InstallRecord{
		Snapshot:    s,
		Replaced:    old,
		Source:      source,
		InstalledAt: time.Now().UTC(),
	}
	for _, hook := range r.hooks {
		hook(record)
	}
}

func notify(listeners []Listener, s *Snapshot) {
	event := ChangeEvent{Appearance: s}
	for _, l := range listeners {
		l.AppearanceChanged(event)
	}
}

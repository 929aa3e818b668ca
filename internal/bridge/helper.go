package bridge

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/opencode-ai/appearances/internal/logging"
	"github.com/rs/zerolog"
)

// RecordSeparator ends each record on the helper's watch stream.
const RecordSeparator = "--"

// Helper talks to a native helper executable:
//
//	helper snapshot <name>   prints the appearance text, exit 1 if unknown
//	helper effective         prints the effective appearance name
//	helper watch             streams appearance text, records ended by "--"
//
// Snapshot output and watch records are both normalized to lines ended by a
// single "\n", so the same appearance data always yields identical text and
// the registry can recognize redundant pushes.
type Helper struct {
	name       string
	searchPath []string
	logger     zerolog.Logger
	once       Once
	callback   callbackSlot

	mu       sync.Mutex
	path     string
	watchCmd *exec.Cmd
	watching bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewHelper creates a helper bridge. name is a program name or path;
// searchPath directories are tried before $PATH.
func NewHelper(name string, searchPath []string) *Helper {
	return &Helper{
		name:       name,
		searchPath: searchPath,
		logger:     logging.Component("bridge.helper"),
	}
}

// Initialize implements appearance.Bridge by locating the executable.
func (h *Helper) Initialize() bool {
	return h.once.Do(func() bool {
		path, err := h.locate()
		if err != nil {
			h.logger.Error().Err(err).Str("helper", h.name).Msg("unable to locate appearance helper")
			return false
		}
		h.mu.Lock()
		h.path = path
		h.mu.Unlock()
		h.logger.Debug().Str("path", path).Msg("appearance helper located")
		return true
	})
}

func (h *Helper) locate() (string, error) {
	if h.name == "" {
		return "", errors.New("helper name is empty")
	}
	if strings.ContainsRune(h.name, filepath.Separator) {
		return exec.LookPath(h.name)
	}
	for _, dir := range h.searchPath {
		candidate := filepath.Join(dir, h.name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() && info.Mode()&0o111 != 0 {
			return candidate, nil
		}
	}
	return exec.LookPath(h.name)
}

// Path returns the located executable, empty before a successful Initialize.
func (h *Helper) Path() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.path
}

// FetchSnapshotText implements appearance.Bridge.
func (h *Helper) FetchSnapshotText(ctx context.Context, name string) (string, bool) {
	out, err := h.run(ctx, "snapshot", name)
	if err != nil {
		h.logger.Debug().Err(err).Str("name", name).Msg("helper snapshot failed")
		return "", false
	}
	out = normalizeRecord(out)
	return out, out != ""
}

// normalizeRecord rewrites text the way readRecords assembles a watch
// record: CRLF becomes LF and a final line gets its terminator.
func normalizeRecord(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text
}

// FetchEffectiveAppearanceName implements appearance.Bridge.
func (h *Helper) FetchEffectiveAppearanceName(ctx context.Context) (string, bool) {
	out, err := h.run(ctx, "effective")
	if err != nil {
		h.logger.Debug().Err(err).Msg("helper effective failed")
		return "", false
	}
	name := strings.TrimSpace(out)
	return name, name != ""
}

func (h *Helper) run(ctx context.Context, args ...string) (string, error) {
	path := h.Path()
	if path == "" {
		return "", errors.New("helper not initialized")
	}
	out, err := exec.CommandContext(ctx, path, args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// RegisterUpdateCallback implements appearance.Bridge. The first
// registration after a successful Initialize starts "helper watch".
func (h *Helper) RegisterUpdateCallback(callback func(string)) {
	h.callback.set(callback)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watching || h.path == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, h.path, "watch")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		h.logger.Error().Err(err).Msg("failed to open helper watch pipe")
		return
	}
	if err := cmd.Start(); err != nil {
		cancel()
		h.logger.Error().Err(err).Msg("failed to start helper watch")
		return
	}

	h.watchCmd = cmd
	h.watching = true
	h.cancel = cancel
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.readRecords(stdout)
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			h.logger.Warn().Err(err).Msg("helper watch exited")
		}
	}()
}

func (h *Helper) readRecords(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var record strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if line == RecordSeparator {
			if record.Len() > 0 {
				h.callback.emit(record.String())
			}
			record.Reset()
			continue
		}
		record.WriteString(line)
		record.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		h.logger.Warn().Err(err).Msg("helper watch stream error")
	}
}

// Close stops the watch process.
func (h *Helper) Close() error {
	h.mu.Lock()
	cancel := h.cancel
	h.cancel = nil
	h.watching = false
	h.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	h.wg.Wait()
	return nil
}

package bridge

import (
	"context"
	"sync"
)

// Memory is an in-process bridge fed programmatically. Embedding
// applications with their own platform integration push text through it.
type Memory struct {
	once     Once
	initFail bool
	callback callbackSlot

	mu        sync.Mutex
	texts     map[string]string
	effective string
	fetches   int
}

// NewMemory creates an empty memory bridge.
func NewMemory() *Memory {
	return &Memory{texts: make(map[string]string)}
}

// FailInit makes initialization fail. It has no effect after Initialize.
func (m *Memory) FailInit() {
	m.mu.Lock()
	m.initFail = true
	m.mu.Unlock()
}

// Initialize implements appearance.Bridge.
func (m *Memory) Initialize() bool {
	return m.once.Do(func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return !m.initFail
	})
}

// Set stores the text served for name.
func (m *Memory) Set(name, text string) {
	m.mu.Lock()
	m.texts[name] = text
	m.mu.Unlock()
}

// Remove forgets name.
func (m *Memory) Remove(name string) {
	m.mu.Lock()
	delete(m.texts, name)
	m.mu.Unlock()
}

// SetEffective sets the effective appearance name.
func (m *Memory) SetEffective(name string) {
	m.mu.Lock()
	m.effective = name
	m.mu.Unlock()
}

// Push delivers text to the registered callback. It reports whether a
// callback was registered.
func (m *Memory) Push(text string) bool {
	return m.callback.emit(text)
}

// Fetches returns the number of snapshot fetches served.
func (m *Memory) Fetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches
}

// FetchSnapshotText implements appearance.Bridge.
func (m *Memory) FetchSnapshotText(ctx context.Context, name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
	text, ok := m.texts[name]
	return text, ok
}

// FetchEffectiveAppearanceName implements appearance.Bridge.
func (m *Memory) FetchEffectiveAppearanceName(ctx context.Context) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.effective, m.effective != ""
}

// RegisterUpdateCallback implements appearance.Bridge.
func (m *Memory) RegisterUpdateCallback(callback func(string)) {
	m.callback.set(callback)
}

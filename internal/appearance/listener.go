package appearance

// ChangeEvent reports a newly installed snapshot.
type ChangeEvent struct {
	// Appearance is the snapshot that became current for its name.
	Appearance *Snapshot
}

// Listener is notified when an appearance becomes known or is replaced by a
// snapshot with different attributes. Listeners are compared by identity, so
// implementations must be comparable (typically pointer types); the registry
// ignores listeners that are not.
type Listener interface {
	AppearanceChanged(event ChangeEvent)
}

// ListenerFunc adapts a function to Listener. Func values are not
// comparable, so register a pointer:
//
//	fn := appearance.ListenerFunc(handle)
//	registry.AddListener(&fn)
//	defer registry.RemoveListener(&fn)
type ListenerFunc func(ChangeEvent)

// AppearanceChanged calls f(event).
func (f ListenerFunc) AppearanceChanged(event ChangeEvent) {
	f(event)
}

// callbackListener gives a plain function a stable identity.
type callbackListener struct {
	fn func(ChangeEvent)
}

func (c *callbackListener) AppearanceChanged(event ChangeEvent) {
	c.fn(event)
}

// Executor runs notification tasks on the designated callback thread.
// Post must not block and must not run the task on the calling goroutine.
type Executor interface {
	Post(task func())
}

package game

// Handle is the type-erased view of a Session, used by the registry, the
// session store and the HTTP layer.
type Handle interface {
	ID() string
	Game() string
	Params() Params
	Start() (Snapshot, error)
	Submit(Answer) (Snapshot, error)
	Hint() (Snapshot, error)
	Next() (Snapshot, error)
	Pause() (Snapshot, error)
	Resume() (Snapshot, error)
	End() (Snapshot, error)
	Reset() (Snapshot, error)
	Snapshot() Snapshot
	Summary() (Summary, bool)
	Dispose()
}

var _ Handle = (*Session[struct{}])(nil)

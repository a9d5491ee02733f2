package ports

// DocumentStore defines how a session reads and writes its backing
// file. WriteAtomic must use write-to-temp-then-replace so a failed or
// interrupted write leaves the original file intact.
type DocumentStore interface {
	Read(path string) (string, error)
	WriteAtomic(path, content string) error
}

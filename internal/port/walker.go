package port

// FileInfo describes one candidate source document.
type FileInfo struct {
	Path    string
	ModTime int64
	Size    int64
}

// FileWalker lists source documents under a root directory.
type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
}

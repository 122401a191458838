package source

import "os"

// ContentReader is a function that reads file content given a file path.
// This allows the caller to control how files are read (filesystem, open editor buffers, etc.)
type ContentReader func(filePath string) ([]byte, error)

// FilesystemContentReader reads files straight from disk.
func FilesystemContentReader() ContentReader {
	return os.ReadFile
}

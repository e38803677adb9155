// Package restyutil writes the http traffic of a resty client out for inspection.
package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type Output interface {
	Write(id string, contents string)
}

// DirectoryOutput writes every message into its own file.
type DirectoryOutput struct {
	directory string
}

// NewDirectoryOutput creates dir if needed and a fresh "http-*" directory inside it that
// receives the messages. Nothing that already exists under dir is touched.
func NewDirectoryOutput(dir string) (DirectoryOutput, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return DirectoryOutput{}, err
	}
	run, err := os.MkdirTemp(dir, "http-")
	if err != nil {
		return DirectoryOutput{}, err
	}
	return DirectoryOutput{directory: run}, nil
}

// Directory is where the messages are written.
func (o DirectoryOutput) Directory() string {
	return o.directory
}

func (o DirectoryOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id), []byte(contents), 0o600)
	if err != nil {
		slog.Warn("failed to write http message file", "id", id, "err", err)
	}
}

// Dump writes every response client receives to output, numbered in arrival order.
func Dump(client *resty.Client, output Output) {
	var counter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(&counter, 1)
		output.Write(fmt.Sprintf("%04d.txt", id), FormatExchange(res))
		return nil
	})
}

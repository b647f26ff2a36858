package dbus

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/godbus/dbus/v5"
)

const (
	fileManagerBusName   = "org.freedesktop.FileManager1"
	fileManagerPath      = "/org/freedesktop/FileManager1"
	fileManagerInterface = "org.freedesktop.FileManager1"
)

// FileManager reveals files through the org.freedesktop.FileManager1 service.
type FileManager struct {
	obj caller
}

// NewFileManager creates a FileManager on conn.
func NewFileManager(conn *dbus.Conn) *FileManager {
	return &FileManager{obj: conn.Object(fileManagerBusName, fileManagerPath)}
}

// RevealFile opens the containing folder with path selected.
func (f *FileManager) RevealFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	uri := (&url.URL{Scheme: "file", Path: abs}).String()

	if err := f.obj.Call(fileManagerInterface+".ShowItems", 0, []string{uri}, "").Err; err != nil {
		return fmt.Errorf("failed to call ShowItems: %w", err)
	}
	return nil
}

package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/snapdrop/cli/pkg/uploader"
)

// FileWatcher wraps fsnotify to report new or changed image files and
// newly created directories.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	onFile   func(string)
	onNewDir func(string)

	mu      sync.Mutex
	watched map[string]bool
	closed  bool
}

// NewFileWatcher creates a FileWatcher with the given callbacks.
func NewFileWatcher(onFile, onNewDir func(string)) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  watcher,
		onFile:   onFile,
		onNewDir: onNewDir,
		watched:  make(map[string]bool),
	}, nil
}

// AddRecursive watches rootPath and every subdirectory beneath it.
func (fw *FileWatcher) AddRecursive(rootPath string) error {
	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if info.IsDir() {
			return fw.addDirectory(path)
		}
		return nil
	})
}

func (fw *FileWatcher) addDirectory(dirPath string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.watched[dirPath] {
		return nil
	}
	if err := fw.watcher.Add(dirPath); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dirPath, err)
	}
	fw.watched[dirPath] = true
	return nil
}

// Start begins delivering events.
func (fw *FileWatcher) Start() {
	go fw.eventLoop()
}

func (fw *FileWatcher) eventLoop() {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fmt.Printf("Watch error: %v\n", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		// File may be gone between event and stat.
		return
	}

	if info.IsDir() {
		if err := fw.addDirectory(event.Name); err != nil {
			fmt.Printf("Failed to watch new directory %s: %v\n", event.Name, err)
			return
		}
		if fw.onNewDir != nil {
			fw.onNewDir(event.Name)
		}
		return
	}

	if !uploader.IsImageFile(event.Name) {
		return
	}

	if fw.onFile != nil {
		fw.onFile(event.Name)
	}
}

// Close stops the watcher.
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.closed {
		return nil
	}
	fw.closed = true
	return fw.watcher.Close()
}

package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// lineFunc receives one line of input without its line terminator.
type lineFunc func(src string, lineNo int, line string) error

// tail reads the complete lines appended to a file. A trailing line with no
// newline is held back until the rest of it arrives.
type tail struct {
	name    string
	f       *os.File
	r       *bufio.Reader
	offset  int64
	lineNo  int
	partial string
}

func openTail(name string) (*tail, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return &tail{name: name, f: f, r: bufio.NewReader(f)}, nil
}

// drain passes every complete line available to fn. A file that shrank is
// read again from the start.
func (t *tail) drain(logger *slog.Logger, fn lineFunc) error {
	if info, err := t.f.Stat(); err == nil && info.Size() < t.offset {
		logger.Info("input truncated, reading from start", "source", t.name)
		if _, err := t.f.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("failed to rewind %s: %w", t.name, err)
		}
		t.r.Reset(t.f)
		t.offset = 0
		t.partial = ""
	}

	for {
		chunk, err := t.r.ReadString('\n')
		t.offset += int64(len(chunk))
		if errors.Is(err, io.EOF) {
			t.partial += chunk
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", t.name, err)
		}

		line := strings.TrimSuffix(t.partial+chunk, "\n")
		line = strings.TrimSuffix(line, "\r")
		t.partial = ""
		t.lineNo++
		if err := fn(t.name, t.lineNo, line); err != nil {
			return err
		}
	}
}

func (t *tail) Close() error {
	return t.f.Close()
}

// followFiles scans the current contents of each file and then keeps
// scanning lines as they are appended, until ctx is cancelled or fn fails.
func followFiles(ctx context.Context, logger *slog.Logger, paths []string, fn lineFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	tails := make(map[string]*tail, len(paths))
	for _, p := range paths {
		t, err := openTail(p)
		if err != nil {
			return err
		}
		defer func() { _ = t.Close() }()

		if err := t.drain(logger, fn); err != nil {
			return err
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		tails[filepath.Clean(p)] = t
	}
	logger.Debug("following inputs", "count", len(tails))

	changed := make(chan string)
	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer close(changed)
		for {
			select {
			case <-egctx.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !event.Has(fsnotify.Write) {
					continue
				}
				select {
				case changed <- event.Name:
				case <-egctx.Done():
					return nil
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warn("watcher error", "error", err)
			}
		}
	})

	eg.Go(func() error {
		for name := range changed {
			t := tails[filepath.Clean(name)]
			if t == nil {
				continue
			}
			if err := t.drain(logger, fn); err != nil {
				return err
			}
		}
		return nil
	})

	return eg.Wait()
}

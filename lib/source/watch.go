// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// debounce coalesces bursts of writes (an editor's save, a server
// rewriting the state file) into one change notification.
const debounce = 50 * time.Millisecond

// Watch reports changes to any of paths on the returned channel until
// ctx is done, then closes it. The channel has capacity 1 and
// notifications coalesce: a receiver that falls behind sees one pending
// change, not a backlog.
//
// Each parent directory is watched for IN_CLOSE_WRITE and IN_MOVED_TO
// on the target names, which catches both in-place writes and atomic
// renames that replace the inode.
func Watch(ctx context.Context, paths ...string) (<-chan struct{}, error) {
	targets := make(map[string]map[string]bool)
	for _, path := range paths {
		absolute, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		directory := filepath.Dir(absolute)
		if targets[directory] == nil {
			targets[directory] = make(map[string]bool)
		}
		targets[directory][filepath.Base(absolute)] = true
	}

	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("inotify init: %w", err)
	}

	names := make(map[int32]map[string]bool)
	for directory, files := range targets {
		descriptor, err := unix.InotifyAddWatch(fd, directory, unix.IN_CLOSE_WRITE|unix.IN_MOVED_TO)
		if err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("watching %s: %w", directory, err)
		}
		names[int32(descriptor)] = files
	}

	changes := make(chan struct{}, 1)
	go watchLoop(ctx, fd, names, changes)
	return changes, nil
}

// watchLoop polls the inotify fd with a 100ms timeout so that context
// cancellation is noticed promptly.
func watchLoop(ctx context.Context, fd int, names map[int32]map[string]bool, changes chan<- struct{}) {
	defer close(changes)
	defer unix.Close(fd)

	buffer := make([]byte, 4096)
	for {
		if ctx.Err() != nil {
			return
		}

		descriptors := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		count, err := unix.Poll(descriptors, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if count == 0 {
			continue
		}

		bytesRead, err := unix.Read(fd, buffer)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		if !eventsMatch(buffer[:bytesRead], names) {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(debounce):
		}
		drain(fd, buffer)

		select {
		case changes <- struct{}{}:
		default:
		}
	}
}

// eventsMatch reports whether any inotify event in buffer names a
// watched file. Event layout from inotify(7): wd int32, mask uint32,
// cookie uint32, len uint32, then len bytes of null-padded name.
func eventsMatch(buffer []byte, names map[int32]map[string]bool) bool {
	offset := 0
	for offset+unix.SizeofInotifyEvent <= len(buffer) {
		descriptor := int32(binary.NativeEndian.Uint32(buffer[offset : offset+4]))
		nameLength := int(binary.NativeEndian.Uint32(buffer[offset+12 : offset+16]))
		eventSize := unix.SizeofInotifyEvent + nameLength
		if offset+eventSize > len(buffer) {
			break
		}
		if nameLength > 0 {
			name := nullTerminated(buffer[offset+unix.SizeofInotifyEvent : offset+eventSize])
			if names[descriptor][name] {
				return true
			}
		}
		offset += eventSize
	}
	return false
}

func nullTerminated(data []byte) string {
	for index, b := range data {
		if b == 0 {
			return string(data[:index])
		}
	}
	return string(data)
}

// drain discards queued events after the debounce window.
func drain(fd int, buffer []byte) {
	for {
		if _, err := unix.Read(fd, buffer); err != nil {
			return
		}
	}
}

//go:build !windows

package irsdk

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

const (
	// DefaultRegionName is where compatibility bridges expose the region
	// outside Windows.
	DefaultRegionName = "/dev/shm/IRSDKMemMapFileName"
	DefaultSignalName = ""
)

// DefaultOpener maps the region from a file and never provides a signal.
func DefaultOpener() Opener {
	return FileOpener{}
}

// FileOpener maps a regular or tmpfs file read-only.
type FileOpener struct{}

type fileMapping struct {
	file *os.File
	mem  mmap.MMap
}

func (m *fileMapping) Bytes() []byte {
	return m.mem
}

func (m *fileMapping) Close() error {
	err := m.mem.Unmap()
	if cerr := m.file.Close(); err == nil {
		err = cerr
	}
	return err
}

func (FileOpener) OpenRegion(name string) (Mapping, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrapf(ErrConnectionUnavailable, "open %s: %v", name, err)
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(ErrConnectionUnavailable, "mmap %s: %v", name, err)
	}
	return &fileMapping{file: f, mem: m}, nil
}

func (FileOpener) OpenSignal(name string) (Signal, error) {
	return nil, ErrNoSignal
}

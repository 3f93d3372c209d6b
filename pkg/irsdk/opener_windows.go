//go:build windows

package irsdk

import (
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

const (
	DefaultRegionName = `Local\IRSDKMemMapFileName`
	DefaultSignalName = `Local\IRSDKDataValidEvent`
)

var (
	modkernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procOpenFileMappingW = modkernel32.NewProc("OpenFileMappingW")
)

type windowsOpener struct{}

// DefaultOpener opens the simulator's named file mapping and event.
func DefaultOpener() Opener {
	return windowsOpener{}
}

type viewMapping struct {
	handle windows.Handle
	addr   uintptr
	mem    []byte
}

func (m *viewMapping) Bytes() []byte {
	return m.mem
}

func (m *viewMapping) Close() error {
	m.mem = nil
	err := windows.UnmapViewOfFile(m.addr)
	if cerr := windows.CloseHandle(m.handle); err == nil {
		err = cerr
	}
	return err
}

func (windowsOpener) OpenRegion(name string) (Mapping, error) {
	namep, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid region name %q", name)
	}
	r, _, callErr := procOpenFileMappingW.Call(uintptr(windows.FILE_MAP_READ), 0, uintptr(unsafe.Pointer(namep)))
	if r == 0 {
		return nil, errors.Wrapf(ErrConnectionUnavailable, "open file mapping %s: %v", name, callErr)
	}
	handle := windows.Handle(r)

	addr, err := windows.MapViewOfFile(handle, windows.FILE_MAP_READ, 0, 0, 0)
	if err != nil {
		windows.CloseHandle(handle)
		return nil, errors.Wrapf(ErrConnectionUnavailable, "map view of %s: %v", name, err)
	}

	var info windows.MemoryBasicInformation
	if err := windows.VirtualQuery(addr, &info, unsafe.Sizeof(info)); err != nil {
		windows.UnmapViewOfFile(addr)
		windows.CloseHandle(handle)
		return nil, errors.Wrapf(ErrConnectionUnavailable, "query view of %s: %v", name, err)
	}

	mem := unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(info.RegionSize))
	return &viewMapping{handle: handle, addr: addr, mem: mem}, nil
}

type eventSignal struct {
	handle windows.Handle
}

func (s *eventSignal) Wait(timeout time.Duration) bool {
	ev, err := windows.WaitForSingleObject(s.handle, uint32(timeout.Milliseconds()))
	return err == nil && ev == windows.WAIT_OBJECT_0
}

func (s *eventSignal) Close() error {
	return windows.CloseHandle(s.handle)
}

func (windowsOpener) OpenSignal(name string) (Signal, error) {
	namep, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid signal name %q", name)
	}
	handle, err := windows.OpenEvent(windows.SYNCHRONIZE, false, namep)
	if err != nil {
		return nil, errors.Wrapf(ErrNoSignal, "open event %s: %v", name, err)
	}
	return &eventSignal{handle: handle}, nil
}

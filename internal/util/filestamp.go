package util

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"syscall"
)

// fingerprintTail is how much of the end of a file the fingerprint covers.
const fingerprintTail = 2048

// FileStamp identifies one version of a file on disk.
type FileStamp struct {
	Inode       uint64 // changes on every atomic rename
	Size        int64
	ModTime     int64 // nanoseconds
	Fingerprint string
}

// StatFile reads the stamp of path. Supported on Linux and macOS.
func StatFile(path string) (FileStamp, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return FileStamp{}, err
	}

	sysStat, ok := stat.Sys().(*syscall.Stat_t)
	if !ok {
		return FileStamp{}, fmt.Errorf("failed to get file system information: %s", path)
	}

	fingerprint, err := CalculateFileFingerprint(path)
	if err != nil {
		return FileStamp{}, err
	}

	return FileStamp{
		Inode:       uint64(sysStat.Ino),
		Size:        stat.Size(),
		ModTime:     stat.ModTime().UnixNano(),
		Fingerprint: fingerprint,
	}, nil
}

// IsZero reports whether the stamp was never taken.
func (s FileStamp) IsZero() bool {
	return s == FileStamp{}
}

// CalculateFileFingerprint is the CRC32 of the last 2KB of a file
func CalculateFileFingerprint(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return "", err
	}

	readSize := int64(fingerprintTail)
	if stat.Size() < readSize {
		readSize = stat.Size()
	}
	if _, err := file.Seek(-readSize, io.SeekEnd); err != nil {
		return "", err
	}

	data := make([]byte, readSize)
	if _, err := io.ReadFull(file, data); err != nil {
		return "", err
	}
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE(data)), nil
}

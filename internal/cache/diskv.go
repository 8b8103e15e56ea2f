package cache

import (
	"errors"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// Disk is a KV backed by diskv. Namespaced keys ("notifications:u1:...")
// map to nested directories, one file per key.
type Disk struct {
	d *diskv.Diskv
}

// NewDisk opens a disk-backed KV rooted at basePath.
func NewDisk(basePath string) *Disk {
	return &Disk{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPath,
		InverseTransform:  pathToKey,
		CacheSizeMax:      1024 * 1024, // 1MB
	})}
}

func (c *Disk) Get(key string) ([]byte, error) {
	val, err := c.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return val, nil
}

func (c *Disk) Set(key string, value []byte) error {
	return c.d.Write(key, value)
}

func (c *Disk) Delete(key string) error {
	err := c.d.Erase(key)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func keyToPath(key string) *diskv.PathKey {
	parts := strings.Split(key, ":")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKey(pk *diskv.PathKey) string {
	if len(pk.Path) == 0 {
		return pk.FileName
	}
	return strings.Join(pk.Path, ":") + ":" + pk.FileName
}

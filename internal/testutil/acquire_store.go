package testutil

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/andrebq/pressbox/blog"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

// AcquireStore opens a fresh blog store in a temporary directory,
// callers must invoke the returned cleanup when done.
func AcquireStore(ctx context.Context, t TestLog, name string) (*blog.Store, func()) {
	dir, err := ioutil.TempDir("", "pressbox-tests")
	if err != nil {
		t.Fatal(err)
	}
	abspath := filepath.Join(dir, name+".db")
	store, err := blog.Open(ctx, abspath)
	if err != nil {
		t.Fatal(err)
	}
	return store, func() {
		err := store.Close()
		if err != nil {
			t.Log("unable to close store", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

package blog

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestCreateAndLookupUser(t *testing.T) {
	ctx := context.Background()
	store, cleanup := tempStore(ctx, t, "users")
	defer cleanup()

	id, err := store.CreateUser(ctx, "alice", "phc-hash-here")
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 {
		t.Fatal("user id should never be zero")
	}
	u, err := store.LookupUser(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != id || u.Username != "alice" || u.PasswordHash != "phc-hash-here" {
		t.Fatalf("unexpected user row %v", u)
	}
	byID, err := store.GetUser(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if byID.Username != "alice" {
		t.Fatalf("unexpected user row %v", byID)
	}

	_, err = store.LookupUser(ctx, "Alice")
	var missing UserNotFound
	if !errors.As(err, &missing) {
		t.Fatalf("lookup is case sensitive and exact, got %v", err)
	}
}

func TestDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	store, cleanup := tempStore(ctx, t, "duplicates")
	defer cleanup()

	_, err := store.CreateUser(ctx, "alice", "hash-1")
	if err != nil {
		t.Fatal(err)
	}
	_, err = store.CreateUser(ctx, "alice", "hash-2")
	var taken UsernameTaken
	if !errors.As(err, &taken) {
		t.Fatalf("expecting UsernameTaken, got %v", err)
	}
}

func TestConcurrentRegistrationRace(t *testing.T) {
	ctx := context.Background()
	store, cleanup := tempStore(ctx, t, "race")
	defer cleanup()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = store.CreateUser(ctx, "highlander", "hash")
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		var taken UsernameTaken
		switch {
		case err == nil:
			wins++
		case errors.As(err, &taken):
		default:
			t.Fatalf("unexpected error during the race: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("exactly one registration must win, got %v", wins)
	}
}

func TestPostsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store, cleanup := tempStore(ctx, t, "posts")
	defer cleanup()

	author, err := store.CreateUser(ctx, "alice", "hash")
	if err != nil {
		t.Fatal(err)
	}
	first, err := store.CreatePost(ctx, NewPost{Title: "older", Summary: "s", FullText: "f"}, author)
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.CreatePost(ctx, NewPost{Title: "newer", Summary: "s", FullText: "f"}, author)
	if err != nil {
		t.Fatal(err)
	}

	posts, err := store.ListPosts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 2 {
		t.Fatalf("expecting 2 posts, got %v", len(posts))
	}
	if posts[0].ID != second || posts[1].ID != first {
		t.Fatalf("posts must come newest first, got %v then %v", posts[0].Title, posts[1].Title)
	}
	if posts[0].AuthorName != "alice" {
		t.Fatalf("posts must carry their author name, got %v", posts[0].AuthorName)
	}

	one, err := store.GetPost(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if one.Title != "older" || one.Author != author {
		t.Fatalf("unexpected post row %v", one)
	}

	_, err = store.GetPost(ctx, 9999)
	var missing PostNotFound
	if !errors.As(err, &missing) {
		t.Fatalf("expecting PostNotFound, got %v", err)
	}
}

func tempStore(ctx context.Context, t interface {
	Fatal(...interface{})
	Log(...interface{})
}, name string) (*Store, func()) {
	dir, err := ioutil.TempDir("", "pressbox-tests")
	if err != nil {
		t.Fatal(err)
	}
	store, err := Open(ctx, filepath.Join(dir, name+".db"))
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

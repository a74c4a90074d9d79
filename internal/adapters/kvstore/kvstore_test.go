package kvstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/adapters/kvstore"
	. "github.com/smartystreets/goconvey/convey"
)

func backends(t *testing.T) map[string]kvstore.Store {
	dir := t.TempDir()
	file, err := kvstore.Open(kvstore.BackendFile, filepath.Join(dir, "blobs"))
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	db, err := kvstore.Open(kvstore.BackendSQLite, filepath.Join(dir, "arena.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	mem, _ := kvstore.Open(kvstore.BackendMemory, "")
	t.Cleanup(func() {
		_ = file.Close()
		_ = db.Close()
	})
	return map[string]kvstore.Store{"memory": mem, "file": file, "sqlite": db}
}

func TestStores(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		store := store
		Convey("Given the "+name+" store", t, func() {
			Convey("When reading a key that was never set", func() {
				_, err := store.Get(ctx, "missing")

				Convey("Then it reports ErrNotFound", func() {
					So(errors.Is(err, kvstore.ErrNotFound), ShouldBeTrue)
				})
			})

			Convey("When a blob is set and replaced", func() {
				So(store.Set(ctx, "leaderboard", []byte(`[1]`)), ShouldBeNil)
				So(store.Set(ctx, "leaderboard", []byte(`[1,2]`)), ShouldBeNil)
				got, err := store.Get(ctx, "leaderboard")

				Convey("Then the latest blob is returned whole", func() {
					So(err, ShouldBeNil)
					So(string(got), ShouldEqual, `[1,2]`)
				})
			})

			Convey("When the key is not a plain name", func() {
				err := store.Set(ctx, "../escape", []byte(`x`))
				So(errors.Is(err, kvstore.ErrInvalidKey), ShouldBeTrue)
				_, err = store.Get(ctx, "")
				So(errors.Is(err, kvstore.ErrInvalidKey), ShouldBeTrue)
			})
		})
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	Convey("Given a file store after several writes", t, func() {
		dir := t.TempDir()
		store, err := kvstore.NewFile(dir)
		So(err, ShouldBeNil)
		for i := 0; i < 5; i++ {
			So(store.Set(context.Background(), "board", []byte(`[]`)), ShouldBeNil)
		}

		Convey("Then only the target file remains", func() {
			files, err := os.ReadDir(dir)
			So(err, ShouldBeNil)
			So(len(files), ShouldEqual, 1)
			So(files[0].Name(), ShouldEqual, "board.json")
		})
	})
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	Convey("Given a sqlite store that was closed", t, func() {
		path := filepath.Join(t.TempDir(), "arena.db")
		first, err := kvstore.NewSQLite(path)
		So(err, ShouldBeNil)
		So(first.Set(context.Background(), "board", []byte(`["ana"]`)), ShouldBeNil)
		So(first.Close(), ShouldBeNil)

		Convey("Then a new handle reads the same blob", func() {
			second, err := kvstore.NewSQLite(path)
			So(err, ShouldBeNil)
			defer second.Close()
			got, err := second.Get(context.Background(), "board")
			So(err, ShouldBeNil)
			So(string(got), ShouldEqual, `["ana"]`)
		})
	})
}

func TestOpen(t *testing.T) {
	Convey("Given an unknown backend", t, func() {
		_, err := kvstore.Open("redis", "")
		So(errors.Is(err, kvstore.ErrUnknownBackend), ShouldBeTrue)
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := kvstore.NewMemory().Get(ctx, "k")
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}

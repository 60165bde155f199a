package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/okian/meetglobe/internal/adapters/repository"

	. "github.com/smartystreets/goconvey/convey"
)

// storeContract exercises the behavior every driver must share.
func storeContract(t *testing.T, name string, open func(t *testing.T) repository.Store) {
	t.Helper()
	Convey(name+" store contract", t, func() {
		ctx := context.Background()
		s := open(t)
		Reset(func() { _ = s.Close() })

		Convey("Get on a missing key returns ErrNotFound", func() {
			_, err := s.Get(ctx, "meetings", "nope")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Create then Get returns the data", func() {
			So(s.Create(ctx, "meetings", "m1", []byte(`{"a":1}`)), ShouldBeNil)
			b, err := s.Get(ctx, "meetings", "m1")
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"a"`)
		})

		Convey("Create refuses an existing key", func() {
			So(s.Create(ctx, "meetings", "m1", []byte(`{"a":1}`)), ShouldBeNil)
			err := s.Create(ctx, "meetings", "m1", []byte(`{"a":2}`))
			So(errors.Is(err, repository.ErrAlreadyExists), ShouldBeTrue)
			b, _ := s.Get(ctx, "meetings", "m1")
			So(string(b), ShouldContainSubstring, "1")
		})

		Convey("Delete reports whether the record existed", func() {
			So(s.Create(ctx, "meetings", "m1", []byte(`{}`)), ShouldBeNil)
			ok, err := s.Delete(ctx, "meetings", "m1")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			ok, err = s.Delete(ctx, "meetings", "m1")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			_, err = s.Get(ctx, "meetings", "m1")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("List returns records of one collection ordered by key", func() {
			So(s.Create(ctx, "meetings", "b", []byte(`{}`)), ShouldBeNil)
			So(s.Create(ctx, "meetings", "a", []byte(`{}`)), ShouldBeNil)
			So(s.Create(ctx, "members", "all", []byte(`[]`)), ShouldBeNil)
			recs, err := s.List(ctx, "meetings")
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 2)
			So(recs[0].Key, ShouldEqual, "a")
			So(recs[1].Key, ShouldEqual, "b")

			empty, err := s.List(ctx, "unused")
			So(err, ShouldBeNil)
			So(empty, ShouldBeEmpty)
		})

		Convey("Update creates, modifies, and honors ErrNoChange", func() {
			err := s.Update(ctx, "members", "all", func(cur []byte) ([]byte, error) {
				So(cur, ShouldBeNil)
				return []byte(`[1]`), nil
			})
			So(err, ShouldBeNil)

			err = s.Update(ctx, "members", "all", func(cur []byte) ([]byte, error) {
				return nil, repository.ErrNoChange
			})
			So(err, ShouldBeNil)
			b, _ := s.Get(ctx, "members", "all")
			So(string(b), ShouldEqual, "[1]")

			boom := errors.New("boom")
			err = s.Update(ctx, "members", "all", func(cur []byte) ([]byte, error) { return nil, boom })
			So(errors.Is(err, boom), ShouldBeTrue)
		})

		Convey("Concurrent updates do not lose writes", func() {
			const writers = 20
			var wg sync.WaitGroup
			for i := range writers {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_ = s.Update(ctx, "counters", "c", func(cur []byte) ([]byte, error) {
						n := 0
						if cur != nil {
							_, _ = fmt.Sscanf(string(cur), "%d", &n)
						}
						return []byte(fmt.Sprintf("%d", n+1)), nil
					})
				}(i)
			}
			wg.Wait()
			b, err := s.Get(ctx, "counters", "c")
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, fmt.Sprintf("%d", writers))
		})

		Convey("Unsafe names are rejected", func() {
			_, err := s.Get(ctx, "meetings", "../etc")
			So(errors.Is(err, repository.ErrInvalidKey), ShouldBeTrue)
			err = s.Create(ctx, "", "k", []byte(`{}`))
			So(errors.Is(err, repository.ErrInvalidKey), ShouldBeTrue)
		})
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, "memory", func(t *testing.T) repository.Store {
		return repository.NewMemoryStore()
	})
}

func TestFileStore(t *testing.T) {
	storeContract(t, "file", func(t *testing.T) repository.Store {
		s, err := repository.NewFileStore(t.TempDir())
		if err != nil {
			t.Fatalf("open file store: %v", err)
		}
		return s
	})
}

func TestInstrumentedStore(t *testing.T) {
	storeContract(t, "instrumented", func(t *testing.T) repository.Store {
		return repository.Instrument(repository.NewMemoryStore(), "memory")
	})
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("MEETGLOBE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("MEETGLOBE_TEST_REDIS_URL not set")
	}
	n := 0
	storeContract(t, "redis", func(t *testing.T) repository.Store {
		n++
		s, err := repository.NewRedisStore(context.Background(), url,
			repository.WithKeyPrefix(fmt.Sprintf("meetglobe-test-%d-%d", os.Getpid(), n)))
		if err != nil {
			t.Fatalf("open redis store: %v", err)
		}
		return s
	})
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("MEETGLOBE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MEETGLOBE_TEST_POSTGRES_DSN not set")
	}
	n := 0
	storeContract(t, "postgres", func(t *testing.T) repository.Store {
		n++
		s, err := repository.NewPostgresStore(context.Background(), dsn,
			repository.WithTable(fmt.Sprintf("records_test_%d_%d", os.Getpid(), n)))
		if err != nil {
			t.Fatalf("open postgres store: %v", err)
		}
		return s
	})
}

func TestFileStoreDurability(t *testing.T) {
	Convey("Given a file store directory", t, func() {
		ctx := context.Background()
		dir := t.TempDir()

		Convey("records survive reopening", func() {
			s1, err := repository.NewFileStore(dir)
			So(err, ShouldBeNil)
			So(s1.Create(ctx, "meetings", "m1", []byte(`{"id":"m1"}`)), ShouldBeNil)

			s2, err := repository.NewFileStore(dir)
			So(err, ShouldBeNil)
			b, err := s2.Get(ctx, "meetings", "m1")
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, `{"id":"m1"}`)
		})

		Convey("temp files are not listed", func() {
			s, err := repository.NewFileStore(dir)
			So(err, ShouldBeNil)
			So(s.Create(ctx, "meetings", "m1", []byte(`{}`)), ShouldBeNil)
			So(os.WriteFile(dir+"/meetings/.tmp-123", []byte("x"), 0o644), ShouldBeNil)
			recs, err := s.List(ctx, "meetings")
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 1)
		})
	})
}

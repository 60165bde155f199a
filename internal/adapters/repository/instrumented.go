package repository

import (
	"context"
	"errors"
	"time"

	"github.com/okian/meetglobe/pkg/metrics"
)

type instrumented struct {
	next   Store
	driver string
}

// Instrument wraps s so every operation records latency and outcome
// metrics labelled with driver.
func Instrument(s Store, driver string) Store {
	return &instrumented{next: s, driver: driver}
}

func (s *instrumented) observe(op string, start time.Time, err error) {
	// expected outcomes are not failures
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyExists) {
		err = nil
	}
	metrics.RecordStoreOperation(s.driver, op, float64(time.Since(start).Microseconds())/1000.0, err)
}

func (s *instrumented) Get(ctx context.Context, collection, key string) ([]byte, error) {
	start := time.Now()
	b, err := s.next.Get(ctx, collection, key)
	s.observe("get", start, err)
	return b, err
}

func (s *instrumented) Create(ctx context.Context, collection, key string, data []byte) error {
	start := time.Now()
	err := s.next.Create(ctx, collection, key, data)
	s.observe("create", start, err)
	return err
}

func (s *instrumented) Delete(ctx context.Context, collection, key string) (bool, error) {
	start := time.Now()
	ok, err := s.next.Delete(ctx, collection, key)
	s.observe("delete", start, err)
	return ok, err
}

func (s *instrumented) List(ctx context.Context, collection string) ([]Record, error) {
	start := time.Now()
	out, err := s.next.List(ctx, collection)
	s.observe("list", start, err)
	return out, err
}

func (s *instrumented) Update(ctx context.Context, collection, key string, fn UpdateFunc) error {
	start := time.Now()
	err := s.next.Update(ctx, collection, key, fn)
	s.observe("update", start, err)
	return err
}

func (s *instrumented) Close() error {
	return s.next.Close()
}

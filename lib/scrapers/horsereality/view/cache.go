package view

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"hrtools/lib/chrono"
	"net/url"

	"github.com/PuerkitoBio/purell"
	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var errPageNotCached = badger.ErrKeyNotFound

type cachedPage struct {
	Contents  []byte
	ExpiresAt int64
}

// pageCache keeps raw pages in badger under their normalized url so a
// page requested twice within its lifetime is only fetched once.
type pageCache struct {
	db    *badger.DB
	clock chrono.API
}

func (c pageCache) key(rawUrl string) (string, error) {
	parsed, err := url.Parse(rawUrl)
	if err != nil {
		return "", err
	}
	normalized := purell.NormalizeURL(
		parsed,
		purell.FlagsSafe|
			purell.FlagsUsuallySafeNonGreedy|
			purell.FlagRemoveDirectoryIndex|
			purell.FlagRemoveFragment|
			purell.FlagSortQuery,
	)
	return "page:" + normalized, nil
}

func (c pageCache) get(ctx context.Context, rawUrl string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "cache:get")
	defer span.End()

	key, err := c.key(rawUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return nil, err
	}
	span.SetAttributes(attribute.String("cache_key", key))

	var serialized []byte
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		serialized, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errPageNotCached
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read item from badger")
		return nil, err
	}

	var page cachedPage
	err = gob.NewDecoder(bytes.NewReader(serialized)).Decode(&page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to deserialize cached page")
		return nil, err
	}

	if c.clock.Now().Unix() >= page.ExpiresAt {
		span.AddEvent("delete expired cache key", trace.WithAttributes(attribute.String("key", key)))
		err = c.db.Update(func(txn *badger.Txn) error {
			return txn.Delete([]byte(key))
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to delete expired key")
		}
		return nil, errPageNotCached
	}

	span.AddEvent("cache hit", trace.WithAttributes(attribute.Int("contentlength", len(page.Contents))))
	return page.Contents, nil
}

func (c pageCache) set(ctx context.Context, rawUrl string, contents []byte, expiresAt int64) error {
	ctx, span := tracer.Start(ctx, "cache:set")
	defer span.End()

	key, err := c.key(rawUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return err
	}

	serialized := bytes.NewBuffer(nil)
	err = gob.NewEncoder(serialized).Encode(cachedPage{
		Contents:  contents,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize page")
		return err
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), serialized.Bytes())
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to set badger item")
		return err
	}
	return nil
}

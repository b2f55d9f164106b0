// Package horsestore archives parsed horses in sqlite.
package horsestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hrtools/lib/scrapers/horsereality/view"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

var ErrNotFound = errors.New("horse not archived")

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive at `path`, ":memory:" gives a
// throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0700)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	// an in-memory database only lives as long as its connection, a file
	// database gets no faster with concurrent writers
	db.SetMaxOpenConns(1)

	pragmas := []string{"pragma foreign_keys = on"}
	if path != ":memory:" {
		pragmas = append(pragmas, "pragma journal_mode = wal")
	}
	for _, pragma := range pragmas {
		_, err = db.ExecContext(ctx, pragma)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("open archive: %w", err)
		}
	}
	_, err = db.ExecContext(ctx, Schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type Record struct {
	Horse     view.Horse
	FetchedAt time.Time
}

const upsertHorse = `insert into horse (
    lifenumber, name, sex, raw_breed, breed, age, birthdate, height,
    location, owner, registry, predicates, looking_at, foal_lifenumber, fetched_at
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
on conflict (lifenumber) do update set
    name = excluded.name,
    sex = excluded.sex,
    raw_breed = excluded.raw_breed,
    breed = excluded.breed,
    age = excluded.age,
    birthdate = excluded.birthdate,
    height = excluded.height,
    location = excluded.location,
    owner = excluded.owner,
    registry = excluded.registry,
    predicates = excluded.predicates,
    looking_at = excluded.looking_at,
    foal_lifenumber = excluded.foal_lifenumber,
    fetched_at = excluded.fetched_at`

const insertLayer = `insert into layer (
    lifenumber, foal, position, category, horse_type, body_part, size, layer_id
) values (?, ?, ?, ?, ?, ?, ?, ?)`

// Put stores `horse`, replacing whatever was archived for its lifenumber.
func (s *Store) Put(ctx context.Context, horse view.Horse, fetchedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx, upsertHorse,
		horse.Lifenumber, horse.Name, horse.Sex, horse.RawBreed, string(horse.Breed),
		horse.Age, horse.Birthdate, horse.Height, horse.Location, horse.Owner,
		horse.Registry, horse.Predicates, horse.LookingAt, horse.FoalLifenumber,
		fetchedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert horse %d: %w", horse.Lifenumber, err)
	}

	_, err = tx.ExecContext(ctx, "delete from layer where lifenumber = ?", horse.Lifenumber)
	if err != nil {
		return err
	}
	insert := func(layers []view.Layer, foal bool) error {
		for i, l := range layers {
			_, err := tx.ExecContext(
				ctx, insertLayer,
				horse.Lifenumber, foal, i,
				string(l.Category), l.HorseType, string(l.BodyPart), string(l.Size), l.ID,
			)
			if err != nil {
				return fmt.Errorf("insert layer %s: %w", l, err)
			}
		}
		return nil
	}
	err = insert(horse.AdultLayers, false)
	if err != nil {
		return err
	}
	err = insert(horse.FoalLayers, true)
	if err != nil {
		return err
	}

	return tx.Commit()
}

const selectHorse = `select
    lifenumber, name, sex, raw_breed, breed, age, birthdate, height,
    location, owner, registry, predicates, looking_at, foal_lifenumber, fetched_at
from horse`

type scanner interface {
	Scan(dest ...any) error
}

func scanHorse(row scanner) (Record, error) {
	var h view.Horse
	var breed string
	var fetchedAt int64
	err := row.Scan(
		&h.Lifenumber, &h.Name, &h.Sex, &h.RawBreed, &breed, &h.Age, &h.Birthdate,
		&h.Height, &h.Location, &h.Owner, &h.Registry, &h.Predicates, &h.LookingAt,
		&h.FoalLifenumber, &fetchedAt,
	)
	if err != nil {
		return Record{}, err
	}
	h.Breed = view.Breed(breed)
	return Record{Horse: h, FetchedAt: time.Unix(fetchedAt, 0)}, nil
}

func (s *Store) layers(ctx context.Context, lifenumber int) (adult, foal []view.Layer, err error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select foal, category, horse_type, body_part, size, layer_id
        from layer where lifenumber = ? order by foal, position`,
		lifenumber,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var isFoal bool
		var category, bodyPart, size string
		var l view.Layer
		err = rows.Scan(&isFoal, &category, &l.HorseType, &bodyPart, &size, &l.ID)
		if err != nil {
			return nil, nil, err
		}
		l.Category = view.LayerCategory(category)
		l.BodyPart = view.BodyPart(bodyPart)
		l.Size = view.Size(size)
		if isFoal {
			foal = append(foal, l)
		} else {
			adult = append(adult, l)
		}
	}
	return adult, foal, rows.Err()
}

func (s *Store) Get(ctx context.Context, lifenumber int) (Record, error) {
	row := s.db.QueryRowContext(ctx, selectHorse+" where lifenumber = ?", lifenumber)
	record, err := scanHorse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}

	record.Horse.AdultLayers, record.Horse.FoalLayers, err = s.layers(ctx, lifenumber)
	if err != nil {
		return Record{}, err
	}
	return record, nil
}

// List returns every archived horse without its layers, ordered by
// lifenumber. An empty breed lists all breeds.
func (s *Store) List(ctx context.Context, breed view.Breed) ([]Record, error) {
	query := selectHorse
	var args []any
	if breed != "" {
		query += " where breed = ?"
		args = append(args, string(breed))
	}
	query += " order by lifenumber"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		record, err := scanHorse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, lifenumber int) error {
	res, err := s.db.ExecContext(ctx, "delete from horse where lifenumber = ?", lifenumber)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

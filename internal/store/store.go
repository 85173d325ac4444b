// Package store owns the in-memory record collection for a session and
// writes it through to an Adapter on every change.
package store

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/example/expense-tracker/pkg/transaction"
	"github.com/shopspring/decimal"
)

// Adapter is the persistence contract the store needs. Load returns the full
// collection and Save overwrites it.
type Adapter interface {
	Load() ([]transaction.Record, error)
	Save(records []transaction.Record) error
}

// NotFoundError is returned when no record has the requested id
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %d not found", e.ID)
}

// ErrIDsExhausted is returned by Create once the largest id has been used
var ErrIDsExhausted = errors.New("no record ids left")

// Store is the session handle: the loaded records plus the next id to hand
// out. It is not safe for concurrent use.
type Store struct {
	adapter Adapter
	records *transaction.List
	nextID  int64
	logger  *log.Logger
}

// Initialize loads all records through adapter and sets the id counter to
// one past the largest stored id. A nil logger discards output.
func Initialize(adapter Adapter, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	records, err := adapter.Load()
	if err != nil {
		return nil, err
	}

	list := transaction.NewList(records)
	if list.MaxID() == math.MaxInt64 {
		return nil, fmt.Errorf("record id %d leaves no room for new ids", list.MaxID())
	}
	s := &Store{
		adapter: adapter,
		records: list,
		nextID:  list.MaxID() + 1,
		logger:  logger,
	}
	logger.Debug("store loaded", "records", len(records), "next_id", s.nextID)
	return s, nil
}

// NextID returns the id the next Create will assign
func (s *Store) NextID() int64 {
	return s.nextID
}

// Create validates the raw input, appends a new record and persists the
// collection.
func (s *Store) Create(name, price, date string) (transaction.Record, error) {
	f, err := transaction.ParseFields(name, price, date)
	if err != nil {
		return transaction.Record{}, err
	}

	if s.nextID == math.MaxInt64 {
		return transaction.Record{}, ErrIDsExhausted
	}

	r := transaction.Record{ID: s.nextID}
	f.Apply(&r)

	// Advance before writing: ids stay unique in memory even if Save fails.
	s.nextID++
	s.records.Add(r)

	if err := s.persist(); err != nil {
		return transaction.Record{}, err
	}
	s.logger.Debug("record created", "id", r.ID)
	return r, nil
}

// Update replaces the name, price and date of the record with id
func (s *Store) Update(id int64, name, price, date string) (transaction.Record, error) {
	r, ok := s.records.Find(id)
	if !ok {
		return transaction.Record{}, &NotFoundError{ID: id}
	}

	f, err := transaction.ParseFields(name, price, date)
	if err != nil {
		return transaction.Record{}, err
	}
	f.Apply(r)
	updated := *r

	if err := s.persist(); err != nil {
		return transaction.Record{}, err
	}
	s.logger.Debug("record updated", "id", id)
	return updated, nil
}

// Delete removes the record with id
func (s *Store) Delete(id int64) error {
	if !s.records.Remove(id) {
		return &NotFoundError{ID: id}
	}

	if err := s.persist(); err != nil {
		return err
	}
	s.logger.Debug("record deleted", "id", id)
	return nil
}

// Get returns the record with id
func (s *Store) Get(id int64) (transaction.Record, error) {
	r, ok := s.records.Find(id)
	if !ok {
		return transaction.Record{}, &NotFoundError{ID: id}
	}
	return *r, nil
}

// List returns the records in insertion order
func (s *Store) List() []transaction.Record {
	return s.records.Snapshot()
}

// TotalSpent sums the prices of the records currently in durable storage.
// It reloads through the adapter instead of using the in-memory collection.
func (s *Store) TotalSpent() (decimal.Decimal, error) {
	records, err := s.adapter.Load()
	if err != nil {
		return decimal.Zero, err
	}
	return transaction.Sum(records), nil
}

// TotalBalance returns the durable total and what is left of budget
func (s *Store) TotalBalance(budget string) (spent, remaining decimal.Decimal, err error) {
	b, err := transaction.ParseAmount(transaction.FieldBudget, budget)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	spent, err = s.TotalSpent()
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return spent, b.Sub(spent), nil
}

// persist writes the whole collection. Memory has already changed when this
// runs; on failure the two stay out of step until the next successful save.
func (s *Store) persist() error {
	return s.adapter.Save(s.records.Records)
}

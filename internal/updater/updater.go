// Package updater applies percentage price adjustments to pricing files with
// atomic, lock-coordinated writes. It walks every row of a document and
// adjusts the fields named by the document's pricable tier list, leaving
// everything else untouched.
//
// Example:
//
//	m, _ := pricing.ParsePercent("6%")
//	result, err := UpdateFile("dog-tag-prices.json", m,
//	    WithLockTimeout(2*time.Second),
//	    WithObserver(func(c Change) { log.Printf("%+v", c) }))
//
// UpdateFile automatically detects the document format, acquires a file lock,
// adjusts every pricable field, and writes the result atomically. Optional
// functional parameters expose lock timeout, row labeling, and per-change
// observation hooks.
package updater

import (
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harrison/repricer/internal/document"
	"github.com/harrison/repricer/internal/filelock"
	"github.com/harrison/repricer/internal/pricing"
)

const defaultLabelField = "size"

// Change records one adjusted price field.
type Change struct {
	Row  int    // zero-based row index
	Tier string // pricable field name
	From decimal.Decimal
	To   decimal.Decimal
}

// Observer receives each change as it is applied.
type Observer func(Change)

// FileResult captures the outcome of updating a single file. Err mirrors the
// error returned alongside it, so batch callers can keep results uniform.
type FileResult struct {
	Path      string
	Tiers     []string // pricable tiers in declared order
	RowLabels []string // one label per row, in row order
	Changes   []Change // row-major, tiers in declared order
	Duration  time.Duration
	Err       error
}

type options struct {
	lockTimeout time.Duration
	labelField  string
	observer    Observer
}

// Option configures behaviour of Apply and UpdateFile.
type Option func(*options)

// WithLockTimeout configures how long UpdateFile should wait when acquiring
// the underlying file lock. A non-positive duration falls back to blocking.
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) {
		o.lockTimeout = d
	}
}

// WithLabelField overrides the row field used to label rows in results.
func WithLabelField(field string) Option {
	return func(o *options) {
		o.labelField = field
	}
}

// WithObserver registers a callback that receives each applied change.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

func buildOptions(opts []Option) options {
	config := options{labelField: defaultLabelField}
	for _, opt := range opts {
		if opt != nil {
			opt(&config)
		}
	}
	return config
}

// Apply adjusts every pricable field of the in-memory document: for each row
// in order, for each tier in declared order, a numeric field value is
// replaced with its adjusted price. Rows lacking a tier field, or holding a
// non-numeric value there, pass through unchanged. The document is not saved.
func Apply(doc *document.Document, m pricing.Multiplier, opts ...Option) (*FileResult, error) {
	config := buildOptions(opts)
	result := &FileResult{Path: doc.Path()}
	if err := apply(doc, m, config, result); err != nil {
		result.Err = err
		return result, err
	}
	return result, nil
}

func apply(doc *document.Document, m pricing.Multiplier, config options, result *FileResult) error {
	result.Tiers = doc.PricableTiers()

	for row := 0; row < doc.Rows(); row++ {
		result.RowLabels = append(result.RowLabels, doc.RowLabel(row, config.labelField))

		for _, tier := range result.Tiers {
			value, ok := doc.Price(row, tier)
			if !ok {
				continue
			}

			adjusted := m.Adjust(value)
			if err := doc.SetPrice(row, tier, adjusted); err != nil {
				return err
			}

			change := Change{Row: row, Tier: tier, From: value, To: adjusted}
			result.Changes = append(result.Changes, change)
			if config.observer != nil {
				config.observer(change)
			}
		}
	}

	return nil
}

// UpdateFile loads the pricing file at path, adjusts every pricable field,
// and writes the document back atomically. The whole read-adjust-write cycle
// runs under an advisory lock on the sibling <path>.lock file, which is
// removed afterwards. The returned FileResult is non-nil even on failure.
func UpdateFile(path string, m pricing.Multiplier, opts ...Option) (*FileResult, error) {
	config := buildOptions(opts)

	result := &FileResult{Path: path}
	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
	}()

	lockPath := path + ".lock"
	lock := filelock.NewFileLock(lockPath)
	var lockErr error
	if config.lockTimeout > 0 {
		lockErr = lock.LockWithTimeout(config.lockTimeout)
	} else {
		lockErr = lock.Lock()
	}
	if lockErr != nil {
		result.Err = lockErr
		return result, lockErr
	}
	defer func() {
		lock.Unlock()
		os.Remove(lockPath)
	}()

	doc, err := document.Load(path)
	if err != nil {
		result.Err = err
		return result, err
	}

	if err := apply(doc, m, config, result); err != nil {
		result.Err = err
		return result, err
	}

	data, err := doc.Bytes()
	if err != nil {
		result.Err = err
		return result, err
	}

	if err := filelock.AtomicWrite(path, data); err != nil {
		result.Err = err
		return result, err
	}

	return result, nil
}

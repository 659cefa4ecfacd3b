package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"unicode/utf8"

	"go.voidsdatastore.net/voids/datastore"
)

var (
	// ErrExists is returned when creating a board whose name is taken.
	ErrExists = errors.New("leaderboard already exists")
	// ErrNotFound is returned when a named board doesn't exist.
	ErrNotFound = errors.New("leaderboard not found")
)

// KV is the slice of the datastore client the service depends on.
type KV interface {
	Get(ctx context.Context, namespace, key string, opts ...datastore.RequestOption) (datastore.Value, error)
	Update(ctx context.Context, namespace, key string, value any, opts ...datastore.RequestOption) (datastore.Value, error)
}

var _ KV = (*datastore.Client)(nil)

// Service manages the leaderboards of a single namespace.
type Service struct {
	kv        KV
	namespace string
}

func NewService(kv KV, namespace string) *Service {
	return &Service{kv: kv, namespace: namespace}
}

// Create stores a new empty board and records it in the namespace
// index. The optional symbol is attached on the given side of rendered
// scores and must not exceed 7 characters.
func (s *Service) Create(ctx context.Context, name string, pos Position, symbol string) error {
	if utf8.RuneCountInString(symbol) > maxSymbolLen {
		return fmt.Errorf("symbol %q exceeds %d characters", symbol, maxSymbolLen)
	}

	_, exists, err := s.load(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return ErrExists
	}

	board := Board{Scores: map[string]int{}}
	if symbol != "" {
		switch pos {
		case Prefix:
			board.Prefix = symbol
		case Suffix:
			board.Suffix = symbol
		default:
			return fmt.Errorf("unknown symbol position %q", pos)
		}
	}

	if err := s.save(ctx, name, board); err != nil {
		return err
	}
	return s.addToIndex(ctx, name)
}

// SetScore records a member's score on a board, replacing any previous
// value. A board whose scores member has been corrupted is repaired by
// starting over from an empty score set.
func (s *Service) SetScore(ctx context.Context, name, member string, score int) error {
	board, exists, err := s.load(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	if board.Scores == nil {
		board.Scores = map[string]int{}
	}
	board.Scores[member] = score

	return s.save(ctx, name, board)
}

// Board fetches a board by name.
func (s *Service) Board(ctx context.Context, name string) (Board, error) {
	board, exists, err := s.load(ctx, name)
	if err != nil {
		return Board{}, err
	}
	if !exists {
		return Board{}, ErrNotFound
	}
	return board, nil
}

// Names lists the boards recorded in the namespace index. A missing or
// malformed index reads as empty.
func (s *Service) Names(ctx context.Context) ([]string, error) {
	val, err := s.kv.Get(ctx, s.namespace, indexKey)
	if err != nil {
		if isMissing(err) {
			return nil, nil
		}
		return nil, err
	}
	if val.IsNull() {
		return nil, nil
	}

	var names []string
	if err := val.Decode(&names); err != nil {
		return nil, nil
	}
	return names, nil
}

// Delete removes a board and drops it from the namespace index.
func (s *Service) Delete(ctx context.Context, name string) error {
	_, exists, err := s.load(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	if _, err := s.kv.Update(ctx, s.namespace, boardKey(name), nil); err != nil {
		return err
	}
	return s.removeFromIndex(ctx, name)
}

// load returns the named board and whether it exists. A document whose
// scores member isn't an object decodes with an empty score set.
func (s *Service) load(ctx context.Context, name string) (Board, bool, error) {
	val, err := s.kv.Get(ctx, s.namespace, boardKey(name))
	if err != nil {
		if isMissing(err) {
			return Board{}, false, nil
		}
		return Board{}, false, err
	}
	if val.IsNull() {
		return Board{}, false, nil
	}

	var board Board
	if err := val.Decode(&board); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) || typeErr.Field != "scores" {
			return Board{}, false, fmt.Errorf("failed decoding leaderboard '%s': %w", name, err)
		}
		board.Scores = nil
	}

	return board, true, nil
}

func (s *Service) save(ctx context.Context, name string, board Board) error {
	_, err := s.kv.Update(ctx, s.namespace, boardKey(name), board)
	return err
}

func (s *Service) addToIndex(ctx context.Context, name string) error {
	names, err := s.Names(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(names, name) {
		return nil
	}

	_, err = s.kv.Update(ctx, s.namespace, indexKey, append(names, name))
	return err
}

func (s *Service) removeFromIndex(ctx context.Context, name string) error {
	names, err := s.Names(ctx)
	if err != nil {
		return err
	}
	i := slices.Index(names, name)
	if i < 0 {
		return nil
	}

	_, err = s.kv.Update(ctx, s.namespace, indexKey, slices.Delete(names, i, i+1))
	return err
}

// isMissing reports whether the datastore error means the key doesn't
// exist, as opposed to a transport or server failure.
func isMissing(err error) bool {
	var derr *datastore.Error
	return errors.As(err, &derr) && derr.StatusCode == http.StatusNotFound
}

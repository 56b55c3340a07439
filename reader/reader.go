package reader

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/stx/log"
	"github.com/ardnew/stx/pkg"
	"github.com/ardnew/stx/syntax"
)

// ErrRead is returned when source text cannot be tokenized.
var ErrRead = pkg.NewError("read error")

// Reader converts source text to syntax objects.
type Reader struct {
	logger log.Logger
	cached bool
	cache  *sync.Map // xxh3 hash -> *entry
}

type entry struct {
	once  sync.Once
	items []*syntax.Syntax
	err   error
}

// Option configures a [Reader].
type Option func(*Reader)

// WithLogger sets the logger used to trace cache activity.
func WithLogger(logger log.Logger) Option {
	return func(r *Reader) { r.logger = logger.Component("reader") }
}

// WithCache enables or disables memoization of read results.
// Caching is enabled by default.
func WithCache(enable bool) Option {
	return func(r *Reader) { r.cached = enable }
}

// New returns a Reader configured by opts.
func New(opts ...Option) *Reader {
	r := &Reader{cached: true, cache: &sync.Map{}}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Read tokenizes src. The returned slice is owned by the caller.
func (r *Reader) Read(src string) ([]*syntax.Syntax, error) {
	if !r.cached {
		return read(src)
	}

	hash := xxh3.HashString(src)

	value, hit := r.cache.LoadOrStore(hash, new(entry))
	e := value.(*entry) //nolint:forcetypeassert

	r.logger.Trace(
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", hit),
	)

	e.once.Do(func() { e.items, e.err = read(src) })

	if e.err != nil {
		return nil, e.err
	}

	return slices.Clone(e.items), nil
}

// ReadFrom reads all of rd with read-ahead buffering and tokenizes it.
func (r *Reader) ReadFrom(
	ctx context.Context,
	rd io.Reader,
) ([]*syntax.Syntax, error) {
	ra := readahead.NewReader(rd)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrRead.Wrap(err).With(slog.String("source", "reader"))
	}

	r.logger.TraceContext(ctx, "read input", slog.Int("source_bytes", len(data)))

	return r.Read(string(data))
}

// Read tokenizes src without caching.
func Read(src string) ([]*syntax.Syntax, error) { return read(src) }

func read(src string) ([]*syntax.Syntax, error) {
	l := &lexer{src: []rune(src), line: 1, col: 1}

	return l.readSeq(closeNone)
}

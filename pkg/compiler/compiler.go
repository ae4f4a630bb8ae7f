// Package compiler turns query trees into executable queries.
//
// The compiler receives a tree produced by a parser front-end (see
// [types.Node]) and recursively compiles every expression into an
// [Evaluator]: either a constant, when all of its operands are constant, or
// a closure over the current record and its binding [Scope]. Pipeline steps
// are compiled into stages that run over the whole working sequence, and the
// result is a [Query] that can be run any number of times against different
// inputs and parameters.
//
// # Example
//
//	c, err := compiler.New(compiler.WithFunctions(extaggregate.All()...))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	q, err := c.Compile(types.Pipeline(
//	    types.Filter(types.Binary(types.NodeGt, types.Local("age"), 40.0)),
//	    types.Select(types.Local("name")),
//	))
//	result, err := q.Run(ctx, records, compiler.Params{})
//
// # Concurrency
//
// Compilation and execution are synchronous. A compiled Query is immutable
// and may be run from many goroutines at once; each run gets its own scopes
// and grouping state.
package compiler

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/sandrolain/gojunqi/pkg/cache"
	"github.com/sandrolain/gojunqi/pkg/codec"
	"github.com/sandrolain/gojunqi/pkg/functions"
	"github.com/sandrolain/gojunqi/pkg/types"
)

// compilerIDs numbers compilers so that a cache shared between them never
// hands one compiler a query resolved against another's extensions.
var compilerIDs atomic.Uint64

// Compiler compiles query trees against a fixed set of extension functions.
type Compiler struct {
	id       string
	opts     Options
	logger   *slog.Logger
	registry *functions.Registry
	cache    *cache.Cache[*Query] // non-nil when Caching is enabled

	// groupTags is the source of identity tags for object-valued group
	// keys. It is shared by every query this compiler produces so that tags
	// are never reused.
	groupTags *atomic.Uint64
}

// Options configures compiler behavior.
type Options struct {
	// Caching enables caching of compiled queries keyed by tree shape.
	// The default cache holds up to 256 entries with LRU eviction.
	Caching bool
	// CacheSize sets the maximum number of cached queries.
	// Only used when Caching is true and no explicit Cache is provided.
	// Defaults to 256.
	CacheSize int
	// Cache is a custom query cache. If non-nil, Caching is implicitly enabled.
	Cache *cache.Cache[*Query]
	// Debug enables per-stage debug logging while queries run.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
	// Registry is the base set of extension functions. It is copied, so
	// later changes to it do not affect the compiler.
	Registry *functions.Registry
	// Functions are registered on top of Registry.
	Functions []functions.Def
}

// Option configures a Compiler.
type Option func(*Options)

// New creates a new Compiler.
func New(opts ...Option) (*Compiler, error) {
	options := Options{
		Caching: false,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	var registry *functions.Registry
	if options.Registry != nil {
		registry = options.Registry.Clone()
	} else {
		registry, _ = functions.NewRegistry()
	}
	for _, def := range options.Functions {
		if err := registry.Register(def); err != nil {
			return nil, fmt.Errorf("register extension: %w", err)
		}
	}

	var c *cache.Cache[*Query]
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		size := options.CacheSize
		if size <= 0 {
			size = 256
		}
		c = cache.New[*Query](size)
	}

	return &Compiler{
		id:        strconv.FormatUint(compilerIDs.Add(1), 36),
		opts:      options,
		logger:    options.Logger,
		registry:  registry,
		cache:     c,
		groupTags: new(atomic.Uint64),
	}, nil
}

// Functions returns the extension registry used by the compiler.
// It must not be modified once queries are being compiled.
func (c *Compiler) Functions() *functions.Registry {
	return c.registry
}

// Cache returns the query cache, or nil if caching is disabled.
func (c *Compiler) Cache() *cache.Cache[*Query] {
	return c.cache
}

// CompileOption configures a single compilation.
type CompileOption func(*compileOptions)

type compileOptions struct {
	defaults Params
}

// WithDefaults sets default parameters. Parameters passed to Run override
// defaults position by position and name by name.
func WithDefaults(p Params) CompileOption {
	return func(o *compileOptions) {
		o.defaults = p
	}
}

// Compile compiles a steps node into a Query.
func (c *Compiler) Compile(tree *types.Node, opts ...CompileOption) (*Query, error) {
	var co compileOptions
	for _, opt := range opts {
		opt(&co)
	}

	if c.cache == nil {
		q, err := c.compileQuery(tree)
		if err != nil {
			return nil, err
		}
		return q.WithDefaults(co.defaults), nil
	}

	fp, err := codec.EncodeJSON(tree)
	if err != nil {
		return nil, fmt.Errorf("fingerprint query: %w", err)
	}
	key := c.id + ":" + fp
	if c.opts.Debug {
		if _, hit := c.cache.Get(key); hit {
			c.logger.Debug("query cache hit", "tree", codec.Describe(tree))
		}
	}
	q, err := c.cache.GetOrCompile(key, func() (*Query, error) {
		return c.compileQuery(tree)
	})
	if err != nil {
		return nil, err
	}
	return q.WithDefaults(co.defaults), nil
}

// MustCompile is like Compile but panics if the tree cannot be compiled.
func (c *Compiler) MustCompile(tree *types.Node, opts ...CompileOption) *Query {
	q, err := c.Compile(tree, opts...)
	if err != nil {
		panic(fmt.Sprintf("gojunqi: Compile: %v", err))
	}
	return q
}

func (c *Compiler) compileQuery(tree *types.Node) (*Query, error) {
	if tree == nil {
		return nil, types.NewError(types.ErrMalformedNode, "query tree is nil", -1)
	}
	if tree.Type != types.NodeSteps {
		return nil, types.NewError(types.ErrMalformedNode, "query root must be a steps node", -1).
			WithToken(string(tree.Type))
	}

	p, err := c.compilePipeline(tree.Steps)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("compiled query", "stages", len(p.stages), "grouped", p.grouped)

	return &Query{
		pipeline:  p,
		groupTags: c.groupTags,
		logger:    c.logger,
		debug:     c.opts.Debug,
	}, nil
}

// WithCaching enables or disables caching of compiled queries.
// When enabled, a default LRU cache of 256 entries is created.
// To control the cache size use WithCacheSize; to supply your own cache use WithCache.
func WithCaching(enabled bool) Option {
	return func(opts *Options) {
		opts.Caching = enabled
	}
}

// WithCacheSize sets the maximum number of cached queries.
// Only effective when combined with WithCaching(true).
func WithCacheSize(size int) Option {
	return func(opts *Options) {
		opts.CacheSize = size
	}
}

// WithCache attaches an external query cache.
func WithCache(c *cache.Cache[*Query]) Option {
	return func(opts *Options) {
		opts.Cache = c
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) Option {
	return func(opts *Options) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithRegistry uses reg as the base set of extension functions.
func WithRegistry(reg *functions.Registry) Option {
	return func(opts *Options) {
		opts.Registry = reg
	}
}

// WithFunctions registers extension functions with the compiler.
//
// Example:
//
//	compiler.New(compiler.WithFunctions(functions.Def{
//	    Name: "double", MinArgs: 1, MaxArgs: 1,
//	    Fn: func(ctx context.Context, call functions.Call, args ...interface{}) (interface{}, error) {
//	        return loose.ToNumber(args[0]) * 2, nil
//	    },
//	}))
func WithFunctions(defs ...functions.Def) Option {
	return func(opts *Options) {
		opts.Functions = append(opts.Functions, defs...)
	}
}

package usecase

import (
	"context"
	"io"
	"log/slog"

	"github.com/vadimbarashkov/shortlink/internal/entity"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is the set of characters short codes are drawn from.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	defaultShortCodeLength = 6
	defaultMaxAttempts     = 10
	defaultWidenAfter      = 3
	defaultMaxLength       = 12
)

type urlRepository interface {
	Save(ctx context.Context, shortCode, originalURL string) (*entity.URL, error)
	ExistsByShortCode(ctx context.Context, shortCode string) (bool, error)
	RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
	RetrieveAndIncrementClicks(ctx context.Context, shortCode string) (*entity.URL, error)
}

// CodeGenerator returns a random short code of the given length.
type CodeGenerator func(length int) (string, error)

// DefaultCodeGenerator draws a code uniformly from Alphabet using a cryptographic source.
func DefaultCodeGenerator(length int) (string, error) {
	return gonanoid.Generate(Alphabet, length)
}

type Option func(*URLUseCase)

func WithShortCodeLength(n int) Option {
	return func(uc *URLUseCase) {
		uc.shortCodeLength = n
	}
}

func WithMaxAttempts(n int) Option {
	return func(uc *URLUseCase) {
		uc.maxAttempts = n
	}
}

// WithWidening makes the allocator grow the code by one character after every n
// consecutive collisions, up to maxLength characters.
func WithWidening(n, maxLength int) Option {
	return func(uc *URLUseCase) {
		uc.widenAfter = n
		uc.maxLength = maxLength
	}
}

func WithCodeGenerator(gen CodeGenerator) Option {
	return func(uc *URLUseCase) {
		uc.generate = gen
	}
}

// WithReservedCodes excludes codes that would shadow fixed routes.
func WithReservedCodes(codes ...string) Option {
	return func(uc *URLUseCase) {
		for _, c := range codes {
			uc.reserved[c] = struct{}{}
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(uc *URLUseCase) {
		uc.logger = logger
	}
}

type URLUseCase struct {
	shortCodeLength int
	maxAttempts     int
	widenAfter      int
	maxLength       int
	generate        CodeGenerator
	reserved        map[string]struct{}
	logger          *slog.Logger
	urlRepo         urlRepository
}

func New(urlRepo urlRepository, opts ...Option) *URLUseCase {
	uc := &URLUseCase{
		shortCodeLength: defaultShortCodeLength,
		maxAttempts:     defaultMaxAttempts,
		widenAfter:      defaultWidenAfter,
		maxLength:       defaultMaxLength,
		generate:        DefaultCodeGenerator,
		reserved:        make(map[string]struct{}),
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		urlRepo:         urlRepo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.maxLength < uc.shortCodeLength {
		uc.maxLength = uc.shortCodeLength
	}

	return uc
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vadimbarashkov/shortlink/internal/entity"
)

// ShortenURL allocates a unique short code for originalURL and stores the mapping.
//
// Candidates are sampled at random and checked against the store before the
// insert. The store's unique constraint is the final arbiter: a concurrent
// allocator that won the race makes Save fail with entity.ErrShortCodeExists,
// which is retried like any other collision. Once maxAttempts collisions have
// been seen, entity.ErrAllocationExhausted is returned.
func (uc *URLUseCase) ShortenURL(ctx context.Context, originalURL string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ShortenURL"

	if originalURL == "" {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrInvalidURL)
	}

	length := uc.shortCodeLength
	streak := 0

	for attempt := 1; attempt <= uc.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		shortCode, err := uc.generate(length)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		url, err := uc.tryAllocate(ctx, shortCode, originalURL)
		if err == nil {
			return url, nil
		}
		if !errors.Is(err, entity.ErrShortCodeExists) {
			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		streak++
		uc.logger.Debug("short code collision",
			slog.String("op", op),
			slog.String("short_code", shortCode),
			slog.Int("attempt", attempt),
		)

		if uc.widenAfter > 0 && streak >= uc.widenAfter && length < uc.maxLength {
			length++
			streak = 0
			uc.logger.Debug("widening short code", slog.String("op", op), slog.Int("length", length))
		}
	}

	return nil, fmt.Errorf("%s: %w", op, entity.ErrAllocationExhausted)
}

func (uc *URLUseCase) tryAllocate(ctx context.Context, shortCode, originalURL string) (*entity.URL, error) {
	if _, ok := uc.reserved[shortCode]; ok {
		return nil, entity.ErrShortCodeExists
	}

	exists, err := uc.urlRepo.ExistsByShortCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, entity.ErrShortCodeExists
	}

	return uc.urlRepo.Save(ctx, shortCode, originalURL)
}
